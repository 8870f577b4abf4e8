package render

import (
	"encoding/base64"
	"io"
	"log"
	"sync"
	"time"
)

// CopyAckDuration is how long the "copied" acknowledgment stays visible.
const CopyAckDuration = 2 * time.Second

// Clipboard receives copied text.
type Clipboard interface {
	WriteText(text string) error
}

// OSC52Clipboard copies through the terminal using the OSC 52 escape
// sequence. The terminal decides whether to honor it.
type OSC52Clipboard struct {
	W io.Writer
}

// WriteText emits the sequence for text.
func (c OSC52Clipboard) WriteText(text string) error {
	_, err := io.WriteString(c.W, "\x1b]52;c;"+base64.StdEncoding.EncodeToString([]byte(text))+"\a")
	return err
}

type stopper interface {
	Stop() bool
}

// CopyNotifier performs the copy action and tracks its transient acknowledgment.
type CopyNotifier struct {
	mu        sync.Mutex
	clipboard Clipboard
	hold      time.Duration
	logger    *log.Logger
	copied    bool
	gen       uint64
	timer     stopper
	afterFunc func(time.Duration, func()) stopper
	onChange  func(copied bool)
}

// CopyOption configures a CopyNotifier.
type CopyOption func(*CopyNotifier)

// WithCopyLogger sets the logger for clipboard failures.
func WithCopyLogger(logger *log.Logger) CopyOption {
	return func(n *CopyNotifier) {
		if logger != nil {
			n.logger = logger
		}
	}
}

// WithOnChange registers a callback invoked whenever the acknowledgment
// appears or reverts. It runs without the notifier's lock held.
func WithOnChange(fn func(copied bool)) CopyOption {
	return func(n *CopyNotifier) {
		n.onChange = fn
	}
}

// NewCopyNotifier creates a notifier writing to clipboard.
func NewCopyNotifier(clipboard Clipboard, opts ...CopyOption) *CopyNotifier {
	n := &CopyNotifier{
		clipboard: clipboard,
		hold:      CopyAckDuration,
		logger:    log.New(io.Discard, "", 0),
		afterFunc: func(d time.Duration, f func()) stopper {
			return time.AfterFunc(d, f)
		},
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Copy writes the full text to the clipboard. On success the acknowledgment
// is shown and reverts after the hold period; a repeated copy restarts the
// period. Failures are logged and otherwise ignored.
func (n *CopyNotifier) Copy(text string) {
	if n.clipboard == nil {
		n.logger.Printf("copy failed: no clipboard available")
		return
	}
	if err := n.clipboard.WriteText(text); err != nil {
		n.logger.Printf("copy failed: %v", err)
		return
	}

	n.mu.Lock()
	if n.timer != nil {
		n.timer.Stop()
	}
	n.gen++
	gen := n.gen
	changed := !n.copied
	n.copied = true
	n.timer = n.afterFunc(n.hold, func() { n.revert(gen) })
	onChange := n.onChange
	n.mu.Unlock()

	if changed && onChange != nil {
		onChange(true)
	}
}

// Copied reports whether the acknowledgment is visible.
func (n *CopyNotifier) Copied() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.copied
}

// Stop cancels a pending revert. The acknowledgment state is left as is.
func (n *CopyNotifier) Stop() {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.timer != nil {
		n.timer.Stop()
		n.timer = nil
	}
}

func (n *CopyNotifier) revert(gen uint64) {
	n.mu.Lock()
	// A later copy owns the acknowledgment now.
	if gen != n.gen || !n.copied {
		n.mu.Unlock()
		return
	}
	n.copied = false
	n.timer = nil
	onChange := n.onChange
	n.mu.Unlock()

	if onChange != nil {
		onChange(false)
	}
}
