package formlingo

import (
	"context"
	"io"
	"log"
	"strings"
	"sync"
)

// Backend is the interface for the remote translation service.
type Backend interface {
	Translate(ctx context.Context, req TranslateRequest) (*TranslationResult, error)
}

// TranslateRequest contains the parameters for one translation exchange.
type TranslateRequest struct {
	TargetLanguage string
	Payload        Payload
}

// Phase is the controller's position in the submission state machine.
type Phase string

const (
	PhaseIdle       Phase = "idle"
	PhaseSubmitting Phase = "submitting"
	PhaseSuccess    Phase = "success"
	PhaseFailure    Phase = "failure"
)

// State is a read-only projection of the controller. Result and Error are
// never both set.
type State struct {
	Mode           InputMode          `json:"mode"`
	File           *UploadedFile      `json:"file,omitempty"`
	Text           string             `json:"text,omitempty"`
	LibraryPath    string             `json:"libraryPath,omitempty"`
	TargetLanguage string             `json:"targetLanguage"`
	Loading        bool               `json:"loading"`
	Result         *TranslationResult `json:"result,omitempty"`
	Error          string             `json:"error,omitempty"`
	ErrorKind      ErrorKind          `json:"errorKind,omitempty"`
	Seq            uint64             `json:"seq"`
}

// Phase derives the state machine position from the state.
func (s State) Phase() Phase {
	switch {
	case s.Loading:
		return PhaseSubmitting
	case s.Result != nil:
		return PhaseSuccess
	case s.Error != "":
		return PhaseFailure
	default:
		return PhaseIdle
	}
}

// HasInput reports whether the active mode's required datum is present.
func (s State) HasInput() bool {
	switch s.Mode {
	case ModeFile:
		return s.File != nil
	case ModeLibrary:
		return s.LibraryPath != ""
	case ModeText:
		return strings.TrimSpace(s.Text) != ""
	}
	return false
}

// Controller owns the UI state and sequences the pipeline and backend.
// All mutations go through its named actions; it is safe for concurrent use.
type Controller struct {
	mu            sync.Mutex
	backend       Backend
	pipeline      *Pipeline
	previews      PreviewStore
	logger        *log.Logger
	state         State
	previewHandle string
}

// ControllerOption is a functional option for configuring the Controller.
type ControllerOption func(*Controller)

// WithPreviewStore sets the store that issues upload preview handles.
func WithPreviewStore(store PreviewStore) ControllerOption {
	return func(c *Controller) {
		c.previews = store
	}
}

// WithLogger sets the logger for submission failures.
func WithLogger(logger *log.Logger) ControllerOption {
	return func(c *Controller) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewController creates a controller in file mode targeting the default language.
func NewController(backend Backend, pipeline *Pipeline, opts ...ControllerOption) *Controller {
	c := &Controller{
		backend:  backend,
		pipeline: pipeline,
		previews: NewMemoryPreviewStore(),
		logger:   log.New(io.Discard, "", 0),
		state: State{
			Mode:           ModeFile,
			TargetLanguage: DefaultLanguage(),
		},
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// RestoreController rebuilds a controller from a snapshot. An in-flight
// submission cannot survive a restore, so the result is never loading.
func RestoreController(backend Backend, pipeline *Pipeline, snapshot State, opts ...ControllerOption) *Controller {
	c := NewController(backend, pipeline, opts...)

	snapshot.Loading = false
	if !snapshot.Mode.Valid() {
		snapshot.Mode = ModeFile
	}
	if !IsSupportedLanguage(snapshot.TargetLanguage) {
		snapshot.TargetLanguage = DefaultLanguage()
	}
	c.state = snapshot
	if c.state.File != nil && c.previews != nil {
		c.previewHandle = c.previews.Create(c.state.File)
	}
	return c
}

// State returns a copy of the current state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Snapshot returns the state to persist between requests. Loading is
// always false since an in-flight call cannot be resumed.
func (c *Controller) Snapshot() State {
	s := c.State()
	s.Loading = false
	return s
}

// CanSubmit reports whether the submit action is enabled.
func (c *Controller) CanSubmit() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return !c.state.Loading && c.state.HasInput()
}

// PreviewHandle returns the handle of the selected file's preview, if any.
func (c *Controller) PreviewHandle() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.previewHandle
}

// SetMode switches the active input mode, clearing the data of the other
// modes and any prior outcome.
func (c *Controller) SetMode(mode InputMode) error {
	if !mode.Valid() {
		return ErrInvalidMode
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state.Mode == mode {
		return nil
	}
	c.switchMode(mode)
	c.resetOutcome()
	return nil
}

// SelectFile sets the uploaded file and activates file mode.
// A nil file behaves like ClearFile.
func (c *Controller) SelectFile(file *UploadedFile) {
	if file == nil {
		c.ClearFile()
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.switchMode(ModeFile)
	c.releasePreview()
	c.state.File = file
	if c.previews != nil {
		c.previewHandle = c.previews.Create(file)
	}
	c.resetOutcome()
}

// ClearFile drops the uploaded file and its preview handle.
func (c *Controller) ClearFile() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.releasePreview()
	c.state.File = nil
	c.resetOutcome()
}

// SetText updates the pasted text. Non-empty text activates text mode.
func (c *Controller) SetText(text string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if text != "" {
		c.switchMode(ModeText)
	}
	c.state.Text = text
	c.resetOutcome()
}

// SelectLibraryForm selects a library entry by FilePath and activates library mode.
// An empty path clears the selection.
func (c *Controller) SelectLibraryForm(filePath string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.switchMode(ModeLibrary)
	c.state.LibraryPath = filePath
	c.resetOutcome()
}

// SetTargetLanguage selects the translation target.
func (c *Controller) SetTargetLanguage(code string) error {
	if !IsSupportedLanguage(code) {
		return ErrUnsupportedLanguage
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.TargetLanguage = code
	return nil
}

// Submit resolves the active input, calls the backend and records exactly
// one of result or error. It returns ErrSubmissionInFlight, leaving the
// state untouched, if a submission is already loading. The outcome of a
// submission superseded by a later one is discarded.
func (c *Controller) Submit(ctx context.Context) (State, error) {
	c.mu.Lock()
	if c.state.Loading {
		s := c.state
		c.mu.Unlock()
		return s, ErrSubmissionInFlight
	}

	c.state.Result = nil
	c.state.Error = ""
	c.state.ErrorKind = KindUnknown
	c.state.Loading = true
	c.state.Seq++
	seq := c.state.Seq
	in := Input{
		Mode:        c.state.Mode,
		File:        c.state.File,
		Text:        c.state.Text,
		LibraryPath: c.state.LibraryPath,
	}
	lang := c.state.TargetLanguage
	c.mu.Unlock()

	result, err := c.run(ctx, in, lang)

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state.Seq != seq {
		c.logger.Printf("discarding outcome of superseded submission %d (latest is %d)", seq, c.state.Seq)
		return c.state, nil
	}

	c.state.Loading = false
	if err != nil {
		c.logger.Printf("submission %d failed (%s): %v", seq, KindOf(err), err)
		c.state.Error = UserMessage(err)
		c.state.ErrorKind = KindOf(err)
		return c.state, nil
	}
	c.state.Result = result
	return c.state, nil
}

// Close releases the controller's preview handle.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.releasePreview()
}

func (c *Controller) run(ctx context.Context, in Input, lang string) (*TranslationResult, error) {
	if c.pipeline == nil {
		return nil, &TransportError{Message: "no input pipeline configured"}
	}
	payload, err := c.pipeline.Resolve(ctx, in)
	if err != nil {
		return nil, err
	}

	if c.backend == nil {
		return nil, &TransportError{Message: "no backend configured"}
	}
	result, err := c.backend.Translate(ctx, TranslateRequest{
		TargetLanguage: lang,
		Payload:        *payload,
	})
	if err != nil {
		return nil, err
	}
	if result == nil {
		return nil, &ResponseShapeError{Message: "Invalid response format from API. The JSON structure is incorrect."}
	}
	return result, nil
}

// switchMode activates mode and clears the data of every other mode
// (must be called with lock held).
func (c *Controller) switchMode(mode InputMode) {
	c.state.Mode = mode
	if mode != ModeFile {
		c.releasePreview()
		c.state.File = nil
	}
	if mode != ModeText {
		c.state.Text = ""
	}
	if mode != ModeLibrary {
		c.state.LibraryPath = ""
	}
}

// resetOutcome returns the controller to idle after an input change. A
// loading submission is abandoned: its outcome will not match the new
// sequence number (must be called with lock held).
func (c *Controller) resetOutcome() {
	c.state.Result = nil
	c.state.Error = ""
	c.state.ErrorKind = KindUnknown
	if c.state.Loading {
		c.state.Loading = false
		c.state.Seq++
	}
}

// releasePreview frees the current preview handle (must be called with lock held).
func (c *Controller) releasePreview() {
	if c.previewHandle != "" && c.previews != nil {
		c.previews.Release(c.previewHandle)
	}
	c.previewHandle = ""
}
