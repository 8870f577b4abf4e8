package formlingo

import (
	"bytes"
	"strconv"
	"strings"
	"sync"

	"github.com/ledongthuc/pdf"
)

// PreviewStore hands out short-lived handles for displaying uploaded files.
// Every handle returned by Create must eventually be passed to Release.
type PreviewStore interface {
	Create(file *UploadedFile) string
	Get(handle string) (*UploadedFile, bool)
	Release(handle string)
}

// MemoryPreviewStore is a thread-safe in-memory PreviewStore.
type MemoryPreviewStore struct {
	mu      sync.RWMutex
	files   map[string]*UploadedFile
	counter uint64
}

// NewMemoryPreviewStore creates an empty preview store.
func NewMemoryPreviewStore() *MemoryPreviewStore {
	return &MemoryPreviewStore{
		files: make(map[string]*UploadedFile),
	}
}

// Create registers file and returns its handle.
func (s *MemoryPreviewStore) Create(file *UploadedFile) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.counter++
	handle := "preview-" + strconv.FormatUint(s.counter, 36)
	s.files[handle] = file
	return handle
}

// Get returns the file registered under handle.
func (s *MemoryPreviewStore) Get(handle string) (*UploadedFile, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	f, ok := s.files[handle]
	return f, ok
}

// Release drops handle. Releasing an unknown handle is a no-op.
func (s *MemoryPreviewStore) Release(handle string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.files, handle)
}

// Len returns the number of live handles.
func (s *MemoryPreviewStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.files)
}

// PreviewKind distinguishes how an upload is shown before submission.
type PreviewKind string

const (
	PreviewPDF   PreviewKind = "pdf"
	PreviewImage PreviewKind = "image"
	PreviewOther PreviewKind = "other"
)

// PreviewInfo summarizes an uploaded file for display.
type PreviewInfo struct {
	Name      string      `json:"name"`
	Kind      PreviewKind `json:"kind"`
	Size      int         `json:"size"`
	PageCount int         `json:"pageCount,omitempty"` // PDFs only; 0 when unreadable
}

// DescribePreview inspects an uploaded file.
func DescribePreview(file *UploadedFile) PreviewInfo {
	if file == nil {
		return PreviewInfo{}
	}

	info := PreviewInfo{
		Name: file.Name,
		Kind: previewKind(file.ContentType),
		Size: file.Size(),
	}
	if info.Kind == PreviewPDF {
		info.PageCount = pdfPageCount(file.Data)
	}
	return info
}

func previewKind(contentType string) PreviewKind {
	ct := strings.ToLower(contentType)
	switch {
	case ct == "application/pdf":
		return PreviewPDF
	case strings.HasPrefix(ct, "image/"):
		return PreviewImage
	default:
		return PreviewOther
	}
}

func pdfPageCount(data []byte) (count int) {
	if len(data) == 0 {
		return 0
	}
	// The pdf reader panics on some malformed inputs.
	defer func() {
		if recover() != nil {
			count = 0
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return 0
	}
	return r.NumPage()
}

var _ PreviewStore = (*MemoryPreviewStore)(nil)
