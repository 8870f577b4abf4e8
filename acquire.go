package formlingo

import (
	"context"
	"strings"
)

// documentIDMarker precedes the document ID in a library preview link,
// e.g. https://drive.google.com/file/d/<ID>/preview.
const documentIDMarker = "/d/"

// Catalog resolves library entries by their FilePath.
type Catalog interface {
	Find(filePath string) (FormMetadata, bool)
}

// DocumentFetcher downloads a library document by its remote ID.
// Implementations report failures as *FetchError.
type DocumentFetcher interface {
	FetchDocument(ctx context.Context, documentID string) ([]byte, error)
}

// Pipeline normalizes the three input modes into a single Payload.
type Pipeline struct {
	catalog Catalog
	fetcher DocumentFetcher
}

// NewPipeline creates a pipeline that resolves library entries through
// catalog and downloads them with fetcher.
func NewPipeline(catalog Catalog, fetcher DocumentFetcher) *Pipeline {
	return &Pipeline{
		catalog: catalog,
		fetcher: fetcher,
	}
}

// Resolve produces the payload for the active mode of in.
func (p *Pipeline) Resolve(ctx context.Context, in Input) (*Payload, error) {
	switch in.Mode {
	case ModeFile:
		if in.File == nil {
			return nil, missingInput(ModeFile, "Please upload a form image or PDF first.")
		}
		return &Payload{Kind: KindFile, File: in.File}, nil

	case ModeText:
		if strings.TrimSpace(in.Text) == "" {
			return nil, missingInput(ModeText, "Please paste the form text.")
		}
		return &Payload{Kind: KindText, Text: in.Text}, nil

	case ModeLibrary:
		file, err := p.resolveLibrary(ctx, in.LibraryPath)
		if err != nil {
			return nil, err
		}
		return &Payload{Kind: KindFile, File: file}, nil

	default:
		return nil, ErrInvalidMode
	}
}

// resolveLibrary downloads a catalog entry and wraps it as a PDF upload.
func (p *Pipeline) resolveLibrary(ctx context.Context, filePath string) (*UploadedFile, error) {
	if filePath == "" {
		return nil, missingInput(ModeLibrary, "Please select a form from the library.")
	}

	var (
		entry FormMetadata
		found bool
	)
	if p.catalog != nil {
		entry, found = p.catalog.Find(filePath)
	}
	if !found {
		return nil, &InputError{
			Kind:    KindNotFound,
			Mode:    ModeLibrary,
			Message: "Selected form could not be found.",
		}
	}

	id, err := ExtractDocumentID(entry.FilePath)
	if err != nil {
		return nil, err
	}

	if p.fetcher == nil {
		return nil, &FetchError{
			Kind:    KindNetworkError,
			Message: networkErrorMessage,
		}
	}

	data, err := p.fetcher.FetchDocument(ctx, id)
	if err != nil {
		return nil, err
	}

	return &UploadedFile{
		Name:        entry.Name + ".pdf",
		ContentType: "application/pdf",
		Data:        data,
	}, nil
}

// ExtractDocumentID returns the segment between "/d/" and the next "/" of a
// library preview link.
func ExtractDocumentID(filePath string) (string, error) {
	invalid := &InputError{
		Kind:    KindInvalidLinkFormat,
		Mode:    ModeLibrary,
		Message: "Invalid document link format in form library.",
	}

	_, rest, ok := strings.Cut(filePath, documentIDMarker)
	if !ok {
		return "", invalid
	}
	id, _, _ := strings.Cut(rest, "/")
	if id == "" {
		return "", invalid
	}
	return id, nil
}

const networkErrorMessage = `A network error occurred while trying to fetch the form. ` +
	`This could be due to network restrictions or the relay being unreachable. ` +
	`Please try the "Upload File" tab instead.`

// NewNetworkError reports a transport-level failure reaching the relay.
func NewNetworkError(cause error) *FetchError {
	return &FetchError{
		Kind:    KindNetworkError,
		Message: networkErrorMessage,
		Cause:   cause,
	}
}
