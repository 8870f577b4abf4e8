package formlingo

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a failed submission.
type ErrorKind int

const (
	KindUnknown ErrorKind = iota
	KindMissingInput
	KindNotFound
	KindInvalidLinkFormat
	KindNetworkError
	KindDownloadFailed
	KindUnexpectedHTMLResponse
	KindBackendError
	KindInvalidResponseShape
	KindTransportError
)

var kindNames = map[ErrorKind]string{
	KindUnknown:                "Unknown",
	KindMissingInput:           "MissingInput",
	KindNotFound:               "NotFound",
	KindInvalidLinkFormat:      "InvalidLinkFormat",
	KindNetworkError:           "NetworkError",
	KindDownloadFailed:         "DownloadFailed",
	KindUnexpectedHTMLResponse: "UnexpectedHtmlResponse",
	KindBackendError:           "BackendError",
	KindInvalidResponseShape:   "InvalidResponseShape",
	KindTransportError:         "TransportError",
}

func (k ErrorKind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("ErrorKind(%d)", int(k))
}

var (
	// ErrSubmissionInFlight rejects a submit while another one is loading.
	ErrSubmissionInFlight = errors.New("a submission is already in progress")
	// ErrUnsupportedLanguage rejects a target language outside the catalog.
	ErrUnsupportedLanguage = errors.New("unsupported target language")
	// ErrInvalidMode rejects an unknown input mode.
	ErrInvalidMode = errors.New("invalid input type")
)

// InputError indicates the active mode's input is absent or unusable.
// Kind is one of KindMissingInput, KindNotFound or KindInvalidLinkFormat.
type InputError struct {
	Kind    ErrorKind
	Mode    InputMode
	Message string
}

func (e *InputError) Error() string {
	return e.Message
}

// FetchError indicates the library document could not be fetched through the relay.
// Kind is one of KindNetworkError, KindDownloadFailed or KindUnexpectedHTMLResponse.
type FetchError struct {
	Kind    ErrorKind
	Status  int // HTTP status, 0 when no response was received
	Message string
	Cause   error
}

func (e *FetchError) Error() string {
	return e.Message
}

func (e *FetchError) Unwrap() error {
	return e.Cause
}

// BackendError indicates the translation service answered with a failure status.
type BackendError struct {
	Status  int
	Message string
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("backend error (status %d): %s", e.Status, e.Message)
}

// ResponseShapeError indicates a success response whose body is not a TranslationResult.
type ResponseShapeError struct {
	Message string
	Cause   error
}

func (e *ResponseShapeError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *ResponseShapeError) Unwrap() error {
	return e.Cause
}

// TransportError indicates the request/response exchange itself failed.
type TransportError struct {
	Message string
	Cause   error
}

func (e *TransportError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("transport error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("transport error: %s", e.Message)
}

func (e *TransportError) Unwrap() error {
	return e.Cause
}

// KindOf classifies err. Errors outside the taxonomy are KindUnknown.
func KindOf(err error) ErrorKind {
	if err == nil {
		return KindUnknown
	}

	var inputErr *InputError
	if errors.As(err, &inputErr) {
		return inputErr.Kind
	}

	var fetchErr *FetchError
	if errors.As(err, &fetchErr) {
		return fetchErr.Kind
	}

	var backendErr *BackendError
	if errors.As(err, &backendErr) {
		return KindBackendError
	}

	var shapeErr *ResponseShapeError
	if errors.As(err, &shapeErr) {
		return KindInvalidResponseShape
	}

	var transportErr *TransportError
	if errors.As(err, &transportErr) {
		return KindTransportError
	}

	return KindUnknown
}

// UserMessage converts err into the single message shown in the error banner.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}

	var backendErr *BackendError
	if errors.As(err, &backendErr) {
		return "Failed to process the form: " + backendErr.Message
	}

	var shapeErr *ResponseShapeError
	if errors.As(err, &shapeErr) {
		return "Failed to process the form: " + shapeErr.Message
	}

	var transportErr *TransportError
	if errors.As(err, &transportErr) {
		if transportErr.Cause != nil {
			return "Failed to process the form: " + transportErr.Cause.Error()
		}
		return "Failed to process the form: " + transportErr.Message
	}

	switch KindOf(err) {
	case KindUnknown:
		return "An unexpected error occurred. Please try again."
	default:
		return err.Error()
	}
}

func missingInput(mode InputMode, message string) error {
	return &InputError{Kind: KindMissingInput, Mode: mode, Message: message}
}
