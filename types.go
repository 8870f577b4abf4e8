package formlingo

// FieldType controls how a form element is drawn in the replica.
type FieldType string

const (
	// FieldText is a fillable text field (a box or an underlined space).
	FieldText FieldType = "text"
	// FieldCheckbox is a tickable square box.
	FieldCheckbox FieldType = "checkbox"
	// FieldPhoto is an area for attaching a photograph.
	FieldPhoto FieldType = "photo"
	// FieldLabel is informational text that is not an input itself.
	FieldLabel FieldType = "label"
)

// FormField is one atomic element of a reconstructed form.
type FormField struct {
	Label          string    `json:"label"`
	OriginalNumber string    `json:"originalNumber,omitempty"` // e.g. "01.", "(k)"
	Type           FieldType `json:"type"`
}

// FormRow groups fields that appear on the same horizontal line, left to right.
type FormRow struct {
	Fields []FormField `json:"fields"`
}

// FormSection is a titled block of rows. When IsTable is set, Rows[0] holds
// the column headers and the remaining rows are data rows.
type FormSection struct {
	SectionTitle string    `json:"sectionTitle"`
	Rows         []FormRow `json:"rows"`
	Description  string    `json:"description,omitempty"`
	IsTable      bool      `json:"isTable,omitempty"`
}

// TranslationResult is the document model returned by the backend.
type TranslationResult struct {
	FormTitle      string        `json:"formTitle"`
	Sections       []FormSection `json:"sections"`
	Simplification string        `json:"simplification"`
}

// FormMetadata describes one entry of the form library.
// FilePath is a remote preview URL and doubles as the entry's unique ID.
type FormMetadata struct {
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description" yaml:"description"`
	Category    string `json:"category" yaml:"category"`
	State       string `json:"state" yaml:"state"`
	FilePath    string `json:"filePath" yaml:"filePath"`
}

// Language is a supported translation target.
type Language struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// InputMode is the active source of the form being translated.
type InputMode string

const (
	ModeFile    InputMode = "file"
	ModeLibrary InputMode = "library"
	ModeText    InputMode = "text"
)

// InputModes lists the modes in display order.
var InputModes = []InputMode{ModeFile, ModeLibrary, ModeText}

// Valid reports whether m is one of the known input modes.
func (m InputMode) Valid() bool {
	switch m {
	case ModeFile, ModeLibrary, ModeText:
		return true
	}
	return false
}

// InputKind is the discriminator sent to the backend as input_type.
type InputKind string

const (
	KindFile InputKind = "file"
	KindText InputKind = "text"
)

// UploadedFile is a file-like payload: a name, a media type and its bytes.
type UploadedFile struct {
	Name        string `json:"name"`
	ContentType string `json:"contentType"`
	Data        []byte `json:"data"`
}

// Size returns the payload length in bytes.
func (f *UploadedFile) Size() int {
	if f == nil {
		return 0
	}
	return len(f.Data)
}

// Input is the raw selection for each mode. Only the datum of Mode is used.
type Input struct {
	Mode        InputMode
	File        *UploadedFile
	Text        string
	LibraryPath string
}

// Payload is a resolved input ready for transmission.
// File is set iff Kind is KindFile; Text is set iff Kind is KindText.
type Payload struct {
	Kind InputKind
	File *UploadedFile
	Text string
}
