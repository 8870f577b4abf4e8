package web

import (
	"github.com/ZaguanLabs/formlingo"
	"github.com/ZaguanLabs/formlingo/library"
	"github.com/ZaguanLabs/formlingo/render"
)

// stateView is the session state as the page and the JSON API see it.
// File bytes never leave the server except through /preview.
type stateView struct {
	Mode           string                       `json:"mode"`
	Phase          string                       `json:"phase"`
	File           *formlingo.PreviewInfo       `json:"file,omitempty"`
	PreviewHandle  string                       `json:"previewHandle,omitempty"`
	Text           string                       `json:"text,omitempty"`
	LibraryPath    string                       `json:"libraryPath,omitempty"`
	TargetLanguage string                       `json:"targetLanguage"`
	TargetLabel    string                       `json:"targetLabel"`
	Loading        bool                         `json:"loading"`
	CanSubmit      bool                         `json:"canSubmit"`
	Result         *formlingo.TranslationResult `json:"result,omitempty"`
	Error          string                       `json:"error,omitempty"`
	ErrorKind      string                       `json:"errorKind,omitempty"`

	// Template conveniences
	IsPDF   bool `json:"-"`
	IsImage bool `json:"-"`
}

func newStateView(ctrl *formlingo.Controller) stateView {
	st := ctrl.State()

	v := stateView{
		Mode:           string(st.Mode),
		Phase:          string(st.Phase()),
		PreviewHandle:  ctrl.PreviewHandle(),
		Text:           st.Text,
		LibraryPath:    st.LibraryPath,
		TargetLanguage: st.TargetLanguage,
		TargetLabel:    formlingo.LanguageLabel(st.TargetLanguage),
		Loading:        st.Loading,
		CanSubmit:      !st.Loading && st.HasInput(),
		Result:         st.Result,
		Error:          st.Error,
	}
	if st.Error != "" {
		v.ErrorKind = st.ErrorKind.String()
	}
	if st.File != nil {
		info := formlingo.DescribePreview(st.File)
		v.File = &info
		v.IsPDF = info.Kind == formlingo.PreviewPDF
		v.IsImage = info.Kind == formlingo.PreviewImage
	}
	return v
}

type modeTab struct {
	Value  string
	Label  string
	Active bool
}

var modeLabels = map[formlingo.InputMode]string{
	formlingo.ModeFile:    "Upload File",
	formlingo.ModeLibrary: "Form Library",
	formlingo.ModeText:    "Paste Text",
}

func modeTabs(active string) []modeTab {
	tabs := make([]modeTab, 0, len(formlingo.InputModes))
	for _, m := range formlingo.InputModes {
		tabs = append(tabs, modeTab{
			Value:  string(m),
			Label:  modeLabels[m],
			Active: string(m) == active,
		})
	}
	return tabs
}

// languageOptions filters the catalog by term, keeping the selected
// language first when the filter would hide it.
func languageOptions(term, selected string) []formlingo.Language {
	langs := formlingo.SearchLanguages(term)
	for _, l := range langs {
		if l.Value == selected {
			return langs
		}
	}
	if formlingo.IsSupportedLanguage(selected) {
		current := formlingo.Language{Value: selected, Label: formlingo.LanguageLabel(selected)}
		langs = append([]formlingo.Language{current}, langs...)
	}
	return langs
}

type formsView struct {
	Forms      []formlingo.FormMetadata `json:"forms"`
	Categories []string                 `json:"categories"`
	States     []string                 `json:"states"`
}

func newFormsView(catalog *library.Catalog, q library.Query) formsView {
	forms := catalog.Filter(q)
	if forms == nil {
		forms = []formlingo.FormMetadata{}
	}
	return formsView{
		Forms:      forms,
		Categories: catalog.Categories(),
		States:     catalog.States(),
	}
}

// resultFragments renders the replica and the explanation panel for
// embedding in the page.
func resultFragments(result *formlingo.TranslationResult) (replica, explanation string, err error) {
	if result == nil {
		return "", "", nil
	}
	if replica, err = render.Fragment(render.RenderResult(result)); err != nil {
		return "", "", err
	}
	if explanation, err = render.Fragment(render.ExplanationPanel(result.Simplification)); err != nil {
		return "", "", err
	}
	return replica, explanation, nil
}
