package web

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ZaguanLabs/formlingo"
	"github.com/ZaguanLabs/formlingo/backend"
	"github.com/ZaguanLabs/formlingo/library"
	"github.com/ZaguanLabs/formlingo/session"
)

const aadhaarPath = "https://drive.google.com/file/d/1AbC/preview"

var pngBytes = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

type stubFetcher struct {
	data  []byte
	err   error
	calls int
}

func (f *stubFetcher) FetchDocument(ctx context.Context, documentID string) ([]byte, error) {
	f.calls++
	return f.data, f.err
}

type healthBackend struct {
	*backend.MockBackend
	err error
}

func (b *healthBackend) Health(ctx context.Context) error {
	return b.err
}

func testCatalog(t *testing.T) *library.Catalog {
	t.Helper()
	catalog, err := library.New([]formlingo.FormMetadata{
		{Name: "Aadhaar Update Form", Description: "Update Aadhaar details", Category: "Identity", State: "National", FilePath: aadhaarPath},
		{Name: "PAN Card Application", Description: "Apply for a PAN card", Category: "Finance", State: "National", FilePath: "https://drive.google.com/file/d/2XyZ/preview"},
	})
	require.NoError(t, err)
	return catalog
}

func newTestServer(t *testing.T, opts Options) *Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	if opts.Backend == nil {
		opts.Backend = backend.NewMockBackend()
	}
	if opts.Catalog == nil {
		opts.Catalog = testCatalog(t)
	}

	srv, err := New(opts)
	require.NoError(t, err)
	t.Cleanup(srv.Close)
	return srv
}

// client replays the session cookie like a browser would.
type client struct {
	t       *testing.T
	handler http.Handler
	cookies []*http.Cookie
}

func newClient(t *testing.T, srv *Server) *client {
	return &client{t: t, handler: srv.Handler()}
}

func (cl *client) do(req *http.Request) *httptest.ResponseRecorder {
	for _, c := range cl.cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	cl.handler.ServeHTTP(rec, req)
	if got := rec.Result().Cookies(); len(got) > 0 {
		cl.cookies = got
	}
	return rec
}

func (cl *client) get(path string) *httptest.ResponseRecorder {
	return cl.do(httptest.NewRequest(http.MethodGet, path, nil))
}

func (cl *client) post(path string, values url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return cl.do(req)
}

func (cl *client) postJSON(path string, values url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")
	return cl.do(req)
}

func (cl *client) upload(name, contentType string, data []byte) *httptest.ResponseRecorder {
	return cl.do(cl.uploadRequest(name, contentType, data))
}

func (cl *client) uploadRequest(name, contentType string, data []byte) *http.Request {
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="file"; filename="`+name+`"`)
	h.Set("Content-Type", contentType)
	part, err := w.CreatePart(h)
	require.NoError(cl.t, err)
	_, err = part.Write(data)
	require.NoError(cl.t, err)
	require.NoError(cl.t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/file", &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func (cl *client) state() stateView {
	rec := cl.get("/api/state")
	require.Equal(cl.t, http.StatusOK, rec.Code)

	var v stateView
	require.NoError(cl.t, json.Unmarshal(rec.Body.Bytes(), &v))
	return v
}

func (cl *client) page() *goquery.Document {
	rec := cl.get("/")
	require.Equal(cl.t, http.StatusOK, rec.Code)
	doc, err := goquery.NewDocumentFromReader(rec.Body)
	require.NoError(cl.t, err)
	return doc
}

func TestNew_RequiresBackendAndCatalog(t *testing.T) {
	_, err := New(Options{Catalog: testCatalog(t)})
	assert.Error(t, err)

	_, err = New(Options{Backend: backend.NewMockBackend()})
	assert.Error(t, err)
}

func TestIndex_NewSession(t *testing.T) {
	srv := newTestServer(t, Options{})
	cl := newClient(t, srv)

	doc := cl.page()

	require.Len(t, cl.cookies, 1)
	assert.Equal(t, SessionCookie, cl.cookies[0].Name)
	assert.True(t, cl.cookies[0].HttpOnly)

	submit := doc.Find("button.fl-submit")
	assert.Equal(t, "Translate Form", strings.TrimSpace(submit.Text()))
	_, disabled := submit.Attr("disabled")
	assert.True(t, disabled, "submit should be disabled without input")

	assert.Equal(t, 3, doc.Find(`form[action="/mode"] button`).Length())
	assert.Equal(t, 1, doc.Find(`input[type="file"]`).Length())
	assert.Equal(t, len(formlingo.Languages), doc.Find(`select[name="language"] option`).Length())
	assert.Equal(t, 1, srv.LiveSessions())
}

func TestIndex_ReusesSession(t *testing.T) {
	srv := newTestServer(t, Options{})
	cl := newClient(t, srv)

	cl.get("/")
	first := cl.cookies[0].Value
	cl.get("/")

	assert.Equal(t, first, cl.cookies[0].Value)
	assert.Equal(t, 1, srv.LiveSessions())
}

func TestIndex_MalformedCookieGetsNewSession(t *testing.T) {
	srv := newTestServer(t, Options{})
	cl := newClient(t, srv)
	cl.cookies = []*http.Cookie{{Name: SessionCookie, Value: "not-a-uuid"}}

	cl.get("/")

	require.Len(t, cl.cookies, 1)
	assert.NotEqual(t, "not-a-uuid", cl.cookies[0].Value)
}

func TestTextSubmit_Success(t *testing.T) {
	mock := backend.NewMockBackend()
	srv := newTestServer(t, Options{Backend: mock})
	cl := newClient(t, srv)

	rec := cl.post("/text", url.Values{"text": {"Name: ____"}})
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))

	st := cl.state()
	assert.Equal(t, "text", st.Mode)
	assert.True(t, st.CanSubmit)

	rec = cl.post("/language", url.Values{"language": {"ta"}})
	assert.Equal(t, http.StatusSeeOther, rec.Code)

	rec = cl.post("/submit", nil)
	assert.Equal(t, http.StatusSeeOther, rec.Code)

	st = cl.state()
	assert.Equal(t, "success", st.Phase)
	assert.False(t, st.Loading)
	assert.Empty(t, st.Error)
	require.NotNil(t, st.Result)
	assert.Equal(t, "Sample Application Form [ta]", st.Result.FormTitle)

	require.Equal(t, 1, mock.Calls())
	assert.Equal(t, formlingo.KindText, mock.LastRequest.Payload.Kind)
	assert.Equal(t, "Name: ____", mock.LastRequest.Payload.Text)
	assert.Equal(t, "ta", mock.LastRequest.TargetLanguage)

	doc := cl.page()
	assert.Equal(t, 1, doc.Find("article.fl-replica").Length())
	assert.Equal(t, 1, doc.Find("aside.fl-explanation button.fl-copy").Length())
	dir, _ := doc.Find("section.result").Attr("dir")
	assert.Equal(t, "ltr", dir)
}

func TestSubmit_MissingInput(t *testing.T) {
	mock := backend.NewMockBackend()
	srv := newTestServer(t, Options{Backend: mock})
	cl := newClient(t, srv)

	for _, mode := range []string{"file", "library", "text"} {
		t.Run(mode, func(t *testing.T) {
			cl.post("/mode", url.Values{"mode": {mode}})
			cl.post("/submit", nil)

			st := cl.state()
			assert.Equal(t, "failure", st.Phase)
			assert.Equal(t, "MissingInput", st.ErrorKind)
			assert.Nil(t, st.Result)
		})
	}
	assert.Equal(t, 0, mock.Calls())
}

func TestSubmit_BackendError(t *testing.T) {
	mock := backend.NewMockBackend()
	mock.Err = &formlingo.BackendError{Status: 500, Message: "Model overloaded"}
	srv := newTestServer(t, Options{Backend: mock})
	cl := newClient(t, srv)

	cl.post("/text", url.Values{"text": {"Name:"}})
	cl.post("/submit", nil)

	st := cl.state()
	assert.Equal(t, "BackendError", st.ErrorKind)
	assert.Equal(t, "Failed to process the form: Model overloaded", st.Error)
	assert.Nil(t, st.Result)

	doc := cl.page()
	assert.Contains(t, doc.Find(`[role="alert"]`).Text(), "Model overloaded")
	assert.Equal(t, 0, doc.Find("article.fl-replica").Length())
}

func TestSubmit_JSON(t *testing.T) {
	srv := newTestServer(t, Options{})
	cl := newClient(t, srv)

	cl.postJSON("/text", url.Values{"text": {"Name:"}})
	rec := cl.postJSON("/submit", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var st stateView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &st))
	assert.Equal(t, "success", st.Phase)
	assert.NotNil(t, st.Result)
}

func TestMode_Invalid(t *testing.T) {
	srv := newTestServer(t, Options{})
	cl := newClient(t, srv)

	rec := cl.postJSON("/mode", url.Values{"mode": {"fax"}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), formlingo.ErrInvalidMode.Error())
	assert.Equal(t, "file", cl.state().Mode)
}

func TestMode_SwitchClearsOtherInputs(t *testing.T) {
	srv := newTestServer(t, Options{})
	cl := newClient(t, srv)

	cl.post("/text", url.Values{"text": {"Name:"}})
	cl.post("/mode", url.Values{"mode": {"library"}})

	st := cl.state()
	assert.Equal(t, "library", st.Mode)
	assert.Empty(t, st.Text)
	assert.False(t, st.CanSubmit)
}

func TestLanguage(t *testing.T) {
	srv := newTestServer(t, Options{})
	cl := newClient(t, srv)

	rec := cl.postJSON("/language", url.Values{"language": {"xx"}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = cl.postJSON("/language", url.Values{"language": {"ur"}})
	assert.Equal(t, http.StatusOK, rec.Code)

	st := cl.state()
	assert.Equal(t, "ur", st.TargetLanguage)
	assert.Equal(t, formlingo.LanguageLabel("ur"), st.TargetLabel)
}

func TestIndex_LanguageSearchKeepsSelection(t *testing.T) {
	srv := newTestServer(t, Options{})
	cl := newClient(t, srv)
	cl.post("/language", url.Values{"language": {"ta"}})

	rec := cl.get("/?lang_q=zzzz")
	require.Equal(t, http.StatusOK, rec.Code)
	doc, err := goquery.NewDocumentFromReader(rec.Body)
	require.NoError(t, err)

	options := doc.Find(`select[name="language"] option`)
	require.Equal(t, 1, options.Length())
	val, _ := options.Attr("value")
	assert.Equal(t, "ta", val)
	_, selected := options.Attr("selected")
	assert.True(t, selected)
}

func TestFileUpload_Preview(t *testing.T) {
	mock := backend.NewMockBackend()
	srv := newTestServer(t, Options{Backend: mock})
	cl := newClient(t, srv)

	rec := cl.upload("form.png", "image/png", pngBytes)
	require.Equal(t, http.StatusSeeOther, rec.Code)

	st := cl.state()
	require.NotNil(t, st.File)
	assert.Equal(t, "form.png", st.File.Name)
	assert.Equal(t, formlingo.PreviewImage, st.File.Kind)
	assert.Equal(t, len(pngBytes), st.File.Size)
	require.NotEmpty(t, st.PreviewHandle)
	assert.True(t, st.CanSubmit)

	rec = cl.get("/preview/" + st.PreviewHandle)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
	assert.Equal(t, pngBytes, rec.Body.Bytes())

	doc := cl.page()
	src, ok := doc.Find(".fl-upload img").Attr("src")
	assert.True(t, ok)
	assert.Equal(t, "/preview/"+st.PreviewHandle, src)

	// Another session cannot read the upload.
	other := newClient(t, srv)
	assert.Equal(t, http.StatusNotFound, other.get("/preview/"+st.PreviewHandle).Code)

	cl.post("/submit", nil)
	require.Equal(t, 1, mock.Calls())
	assert.Equal(t, formlingo.KindFile, mock.LastRequest.Payload.Kind)
	assert.Equal(t, "form.png", mock.LastRequest.Payload.File.Name)

	cl.post("/file/clear", nil)
	assert.Nil(t, cl.state().File)
	assert.Equal(t, http.StatusNotFound, cl.get("/preview/"+st.PreviewHandle).Code)
}

func TestFileUpload_DetectsContentType(t *testing.T) {
	srv := newTestServer(t, Options{})
	cl := newClient(t, srv)

	cl.upload("scan", "application/octet-stream", []byte("%PDF-1.4\n"))

	st := cl.state()
	require.NotNil(t, st.File)
	assert.Equal(t, formlingo.PreviewPDF, st.File.Kind)
}

func TestFileUpload_TooLarge(t *testing.T) {
	srv := newTestServer(t, Options{MaxUpload: 8})
	cl := newClient(t, srv)

	rec := cl.upload("form.png", "image/png", bytes.Repeat([]byte("x"), 64))
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	assert.Nil(t, cl.state().File)
}

func TestFileUpload_Dropped(t *testing.T) {
	srv := newTestServer(t, Options{})
	cl := newClient(t, srv)

	doc := cl.page()
	zone := doc.Find("form.fl-dropzone[data-dropzone]")
	require.Equal(t, 1, zone.Length())
	action, _ := zone.Attr("action")
	assert.Equal(t, "/file", action)

	// A dropped file is posted by script as multipart and answered with JSON.
	req := cl.uploadRequest("aadhaar.pdf", "application/pdf", []byte("%PDF-1.4\n"))
	req.Header.Set("Accept", "application/json")
	rec := cl.do(req)
	require.Equal(t, http.StatusOK, rec.Code)

	var st stateView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &st))
	assert.Equal(t, "file", st.Mode)
	require.NotNil(t, st.File)
	assert.Equal(t, "aadhaar.pdf", st.File.Name)
	assert.Equal(t, formlingo.PreviewPDF, st.File.Kind)
	assert.True(t, st.CanSubmit)

	rec = cl.postJSON("/file", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), `"error"`)
}

func TestPreview_UnsafeTypeServedAsDownload(t *testing.T) {
	tests := []struct {
		declared    string
		contentType string
		attachment  bool
	}{
		{"text/html", "application/octet-stream", true},
		{"image/svg+xml", "application/octet-stream", true},
		{"application/pdf", "application/pdf", false},
		{"image/jpeg; charset=binary", "image/jpeg", false},
	}

	for _, tt := range tests {
		t.Run(tt.declared, func(t *testing.T) {
			srv := newTestServer(t, Options{})
			cl := newClient(t, srv)

			cl.upload("form.bin", tt.declared, []byte("<script>alert(1)</script>"))
			st := cl.state()
			require.NotEmpty(t, st.PreviewHandle)

			rec := cl.get("/preview/" + st.PreviewHandle)
			require.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, tt.contentType, rec.Header().Get("Content-Type"))
			assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
			disposition := rec.Header().Get("Content-Disposition")
			if tt.attachment {
				assert.Equal(t, `attachment; filename=form.bin`, disposition)
			} else {
				assert.Empty(t, disposition)
			}
		})
	}
}

func TestSubmit_ResultTextVerbatim(t *testing.T) {
	mock := backend.NewMockBackend()
	mock.Result = &formlingo.TranslationResult{
		FormTitle: "Form",
		Sections: []formlingo.FormSection{{
			SectionTitle: "Details",
			Rows:         []formlingo.FormRow{{Fields: []formlingo.FormField{{Label: "Applicant's <Surname>:", Type: formlingo.FieldText}}}},
		}},
		Simplification: "Write your name in the <Name> box.\nUse <b>BLOCK</b> letters.",
	}
	srv := newTestServer(t, Options{Backend: mock})
	cl := newClient(t, srv)

	cl.post("/text", url.Values{"text": {"Name:"}})
	cl.post("/submit", nil)

	doc := cl.page()
	copyText, ok := doc.Find("button.fl-copy").Attr("data-copy-text")
	require.True(t, ok)
	assert.Equal(t, mock.Result.Simplification, copyText)
	assert.Equal(t, "Write your name in the <Name> box.", doc.Find(".fl-paragraphs p").First().Text())
	assert.Equal(t, 0, doc.Find(".fl-paragraphs b").Length())
	assert.Equal(t, "Applicant's <Surname>:", doc.Find(".fl-side-label").Text())
}

func TestFileUpload_Missing(t *testing.T) {
	srv := newTestServer(t, Options{})
	cl := newClient(t, srv)

	rec := cl.post("/file", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLibrary_SelectAndSubmit(t *testing.T) {
	mock := backend.NewMockBackend()
	fetcher := &stubFetcher{data: []byte("%PDF-1.4")}
	srv := newTestServer(t, Options{Backend: mock, Fetcher: fetcher})
	cl := newClient(t, srv)

	cl.post("/mode", url.Values{"mode": {"library"}})
	doc := cl.page()
	assert.Equal(t, 2, doc.Find(`button[name="filePath"]`).Length())

	cl.post("/library", url.Values{"filePath": {aadhaarPath}})

	doc = cl.page()
	src, ok := doc.Find(".fl-library-preview iframe").Attr("src")
	assert.True(t, ok)
	assert.Equal(t, aadhaarPath, src)

	cl.post("/submit", nil)
	assert.Equal(t, 1, fetcher.calls)
	require.Equal(t, 1, mock.Calls())
	assert.Equal(t, "Aadhaar Update Form.pdf", mock.LastRequest.Payload.File.Name)
	assert.Equal(t, "success", cl.state().Phase)
}

func TestLibrary_FetchErrorShownVerbatim(t *testing.T) {
	mock := backend.NewMockBackend()
	fetcher := &stubFetcher{err: &formlingo.FetchError{
		Kind:    formlingo.KindUnexpectedHTMLResponse,
		Message: `Could not download the form directly. Please use the "Upload File" tab to upload it manually.`,
	}}
	srv := newTestServer(t, Options{Backend: mock, Fetcher: fetcher})
	cl := newClient(t, srv)

	cl.post("/library", url.Values{"filePath": {aadhaarPath}})
	cl.post("/submit", nil)

	st := cl.state()
	assert.Equal(t, "UnexpectedHtmlResponse", st.ErrorKind)
	assert.Contains(t, st.Error, "Upload File")
	assert.Equal(t, 0, mock.Calls())
}

func TestLibrary_Filters(t *testing.T) {
	srv := newTestServer(t, Options{})
	cl := newClient(t, srv)
	cl.post("/mode", url.Values{"mode": {"library"}})

	rec := cl.get("/?category=Finance")
	doc, err := goquery.NewDocumentFromReader(rec.Body)
	require.NoError(t, err)
	buttons := doc.Find(`button[name="filePath"]`)
	require.Equal(t, 1, buttons.Length())
	assert.Contains(t, buttons.Text(), "PAN Card Application")

	rec = cl.get("/?q=nothing-matches")
	doc, err = goquery.NewDocumentFromReader(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, doc.Find(".fl-library").Text(), "No forms found.")
}

func TestResultDocument(t *testing.T) {
	srv := newTestServer(t, Options{})
	cl := newClient(t, srv)

	assert.Equal(t, http.StatusNotFound, cl.get("/result.html").Code)

	cl.post("/language", url.Values{"language": {"ur"}})
	cl.post("/text", url.Values{"text": {"Name:"}})
	cl.post("/submit", nil)

	rec := cl.get("/result.html")
	require.Equal(t, http.StatusOK, rec.Code)
	doc, err := goquery.NewDocumentFromReader(rec.Body)
	require.NoError(t, err)
	dir, _ := doc.Find("html").Attr("dir")
	assert.Equal(t, "rtl", dir)
	assert.Equal(t, 1, doc.Find("article.fl-replica").Length())
}

func TestAPI_Languages(t *testing.T) {
	srv := newTestServer(t, Options{})
	cl := newClient(t, srv)

	rec := cl.get("/api/languages?q=TAM")
	require.Equal(t, http.StatusOK, rec.Code)

	var langs []formlingo.Language
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &langs))
	require.NotEmpty(t, langs)
	assert.Equal(t, "ta", langs[0].Value)
}

func TestAPI_Forms(t *testing.T) {
	srv := newTestServer(t, Options{})
	cl := newClient(t, srv)

	rec := cl.get("/api/forms?category=Finance")
	require.Equal(t, http.StatusOK, rec.Code)

	var v formsView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
	require.Len(t, v.Forms, 1)
	assert.Equal(t, "PAN Card Application", v.Forms[0].Name)
	assert.Equal(t, []string{"Identity", "Finance"}, v.Categories)
	assert.Equal(t, []string{"National"}, v.States)

	rec = cl.get("/api/forms?q=zzz")
	assert.JSONEq(t, `{"forms":[],"categories":["Identity","Finance"],"states":["National"]}`, rec.Body.String())
}

func TestAPI_CORS(t *testing.T) {
	srv := newTestServer(t, Options{})
	cl := newClient(t, srv)

	req := httptest.NewRequest(http.MethodGet, "/api/forms", nil)
	req.Header.Set("Origin", "http://other.example")
	rec := cl.do(req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestAPI_CORSAllowedOrigins(t *testing.T) {
	srv := newTestServer(t, Options{AllowedOrigins: []string{"http://allowed.example"}})
	cl := newClient(t, srv)

	req := httptest.NewRequest(http.MethodGet, "/api/forms", nil)
	req.Header.Set("Origin", "http://allowed.example")
	rec := cl.do(req)
	assert.Equal(t, "http://allowed.example", rec.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/api/forms", nil)
	req.Header.Set("Origin", "http://evil.example")
	rec = cl.do(req)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestHealth(t *testing.T) {
	t.Run("no checker", func(t *testing.T) {
		srv := newTestServer(t, Options{})
		rec := newClient(t, srv).get("/healthz")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
	})

	t.Run("healthy", func(t *testing.T) {
		srv := newTestServer(t, Options{Backend: &healthBackend{MockBackend: backend.NewMockBackend()}})
		rec := newClient(t, srv).get("/healthz")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"status":"ok","backend":"ok"}`, rec.Body.String())
	})

	t.Run("unhealthy", func(t *testing.T) {
		b := &healthBackend{MockBackend: backend.NewMockBackend(), err: errors.New("connection refused")}
		srv := newTestServer(t, Options{Backend: b})
		rec := newClient(t, srv).get("/healthz")
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
		assert.Contains(t, rec.Body.String(), "connection refused")
	})
}

func TestStaticAssets(t *testing.T) {
	srv := newTestServer(t, Options{})
	cl := newClient(t, srv)

	rec := cl.get("/static/style.css")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), ".fl-replica")

	rec = cl.get("/static/app.js")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "data-copy-text")
	assert.Contains(t, rec.Body.String(), "is-dragover")
}

func TestSessions_SurviveRestart(t *testing.T) {
	store := session.NewMemoryStore(time.Hour)

	first := newTestServer(t, Options{Sessions: store})
	cl := newClient(t, first)
	cl.post("/text", url.Values{"text": {"Name:"}})
	cl.post("/language", url.Values{"language": {"hi"}})

	second := newTestServer(t, Options{Sessions: store})
	cl.handler = second.Handler()

	st := cl.state()
	assert.Equal(t, "text", st.Mode)
	assert.Equal(t, "Name:", st.Text)
	assert.Equal(t, "hi", st.TargetLanguage)
	assert.True(t, st.CanSubmit)
}

func TestSessions_RestoredUploadGetsPreview(t *testing.T) {
	store := session.NewMemoryStore(time.Hour)

	first := newTestServer(t, Options{Sessions: store})
	cl := newClient(t, first)
	cl.upload("form.png", "image/png", pngBytes)

	second := newTestServer(t, Options{Sessions: store})
	cl.handler = second.Handler()

	st := cl.state()
	require.NotEmpty(t, st.PreviewHandle)
	rec := cl.get("/preview/" + st.PreviewHandle)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, pngBytes, rec.Body.Bytes())
}

func TestSweep(t *testing.T) {
	previews := formlingo.NewMemoryPreviewStore()
	srv := newTestServer(t, Options{IdleTimeout: time.Minute, Previews: previews})
	now := time.Now()
	srv.now = func() time.Time { return now }

	cl := newClient(t, srv)
	cl.upload("form.png", "image/png", pngBytes)
	require.Equal(t, 1, srv.LiveSessions())
	require.Equal(t, 1, previews.Len())

	assert.Equal(t, 0, srv.Sweep())

	now = now.Add(2 * time.Minute)
	assert.Equal(t, 1, srv.Sweep())
	assert.Equal(t, 0, srv.LiveSessions())
	assert.Equal(t, 0, previews.Len())

	// The snapshot brings the session back.
	st := cl.state()
	require.NotNil(t, st.File)
	assert.Equal(t, "form.png", st.File.Name)
}

func TestClose_ReleasesPreviews(t *testing.T) {
	previews := formlingo.NewMemoryPreviewStore()
	srv := newTestServer(t, Options{Previews: previews})

	newClient(t, srv).upload("a.png", "image/png", pngBytes)
	newClient(t, srv).upload("b.png", "image/png", pngBytes)
	require.Equal(t, 2, previews.Len())

	srv.Close()
	assert.Equal(t, 0, previews.Len())
	assert.Equal(t, 0, srv.LiveSessions())
}
