package web

import (
	"errors"
	"io"
	"mime"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/flosch/pongo2/v6"
	"github.com/gin-gonic/gin"

	"github.com/ZaguanLabs/formlingo"
	"github.com/ZaguanLabs/formlingo/library"
	"github.com/ZaguanLabs/formlingo/render"
)

const indexTemplate = "index.html"

func (s *Server) handleIndex(c *gin.Context) {
	_, ctrl := s.controller(c)
	view := newStateView(ctrl)

	replica, explanation, err := resultFragments(view.Result)
	if err != nil {
		s.logger.Printf("rendering result: %v", err)
		c.String(http.StatusInternalServerError, "could not render the translation")
		return
	}

	query := libraryQuery(c)
	langQuery := c.Query("lang_q")

	tmpl, err := s.templates.FromCache(indexTemplate)
	if err != nil {
		s.logger.Printf("loading template: %v", err)
		c.String(http.StatusInternalServerError, "template error")
		return
	}

	ctx := pongo2.Context{
		"state":       view,
		"modes":       modeTabs(view.Mode),
		"library":     newFormsView(s.opts.Catalog, query),
		"query":       query,
		"languages":   languageOptions(langQuery, view.TargetLanguage),
		"langQuery":   langQuery,
		"replica":     replica,
		"explanation": explanation,
		"dir":         formlingo.GetDirection(view.TargetLanguage),
		"version":     formlingo.FullVersion(),
	}
	if f, ok := s.opts.Catalog.Find(view.LibraryPath); ok {
		ctx["selectedForm"] = f
	}

	c.Header("Content-Type", "text/html; charset=utf-8")
	c.Status(http.StatusOK)
	if err := tmpl.ExecuteWriter(ctx, c.Writer); err != nil {
		s.logger.Printf("executing template: %v", err)
	}
}

func (s *Server) handleMode(c *gin.Context) {
	id, ctrl := s.controller(c)
	if err := ctrl.SetMode(formlingo.InputMode(c.PostForm("mode"))); err != nil {
		s.fail(c, http.StatusBadRequest, err)
		return
	}
	s.persist(c.Request.Context(), id, ctrl)
	s.respond(c, ctrl)
}

func (s *Server) handleFile(c *gin.Context) {
	id, ctrl := s.controller(c)

	// Leave headroom for the multipart framing around the file itself.
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.opts.MaxUpload+1<<20)

	header, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.fail(c, http.StatusRequestEntityTooLarge, errors.New("file is too large"))
			return
		}
		s.fail(c, http.StatusBadRequest, errors.New("no file uploaded"))
		return
	}
	if header.Size > s.opts.MaxUpload {
		s.fail(c, http.StatusRequestEntityTooLarge, errors.New("file is too large"))
		return
	}

	f, err := header.Open()
	if err != nil {
		s.fail(c, http.StatusBadRequest, err)
		return
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		s.fail(c, http.StatusBadRequest, err)
		return
	}

	contentType := header.Header.Get("Content-Type")
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = http.DetectContentType(data)
	}

	ctrl.SelectFile(&formlingo.UploadedFile{
		Name:        filepath.Base(header.Filename),
		ContentType: contentType,
		Data:        data,
	})
	s.persist(c.Request.Context(), id, ctrl)
	s.respond(c, ctrl)
}

func (s *Server) handleClearFile(c *gin.Context) {
	id, ctrl := s.controller(c)
	ctrl.ClearFile()
	s.persist(c.Request.Context(), id, ctrl)
	s.respond(c, ctrl)
}

func (s *Server) handleText(c *gin.Context) {
	id, ctrl := s.controller(c)
	ctrl.SetText(c.PostForm("text"))
	s.persist(c.Request.Context(), id, ctrl)
	s.respond(c, ctrl)
}

func (s *Server) handleLibrary(c *gin.Context) {
	id, ctrl := s.controller(c)
	ctrl.SelectLibraryForm(c.PostForm("filePath"))
	s.persist(c.Request.Context(), id, ctrl)
	s.respond(c, ctrl)
}

func (s *Server) handleLanguage(c *gin.Context) {
	id, ctrl := s.controller(c)
	if err := ctrl.SetTargetLanguage(c.PostForm("language")); err != nil {
		s.fail(c, http.StatusBadRequest, err)
		return
	}
	s.persist(c.Request.Context(), id, ctrl)
	s.respond(c, ctrl)
}

func (s *Server) handleSubmit(c *gin.Context) {
	id, ctrl := s.controller(c)
	if _, err := ctrl.Submit(c.Request.Context()); err != nil {
		if errors.Is(err, formlingo.ErrSubmissionInFlight) {
			s.fail(c, http.StatusConflict, err)
			return
		}
		s.fail(c, http.StatusInternalServerError, err)
		return
	}
	s.persist(c.Request.Context(), id, ctrl)
	s.respond(c, ctrl)
}

// handlePreview serves the session's current upload. Handles belonging to
// other sessions are not found.
func (s *Server) handlePreview(c *gin.Context) {
	_, ctrl := s.controller(c)

	handle := c.Param("handle")
	if handle == "" || handle != ctrl.PreviewHandle() {
		c.Status(http.StatusNotFound)
		return
	}
	file, ok := s.opts.Previews.Get(handle)
	if !ok {
		c.Status(http.StatusNotFound)
		return
	}

	c.Header("Cache-Control", "no-store")
	c.Header("X-Content-Type-Options", "nosniff")

	contentType, inline := previewContentType(file.ContentType)
	if !inline {
		c.Header("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": file.Name}))
	}
	c.Data(http.StatusOK, contentType, file.Data)
}

// inlinePreviewTypes are the upload types the browser may display from
// this origin. SVG is left out since it can carry script.
var inlinePreviewTypes = map[string]bool{
	"application/pdf": true,
	"image/png":       true,
	"image/jpeg":      true,
	"image/webp":      true,
	"image/gif":       true,
}

// previewContentType maps a client-declared type to the type served for a
// preview. Anything not displayable inline is served as a download.
func previewContentType(declared string) (string, bool) {
	mediaType, _, err := mime.ParseMediaType(declared)
	if err == nil && inlinePreviewTypes[mediaType] {
		return mediaType, true
	}
	return "application/octet-stream", false
}

// handleResultDocument returns the current result as a standalone page.
func (s *Server) handleResultDocument(c *gin.Context) {
	_, ctrl := s.controller(c)
	st := ctrl.State()
	if st.Result == nil {
		c.String(http.StatusNotFound, "no translation yet")
		return
	}

	doc, err := render.Document(st.Result, st.TargetLanguage)
	if err != nil {
		s.logger.Printf("rendering document: %v", err)
		c.String(http.StatusInternalServerError, "could not render the translation")
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(doc))
}

func (s *Server) handleHealth(c *gin.Context) {
	checker, ok := s.opts.Backend.(HealthChecker)
	if !ok {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
		return
	}
	if err := checker.Health(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "backend": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "backend": "ok"})
}

func (s *Server) handleStylesheet(c *gin.Context) {
	c.Data(http.StatusOK, "text/css; charset=utf-8", []byte(render.Stylesheet))
}

func (s *Server) handleScript(c *gin.Context) {
	data, err := assets.ReadFile("static/app.js")
	if err != nil {
		c.Status(http.StatusNotFound)
		return
	}
	c.Data(http.StatusOK, "text/javascript; charset=utf-8", data)
}

func (s *Server) handleLanguages(c *gin.Context) {
	c.JSON(http.StatusOK, formlingo.SearchLanguages(c.Query("q")))
}

func (s *Server) handleForms(c *gin.Context) {
	c.JSON(http.StatusOK, newFormsView(s.opts.Catalog, libraryQuery(c)))
}

func (s *Server) handleState(c *gin.Context) {
	_, ctrl := s.controller(c)
	c.JSON(http.StatusOK, newStateView(ctrl))
}

func libraryQuery(c *gin.Context) library.Query {
	return library.Query{
		Search:   c.Query("q"),
		Category: c.DefaultQuery("category", library.AllFilter),
		State:    c.DefaultQuery("state", library.AllFilter),
	}
}

// respond answers a state-changing action: JSON clients get the new state,
// browsers are redirected back to the page.
func (s *Server) respond(c *gin.Context, ctrl *formlingo.Controller) {
	if wantsJSON(c) {
		c.JSON(http.StatusOK, newStateView(ctrl))
		return
	}
	c.Redirect(http.StatusSeeOther, "/")
}

func (s *Server) fail(c *gin.Context, status int, err error) {
	if wantsJSON(c) {
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}
	c.String(status, err.Error())
}

func wantsJSON(c *gin.Context) bool {
	return strings.Contains(c.GetHeader("Accept"), "application/json")
}
