package web

import (
	"database/sql"
	"html/template"
	"io"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pulseai/pulseai/internal/analysis"
	"github.com/pulseai/pulseai/internal/config"
	"github.com/pulseai/pulseai/internal/errors"
	"github.com/pulseai/pulseai/internal/ops"
)

// maxUploadBytes caps multipart form memory for capture uploads.
const maxUploadBytes = 32 << 20

// Handlers contains HTTP route handlers for the web UI.
type Handlers struct {
	db       *sql.DB
	cfg      *config.Config
	remote   ops.RemoteAnalyzer
	renderer *Renderer
}

// HandleUploadForm handles GET /upload — show the capture upload form.
func (h *Handlers) HandleUploadForm(w http.ResponseWriter, r *http.Request) {
	h.renderer.renderPage(w, r, "upload", UploadPageData{
		PageData: PageData{
			Title:   "Upload Capture",
			Version: h.renderer.version,
			Nav:     "upload",
		},
	})
}

// HandleCreate handles POST /analyses — analyze an uploaded capture.
// Accepts either a multipart file upload ("capture") or a pasted CSV body
// ("csv_text"); the file wins when both are present.
func (h *Handlers) HandleCreate(w http.ResponseWriter, r *http.Request) {
	csvText, filename, err := readCapture(r)
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	input := ops.AnalyzeInput{
		Filename: filename,
		CSVText:  csvText,
		Engine:   ops.Engine(r.FormValue("engine")),
	}

	result, err := ops.Analyze(r.Context(), h.db, h.cfg, h.remote, input)
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	// HTMX request: redirect via HX-Redirect header
	if r.Header.Get("HX-Request") == "true" {
		w.Header().Set("HX-Redirect", "/analyses/"+result.ID)
		w.WriteHeader(http.StatusOK)
		return
	}

	// JSON request
	if strings.Contains(r.Header.Get("Accept"), "application/json") {
		renderJSON(w, http.StatusCreated, result)
		return
	}

	// Default: redirect to the new analysis
	http.Redirect(w, r, "/analyses/"+result.ID, http.StatusSeeOther)
}

// HandleList handles GET /analyses — list stored analyses.
func (h *Handlers) HandleList(w http.ResponseWriter, r *http.Request) {
	protocol := r.URL.Query().Get("protocol")

	input := ops.ListInput{
		Protocol:       protocol,
		Limit:          parseIntParam(r, "limit", ops.DefaultListLimit),
		Offset:         parseIntParam(r, "offset", 0),
		IncludeDeleted: parseBoolParam(r, "include_deleted"),
	}

	result, err := ops.List(h.db, input)
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	h.renderer.renderPage(w, r, "list", ListPageData{
		PageData: PageData{
			Title:   "Analyses",
			Version: h.renderer.version,
			Nav:     "analyses",
		},
		Items:      result.Items,
		Pagination: result.Pagination,
		Protocol:   protocol,
		Deleted:    input.IncludeDeleted,
	})
}

// HandleDetail handles GET /analyses/{id} — view a single analysis.
func (h *Handlers) HandleDetail(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		h.renderer.renderError(w, r, errors.NewInvalidRequest("analysis ID is required"))
		return
	}

	includeReport := true
	input := ops.FetchInput{
		ID:             id,
		IncludeDeleted: parseBoolParam(r, "include_deleted"),
		IncludeReport:  &includeReport,
	}

	result, err := ops.Fetch(h.db, input)
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	rendered := renderMarkdown(analysis.MarkdownFromReport(result.ReportText))

	h.renderer.renderPage(w, r, "detail", DetailPageData{
		PageData: PageData{
			Title:   result.Filename,
			Version: h.renderer.version,
			Nav:     "analyses",
		},
		Analysis:     result,
		RenderedHTML: rendered,
	})
}

// HandleDelete handles DELETE /analyses/{id} — soft-delete an analysis.
func (h *Handlers) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		h.renderer.renderError(w, r, errors.NewInvalidRequest("analysis ID is required"))
		return
	}

	result, err := ops.Delete(h.db, ops.DeleteInput{ID: id})
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	// HTMX request: redirect via HX-Redirect header
	if r.Header.Get("HX-Request") == "true" {
		w.Header().Set("HX-Redirect", "/analyses")
		w.WriteHeader(http.StatusOK)
		return
	}

	// JSON request
	if strings.Contains(r.Header.Get("Accept"), "application/json") {
		renderJSON(w, http.StatusOK, map[string]any{
			"deleted": result.Deleted,
			"id":      result.ID,
		})
		return
	}

	// Default: redirect
	http.Redirect(w, r, "/analyses", http.StatusFound)
}

// HandlePurge handles POST /analyses/purge — permanently delete soft-deleted analyses.
func (h *Handlers) HandlePurge(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.renderer.renderError(w, r, errors.NewInvalidRequest("invalid form data"))
		return
	}

	if r.FormValue("confirm") != "true" {
		h.renderer.renderError(w, r, errors.NewInvalidRequest("confirm parameter must be \"true\""))
		return
	}

	input := ops.PurgeInput{}
	if days := r.FormValue("older_than_days"); days != "" {
		d, err := strconv.Atoi(days)
		if err != nil {
			h.renderer.renderError(w, r, errors.NewInvalidRequest("older_than_days must be an integer"))
			return
		}
		input.OlderThanDays = &d
	}

	result, err := ops.Purge(h.db, input)
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	// HTMX request: return HTML fragment
	if r.Header.Get("HX-Request") == "true" {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`<div class="purge-result">` + template.HTMLEscapeString(result.Message) + `</div>`))
		return
	}

	// JSON request
	if strings.Contains(r.Header.Get("Accept"), "application/json") {
		renderJSON(w, http.StatusOK, map[string]any{
			"purged":  result.Purged,
			"message": result.Message,
		})
		return
	}

	// Default: redirect
	http.Redirect(w, r, "/analyses?include_deleted=true", http.StatusFound)
}

// readCapture extracts the CSV text and filename from an upload request.
func readCapture(r *http.Request) (csvText, filename string, err error) {
	ct := r.Header.Get("Content-Type")
	if strings.HasPrefix(ct, "multipart/form-data") {
		if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
			return "", "", errors.NewInvalidRequest("invalid multipart form data")
		}
	} else {
		if err := r.ParseForm(); err != nil {
			return "", "", errors.NewInvalidRequest("invalid form data")
		}
	}

	if file, header, ferr := r.FormFile("capture"); ferr == nil {
		defer file.Close()
		if !allowedCaptureExt(header.Filename) {
			return "", "", errors.NewInvalidRequest("capture file must be .csv or .txt")
		}
		data, rerr := io.ReadAll(io.LimitReader(file, maxUploadBytes))
		if rerr != nil {
			return "", "", errors.NewInvalidRequest("failed to read uploaded file")
		}
		return string(data), header.Filename, nil
	}

	filename = r.FormValue("filename")
	return r.FormValue("csv_text"), filename, nil
}

// allowedCaptureExt reports whether an uploaded filename has a capture extension.
func allowedCaptureExt(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".csv", ".txt":
		return true
	}
	return false
}

// parseIntParam parses an integer query parameter with a default value.
func parseIntParam(r *http.Request, name string, defaultVal int) int {
	s := r.URL.Query().Get(name)
	if s == "" {
		return defaultVal
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return defaultVal
	}
	return v
}

// parseBoolParam parses a boolean query parameter.
func parseBoolParam(r *http.Request, name string) bool {
	s := r.URL.Query().Get(name)
	return s == "true" || s == "1"
}
