package web

import (
	"bytes"
	"embed"
	"errors"
	"html/template"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	analysis "github.com/zhouzirui/neuroaid/backend/internal/analysis/emotion"
	"github.com/zhouzirui/neuroaid/backend/internal/dataset"
	model "github.com/zhouzirui/neuroaid/backend/internal/model/chat"
	"github.com/zhouzirui/neuroaid/backend/internal/service/companion"
)

// SessionCookie carries the visitor's session id.
const SessionCookie = "neuroaid_session"

const (
	noticeCleared   = "History cleared."
	blockedMessage  = "No datasets could be loaded. Add CSV, TSV, TXT or JSON files to the data directory and restart."
	classifyFailure = "Sorry, the emotion model is unavailable right now. Please try again."
)

//go:embed templates/index.html
var templateFS embed.FS

var pageTemplate = template.Must(template.ParseFS(templateFS, "templates/index.html"))

// ModelInfo describes the active classifier.
type ModelInfo interface {
	Backend() string
	Model() string
}

// Handler serves the interactive HTML page.
type Handler struct {
	companion   *companion.Service
	catalog     *dataset.Catalog
	model       ModelInfo
	previewRows int
}

// New 创建页面处理器
func New(companionSvc *companion.Service, catalog *dataset.Catalog, info ModelInfo, previewRows int) *Handler {
	if previewRows <= 0 {
		previewRows = 5
	}
	return &Handler{
		companion:   companionSvc,
		catalog:     catalog,
		model:       info,
		previewRows: previewRows,
	}
}

// RegisterRoutes 注册页面路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.handleIndex)
	r.Post("/analyze", h.handleAnalyze)
	r.Post("/clear", h.handleClear)
}

type scoreView struct {
	Label   string
	Percent string
	Width   string
}

type resultView struct {
	Emotion  string
	Response string
	Scores   []scoreView
}

type recordView struct {
	Input    string
	Emotion  string
	Response string
	Time     string
}

type previewView struct {
	Columns []string
	Rows    [][]string
	Total   int
}

type pageView struct {
	Backend        string
	Model          string
	Blocked        bool
	BlockedMessage string
	LoadErrors     []string
	Datasets       []string
	Selected       string
	Preview        *previewView
	Input          string
	Warning        string
	Error          string
	Notice         string
	Result         *resultView
	History        []recordView
}

func (h *Handler) handleIndex(w http.ResponseWriter, r *http.Request) {
	sessionID := h.ensureSession(w, r)
	view := h.newView(r.URL.Query().Get("dataset"))
	h.render(w, r, http.StatusOK, sessionID, view)
}

func (h *Handler) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	sessionID := h.ensureSession(w, r)
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	view := h.newView(r.PostForm.Get("dataset"))
	if view.Blocked {
		h.render(w, r, http.StatusServiceUnavailable, sessionID, view)
		return
	}

	text := r.PostForm.Get("text")
	view.Input = text

	outcome, err := h.companion.Analyze(r.Context(), sessionID, text)
	switch {
	case err == nil:
		view.Result = newResultView(outcome)
		view.Input = ""
	case errors.Is(err, companion.ErrEmptyInput):
		view.Warning = "Please enter some text."
	default:
		slog.Error("page analysis failed", "component", "web", "sessionID", sessionID, "error", err)
		view.Error = classifyFailure
		h.render(w, r, http.StatusBadGateway, sessionID, view)
		return
	}
	h.render(w, r, http.StatusOK, sessionID, view)
}

func (h *Handler) handleClear(w http.ResponseWriter, r *http.Request) {
	sessionID := h.ensureSession(w, r)
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	view := h.newView(r.PostForm.Get("dataset"))
	if view.Blocked {
		h.render(w, r, http.StatusServiceUnavailable, sessionID, view)
		return
	}
	if err := h.companion.Clear(r.Context(), sessionID); err != nil {
		view.Error = err.Error()
	} else {
		view.Notice = noticeCleared
	}
	h.render(w, r, http.StatusOK, sessionID, view)
}

// ensureSession returns the cookie's session, registering it when needed.
func (h *Handler) ensureSession(w http.ResponseWriter, r *http.Request) string {
	sessions := h.companion.Sessions()
	if cookie, err := r.Cookie(SessionCookie); err == nil && cookie.Value != "" {
		if _, err := sessions.EnsureSession(r.Context(), cookie.Value); err == nil {
			return cookie.Value
		}
	}

	session, err := sessions.CreateSession(r.Context())
	if err != nil {
		slog.Error("failed to create session", "component", "web", "error", err)
		return ""
	}
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    session.ID,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return session.ID
}

func (h *Handler) newView(selected string) *pageView {
	view := &pageView{}
	if h.model != nil {
		view.Backend = h.model.Backend()
		view.Model = h.model.Model()
	}
	for _, le := range h.catalog.Errors() {
		view.LoadErrors = append(view.LoadErrors, le.Error())
	}

	if h.catalog.Empty() {
		view.Blocked = true
		view.BlockedMessage = blockedMessage
		return view
	}

	view.Datasets = h.catalog.Names()
	ds, ok := h.catalog.Find(selected)
	if !ok {
		ds, _ = h.catalog.First()
	}
	view.Selected = ds.Name
	view.Preview = &previewView{
		Columns: ds.Columns,
		Rows:    ds.Head(h.previewRows),
		Total:   ds.Len(),
	}
	return view
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, status int, sessionID string, view *pageView) {
	if !view.Blocked && sessionID != "" {
		records, err := h.companion.History(r.Context(), sessionID)
		if err == nil {
			view.History = newRecordViews(records)
		}
	}

	var buf bytes.Buffer
	if err := pageTemplate.Execute(&buf, view); err != nil {
		slog.Error("failed to render page", "component", "web", "error", err)
		http.Error(w, "failed to render page", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(buf.Bytes())
}

func newResultView(outcome companion.Outcome) *resultView {
	view := &resultView{
		Emotion:  analysis.ParseLabel(outcome.Record.Emotion).Title(),
		Response: outcome.Record.Response,
		Scores:   make([]scoreView, len(outcome.Classification.Scores)),
	}
	for i, score := range outcome.Classification.Scores {
		pct := strconv.FormatFloat(score.Percent(), 'f', 2, 64)
		view.Scores[i] = scoreView{Label: score.Label.Title(), Percent: pct, Width: pct}
	}
	return view
}

func newRecordViews(records []model.Record) []recordView {
	views := make([]recordView, len(records))
	for i, record := range records {
		views[i] = recordView{
			Input:    record.Input,
			Emotion:  analysis.ParseLabel(record.Emotion).Title(),
			Response: record.Response,
			Time:     record.CreatedAt.Local().Format(time.DateTime),
		}
	}
	return views
}
