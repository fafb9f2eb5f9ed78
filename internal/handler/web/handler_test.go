package web

import (
	"context"
	"html"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	analysis "github.com/zhouzirui/neuroaid/backend/internal/analysis/emotion"
	"github.com/zhouzirui/neuroaid/backend/internal/dataset"
	chatservice "github.com/zhouzirui/neuroaid/backend/internal/service/chat"
	"github.com/zhouzirui/neuroaid/backend/internal/service/companion"
	"github.com/zhouzirui/neuroaid/backend/internal/service/emotion"
	"github.com/zhouzirui/neuroaid/backend/internal/service/response"
)

func setupRouter(t *testing.T, result dataset.Result) (*chi.Mux, *chatservice.Service) {
	t.Helper()
	classifier, err := emotion.NewService(emotion.NewKeywordBackend(analysis.DefaultModelLabels()), emotion.Config{})
	if err != nil {
		t.Fatalf("NewService err: %v", err)
	}
	chatSvc := chatservice.NewService()
	handler := New(companion.NewService(classifier, chatSvc), dataset.NewCatalog(result), classifier, 5)

	r := chi.NewRouter()
	handler.RegisterRoutes(r)
	return r, chatSvc
}

func sampleResult() dataset.Result {
	rows := make([][]string, 7)
	for i := range rows {
		rows[i] = []string{"row text", "joy"}
	}
	rows[6] = []string{"hidden row", "sadness"}
	return dataset.Result{
		Datasets: []*dataset.Dataset{{Name: "emotions.csv", Format: "csv", Columns: []string{"text", "emotion"}, Rows: rows}},
		Errors:   []*dataset.LoadError{{File: "broken.csv", Err: context.Canceled}},
	}
}

func sessionCookie(resp *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range resp.Result().Cookies() {
		if c.Name == SessionCookie {
			return c
		}
	}
	return nil
}

func postForm(r http.Handler, path string, form url.Values, cookie *http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if cookie != nil {
		req.AddCookie(cookie)
	}
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	return resp
}

func TestIndexSetsCookieAndShowsPreview(t *testing.T) {
	r, _ := setupRouter(t, sampleResult())

	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/", nil))

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	if sessionCookie(resp) == nil {
		t.Fatal("expected session cookie")
	}
	body := resp.Body.String()
	if !strings.Contains(body, "emotions.csv") || strings.Contains(body, "hidden row") {
		t.Fatal("preview must list the dataset and only its first rows")
	}
	if !strings.Contains(body, "broken.csv") {
		t.Fatal("load errors must be visible")
	}
	if !strings.Contains(body, "No conversation history yet.") {
		t.Fatal("expected empty history message")
	}
}

func TestAnalyzeRendersResultAndHistory(t *testing.T) {
	r, chatSvc := setupRouter(t, sampleResult())

	first := httptest.NewRecorder()
	r.ServeHTTP(first, httptest.NewRequest(http.MethodGet, "/", nil))
	cookie := sessionCookie(first)

	resp := postForm(r, "/analyze", url.Values{"text": {"I got the job, I'm so excited!"}}, cookie)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	body := resp.Body.String()
	if !strings.Contains(body, "Detected emotion: Joy") {
		t.Fatalf("expected joy result, got body %s", body)
	}
	if !strings.Contains(body, html.EscapeString(response.Select("joy"))) {
		t.Fatal("expected canned reply")
	}
	if !strings.Contains(body, "%</span>") {
		t.Fatal("expected percentages")
	}

	history, err := chatSvc.History(context.Background(), cookie.Value)
	if err != nil {
		t.Fatalf("History err: %v", err)
	}
	if history.Len() != 1 {
		t.Fatalf("expected one record, got %d", history.Len())
	}
}

func TestAnalyzeEmptyShowsWarning(t *testing.T) {
	r, chatSvc := setupRouter(t, sampleResult())

	first := httptest.NewRecorder()
	r.ServeHTTP(first, httptest.NewRequest(http.MethodGet, "/", nil))
	cookie := sessionCookie(first)

	resp := postForm(r, "/analyze", url.Values{"text": {"   "}}, cookie)
	if !strings.Contains(resp.Body.String(), "Please enter some text.") {
		t.Fatal("expected warning")
	}
	history, _ := chatSvc.History(context.Background(), cookie.Value)
	if history.Len() != 0 {
		t.Fatalf("expected no record, got %d", history.Len())
	}
}

func TestClearShowsNotice(t *testing.T) {
	r, chatSvc := setupRouter(t, sampleResult())

	first := httptest.NewRecorder()
	r.ServeHTTP(first, httptest.NewRequest(http.MethodGet, "/", nil))
	cookie := sessionCookie(first)

	postForm(r, "/analyze", url.Values{"text": {"hello there"}}, cookie)
	resp := postForm(r, "/clear", url.Values{}, cookie)

	body := resp.Body.String()
	if !strings.Contains(body, "History cleared.") || !strings.Contains(body, "No conversation history yet.") {
		t.Fatal("expected cleared notice and empty history")
	}
	history, _ := chatSvc.History(context.Background(), cookie.Value)
	if history.Len() != 0 {
		t.Fatalf("expected empty history, got %d", history.Len())
	}
}

func TestNoDatasetsBlocksPage(t *testing.T) {
	r, _ := setupRouter(t, dataset.Result{})

	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/", nil))
	body := resp.Body.String()
	if !strings.Contains(body, "No datasets could be loaded") {
		t.Fatal("expected blocking error")
	}
	if strings.Contains(body, `action="/analyze"`) {
		t.Fatal("analyze form must not be offered")
	}

	post := postForm(r, "/analyze", url.Values{"text": {"hi"}}, nil)
	if post.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", post.Code)
	}
}
