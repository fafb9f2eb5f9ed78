package dataset

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/zhouzirui/neuroaid/backend/internal/dataset"
)

func setupRouter() *chi.Mux {
	rows := make([][]string, 8)
	for i := range rows {
		rows[i] = []string{"sample", "joy"}
	}
	catalog := dataset.NewCatalog(dataset.Result{
		Datasets: []*dataset.Dataset{
			{Name: "emotions.csv", Format: "csv", Columns: []string{"text", "emotion"}, Rows: rows},
			{Name: "nested/train.txt", Format: "txt", Columns: []string{"text", "emotion"}, Rows: rows[:2]},
		},
		Errors: []*dataset.LoadError{{File: "broken.csv", Err: errors.New("bad quote")}},
	})

	r := chi.NewRouter()
	New(catalog, 5).RegisterRoutes(r)
	return r
}

func TestListDatasets(t *testing.T) {
	r := setupRouter()
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/datasets", nil))

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	var body struct {
		Datasets []dataset.Summary `json:"datasets"`
		Errors   []loadErrorView   `json:"errors"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body.Datasets) != 2 || len(body.Errors) != 1 || body.Errors[0].File != "broken.csv" {
		t.Fatalf("unexpected body: %+v", body)
	}
}

func TestPreviewDefaultsToFiveRows(t *testing.T) {
	r := setupRouter()
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/datasets/emotions.csv", nil))

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	var body struct {
		Rows  [][]string `json:"rows"`
		Total int        `json:"total"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body.Rows) != 5 || body.Total != 8 {
		t.Fatalf("unexpected preview: rows=%d total=%d", len(body.Rows), body.Total)
	}
}

func TestPreviewNestedNameAndLimit(t *testing.T) {
	r := setupRouter()
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/datasets/nested/train.txt?limit=1", nil))

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	var body struct {
		Rows [][]string `json:"rows"`
	}
	_ = json.NewDecoder(resp.Body).Decode(&body)
	if len(body.Rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(body.Rows))
	}
}

func TestPreviewErrors(t *testing.T) {
	r := setupRouter()

	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/datasets/broken.csv", nil))
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.Code)
	}

	resp = httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/datasets/emotions.csv?limit=-1", nil))
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
}
