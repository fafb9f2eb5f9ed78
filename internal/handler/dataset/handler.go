package dataset

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/zhouzirui/neuroaid/backend/internal/dataset"
	"github.com/zhouzirui/neuroaid/backend/pkg/utils"
)

// Handler 数据集预览的HTTP处理器
type Handler struct {
	catalog     *dataset.Catalog
	previewRows int
}

// New 创建数据集处理器
func New(catalog *dataset.Catalog, previewRows int) *Handler {
	if previewRows <= 0 {
		previewRows = 5
	}
	return &Handler{catalog: catalog, previewRows: previewRows}
}

// RegisterRoutes 注册数据集相关的路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/datasets", h.handleList)
	r.Get("/datasets/*", h.handlePreview)
}

type loadErrorView struct {
	File  string `json:"file"`
	Error string `json:"error"`
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	loadErrors := h.catalog.Errors()
	views := make([]loadErrorView, len(loadErrors))
	for i, le := range loadErrors {
		views[i] = loadErrorView{File: le.File, Error: le.Err.Error()}
	}

	utils.RespondJSON(w, http.StatusOK, map[string]any{
		"datasets": h.catalog.List(),
		"errors":   views,
	})
}

// handlePreview 返回数据集的列名和前若干行
func (h *Handler) handlePreview(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "*")
	ds, ok := h.catalog.Find(name)
	if !ok {
		utils.RespondError(w, http.StatusNotFound, "dataset not found")
		return
	}

	limit := h.previewRows
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			utils.RespondError(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		limit = parsed
	}

	utils.RespondJSON(w, http.StatusOK, map[string]any{
		"name":        ds.Name,
		"format":      ds.Format,
		"columns":     ds.Columns,
		"rows":        ds.Head(limit),
		"total":       ds.Len(),
		"labelCounts": ds.LabelCounts(),
	})
}
