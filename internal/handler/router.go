package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/zhouzirui/neuroaid/backend/internal/dataset"
	datasetHandler "github.com/zhouzirui/neuroaid/backend/internal/handler/dataset"
	"github.com/zhouzirui/neuroaid/backend/internal/handler/live"
	"github.com/zhouzirui/neuroaid/backend/internal/handler/session"
	"github.com/zhouzirui/neuroaid/backend/internal/handler/web"
	middlewarePkg "github.com/zhouzirui/neuroaid/backend/internal/middleware"
	"github.com/zhouzirui/neuroaid/backend/internal/service/companion"
	"github.com/zhouzirui/neuroaid/backend/internal/service/response"
	"github.com/zhouzirui/neuroaid/backend/pkg/utils"
)

// Dependencies 路由依赖的核心服务
type Dependencies struct {
	Companion   *companion.Service
	Catalog     *dataset.Catalog
	Model       web.ModelInfo
	PreviewRows int
}

// NewRouter wires HTTP routes to core services.
func NewRouter(deps Dependencies) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middlewarePkg.CORS)

	web.New(deps.Companion, deps.Catalog, deps.Model, deps.PreviewRows).RegisterRoutes(r)

	r.Route("/api", func(api chi.Router) {
		session.New(deps.Companion).RegisterRoutes(api)
		datasetHandler.New(deps.Catalog, deps.PreviewRows).RegisterRoutes(api)
		live.NewWebSocketHandler(deps.Companion).RegisterRoutes(api)

		api.Get("/responses", func(w http.ResponseWriter, r *http.Request) {
			utils.RespondJSON(w, http.StatusOK, map[string]any{
				"responses": response.Table(),
				"fallback":  response.Fallback,
			})
		})

		api.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			status := http.StatusOK
			state := "ok"
			if deps.Catalog.Empty() {
				status = http.StatusServiceUnavailable
				state = "no datasets"
			}

			body := map[string]any{
				"status":   state,
				"datasets": len(deps.Catalog.Names()),
			}
			if deps.Model != nil {
				body["backend"] = deps.Model.Backend()
				body["model"] = deps.Model.Model()
			}
			utils.RespondJSON(w, status, body)
		})
	})

	return r
}
