package http

import (
	_ "github.com/DRSN-tech/wardrobe-backend/docs" // Импорт сгенерированных файлов
	"github.com/DRSN-tech/wardrobe-backend/internal/cfg"
	"github.com/DRSN-tech/wardrobe-backend/internal/usecase"
	"github.com/DRSN-tech/wardrobe-backend/pkg/logger"
	"github.com/go-chi/chi/v5"
	httpSwagger "github.com/swaggo/http-swagger/v2"
)

type Router struct {
	router *chi.Mux
	logger logger.Logger
}

func NewRouter(router *chi.Mux, logger logger.Logger) *Router {
	return &Router{router: router, logger: logger}
}

func (r *Router) Init(ingestUC usecase.IngestUC, wardrobeUC usecase.WardrobeUC, ingestCfg *cfg.IngestCfg) {
	r.router.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("http://localhost:8080/swagger/doc.json"), // ссылка на JSON
	))

	r.router.Route("/api/v1", func(v1 chi.Router) {
		sessionHandler := NewSessionHandler(ingestUC, ingestCfg, r.logger)
		registerSessionRoutes(v1, sessionHandler)

		itemHandler := NewItemHandler(wardrobeUC, r.logger)
		registerItemRoutes(v1, itemHandler)
	})
}

func registerSessionRoutes(router chi.Router, h *SessionHandler) {
	router.Route("/ingest/sessions", func(s chi.Router) {
		s.Post("/", h.openSession)

		s.Route("/{sessionID}", func(sess chi.Router) {
			sess.Get("/", h.getSession)
			sess.Delete("/", h.closeSession)
			sess.Post("/image", h.attachImage)
			sess.Post("/removal", h.toggleRemoval)
			sess.Get("/preview/{handleID}", h.getPreview)
			sess.Post("/submit", h.submitItem)
		})
	})
}

func registerItemRoutes(router chi.Router, h *ItemHandler) {
	router.Route("/wardrobe/items", func(items chi.Router) {
		items.Get("/", h.getItems)

		items.Route("/{itemID}", func(item chi.Router) {
			item.Patch("/", h.updateItem)
			item.Delete("/", h.deleteItem)
		})
	})
}
