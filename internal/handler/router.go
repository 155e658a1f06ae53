package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/zhouzirui/whisper/backend/internal/config"
	"github.com/zhouzirui/whisper/backend/internal/handler/chat"
	middlewarePkg "github.com/zhouzirui/whisper/backend/internal/middleware"
	chatService "github.com/zhouzirui/whisper/backend/internal/service/chat"
	"github.com/zhouzirui/whisper/backend/pkg/utils"
)

// NewRouter wires HTTP routes to core services.
func NewRouter(serverCfg config.ServerConfig, provider string, chatSvc *chatService.Service) http.Handler {
	r := chi.NewRouter()

	r.Use(middlewarePkg.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middlewarePkg.CORS(serverCfg.AllowedOrigins))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		utils.RespondJSON(w, http.StatusOK, map[string]string{
			"status":   "ok",
			"provider": provider,
		})
	})

	chat.New(chatSvc).RegisterRoutes(r)

	return r
}
