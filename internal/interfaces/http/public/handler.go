package public

import (
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/sngm3741/uketsuke-services/api/internal/uketsuke/application"
)

// Handler wires public HTTP endpoints to application services.
type Handler struct {
	logger         *log.Logger
	recordQueries  application.RecordQueryService
	recordCommands application.RecordCommandService
}

// Config defines dependencies required by Handler.
type Config struct {
	Logger         *log.Logger
	RecordQueries  application.RecordQueryService
	RecordCommands application.RecordCommandService
}

// NewHandler constructs a public HTTP handler set.
func NewHandler(cfg Config) *Handler {
	return &Handler{
		logger:         cfg.Logger,
		recordQueries:  cfg.RecordQueries,
		recordCommands: cfg.RecordCommands,
	}
}

// Register mounts all public routes onto the router.
// 受付表リンクはスレッドへ共有される前提なので参照は認証なし。書き込み系は
// authMiddleware（未設定時は素通し）を通す。
func (h *Handler) Register(r chi.Router, authMiddleware func(http.Handler) http.Handler) {
	r.Get("/api/uketsuke", h.recordListHandler())
	r.Get("/api/uketsuke/{id}", h.recordDetailHandler())
	r.With(authMiddleware).Post("/api/uketsuke", h.recordCreateHandler())
	r.With(authMiddleware).Put("/api/uketsuke/{id}", h.recordUpdateHandler())
}
