// Package admin exposes the operator surface: stored rule sets and the audit
// trail. Unlike the public verification endpoints this surface is
// JWT-protected and uses the standard error envelope.
package admin

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"seatswap/internal/audit"
	"seatswap/internal/platform/middleware"
	"seatswap/internal/verification"
	dErrors "seatswap/pkg/domain-errors"
	"seatswap/pkg/platform/httputil"
	"seatswap/pkg/requestcontext"
)

// ConfigReader is the slice of the config store the admin surface needs.
type ConfigReader interface {
	GetConfig(ctx context.Context, id string) (verification.VerificationConfig, error)
}

// Handler handles admin endpoints.
type Handler struct {
	logger       *slog.Logger
	configs      ConfigReader
	auditTrail   audit.Store
	jwtValidator middleware.JWTValidator
}

// New creates a new admin Handler. auditTrail may be nil when no queryable
// audit store is configured; the endpoint then reports not found.
func New(configs ConfigReader, auditTrail audit.Store, jwtValidator middleware.JWTValidator, logger *slog.Logger) *Handler {
	return &Handler{
		logger:       logger,
		configs:      configs,
		auditTrail:   auditTrail,
		jwtValidator: jwtValidator,
	}
}

// Register registers the admin routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	adminRouter := chi.NewRouter()
	adminRouter.Use(middleware.RequireAuth(h.jwtValidator, h.logger))
	adminRouter.Get("/configs/{id}", h.handleGetConfig)
	adminRouter.Get("/audit", h.handleListAudit)

	r.Mount("/admin", adminRouter)
}

func (h *Handler) handleGetConfig(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	configID := chi.URLParam(r, "id")

	cfg, err := h.configs.GetConfig(ctx, configID)
	if err != nil {
		if !dErrors.HasCode(err, dErrors.CodeNotFound) {
			h.logger.ErrorContext(ctx, "failed to load config",
				"request_id", requestcontext.RequestID(ctx),
				"config_id", configID,
				"error", err.Error(),
			)
			err = dErrors.New(dErrors.CodeInternal, "failed to load config")
		}
		httputil.WriteError(w, err)
		return
	}

	cfg.ConfigID = configID
	httputil.WriteJSON(w, http.StatusOK, cfg)
}

type auditListResponse struct {
	Events []audit.Event `json:"events"`
	Total  int           `json:"total"`
}

func (h *Handler) handleListAudit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if h.auditTrail == nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeNotFound, "audit trail not configured"))
		return
	}

	events, err := h.auditTrail.List(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to list audit events",
			"request_id", requestcontext.RequestID(ctx),
			"error", err.Error(),
		)
		httputil.WriteError(w, dErrors.New(dErrors.CodeInternal, "failed to list audit events"))
		return
	}

	httputil.WriteJSON(w, http.StatusOK, auditListResponse{Events: events, Total: len(events)})
}
