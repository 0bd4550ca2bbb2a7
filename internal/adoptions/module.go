// Package adoptions provides the adoption request bounded context.
package adoptions

import (
	"patitas_backend/internal/adoptions/handler"
	"patitas_backend/internal/adoptions/repository"
	"patitas_backend/internal/adoptions/service"
	"patitas_backend/internal/events"
	apphttp "patitas_backend/internal/http"
	"patitas_backend/platform/logger"
	"patitas_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the adoptions bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
	repo    *repository.Repo
}

// NewModule creates and initializes the adoptions module.
func NewModule(pool *pgxpool.Pool, bus events.Bus, val *validator.Validator, log *logger.Logger) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, bus, nil, log)
	h := handler.New(svc, val)

	return &Module{
		handler: h,
		service: svc,
		repo:    repo,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "adoptions"
}

// Service returns the service layer for external use.
func (m *Module) Service() *service.Service {
	return m.service
}

// RegisterRoutes mounts adoption routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	// Filing a request is public; reviewing them is staff work.
	ctx.V1.POST("/adoption-requests", m.handler.Create)

	group := ctx.Protected.Group("/adoption-requests")
	group.GET("", m.handler.List)
	group.GET("/:id", m.handler.GetByID)
	group.POST("/:id/decision", m.handler.Decide)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
