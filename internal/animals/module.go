// Package animals provides the shelter animal catalog bounded context.
package animals

import (
	"patitas_backend/internal/animals/handler"
	"patitas_backend/internal/animals/repository"
	"patitas_backend/internal/animals/service"
	apphttp "patitas_backend/internal/http"
	"patitas_backend/platform/logger"
	"patitas_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the animals bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
	repo    *repository.Repo
}

// NewModule creates and initializes the animals module.
func NewModule(pool *pgxpool.Pool, val *validator.Validator, log *logger.Logger) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, log)
	h := handler.New(svc, val)

	return &Module{
		handler: h,
		service: svc,
		repo:    repo,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "animals"
}

// Service returns the service layer for external use.
func (m *Module) Service() *service.Service {
	return m.service
}

// RegisterRoutes mounts animal routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	// The catalog is readable without authentication so the public site
	// can render available animals.
	ctx.V1.GET("/animals", m.handler.List)
	ctx.V1.GET("/animals/:id", m.handler.GetByID)

	adminGroup := ctx.Admin.Group("/animals")
	adminGroup.POST("", m.handler.Create)
	adminGroup.PUT("/:id", m.handler.Update)
	adminGroup.DELETE("/:id", m.handler.Delete)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
