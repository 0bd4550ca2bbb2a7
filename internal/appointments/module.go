// Package appointments provides the visit appointment bounded context.
package appointments

import (
	"time"

	"patitas_backend/internal/appointments/handler"
	"patitas_backend/internal/appointments/repository"
	"patitas_backend/internal/appointments/service"
	"patitas_backend/internal/events"
	apphttp "patitas_backend/internal/http"
	"patitas_backend/platform/logger"
	"patitas_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the appointments bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
	repo    *repository.Repo
}

// NewModule creates and initializes the appointments module. Pass a nil
// reminders scheduler to run without a task queue.
func NewModule(
	pool *pgxpool.Pool,
	bus events.Bus,
	reminders service.ReminderScheduler,
	reminderLead time.Duration,
	val *validator.Validator,
	log *logger.Logger,
) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, bus, reminders, service.SystemClock(), reminderLead, log)
	h := handler.New(svc, val)

	return &Module{
		handler: h,
		service: svc,
		repo:    repo,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "appointments"
}

// Service returns the service layer for external use.
func (m *Module) Service() *service.Service {
	return m.service
}

// RegisterRoutes mounts appointment routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	// Booking and slot availability are public so requesters can reserve
	// a visit without a staff account.
	ctx.V1.GET("/appointments/slots", m.handler.DaySlots)
	ctx.V1.POST("/appointments", m.handler.Create)

	group := ctx.Protected.Group("/appointments")
	group.GET("", m.handler.List)
	group.GET("/:id", m.handler.GetByID)
	group.PUT("/:id/slot", m.handler.Reschedule)
	group.POST("/:id/evaluation", m.handler.Evaluate)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
