package http

import (
	"patitas_backend/platform/config"

	"github.com/gin-gonic/gin"
)

// Module is implemented by each bounded context (animals, appointments,
// adoptions). The router only knows this interface; the endpoints
// themselves stay inside the module that owns them.
type Module interface {
	// Name identifies the module in startup logs.
	Name() string
	// RegisterRoutes mounts the module's endpoints on the shared groups.
	RegisterRoutes(ctx *RouterContext)
}

// RouterContext hands modules the route groups and middleware they
// mount onto. Three tiers: V1 is public (requesters browse and book
// without an account), Protected requires a staff JWT, Admin
// additionally requires the admin role.
type RouterContext struct {
	// Engine is the root engine, for modules needing engine-level access.
	Engine *gin.Engine
	// V1 is the public /api/v1 group.
	V1 *gin.RouterGroup
	// Protected is the staff-authenticated group under /api/v1.
	Protected *gin.RouterGroup
	// Admin is the admin-only group under /api/v1/admin.
	Admin *gin.RouterGroup
	// Config exposes the JWT settings to modules wiring extra auth.
	Config config.JWTConfig
	// AuthMiddleware is the staff JWT middleware, for custom groups.
	AuthMiddleware gin.HandlerFunc
}
