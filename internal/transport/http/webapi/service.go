package webapi

import (
	"github.com/gin-gonic/gin"

	"forge-server-go/internal/domain/identity"
	"forge-server-go/internal/domain/inventory"
	"forge-server-go/internal/domain/orders"
	platformerrors "forge-server-go/internal/platform/errors"
)

// Logger is the logging interface the handlers depend on.
type Logger interface {
	Debug(format string, args ...any)
	Info(format string, args ...any)
	Warn(format string, args ...any)
	Error(format string, args ...any)
}

// Options encapsulates the dependencies required to construct a Service.
type Options struct {
	Identities *identity.Service
	Inventory  *inventory.Service
	Orders     *orders.Service
	Logger     Logger
}

// Service is the REST transport over the domain services.
type Service struct {
	identities *identity.Service
	inventory  *inventory.Service
	orders     *orders.Service
	logger     Logger
}

// NewService creates the webapi transport service.
func NewService(opts Options) (*Service, error) {
	if opts.Identities == nil || opts.Inventory == nil || opts.Orders == nil {
		return nil, platformerrors.New(
			platformerrors.KindBootstrap, "webapi.new", "webapi requires all domain services")
	}
	if opts.Logger == nil {
		return nil, platformerrors.New(
			platformerrors.KindBootstrap, "webapi.new", "webapi requires a logger")
	}
	return &Service{
		identities: opts.Identities,
		inventory:  opts.Inventory,
		orders:     opts.Orders,
		logger:     opts.Logger,
	}, nil
}

// Register wires every route onto the /api group. Mutating inventory
// and order routes require the admin role; identity routes enforce
// self-or-admin inside the session authority itself.
func (s *Service) Register(router *gin.RouterGroup) {
	// Identity routes. Register carries an optional issuer credential
	// (required only when creating admins), so it stays outside Auth.
	user := router.Group("/user")
	user.POST("/register", s.handleRegister)
	user.POST("/login", s.handleLogin)
	user.POST("/logout", s.handleLogout)

	userSecured := user.Group("")
	userSecured.Use(s.Auth())
	{
		userSecured.GET("/:username", s.handleUserGet)
		userSecured.PUT("", s.handleUserUpdate)
		userSecured.DELETE("/:username", s.handleUserDelete)
	}

	secured := router.Group("")
	secured.Use(s.Auth())

	adminOnly := router.Group("")
	adminOnly.Use(s.Auth(), s.AdminOnly())
	{
		adminOnly.GET("/materials", s.handleMaterialsList)
		adminOnly.POST("/materials", s.handleMaterialAdd)
		adminOnly.POST("/materials/search", s.handleMaterialsSearch)
		adminOnly.DELETE("/materials/name/:name", s.handleMaterialDelete)

		adminOnly.GET("/printers", s.handlePrintersList)
		adminOnly.POST("/printers", s.handlePrinterAdd)
		adminOnly.POST("/printers/search", s.handlePrintersSearch)
		adminOnly.PUT("/printers/:id", s.handlePrinterUpdate)
		adminOnly.DELETE("/printers/:id", s.handlePrinterDelete)
		adminOnly.POST("/printers/:id/material", s.handlePrinterAssignMaterial)
		adminOnly.POST("/printers/:id/filament-change", s.handleFilamentChange)

		adminOnly.GET("/orders", s.handleOrdersList)
		adminOnly.POST("/orders/search", s.handleOrdersSearch)
		adminOnly.PUT("/orders/:id/address", s.handleOrderUpdateAddress)
		adminOnly.DELETE("/orders/:id", s.handleOrderDelete)
		adminOnly.POST("/orders/:id/cost", s.handleOrderComputeCost)

		adminOnly.GET("/system/status", s.handleSystemStatus)
	}

	// Any authenticated user may place an order.
	secured.POST("/orders", s.handleOrderAdd)

	s.logger.Info("webapi routes registered")
}
