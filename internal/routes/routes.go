// Package routes wires the HTTP surface: public storefront endpoints,
// the payments webhook and the token-gated admin API.
package routes

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/vinsight/vinsight/internal/billing"
	"github.com/vinsight/vinsight/internal/domain"
	"github.com/vinsight/vinsight/internal/handler"
	"github.com/vinsight/vinsight/internal/handler/admin"
	"github.com/vinsight/vinsight/internal/handler/api"
	"github.com/vinsight/vinsight/internal/handler/webhook"
	"github.com/vinsight/vinsight/internal/middleware"
	"github.com/vinsight/vinsight/internal/service"
)

// Deps carries everything route registration needs.
type Deps struct {
	Orders   *service.OrderService
	Auth     *service.AuthService
	Reviews  *service.ReviewService
	Contacts *service.ContactService
	Settings *service.SettingsService
	Outbox   domain.OutboxStore
	Provider billing.Provider
	Logger   zerolog.Logger
}

// Register mounts every route on e.
func Register(e *echo.Echo, deps Deps) {
	e.Validator = handler.NewValidator()

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	orderAPI := api.NewOrderHandler(deps.Orders, deps.Logger)
	packagesAPI := api.NewPackagesHandler()
	reviewAPI := api.NewReviewHandler(deps.Reviews, deps.Logger)
	contactAPI := api.NewContactHandler(deps.Contacts, deps.Logger)
	paymentsHook := webhook.NewPaymentHandler(deps.Provider, deps.Orders, deps.Logger)

	pub := e.Group("/api")
	pub.POST("/orders/create", orderAPI.Create)
	pub.POST("/orders/complete", orderAPI.Complete)
	pub.GET("/orders/:id", orderAPI.Get)
	pub.POST("/orders/:id/checkout", orderAPI.Checkout)
	pub.GET("/packages", packagesAPI.List)
	pub.POST("/reviews", reviewAPI.Create)
	pub.GET("/reviews", reviewAPI.List)
	pub.POST("/contact", contactAPI.Create)
	pub.POST("/payments/webhook", paymentsHook.Handle)

	adminAuth := admin.NewAuthHandler(deps.Auth, deps.Logger)
	adminOrders := admin.NewOrderHandler(deps.Orders, deps.Logger)
	adminReviews := admin.NewReviewHandler(deps.Reviews, deps.Logger)
	adminContact := admin.NewContactHandler(deps.Contacts, deps.Logger)
	adminSettings := admin.NewSettingsHandler(deps.Settings, deps.Logger)
	adminNotifications := admin.NewNotificationsHandler(deps.Outbox, deps.Logger)

	e.POST("/api/admin/login", adminAuth.Login)

	adm := e.Group("/api/admin", middleware.AdminAuth(deps.Auth, deps.Logger))
	adm.POST("/password", adminAuth.ChangePassword)

	adm.GET("/orders", adminOrders.List)
	adm.GET("/orders/stats", adminOrders.Stats)
	adm.GET("/orders/:id", adminOrders.Get)
	adm.PATCH("/orders/:id", adminOrders.Update)
	adm.DELETE("/orders/:id", adminOrders.Delete)
	adm.PUT("/orders/:id/status", adminOrders.SetStatus)
	adm.POST("/orders/:id/status", adminOrders.SetStatus)
	adm.POST("/orders/:id/resend", adminOrders.Resend)
	adm.GET("/counts", adminOrders.Counts)
	adm.GET("/sales", adminOrders.Sales)

	adm.GET("/reviews", adminReviews.List)
	adm.POST("/reviews/:id/status", adminReviews.SetStatus)
	adm.POST("/reviews/:id/featured", adminReviews.SetFeatured)
	adm.DELETE("/reviews/:id", adminReviews.Delete)

	adm.GET("/contact", adminContact.List)
	adm.POST("/contact/:id/status", adminContact.SetStatus)
	adm.DELETE("/contact/:id", adminContact.Delete)

	adm.GET("/settings", adminSettings.List)
	adm.GET("/settings/:key", adminSettings.Get)
	adm.PUT("/settings/:key", adminSettings.Put)

	adm.GET("/notifications", adminNotifications.List)
}
