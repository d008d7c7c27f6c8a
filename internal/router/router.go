package router

import (
	"github.com/labstack/echo/v4"

	"github.com/MiniBodegas/Plataforma-sub000/internal/handler"
	"github.com/MiniBodegas/Plataforma-sub000/internal/middleware"
	"github.com/MiniBodegas/Plataforma-sub000/internal/model"
)

// RegisterRoutes mounts the unauthenticated service routes.  The
// health probe stays outside the rate limiter so orchestrators are
// never throttled away from it.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterAuth mounts registration, login and the token endpoints.
// Session-free operations live under /v1/auth keyed by IP; /v1/me
// requires a valid access token and is keyed per user, so the limiter
// runs after JWTAuth there.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string, limit echo.MiddlewareFunc) {
	g := e.Group("/v1/auth")
	g.Use(limit)
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	g.POST("/refresh", a.Refresh)
	g.POST("/logout", a.Logout)

	me := e.Group("/v1")
	me.Use(middleware.JWTAuth(jwtSecret), limit)
	me.GET("/me", a.Me)
}

// RegisterPublic mounts the guest browse surface: listing search,
// warehouse detail and the availability calendar.  cache may be nil
// when Redis is absent.
func RegisterPublic(e *echo.Echo, w *handler.WarehouseHandler, cache, limit echo.MiddlewareFunc) {
	mw := []echo.MiddlewareFunc{limit}
	if cache != nil {
		mw = append(mw, cache)
	}
	e.GET("/v1/warehouses", w.ListWarehouses, mw...)
	e.GET("/v1/warehouses/:id", w.GetWarehouse, limit)
	e.GET("/v1/warehouses/:id/availability", w.GetAvailability, mw...)
}

// RegisterProvider mounts the ARRENDADOR surface: company setup,
// listing management and reservation decisions.
func RegisterProvider(e *echo.Echo, w *handler.WarehouseHandler, pr *handler.ProviderReservationHandler, jwtSecret string, limit echo.MiddlewareFunc) {
	g := e.Group("/v1")
	g.Use(middleware.JWTAuth(jwtSecret), limit)
	g.Use(middleware.RequireRole(model.RoleProvider))

	g.POST("/company", w.CreateCompany)
	g.GET("/company", w.GetMyCompany)
	g.POST("/warehouses", w.CreateWarehouse)
	g.GET("/my-warehouses", w.ListMyWarehouses)
	g.PUT("/warehouses/:id", w.UpdateWarehouse)
	g.PATCH("/warehouses/:id/availability", w.SetAvailability)

	g.GET("/provider/reservations", pr.ListIncoming)
	g.POST("/provider/reservations/:id/accept", pr.Accept)
	g.POST("/provider/reservations/:id/reject", pr.Reject)
}

// RegisterRenter mounts the CLIENTE surface: opening, reading and
// cancelling reservation requests.
func RegisterRenter(e *echo.Echo, rr *handler.RenterReservationHandler, jwtSecret string, limit echo.MiddlewareFunc) {
	g := e.Group("/v1/reservations")
	g.Use(middleware.JWTAuth(jwtSecret), limit)
	g.Use(middleware.RequireRole(model.RoleRenter))

	g.POST("", rr.Create)
	g.GET("", rr.ListMine)
	g.GET("/:id", rr.Get)
	g.POST("/:id/cancel", rr.Cancel)
}

// RegisterNotifications mounts the inbox for any authenticated user.
func RegisterNotifications(e *echo.Echo, n *handler.NotificationHandler, jwtSecret string, limit echo.MiddlewareFunc) {
	g := e.Group("/v1/notifications")
	g.Use(middleware.JWTAuth(jwtSecret), limit)

	g.GET("", n.List)
	g.GET("/unread-count", n.UnreadCount)
	g.POST("/:id/read", n.MarkRead)
	g.POST("/read-all", n.MarkAllRead)
}
