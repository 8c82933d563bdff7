package router

import (
	"github.com/englishbooster/affiliate/internal/domain/identity"
	"github.com/englishbooster/affiliate/internal/interfaces/http/handler"
	"github.com/englishbooster/affiliate/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
)

// Handlers are the HTTP handlers served under /api/v1
type Handlers struct {
	Auth      *handler.AuthHandler
	Affiliate *handler.AffiliateHandler
	Program   *handler.ProgramHandler
	Referral  *handler.ReferralHandler
	Report    *handler.ReportHandler
	System    *handler.SystemHandler
}

// Guards are the middleware chains placed in front of route groups
type Guards struct {
	// Authenticate validates the bearer token and stores the principal
	Authenticate gin.HandlerFunc
	// AuthRateLimit is applied to login and registration. Nil disables it.
	AuthRateLimit gin.HandlerFunc
}

func (g Guards) authenticated() []gin.HandlerFunc {
	return []gin.HandlerFunc{g.Authenticate, middleware.TracingAttributeInjector()}
}

func (g Guards) credentialed(h gin.HandlerFunc) []gin.HandlerFunc {
	if g.AuthRateLimit == nil {
		return []gin.HandlerFunc{h}
	}
	return []gin.HandlerFunc{g.AuthRateLimit, h}
}

// RegisterAPI adds every affiliate API route group to r and the
// unversioned health check to engine.
func RegisterAPI(engine *gin.Engine, r *Router, h Handlers, g Guards) {
	engine.GET("/health-check", h.System.HealthCheck)

	auth := NewResource("auth", "/auth")
	auth.POST("/register", g.credentialed(h.Auth.Register)...).
		POST("/login", g.credentialed(h.Auth.Login)...).
		POST("/refresh", h.Auth.Refresh)
	session := auth.Child("session", "").Use(g.authenticated()...)
	session.POST("/logout", h.Auth.Logout).
		GET("/me", h.Auth.Me)

	public := NewResource("public", "")
	public.GET("/home", h.Report.Home).
		GET("/stats", h.Report.CatalogStats).
		GET("/programs", h.Program.List).
		GET("/programs/:id", h.Program.Get)

	self := NewResource("affiliate", "/affiliate").Use(g.authenticated()...)
	self.POST("/apply", h.Affiliate.Apply).
		GET("/me", h.Affiliate.GetMy).
		GET("/dashboard", h.Report.Dashboard)

	affiliates := NewResource("affiliates", "/affiliates").Use(g.authenticated()...)
	affiliates.GET("", middleware.RequireAdmin(), h.Affiliate.List).
		GET("/:id", h.Affiliate.Get).
		PATCH("/:id", middleware.RequireAdmin(), h.Affiliate.Decide).
		GET("/:id/stats", h.Report.AffiliateStats)

	referrals := NewResource("referrals", "/referrals").Use(g.authenticated()...)
	referrals.GET("", h.Referral.List).
		POST("", middleware.RequireRole(identity.RoleAffiliate), h.Referral.Create).
		GET("/:id", h.Referral.Get).
		PATCH("/:id", middleware.RequireAdmin(), h.Referral.Transition)

	system := NewResource("system", "/system")
	system.GET("/info", h.System.GetSystemInfo).
		GET("/ping", h.System.Ping)

	r.Register(auth).
		Register(public).
		Register(self).
		Register(affiliates).
		Register(referrals).
		Register(system)
}
