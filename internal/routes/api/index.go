package routesAPI

import (
	"github.com/ghaniswara/dharmasaathi/internal/entity"
	"github.com/ghaniswara/dharmasaathi/internal/middleware"
	routesAPIAdmin "github.com/ghaniswara/dharmasaathi/internal/routes/api/admin"
	routesAPIAuth "github.com/ghaniswara/dharmasaathi/internal/routes/api/auth"
	routesAPIMatch "github.com/ghaniswara/dharmasaathi/internal/routes/api/match"
	routesAPIPayment "github.com/ghaniswara/dharmasaathi/internal/routes/api/payment"
	adminUseCase "github.com/ghaniswara/dharmasaathi/internal/usecase/admin"
	authUseCase "github.com/ghaniswara/dharmasaathi/internal/usecase/auth"
	"github.com/ghaniswara/dharmasaathi/internal/usecase/match"
	paymentUseCase "github.com/ghaniswara/dharmasaathi/internal/usecase/payment"
	"github.com/labstack/echo"
)

type UseCases struct {
	Auth    authUseCase.IAuthUseCase
	Match   match.IMatchUseCase
	Payment paymentUseCase.IPaymentUseCase
	Admin   adminUseCase.IAdminUseCase
}

func InitRoutes(e *echo.Echo, cases UseCases, resolver middleware.IdentityResolver) {
	api := e.Group("/api")

	api.POST("/auth/sign-up", func(c echo.Context) error {
		return routesAPIAuth.SignUpHandler(c, cases.Auth)
	})
	api.POST("/auth/sign-in", func(c echo.Context) error {
		return routesAPIAuth.SignInHandler(c, cases.Auth)
	})

	authed := api.Group("", middleware.JWTMiddleware(resolver))

	authed.POST("/swipe", func(c echo.Context) error {
		return routesAPIMatch.SwipeHandler(c, cases.Match)
	})
	authed.GET("/swipe/stats", func(c echo.Context) error {
		return routesAPIMatch.SwipeStatsHandler(c, cases.Match)
	})
	authed.GET("/matches", func(c echo.Context) error {
		return routesAPIMatch.MatchesHandler(c, cases.Match)
	})
	authed.GET("/profiles/discover", func(c echo.Context) error {
		return routesAPIMatch.DiscoverHandler(c, cases.Match)
	})

	authed.POST("/payments/order", func(c echo.Context) error {
		return routesAPIPayment.OrderHandler(c, cases.Payment)
	})
	authed.POST("/payments/verify", func(c echo.Context) error {
		return routesAPIPayment.VerifyHandler(c, cases.Payment)
	})
	authed.POST("/payments/:action", func(c echo.Context) error {
		return routesAPIPayment.ActionHandler(c, cases.Payment)
	})

	admin := authed.Group("/admin", middleware.RequireRole(entity.RoleAdmin))

	admin.GET("/dashboard", func(c echo.Context) error {
		return routesAPIAdmin.DashboardHandler(c, cases.Admin)
	})
	admin.PATCH("/users/:id/verification", func(c echo.Context) error {
		return routesAPIAdmin.UpdateVerificationHandler(c, cases.Admin)
	})
}
