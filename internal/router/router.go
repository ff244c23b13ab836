package router

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	echoSwagger "github.com/swaggo/echo-swagger"
	"golang.org/x/time/rate"

	"cardregistry/internal/auth"
	"cardregistry/internal/config"
	apperr "cardregistry/internal/errors"
	"cardregistry/internal/handler"
	"cardregistry/internal/metrics"
)

// Register wires routes and middleware.
func Register(
	e *echo.Echo,
	cfg *config.Config,
	jwtService *auth.JWTService,
	tokenStore auth.TokenStoreInterface,
	gatherer prometheus.Gatherer,
	authHandler *handler.AuthHandler,
	userHandler *handler.UserHandler,
	cardHandler *handler.CardHandler,
) {
	e.HTTPErrorHandler = handler.ErrorHandler
	e.Use(middleware.RequestID())
	e.Use(RequestLogger(logrus.StandardLogger()))
	e.Use(middleware.Recover())
	e.Use(middleware.BodyLimit(cfg.MaxUploadSize))
	if cfg.RateLimitRPS > 0 {
		e.Use(middleware.RateLimiter(middleware.NewRateLimiterMemoryStore(rate.Limit(cfg.RateLimitRPS))))
	}

	e.Validator = &CustomValidator{validator: validator.New()}

	e.GET("/healthz", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})
	if gatherer != nil {
		e.GET("/metrics", echo.WrapHandler(metrics.Handler(gatherer)))
	}
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	api := e.Group("/api")

	// Public routes
	api.POST("/auth/register", authHandler.Register)
	api.POST("/auth/login", authHandler.Login)

	// Secured routes (require a valid, unrevoked bearer token)
	secured := api.Group("", JWTMiddleware(jwtService, tokenStore))

	secured.POST("/auth/logout", authHandler.Logout)
	secured.GET("/me", userHandler.Me)

	secured.GET("/cards", cardHandler.List)
	secured.POST("/cards", cardHandler.Create)
	secured.POST("/cards/file", cardHandler.CreateFromFile)
	secured.GET("/cards/by-number/:number", cardHandler.GetByCardNumber)
}

// RequestLogger writes one access log entry per request. The route template
// is logged instead of the request URI so path parameters such as card
// numbers never reach the logs.
func RequestLogger(log logrus.FieldLogger) echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus:    true,
		LogMethod:    true,
		LogLatency:   true,
		LogRemoteIP:  true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			entry := log.WithFields(logrus.Fields{
				"method":     v.Method,
				"route":      c.Path(),
				"status":     v.Status,
				"latency":    v.Latency.String(),
				"remote_ip":  v.RemoteIP,
				"request_id": v.RequestID,
			})
			if v.Error != nil {
				entry.WithError(v.Error).Warn("request")
				return nil
			}
			entry.Info("request")
			return nil
		},
	})
}

// JWTMiddleware validates bearer tokens and stores their *auth.Claims in
// the context under handler.ClaimsContextKey.
func JWTMiddleware(jwtService *auth.JWTService, tokenStore auth.TokenStoreInterface) echo.MiddlewareFunc {
	return echojwt.WithConfig(echojwt.Config{
		ContextKey: handler.ClaimsContextKey,
		ParseTokenFunc: func(c echo.Context, token string) (interface{}, error) {
			claims, err := jwtService.ValidateToken(token)
			if err != nil {
				return nil, apperr.ErrInvalidToken
			}
			if tokenStore != nil && tokenStore.IsRevoked(c.Request().Context(), claims.ID) {
				return nil, apperr.ErrInvalidToken
			}
			return claims, nil
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return c.JSON(http.StatusUnauthorized, handler.Response{Message: apperr.ErrInvalidToken.Error()})
		},
	})
}

// CustomValidator wraps validator for Echo.
type CustomValidator struct {
	validator *validator.Validate
}

// Validate implements echo.Validator interface.
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}
