package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/Sirpyerre/file-manager/docs"
	"github.com/Sirpyerre/file-manager/internal/api/handler"
	"github.com/Sirpyerre/file-manager/internal/api/middleware"
	"github.com/Sirpyerre/file-manager/internal/core/domain"
	"github.com/Sirpyerre/file-manager/internal/core/ports"
)

const defaultBodyLimit = "20M"

// Dependencies are the services and probes the router exposes.
type Dependencies struct {
	Auth    ports.AuthService
	Tokens  ports.TokenService
	Folders ports.FolderService
	Files   ports.FileService

	// Checks feed the readiness probe, keyed by dependency name.
	Checks map[string]handler.DependencyCheck

	Log zerolog.Logger
	// BodyLimit caps request bodies, e.g. "20M". Defaults to 20M.
	BodyLimit string
	// Registerer receives the HTTP metrics. Defaults to the global registry.
	Registerer prometheus.Registerer
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Dependencies) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Log)

	bodyLimit := deps.BodyLimit
	if bodyLimit == "" {
		bodyLimit = defaultBodyLimit
	}
	registerer := deps.Registerer
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(requestLogger(deps.Log))
	e.Use(echomiddleware.BodyLimit(bodyLimit))
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Subsystem:  "file_manager",
		Registerer: registerer,
		Skipper: func(c echo.Context) bool {
			return c.Path() == "/metrics"
		},
	}))

	// --- Handlers ---
	authHandler := handler.NewAuthHandler(deps.Auth)
	folderHandler := handler.NewFolderHandler(deps.Folders)
	fileHandler := handler.NewFileHandler(deps.Files)
	healthHandler := handler.NewHealthHandler()
	healthDepsHandler := handler.NewHealthDependenciesHandler(deps.Checks)

	// --- Public routes ---
	e.POST("/signup", authHandler.SignUp)
	e.POST("/login", authHandler.Login)

	e.GET("/health", healthHandler.Liveness)            // liveness  – is the process alive?
	e.GET("/health/ready", healthDepsHandler.Readiness) // readiness – are dependencies up?
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	// --- Authenticated routes ---
	anyRole := middleware.RBAC(domain.RoleAdmin, domain.RoleUser)
	adminOnly := middleware.RBAC(domain.RoleAdmin)

	g := e.Group("", middleware.Auth(deps.Tokens), anyRole)

	g.POST("/logout", authHandler.Logout)
	g.PATCH("/update-password", authHandler.UpdatePassword)
	g.GET("/users/me/face", authHandler.Face)

	g.GET("/folders/root", folderHandler.Root)
	g.POST("/folders", folderHandler.Create)
	g.PUT("/folders/:id", folderHandler.Rename)
	g.DELETE("/folders/:id", folderHandler.Delete)
	g.GET("/folders/:id/contents", folderHandler.Contents)
	g.GET("/folders/by-name/:name", folderHandler.ContentsByName)

	g.POST("/upload", fileHandler.Upload)
	g.PUT("/files/:id", fileHandler.Rename)
	g.DELETE("/files/:id", fileHandler.Delete, adminOnly)
	g.GET("/files/:id/download", fileHandler.Download)

	return e
}

// requestLogger writes one zerolog entry per request.
func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(_ echo.Context, v echomiddleware.RequestLoggerValues) error {
			ev := log.Info()
			if v.Error != nil {
				ev = log.Warn().Err(v.Error)
			}
			ev.Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("request_id", v.RequestID).
				Msg("request")
			return nil
		},
	})
}
