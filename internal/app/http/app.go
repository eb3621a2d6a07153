package httpapp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"eventhub/internal/lib/logger/sl"
	"eventhub/internal/middleware"
	graphqltransport "eventhub/internal/transport/graphql"
	httprouters "eventhub/internal/transport/http"

	"github.com/arl/statsviz"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "eventhub/docs"
)

type CustomValidator struct {
	validator *validator.Validate
}

func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}

type Options struct {
	Host            string
	Port            string
	AllowOrigins    []string
	ShutdownTimeout time.Duration
}

type Server struct {
	m       *http.ServeMux
	log     *slog.Logger
	e       *echo.Echo
	routers *httprouters.Routers
	graphql http.Handler
	access  middleware.AccessParser
	opts    Options
}

func New(
	log *slog.Logger,
	opts Options,
	routers *httprouters.Routers,
	graphql *graphqltransport.Handler,
	access middleware.AccessParser,
) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Validator = &CustomValidator{validator: validator.New()}

	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins:     opts.AllowOrigins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAuthorization},
		AllowCredentials: true,
	}))
	e.Use(echomw.Recover())
	e.Use(middleware.PrometheusMetrics)

	e.Use(echomw.RequestLoggerWithConfig(echomw.RequestLoggerConfig{
		LogURI:      true,
		LogStatus:   true,
		LogMethod:   true,
		LogLatency:  true,
		LogRemoteIP: true,
		LogValuesFunc: func(c echo.Context, v echomw.RequestLoggerValues) error {
			log.Info("request",
				slog.String("method", v.Method),
				slog.String("URI", v.URI),
				slog.Int("status", v.Status),
				slog.Duration("latency", v.Latency),
				slog.String("remote ip", v.RemoteIP),
			)

			return nil
		},
	}))

	mux := http.NewServeMux()
	if err := statsviz.Register(mux); err != nil {
		log.Info("statsviz start with error", sl.Err(err))
	}

	s := &Server{
		m:       mux,
		log:     log,
		e:       e,
		routers: routers,
		graphql: graphql,
		access:  access,
		opts:    opts,
	}

	s.buildRouters()

	return s
}

func (s *Server) buildRouters() {
	s.e.GET("/health", s.routers.Health)
	s.e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	s.e.GET("/refresh_token", s.routers.RefreshToken)
	s.e.POST("/graphql", echo.WrapHandler(s.graphql))

	api := s.e.Group("/api/v1")
	{
		api.POST("/register", s.routers.Register)
		api.POST("/login", s.routers.Login)

		requireAuth := middleware.JWTAuth(s.access)

		api.POST("/logout", s.routers.Logout, requireAuth)
		api.GET("/me", s.routers.Me, requireAuth)
	}

	debug := s.e.Group("/debug")
	{
		debug.GET("/statsviz/", echo.WrapHandler(s.m))
		debug.GET("/statsviz/*", echo.WrapHandler(s.m))
	}

	swagger := s.e.Group("/swag")
	{
		swagger.GET("/swagger/*", echoSwagger.WrapHandler)
	}
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.e
}

func (s *Server) MustRun() {
	const op = "http.Server.MustRun"

	s.log.Info("starting http server", slog.String("op", op), slog.String("addr", s.addr()))

	if err := s.Start(); err != nil {
		panic(err)
	}
}

func (s *Server) Start() error {
	const op = "http.Server.Start"

	if err := s.e.Start(s.addr()); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("%s: server stopped: %w", op, err)
	}

	return nil
}

func (s *Server) Stop() error {
	const op = "http.Server.Stop"

	timeout := s.opts.ShutdownTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	s.log.Info("stopping http server", slog.String("op", op))

	if err := s.e.Shutdown(ctx); err != nil {
		return fmt.Errorf("%s: could not shutdown server gracefully: %w", op, err)
	}

	return nil
}

func (s *Server) addr() string {
	return net.JoinHostPort(s.opts.Host, s.opts.Port)
}
