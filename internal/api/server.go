// Package api is the REST and websocket surface of the mower.
package api

import (
	"context"
	"errors"
	"mower-core/internal/utils"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

// Server owns the echo instance.
type Server struct {
	echo *echo.Echo
	addr string
}

// NewServer registers every route. realtime may be nil.
func NewServer(addr string, h *Handler, realtime http.Handler) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recover())
	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: uuid.NewString,
	}))
	e.Use(requestLogger)

	e.GET("/api", func(c echo.Context) error {
		return c.Redirect(http.StatusFound, "/api/v1")
	})

	v1 := e.Group("/api/v1", noStore)
	v1.GET("", h.GetIndex)
	v1.GET("/status", h.GetStatus)
	v1.PUT("/state", h.PutState)
	v1.GET("/states", h.GetModes)

	manual := v1.Group("/manual")
	manual.GET("", h.GetManualIndex)
	manual.PUT("/forward", h.ManualForward)
	manual.PUT("/backward", h.ManualBackward)
	manual.PUT("/stop", h.ManualStop)
	manual.PUT("/cutter_on", h.ManualCutterOn)
	manual.PUT("/cutter_off", h.ManualCutterOff)

	v1.GET("/system", h.GetSystem)
	v1.GET("/loglevel", h.GetLogLevel)
	v1.PUT("/loglevel", h.PutLogLevel)
	v1.GET("/logmessages", h.GetLogMessages)

	history := v1.Group("/history")
	history.GET("", h.GetHistoryIndex)
	history.GET("/battery", h.GetBatteryHistory)
	history.GET("/telemetry", h.GetTelemetryHistory)

	if realtime != nil {
		e.GET("/ws/status", echo.WrapHandler(realtime))
	}

	return &Server{echo: e, addr: addr}
}

// Handler exposes the router for tests.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Start serves in the background.
func (s *Server) Start() {
	go func() {
		utils.Logger.Infof("Starting HTTP server on %s", s.addr)
		if err := s.echo.Start(s.addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			utils.Logger.Errorf("HTTP server failed: %v", err)
		}
	}()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

func requestLogger(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		start := time.Now()
		err := next(c)
		utils.Logger.WithFields(map[string]interface{}{
			"method":    c.Request().Method,
			"path":      c.Path(),
			"status":    c.Response().Status,
			"requestId": c.Response().Header().Get(echo.HeaderXRequestID),
			"latency":   time.Since(start).String(),
		}).Debug("HTTP request")
		return err
	}
}
