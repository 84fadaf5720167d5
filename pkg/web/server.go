// Package web serves the robot's HTTP surface: the browser controller's
// static files, a status API, telemetry and the controller websocket.
package web

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/websocket/v2"

	"github.com/teslashibe/go-dalek/internal/log"
	"github.com/teslashibe/go-dalek/pkg/dalek"
	"github.com/teslashibe/go-dalek/pkg/hub"
	"github.com/teslashibe/go-dalek/pkg/remote"
)

// StatusSource reports the robot state. *dalek.Dalek satisfies it.
type StatusSource interface {
	Status() dalek.Status
}

// Config holds the server settings.
type Config struct {
	Addr      string
	StaticDir string

	// StatusInterval is how often the status is pushed to telemetry
	// observers. Zero disables the push.
	StatusInterval time.Duration
}

// Server is the robot's web server
type Server struct {
	app    *fiber.App
	cfg    Config
	robot  StatusSource
	remote *remote.Server
	log    *slog.Logger

	// Observers of battery, snapshot and status updates
	telemetry *hub.Hub
}

// NewServer creates the server. The telemetry hub is shared with rem so
// controller traffic is mirrored to observers.
func NewServer(cfg Config, robot StatusSource, rem *remote.Server, telemetry *hub.Hub) *Server {
	s := &Server{
		cfg:       cfg,
		robot:     robot,
		remote:    rem,
		telemetry: telemetry,
		log:       log.Component("web"),
	}

	app := fiber.New(fiber.Config{
		AppName:               "Dalek",
		DisableStartupMessage: true,
	})

	app.Use(cors.New())

	if cfg.StaticDir != "" {
		if _, err := os.Stat(cfg.StaticDir); err == nil {
			app.Static("/", cfg.StaticDir)
		} else {
			s.log.Warn("static dir not found, web client disabled", "dir", cfg.StaticDir)
		}
	}

	api := app.Group("/api")
	api.Get("/status", s.handleStatus)
	api.Get("/session", s.handleSession)

	// WebSocket upgrade middleware
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})

	app.Get("/ws/telemetry", websocket.New(s.handleTelemetryWS))
	rem.RegisterRoutes(app)

	s.app = app
	return s
}

// App exposes the fiber app, mainly for tests.
func (s *Server) App() *fiber.App {
	return s.app
}

// Start runs the hubs and the status push, then serves until Shutdown.
func (s *Server) Start(ctx context.Context) error {
	s.log.Info("listening", "addr", s.cfg.Addr)

	go s.telemetry.Run(ctx)
	go s.remote.Run(ctx)
	if s.cfg.StatusInterval > 0 {
		go s.publishStatus(ctx)
	}

	return s.app.Listen(s.cfg.Addr)
}

// StartAsync starts the web server in a goroutine
func (s *Server) StartAsync(ctx context.Context) {
	go func() {
		if err := s.Start(ctx); err != nil {
			s.log.Error("web server stopped", "error", err)
		}
	}()
}

// Shutdown gracefully stops the web server
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

func (s *Server) publishStatus(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.StatusInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if s.telemetry.ClientCount() == 0 {
				continue
			}
			if err := s.telemetry.BroadcastJSON(s.robot.Status()); err != nil {
				s.log.Error("status encode failed", "error", err)
			}
		}
	}
}
