package web

import (
	"encoding/json"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"

	"github.com/teslashibe/go-dalek/pkg/hub"
)

// handleStatus returns the robot's current state
func (s *Server) handleStatus(c *fiber.Ctx) error {
	return c.JSON(s.robot.Status())
}

// handleSession returns the controller endpoint state
func (s *Server) handleSession(c *fiber.Ctx) error {
	return c.JSON(s.remote.Stats())
}

// handleTelemetryWS streams status, battery and snapshot updates to an
// observer. Observers cannot send commands.
func (s *Server) handleTelemetryWS(c *websocket.Conn) {
	client := hub.NewClient(s.telemetry, c, nil)

	if data, err := json.Marshal(s.robot.Status()); err == nil {
		client.Send(hub.NewTextMessage(data))
	}

	client.Run()
}
