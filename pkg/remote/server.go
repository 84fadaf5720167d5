// Package remote serves the controller websocket: one remote driver at a
// time sends protocol commands and receives battery and snapshot updates.
package remote

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/teslashibe/go-dalek/internal/log"
	"github.com/teslashibe/go-dalek/pkg/dalek"
	"github.com/teslashibe/go-dalek/pkg/hub"
	"github.com/teslashibe/go-dalek/pkg/protocol"
)

// ErrBusy is returned when a second controller tries to connect.
var ErrBusy = errors.New("remote: another controller is connected")

// Robot is what a controller can drive. *dalek.Dalek satisfies it.
type Robot interface {
	Drive(v float64)
	DriveRelease(v float64)
	Turn(v float64)
	TurnRelease(v float64)
	HeadTurn(v float64)
	HeadTurnRelease(v float64)
	StopMoving()
	ToggleLights()
	Speak(text string)
	StopSpeaking()
	TakePicture()
	SetCameraHandler(h dalek.SnapshotHandler)
	SetBatteryHandler(h dalek.BatteryHandler)
	BatteryStatus() string
}

var _ Robot = (*dalek.Dalek)(nil)

// Session is the connected controller.
type Session struct {
	ID        string    `json:"id"`
	Remote    string    `json:"remote"`
	Connected time.Time `json:"connected"`
}

// Stats summarises the endpoint for the status API.
type Stats struct {
	Session  *Session `json:"session,omitempty"`
	Commands uint64   `json:"commands"`
	Rejected uint64   `json:"rejected"`
	Invalid  uint64   `json:"invalid"`
}

// BatteryUpdate is published on the telemetry hub.
type BatteryUpdate struct {
	Battery string    `json:"battery"`
	Time    time.Time `json:"time"`
}

// Server is the controller endpoint.
type Server struct {
	robot     Robot
	control   *hub.Hub
	telemetry *hub.Hub
	onExit    func()
	log       *slog.Logger

	mu      sync.Mutex
	session *Session

	commands atomic.Uint64
	rejected atomic.Uint64
	invalid  atomic.Uint64
}

// New creates the endpoint. telemetry may be nil; onExit is called, on its
// own goroutine, when the controller sends exit.
func New(robot Robot, telemetry *hub.Hub, onExit func()) *Server {
	return &Server{
		robot:     robot,
		control:   hub.New("control"),
		telemetry: telemetry,
		onExit:    onExit,
		log:       log.Component("remote"),
	}
}

// Run drives the control hub until ctx is done.
func (s *Server) Run(ctx context.Context) {
	s.control.Run(ctx)
}

// RegisterRoutes mounts the controller websocket at /ws.
func (s *Server) RegisterRoutes(router fiber.Router) {
	router.Get("/ws", websocket.New(s.handleController))
}

// Session returns the connected controller, if any.
func (s *Server) Session() (Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.session == nil {
		return Session{}, false
	}
	return *s.session, true
}

// Stats returns a snapshot of the endpoint counters.
func (s *Server) Stats() Stats {
	st := Stats{
		Commands: s.commands.Load(),
		Rejected: s.rejected.Load(),
		Invalid:  s.invalid.Load(),
	}
	if sess, ok := s.Session(); ok {
		st.Session = &sess
	}
	return st
}

func (s *Server) acquire(sess *Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.session != nil {
		return ErrBusy
	}
	s.session = sess
	return nil
}

func (s *Server) release(sess *Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.session == sess {
		s.session = nil
	}
}

// handleController handles one controller connection
func (s *Server) handleController(c *websocket.Conn) {
	sess := &Session{
		ID:        uuid.NewString(),
		Remote:    c.RemoteAddr().String(),
		Connected: time.Now(),
	}
	logger := s.log.With("session", sess.ID, "remote", sess.Remote)

	if err := s.acquire(sess); err != nil {
		s.rejected.Add(1)
		logger.Warn("rejecting controller", "error", err)
		if data, err := protocol.NewBusyMessage().Bytes(); err == nil {
			c.WriteMessage(websocket.TextMessage, data)
		}
		c.Close()
		return
	}
	defer s.release(sess)

	logger.Info("controller connected")

	client := hub.NewClient(s.control, c, func(data []byte) {
		s.handleMessage(logger, data)
	})

	if ready, err := protocol.NewReadyMessage(s.robot.BatteryStatus()).Bytes(); err == nil {
		client.Send(hub.NewTextMessage(ready))
	}
	s.robot.SetCameraHandler(s.publishSnapshot)
	s.robot.SetBatteryHandler(s.publishBattery)

	client.Run()

	// Leave the robot safe for the next controller.
	s.robot.StopMoving()
	s.robot.SetCameraHandler(nil)
	s.robot.SetBatteryHandler(nil)
	logger.Info("controller disconnected")
}

// handleMessage processes a command from the controller
func (s *Server) handleMessage(logger *slog.Logger, data []byte) {
	msg, err := protocol.ParseMessage(data)
	if err != nil {
		s.invalid.Add(1)
		logger.Warn("invalid message", "error", err)
		return
	}
	cmd, err := protocol.ParseCommand(msg)
	if err != nil {
		s.invalid.Add(1)
		logger.Warn("invalid command", "error", err, "message", msg.String())
		return
	}
	s.commands.Add(1)
	logger.Debug("command", "message", msg.String())
	s.dispatch(cmd)
}

func (s *Server) dispatch(cmd *protocol.Command) {
	switch cmd.Kind {
	case protocol.KindBegin:
		switch cmd.Control {
		case protocol.ControlDrive:
			s.robot.Drive(cmd.Value)
		case protocol.ControlTurn:
			s.robot.Turn(cmd.Value)
		case protocol.ControlHeadTurn:
			s.robot.HeadTurn(cmd.Value)
		}
	case protocol.KindRelease:
		switch cmd.Control {
		case protocol.ControlDrive:
			s.robot.DriveRelease(cmd.Value)
		case protocol.ControlTurn:
			s.robot.TurnRelease(cmd.Value)
		case protocol.ControlHeadTurn:
			s.robot.HeadTurnRelease(cmd.Value)
		}
	case protocol.KindStop:
		s.robot.StopMoving()
	case protocol.KindToggleLights:
		s.robot.ToggleLights()
	case protocol.KindPlaySound:
		s.robot.Speak(cmd.Text)
	case protocol.KindStopSound:
		s.robot.StopSpeaking()
	case protocol.KindSnapshot:
		s.robot.TakePicture()
	case protocol.KindExit:
		s.log.Info("exit requested")
		if s.onExit != nil {
			go s.onExit()
		}
	}
}

func (s *Server) publish(msg *protocol.Message) {
	data, err := msg.Bytes()
	if err != nil {
		s.log.Error("encode failed", "kind", msg.Kind, "error", err)
		return
	}
	s.control.Broadcast(hub.NewTextMessage(data))
}

func (s *Server) publishSnapshot(jpeg []byte) {
	s.publish(protocol.NewSnapshotMessage(jpeg))
	if s.telemetry != nil {
		s.telemetry.BroadcastBinary(jpeg)
	}
}

func (s *Server) publishBattery(status string) {
	s.publish(protocol.NewBatteryMessage(status))
	if s.telemetry != nil {
		if err := s.telemetry.BroadcastJSON(BatteryUpdate{Battery: status, Time: time.Now()}); err != nil {
			s.log.Error("telemetry encode failed", "error", err)
		}
	}
}
