// Package client is a remote controller for the robot's control websocket.
package client

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/teslashibe/go-dalek/pkg/protocol"
)

// ErrNotConnected is returned when sending before Connect or after Close.
var ErrNotConnected = errors.New("client: not connected")

const writeWait = 5 * time.Second

// Client manages the websocket connection to a robot
type Client struct {
	url  string
	ws   *websocket.Conn
	wsMu sync.Mutex

	done chan struct{}

	// Callbacks, set before Connect
	OnReady    func(battery string)
	OnBusy     func()
	OnBattery  func(battery string)
	OnSnapshot func(jpeg []byte)
	OnError    func(err error)
}

// New creates a client for the control websocket at url.
func New(url string) *Client {
	return &Client{url: url}
}

// Connect dials the robot and starts dispatching its messages.
func (c *Client) Connect(ctx context.Context) error {
	dialer := websocket.Dialer{
		HandshakeTimeout: 10 * time.Second,
	}

	ws, _, err := dialer.DialContext(ctx, c.url, nil)
	if err != nil {
		return fmt.Errorf("failed to connect to %s: %w", c.url, err)
	}

	c.wsMu.Lock()
	c.ws = ws
	c.done = make(chan struct{})
	c.wsMu.Unlock()

	go c.handleMessages(ws, c.done)
	return nil
}

// Done is closed when the connection ends.
func (c *Client) Done() <-chan struct{} {
	c.wsMu.Lock()
	defer c.wsMu.Unlock()
	return c.done
}

// Close closes the connection.
func (c *Client) Close() error {
	c.wsMu.Lock()
	defer c.wsMu.Unlock()
	if c.ws == nil {
		return nil
	}
	c.ws.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(writeWait))
	err := c.ws.Close()
	c.ws = nil
	return err
}

func (c *Client) handleMessages(ws *websocket.Conn, done chan struct{}) {
	defer close(done)
	for {
		_, data, err := ws.ReadMessage()
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure) && c.OnError != nil {
				c.OnError(err)
			}
			return
		}

		msg, err := protocol.ParseMessage(data)
		if err != nil {
			if c.OnError != nil {
				c.OnError(err)
			}
			continue
		}
		c.dispatch(msg)
	}
}

func (c *Client) dispatch(msg *protocol.Message) {
	switch msg.Kind {
	case protocol.KindReady:
		if c.OnReady != nil {
			battery, _ := msg.GetBattery()
			c.OnReady(battery)
		}
	case protocol.KindBusy:
		if c.OnBusy != nil {
			c.OnBusy()
		}
	case protocol.KindBattery:
		if c.OnBattery != nil {
			if battery, err := msg.GetBattery(); err == nil {
				c.OnBattery(battery)
			}
		}
	case protocol.KindSnapshot:
		jpeg, err := msg.GetSnapshot()
		if err != nil {
			if c.OnError != nil {
				c.OnError(err)
			}
			return
		}
		if c.OnSnapshot != nil {
			c.OnSnapshot(jpeg)
		}
	}
}

// Send writes a message to the robot.
func (c *Client) Send(msg *protocol.Message) error {
	data, err := msg.Bytes()
	if err != nil {
		return err
	}

	c.wsMu.Lock()
	defer c.wsMu.Unlock()
	if c.ws == nil {
		return ErrNotConnected
	}
	c.ws.SetWriteDeadline(time.Now().Add(writeWait))
	return c.ws.WriteMessage(websocket.TextMessage, data)
}

// Begin presses a control axis with value in [-1, 1].
func (c *Client) Begin(ctl protocol.Control, value float64) error {
	return c.Send(protocol.NewBeginMessage(ctl, value))
}

// Release releases a control axis.
func (c *Client) Release(ctl protocol.Control, value float64) error {
	return c.Send(protocol.NewReleaseMessage(ctl, value))
}

func (c *Client) Stop() error         { return c.Send(protocol.NewMessage(protocol.KindStop)) }
func (c *Client) StopSound() error    { return c.Send(protocol.NewMessage(protocol.KindStopSound)) }
func (c *Client) Snapshot() error     { return c.Send(protocol.NewMessage(protocol.KindSnapshot)) }
func (c *Client) ToggleLights() error { return c.Send(protocol.NewMessage(protocol.KindToggleLights)) }
func (c *Client) Exit() error         { return c.Send(protocol.NewMessage(protocol.KindExit)) }

// PlaySound asks the robot to say text.
func (c *Client) PlaySound(text string) error {
	return c.Send(protocol.NewPlaySoundMessage(text))
}
