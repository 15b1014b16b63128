package server

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/colonyops/tasktalk/internal/assistant"
)

const (
	// Time allowed to write a frame to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong from the peer.
	pongWait = 60 * time.Second

	// Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	maxFrameSize = 64 * 1024
)

// Client is one WebSocket connection. Usually a browser tab running the
// speech engines.
type Client struct {
	id   string
	hub  *Hub
	conn *websocket.Conn
	send chan Frame

	assistant *assistant.Assistant
	log       zerolog.Logger
}

func newClient(hub *Hub, conn *websocket.Conn, a *assistant.Assistant, log zerolog.Logger) *Client {
	id := uuid.NewString()
	return &Client{
		id:        id,
		hub:       hub,
		conn:      conn,
		send:      make(chan Frame, 64),
		assistant: a,
		log:       log.With().Str("client_id", id).Logger(),
	}
}

// readPump handles inbound frames until the connection fails or ctx ends.
func (c *Client) readPump(ctx context.Context) {
	defer func() {
		c.hub.Unregister(c)
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxFrameSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.log.Warn().Err(err).Msg("websocket read")
			}
			return
		}

		var frame Frame
		if err := json.Unmarshal(data, &frame); err != nil {
			c.log.Debug().Err(err).Msg("malformed frame")
			c.hub.SendTo(c, errorFrame("malformed frame"))
			continue
		}

		c.handleFrame(ctx, frame)
	}
}

// writePump sends queued frames and keepalive pings.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case frame, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteJSON(frame); err != nil {
				c.log.Debug().Err(err).Msg("websocket write")
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *Client) handleFrame(ctx context.Context, frame Frame) {
	switch frame.Type {
	case FrameRecognitionResult:
		if frame.Result == nil {
			c.hub.SendTo(c, errorFrame("recognition_result without result"))
			return
		}
		c.assistant.HandleRecognition(ctx, *frame.Result)

	case FrameRecognitionError:
		if frame.Error == nil {
			c.hub.SendTo(c, errorFrame("recognition_error without error"))
			return
		}
		c.assistant.HandleRecognitionError(ctx, *frame.Error)

	case FrameText:
		reply := c.assistant.HandleTranscript(ctx, frame.Text)
		if !reply.Skipped {
			c.hub.SendTo(c, Frame{Type: FrameReply, Reply: &reply})
		}

	case FrameStartListening:
		c.assistant.StartListening()

	case FrameStopListening:
		c.assistant.StopListening()

	case FrameVoices:
		c.assistant.SetVoices(frame.Voices)

	default:
		c.log.Debug().Str("type", string(frame.Type)).Msg("unknown frame type")
		c.hub.SendTo(c, errorFrame("unknown frame type: "+string(frame.Type)))
	}
}
