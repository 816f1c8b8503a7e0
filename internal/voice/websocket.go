package voice

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	handshakeTimeout = 10 * time.Second
	writeTimeout     = 5 * time.Second
)

// wire message exchanged with the gateway
type message struct {
	Type           string            `json:"type"`
	AssistantID    string            `json:"assistantId,omitempty"`
	Metadata       map[string]string `json:"metadata,omitempty"`
	Role           string            `json:"role,omitempty"`
	Transcript     string            `json:"transcript,omitempty"`
	TranscriptType string            `json:"transcriptType,omitempty"`
	Error          string            `json:"error,omitempty"`
}

// WSClient speaks JSON messages to a realtime voice gateway over a
// websocket. Each call uses its own connection.
type WSClient struct {
	gatewayURL string
	publicKey  string
	dialer     websocket.Dialer

	connLock sync.Mutex
	conn     *websocket.Conn
	callDone chan struct{}

	events      chan CallEvent
	transcripts chan Transcript
	closed      chan struct{}
	closeOnce   sync.Once
}

// NewWSClient creates a client for gatewayURL. http(s) URLs are mapped
// to ws(s).
func NewWSClient(gatewayURL, publicKey string) *WSClient {
	u := strings.Replace(gatewayURL, "https://", "wss://", 1)
	u = strings.Replace(u, "http://", "ws://", 1)

	return &WSClient{
		gatewayURL:  u,
		publicKey:   publicKey,
		dialer:      websocket.Dialer{HandshakeTimeout: handshakeTimeout},
		events:      make(chan CallEvent),
		transcripts: make(chan Transcript),
		closed:      make(chan struct{}),
	}
}

func (c *WSClient) CallEvents() <-chan CallEvent    { return c.events }
func (c *WSClient) Transcripts() <-chan Transcript { return c.transcripts }

// Start dials the gateway and asks it to start the assistant.
func (c *WSClient) Start(ctx context.Context, cfg StartConfig) error {
	if c.gatewayURL == "" || c.publicKey == "" {
		return ErrNotConfigured
	}
	if cfg.AssistantID == "" {
		return fmt.Errorf("%w: missing assistant id", ErrNotConfigured)
	}

	c.connLock.Lock()
	active := c.conn != nil
	c.connLock.Unlock()
	if active {
		return ErrCallActive
	}

	header := http.Header{}
	header.Set("Authorization", "Bearer "+c.publicKey)

	conn, resp, err := c.dialer.DialContext(ctx, c.gatewayURL, header)
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	if err != nil {
		return fmt.Errorf("failed to connect to voice gateway: %w", err)
	}

	done := make(chan struct{})
	c.connLock.Lock()
	c.conn = conn
	c.callDone = done
	c.connLock.Unlock()

	start := message{
		Type:        "start",
		AssistantID: cfg.AssistantID,
		Metadata:    map[string]string{"scenario": cfg.Scenario},
	}
	if err := c.send(conn, start); err != nil {
		c.detach(conn)
		conn.Close()
		return fmt.Errorf("failed to start call: %w", err)
	}

	go c.readLoop(conn, done)
	return nil
}

// Stop ends the current call, if any. Events from the stopped call are
// not delivered afterwards.
func (c *WSClient) Stop() error {
	c.connLock.Lock()
	conn := c.conn
	c.connLock.Unlock()
	if conn == nil {
		return nil
	}

	if err := c.send(conn, message{Type: "stop"}); err != nil {
		slog.Debug("Failed to send stop to voice gateway", "error", err)
	}
	c.detach(conn)
	_ = conn.WriteControl(
		websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(writeTimeout),
	)
	return conn.Close()
}

// Close stops any call and releases the client.
func (c *WSClient) Close() error {
	err := c.Stop()
	c.closeOnce.Do(func() { close(c.closed) })
	return err
}

func (c *WSClient) send(conn *websocket.Conn, msg message) error {
	c.connLock.Lock()
	defer c.connLock.Unlock()

	_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	return conn.WriteJSON(msg)
}

// detach forgets conn and cancels delivery of its pending events.
func (c *WSClient) detach(conn *websocket.Conn) {
	c.connLock.Lock()
	defer c.connLock.Unlock()
	if c.conn != conn {
		return
	}
	c.conn = nil
	if c.callDone != nil {
		close(c.callDone)
		c.callDone = nil
	}
}

func (c *WSClient) readLoop(conn *websocket.Conn, done chan struct{}) {
	for {
		var msg message
		if err := conn.ReadJSON(&msg); err != nil {
			select {
			case <-done:
				return
			default:
			}
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				c.emitEvent(done, CallEvent{Type: EventCallEnd})
			} else {
				c.emitEvent(done, CallEvent{Type: EventError, Err: fmt.Errorf("voice connection lost: %w", err)})
			}
			c.detach(conn)
			conn.Close()
			return
		}

		switch msg.Type {
		case EventCallStart:
			c.emitEvent(done, CallEvent{Type: EventCallStart})
		case EventCallEnd:
			c.emitEvent(done, CallEvent{Type: EventCallEnd})
		case EventError:
			text := msg.Error
			if text == "" {
				text = "voice gateway error"
			}
			c.emitEvent(done, CallEvent{Type: EventError, Err: errors.New(text)})
		case "transcript", "transcript[transcriptType='final']":
			if msg.Transcript == "" {
				continue
			}
			role := RoleUser
			if msg.Role == RoleAssistant {
				role = RoleAssistant
			}
			c.emitTranscript(done, Transcript{
				Role:  role,
				Text:  msg.Transcript,
				Final: msg.TranscriptType == "final",
			})
		default:
			// speech-start, speech-end, volume updates
		}
	}
}

func (c *WSClient) emitEvent(done chan struct{}, ev CallEvent) {
	select {
	case c.events <- ev:
	case <-done:
	case <-c.closed:
	}
}

func (c *WSClient) emitTranscript(done chan struct{}, tr Transcript) {
	select {
	case c.transcripts <- tr:
	case <-done:
	case <-c.closed:
	}
}
