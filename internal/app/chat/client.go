package chat

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"alumnilink/internal/app/entity"
	"alumnilink/internal/app/user"
	"alumnilink/internal/pkg/auth/jwt"
	"alumnilink/internal/pkg/errs"
	"alumnilink/internal/pkg/logx"
)

const (
	// timeout duration for writing to the WebSocket connection.
	writeWait = 10 * time.Second

	// maximum time allowed for the server to wait for a Pong message from the client.
	pongWait = 60 * time.Second

	// frequency at which the server sends a Ping message.
	pingPeriod = (pongWait * 9) / 10

	// maximum allowed size (in bytes) of a frame sent by the client.
	maxFrameSize = 8192

	// sendTimeout bounds the store work done for one inbound message.
	sendTimeout = 10 * time.Second

	// WsCloseCodeSessionKicked is a custom WebSocket Close Code (4000-4999 range)
	// telling the client its connection was dropped in favor of a newer one.
	WsCloseCodeSessionKicked = 4001

	// TokenRefreshWindow is how long before expiry the session token is refreshed.
	TokenRefreshWindow = 2 * time.Minute
)

// Sender appends a message to a conversation.
type Sender interface {
	Send(ctx context.Context, senderID, recipientID, text string) (entity.Message, error)
}

// Client is one open websocket connection of a signed-in user.
type Client struct {
	hub    *Hub
	sender Sender
	conn   *websocket.Conn

	user user.User

	// session is the payload of the token the connection was opened with.
	session     jwt.Payload
	secret      string
	tokenExpiry time.Time

	// send queues encoded frames for WritePump.
	send chan []byte

	// mu guards closed and the close code sent when send is closed.
	mu          sync.Mutex
	closed      bool
	closeCode   int
	closeReason string

	logger zerolog.Logger
}

// NewClient returns a Client for conn. secret signs refreshed session tokens.
func NewClient(hub *Hub, sender Sender, conn *websocket.Conn, u user.User, session jwt.Payload, secret string) *Client {
	expiry := time.Now().Add(jwt.SessionExpiration)
	if session.ExpiresAt > 0 {
		expiry = time.Unix(session.ExpiresAt, 0)
	}

	return &Client{
		hub:         hub,
		sender:      sender,
		conn:        conn,
		user:        u,
		session:     session,
		secret:      secret,
		tokenExpiry: expiry,
		send:        make(chan []byte, 256),
		closeCode:   websocket.CloseNormalClosure,
		logger: logx.Logger().With().
			Str("component", "Client").
			Str("user_id", u.ID).
			Logger(),
	}
}

// User returns the connected user.
func (c *Client) User() user.User { return c.user }

// ReadPump reads inbound frames until the connection fails, then unregisters.
func (c *Client) ReadPump() {
	defer c.cleanupOnDisconnect()

	c.conn.SetReadLimit(maxFrameSize)

	if err := c.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		c.logger.Error().Err(err).Msg("Failed to set read deadline")
		return
	}

	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Info().Err(err).Msg("Error reading frame (client close/going away)")
			}
			break
		}

		c.processInbound(data)
	}
}

func (c *Client) cleanupOnDisconnect() {
	c.logger.Info().Msg("Client connection cleanup starting.")

	c.hub.Unregister(c)

	if err := c.conn.Close(); err != nil {
		c.logger.Debug().Err(err).Msg("Client connection close error")
	}
}

func (c *Client) processInbound(data []byte) {
	var inbound struct {
		Type    FrameType       `json:"type"`
		Payload json.RawMessage `json:"payload,omitempty"`
		TempID  string          `json:"tempId,omitempty"`
	}

	if err := json.Unmarshal(data, &inbound); err != nil {
		c.logger.Warn().Err(err).Msg("Client sent invalid JSON")
		c.SendError(errs.NewError(errs.ErrInvalidJSONFormat))
		return
	}

	switch inbound.Type {
	case TypeSendMessage:
		c.handleSend(inbound.Payload, inbound.TempID)

	default:
		c.logger.Warn().Str("frame_type", string(inbound.Type)).Msg("Client sent unsupported frame type")
	}
}

func (c *Client) handleSend(raw json.RawMessage, tempID string) {
	var payload SendMessagePayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		c.logger.Warn().Err(err).Msg("Client sent invalid SEND_MESSAGE payload")
		c.SendError(errs.NewError(errs.ErrInvalidParams))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
	defer cancel()

	msg, err := c.sender.Send(ctx, c.user.ID, payload.RecipientID, payload.Text)
	if err != nil {
		c.SendError(err)
		return
	}

	if tempID != "" {
		c.sendFrame(TypeConfirm, ConfirmPayload{
			TempID:    tempID,
			MessageID: msg.ID,
			Timestamp: msg.Timestamp.UTC().Format(time.RFC3339Nano),
		})
	}
}

// WritePump writes queued frames and periodic pings until send is closed.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)

	defer func() {
		ticker.Stop()
		if err := c.conn.Close(); err != nil {
			c.logger.Debug().Err(err).Msg("Client connection close error in WritePump")
		}
	}()

	for {
		select {
		case data, ok := <-c.send:
			if !c.writeQueued(data, ok) {
				return
			}

		case <-ticker.C:
			if !c.writePing() {
				return
			}
			c.checkAndRefreshToken()
		}
	}
}

// writeQueued reports whether WritePump should continue.
func (c *Client) writeQueued(data []byte, ok bool) bool {
	if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		c.logger.Error().Err(err).Msg("Failed to set write deadline")
		return false
	}

	if !ok {
		c.mu.Lock()
		code, reason := c.closeCode, c.closeReason
		c.mu.Unlock()

		if err := c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(code, reason)); err != nil {
			c.logger.Debug().Err(err).Msg("Error writing close message")
		}
		return false
	}

	if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
		c.logger.Error().Err(err).Msg("Error writing frame")
		return false
	}

	return true
}

func (c *Client) writePing() bool {
	if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		c.logger.Error().Err(err).Msg("Failed to set write deadline on ping")
		return false
	}

	if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
		c.logger.Debug().Err(err).Msg("Error writing ping")
		return false
	}

	return true
}

// checkAndRefreshToken sends a fresh session token when the current one is
// about to expire.
func (c *Client) checkAndRefreshToken() {
	if time.Now().Before(c.tokenExpiry.Add(-TokenRefreshWindow)) {
		return
	}

	c.logger.Info().
		Time("current_expiry", c.tokenExpiry).
		Msg("Session token is nearing expiry, refreshing.")

	payload := &jwt.Payload{ID: c.session.ID, Role: c.session.Role}
	token, err := jwt.GenerateToken(payload, c.secret, jwt.SessionExpiration)
	if err != nil {
		c.logger.Error().Err(err).Msg("Failed to generate new token. Aborting refresh.")
		return
	}

	if err := c.sendFrame(TypeTokenUpdate, TokenUpdatePayload{Token: token}); err != nil {
		return
	}

	c.tokenExpiry = time.Now().Add(jwt.SessionExpiration)
}

// SendReady tells the client its connection is registered.
func (c *Client) SendReady() {
	c.sendFrame(TypeReady, ReadyPayload{CurrentUser: c.user})
}

// SendError reports err to the client as an ERROR frame.
func (c *Client) SendError(err error) {
	payload := ErrorPayload{Code: errs.ErrUnknown, Message: "Internal server error"}

	var customErr *errs.CustomError
	if errors.As(err, &customErr) {
		payload.Code = customErr.Code
		payload.Message = customErr.Message
	}

	c.sendFrame(TypeError, payload)
}

func (c *Client) sendFrame(frameType FrameType, payload any) error {
	frame, err := NewFrame(frameType, payload)
	if err != nil {
		c.logger.Error().Err(err).Str("frame_type", string(frameType)).Msg("Failed to build frame")
		return err
	}

	data, err := json.Marshal(frame)
	if err != nil {
		c.logger.Error().Err(err).Msg("Error marshaling frame for client")
		return err
	}

	if !c.enqueue(data) {
		return fmt.Errorf("client send queue unavailable")
	}
	return nil
}

// enqueue queues data without blocking. It reports false when the queue is
// full or closed.
func (c *Client) enqueue(data []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return false
	}

	select {
	case c.send <- data:
		return true
	default:
		c.logger.Warn().Int("queue_len", len(c.send)).Msg("Client send channel full, dropping frame")
		return false
	}
}

// closeSend closes the send queue once. WritePump then writes a close frame.
func (c *Client) closeSend() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}
	c.closed = true
	close(c.send)
}

// Kick closes the connection with WsCloseCodeSessionKicked.
func (c *Client) Kick(reason string) {
	c.logger.Warn().
		Int("close_code", WsCloseCodeSessionKicked).
		Str("reason", reason).
		Msg("Kicking client connection.")

	c.mu.Lock()
	if !c.closed {
		c.closeCode = WsCloseCodeSessionKicked
		c.closeReason = reason
	}
	c.mu.Unlock()

	c.closeSend()
}
