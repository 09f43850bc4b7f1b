package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/rocketscienceinc/tictactoe-timetravel/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-timetravel/internal/service"
	"github.com/rocketscienceinc/tictactoe-timetravel/internal/tictactoe"
	"github.com/rocketscienceinc/tictactoe-timetravel/transport/payload"
)

const (
	sessionCookie   = "user_session"
	shutdownTimeout = 5 * time.Second
)

type sessionService interface {
	CreateSession(ctx context.Context) (*service.View, error)
	GetSession(ctx context.Context, id string) (*service.View, error)
	ApplyMove(ctx context.Context, id string, cell int) (*service.View, error)
	JumpTo(ctx context.Context, id string, move int) (*service.View, error)
	Click(ctx context.Context, id string) (*service.View, error)
}

// client is the per-connection state. Only the connection's read loop touches it.
type client struct {
	conn      *websocket.Conn
	sessionID string
	order     tictactoe.Order
}

type handlerFunc func(ctx context.Context, c *client, req *Request) (*service.View, error)

type Server struct {
	logger    *slog.Logger
	sessions  sessionService
	upgrader  websocket.Upgrader
	cookieTTL time.Duration

	handlers map[string]handlerFunc
}

// New - cookieTTL should match the session store ttl; zero leaves the cookie without expiry.
func New(logger *slog.Logger, sessions sessionService, cookieTTL time.Duration) *Server {
	server := &Server{
		logger:   logger.With("component", "websocket"),
		sessions: sessions,
		upgrader: websocket.Upgrader{
			ReadBufferSize:   1024,
			WriteBufferSize:  1024,
			HandshakeTimeout: 10 * time.Second,
		},
		cookieTTL: cookieTTL,
		handlers:  make(map[string]handlerFunc),
	}

	server.handlers[actionConnect] = server.handleConnect
	server.handlers[actionGameState] = server.handleGameState
	server.handlers[actionGameMove] = server.handleGameMove
	server.handlers[actionGameJump] = server.handleGameJump
	server.handlers[actionCounterClick] = server.handleCounterClick

	return server
}

func (that *Server) Handler(ctx context.Context) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		that.upgradeToWebSocket(ctx, w, r)
	})

	return mux
}

// Start - starts WebSocket server.
func (that *Server) Start(ctx context.Context, port string) error {
	srv := &http.Server{
		Addr:        ":" + port,
		Handler:     that.Handler(ctx),
		ReadTimeout: 10 * time.Second,
		IdleTimeout: 30 * time.Second,
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			that.logger.Error("failed to shut down WebSocket server", "error", err)
		}
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

// upgradeToWebSocket - upgrades the connection to WebSocket.
func (that *Server) upgradeToWebSocket(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	log := that.logger.With("method", "upgradeConnection")

	sessionID, header, err := that.resolveSession(r)
	if err != nil {
		log.Error("failed to resolve session", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	conn, err := that.upgrader.Upgrade(w, r, header)
	if err != nil {
		log.Error("failed to upgrade connection", "error", err)
		return
	}

	defer conn.Close()

	log.Info("WebSocket connection established", "sessionID", sessionID)

	c := &client{conn: conn, sessionID: sessionID, order: tictactoe.OrderAsc}
	if err = that.handleMessages(ctx, c); err != nil {
		log.Error("error handling messages", "error", err)
	}
}

// resolveSession - reuses the session named by the cookie, or creates one and sets the cookie.
func (that *Server) resolveSession(r *http.Request) (string, http.Header, error) {
	log := that.logger.With("method", "resolveSession")

	if cookie, err := r.Cookie(sessionCookie); err == nil {
		if _, err = that.sessions.GetSession(r.Context(), cookie.Value); err == nil {
			log.Info("session cookie found", "cookie", cookie.Value)
			return cookie.Value, nil, nil
		}
	}

	view, err := that.sessions.CreateSession(r.Context())
	if err != nil {
		return "", nil, fmt.Errorf("failed to create session: %w", err)
	}

	cookie := &http.Cookie{
		Name:     sessionCookie,
		Value:    view.SessionID,
		Path:     "/ws",
		HttpOnly: true,
	}

	if that.cookieTTL > 0 {
		cookie.Expires = time.Now().Add(that.cookieTTL)
		cookie.MaxAge = int(that.cookieTTL.Seconds())
	}

	header := http.Header{}
	header.Add("Set-Cookie", cookie.String())

	log.Info("session cookie not found, new one created", "cookie", cookie.Value)

	return view.SessionID, header, nil
}

// handleMessages - processes messages from the client until it disconnects.
func (that *Server) handleMessages(ctx context.Context, c *client) error {
	log := that.logger.With("method", "handleMessages", "sessionID", c.sessionID)

	done := make(chan struct{})
	defer close(done)

	go func() {
		select {
		case <-ctx.Done():
			that.closeOnShutdown(c)
		case <-done:
		}
	}()

	for {
		var message Message
		if err := c.conn.ReadJSON(&message); err != nil {
			if ctx.Err() != nil || websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return nil
			}

			var syntaxErr *json.SyntaxError
			var typeErr *json.UnmarshalTypeError
			if errors.As(err, &syntaxErr) || errors.As(err, &typeErr) {
				log.Error("failed to unmarshal message", "error", err)
				if err = that.sendError(c, actionError, "malformed message"); err != nil {
					return err
				}
				continue
			}

			return fmt.Errorf("failed to read message: %w", err)
		}

		if err := that.processMessage(ctx, c, &message); err != nil {
			return err
		}
	}
}

// closeOnShutdown - sends a going-away close frame and closes the connection, which ends the read loop.
func (that *Server) closeOnShutdown(c *client) {
	frame := websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down")
	if err := c.conn.WriteControl(websocket.CloseMessage, frame, time.Now().Add(time.Second)); err != nil {
		that.logger.Debug("failed to send close frame", "sessionID", c.sessionID, "error", err)
	}

	if err := c.conn.Close(); err != nil {
		that.logger.Debug("failed to close connection", "sessionID", c.sessionID, "error", err)
	}
}

func (that *Server) processMessage(ctx context.Context, c *client, message *Message) error {
	log := that.logger.With("method", "processMessage", "action", message.Action)

	handler, ok := that.handlers[message.Action]
	if !ok {
		log.Error("unknown action")
		return that.sendError(c, actionError, "unknown action "+message.Action)
	}

	var req Request
	if len(message.Payload) > 0 {
		if err := json.Unmarshal(message.Payload, &req); err != nil {
			log.Error("failed to unmarshal payload", "error", err)
			return that.sendError(c, message.Action, "malformed payload")
		}
	}

	if req.Order != "" {
		c.order = tictactoe.ParseOrder(req.Order)
	}

	view, err := handler(ctx, c, &req)

	switch {
	case err == nil:
		return that.send(c, message.Action, payload.FromView(view, c.order))
	case view != nil && (errors.Is(err, apperror.ErrIllegalMove) || errors.Is(err, apperror.ErrIllegalJump)):
		return that.send(c, message.Action, payload.Rejected(view, c.order, err))
	case errors.Is(err, apperror.ErrSessionNotFound):
		return that.sendError(c, message.Action, "session not found")
	case errors.Is(err, errBadRequest):
		return that.sendError(c, message.Action, err.Error())
	default:
		log.Error("error processing message", "error", err)
		return that.sendError(c, message.Action, "internal error")
	}
}

func (that *Server) send(c *client, action string, body *payload.Session) error {
	raw, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal response: %w", err)
	}

	if err = c.conn.WriteJSON(Message{Action: action, Payload: raw}); err != nil {
		return fmt.Errorf("failed to write message: %w", err)
	}

	return nil
}

func (that *Server) sendError(c *client, action, reason string) error {
	return that.send(c, action, &payload.Session{ID: c.sessionID, Error: reason})
}
