package websocket

import (
	"context"
	"errors"
	"fmt"

	"github.com/rocketscienceinc/tictactoe-timetravel/internal/service"
)

var errBadRequest = errors.New("bad request")

// handleConnect - switches the connection to another existing session when one is named.
func (that *Server) handleConnect(ctx context.Context, c *client, req *Request) (*service.View, error) {
	if req.SessionID == "" || req.SessionID == c.sessionID {
		return that.sessions.GetSession(ctx, c.sessionID)
	}

	view, err := that.sessions.GetSession(ctx, req.SessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to session: %w", err)
	}

	that.logger.Info("connection switched session", "from", c.sessionID, "to", req.SessionID)
	c.sessionID = req.SessionID

	return view, nil
}

func (that *Server) handleGameState(ctx context.Context, c *client, _ *Request) (*service.View, error) {
	return that.sessions.GetSession(ctx, c.sessionID)
}

func (that *Server) handleGameMove(ctx context.Context, c *client, req *Request) (*service.View, error) {
	if req.Cell == nil {
		return nil, fmt.Errorf("%w: cell is required", errBadRequest)
	}

	return that.sessions.ApplyMove(ctx, c.sessionID, *req.Cell)
}

func (that *Server) handleGameJump(ctx context.Context, c *client, req *Request) (*service.View, error) {
	if req.Move == nil {
		return nil, fmt.Errorf("%w: move is required", errBadRequest)
	}

	return that.sessions.JumpTo(ctx, c.sessionID, *req.Move)
}

func (that *Server) handleCounterClick(ctx context.Context, c *client, _ *Request) (*service.View, error) {
	return that.sessions.Click(ctx, c.sessionID)
}
