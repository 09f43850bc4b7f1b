package rest

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/rocketscienceinc/tictactoe-timetravel/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-timetravel/internal/service"
	"github.com/rocketscienceinc/tictactoe-timetravel/internal/tictactoe"
	"github.com/rocketscienceinc/tictactoe-timetravel/transport/payload"
)

type moveRequest struct {
	Cell *int `json:"cell"`
}

type jumpRequest struct {
	Move *int `json:"move"`
}

func (that *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	view, err := that.sessions.CreateSession(r.Context())
	if err != nil {
		that.writeError(w, r, err, nil)
		return
	}

	that.writeJSON(w, http.StatusCreated, payload.FromView(view, orderOf(r)))
}

func (that *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	view, err := that.sessions.GetSession(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		that.writeError(w, r, err, nil)
		return
	}

	that.writeJSON(w, http.StatusOK, payload.FromView(view, orderOf(r)))
}

func (that *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	if err := that.sessions.DeleteSession(r.Context(), mux.Vars(r)["id"]); err != nil {
		that.writeError(w, r, err, nil)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (that *Server) handleMove(w http.ResponseWriter, r *http.Request) {
	var req moveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Cell == nil {
		http.Error(w, "cell is required", http.StatusBadRequest)
		return
	}

	view, err := that.sessions.ApplyMove(r.Context(), mux.Vars(r)["id"], *req.Cell)
	if err != nil {
		that.writeError(w, r, err, view)
		return
	}

	that.writeJSON(w, http.StatusOK, payload.FromView(view, orderOf(r)))
}

func (that *Server) handleJump(w http.ResponseWriter, r *http.Request) {
	var req jumpRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Move == nil {
		http.Error(w, "move is required", http.StatusBadRequest)
		return
	}

	view, err := that.sessions.JumpTo(r.Context(), mux.Vars(r)["id"], *req.Move)
	if err != nil {
		that.writeError(w, r, err, view)
		return
	}

	that.writeJSON(w, http.StatusOK, payload.FromView(view, orderOf(r)))
}

func (that *Server) handleClick(w http.ResponseWriter, r *http.Request) {
	view, err := that.sessions.Click(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		that.writeError(w, r, err, nil)
		return
	}

	that.writeJSON(w, http.StatusOK, payload.CounterOf(view))
}

// writeError - rejected moves and jumps are routine: they answer 409 with the unchanged view.
func (that *Server) writeError(w http.ResponseWriter, r *http.Request, err error, view *service.View) {
	switch {
	case errors.Is(err, apperror.ErrSessionNotFound):
		http.Error(w, "session not found", http.StatusNotFound)
	case (errors.Is(err, apperror.ErrIllegalMove) || errors.Is(err, apperror.ErrIllegalJump)) && view != nil:
		that.writeJSON(w, http.StatusConflict, payload.Rejected(view, orderOf(r), err))
	default:
		that.logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}

func (that *Server) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(body); err != nil {
		that.logger.Error("failed to write response", "error", err)
	}
}

func orderOf(r *http.Request) tictactoe.Order {
	return tictactoe.ParseOrder(r.URL.Query().Get("order"))
}
