package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/rocketscienceinc/tictactoe-timetravel/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-timetravel/internal/entity"
	"github.com/rocketscienceinc/tictactoe-timetravel/internal/pkg"
	"github.com/rocketscienceinc/tictactoe-timetravel/internal/tictactoe"
)

type sessionRepo interface {
	CreateOrUpdate(ctx context.Context, session *entity.Session) error
	GetByID(ctx context.Context, id string) (*entity.Session, error)
	DeleteByID(ctx context.Context, id string) error
}

// View is what the service hands back to transports after every call.
type View struct {
	SessionID string             `json:"session_id"`
	Game      tictactoe.Snapshot `json:"game"`
	Counter   entity.Counter     `json:"counter"`
}

// sessionLock serializes calls for one session id. refs counts holders and waiters.
type sessionLock struct {
	mu   sync.Mutex
	refs int
}

type SessionService struct {
	logger *slog.Logger
	repo   sessionRepo
	newID  func() string

	locksMu sync.Mutex
	locks   map[string]*sessionLock
}

func NewSessionService(logger *slog.Logger, repo sessionRepo) *SessionService {
	return &SessionService{
		logger: logger.With("component", "session-service"),
		repo:   repo,
		newID:  pkg.GenerateSessionID,
		locks:  make(map[string]*sessionLock),
	}
}

func (that *SessionService) CreateSession(ctx context.Context) (*View, error) {
	session := entity.NewSession(that.newID())

	if err := that.repo.CreateOrUpdate(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	that.logger.Info("session created", "sessionID", session.ID)

	return newView(session, tictactoe.NewEngine()), nil
}

func (that *SessionService) GetSession(ctx context.Context, id string) (*View, error) {
	session, engine, err := that.load(ctx, id)
	if err != nil {
		return nil, err
	}

	return newView(session, engine), nil
}

// ApplyMove - plays cell for whoever is next. A rejected move returns the unchanged view
// together with an error wrapping apperror.ErrIllegalMove.
func (that *SessionService) ApplyMove(ctx context.Context, id string, cell int) (*View, error) {
	log := that.logger.With("method", "ApplyMove", "sessionID", id, "cell", cell)

	return that.update(ctx, id, func(_ *entity.Session, engine *tictactoe.Engine) error {
		snapshot, err := engine.ApplyMove(cell)
		if err != nil {
			log.Debug("move rejected", "error", err)
			return err
		}

		log.Debug("move accepted", "move", snapshot.CurrentMove, "status", snapshot.Status.Kind)
		return nil
	})
}

func (that *SessionService) JumpTo(ctx context.Context, id string, move int) (*View, error) {
	log := that.logger.With("method", "JumpTo", "sessionID", id, "move", move)

	return that.update(ctx, id, func(_ *entity.Session, engine *tictactoe.Engine) error {
		if _, err := engine.JumpTo(move); err != nil {
			log.Debug("jump rejected", "error", err)
			return err
		}

		return nil
	})
}

func (that *SessionService) Click(ctx context.Context, id string) (*View, error) {
	return that.update(ctx, id, func(session *entity.Session, _ *tictactoe.Engine) error {
		session.Counter.Click()
		return nil
	})
}

func (that *SessionService) DeleteSession(ctx context.Context, id string) error {
	unlock := that.lock(id)
	defer unlock()

	if err := that.repo.DeleteByID(ctx, id); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}

	that.logger.Info("session deleted", "sessionID", id)

	return nil
}

// update - runs apply against a freshly loaded session and saves it only when apply accepts.
func (that *SessionService) update(ctx context.Context, id string, apply func(*entity.Session, *tictactoe.Engine) error) (*View, error) {
	unlock := that.lock(id)
	defer unlock()

	session, engine, err := that.load(ctx, id)
	if err != nil {
		return nil, err
	}

	if err = apply(session, engine); err != nil {
		if isRejection(err) {
			return newView(session, engine), err
		}
		return nil, err
	}

	session.History = engine.History()
	session.CurrentMove = engine.CurrentMove()

	if err = that.repo.CreateOrUpdate(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to save session: %w", err)
	}

	return newView(session, engine), nil
}

func (that *SessionService) load(ctx context.Context, id string) (*entity.Session, *tictactoe.Engine, error) {
	session, err := that.repo.GetByID(ctx, id)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get session: %w", err)
	}

	engine, err := tictactoe.Restore(session.History, session.CurrentMove)
	if err != nil {
		that.logger.Error("stored session is corrupt", "sessionID", id, "error", err)
		return nil, nil, fmt.Errorf("failed to restore game: %w", err)
	}

	return session, engine, nil
}

// lock - takes the lock for id. The entry is dropped once the last holder unlocks,
// so ids that never reach a session do not accumulate.
func (that *SessionService) lock(id string) func() {
	that.locksMu.Lock()
	entry, ok := that.locks[id]
	if !ok {
		entry = &sessionLock{}
		that.locks[id] = entry
	}
	entry.refs++
	that.locksMu.Unlock()

	entry.mu.Lock()

	return func() {
		entry.mu.Unlock()

		that.locksMu.Lock()
		entry.refs--
		if entry.refs == 0 {
			delete(that.locks, id)
		}
		that.locksMu.Unlock()
	}
}

func isRejection(err error) bool {
	return errors.Is(err, apperror.ErrIllegalMove) || errors.Is(err, apperror.ErrIllegalJump)
}

func newView(session *entity.Session, engine *tictactoe.Engine) *View {
	return &View{
		SessionID: session.ID,
		Game:      engine.Snapshot(),
		Counter:   session.Counter,
	}
}
