package usecase

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strings"
	"sync"
	"time"

	"github.com/riskibarqy/party-leaderboard/internal/domain/minigame"
	"github.com/riskibarqy/party-leaderboard/internal/platform/cache"
	idgen "github.com/riskibarqy/party-leaderboard/internal/platform/id"
	"github.com/riskibarqy/party-leaderboard/internal/platform/logging"
)

// MaxStepFrames caps how far one request may advance a session.
const MaxStepFrames = 600

type MinigameSession struct {
	ID        string
	Seed      uint64
	State     minigame.State
	CreatedAt time.Time
}

type minigameSession struct {
	mu        sync.Mutex
	id        string
	seed      uint64
	world     *minigame.World
	createdAt time.Time
}

func (s *minigameSession) view() MinigameSession {
	return MinigameSession{
		ID:        s.id,
		Seed:      s.seed,
		State:     s.world.State(),
		CreatedAt: s.createdAt,
	}
}

// MinigameService hosts ball-juggling sessions. Idle sessions expire with the
// backing cache TTL.
type MinigameService struct {
	sessions *cache.Store
	ids      idgen.Generator
	logger   *logging.Logger
	now      func() time.Time
	seed     func() uint64
}

func NewMinigameService(sessions *cache.Store, ids idgen.Generator, logger *logging.Logger) *MinigameService {
	if logger == nil {
		logger = logging.Default()
	}
	if ids == nil {
		ids = idgen.NewRandomGenerator().WithPrefix("game_")
	}
	return &MinigameService{
		sessions: sessions,
		ids:      ids,
		logger:   logger.Named("minigame"),
		now:      time.Now,
		seed:     rand.Uint64,
	}
}

func (s *MinigameService) Create(ctx context.Context, width, height float64) (MinigameSession, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.MinigameService.Create")
	defer span.End()

	seed := s.seed()
	world, err := minigame.New(width, height, rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)))
	if err != nil {
		return MinigameSession{}, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}

	sessionID, err := s.ids.NewID()
	if err != nil {
		return MinigameSession{}, fmt.Errorf("generate session id: %w", err)
	}

	session := &minigameSession{
		id:        sessionID,
		seed:      seed,
		world:     world,
		createdAt: s.now().UTC(),
	}
	s.sessions.Set(ctx, sessionID, session)
	s.logger.DebugContext(ctx, "minigame session created", "session_id", sessionID, "width", width, "height", height)
	return session.view(), nil
}

func (s *MinigameService) Get(ctx context.Context, sessionID string) (MinigameSession, error) {
	session, err := s.lookup(ctx, sessionID)
	if err != nil {
		return MinigameSession{}, err
	}
	session.mu.Lock()
	defer session.mu.Unlock()
	return session.view(), nil
}

// Step applies the input once and then lets the world run for the given
// number of frames in sub-steps of at most one frame.
func (s *MinigameService) Step(ctx context.Context, sessionID string, in minigame.Input, frames float64) (MinigameSession, error) {
	if frames <= 0 || frames > MaxStepFrames {
		return MinigameSession{}, fmt.Errorf("%w: frames must be in (0, %d]", ErrInvalidInput, MaxStepFrames)
	}
	session, err := s.lookup(ctx, sessionID)
	if err != nil {
		return MinigameSession{}, err
	}

	session.mu.Lock()
	defer session.mu.Unlock()

	for remaining := frames; remaining > 0; {
		dt := min(remaining, 1)
		session.world.Step(in, dt)
		in = minigame.Input{}
		remaining -= dt
	}
	return session.view(), nil
}

func (s *MinigameService) Reset(ctx context.Context, sessionID string) (MinigameSession, error) {
	session, err := s.lookup(ctx, sessionID)
	if err != nil {
		return MinigameSession{}, err
	}

	session.mu.Lock()
	defer session.mu.Unlock()
	session.world.Reset()
	return session.view(), nil
}

// End drops a session and returns its final state.
func (s *MinigameService) End(ctx context.Context, sessionID string) (MinigameSession, error) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return MinigameSession{}, fmt.Errorf("%w: session id is required", ErrInvalidInput)
	}
	value, ok := s.sessions.Get(ctx, sessionID)
	if !ok {
		return MinigameSession{}, fmt.Errorf("%w: minigame session %s", ErrNotFound, sessionID)
	}
	session, ok := value.(*minigameSession)
	if !ok || !s.sessions.Delete(ctx, sessionID) {
		return MinigameSession{}, fmt.Errorf("%w: minigame session %s", ErrNotFound, sessionID)
	}

	session.mu.Lock()
	defer session.mu.Unlock()
	s.logger.DebugContext(ctx, "minigame session ended", "session_id", sessionID)
	return session.view(), nil
}

func (s *MinigameService) lookup(ctx context.Context, sessionID string) (*minigameSession, error) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return nil, fmt.Errorf("%w: session id is required", ErrInvalidInput)
	}
	value, ok := s.sessions.Touch(ctx, sessionID)
	if !ok {
		return nil, fmt.Errorf("%w: minigame session %s", ErrNotFound, sessionID)
	}
	session, ok := value.(*minigameSession)
	if !ok {
		return nil, fmt.Errorf("%w: minigame session %s", ErrNotFound, sessionID)
	}
	return session, nil
}
