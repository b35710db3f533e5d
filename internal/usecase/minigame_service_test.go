package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/riskibarqy/party-leaderboard/internal/domain/minigame"
	"github.com/riskibarqy/party-leaderboard/internal/platform/cache"
	"github.com/riskibarqy/party-leaderboard/internal/platform/id"
	"github.com/riskibarqy/party-leaderboard/internal/platform/logging"
)

func newTestMinigameService() *MinigameService {
	svc := NewMinigameService(cache.NewStore(time.Minute), id.NewSequenceGenerator("game"), logging.NewNop())
	svc.seed = func() uint64 { return 42 }
	return svc
}

func TestMinigameService_CreateAndGet(t *testing.T) {
	ctx := context.Background()
	svc := newTestMinigameService()

	session, err := svc.Create(ctx, 800, 600)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if session.ID != "game-1" || session.Seed != 42 {
		t.Fatalf("unexpected session %+v", session)
	}
	if session.State.Score != 0 || session.State.Width != 800 {
		t.Fatalf("unexpected initial state %+v", session.State)
	}

	got, err := svc.Get(ctx, session.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.State != session.State {
		t.Fatalf("get should return the same state")
	}

	if _, err := svc.Get(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := svc.Create(ctx, 10, 10); !errors.Is(err, ErrInvalidInput) || !errors.Is(err, minigame.ErrInvalidBounds) {
		t.Fatalf("expected invalid bounds, got %v", err)
	}
}

func TestMinigameService_StepAppliesInputOnce(t *testing.T) {
	ctx := context.Background()
	svc := newTestMinigameService()
	session, err := svc.Create(ctx, 800, 600)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	startX := session.State.Actor.X

	stepped, err := svc.Step(ctx, session.ID, minigame.Input{Right: true}, 3)
	if err != nil {
		t.Fatalf("step: %v", err)
	}
	if stepped.State.Actor.X != startX+minigame.StepDistance {
		t.Fatalf("expected one step to the right, got x=%v from %v", stepped.State.Actor.X, startX)
	}
	if stepped.State.Frames != 3 {
		t.Fatalf("expected 3 frames, got %v", stepped.State.Frames)
	}

	if _, err := svc.Step(ctx, session.ID, minigame.Input{}, 0); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("zero frames: expected ErrInvalidInput, got %v", err)
	}
	if _, err := svc.Step(ctx, session.ID, minigame.Input{}, MaxStepFrames+1); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("too many frames: expected ErrInvalidInput, got %v", err)
	}
}

func TestMinigameService_SameSeedSameRun(t *testing.T) {
	ctx := context.Background()
	a := newTestMinigameService()
	b := newTestMinigameService()

	run := func(svc *MinigameService) minigame.State {
		session, err := svc.Create(ctx, 800, 600)
		if err != nil {
			t.Fatalf("create: %v", err)
		}
		got, err := svc.Step(ctx, session.ID, minigame.Input{Jump: true}, MaxStepFrames)
		if err != nil {
			t.Fatalf("step: %v", err)
		}
		return got.State
	}

	if run(a) != run(b) {
		t.Fatalf("sessions with the same seed should evolve identically")
	}
}

func TestMinigameService_Reset(t *testing.T) {
	ctx := context.Background()
	svc := newTestMinigameService()
	session, err := svc.Create(ctx, 800, 600)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.Step(ctx, session.ID, minigame.Input{Left: true}, 10); err != nil {
		t.Fatalf("step: %v", err)
	}

	reset, err := svc.Reset(ctx, session.ID)
	if err != nil {
		t.Fatalf("reset: %v", err)
	}
	if reset.State != session.State {
		t.Fatalf("reset should restore the initial state")
	}
}

func TestMinigameService_End(t *testing.T) {
	ctx := context.Background()
	svc := newTestMinigameService()
	session, err := svc.Create(ctx, 800, 600)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	ended, err := svc.End(ctx, session.ID)
	if err != nil {
		t.Fatalf("end: %v", err)
	}
	if ended.ID != session.ID {
		t.Fatalf("unexpected ended session %+v", ended)
	}
	if _, err := svc.Get(ctx, session.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("ended session should be gone, got %v", err)
	}
	if _, err := svc.End(ctx, session.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("second end should be not found, got %v", err)
	}
	if _, err := svc.End(ctx, " "); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("blank id should be invalid, got %v", err)
	}
}
