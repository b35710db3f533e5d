package usecase

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/riskibarqy/party-leaderboard/internal/domain/leaderboard"
	"github.com/riskibarqy/party-leaderboard/internal/domain/roster"
	"github.com/riskibarqy/party-leaderboard/internal/platform/logging"
	"github.com/sourcegraph/conc/pool"
	"golang.org/x/sync/singleflight"
)

const (
	SourceCache = "cache"
	SourceStore = "store"

	defaultResolveWorkers = 4
	defaultLoadRetryMin   = time.Second
	defaultLoadRetryMax   = 30 * time.Second
	reloadKey             = "reload"
)

// SnapshotCache persists the last committed roster for the first paint after
// a restart.
type SnapshotCache interface {
	Load(ctx context.Context) (roster.Roster, bool, error)
	Save(ctx context.Context, r roster.Roster) error
}

// PeopleDirectory lists everyone who may be put on a team.
type PeopleDirectory interface {
	People() []roster.Person
}

// Snapshot is an immutable view of the roster published after every change.
// Receivers must not modify its slices or maps.
type Snapshot struct {
	Version    uint64
	Loaded     bool
	Source     string
	Approved   []roster.Team
	Drafts     []roster.Team
	Standings  []leaderboard.Standing
	Highlights map[string]Highlight
	UpdatedAt  time.Time
}

type SyncEngineConfig struct {
	Clock             Clock
	HighlightDuration time.Duration
	// ResolveWorkers bounds concurrent identity lookups during draft submission.
	ResolveWorkers int
	// LoadRetryMin and LoadRetryMax bound the backoff between load attempts
	// while the store has never been reached.
	LoadRetryMin time.Duration
	LoadRetryMax time.Duration
}

// DraftSlot is one requested slot of a draft submission. A blank name leaves
// the slot empty.
type DraftSlot struct {
	Name      string
	AvatarURL string
}

type DraftSubmission struct {
	Title         string
	SubmitterName string
	Players       []DraftSlot
	// CaptainSlot must point at a named slot.
	CaptainSlot int
}

// SyncEngine owns the in-memory roster and reconciles it with the shared
// team store. Mutations are applied and published locally first, then
// committed remotely with the lock released. A failed commit triggers a full
// reload and the error is returned to the caller.
type SyncEngine struct {
	store      roster.Store
	cache      SnapshotCache
	directory  PeopleDirectory
	logger     *logging.Logger
	clock      Clock
	highlights *HighlightScheduler
	workers    int
	retryMin   time.Duration
	retryMax   time.Duration
	reloads    singleflight.Group

	mu      sync.Mutex
	state   roster.Roster
	loaded  bool
	source  string
	version uint64
	current Snapshot

	obsMu     sync.Mutex
	observers map[uint64]chan Snapshot
	nextObs   uint64

	subMu       sync.Mutex
	unsubscribe func()

	saveMu       sync.Mutex
	savedVersion uint64

	runCtx    context.Context
	cancelRun context.CancelFunc
	closed    atomic.Bool
	emptySeq  atomic.Uint64
}

func NewSyncEngine(
	store roster.Store,
	cache SnapshotCache,
	directory PeopleDirectory,
	logger *logging.Logger,
	cfg SyncEngineConfig,
) *SyncEngine {
	if logger == nil {
		logger = logging.Default()
	}
	clock := cfg.Clock
	if clock == nil {
		clock = SystemClock()
	}
	workers := cfg.ResolveWorkers
	if workers <= 0 {
		workers = defaultResolveWorkers
	}
	retryMin, retryMax := cfg.LoadRetryMin, cfg.LoadRetryMax
	if retryMin <= 0 {
		retryMin = defaultLoadRetryMin
	}
	if retryMax < retryMin {
		retryMax = max(defaultLoadRetryMax, retryMin)
	}

	runCtx, cancel := context.WithCancel(context.Background())
	e := &SyncEngine{
		store:     store,
		cache:     cache,
		directory: directory,
		logger:    logger.Named("sync"),
		clock:     clock,
		workers:   workers,
		retryMin:  retryMin,
		retryMax:  retryMax,
		observers: make(map[uint64]chan Snapshot),
		runCtx:    runCtx,
		cancelRun: cancel,
	}
	e.highlights = NewHighlightScheduler(clock, cfg.HighlightDuration, e.onHighlightExpired)
	e.current = Snapshot{
		Standings:  []leaderboard.Standing{},
		Highlights: map[string]Highlight{},
		UpdatedAt:  clock.Now(),
	}
	return e
}

// Start paints from the snapshot cache, then loads the authoritative roster
// and subscribes to store changes. An unreachable store leaves the roster
// unknown and is not an error: loading is retried in the background with
// backoff until it succeeds or the engine is closed.
func (e *SyncEngine) Start(ctx context.Context) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.SyncEngine.Start")
	defer span.End()

	if err := e.guard(); err != nil {
		return err
	}

	if e.cache != nil {
		cached, ok, err := e.cache.Load(ctx)
		switch {
		case err != nil:
			e.logger.WarnContext(ctx, "snapshot cache unreadable", "error", err)
		case ok:
			e.mu.Lock()
			if !e.loaded {
				e.state = cached.Clone()
				e.source = SourceCache
				e.publishLocked()
			}
			e.mu.Unlock()
			e.logger.InfoContext(ctx, "painted roster from snapshot cache",
				"approved", len(cached.Approved),
				"drafts", len(cached.Drafts),
			)
		}
	}

	if err := e.Reload(ctx); err != nil {
		e.logger.WarnContext(ctx, "initial roster load failed, roster stays unknown", "error", err)
	}
	if !e.ready() {
		go e.retryLoad()
	}
	return nil
}

// ready reports whether the roster has been read from the store and the
// change feed is attached.
func (e *SyncEngine) ready() bool {
	e.mu.Lock()
	loaded := e.loaded && e.source == SourceStore
	e.mu.Unlock()

	e.subMu.Lock()
	defer e.subMu.Unlock()
	return loaded && e.unsubscribe != nil
}

func (e *SyncEngine) retryLoad() {
	delay := e.retryMin
	for {
		timer := time.NewTimer(delay)
		select {
		case <-e.runCtx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}
		if e.ready() {
			return
		}

		err := e.Reload(e.runCtx)
		switch {
		case e.ready():
			e.logger.Info("roster loaded after retry")
			return
		case e.closed.Load():
			return
		case err != nil:
			e.logger.Warn("roster load retry failed", "retry_in", delay, "error", err)
		default:
			e.logger.Warn("change feed not attached, retrying", "retry_in", delay)
		}
		delay = min(delay*2, e.retryMax)
	}
}

// Reload replaces both partitions with a fresh read of the store. Concurrent
// calls share one read. On failure the previous state is kept.
func (e *SyncEngine) Reload(ctx context.Context) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.SyncEngine.Reload")
	defer span.End()

	if err := e.guard(); err != nil {
		return err
	}

	_, err, _ := e.reloads.Do(reloadKey, func() (any, error) {
		return nil, e.reload(ctx)
	})
	if err != nil {
		return err
	}
	e.ensureSubscribed(ctx)
	return nil
}

func (e *SyncEngine) reload(ctx context.Context) error {
	var approved, drafts []roster.Team

	p := pool.New().WithContext(ctx).WithCancelOnError().WithFirstError()
	p.Go(func(ctx context.Context) error {
		teams, err := e.store.FetchTeams(ctx, roster.StatusApproved)
		if err != nil {
			return fmt.Errorf("fetch approved teams: %w", err)
		}
		approved = teams
		return nil
	})
	p.Go(func(ctx context.Context) error {
		teams, err := e.store.FetchTeams(ctx, roster.StatusDraft)
		if err != nil {
			return fmt.Errorf("fetch draft teams: %w", err)
		}
		drafts = teams
		return nil
	})
	if err := p.Wait(); err != nil {
		return err
	}
	if e.closed.Load() {
		return ErrClosed
	}

	e.mu.Lock()
	e.state = roster.Roster{
		Approved: e.carryPlaceholders(e.state.Approved, roster.CloneTeams(approved)),
		Drafts:   e.carryPlaceholders(e.state.Drafts, roster.CloneTeams(drafts)),
	}
	e.loaded = true
	e.source = SourceStore
	e.publishLocked()
	e.mu.Unlock()

	e.persist(ctx)
	return nil
}

func (e *SyncEngine) ensureSubscribed(ctx context.Context) {
	e.subMu.Lock()
	defer e.subMu.Unlock()

	if e.unsubscribe != nil || e.closed.Load() {
		return
	}
	unsubscribe, err := e.store.SubscribeToChanges(e.runCtx, e.handleRemoteChange)
	if err != nil {
		e.logger.WarnContext(ctx, "subscribe to store changes failed, retrying on next reload", "error", err)
		return
	}
	e.unsubscribe = unsubscribe
}

// handleRemoteChange replaces the approved partition with the store's view and
// highlights every team whose total moved. Drafts are not part of the feed.
func (e *SyncEngine) handleRemoteChange(previous, current []roster.Team) {
	if e.closed.Load() {
		return
	}
	before := leaderboard.Totals(previous)

	e.mu.Lock()
	for _, team := range current {
		old, ok := before[team.StoreID]
		if !ok {
			continue
		}
		e.highlightLocked(team.StoreID, old, leaderboard.TotalScore(team))
	}
	e.state.Approved = e.carryPlaceholders(e.state.Approved, roster.CloneTeams(current))
	e.loaded = true
	e.source = SourceStore
	e.publishLocked()
	e.mu.Unlock()

	e.persist(e.runCtx)
}

// UpdateScore sets the score of a filled slot. Unparseable input republishes
// the last good state and returns a validation error.
func (e *SyncEngine) UpdateScore(ctx context.Context, storeID string, slot int, raw string) error {
	ctx, span := startTeamSpan(ctx, "usecase.SyncEngine.UpdateScore", storeID, slot)
	defer span.End()

	if err := e.guard(); err != nil {
		return err
	}
	score, parseErr := roster.ParseScore(raw)

	e.mu.Lock()
	if parseErr != nil {
		e.publishLocked()
		e.mu.Unlock()
		return fmt.Errorf("%w: %w", ErrInvalidInput, parseErr)
	}
	team, err := e.slotLocked(storeID, slot)
	if err != nil {
		e.mu.Unlock()
		return err
	}
	player := team.Players[slot]
	if player.IsEmpty() {
		e.mu.Unlock()
		return fmt.Errorf("%w: slot %d of team %s has no player", ErrMissingReference, slot, storeID)
	}
	if player.Score == score {
		e.mu.Unlock()
		return nil
	}

	before := leaderboard.TotalScore(*team)
	team.Players[slot].Score = score
	if team.Status == roster.StatusApproved {
		e.highlightLocked(storeID, before, leaderboard.TotalScore(*team))
	}
	e.publishLocked()
	e.mu.Unlock()

	if err := e.store.UpdateSlotScore(ctx, player.SlotLinkID, score); err != nil {
		return e.fail(ctx, "update score", err, false)
	}
	e.persist(ctx)
	return nil
}

// RemovePlayer empties a slot. The captain is cleared when the removed player
// held it.
func (e *SyncEngine) RemovePlayer(ctx context.Context, storeID string, slot int) error {
	ctx, span := startTeamSpan(ctx, "usecase.SyncEngine.RemovePlayer", storeID, slot)
	defer span.End()

	if err := e.guard(); err != nil {
		return err
	}

	e.mu.Lock()
	team, err := e.slotLocked(storeID, slot)
	if err != nil {
		e.mu.Unlock()
		return err
	}
	player := team.Players[slot]
	if player.IsEmpty() {
		e.mu.Unlock()
		return fmt.Errorf("%w: slot %d of team %s has no player", ErrMissingReference, slot, storeID)
	}
	wasCaptain := team.CaptainID != "" && team.CaptainID == player.Identity
	team.Players[slot] = roster.EmptyPlayer(e.placeholderID(storeID, slot), slot)
	if wasCaptain {
		team.CaptainID = ""
	}
	e.publishLocked()
	e.mu.Unlock()

	if err := e.store.DeleteSlotAssignment(ctx, player.SlotLinkID); err != nil {
		return e.fail(ctx, "remove player", err, true)
	}
	if wasCaptain {
		if err := e.store.SetCaptain(ctx, storeID, ""); err != nil {
			return e.fail(ctx, "clear captain", err, true)
		}
	}
	e.persist(ctx)
	return nil
}

// AddPlayer resolves the person's identity and links it to an empty slot.
// The slot is only filled locally once the store has accepted the link. The
// duplicate-name check runs before the remote calls, so two concurrent adds
// of the same name can both link it.
func (e *SyncEngine) AddPlayer(ctx context.Context, storeID string, slot int, name, avatarURL string) (roster.Player, error) {
	ctx, span := startTeamSpan(ctx, "usecase.SyncEngine.AddPlayer", storeID, slot)
	defer span.End()

	if err := e.guard(); err != nil {
		return roster.Player{}, err
	}
	name = strings.TrimSpace(name)
	avatarURL = strings.TrimSpace(avatarURL)
	if name == "" {
		return roster.Player{}, fmt.Errorf("%w: player name is required", ErrInvalidInput)
	}

	e.mu.Lock()
	team, err := e.slotLocked(storeID, slot)
	if err != nil {
		e.mu.Unlock()
		return roster.Player{}, err
	}
	if !team.Players[slot].IsEmpty() {
		e.mu.Unlock()
		return roster.Player{}, fmt.Errorf("%w: slot %d of team %s is taken", ErrInvalidInput, slot, storeID)
	}
	if _, taken := e.state.AssignedNames()[name]; taken {
		e.mu.Unlock()
		return roster.Player{}, fmt.Errorf("%w: %s is already on a team", ErrInvalidInput, name)
	}
	e.mu.Unlock()

	identity, err := e.store.GetOrCreatePlayerIdentity(ctx, name, avatarURL)
	if err != nil {
		return roster.Player{}, e.fail(ctx, "resolve player identity", err, true)
	}
	linkID, err := e.store.CreateSlotAssignment(ctx, storeID, identity, slot)
	if err != nil {
		return roster.Player{}, e.fail(ctx, "assign player", err, true)
	}

	player := roster.Player{
		Identity:    identity,
		SlotLinkID:  linkID,
		DisplayName: name,
		AvatarURL:   avatarURL,
		GameSlot:    slot,
	}

	e.mu.Lock()
	if team, err := e.slotLocked(storeID, slot); err == nil {
		team.Players[slot] = player
		e.publishLocked()
	}
	e.mu.Unlock()

	e.persist(ctx)
	return player, nil
}

// MovePlayer moves a player to another slot of the same team, swapping with
// the occupant when the destination is filled.
func (e *SyncEngine) MovePlayer(ctx context.Context, storeID string, from, to int) error {
	ctx, span := startTeamSpan(ctx, "usecase.SyncEngine.MovePlayer", storeID, from)
	defer span.End()

	if err := e.guard(); err != nil {
		return err
	}

	e.mu.Lock()
	team, err := e.slotLocked(storeID, from)
	if err == nil && !team.IsValidSlot(to) {
		err = fmt.Errorf("%w: slot %d is out of range", ErrInvalidInput, to)
	}
	if err != nil {
		e.mu.Unlock()
		return err
	}
	if from == to {
		e.mu.Unlock()
		return nil
	}

	src, dst := team.Players[from], team.Players[to]
	if src.IsEmpty() {
		e.mu.Unlock()
		return fmt.Errorf("%w: slot %d of team %s has no player", ErrMissingReference, from, storeID)
	}

	swap := !dst.IsEmpty()
	if swap {
		dst.GameSlot = from
		team.Players[from] = dst
	} else {
		team.Players[from] = roster.EmptyPlayer(e.placeholderID(storeID, from), from)
	}
	src.GameSlot = to
	team.Players[to] = src
	e.publishLocked()
	e.mu.Unlock()

	if swap {
		err = e.store.SwapSlotAssignments(ctx, src.SlotLinkID, dst.SlotLinkID)
	} else {
		err = e.store.MoveSlotAssignment(ctx, src.SlotLinkID, to)
	}
	if err != nil {
		return e.fail(ctx, "move player", err, true)
	}
	e.persist(ctx)
	return nil
}

func (e *SyncEngine) SetCaptain(ctx context.Context, storeID string, slot int) error {
	ctx, span := startTeamSpan(ctx, "usecase.SyncEngine.SetCaptain", storeID, slot)
	defer span.End()

	if err := e.guard(); err != nil {
		return err
	}

	e.mu.Lock()
	team, err := e.slotLocked(storeID, slot)
	if err != nil {
		e.mu.Unlock()
		return err
	}
	player := team.Players[slot]
	if player.IsEmpty() {
		e.mu.Unlock()
		return fmt.Errorf("%w: captain slot %d is empty", ErrInvalidInput, slot)
	}
	if team.CaptainID == player.Identity {
		e.mu.Unlock()
		return nil
	}
	team.CaptainID = player.Identity
	e.publishLocked()
	e.mu.Unlock()

	if err := e.store.SetCaptain(ctx, storeID, player.Identity); err != nil {
		return e.fail(ctx, "set captain", err, true)
	}
	e.persist(ctx)
	return nil
}

func (e *SyncEngine) ClearCaptain(ctx context.Context, storeID string) error {
	ctx, span := startTeamSpan(ctx, "usecase.SyncEngine.ClearCaptain", storeID, -1)
	defer span.End()

	if err := e.guard(); err != nil {
		return err
	}

	e.mu.Lock()
	team, err := e.teamLocked(storeID)
	if err != nil {
		e.mu.Unlock()
		return err
	}
	if team.CaptainID == "" {
		e.mu.Unlock()
		return nil
	}
	team.CaptainID = ""
	e.publishLocked()
	e.mu.Unlock()

	if err := e.store.SetCaptain(ctx, storeID, ""); err != nil {
		return e.fail(ctx, "clear captain", err, true)
	}
	e.persist(ctx)
	return nil
}

// RenameTeam trims the title. A blank or unchanged title is ignored.
func (e *SyncEngine) RenameTeam(ctx context.Context, storeID, title string) error {
	ctx, span := startTeamSpan(ctx, "usecase.SyncEngine.RenameTeam", storeID, -1)
	defer span.End()

	if err := e.guard(); err != nil {
		return err
	}
	title = strings.TrimSpace(title)

	e.mu.Lock()
	team, err := e.teamLocked(storeID)
	if err != nil {
		e.mu.Unlock()
		return err
	}
	if title == "" || title == team.Title {
		e.mu.Unlock()
		return nil
	}
	team.Title = title
	e.publishLocked()
	e.mu.Unlock()

	if err := e.store.UpdateTeamTitle(ctx, storeID, title); err != nil {
		return e.fail(ctx, "rename team", err, true)
	}
	e.persist(ctx)
	return nil
}

// DeleteTeam removes a team from whichever partition holds it.
func (e *SyncEngine) DeleteTeam(ctx context.Context, storeID string) error {
	ctx, span := startTeamSpan(ctx, "usecase.SyncEngine.DeleteTeam", storeID, -1)
	defer span.End()

	if err := e.guard(); err != nil {
		return err
	}

	e.mu.Lock()
	if _, err := e.teamLocked(storeID); err != nil {
		e.mu.Unlock()
		return err
	}
	e.removeLocked(storeID)
	e.highlights.Cancel(storeID)
	e.publishLocked()
	e.mu.Unlock()

	if err := e.store.DeleteTeam(ctx, storeID); err != nil {
		return e.fail(ctx, "delete team", err, true)
	}
	e.logger.InfoContext(ctx, "team deleted", "team_id", storeID)
	e.persist(ctx)
	return nil
}

// SubmitDraft validates a submission, creates it as a draft team and reloads
// the roster. It returns the store id of the new draft.
func (e *SyncEngine) SubmitDraft(ctx context.Context, sub DraftSubmission) (string, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.SyncEngine.SubmitDraft")
	defer span.End()

	if err := e.guard(); err != nil {
		return "", err
	}
	sub, err := e.validateDraft(sub)
	if err != nil {
		return "", err
	}

	identities, err := e.resolveIdentities(ctx, sub.Players)
	if err != nil {
		return "", e.fail(ctx, "resolve draft identities", err, true)
	}

	assignments := make([]roster.SlotAssignment, 0, len(identities))
	for slot, p := range sub.Players {
		if p.Name == "" {
			continue
		}
		assignments = append(assignments, roster.SlotAssignment{Identity: identities[slot], GameSlot: slot})
	}

	storeID, err := e.store.CreateTeam(ctx, roster.NewTeam{
		Title:         sub.Title,
		SubmitterName: sub.SubmitterName,
		Status:        roster.StatusDraft,
		Assignments:   assignments,
	})
	if err != nil {
		return "", e.fail(ctx, "create draft", err, true)
	}
	if err := e.store.SetCaptain(ctx, storeID, identities[sub.CaptainSlot]); err != nil {
		return storeID, e.fail(ctx, "set draft captain", err, true)
	}

	e.logger.InfoContext(ctx, "draft submitted",
		"team_id", storeID,
		"title", sub.Title,
		"submitter", sub.SubmitterName,
		"players", len(assignments),
	)
	if err := e.Reload(ctx); err != nil {
		e.logger.WarnContext(ctx, "reload after draft submission failed", "team_id", storeID, "error", err)
	}
	return storeID, nil
}

func (e *SyncEngine) validateDraft(sub DraftSubmission) (DraftSubmission, error) {
	sub.Title = strings.TrimSpace(sub.Title)
	sub.SubmitterName = strings.TrimSpace(sub.SubmitterName)
	if sub.Title == "" {
		return sub, fmt.Errorf("%w: team title is required", ErrInvalidInput)
	}
	if sub.SubmitterName == "" {
		return sub, fmt.Errorf("%w: submitter name is required", ErrInvalidInput)
	}
	if len(sub.Players) > roster.DraftSlots {
		return sub, fmt.Errorf("%w: a draft has at most %d players", ErrInvalidInput, roster.DraftSlots)
	}

	players := make([]DraftSlot, len(sub.Players))
	seen := make(map[string]struct{}, len(sub.Players))
	for i, p := range sub.Players {
		p.Name = strings.TrimSpace(p.Name)
		p.AvatarURL = strings.TrimSpace(p.AvatarURL)
		players[i] = p
		if p.Name == "" {
			continue
		}
		if _, dup := seen[p.Name]; dup {
			return sub, fmt.Errorf("%w: %s is listed twice", ErrInvalidInput, p.Name)
		}
		seen[p.Name] = struct{}{}
	}
	sub.Players = players
	if len(seen) == 0 {
		return sub, fmt.Errorf("%w: a draft needs at least one player", ErrInvalidInput)
	}
	if sub.CaptainSlot < 0 || sub.CaptainSlot >= len(players) || players[sub.CaptainSlot].Name == "" {
		return sub, fmt.Errorf("%w: captain must be one of the listed players", ErrInvalidInput)
	}

	e.mu.Lock()
	assigned := e.state.AssignedNames()
	e.mu.Unlock()
	for name := range seen {
		if _, taken := assigned[name]; taken {
			return sub, fmt.Errorf("%w: %s is already on a team", ErrInvalidInput, name)
		}
	}
	return sub, nil
}

// resolveIdentities looks up or creates an identity for every named slot on a
// bounded worker pool. The result is keyed by slot index.
func (e *SyncEngine) resolveIdentities(ctx context.Context, players []DraftSlot) (map[int]string, error) {
	workerCount := min(e.workers, len(players))
	workerPool, err := ants.NewPool(max(workerCount, 1))
	if err != nil {
		return nil, fmt.Errorf("create worker pool: %w", err)
	}
	defer workerPool.Release()

	var (
		mu       sync.Mutex
		firstErr error
		workers  sync.WaitGroup
	)
	out := make(map[int]string, len(players))
	for slot, p := range players {
		if p.Name == "" {
			continue
		}
		workers.Add(1)
		if err := workerPool.Submit(func() {
			defer workers.Done()

			identity, err := e.store.GetOrCreatePlayerIdentity(ctx, p.Name, p.AvatarURL)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				if firstErr == nil {
					firstErr = fmt.Errorf("resolve %s: %w", p.Name, err)
				}
				return
			}
			out[slot] = identity
		}); err != nil {
			workers.Done()
			workers.Wait()
			return nil, fmt.Errorf("submit identity lookup: %w", err)
		}
	}
	workers.Wait()

	if firstErr != nil {
		return nil, firstErr
	}
	return out, nil
}

// ApproveDraft moves a draft onto the leaderboard under the same store id.
func (e *SyncEngine) ApproveDraft(ctx context.Context, storeID string) error {
	ctx, span := startTeamSpan(ctx, "usecase.SyncEngine.ApproveDraft", storeID, -1)
	defer span.End()

	if err := e.guard(); err != nil {
		return err
	}

	e.mu.Lock()
	team, err := e.teamLocked(storeID)
	if err != nil {
		e.mu.Unlock()
		return err
	}
	if team.Status != roster.StatusDraft {
		e.mu.Unlock()
		return fmt.Errorf("%w: team %s is not a draft", ErrInvalidInput, storeID)
	}
	approved := promote(*team)
	e.removeLocked(storeID)
	e.state.Approved = roster.AssignLocalIDs(append(e.state.Approved, approved), roster.StatusApproved)
	e.publishLocked()
	e.mu.Unlock()

	if err := e.store.SetTeamStatus(ctx, storeID, roster.StatusApproved); err != nil {
		return e.fail(ctx, "approve draft", err, true)
	}
	e.logger.InfoContext(ctx, "draft approved", "team_id", storeID)
	if err := e.Reload(ctx); err != nil {
		e.logger.WarnContext(ctx, "reload after approval failed", "team_id", storeID, "error", err)
	}
	return nil
}

func (e *SyncEngine) DenyDraft(ctx context.Context, storeID string) error {
	ctx, span := startTeamSpan(ctx, "usecase.SyncEngine.DenyDraft", storeID, -1)
	defer span.End()

	if err := e.guard(); err != nil {
		return err
	}

	e.mu.Lock()
	team, err := e.teamLocked(storeID)
	if err != nil {
		e.mu.Unlock()
		return err
	}
	if team.Status != roster.StatusDraft {
		e.mu.Unlock()
		return fmt.Errorf("%w: team %s is not a draft", ErrInvalidInput, storeID)
	}
	e.removeLocked(storeID)
	e.publishLocked()
	e.mu.Unlock()

	if err := e.store.DeleteTeam(ctx, storeID); err != nil {
		return e.fail(ctx, "deny draft", err, true)
	}
	e.logger.InfoContext(ctx, "draft denied", "team_id", storeID)
	e.persist(ctx)
	return nil
}

// AvailablePlayers lists directory people not yet on any team, optionally
// filtered by a case-insensitive substring.
func (e *SyncEngine) AvailablePlayers(query string) []roster.Person {
	if e.directory == nil {
		return []roster.Person{}
	}
	people := e.directory.People()

	e.mu.Lock()
	defer e.mu.Unlock()
	return roster.AvailablePeople(people, e.state, query)
}

func (e *SyncEngine) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.current
}

// Subscribe registers an observer and immediately delivers the current
// snapshot. An observer that falls behind by more than buffer snapshots is
// dropped and its channel closed.
func (e *SyncEngine) Subscribe(buffer int) (<-chan Snapshot, func()) {
	if buffer < 1 {
		buffer = 1
	}
	ch := make(chan Snapshot, buffer)

	e.mu.Lock()
	e.obsMu.Lock()
	if e.closed.Load() {
		e.obsMu.Unlock()
		e.mu.Unlock()
		close(ch)
		return ch, func() {}
	}
	id := e.nextObs
	e.nextObs++
	e.observers[id] = ch
	ch <- e.current
	e.obsMu.Unlock()
	e.mu.Unlock()

	return ch, func() {
		e.obsMu.Lock()
		defer e.obsMu.Unlock()
		if c, ok := e.observers[id]; ok {
			delete(e.observers, id)
			close(c)
		}
	}
}

// Close releases the store subscription, stops highlight timers and closes
// every observer channel.
func (e *SyncEngine) Close() {
	if !e.closed.CompareAndSwap(false, true) {
		return
	}
	e.cancelRun()

	e.subMu.Lock()
	unsubscribe := e.unsubscribe
	e.unsubscribe = nil
	e.subMu.Unlock()
	if unsubscribe != nil {
		unsubscribe()
	}

	e.highlights.Close()

	e.obsMu.Lock()
	for id, ch := range e.observers {
		delete(e.observers, id)
		close(ch)
	}
	e.obsMu.Unlock()
}

func (e *SyncEngine) guard() error {
	if e.closed.Load() {
		return ErrClosed
	}
	return nil
}

// fail logs a rejected commit, reloads the authoritative roster and returns
// the wrapped cause. Score edits are only logged as warnings.
func (e *SyncEngine) fail(ctx context.Context, op string, err error, loud bool) error {
	if loud {
		e.logger.ErrorContext(ctx, "store commit failed, reloading", "op", op, "error", err)
	} else {
		e.logger.WarnContext(ctx, "store commit failed, reloading", "op", op, "error", err)
	}
	if reloadErr := e.Reload(context.WithoutCancel(ctx)); reloadErr != nil {
		e.logger.WarnContext(ctx, "compensating reload failed", "op", op, "error", reloadErr)
	}
	return fmt.Errorf("%s: %w", op, err)
}

// persist writes the current roster to the snapshot cache unless a newer
// version has already been written.
func (e *SyncEngine) persist(ctx context.Context) {
	if e.cache == nil {
		return
	}

	e.mu.Lock()
	if !e.loaded || e.source != SourceStore {
		e.mu.Unlock()
		return
	}
	state := e.state.Clone()
	version := e.version
	e.mu.Unlock()

	e.saveMu.Lock()
	defer e.saveMu.Unlock()
	if version <= e.savedVersion {
		return
	}
	if err := e.cache.Save(context.WithoutCancel(ctx), state); err != nil {
		e.logger.WarnContext(ctx, "save snapshot cache failed", "error", err)
		return
	}
	e.savedVersion = version
}

func (e *SyncEngine) onHighlightExpired(string) {
	if e.closed.Load() {
		return
	}
	e.mu.Lock()
	e.publishLocked()
	e.mu.Unlock()
}

func (e *SyncEngine) highlightLocked(storeID string, before, after float64) {
	switch {
	case after > before:
		e.highlights.Schedule(storeID, HighlightIncrease)
	case after < before:
		e.highlights.Schedule(storeID, HighlightDecrease)
	}
}

// publishLocked bumps the version and fans the new snapshot out to observers
// without blocking. Must be called with e.mu held.
func (e *SyncEngine) publishLocked() {
	e.version++
	approved := roster.CloneTeams(e.state.Approved)
	snap := Snapshot{
		Version:    e.version,
		Loaded:     e.loaded,
		Source:     e.source,
		Approved:   approved,
		Drafts:     roster.CloneTeams(e.state.Drafts),
		Standings:  leaderboard.Rank(approved),
		Highlights: e.highlights.Active(),
		UpdatedAt:  e.clock.Now(),
	}
	e.current = snap

	e.obsMu.Lock()
	defer e.obsMu.Unlock()
	for id, ch := range e.observers {
		select {
		case ch <- snap:
		default:
			delete(e.observers, id)
			close(ch)
			e.logger.Warn("dropped slow snapshot observer", "observer", id)
		}
	}
}

func (e *SyncEngine) teamLocked(storeID string) (*roster.Team, error) {
	if strings.TrimSpace(storeID) == "" {
		return nil, fmt.Errorf("%w: team store id is empty", ErrMissingReference)
	}
	status, idx, ok := e.state.Locate(storeID)
	if !ok {
		return nil, fmt.Errorf("%w: team %s", ErrNotFound, storeID)
	}
	if status == roster.StatusApproved {
		return &e.state.Approved[idx], nil
	}
	return &e.state.Drafts[idx], nil
}

func (e *SyncEngine) slotLocked(storeID string, slot int) (*roster.Team, error) {
	team, err := e.teamLocked(storeID)
	if err != nil {
		return nil, err
	}
	if !team.IsValidSlot(slot) {
		return nil, fmt.Errorf("%w: slot %d is out of range", ErrInvalidInput, slot)
	}
	return team, nil
}

func (e *SyncEngine) removeLocked(storeID string) {
	status, idx, ok := e.state.Locate(storeID)
	if !ok {
		return
	}
	if status == roster.StatusApproved {
		e.state.Approved = roster.AssignLocalIDs(
			append(e.state.Approved[:idx:idx], e.state.Approved[idx+1:]...),
			roster.StatusApproved,
		)
		return
	}
	e.state.Drafts = append(e.state.Drafts[:idx:idx], e.state.Drafts[idx+1:]...)
}

// placeholderID gives an emptied slot an id never used before in this process.
func (e *SyncEngine) placeholderID(storeID string, slot int) string {
	return roster.PlaceholderID(storeID, slot) + "-" + strconv.FormatUint(e.emptySeq.Add(1), 10)
}

// carryPlaceholders keeps the local placeholder id of slots that were already
// empty, and mints a fresh one for slots the incoming view has just emptied.
func (e *SyncEngine) carryPlaceholders(local, incoming []roster.Team) []roster.Team {
	byID := make(map[string]roster.Team, len(local))
	for _, t := range local {
		byID[t.StoreID] = t
	}
	for i, t := range incoming {
		prev, ok := byID[t.StoreID]
		if !ok {
			continue
		}
		for slot, p := range t.Players {
			if !p.IsEmpty() {
				continue
			}
			old, had := prev.PlayerAt(slot)
			if had && old.IsEmpty() {
				incoming[i].Players[slot].Identity = old.Identity
				continue
			}
			incoming[i].Players[slot].Identity = e.placeholderID(t.StoreID, slot)
		}
	}
	return incoming
}

// promote turns a draft into an approved team. Players beyond the approved
// slot range leave the team, matching what the store drops on approval.
func promote(draft roster.Team) roster.Team {
	assigned := make([]roster.Player, 0, len(draft.Players))
	for _, p := range draft.Players {
		if !p.IsEmpty() {
			assigned = append(assigned, p)
		}
	}
	draft.Status = roster.StatusApproved
	draft.Players = roster.NormalizeSlots(draft.StoreID, roster.StatusApproved, assigned)
	return roster.DropStaleCaptain(draft)
}
