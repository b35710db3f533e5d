package memory

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/riskibarqy/party-leaderboard/internal/domain/roster"
	"github.com/riskibarqy/party-leaderboard/internal/platform/id"
)

type teamRecord struct {
	id        string
	seq       int64
	title     string
	captainID string
	submitter string
	status    roster.Status
}

type identityRecord struct {
	id        string
	name      string
	avatarURL string
}

type assignmentRecord struct {
	id         string
	teamID     string
	identityID string
	gameSlot   int
	score      float64
}

// Store is an in-process roster.Store. Every mutation is applied atomically
// and subscribers are notified after the data lock is released, in commit
// order. Handlers must not mutate the store.
type Store struct {
	mu  sync.RWMutex
	ids id.Generator
	seq int64

	// notifyMu is taken before mu is released so deliveries keep commit order.
	notifyMu sync.Mutex

	teams       map[string]*teamRecord
	identities  map[string]*identityRecord
	byName      map[string]string
	assignments map[string]*assignmentRecord

	subMu   sync.Mutex
	subs    map[int]roster.ChangeFunc
	nextSub int

	offline atomic.Bool
}

var _ roster.Store = (*Store)(nil)

func NewStore(ids id.Generator) *Store {
	if ids == nil {
		ids = id.NewRandomGenerator()
	}
	return &Store{
		ids:         ids,
		teams:       make(map[string]*teamRecord),
		identities:  make(map[string]*identityRecord),
		byName:      make(map[string]string),
		assignments: make(map[string]*assignmentRecord),
		subs:        make(map[int]roster.ChangeFunc),
	}
}

// SetOffline makes every call fail with roster.ErrStoreUnavailable.
func (s *Store) SetOffline(offline bool) {
	s.offline.Store(offline)
}

func (s *Store) FetchTeams(_ context.Context, status roster.Status) ([]roster.Team, error) {
	if err := s.reachable(); err != nil {
		return nil, err
	}
	if !status.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", roster.ErrConstraintViolation, status)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.teamsLocked(status), nil
}

func (s *Store) CreateTeam(_ context.Context, team roster.NewTeam) (string, error) {
	if err := s.reachable(); err != nil {
		return "", err
	}
	if !team.Status.Valid() {
		return "", fmt.Errorf("%w: unknown status %q", roster.ErrConstraintViolation, team.Status)
	}

	teamID, err := s.ids.NewID()
	if err != nil {
		return "", fmt.Errorf("generate team id: %w", err)
	}

	var storeID string
	err = s.mutate(func() error {
		usedSlots := make(map[int]struct{}, len(team.Assignments))
		for _, a := range team.Assignments {
			if _, ok := s.identities[a.Identity]; !ok {
				return fmt.Errorf("%w: identity %s", roster.ErrRecordNotFound, a.Identity)
			}
			if err := checkSlotRange(a.GameSlot); err != nil {
				return err
			}
			if _, dup := usedSlots[a.GameSlot]; dup {
				return fmt.Errorf("%w: game slot %d assigned twice", roster.ErrConstraintViolation, a.GameSlot)
			}
			usedSlots[a.GameSlot] = struct{}{}
		}

		linkIDs := make([]string, len(team.Assignments))
		for i := range team.Assignments {
			linkID, err := s.ids.NewID()
			if err != nil {
				return fmt.Errorf("generate slot link id: %w", err)
			}
			linkIDs[i] = linkID
		}

		s.seq++
		s.teams[teamID] = &teamRecord{
			id:        teamID,
			seq:       s.seq,
			title:     team.Title,
			submitter: team.SubmitterName,
			status:    team.Status,
		}
		for i, a := range team.Assignments {
			s.assignments[linkIDs[i]] = &assignmentRecord{
				id:         linkIDs[i],
				teamID:     teamID,
				identityID: a.Identity,
				gameSlot:   a.GameSlot,
			}
		}
		storeID = teamID
		return nil
	})
	if err != nil {
		return "", err
	}
	return storeID, nil
}

func (s *Store) UpdateTeamTitle(_ context.Context, storeID, title string) error {
	return s.mutateTeam(storeID, func(t *teamRecord) error {
		t.title = title
		return nil
	})
}

func (s *Store) DeleteTeam(_ context.Context, storeID string) error {
	if err := s.reachable(); err != nil {
		return err
	}
	return s.mutate(func() error {
		if _, ok := s.teams[storeID]; !ok {
			return fmt.Errorf("%w: team %s", roster.ErrRecordNotFound, storeID)
		}
		delete(s.teams, storeID)
		for linkID, a := range s.assignments {
			if a.teamID == storeID {
				delete(s.assignments, linkID)
			}
		}
		return nil
	})
}

func (s *Store) SetCaptain(_ context.Context, storeID, identity string) error {
	return s.mutateTeam(storeID, func(t *teamRecord) error {
		if identity != "" {
			if _, ok := s.identities[identity]; !ok {
				return fmt.Errorf("%w: identity %s", roster.ErrRecordNotFound, identity)
			}
		}
		t.captainID = identity
		return nil
	})
}

func (s *Store) SetTeamStatus(_ context.Context, storeID string, status roster.Status) error {
	if !status.Valid() {
		return fmt.Errorf("%w: unknown status %q", roster.ErrConstraintViolation, status)
	}
	return s.mutateTeam(storeID, func(t *teamRecord) error {
		t.status = status
		if status != roster.StatusApproved {
			return nil
		}
		for linkID, a := range s.assignments {
			if a.teamID != storeID || a.gameSlot < roster.ApprovedSlots {
				continue
			}
			if a.identityID == t.captainID {
				t.captainID = ""
			}
			delete(s.assignments, linkID)
		}
		return nil
	})
}

func (s *Store) CreateSlotAssignment(_ context.Context, storeID, identity string, gameSlot int) (string, error) {
	if err := s.reachable(); err != nil {
		return "", err
	}
	linkID, err := s.ids.NewID()
	if err != nil {
		return "", fmt.Errorf("generate slot link id: %w", err)
	}

	err = s.mutate(func() error {
		if _, ok := s.teams[storeID]; !ok {
			return fmt.Errorf("%w: team %s", roster.ErrRecordNotFound, storeID)
		}
		if _, ok := s.identities[identity]; !ok {
			return fmt.Errorf("%w: identity %s", roster.ErrRecordNotFound, identity)
		}
		if err := checkSlotRange(gameSlot); err != nil {
			return err
		}
		if holder, taken := s.occupiedLocked(storeID)[gameSlot]; taken {
			return fmt.Errorf("%w: game slot %d held by %s", roster.ErrConstraintViolation, gameSlot, holder)
		}
		s.assignments[linkID] = &assignmentRecord{
			id:         linkID,
			teamID:     storeID,
			identityID: identity,
			gameSlot:   gameSlot,
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	return linkID, nil
}

func (s *Store) DeleteSlotAssignment(_ context.Context, slotLinkID string) error {
	return s.mutateAssignment(slotLinkID, func(a *assignmentRecord) error {
		delete(s.assignments, a.id)
		return nil
	})
}

func (s *Store) UpdateSlotScore(_ context.Context, slotLinkID string, score float64) error {
	if score < roster.MinScore || score > roster.MaxScore || math.IsNaN(score) {
		return fmt.Errorf("%w: score %v outside [%v,%v]", roster.ErrConstraintViolation, score, roster.MinScore, roster.MaxScore)
	}
	return s.mutateAssignment(slotLinkID, func(a *assignmentRecord) error {
		a.score = score
		return nil
	})
}

func (s *Store) MoveSlotAssignment(_ context.Context, slotLinkID string, newSlot int) error {
	if err := checkSlotRange(newSlot); err != nil {
		return err
	}
	return s.mutateAssignment(slotLinkID, func(a *assignmentRecord) error {
		if a.gameSlot == newSlot {
			return nil
		}
		if holder, taken := s.occupiedLocked(a.teamID)[newSlot]; taken {
			return fmt.Errorf("%w: game slot %d held by %s", roster.ErrConstraintViolation, newSlot, holder)
		}
		a.gameSlot = newSlot
		return nil
	})
}

func (s *Store) SwapSlotAssignments(_ context.Context, slotLinkIDA, slotLinkIDB string) error {
	if err := s.reachable(); err != nil {
		return err
	}
	return s.mutate(func() error {
		a, ok := s.assignments[slotLinkIDA]
		if !ok {
			return fmt.Errorf("%w: assignment %s", roster.ErrRecordNotFound, slotLinkIDA)
		}
		b, ok := s.assignments[slotLinkIDB]
		if !ok {
			return fmt.Errorf("%w: assignment %s", roster.ErrRecordNotFound, slotLinkIDB)
		}
		if a.teamID != b.teamID {
			return fmt.Errorf("%w: assignments %s and %s belong to different teams", roster.ErrConstraintViolation, a.id, b.id)
		}

		occupied := s.occupiedLocked(a.teamID)
		moves, err := roster.PlanSwap(occupied, a.id, b.id, roster.MaxSlots)
		if err != nil {
			return err
		}
		if _, err := roster.ReplayMoves(occupied, moves); err != nil {
			return err
		}
		for _, m := range moves {
			s.assignments[m.SlotLinkID].gameSlot = m.ToSlot
		}
		return nil
	})
}

func (s *Store) GetOrCreatePlayerIdentity(_ context.Context, name, avatarURL string) (string, error) {
	if err := s.reachable(); err != nil {
		return "", err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return "", fmt.Errorf("%w: identity name is required", roster.ErrConstraintViolation)
	}

	s.mu.RLock()
	existing, ok := s.byName[name]
	s.mu.RUnlock()
	if ok {
		return existing, nil
	}

	identityID, err := s.ids.NewID()
	if err != nil {
		return "", fmt.Errorf("generate identity id: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.byName[name]; ok {
		return existing, nil
	}
	s.identities[identityID] = &identityRecord{id: identityID, name: name, avatarURL: avatarURL}
	s.byName[name] = identityID
	return identityID, nil
}

// SubscribeToChanges registers fn for approved roster changes until the
// returned func is called or ctx is done.
func (s *Store) SubscribeToChanges(ctx context.Context, fn roster.ChangeFunc) (func(), error) {
	if err := s.reachable(); err != nil {
		return nil, err
	}
	if fn == nil {
		return nil, fmt.Errorf("change handler is required")
	}

	s.subMu.Lock()
	key := s.nextSub
	s.nextSub++
	s.subs[key] = fn
	s.subMu.Unlock()

	var once sync.Once
	unsubscribe := func() {
		once.Do(func() {
			s.subMu.Lock()
			delete(s.subs, key)
			s.subMu.Unlock()
		})
	}
	stop := context.AfterFunc(ctx, unsubscribe)
	return func() {
		stop()
		unsubscribe()
	}, nil
}

func (s *Store) reachable() error {
	if s.offline.Load() {
		return fmt.Errorf("%w: memory store is offline", roster.ErrStoreUnavailable)
	}
	return nil
}

// mutate runs fn under the write lock and notifies subscribers on success.
func (s *Store) mutate(fn func() error) error {
	s.mu.Lock()
	watching := s.hasSubscribers()
	var previous []roster.Team
	if watching {
		previous = s.teamsLocked(roster.StatusApproved)
	}

	if err := fn(); err != nil {
		s.mu.Unlock()
		return err
	}

	if !watching {
		s.mu.Unlock()
		return nil
	}
	current := s.teamsLocked(roster.StatusApproved)
	s.notifyMu.Lock()
	s.mu.Unlock()

	defer s.notifyMu.Unlock()
	s.notify(previous, current)
	return nil
}

func (s *Store) mutateTeam(storeID string, fn func(*teamRecord) error) error {
	if err := s.reachable(); err != nil {
		return err
	}
	return s.mutate(func() error {
		t, ok := s.teams[storeID]
		if !ok {
			return fmt.Errorf("%w: team %s", roster.ErrRecordNotFound, storeID)
		}
		return fn(t)
	})
}

func (s *Store) mutateAssignment(slotLinkID string, fn func(*assignmentRecord) error) error {
	if err := s.reachable(); err != nil {
		return err
	}
	return s.mutate(func() error {
		a, ok := s.assignments[slotLinkID]
		if !ok {
			return fmt.Errorf("%w: assignment %s", roster.ErrRecordNotFound, slotLinkID)
		}
		return fn(a)
	})
}

func (s *Store) hasSubscribers() bool {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	return len(s.subs) > 0
}

func (s *Store) notify(previous, current []roster.Team) {
	s.subMu.Lock()
	handlers := make([]roster.ChangeFunc, 0, len(s.subs))
	keys := make([]int, 0, len(s.subs))
	for key := range s.subs {
		keys = append(keys, key)
	}
	sort.Ints(keys)
	for _, key := range keys {
		handlers = append(handlers, s.subs[key])
	}
	s.subMu.Unlock()

	for _, fn := range handlers {
		fn(roster.CloneTeams(previous), roster.CloneTeams(current))
	}
}

func (s *Store) teamsLocked(status roster.Status) []roster.Team {
	records := make([]*teamRecord, 0, len(s.teams))
	for _, t := range s.teams {
		if t.status == status {
			records = append(records, t)
		}
	}
	sort.Slice(records, func(i, j int) bool { return records[i].seq < records[j].seq })

	byTeam := make(map[string][]roster.Player, len(records))
	for _, a := range s.assignments {
		ident := s.identities[a.identityID]
		p := roster.Player{
			Identity:   a.identityID,
			SlotLinkID: a.id,
			Score:      a.score,
			GameSlot:   a.gameSlot,
		}
		if ident != nil {
			p.DisplayName = ident.name
			p.AvatarURL = ident.avatarURL
		}
		byTeam[a.teamID] = append(byTeam[a.teamID], p)
	}

	out := make([]roster.Team, 0, len(records))
	for _, rec := range records {
		assigned := byTeam[rec.id]
		sort.Slice(assigned, func(i, j int) bool { return assigned[i].GameSlot < assigned[j].GameSlot })
		team := roster.Team{
			StoreID:       rec.id,
			Title:         rec.title,
			CaptainID:     rec.captainID,
			Status:        rec.status,
			SubmitterName: rec.submitter,
			Players:       roster.NormalizeSlots(rec.id, rec.status, assigned),
		}
		out = append(out, roster.DropStaleCaptain(team))
	}
	return roster.AssignLocalIDs(out, status)
}

func (s *Store) occupiedLocked(teamID string) map[int]string {
	out := make(map[int]string)
	for _, a := range s.assignments {
		if a.teamID == teamID {
			out[a.gameSlot] = a.id
		}
	}
	return out
}

func checkSlotRange(slot int) error {
	if slot < 0 || slot >= roster.MaxSlots {
		return fmt.Errorf("%w: game slot %d outside [0,%d)", roster.ErrConstraintViolation, slot, roster.MaxSlots)
	}
	return nil
}
