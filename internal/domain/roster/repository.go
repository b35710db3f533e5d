package roster

import "context"

// SlotAssignment links a player identity to a game slot of a new team.
type SlotAssignment struct {
	Identity string
	GameSlot int
}

// NewTeam is the payload for creating a team together with its assignments.
type NewTeam struct {
	Title         string
	SubmitterName string
	Status        Status
	Assignments   []SlotAssignment
}

// ChangeFunc receives the approved roster before and after a remote change.
// Deliveries may repeat or coalesce, so handlers must be idempotent.
type ChangeFunc func(previous, current []Team)

// Store is the remote shared team store the sync engine reconciles against.
type Store interface {
	FetchTeams(ctx context.Context, status Status) ([]Team, error)
	CreateTeam(ctx context.Context, team NewTeam) (string, error)
	UpdateTeamTitle(ctx context.Context, storeID, title string) error
	DeleteTeam(ctx context.Context, storeID string) error
	// SetCaptain clears the captain when identity is empty.
	SetCaptain(ctx context.Context, storeID, identity string) error
	// SetTeamStatus to approved also removes assignments at or past
	// ApprovedSlots, clearing the captain if it was one of them.
	SetTeamStatus(ctx context.Context, storeID string, status Status) error
	CreateSlotAssignment(ctx context.Context, storeID, identity string, gameSlot int) (string, error)
	DeleteSlotAssignment(ctx context.Context, slotLinkID string) error
	UpdateSlotScore(ctx context.Context, slotLinkID string, score float64) error
	MoveSlotAssignment(ctx context.Context, slotLinkID string, newSlot int) error
	SwapSlotAssignments(ctx context.Context, slotLinkIDA, slotLinkIDB string) error
	GetOrCreatePlayerIdentity(ctx context.Context, name, avatarURL string) (string, error)
	SubscribeToChanges(ctx context.Context, fn ChangeFunc) (func(), error)
}
