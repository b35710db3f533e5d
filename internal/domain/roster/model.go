package roster

import (
	"fmt"
	"strconv"
)

// Status partitions teams into drafts awaiting review and the public leaderboard.
type Status string

const (
	StatusDraft    Status = "draft"
	StatusApproved Status = "approved"
)

const (
	ApprovedSlots = 5
	DraftSlots    = 6
	// MaxSlots is the addressable game slot range in the store.
	MaxSlots = 6
)

func (s Status) Valid() bool {
	return s == StatusDraft || s == StatusApproved
}

// SlotCount returns how many game slots a team with the given status exposes.
func SlotCount(status Status) int {
	if status == StatusDraft {
		return DraftSlots
	}
	return ApprovedSlots
}

// Player is one game slot of a team, either filled or empty.
type Player struct {
	Identity    string
	SlotLinkID  string
	DisplayName string
	AvatarURL   string
	Score       float64
	GameSlot    int
}

func (p Player) IsEmpty() bool {
	return p.SlotLinkID == ""
}

// EmptyPlayer builds a placeholder for an unassigned slot.
func EmptyPlayer(identity string, gameSlot int) Player {
	return Player{
		Identity: identity,
		GameSlot: gameSlot,
	}
}

// Team is a titled group of players, one per game slot.
type Team struct {
	LocalID       string
	StoreID       string
	Title         string
	CaptainID     string
	Players       []Player
	Status        Status
	SubmitterName string
}

func (t Team) IsValidSlot(slot int) bool {
	return slot >= 0 && slot < len(t.Players)
}

func (t Team) PlayerAt(slot int) (Player, bool) {
	if !t.IsValidSlot(slot) {
		return Player{}, false
	}
	return t.Players[slot], true
}

// CaptainSlot returns the slot of the captain, or -1 when the team has none.
func (t Team) CaptainSlot() int {
	if t.CaptainID == "" {
		return -1
	}
	for i, p := range t.Players {
		if !p.IsEmpty() && p.Identity == t.CaptainID {
			return i
		}
	}
	return -1
}

func (t Team) FilledCount() int {
	count := 0
	for _, p := range t.Players {
		if !p.IsEmpty() {
			count++
		}
	}
	return count
}

func (t Team) Clone() Team {
	out := t
	out.Players = append([]Player(nil), t.Players...)
	return out
}

func (t Team) ValidateBasic() error {
	if !t.Status.Valid() {
		return fmt.Errorf("invalid team status %q", t.Status)
	}
	if len(t.Players) != SlotCount(t.Status) {
		return fmt.Errorf("team %s has %d slots, expected %d", t.StoreID, len(t.Players), SlotCount(t.Status))
	}
	for i, p := range t.Players {
		if p.GameSlot != i {
			return fmt.Errorf("team %s slot %d holds game slot %d", t.StoreID, i, p.GameSlot)
		}
		if p.Score < MinScore || p.Score > MaxScore {
			return fmt.Errorf("team %s slot %d score %.2f out of range", t.StoreID, i, p.Score)
		}
	}
	if t.CaptainID != "" && t.CaptainSlot() < 0 {
		return fmt.Errorf("team %s captain %s is not on a filled slot", t.StoreID, t.CaptainID)
	}
	return nil
}

// NormalizeSlots lays assigned players out by game slot and fills the gaps
// with placeholders. Assignments outside the team's slot range are dropped.
func NormalizeSlots(storeID string, status Status, assigned []Player) []Player {
	count := SlotCount(status)
	players := make([]Player, count)
	filled := make([]bool, count)
	for _, p := range assigned {
		if p.GameSlot < 0 || p.GameSlot >= count || filled[p.GameSlot] {
			continue
		}
		players[p.GameSlot] = p
		filled[p.GameSlot] = true
	}
	for i := range players {
		if !filled[i] {
			players[i] = EmptyPlayer(PlaceholderID(storeID, i), i)
		}
	}
	return players
}

// PlaceholderID is the deterministic id given to empty slots by the stores.
func PlaceholderID(storeID string, gameSlot int) string {
	return "empty-" + storeID + "-" + strconv.Itoa(gameSlot)
}

// DropStaleCaptain clears a captain reference that no longer points at a filled slot.
func DropStaleCaptain(t Team) Team {
	if t.CaptainID != "" && t.CaptainSlot() < 0 {
		t.CaptainID = ""
	}
	return t
}

// AssignLocalIDs gives approved teams positional keys and drafts their store id.
func AssignLocalIDs(teams []Team, status Status) []Team {
	for i := range teams {
		if status == StatusApproved {
			teams[i].LocalID = "team-" + strconv.Itoa(i+1)
			continue
		}
		teams[i].LocalID = teams[i].StoreID
	}
	return teams
}

// Roster is the aggregate of approved teams and draft submissions.
type Roster struct {
	Approved []Team
	Drafts   []Team
}

func (r Roster) Clone() Roster {
	return Roster{
		Approved: CloneTeams(r.Approved),
		Drafts:   CloneTeams(r.Drafts),
	}
}

func CloneTeams(teams []Team) []Team {
	if teams == nil {
		return nil
	}
	out := make([]Team, len(teams))
	for i, t := range teams {
		out[i] = t.Clone()
	}
	return out
}

// Locate finds a team by store id in either partition.
func (r Roster) Locate(storeID string) (Status, int, bool) {
	for i, t := range r.Approved {
		if t.StoreID == storeID {
			return StatusApproved, i, true
		}
	}
	for i, t := range r.Drafts {
		if t.StoreID == storeID {
			return StatusDraft, i, true
		}
	}
	return "", -1, false
}

// AssignedNames lists the display names of every filled slot across both partitions.
func (r Roster) AssignedNames() map[string]struct{} {
	out := make(map[string]struct{})
	for _, partition := range [][]Team{r.Approved, r.Drafts} {
		for _, t := range partition {
			for _, p := range t.Players {
				if !p.IsEmpty() && p.DisplayName != "" {
					out[p.DisplayName] = struct{}{}
				}
			}
		}
	}
	return out
}
