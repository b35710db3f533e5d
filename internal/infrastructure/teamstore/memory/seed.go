package memory

import (
	"context"
	"fmt"

	"github.com/riskibarqy/party-leaderboard/internal/domain/roster"
)

type SeedPlayer struct {
	Name     string
	GameSlot int
	Score    float64
}

type SeedTeam struct {
	Title     string
	Submitter string
	Status    roster.Status
	Captain   string
	Players   []SeedPlayer
}

// DemoTeams is a small approved roster plus one pending draft for local runs.
func DemoTeams() []SeedTeam {
	return []SeedTeam{
		{
			Title:   "Beer Pong Bandits",
			Status:  roster.StatusApproved,
			Captain: "Alex",
			Players: []SeedPlayer{
				{Name: "Alex", GameSlot: 0, Score: 3},
				{Name: "Bea", GameSlot: 1, Score: 2.5},
				{Name: "Cam", GameSlot: 2},
			},
		},
		{
			Title:  "Flip Cup Forever",
			Status: roster.StatusApproved,
			Players: []SeedPlayer{
				{Name: "Dani", GameSlot: 0, Score: 4},
				{Name: "Eli", GameSlot: 3, Score: 1.25},
			},
		},
		{
			Title:     "Late Arrivals",
			Submitter: "Fin",
			Status:    roster.StatusDraft,
			Captain:   "Fin",
			Players: []SeedPlayer{
				{Name: "Fin", GameSlot: 0},
				{Name: "Gus", GameSlot: 5},
			},
		},
	}
}

// Seed creates teams through the public Store API so seeded data passes the
// same constraint checks as live writes.
func Seed(ctx context.Context, store *Store, teams []SeedTeam) error {
	for _, t := range teams {
		identities := make(map[string]string, len(t.Players))
		assignments := make([]roster.SlotAssignment, 0, len(t.Players))
		for _, p := range t.Players {
			identity, err := store.GetOrCreatePlayerIdentity(ctx, p.Name, "")
			if err != nil {
				return fmt.Errorf("seed identity %s: %w", p.Name, err)
			}
			identities[p.Name] = identity
			assignments = append(assignments, roster.SlotAssignment{Identity: identity, GameSlot: p.GameSlot})
		}

		storeID, err := store.CreateTeam(ctx, roster.NewTeam{
			Title:         t.Title,
			SubmitterName: t.Submitter,
			Status:        t.Status,
			Assignments:   assignments,
		})
		if err != nil {
			return fmt.Errorf("seed team %s: %w", t.Title, err)
		}

		if t.Captain != "" {
			if err := store.SetCaptain(ctx, storeID, identities[t.Captain]); err != nil {
				return fmt.Errorf("seed captain %s: %w", t.Title, err)
			}
		}

		if err := seedScores(ctx, store, storeID, t); err != nil {
			return err
		}
	}
	return nil
}

func seedScores(ctx context.Context, store *Store, storeID string, t SeedTeam) error {
	teams, err := store.FetchTeams(ctx, t.Status)
	if err != nil {
		return fmt.Errorf("seed fetch %s: %w", t.Title, err)
	}
	for _, team := range teams {
		if team.StoreID != storeID {
			continue
		}
		for _, p := range t.Players {
			if p.Score == 0 {
				continue
			}
			player, ok := team.PlayerAt(p.GameSlot)
			if !ok || player.IsEmpty() {
				continue
			}
			if err := store.UpdateSlotScore(ctx, player.SlotLinkID, roster.ClampScore(p.Score)); err != nil {
				return fmt.Errorf("seed score %s/%s: %w", t.Title, p.Name, err)
			}
		}
	}
	return nil
}
