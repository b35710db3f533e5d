package leaderboard

import (
	"testing"

	"github.com/riskibarqy/party-leaderboard/internal/domain/roster"
)

func teamWithScores(storeID string, scores ...float64) roster.Team {
	assigned := make([]roster.Player, 0, len(scores))
	for i, s := range scores {
		assigned = append(assigned, roster.Player{
			Identity:   storeID + "-p" + string(rune('0'+i)),
			SlotLinkID: storeID + "-l" + string(rune('0'+i)),
			Score:      s,
			GameSlot:   i,
		})
	}
	return roster.Team{
		StoreID: storeID,
		Status:  roster.StatusApproved,
		Players: roster.NormalizeSlots(storeID, roster.StatusApproved, assigned),
	}
}

func TestTotalScore(t *testing.T) {
	t.Run("sums filled slots only", func(t *testing.T) {
		team := teamWithScores("t1", 1.25, 2.5)
		team.Players[4] = roster.Player{Identity: "ghost", Score: 4, GameSlot: 4}
		if got := TotalScore(team); got != 3.75 {
			t.Fatalf("expected 3.75, got %v", got)
		}
	})

	t.Run("order independent", func(t *testing.T) {
		a := teamWithScores("t1", 1.1, 2.2, 3.3)
		b := teamWithScores("t1", 3.3, 1.1, 2.2)
		if TotalScore(a) != TotalScore(b) {
			t.Fatalf("totals differ: %v vs %v", TotalScore(a), TotalScore(b))
		}
	})

	t.Run("all empty is zero", func(t *testing.T) {
		team := roster.Team{Status: roster.StatusApproved, Players: roster.NormalizeSlots("t1", roster.StatusApproved, nil)}
		if got := TotalScore(team); got != 0 {
			t.Fatalf("expected 0, got %v", got)
		}
	})
}

func TestRank_AllZeroKeepsInsertionOrder(t *testing.T) {
	teams := []roster.Team{
		teamWithScores("a"), teamWithScores("b"), teamWithScores("c"), teamWithScores("d"), teamWithScores("e"),
	}

	got := Rank(teams)
	for i, s := range got {
		if s.Team.StoreID != teams[i].StoreID {
			t.Fatalf("position %d: expected %s, got %s", i, teams[i].StoreID, s.Team.StoreID)
		}
		if s.Position != i+1 {
			t.Fatalf("expected position %d, got %d", i+1, s.Position)
		}
	}
}

func TestRank_StableDescending(t *testing.T) {
	teams := []roster.Team{
		teamWithScores("three-a", 3.0),
		teamWithScores("five", 5.0),
		teamWithScores("three-b", 1.5, 1.5),
		teamWithScores("zero"),
	}

	got := Rank(teams)
	want := []string{"five", "three-a", "three-b", "zero"}
	for i, id := range want {
		if got[i].Team.StoreID != id {
			t.Fatalf("position %d: expected %s, got %s", i+1, id, got[i].Team.StoreID)
		}
	}
}

func TestRank_Empty(t *testing.T) {
	if got := Rank(nil); len(got) != 0 {
		t.Fatalf("expected no standings, got %d", len(got))
	}
}
