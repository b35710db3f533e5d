package snapshotcache

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/riskibarqy/party-leaderboard/internal/domain/roster"
	"github.com/stretchr/testify/require"
)

func sampleRoster() roster.Roster {
	approved := roster.Team{
		StoreID:   "team_a",
		Title:     "Blue",
		CaptainID: "plr_1",
		Status:    roster.StatusApproved,
		Players: roster.NormalizeSlots("team_a", roster.StatusApproved, []roster.Player{
			{Identity: "plr_1", SlotLinkID: "slot_1", DisplayName: "Alex", Score: 3.5, GameSlot: 0},
			{Identity: "plr_2", SlotLinkID: "slot_2", DisplayName: "Bea", AvatarURL: "https://img/bea.png", Score: 1, GameSlot: 4},
		}),
	}
	draft := roster.Team{
		StoreID:       "team_d",
		Title:         "Late",
		Status:        roster.StatusDraft,
		SubmitterName: "Gus",
		Players: roster.NormalizeSlots("team_d", roster.StatusDraft, []roster.Player{
			{Identity: "plr_3", SlotLinkID: "slot_3", DisplayName: "Gus", GameSlot: 5},
		}),
	}
	return roster.Roster{
		Approved: roster.AssignLocalIDs([]roster.Team{approved}, roster.StatusApproved),
		Drafts:   roster.AssignLocalIDs([]roster.Team{draft}, roster.StatusDraft),
	}
}

func TestFile_SaveLoadRoundTrip(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	cache := NewFile(filepath.Join(dir, "nested", "snapshot.json"))

	want := sampleRoster()
	require.NoError(t, cache.Save(ctx, want))

	got, ok, err := cache.Load(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, want, got)

	entries, err := os.ReadDir(filepath.Join(dir, "nested"))
	require.NoError(t, err)
	require.Len(t, entries, 1, "temp files should not be left behind")
}

func TestFile_LoadMissing(t *testing.T) {
	cache := NewFile(filepath.Join(t.TempDir(), "absent.json"))
	_, ok, err := cache.Load(context.Background())
	require.NoError(t, err)
	require.False(t, ok)
}

func TestFile_LoadCorrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snapshot.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	_, ok, err := NewFile(path).Load(context.Background())
	require.Error(t, err)
	require.False(t, ok)
}

func TestFile_LoadUnknownFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snapshot.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"format":99,"approved":[],"drafts":[]}`), 0o600))

	_, _, err := NewFile(path).Load(context.Background())
	require.Error(t, err)
}
