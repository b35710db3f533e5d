package postgres

import (
	"database/sql"
	"errors"
	"testing"

	"github.com/riskibarqy/party-leaderboard/internal/domain/roster"
	"github.com/stretchr/testify/require"
)

func TestAssembleTeams(t *testing.T) {
	teams := []teamTableModel{
		{ID: "team_a", Title: "Blue", CaptainID: sql.NullString{String: "plr_2", Valid: true}},
		{ID: "team_b", Title: "Red", CaptainID: sql.NullString{String: "plr_gone", Valid: true}},
	}
	assignments := []assignmentRow{
		{ID: "slot_2", TeamID: "team_a", PlayerID: "plr_2", GameSlot: 3, Score: 4.5, Name: "Bea"},
		{ID: "slot_1", TeamID: "team_a", PlayerID: "plr_1", GameSlot: 0, Score: 7, Name: "Alex"},
		{ID: "slot_3", TeamID: "team_b", PlayerID: "plr_3", GameSlot: 5, Name: "Off range"},
	}

	got := assembleTeams(roster.StatusApproved, teams, assignments)
	require.Len(t, got, 2)

	blue := got[0]
	require.Equal(t, "team-1", blue.LocalID)
	require.Equal(t, "Alex", blue.Players[0].DisplayName)
	require.Equal(t, 5.0, blue.Players[0].Score)
	require.Equal(t, "Bea", blue.Players[3].DisplayName)
	require.Equal(t, 3, blue.CaptainSlot())
	require.NoError(t, blue.ValidateBasic())

	red := got[1]
	require.Equal(t, "team-2", red.LocalID)
	require.Empty(t, red.CaptainID)
	require.Equal(t, 0, red.FilledCount())
}

func TestSameTeam(t *testing.T) {
	pair := []slotRow{{ID: "a", TeamID: "t1"}, {ID: "b", TeamID: "t1"}, {ID: "c", TeamID: "t2"}}

	teamID, err := sameTeam(pair, "a", "b")
	require.NoError(t, err)
	require.Equal(t, "t1", teamID)

	_, err = sameTeam(pair, "a", "c")
	require.True(t, errors.Is(err, roster.ErrConstraintViolation))

	_, err = sameTeam(pair, "a", "zz")
	require.ErrorIs(t, err, roster.ErrRecordNotFound)
}

func TestNullableID(t *testing.T) {
	require.False(t, nullableID("").Valid)
	require.Equal(t, sql.NullString{String: "plr_1", Valid: true}, nullableID("plr_1"))
}
