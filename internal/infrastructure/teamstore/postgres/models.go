package postgres

import (
	"database/sql"
	"sort"
	"time"

	"github.com/riskibarqy/party-leaderboard/internal/domain/roster"
	qb "github.com/riskibarqy/party-leaderboard/internal/platform/querybuilder"
)

type teamTableModel struct {
	ID            string         `db:"id"`
	Title         string         `db:"title"`
	Status        string         `db:"status"`
	CaptainID     sql.NullString `db:"captain_player_id"`
	SubmitterName string         `db:"submitter_name"`
	CreatedAt     time.Time      `db:"created_at"`
}

type teamInsertModel struct {
	ID            string `db:"id"`
	Title         string `db:"title"`
	Status        string `db:"status"`
	SubmitterName string `db:"submitter_name"`
}

// assignmentRow is a team_players row joined with its player.
type assignmentRow struct {
	ID        string  `db:"id"`
	TeamID    string  `db:"team_id"`
	PlayerID  string  `db:"player_id"`
	GameSlot  int     `db:"game_slot"`
	Score     float64 `db:"score"`
	Name      string  `db:"name"`
	AvatarURL string  `db:"avatar_url"`
}

type slotRow struct {
	ID       string `db:"id"`
	TeamID   string `db:"team_id"`
	GameSlot int    `db:"game_slot"`
}

type playerInsertModel struct {
	ID        string `db:"id"`
	Name      string `db:"name"`
	AvatarURL string `db:"avatar_url"`
}

func teamSelectBuilder() *qb.SelectBuilder {
	return qb.Select("id", "title", "status", "captain_player_id", "submitter_name", "created_at").
		From("teams")
}

func assignmentSelectBuilder() *qb.SelectBuilder {
	return qb.Select("tp.id", "tp.team_id", "tp.player_id", "tp.game_slot", "tp.score", "p.name", "p.avatar_url").
		From("team_players tp").
		Join("players p", "p.id = tp.player_id").
		Join("teams t", "t.id = tp.team_id")
}

// assembleTeams turns rows into teams in row order with normalized slots.
func assembleTeams(status roster.Status, teams []teamTableModel, assignments []assignmentRow) []roster.Team {
	byTeam := make(map[string][]roster.Player, len(teams))
	for _, a := range assignments {
		byTeam[a.TeamID] = append(byTeam[a.TeamID], roster.Player{
			Identity:    a.PlayerID,
			SlotLinkID:  a.ID,
			DisplayName: a.Name,
			AvatarURL:   a.AvatarURL,
			Score:       roster.ClampScore(a.Score),
			GameSlot:    a.GameSlot,
		})
	}

	out := make([]roster.Team, 0, len(teams))
	for _, row := range teams {
		assigned := byTeam[row.ID]
		sort.Slice(assigned, func(i, j int) bool { return assigned[i].GameSlot < assigned[j].GameSlot })
		team := roster.Team{
			StoreID:       row.ID,
			Title:         row.Title,
			CaptainID:     row.CaptainID.String,
			Status:        status,
			SubmitterName: row.SubmitterName,
			Players:       roster.NormalizeSlots(row.ID, status, assigned),
		}
		out = append(out, roster.DropStaleCaptain(team))
	}
	return roster.AssignLocalIDs(out, status)
}

func nullableID(id string) sql.NullString {
	return sql.NullString{String: id, Valid: id != ""}
}
