package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/party-leaderboard/internal/domain/roster"
	"github.com/riskibarqy/party-leaderboard/internal/platform/id"
	"github.com/riskibarqy/party-leaderboard/internal/platform/logging"
	qb "github.com/riskibarqy/party-leaderboard/internal/platform/querybuilder"
	"github.com/riskibarqy/party-leaderboard/internal/platform/resilience"
)

type Options struct {
	// ListenDSN enables the LISTEN/NOTIFY change feed.
	ListenDSN    string
	Channel      string
	Debounce     time.Duration
	PingInterval time.Duration
	MinReconnect time.Duration
	MaxReconnect time.Duration
	Breaker      *resilience.CircuitBreaker
	Logger       *logging.Logger
	TeamIDs      id.Generator
	SlotLinkIDs  id.Generator
	PlayerIDs    id.Generator
}

// Store is the Postgres roster.Store backed by teams, players and team_players.
type Store struct {
	db      *sqlx.DB
	opts    Options
	breaker *resilience.CircuitBreaker
	logger  *logging.Logger
}

var _ roster.Store = (*Store)(nil)

func NewStore(db *sqlx.DB, opts Options) *Store {
	if opts.Channel == "" {
		opts.Channel = "roster_changes"
	}
	if opts.Debounce <= 0 {
		opts.Debounce = 150 * time.Millisecond
	}
	if opts.PingInterval <= 0 {
		opts.PingInterval = 90 * time.Second
	}
	if opts.MinReconnect <= 0 {
		opts.MinReconnect = 10 * time.Second
	}
	if opts.MaxReconnect <= 0 {
		opts.MaxReconnect = time.Minute
	}
	random := id.NewRandomGenerator()
	if opts.TeamIDs == nil {
		opts.TeamIDs = random.WithPrefix("team_")
	}
	if opts.SlotLinkIDs == nil {
		opts.SlotLinkIDs = random.WithPrefix("slot_")
	}
	if opts.PlayerIDs == nil {
		opts.PlayerIDs = random.WithPrefix("plr_")
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.Default()
	}

	logger = logger.Named("teamstore.postgres")

	breaker := opts.Breaker.OnStateChange(func(from, to resilience.CircuitState) {
		logger.Warn("store circuit changed", "from", from, "to", to)
	})

	return &Store{
		db:      db,
		opts:    opts,
		breaker: breaker,
		logger:  logger,
	}
}

func (s *Store) FetchTeams(ctx context.Context, status roster.Status) ([]roster.Team, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", roster.ErrConstraintViolation, status)
	}

	var out []roster.Team
	err := s.run("fetch teams", func() error {
		teamQuery, teamArgs, err := teamSelectBuilder().
			Where(qb.Eq("status", string(status))).
			OrderBy("created_at", "id").
			ToSQL()
		if err != nil {
			return fmt.Errorf("build list teams query: %w", err)
		}
		var teams []teamTableModel
		if err := s.db.SelectContext(ctx, &teams, teamQuery, teamArgs...); err != nil {
			return err
		}

		slotQuery, slotArgs, err := assignmentSelectBuilder().
			Where(qb.Eq("t.status", string(status))).
			OrderBy("tp.team_id", "tp.game_slot").
			ToSQL()
		if err != nil {
			return fmt.Errorf("build list assignments query: %w", err)
		}
		var assignments []assignmentRow
		if err := s.db.SelectContext(ctx, &assignments, slotQuery, slotArgs...); err != nil {
			return err
		}

		out = assembleTeams(status, teams, assignments)
		return nil
	})
	return out, err
}

func (s *Store) CreateTeam(ctx context.Context, team roster.NewTeam) (string, error) {
	if !team.Status.Valid() {
		return "", fmt.Errorf("%w: unknown status %q", roster.ErrConstraintViolation, team.Status)
	}
	teamID, err := s.opts.TeamIDs.NewID()
	if err != nil {
		return "", fmt.Errorf("generate team id: %w", err)
	}

	err = s.run("create team", func() error {
		tx, err := s.db.BeginTxx(ctx, nil)
		if err != nil {
			return err
		}
		defer func() {
			_ = tx.Rollback()
		}()

		teamQuery, teamArgs, err := qb.InsertModel("teams", teamInsertModel{
			ID:            teamID,
			Title:         team.Title,
			Status:        string(team.Status),
			SubmitterName: team.SubmitterName,
		}).ToSQL()
		if err != nil {
			return fmt.Errorf("build insert team query: %w", err)
		}
		if _, err := tx.ExecContext(ctx, teamQuery, teamArgs...); err != nil {
			return err
		}

		if len(team.Assignments) > 0 {
			insert := qb.InsertInto("team_players").Columns("id", "team_id", "player_id", "game_slot")
			for _, a := range team.Assignments {
				linkID, err := s.opts.SlotLinkIDs.NewID()
				if err != nil {
					return fmt.Errorf("generate slot link id: %w", err)
				}
				insert.Values(linkID, teamID, a.Identity, a.GameSlot)
			}
			slotQuery, slotArgs, err := insert.ToSQL()
			if err != nil {
				return fmt.Errorf("build insert assignments query: %w", err)
			}
			if _, err := tx.ExecContext(ctx, slotQuery, slotArgs...); err != nil {
				return err
			}
		}

		return tx.Commit()
	})
	if err != nil {
		return "", err
	}
	return teamID, nil
}

func (s *Store) UpdateTeamTitle(ctx context.Context, storeID, title string) error {
	return s.execOne(ctx, "update team title", qb.Update("teams").
		Set("title", title).
		SetExpr("updated_at", "NOW()").
		Where(qb.Eq("id", storeID)))
}

func (s *Store) DeleteTeam(ctx context.Context, storeID string) error {
	return s.execOne(ctx, "delete team", qb.DeleteFrom("teams").Where(qb.Eq("id", storeID)))
}

func (s *Store) SetCaptain(ctx context.Context, storeID, identity string) error {
	return s.execOne(ctx, "set captain", qb.Update("teams").
		Set("captain_player_id", nullableID(identity)).
		SetExpr("updated_at", "NOW()").
		Where(qb.Eq("id", storeID)))
}

// SetTeamStatus flips the status in one transaction. Approving also drops
// assignments past the approved slot range, and the captain with them.
func (s *Store) SetTeamStatus(ctx context.Context, storeID string, status roster.Status) error {
	if !status.Valid() {
		return fmt.Errorf("%w: unknown status %q", roster.ErrConstraintViolation, status)
	}
	return s.run("set team status", func() error {
		tx, err := s.db.BeginTxx(ctx, nil)
		if err != nil {
			return err
		}
		defer func() {
			_ = tx.Rollback()
		}()

		query, args, err := qb.Update("teams").
			Set("status", string(status)).
			SetExpr("updated_at", "NOW()").
			Where(qb.Eq("id", storeID)).
			ToSQL()
		if err != nil {
			return fmt.Errorf("build set team status query: %w", err)
		}
		result, err := tx.ExecContext(ctx, query, args...)
		if err != nil {
			return err
		}
		affected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("rows affected set team status: %w", err)
		}
		if affected == 0 {
			return fmt.Errorf("set team status: %w", roster.ErrRecordNotFound)
		}

		if status == roster.StatusApproved {
			if err := dropBonusSlots(ctx, tx, storeID); err != nil {
				return err
			}
		}
		return tx.Commit()
	})
}

func dropBonusSlots(ctx context.Context, tx *sqlx.Tx, storeID string) error {
	query, args, err := qb.Select("id", "player_id").
		From("team_players").
		Where(qb.Eq("team_id", storeID), qb.Gte("game_slot", roster.ApprovedSlots)).
		ForUpdate().
		ToSQL()
	if err != nil {
		return fmt.Errorf("build bonus slots query: %w", err)
	}
	var rows []struct {
		ID       string `db:"id"`
		PlayerID string `db:"player_id"`
	}
	if err := tx.SelectContext(ctx, &rows, query, args...); err != nil {
		return err
	}
	if len(rows) == 0 {
		return nil
	}

	linkIDs := make([]any, 0, len(rows))
	playerIDs := make([]any, 0, len(rows))
	for _, row := range rows {
		linkIDs = append(linkIDs, row.ID)
		playerIDs = append(playerIDs, row.PlayerID)
	}

	deleteQuery, deleteArgs, err := qb.DeleteFrom("team_players").Where(qb.In("id", linkIDs)).ToSQL()
	if err != nil {
		return fmt.Errorf("build drop bonus slots query: %w", err)
	}
	if _, err := tx.ExecContext(ctx, deleteQuery, deleteArgs...); err != nil {
		return err
	}

	captainQuery, captainArgs, err := qb.Update("teams").
		Set("captain_player_id", nullableID("")).
		Where(qb.Eq("id", storeID), qb.In("captain_player_id", playerIDs)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build clear bonus captain query: %w", err)
	}
	_, err = tx.ExecContext(ctx, captainQuery, captainArgs...)
	return err
}

func (s *Store) CreateSlotAssignment(ctx context.Context, storeID, identity string, gameSlot int) (string, error) {
	linkID, err := s.opts.SlotLinkIDs.NewID()
	if err != nil {
		return "", fmt.Errorf("generate slot link id: %w", err)
	}

	err = s.run("create slot assignment", func() error {
		query, args, err := qb.InsertInto("team_players").
			Columns("id", "team_id", "player_id", "game_slot").
			Values(linkID, storeID, identity, gameSlot).
			ToSQL()
		if err != nil {
			return fmt.Errorf("build insert assignment query: %w", err)
		}
		_, err = s.db.ExecContext(ctx, query, args...)
		return err
	})
	if err != nil {
		return "", err
	}
	return linkID, nil
}

func (s *Store) DeleteSlotAssignment(ctx context.Context, slotLinkID string) error {
	return s.execOne(ctx, "delete slot assignment", qb.DeleteFrom("team_players").Where(qb.Eq("id", slotLinkID)))
}

func (s *Store) UpdateSlotScore(ctx context.Context, slotLinkID string, score float64) error {
	return s.execOne(ctx, "update slot score", qb.Update("team_players").
		Set("score", score).
		SetExpr("updated_at", "NOW()").
		Where(qb.Eq("id", slotLinkID)))
}

func (s *Store) MoveSlotAssignment(ctx context.Context, slotLinkID string, newSlot int) error {
	return s.execOne(ctx, "move slot assignment", qb.Update("team_players").
		Set("game_slot", newSlot).
		SetExpr("updated_at", "NOW()").
		Where(qb.Eq("id", slotLinkID)))
}

// SwapSlotAssignments locks the team's assignments and walks the swap plan
// one update at a time so the unique (team_id, game_slot) index holds at
// every step.
func (s *Store) SwapSlotAssignments(ctx context.Context, slotLinkIDA, slotLinkIDB string) error {
	return s.run("swap slot assignments", func() error {
		tx, err := s.db.BeginTxx(ctx, nil)
		if err != nil {
			return err
		}
		defer func() {
			_ = tx.Rollback()
		}()

		pairQuery, pairArgs, err := qb.Select("id", "team_id", "game_slot").
			From("team_players").
			Where(qb.In("id", []any{slotLinkIDA, slotLinkIDB})).
			ForUpdate().
			ToSQL()
		if err != nil {
			return fmt.Errorf("build lock assignments query: %w", err)
		}
		var pair []slotRow
		if err := tx.SelectContext(ctx, &pair, pairQuery, pairArgs...); err != nil {
			return err
		}
		teamID, err := sameTeam(pair, slotLinkIDA, slotLinkIDB)
		if err != nil {
			return err
		}

		teamQuery, teamArgs, err := qb.Select("id", "team_id", "game_slot").
			From("team_players").
			Where(qb.Eq("team_id", teamID)).
			ForUpdate().
			ToSQL()
		if err != nil {
			return fmt.Errorf("build lock team slots query: %w", err)
		}
		var slots []slotRow
		if err := tx.SelectContext(ctx, &slots, teamQuery, teamArgs...); err != nil {
			return err
		}

		occupied := make(map[int]string, len(slots))
		for _, row := range slots {
			occupied[row.GameSlot] = row.ID
		}
		moves, err := roster.PlanSwap(occupied, slotLinkIDA, slotLinkIDB, roster.MaxSlots)
		if err != nil {
			return err
		}

		for _, move := range moves {
			query, args, err := qb.Update("team_players").
				Set("game_slot", move.ToSlot).
				SetExpr("updated_at", "NOW()").
				Where(qb.Eq("id", move.SlotLinkID)).
				ToSQL()
			if err != nil {
				return fmt.Errorf("build swap step query: %w", err)
			}
			if _, err := tx.ExecContext(ctx, query, args...); err != nil {
				return err
			}
		}

		return tx.Commit()
	})
}

// GetOrCreatePlayerIdentity matches on the exact name. Two concurrent
// creators of the same new name can both insert.
func (s *Store) GetOrCreatePlayerIdentity(ctx context.Context, name, avatarURL string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", fmt.Errorf("%w: identity name is required", roster.ErrConstraintViolation)
	}

	var identity string
	err := s.run("get or create player", func() error {
		query, args, err := qb.Select("id").
			From("players").
			Where(qb.Eq("name", name)).
			OrderBy("created_at", "id").
			Limit(1).
			ToSQL()
		if err != nil {
			return fmt.Errorf("build find player query: %w", err)
		}
		var ids []string
		if err := s.db.SelectContext(ctx, &ids, query, args...); err != nil {
			return err
		}
		if len(ids) > 0 {
			identity = ids[0]
			return nil
		}

		newID, err := s.opts.PlayerIDs.NewID()
		if err != nil {
			return fmt.Errorf("generate player id: %w", err)
		}
		insertQuery, insertArgs, err := qb.InsertModel("players", playerInsertModel{
			ID:        newID,
			Name:      name,
			AvatarURL: avatarURL,
		}).ToSQL()
		if err != nil {
			return fmt.Errorf("build insert player query: %w", err)
		}
		if _, err := s.db.ExecContext(ctx, insertQuery, insertArgs...); err != nil {
			return err
		}
		identity = newID
		return nil
	})
	return identity, err
}

func (s *Store) run(op string, fn func() error) error {
	err := s.breaker.Execute(func() error {
		return classifyError(op, fn())
	}, isUnavailable)
	return classifyError(op, err)
}

type sqlBuilder interface {
	ToSQL() (string, []any, error)
}

// execOne runs a single-row statement and reports a missing row as
// roster.ErrRecordNotFound.
func (s *Store) execOne(ctx context.Context, op string, b sqlBuilder) error {
	return s.run(op, func() error {
		query, args, err := b.ToSQL()
		if err != nil {
			return fmt.Errorf("build %s query: %w", op, err)
		}
		result, err := s.db.ExecContext(ctx, query, args...)
		if err != nil {
			return err
		}
		affected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("rows affected %s: %w", op, err)
		}
		if affected == 0 {
			return fmt.Errorf("%s: %w", op, roster.ErrRecordNotFound)
		}
		return nil
	})
}

func sameTeam(pair []slotRow, a, b string) (string, error) {
	teams := make(map[string]string, len(pair))
	for _, row := range pair {
		teams[row.ID] = row.TeamID
	}
	teamA, okA := teams[a]
	if !okA {
		return "", fmt.Errorf("%w: assignment %s", roster.ErrRecordNotFound, a)
	}
	teamB, okB := teams[b]
	if !okB {
		return "", fmt.Errorf("%w: assignment %s", roster.ErrRecordNotFound, b)
	}
	if teamA != teamB {
		return "", fmt.Errorf("%w: assignments %s and %s belong to different teams", roster.ErrConstraintViolation, a, b)
	}
	return teamA, nil
}
