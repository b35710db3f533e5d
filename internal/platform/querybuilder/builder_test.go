package querybuilder

import "testing"

func TestSelectBuilder(t *testing.T) {
	query, args, err := Select("tp.id", "p.name").
		From("team_players tp").
		Join("players p", "p.id = tp.player_id").
		Join("teams t", "t.id = tp.team_id").
		Where(Eq("t.status", "approved")).
		OrderBy("tp.team_id", "tp.game_slot").
		Limit(10).
		ToSQL()
	if err != nil {
		t.Fatalf("build select query: %v", err)
	}

	wantQuery := "SELECT tp.id, p.name FROM team_players tp JOIN players p ON p.id = tp.player_id JOIN teams t ON t.id = tp.team_id WHERE t.status = $1 ORDER BY tp.team_id, tp.game_slot LIMIT 10"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 1 || args[0] != "approved" {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestSelectBuilderEmptyIn(t *testing.T) {
	query, args, err := Select("id").From("team_players").Where(In("id", nil)).ToSQL()
	if err != nil {
		t.Fatalf("build select query: %v", err)
	}
	if query != "SELECT id FROM team_players WHERE 1=0" || len(args) != 0 {
		t.Fatalf("unexpected query %q args %+v", query, args)
	}
}

func TestSelectBuilderForUpdate(t *testing.T) {
	query, args, err := Select("id", "team_id", "game_slot").
		From("team_players").
		Where(In("id", []any{"a", "b"})).
		ForUpdate().
		ToSQL()
	if err != nil {
		t.Fatalf("build select query: %v", err)
	}

	wantQuery := "SELECT id, team_id, game_slot FROM team_players WHERE id IN ($1, $2) FOR UPDATE"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 2 {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestSelectBuilderGte(t *testing.T) {
	query, args, err := Select("id", "player_id").
		From("team_players").
		Where(Eq("team_id", "team_1"), Gte("game_slot", 5)).
		ForUpdate().
		ToSQL()
	if err != nil {
		t.Fatalf("build select query: %v", err)
	}

	wantQuery := "SELECT id, player_id FROM team_players WHERE team_id = $1 AND game_slot >= $2 FOR UPDATE"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 2 || args[0] != "team_1" || args[1] != 5 {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestInsertBuilder(t *testing.T) {
	query, args, err := InsertInto("players").
		Columns("id", "name").
		Values("p1", "Alex").
		Suffix("RETURNING id").
		ToSQL()
	if err != nil {
		t.Fatalf("build insert query: %v", err)
	}

	wantQuery := "INSERT INTO players (id, name) VALUES ($1, $2) RETURNING id"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 2 || args[0] != "p1" || args[1] != "Alex" {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestUpdateBuilder(t *testing.T) {
	query, args, err := Update("team_players").
		Set("score", 4.5).
		SetExpr("updated_at", "NOW()").
		Where(Eq("id", "l1")).
		ToSQL()
	if err != nil {
		t.Fatalf("build update query: %v", err)
	}

	wantQuery := "UPDATE team_players SET score = $1, updated_at = NOW() WHERE id = $2"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 2 || args[0] != 4.5 || args[1] != "l1" {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestDeleteBuilder(t *testing.T) {
	query, args, err := DeleteFrom("team_players").
		Where(Eq("id", "l1")).
		ToSQL()
	if err != nil {
		t.Fatalf("build delete query: %v", err)
	}

	wantQuery := "DELETE FROM team_players WHERE id = $1"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 1 || args[0] != "l1" {
		t.Fatalf("unexpected args: %+v", args)
	}

	if _, _, err := DeleteFrom("teams").ToSQL(); err == nil {
		t.Fatalf("expected unconditional delete to be rejected")
	}
}

func TestInsertModel(t *testing.T) {
	type row struct {
		ID     string `db:"id"`
		Title  string `db:"title"`
		Hidden string
		skip   string `db:"skip"`
	}

	query, args, err := InsertModel("teams", row{ID: "t1", Title: "Blue", skip: "x"}).ToSQL()
	if err != nil {
		t.Fatalf("build insert model: %v", err)
	}
	if query != "INSERT INTO teams (id, title) VALUES ($1, $2)" {
		t.Fatalf("unexpected query: %s", query)
	}
	if len(args) != 2 || args[1] != "Blue" {
		t.Fatalf("unexpected args: %+v", args)
	}

	query, _, err = InsertModel("players", &struct {
		ID string `db:"id"`
	}{ID: "p1"}).Suffix("RETURNING id").ToSQL()
	if err != nil || query != "INSERT INTO players (id) VALUES ($1) RETURNING id" {
		t.Fatalf("unexpected pointer model query %q err %v", query, err)
	}
}

func TestInsertModelRejectsNonStruct(t *testing.T) {
	if _, _, err := InsertModel("teams", 42).ToSQL(); err == nil {
		t.Fatalf("expected error for non-struct model")
	}
	var nilRow *struct{}
	if _, _, err := InsertModel("teams", nilRow).ToSQL(); err == nil {
		t.Fatalf("expected error for nil model")
	}
}
