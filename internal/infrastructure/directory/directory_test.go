package directory

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/riskibarqy/party-leaderboard/internal/domain/roster"
	"github.com/stretchr/testify/require"
)

func TestLoadEmbeddedDefault(t *testing.T) {
	dir, err := Load("")
	require.NoError(t, err)
	require.Positive(t, dir.Len())

	people := dir.People()
	require.Equal(t, "Alex Morgan", people[0].DisplayName())
	require.Equal(t, "camdoesparties", people[2].DisplayName())
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "people.json")
	raw := `[
		{"name": "a", "full_name": "Alex"},
		{"name": "dup", "full_name": "Alex"},
		{"name": ""},
		{"name": "b", "username": "bee", "profile_pic_url": "https://img/b.png"}
	]`
	require.NoError(t, os.WriteFile(path, []byte(raw), 0o600))

	dir, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, []roster.Person{
		{Name: "a", FullName: "Alex"},
		{Name: "b", Username: "bee", AvatarURL: "https://img/b.png"},
	}, dir.People())
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.json"))
	require.Error(t, err)

	_, err = Parse([]byte(`{"name": "not an array"}`))
	require.Error(t, err)
}

func TestPeopleReturnsCopy(t *testing.T) {
	dir := New([]roster.Person{{Name: "Alex"}})
	people := dir.People()
	people[0].Name = "changed"
	require.Equal(t, "Alex", dir.People()[0].Name)
}
