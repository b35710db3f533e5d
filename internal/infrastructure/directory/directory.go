package directory

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/riskibarqy/party-leaderboard/internal/domain/roster"
)

//go:embed people.json
var defaultPeople []byte

// Directory is the read-only list of people who can be put on a team.
type Directory struct {
	people []roster.Person
}

// Load reads a JSON array of people from path, or the bundled list when path is empty.
func Load(path string) (*Directory, error) {
	raw := defaultPeople
	if strings.TrimSpace(path) != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read directory %s: %w", path, err)
		}
		raw = data
	}

	people, err := Parse(raw)
	if err != nil {
		return nil, err
	}
	return &Directory{people: people}, nil
}

func New(people []roster.Person) *Directory {
	return &Directory{people: dedupe(people)}
}

// Parse decodes the directory and drops entries without a display name or
// whose display name repeats an earlier entry.
func Parse(raw []byte) ([]roster.Person, error) {
	var people []roster.Person
	if err := sonic.Unmarshal(raw, &people); err != nil {
		return nil, fmt.Errorf("decode directory: %w", err)
	}
	return dedupe(people), nil
}

func (d *Directory) People() []roster.Person {
	if d == nil {
		return nil
	}
	return append([]roster.Person(nil), d.people...)
}

func (d *Directory) Len() int {
	if d == nil {
		return 0
	}
	return len(d.people)
}

func dedupe(people []roster.Person) []roster.Person {
	seen := make(map[string]struct{}, len(people))
	out := make([]roster.Person, 0, len(people))
	for _, p := range people {
		name := p.DisplayName()
		if name == "" {
			continue
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, p)
	}
	return out
}
