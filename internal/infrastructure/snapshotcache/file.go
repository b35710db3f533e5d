package snapshotcache

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/bytedance/sonic"
	"github.com/riskibarqy/party-leaderboard/internal/domain/roster"
	"github.com/valyala/bytebufferpool"
)

const formatVersion = 1

type playerRecord struct {
	Identity    string  `json:"identity"`
	SlotLinkID  string  `json:"slot_link_id,omitempty"`
	DisplayName string  `json:"display_name,omitempty"`
	AvatarURL   string  `json:"avatar_url,omitempty"`
	Score       float64 `json:"score"`
	GameSlot    int     `json:"game_slot"`
}

type teamRecord struct {
	LocalID       string         `json:"local_id"`
	StoreID       string         `json:"store_id"`
	Title         string         `json:"title"`
	CaptainID     string         `json:"captain_id,omitempty"`
	Status        string         `json:"status"`
	SubmitterName string         `json:"submitter_name,omitempty"`
	Players       []playerRecord `json:"players"`
}

type fileModel struct {
	Format   int          `json:"format"`
	SavedAt  time.Time    `json:"saved_at"`
	Approved []teamRecord `json:"approved"`
	Drafts   []teamRecord `json:"drafts"`
}

// File keeps the last committed roster on disk for the first paint after a
// restart. Writes go to a temp file in the same directory and are renamed
// into place.
type File struct {
	path string
	mu   sync.Mutex
	now  func() time.Time
}

func NewFile(path string) *File {
	return &File{path: path, now: time.Now}
}

func (f *File) Path() string { return f.path }

// Load returns false when no cache file exists yet.
func (f *File) Load(_ context.Context) (roster.Roster, bool, error) {
	raw, err := os.ReadFile(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return roster.Roster{}, false, nil
	}
	if err != nil {
		return roster.Roster{}, false, fmt.Errorf("read snapshot cache: %w", err)
	}

	var model fileModel
	if err := sonic.Unmarshal(raw, &model); err != nil {
		return roster.Roster{}, false, fmt.Errorf("decode snapshot cache: %w", err)
	}
	if model.Format != formatVersion {
		return roster.Roster{}, false, fmt.Errorf("snapshot cache format %d is not supported", model.Format)
	}

	out := roster.Roster{
		Approved: teamsFromRecords(model.Approved, roster.StatusApproved),
		Drafts:   teamsFromRecords(model.Drafts, roster.StatusDraft),
	}
	return out, true, nil
}

func (f *File) Save(_ context.Context, r roster.Roster) error {
	model := fileModel{
		Format:   formatVersion,
		SavedAt:  f.now().UTC(),
		Approved: recordsFromTeams(r.Approved),
		Drafts:   recordsFromTeams(r.Drafts),
	}

	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)
	if err := sonic.ConfigDefault.NewEncoder(buf).Encode(model); err != nil {
		return fmt.Errorf("encode snapshot cache: %w", err)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	return writeAtomic(f.path, buf.B)
}

func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create snapshot cache dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create snapshot cache temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() {
		_ = os.Remove(tmpName)
	}()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write snapshot cache: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("sync snapshot cache: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close snapshot cache: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("replace snapshot cache: %w", err)
	}
	return nil
}

func recordsFromTeams(teams []roster.Team) []teamRecord {
	out := make([]teamRecord, 0, len(teams))
	for _, t := range teams {
		players := make([]playerRecord, 0, len(t.Players))
		for _, p := range t.Players {
			players = append(players, playerRecord{
				Identity:    p.Identity,
				SlotLinkID:  p.SlotLinkID,
				DisplayName: p.DisplayName,
				AvatarURL:   p.AvatarURL,
				Score:       p.Score,
				GameSlot:    p.GameSlot,
			})
		}
		out = append(out, teamRecord{
			LocalID:       t.LocalID,
			StoreID:       t.StoreID,
			Title:         t.Title,
			CaptainID:     t.CaptainID,
			Status:        string(t.Status),
			SubmitterName: t.SubmitterName,
			Players:       players,
		})
	}
	return out
}

// teamsFromRecords re-normalizes slots so a hand-edited or truncated file
// still yields well-formed teams.
func teamsFromRecords(records []teamRecord, status roster.Status) []roster.Team {
	out := make([]roster.Team, 0, len(records))
	for _, rec := range records {
		assigned := make([]roster.Player, 0, len(rec.Players))
		for _, p := range rec.Players {
			if p.SlotLinkID == "" {
				continue
			}
			assigned = append(assigned, roster.Player{
				Identity:    p.Identity,
				SlotLinkID:  p.SlotLinkID,
				DisplayName: p.DisplayName,
				AvatarURL:   p.AvatarURL,
				Score:       roster.ClampScore(p.Score),
				GameSlot:    p.GameSlot,
			})
		}
		team := roster.Team{
			StoreID:       rec.StoreID,
			Title:         rec.Title,
			CaptainID:     rec.CaptainID,
			Status:        status,
			SubmitterName: rec.SubmitterName,
			Players:       roster.NormalizeSlots(rec.StoreID, status, assigned),
		}
		out = append(out, roster.DropStaleCaptain(team))
	}
	return roster.AssignLocalIDs(out, status)
}
