package httpapi

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/riskibarqy/party-leaderboard/internal/domain/leaderboard"
	"github.com/riskibarqy/party-leaderboard/internal/domain/minigame"
	"github.com/riskibarqy/party-leaderboard/internal/domain/roster"
	"github.com/riskibarqy/party-leaderboard/internal/usecase"
)

const maxRequestBody = 1 << 20

func (h *Handler) decodeJSON(ctx context.Context, r *http.Request, dst any) error {
	_, span := startSpan(ctx, "httpapi.Handler.decodeJSON")
	defer span.End()

	decoder := sonic.ConfigDefault.NewDecoder(io.LimitReader(r.Body, maxRequestBody))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		return fmt.Errorf("%w: invalid JSON payload: %v", usecase.ErrInvalidInput, err)
	}
	return nil
}

func (h *Handler) validateRequest(ctx context.Context, payload any) error {
	ctx, span := startSpan(ctx, "httpapi.Handler.validateRequest")
	defer span.End()

	if err := h.validator.StructCtx(ctx, payload); err != nil {
		return fmt.Errorf("%w: validation failed: %v", usecase.ErrInvalidInput, err)
	}

	return nil
}

func pathSlot(r *http.Request) (int, error) {
	raw := strings.TrimSpace(r.PathValue("slot"))
	slot, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: slot %q is not a number", usecase.ErrInvalidInput, raw)
	}
	return slot, nil
}

// scoreText accepts a JSON number or string and hands the engine the raw
// text so it can reject garbage itself.
func scoreText(v any) (string, error) {
	switch score := v.(type) {
	case string:
		return score, nil
	case float64:
		return strconv.FormatFloat(score, 'f', -1, 64), nil
	case nil:
		return "", fmt.Errorf("%w: score is required", usecase.ErrInvalidInput)
	default:
		return "", fmt.Errorf("%w: score must be a number or string", usecase.ErrInvalidInput)
	}
}

type healthDTO struct {
	Status        string `json:"status"`
	RosterLoaded  bool   `json:"roster_loaded"`
	RosterSource  string `json:"roster_source,omitempty"`
	RosterVersion uint64 `json:"roster_version"`
}

type submitDraftRequest struct {
	Title         string               `json:"title" validate:"required,max=100"`
	SubmitterName string               `json:"submitter_name" validate:"required,max=100"`
	Players       []draftPlayerRequest `json:"players" validate:"required,min=1,max=6,dive"`
	CaptainSlot   *int                 `json:"captain_slot" validate:"required,min=0,max=5"`
}

type draftPlayerRequest struct {
	Name      string `json:"name" validate:"max=100"`
	AvatarURL string `json:"avatar_url" validate:"omitempty,url"`
}

type renameTeamRequest struct {
	Title string `json:"title" validate:"max=100"`
}

type setCaptainRequest struct {
	Slot *int `json:"slot" validate:"required,min=0,max=5"`
}

type updateScoreRequest struct {
	Score any `json:"score"`
}

type addPlayerRequest struct {
	Name      string `json:"name" validate:"required,max=100"`
	AvatarURL string `json:"avatar_url" validate:"omitempty,url"`
}

type movePlayerRequest struct {
	To *int `json:"to" validate:"required,min=0,max=5"`
}

type createMinigameRequest struct {
	Width  float64 `json:"width" validate:"required,gt=0"`
	Height float64 `json:"height" validate:"required,gt=0"`
}

type stepMinigameRequest struct {
	Left   bool    `json:"left"`
	Right  bool    `json:"right"`
	Jump   bool    `json:"jump"`
	Frames float64 `json:"frames" validate:"omitempty,gt=0,lte=600"`
}

type submitDraftResponse struct {
	StoreID string `json:"store_id"`
}

type playerDTO struct {
	Identity    string  `json:"identity"`
	SlotLinkID  string  `json:"slot_link_id,omitempty"`
	Name        string  `json:"name,omitempty"`
	AvatarURL   string  `json:"avatar_url,omitempty"`
	AvatarColor string  `json:"avatar_color"`
	Initials    string  `json:"initials"`
	Score       float64 `json:"score"`
	GameSlot    int     `json:"game_slot"`
	IsEmpty     bool    `json:"is_empty"`
	IsCaptain   bool    `json:"is_captain"`
}

type teamDTO struct {
	LocalID       string      `json:"local_id"`
	StoreID       string      `json:"store_id"`
	Title         string      `json:"title"`
	Status        string      `json:"status"`
	SubmitterName string      `json:"submitter_name,omitempty"`
	CaptainSlot   int         `json:"captain_slot"`
	Total         float64     `json:"total"`
	Players       []playerDTO `json:"players"`
}

type standingDTO struct {
	Position  int     `json:"position"`
	Total     float64 `json:"total"`
	Highlight string  `json:"highlight,omitempty"`
	Team      teamDTO `json:"team"`
}

type highlightDTO struct {
	Kind      string    `json:"kind"`
	ExpiresAt time.Time `json:"expires_at"`
}

type leaderboardDTO struct {
	Version   uint64        `json:"version"`
	Loaded    bool          `json:"loaded"`
	Source    string        `json:"source,omitempty"`
	UpdatedAt time.Time     `json:"updated_at"`
	Standings []standingDTO `json:"standings"`
}

type adminRosterDTO struct {
	leaderboardDTO
	Approved   []teamDTO               `json:"approved"`
	Drafts     []teamDTO               `json:"drafts"`
	Highlights map[string]highlightDTO `json:"highlights"`
}

type personDTO struct {
	Name        string `json:"name"`
	DisplayName string `json:"display_name"`
	Username    string `json:"username,omitempty"`
	AvatarURL   string `json:"avatar_url,omitempty"`
	AvatarColor string `json:"avatar_color"`
	Initials    string `json:"initials"`
}

type rectDTO struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"w"`
	H float64 `json:"h"`
}

type bodyDTO struct {
	rectDTO
	VX float64 `json:"vx"`
	VY float64 `json:"vy"`
}

type minigameSessionDTO struct {
	ID          string    `json:"id"`
	Seed        uint64    `json:"seed"`
	CreatedAt   time.Time `json:"created_at"`
	Width       float64   `json:"width"`
	Height      float64   `json:"height"`
	Actor       bodyDTO   `json:"actor"`
	Ball        bodyDTO   `json:"ball"`
	Drink       *rectDTO  `json:"drink,omitempty"`
	Score       int       `json:"score"`
	Boosted     bool      `json:"boosted"`
	BoostFrames float64   `json:"boost_frames"`
	Frames      float64   `json:"frames"`
}

func playerToDTO(p roster.Player, captainID string) playerDTO {
	dto := playerDTO{
		Identity:    p.Identity,
		SlotLinkID:  p.SlotLinkID,
		Name:        p.DisplayName,
		AvatarURL:   p.AvatarURL,
		AvatarColor: roster.AvatarColor(p.DisplayName),
		Initials:    roster.Initials(p.DisplayName),
		Score:       p.Score,
		GameSlot:    p.GameSlot,
		IsEmpty:     p.IsEmpty(),
	}
	dto.IsCaptain = !dto.IsEmpty && captainID != "" && p.Identity == captainID
	return dto
}

func teamToDTO(t roster.Team) teamDTO {
	players := make([]playerDTO, 0, len(t.Players))
	for _, p := range t.Players {
		players = append(players, playerToDTO(p, t.CaptainID))
	}
	return teamDTO{
		LocalID:       t.LocalID,
		StoreID:       t.StoreID,
		Title:         t.Title,
		Status:        string(t.Status),
		SubmitterName: t.SubmitterName,
		CaptainSlot:   t.CaptainSlot(),
		Total:         leaderboard.TotalScore(t),
		Players:       players,
	}
}

func teamsToDTO(teams []roster.Team) []teamDTO {
	out := make([]teamDTO, 0, len(teams))
	for _, t := range teams {
		out = append(out, teamToDTO(t))
	}
	return out
}

func leaderboardToDTO(snap usecase.Snapshot) leaderboardDTO {
	standings := make([]standingDTO, 0, len(snap.Standings))
	for _, s := range snap.Standings {
		standings = append(standings, standingDTO{
			Position:  s.Position,
			Total:     s.Total,
			Highlight: string(snap.Highlights[s.Team.StoreID].Kind),
			Team:      teamToDTO(s.Team),
		})
	}
	return leaderboardDTO{
		Version:   snap.Version,
		Loaded:    snap.Loaded,
		Source:    snap.Source,
		UpdatedAt: snap.UpdatedAt,
		Standings: standings,
	}
}

func adminRosterToDTO(snap usecase.Snapshot) adminRosterDTO {
	highlights := make(map[string]highlightDTO, len(snap.Highlights))
	for storeID, hl := range snap.Highlights {
		highlights[storeID] = highlightDTO{Kind: string(hl.Kind), ExpiresAt: hl.ExpiresAt}
	}
	return adminRosterDTO{
		leaderboardDTO: leaderboardToDTO(snap),
		Approved:       teamsToDTO(snap.Approved),
		Drafts:         teamsToDTO(snap.Drafts),
		Highlights:     highlights,
	}
}

func personToDTO(p roster.Person) personDTO {
	name := p.DisplayName()
	return personDTO{
		Name:        p.Name,
		DisplayName: name,
		Username:    p.Username,
		AvatarURL:   p.AvatarURL,
		AvatarColor: roster.AvatarColor(name),
		Initials:    roster.Initials(name),
	}
}

func rectToDTO(r minigame.Rect) rectDTO {
	return rectDTO{X: r.X, Y: r.Y, W: r.W, H: r.H}
}

func bodyToDTO(b minigame.Body) bodyDTO {
	return bodyDTO{rectDTO: rectToDTO(b.Rect), VX: b.VX, VY: b.VY}
}

func minigameToDTO(s usecase.MinigameSession) minigameSessionDTO {
	dto := minigameSessionDTO{
		ID:          s.ID,
		Seed:        s.Seed,
		CreatedAt:   s.CreatedAt,
		Width:       s.State.Width,
		Height:      s.State.Height,
		Actor:       bodyToDTO(s.State.Actor),
		Ball:        bodyToDTO(s.State.Ball),
		Score:       s.State.Score,
		Boosted:     s.State.Boosted,
		BoostFrames: s.State.BoostLeft,
		Frames:      s.State.Frames,
	}
	if s.State.DrinkActive {
		drink := rectToDTO(s.State.Drink)
		dto.Drink = &drink
	}
	return dto
}
