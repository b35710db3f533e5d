package roster

import (
	"strings"
	"unicode"
	"unicode/utf16"
)

// Person is one entry of the external identity directory.
type Person struct {
	Name      string `json:"name"`
	FullName  string `json:"full_name,omitempty"`
	Username  string `json:"username,omitempty"`
	AvatarURL string `json:"profile_pic_url,omitempty"`
}

// DisplayName prefers the full name, then the username, then the plain name.
func (p Person) DisplayName() string {
	for _, candidate := range []string{p.FullName, p.Username, p.Name} {
		if v := strings.TrimSpace(candidate); v != "" {
			return v
		}
	}
	return ""
}

// AvailablePeople filters the directory down to people not already holding a
// slot anywhere in the roster. Matching is by exact display name. query is an
// optional case-insensitive substring filter.
func AvailablePeople(directory []Person, r Roster, query string) []Person {
	assigned := r.AssignedNames()
	needle := strings.ToLower(strings.TrimSpace(query))

	out := make([]Person, 0, len(directory))
	for _, person := range directory {
		name := person.DisplayName()
		if name == "" {
			continue
		}
		if _, taken := assigned[name]; taken {
			continue
		}
		if needle != "" && !strings.Contains(strings.ToLower(name), needle) {
			continue
		}
		out = append(out, person)
	}
	return out
}

// Initials returns up to two upper-cased word initials, or "??" for a blank name.
func Initials(name string) string {
	if strings.TrimSpace(name) == "" {
		return "??"
	}

	var b strings.Builder
	count := 0
	for _, word := range strings.Split(name, " ") {
		if word == "" {
			continue
		}
		r := []rune(word)[0]
		b.WriteRune(unicode.ToUpper(r))
		count++
		if count == 2 {
			break
		}
	}
	return b.String()
}

var avatarPalette = []string{
	"#FF6B6B", "#4ECDC4", "#45B7D1", "#96CEB4", "#FFEAA7",
	"#DDA0DD", "#98D8C8", "#F7DC6F", "#BB8FCE", "#85C1E9",
	"#F8C471", "#82E0AA", "#F1948A", "#85C1E9", "#D7BDE2",
}

const defaultAvatarColor = "#CCCCCC"

// AvatarColor picks a stable palette colour for a name.
func AvatarColor(name string) string {
	if name == "" {
		return defaultAvatarColor
	}

	var hash int32
	for _, unit := range utf16.Encode([]rune(name)) {
		hash = (hash << 5) - hash + int32(unit)
	}

	idx := int64(hash)
	if idx < 0 {
		idx = -idx
	}
	return avatarPalette[idx%int64(len(avatarPalette))]
}
