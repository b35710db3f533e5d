package roster

import (
	"slices"
	"testing"
)

func TestPersonDisplayName(t *testing.T) {
	tests := []struct {
		name   string
		person Person
		want   string
	}{
		{name: "full name wins", person: Person{Name: "n", Username: "u", FullName: "Full"}, want: "Full"},
		{name: "username fallback", person: Person{Name: "n", Username: "u"}, want: "u"},
		{name: "name fallback", person: Person{Name: "n"}, want: "n"},
		{name: "empty guard", person: Person{}, want: ""},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.person.DisplayName(); got != tc.want {
				t.Fatalf("DisplayName() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestAvailablePeople(t *testing.T) {
	directory := []Person{
		{Name: "Alex"},
		{Name: "Bea"},
		{Name: "alexandra", FullName: "Alexandra Lee"},
		{Name: "Cam"},
	}
	r := Roster{
		Approved: []Team{{Players: []Player{{DisplayName: "Bea", SlotLinkID: "l1"}, {DisplayName: "Cam"}}}},
		Drafts:   []Team{{Players: []Player{{DisplayName: "Alex", SlotLinkID: "l2"}}}},
	}

	got := names(AvailablePeople(directory, r, ""))
	if !slices.Equal(got, []string{"Alexandra Lee", "Cam"}) {
		t.Fatalf("unexpected available people: %v", got)
	}

	got = names(AvailablePeople(directory, r, "ALEX"))
	if !slices.Equal(got, []string{"Alexandra Lee"}) {
		t.Fatalf("unexpected filtered people: %v", got)
	}
}

func TestInitials(t *testing.T) {
	cases := map[string]string{
		"Alex Smith":    "AS",
		"madonna":       "M",
		"a b c":         "AB",
		"":              "??",
		"  ":            "??",
		"élodie durand": "ÉD",
	}
	for in, want := range cases {
		if got := Initials(in); got != want {
			t.Fatalf("Initials(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestAvatarColor(t *testing.T) {
	if got := AvatarColor(""); got != defaultAvatarColor {
		t.Fatalf("expected default colour, got %s", got)
	}
	first := AvatarColor("Alex")
	if !slices.Contains(avatarPalette, first) {
		t.Fatalf("colour %s not in palette", first)
	}
	if again := AvatarColor("Alex"); again != first {
		t.Fatalf("colour not stable: %s vs %s", first, again)
	}
}

func names(people []Person) []string {
	out := make([]string, 0, len(people))
	for _, p := range people {
		out = append(out, p.DisplayName())
	}
	return out
}
