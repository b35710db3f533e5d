package roster

import (
	"errors"
	"testing"
)

func fullTeamSlots(count int) map[int]string {
	occupied := make(map[int]string, count)
	for i := 0; i < count; i++ {
		occupied[i] = "link-" + string(rune('a'+i))
	}
	return occupied
}

func TestPlanSwap_FullApprovedTeamNeverDuplicatesSlot(t *testing.T) {
	occupied := fullTeamSlots(ApprovedSlots)
	linkA, linkB := occupied[2], occupied[4]

	moves, err := PlanSwap(occupied, linkA, linkB, MaxSlots)
	if err != nil {
		t.Fatalf("plan swap: %v", err)
	}
	if len(moves) != 3 {
		t.Fatalf("expected three staged moves, got %d", len(moves))
	}
	if moves[0].ToSlot != 5 {
		t.Fatalf("expected temp slot 5, got %d", moves[0].ToSlot)
	}

	state := occupied
	for i := range moves {
		next, err := ReplayMoves(state, moves[i:i+1])
		if err != nil {
			t.Fatalf("step %d violated uniqueness: %v", i+1, err)
		}
		seen := make(map[string]int)
		for slot, link := range next {
			if prev, dup := seen[link]; dup {
				t.Fatalf("assignment %s in slots %d and %d", link, prev, slot)
			}
			seen[link] = slot
		}
		state = next
	}

	if state[2] != linkB || state[4] != linkA {
		t.Fatalf("swap not applied: slot2=%s slot4=%s", state[2], state[4])
	}
	if _, used := state[5]; used {
		t.Fatalf("temp slot should be released")
	}
}

func TestPlanSwap_UsesLowestFreeSlot(t *testing.T) {
	occupied := map[int]string{0: "a", 2: "b", 3: "c"}

	moves, err := PlanSwap(occupied, "a", "c", DraftSlots)
	if err != nil {
		t.Fatalf("plan swap: %v", err)
	}
	if moves[0].ToSlot != 1 {
		t.Fatalf("expected temp slot 1, got %d", moves[0].ToSlot)
	}
	want := []SlotMove{{"a", 1}, {"c", 0}, {"a", 3}}
	for i := range want {
		if moves[i] != want[i] {
			t.Fatalf("move %d = %+v, want %+v", i, moves[i], want[i])
		}
	}
}

func TestPlanSwap_AllSlotsOccupied(t *testing.T) {
	occupied := fullTeamSlots(MaxSlots)

	_, err := PlanSwap(occupied, occupied[0], occupied[1], MaxSlots)
	if !errors.Is(err, ErrIrreconcilableSwap) {
		t.Fatalf("expected ErrIrreconcilableSwap, got %v", err)
	}
}

func TestPlanSwap_UnknownAssignment(t *testing.T) {
	_, err := PlanSwap(map[int]string{0: "a"}, "a", "zzz", MaxSlots)
	if !errors.Is(err, ErrRecordNotFound) {
		t.Fatalf("expected ErrRecordNotFound, got %v", err)
	}
}

func TestReplayMoves_DirectSwapViolatesUniqueness(t *testing.T) {
	occupied := map[int]string{0: "a", 1: "b"}

	_, err := ReplayMoves(occupied, []SlotMove{{"a", 1}, {"b", 0}})
	if !errors.Is(err, ErrConstraintViolation) {
		t.Fatalf("expected ErrConstraintViolation, got %v", err)
	}
}
