package roster

import "fmt"

// SlotMove relocates one assignment to another game slot.
type SlotMove struct {
	SlotLinkID string
	ToSlot     int
}

// PlanSwap orders the slot updates that exchange two assignments of the same
// team without two assignments ever sharing a slot. occupied maps each game
// slot of the team to the assignment holding it.
func PlanSwap(occupied map[int]string, slotLinkA, slotLinkB string, addressable int) ([]SlotMove, error) {
	slotA, slotB := -1, -1
	for slot, link := range occupied {
		switch link {
		case slotLinkA:
			slotA = slot
		case slotLinkB:
			slotB = slot
		}
	}
	if slotA < 0 {
		return nil, fmt.Errorf("%w: assignment %s", ErrRecordNotFound, slotLinkA)
	}
	if slotB < 0 {
		return nil, fmt.Errorf("%w: assignment %s", ErrRecordNotFound, slotLinkB)
	}
	if slotLinkA == slotLinkB {
		return nil, nil
	}

	temp := -1
	for i := 0; i < addressable; i++ {
		if _, used := occupied[i]; !used {
			temp = i
			break
		}
	}
	if temp < 0 {
		return nil, fmt.Errorf("%w: all %d slots are occupied", ErrIrreconcilableSwap, addressable)
	}

	return []SlotMove{
		{SlotLinkID: slotLinkA, ToSlot: temp},
		{SlotLinkID: slotLinkB, ToSlot: slotA},
		{SlotLinkID: slotLinkA, ToSlot: slotB},
	}, nil
}

// ReplayMoves applies moves one at a time to a copy of occupied and fails on
// the first step that would put two assignments in one slot.
func ReplayMoves(occupied map[int]string, moves []SlotMove) (map[int]string, error) {
	state := make(map[int]string, len(occupied))
	slotOf := make(map[string]int, len(occupied))
	for slot, link := range occupied {
		state[slot] = link
		slotOf[link] = slot
	}

	for i, move := range moves {
		from, ok := slotOf[move.SlotLinkID]
		if !ok {
			return nil, fmt.Errorf("%w: step %d assignment %s", ErrRecordNotFound, i+1, move.SlotLinkID)
		}
		if holder, taken := state[move.ToSlot]; taken && holder != move.SlotLinkID {
			return nil, fmt.Errorf("%w: step %d slot %d already held by %s", ErrConstraintViolation, i+1, move.ToSlot, holder)
		}
		delete(state, from)
		state[move.ToSlot] = move.SlotLinkID
		slotOf[move.SlotLinkID] = move.ToSlot
	}

	return state, nil
}
