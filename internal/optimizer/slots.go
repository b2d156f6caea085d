package optimizer

import "strings"

// Slot identifies a lineup slot. The set is closed: eligibility is a fixed
// table keyed by tag, never inferred per call.
type Slot string

const (
	SlotQB  Slot = "QB"
	SlotRB  Slot = "RB"
	SlotWR  Slot = "WR"
	SlotTE  Slot = "TE"
	SlotK   Slot = "K"
	SlotDEF Slot = "DEF"

	SlotSuperFlex Slot = "SUPER_FLEX"
	SlotFlex      Slot = "FLEX"
	SlotWRRBFlex  Slot = "WRRB_FLEX"
	SlotRecFlex   Slot = "REC_FLEX"
	SlotWRTE      Slot = "WR_TE"

	SlotBench Slot = "BN"
	SlotIR    Slot = "IR"
)

// standardSlotOrder is the fill order for exact-position slots.
var standardSlotOrder = []Slot{SlotQB, SlotRB, SlotWR, SlotTE, SlotK, SlotDEF}

// flexFillOrder is the fixed priority in which flexible slots are filled.
// Broadest eligibility first so scarce positions are consumed by the slots
// that can actually hold them.
var flexFillOrder = []Slot{SlotSuperFlex, SlotFlex, SlotWRRBFlex, SlotRecFlex, SlotWRTE}

var slotEligibility = map[Slot][]Position{
	SlotQB:  {PositionQB},
	SlotRB:  {PositionRB},
	SlotWR:  {PositionWR},
	SlotTE:  {PositionTE},
	SlotK:   {PositionK},
	SlotDEF: {PositionDEF},

	SlotSuperFlex: {PositionQB, PositionRB, PositionWR, PositionTE},
	SlotFlex:      {PositionRB, PositionWR, PositionTE},
	SlotWRRBFlex:  {PositionWR, PositionRB},
	SlotRecFlex:   {PositionWR, PositionTE},
	SlotWRTE:      {PositionWR, PositionTE},

	SlotBench: {PositionQB, PositionRB, PositionWR, PositionTE, PositionK, PositionDEF},
	SlotIR:    {PositionQB, PositionRB, PositionWR, PositionTE, PositionK, PositionDEF},
}

// Eligible reports whether a player at the given position can occupy the slot.
func (s Slot) Eligible(pos Position) bool {
	for _, allowed := range slotEligibility[s] {
		if allowed == pos {
			return true
		}
	}
	return false
}

// IsSink reports whether the slot has unlimited capacity (bench/IR).
func (s Slot) IsSink() bool {
	return s == SlotBench || s == SlotIR
}

// IsFlex reports whether the slot accepts more than one position.
func (s Slot) IsFlex() bool {
	switch s {
	case SlotSuperFlex, SlotFlex, SlotWRRBFlex, SlotRecFlex, SlotWRTE:
		return true
	}
	return false
}

// StripSlotOrdinal removes a trailing position number from a raw slot
// label ("RB2" -> "RB", "WR1" -> "WR").
func StripSlotOrdinal(label string) string {
	return strings.TrimRight(label, "0123456789")
}

// NormalizeSlotLabel maps a raw league slot label onto the closed tag set.
// Labels vary by platform ("W/R/T", "D/ST", "SFLX"); unknown labels return
// false rather than a guessed tag.
func NormalizeSlotLabel(label string) (Slot, bool) {
	cleaned := strings.ToUpper(strings.TrimSpace(StripSlotOrdinal(label)))
	switch cleaned {
	case "QB":
		return SlotQB, true
	case "RB":
		return SlotRB, true
	case "WR":
		return SlotWR, true
	case "TE":
		return SlotTE, true
	case "K", "PK":
		return SlotK, true
	case "DEF", "DST", "D/ST":
		return SlotDEF, true
	case "SUPER_FLEX", "SUPERFLEX", "SFLX", "Q/W/R/T":
		return SlotSuperFlex, true
	case "FLEX", "W/R/T", "RB/WR/TE":
		return SlotFlex, true
	case "WRRB_FLEX", "W/R", "RB/WR":
		return SlotWRRBFlex, true
	case "REC_FLEX":
		return SlotRecFlex, true
	case "WR_TE", "WR/TE", "W/T":
		return SlotWRTE, true
	case "BN", "BE", "BENCH":
		return SlotBench, true
	case "IR":
		return SlotIR, true
	}
	return "", false
}
