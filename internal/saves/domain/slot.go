package domain

import (
	"strconv"
	"strings"
)

// SlotCount is the number of save slots the game offers.
const SlotCount = 3

// SlotFile describes one numbered save slot inside the active root.
// Exists is a point-in-time probe result.
type SlotFile struct {
	Number int
	Path   string
	Exists bool
}

// ValidateSlot checks that number is within 1..SlotCount.
func ValidateSlot(number int) error {
	if number < 1 || number > SlotCount {
		return Newf(CodeSlotIndexOutOfRange, "%d is not a valid save slot (expected 1-%d)", number, SlotCount).
			WithDetail("slot", number)
	}
	return nil
}

// ParseSlot parses a user supplied slot number.
func ParseSlot(input string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(input))
	if err != nil {
		return 0, Wrapf(err, CodeSlotIndexOutOfRange, "%q is not a valid save slot", input).
			WithDetail("slot", input)
	}
	if err := ValidateSlot(n); err != nil {
		return 0, err
	}
	return n, nil
}
