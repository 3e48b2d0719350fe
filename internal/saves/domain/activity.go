package domain

import (
	"strconv"
	"strings"
)

// Activity is one of the mutually exclusive actions a run can perform.
type Activity int

const (
	Install Activity = iota + 1
	Backup
	Delete
	ToggleBackend
)

var activityInfo = map[Activity]struct {
	token string
	label string
}{
	Install:       {token: "install", label: "Install a new fully-unlocked save file."},
	Backup:        {token: "backup", label: "Backup an existing save file."},
	Delete:        {token: "delete", label: "Delete an existing save file."},
	ToggleBackend: {token: "toggle-cloud", label: "Change your \"SteamCloud\" setting in the \"options.ini\" file."},
}

// Activities returns every activity in menu order.
func Activities() []Activity {
	return []Activity{Install, Backup, Delete, ToggleBackend}
}

func (a Activity) String() string {
	if info, ok := activityInfo[a]; ok {
		return info.token
	}
	return "Activity(" + strconv.Itoa(int(a)) + ")"
}

// Label is the menu text for a.
func (a Activity) Label() string {
	return activityInfo[a].label
}

// Valid reports whether a is a known activity.
func (a Activity) Valid() bool {
	_, ok := activityInfo[a]
	return ok
}

// RequiresSlot reports whether a acts on a save slot.
func (a Activity) RequiresSlot() bool {
	return a == Install || a == Backup || a == Delete
}

// ActivityAt maps a 1-based menu number to an activity.
func ActivityAt(number int) (Activity, error) {
	all := Activities()
	if number < 1 || number > len(all) {
		return 0, Newf(CodeSlotIndexOutOfRange, "%d is not a valid activity selection (expected 1-%d)", number, len(all)).
			WithDetail("selection", number)
	}
	return all[number-1], nil
}

// ParseActivity accepts a menu number or a token such as "backup".
func ParseActivity(input string) (Activity, error) {
	trimmed := strings.ToLower(strings.TrimSpace(input))
	if n, err := strconv.Atoi(trimmed); err == nil {
		return ActivityAt(n)
	}
	for _, a := range Activities() {
		if trimmed == a.String() {
			return a, nil
		}
	}
	return 0, Newf(CodeSlotIndexOutOfRange, "%q is not a valid activity selection", input).
		WithDetail("selection", input)
}
