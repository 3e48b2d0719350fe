package cli

import "errors"

// ErrPromptCancelled indicates that the user aborted an interactive prompt.
var ErrPromptCancelled = errors.New("prompt cancelled")

// errNeedsInput is returned when a choice is missing and prompting is disabled.
var errNeedsInput = errors.New("input required")
