package cli

// Prompter asks the user for choices. Every method returns an error wrapping
// ErrPromptCancelled when the user aborts.
type Prompter interface {
	Select(label string, items []string, defaultValue string) (int, string, error)
	Confirm(label string, defaultYes bool) (bool, error)
	Pause(label string) error
}
