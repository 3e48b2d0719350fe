package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/example/isaac-save-manager/internal/logging"
	"github.com/example/isaac-save-manager/internal/saves"
	"github.com/example/isaac-save-manager/internal/saves/activity"
	"github.com/example/isaac-save-manager/internal/saves/domain"
	"github.com/example/isaac-save-manager/internal/saves/payload"
	"github.com/example/isaac-save-manager/internal/saves/resolver"
)

const (
	// EnvNonInteractive disables every prompt when set to a true value.
	EnvNonInteractive = "ISAAC_SAVES_NON_INTERACTIVE"
	// EnvBackupDir overrides the default backup directory.
	EnvBackupDir = "ISAAC_SAVES_BACKUP_DIR"
)

type options struct {
	variant          string
	activity         string
	slot             int
	slotSet          bool
	yes              bool
	nonInteractive   bool
	backupDir        string
	savesDir         string
	skipProcessCheck bool
	verbose          int
}

type app struct {
	mgr      *saves.Manager
	prompter Prompter
	stdout   io.Writer
	stderr   io.Writer
	styles   styles
	opts     options
}

func newApp(mgr *saves.Manager, prompter Prompter, stdout, stderr io.Writer) *app {
	return &app{
		mgr:      mgr,
		prompter: prompter,
		stdout:   stdout,
		stderr:   stderr,
		styles:   newStyles(stdout, ColorEnabled(stdout)),
	}
}

// NewRootCommand constructs the root Cobra command. Without a subcommand it runs the
// interactive wizard.
func NewRootCommand(mgr *saves.Manager, prompter Prompter, stdout, stderr io.Writer) *cobra.Command {
	return newApp(mgr, prompter, stdout, stderr).command()
}

func (a *app) command() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "isaac-saves",
		Short:         "The Binding of Isaac save file manager",
		Long:          "isaac-saves installs fully unlocked save files for The Binding of Isaac: Rebirth and its DLCs, and backs up or deletes existing ones.",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.applyOptions(cmd)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			a.printBanner()
			var forced domain.Activity
			if a.opts.activity != "" {
				parsed, err := domain.ParseActivity(a.opts.activity)
				if err != nil {
					return err
				}
				forced = parsed
			}
			return a.run(forced, "")
		},
	}

	cmd.SetOut(a.stdout)
	cmd.SetErr(a.stderr)

	flags := cmd.PersistentFlags()
	flags.StringVar(&a.opts.variant, "variant", "", "Game to manage: 1-5, rebirth, afterbirth, afterbirth-plus, afterbirth-plus-bp5 or repentance")
	flags.BoolVarP(&a.opts.yes, "yes", "y", false, "Answer yes to every confirmation")
	flags.BoolVar(&a.opts.nonInteractive, "non-interactive", false, "Never prompt; fail when a choice is missing (env "+EnvNonInteractive+")")
	flags.StringVar(&a.opts.backupDir, "backup-dir", "", "Directory backups are copied into (env "+EnvBackupDir+")")
	flags.StringVar(&a.opts.savesDir, "saves-dir", "", "Directory holding <game>/persistentgamedata.dat templates to install instead of the bundled ones")
	flags.BoolVar(&a.opts.skipProcessCheck, "skip-process-check", false, "Do not refuse to run while the game is open")
	flags.CountVarP(&a.opts.verbose, "verbose", "v", "Increase log verbosity (repeatable)")

	flags.IntVar(&a.opts.slot, "slot", 0, "Save slot to act on (1-3)")
	cmd.Flags().StringVar(&a.opts.activity, "activity", "", "Activity to perform: install, backup, delete or toggle-cloud")

	cmd.AddCommand(a.newListCommand())
	cmd.AddCommand(a.newSlotCommand(domain.Install, "Install a fully unlocked save file into a slot"))
	cmd.AddCommand(a.newSlotCommand(domain.Backup, "Copy a save slot into the backup directory"))
	cmd.AddCommand(a.newSlotCommand(domain.Delete, "Delete a save slot"))
	cmd.AddCommand(a.newToggleCommand())

	return cmd
}

func (a *app) newListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Show where the save files live and which slots are used",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.checkProcess(); err != nil {
				return err
			}
			v, err := a.chooseVariant()
			if err != nil {
				return err
			}
			session, err := a.mgr.Resolve(v)
			if err != nil {
				return err
			}
			a.printSession(session)
			return nil
		},
	}
}

func (a *app) newSlotCommand(act domain.Activity, short string) *cobra.Command {
	return &cobra.Command{
		Use:   act.String() + " [slot]",
		Short: short,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			slotArg := ""
			if len(args) == 1 {
				slotArg = args[0]
			}
			return a.run(act, slotArg)
		},
	}
}

func (a *app) newToggleCommand() *cobra.Command {
	return &cobra.Command{
		Use:   domain.ToggleBackend.String(),
		Short: "Turn the game's SteamCloud setting on or off",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(domain.ToggleBackend, "")
		},
	}
}

func (a *app) applyOptions(cmd *cobra.Command) error {
	logging.SetVerbosity(a.opts.verbose)
	a.opts.slotSet = cmd.Flags().Changed("slot")

	if f := cmd.Flags().Lookup("non-interactive"); f == nil || !f.Changed {
		if value, ok := os.LookupEnv(EnvNonInteractive); ok && value != "" {
			parsed, err := strconv.ParseBool(value)
			if err != nil {
				return fmt.Errorf("invalid %s value %q: %w", EnvNonInteractive, value, err)
			}
			a.opts.nonInteractive = parsed
		}
	}
	if f := cmd.Flags().Lookup("backup-dir"); f == nil || !f.Changed {
		if value := os.Getenv(EnvBackupDir); value != "" {
			a.opts.backupDir = value
		}
	}

	if a.opts.backupDir != "" {
		a.mgr.SetBackupDir(a.opts.backupDir)
	}
	if a.opts.savesDir != "" {
		a.mgr.SetPayloads(payload.NewDir(a.mgr.FileSystem(), a.opts.savesDir))
	}
	return nil
}

// interactive reports whether the user may be prompted.
func (a *app) interactive() bool {
	return !a.opts.nonInteractive
}

// shouldPause reports whether the console should be held open after the run.
func (a *app) shouldPause() bool {
	return a.interactive() && !a.opts.yes
}

func (a *app) run(forced domain.Activity, slotArg string) error {
	if err := a.checkProcess(); err != nil {
		return err
	}

	v, err := a.chooseVariant()
	if err != nil {
		return err
	}

	session, err := a.mgr.Resolve(v)
	if err != nil {
		return err
	}
	a.printSession(session)

	if session.Backend == domain.CloudBackend && forced != domain.ToggleBackend {
		session, err = a.offerCloudOff(session)
		if err != nil {
			return err
		}
	}

	act := forced
	if act == 0 {
		act, err = a.chooseActivity()
		if err != nil {
			return err
		}
	}

	if act == domain.ToggleBackend {
		return a.toggle(session)
	}

	slot, err := a.chooseSlot(act, slotArg)
	if err != nil {
		return err
	}
	file, err := session.Slot(slot)
	if err != nil {
		return err
	}

	switch {
	case act == domain.Delete && file.Exists:
		ok, err := a.confirm(fmt.Sprintf("Delete save slot %d (%s)", slot, file.Path), false)
		if err != nil {
			return err
		}
		if !ok {
			fmt.Fprintln(a.stdout, "Nothing was deleted.")
			return nil
		}
	case act == domain.Install && file.Exists:
		ok, err := a.confirm(fmt.Sprintf("Save slot %d already has a save file. Replace it", slot), false)
		if err != nil {
			return err
		}
		if !ok {
			fmt.Fprintln(a.stdout, "Nothing was installed.")
			return nil
		}
	}

	outcome, err := a.mgr.Perform(session, act, slot)
	if err != nil {
		if act == domain.Install && errors.Is(err, domain.ErrPayloadMissing) {
			return fmt.Errorf("%w; pass --saves-dir with a directory holding <game>/persistentgamedata.dat to install from it", err)
		}
		return err
	}
	a.printOutcome(outcome)
	return nil
}

func (a *app) checkProcess() error {
	if a.opts.skipProcessCheck {
		return nil
	}
	return a.mgr.CheckGameNotRunning()
}

func (a *app) chooseVariant() (domain.Variant, error) {
	if a.opts.variant != "" {
		return domain.ParseVariant(a.opts.variant)
	}
	if !a.interactive() {
		return 0, fmt.Errorf("%w: pass --variant to choose the game", errNeedsInput)
	}

	variants := domain.Variants()
	items := make([]string, len(variants))
	for i, v := range variants {
		items[i] = v.String()
	}
	idx, _, err := a.prompter.Select("Which game do you want to manage the save files for?", items, "")
	if err != nil {
		return 0, err
	}
	return domain.VariantAt(idx + 1)
}

func (a *app) chooseActivity() (domain.Activity, error) {
	if !a.interactive() {
		return 0, fmt.Errorf("%w: pass --activity or use a subcommand", errNeedsInput)
	}
	activities := domain.Activities()
	items := make([]string, len(activities))
	for i, act := range activities {
		items[i] = act.Label()
	}
	idx, _, err := a.prompter.Select("What do you want to do?", items, "")
	if err != nil {
		return 0, err
	}
	return domain.ActivityAt(idx + 1)
}

func (a *app) chooseSlot(act domain.Activity, slotArg string) (int, error) {
	if slotArg != "" {
		return domain.ParseSlot(slotArg)
	}
	if a.opts.slotSet {
		if err := domain.ValidateSlot(a.opts.slot); err != nil {
			return 0, err
		}
		return a.opts.slot, nil
	}
	if !a.interactive() {
		return 0, fmt.Errorf("%w: pass --slot to choose the save slot", errNeedsInput)
	}

	items := make([]string, domain.SlotCount)
	for i := range items {
		items[i] = fmt.Sprintf("Save slot %d", i+1)
	}
	idx, _, err := a.prompter.Select(slotQuestion(act), items, "")
	if err != nil {
		return 0, err
	}
	return idx + 1, domain.ValidateSlot(idx + 1)
}

func slotQuestion(act domain.Activity) string {
	switch act {
	case domain.Install:
		return "Which save slot do you want to install the fully-unlocked save file to?"
	case domain.Backup:
		return "Which save file do you want to backup?"
	default:
		return "Which save file do you want to delete?"
	}
}

// confirm asks a yes/no question. --yes answers it; without a terminal it fails.
func (a *app) confirm(label string, defaultYes bool) (bool, error) {
	if a.opts.yes {
		return true, nil
	}
	if !a.interactive() {
		return false, domain.Newf(domain.CodeCancelled, "%s? pass --yes to confirm", label)
	}
	return a.prompter.Confirm(label, defaultYes)
}

func (a *app) offerCloudOff(session *resolver.Session) (*resolver.Session, error) {
	fmt.Fprintf(a.stdout, "%s You have \"SteamCloud=1\" in your options.ini file, which is not recommended, since it can interfere with installing a full save file. Additionally, you are more likely to permanently lose your save to cloud sync issues.\n",
		a.styles.warning.Render("Warning:"))
	if !a.interactive() || a.opts.yes {
		return session, nil
	}

	ok, err := a.prompter.Confirm("Do you want me to disable it for you", true)
	if err != nil {
		return nil, err
	}
	if !ok {
		fmt.Fprintln(a.stdout)
		return session, nil
	}

	outcome, err := a.mgr.Perform(session, domain.ToggleBackend, 0)
	if err != nil {
		return nil, err
	}
	a.printOutcome(outcome)

	refreshed, err := a.mgr.Resolve(session.Variant)
	if err != nil {
		return nil, err
	}
	a.printSession(refreshed)
	return refreshed, nil
}

func (a *app) toggle(session *resolver.Session) error {
	state := "off"
	if session.Backend == domain.CloudBackend {
		state = "on"
	}
	fmt.Fprintf(a.stdout, "Currently, the \"SteamCloud\" feature is turned %s.\n", state)

	var question string
	if session.Backend == domain.CloudBackend {
		fmt.Fprintln(a.stdout, "Turning it off will make the game read from the save files in the \"Documents\" directory instead of in the \"Steam\" directory.")
		question = "Do you want to turn it off"
	} else {
		fmt.Fprintln(a.stdout, "Turning it on will make the game read from the save files in the \"Steam\" directory instead of in the \"Documents\" directory.")
		question = "Do you want to turn it on"
	}

	ok, err := a.confirm(question, false)
	if err != nil {
		return err
	}
	if !ok {
		fmt.Fprintln(a.stdout, "The \"SteamCloud\" setting was not changed.")
		return nil
	}

	outcome, err := a.mgr.Perform(session, domain.ToggleBackend, 0)
	if err != nil {
		return err
	}
	a.printOutcome(outcome)
	return nil
}

func (a *app) printBanner() {
	fmt.Fprintln(a.stdout, a.styles.heading.Render("The Binding of Isaac: Rebirth (and DLCs) save file manager"))
	fmt.Fprintln(a.stdout)
}

func (a *app) printSession(session *resolver.Session) {
	fmt.Fprintf(a.stdout, "Game: %s\n", session.Variant)
	fmt.Fprintf(a.stdout, "Save directory (%s): %s\n", session.Backend, session.ActiveRoot)
	fmt.Fprintln(a.stdout, "Your current save files are as follows:")
	for _, slot := range session.Slots {
		value := a.styles.empty.Render("[empty]")
		if slot.Exists {
			value = a.styles.success.Render(slot.Path)
		}
		fmt.Fprintf(a.stdout, "%d) %s\n", slot.Number, value)
	}
	fmt.Fprintln(a.stdout)
}

func (a *app) printOutcome(outcome activity.Outcome) {
	var msg string
	switch outcome.Activity {
	case domain.Install:
		msg = fmt.Sprintf("Installed a fully unlocked save file to slot %d: %s", outcome.Slot, outcome.Path)
	case domain.Backup:
		msg = fmt.Sprintf("Backed up save slot %d to: %s", outcome.Slot, outcome.Destination)
	case domain.Delete:
		msg = fmt.Sprintf("Deleted save slot %d: %s", outcome.Slot, outcome.Path)
	case domain.ToggleBackend:
		msg = fmt.Sprintf("Set \"SteamCloud=%s\" in: %s", outcome.Backend.FlagValue(), outcome.Path)
	default:
		msg = outcome.Path
	}
	fmt.Fprintln(a.stdout, a.styles.success.Render(msg))
}

// Execute runs the tool with args and returns the exit code. Failures are printed as a
// red "Error:" line. When stdinTerminal is set and prompting is allowed, the console is
// held open until Enter is pressed.
func Execute(mgr *saves.Manager, prompter Prompter, stdout, stderr io.Writer, args []string, stdinTerminal bool) int {
	a := newApp(mgr, prompter, stdout, stderr)
	cmd := a.command()
	if args == nil {
		// cobra falls back to os.Args for a nil slice
		args = []string{}
	}
	cmd.SetArgs(args)

	code := 0
	if err := cmd.Execute(); err != nil {
		errStyles := newStyles(stderr, ColorEnabled(stderr))
		fmt.Fprintf(stderr, "%s %s\n", errStyles.failure.Render("Error:"), describe(err))
		code = 1
	}

	if stdinTerminal && a.shouldPause() {
		fmt.Fprintln(stdout, "You can now close this window.")
		if err := prompter.Pause("Press enter to exit"); err != nil {
			mgr.Logger().Debug().Err(err).Msg("pause prompt failed")
		}
	}
	return code
}

func describe(err error) string {
	if errors.Is(err, ErrPromptCancelled) {
		return "cancelled"
	}
	return err.Error()
}
