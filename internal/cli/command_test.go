package cli

import (
	"bytes"
	"errors"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/isaac-save-manager/internal/saves"
	"github.com/example/isaac-save-manager/internal/saves/domain"
	"github.com/example/isaac-save-manager/internal/saves/payload"
	"github.com/example/isaac-save-manager/internal/saves/sysdirs"
)

type stubPrompter struct {
	selects  []selectResponse
	confirms []confirmResponse

	selectCalls  int
	confirmCalls int
	pauseCalls   int
	pauseErr     error
	labels       []string
}

type selectResponse struct {
	index int
	err   error
}

type confirmResponse struct {
	value bool
	err   error
}

var errStubNoMore = errors.New("stub prompter: no more responses")

func (s *stubPrompter) Select(label string, items []string, defaultValue string) (int, string, error) {
	s.labels = append(s.labels, label)
	if s.selectCalls >= len(s.selects) {
		return 0, "", errStubNoMore
	}
	resp := s.selects[s.selectCalls]
	s.selectCalls++
	if resp.err != nil {
		return 0, "", resp.err
	}
	return resp.index, items[resp.index], nil
}

func (s *stubPrompter) Confirm(label string, defaultYes bool) (bool, error) {
	s.labels = append(s.labels, label)
	if s.confirmCalls >= len(s.confirms) {
		return false, errStubNoMore
	}
	resp := s.confirms[s.confirmCalls]
	s.confirmCalls++
	return resp.value, resp.err
}

func (s *stubPrompter) Pause(label string) error {
	s.pauseCalls++
	return s.pauseErr
}

var (
	gameRoot   = filepath.Join("/home", "alice", "Documents", "My Games", "Binding of Isaac Rebirth")
	cloudRoot  = filepath.Join("/steam", "userdata", "55", "250900", "remote")
	backupRoot = filepath.Join("/opt", "isaac-saves")
)

type harness struct {
	fs       afero.Fs
	mgr      *saves.Manager
	prompter *stubPrompter
	stdout   *bytes.Buffer
	stderr   *bytes.Buffer
}

func newHarness(t *testing.T, steamCloud string) *harness {
	t.Helper()
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, filepath.Join(gameRoot, "log.txt"), []byte("log"), 0o644))
	require.NoError(t, afero.WriteFile(fs, filepath.Join(gameRoot, "options.ini"), []byte("[Options]\nSteamCloud="+steamCloud+"\n"), 0o644))

	templates := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(templates, payload.Location(domain.Rebirth), []byte("unlocked"), 0o644))

	dirs := &sysdirs.Static{
		InstallDir:   "/steam",
		UserID:       55,
		DocumentsDir: filepath.Join("/home", "alice", "Documents"),
		Username:     "alice",
	}
	mgr := saves.NewManager(fs, dirs, payload.NewFS(templates), backupRoot, nil)
	mgr.SetUsersRoot("/home")

	return &harness{
		fs:       fs,
		mgr:      mgr,
		prompter: &stubPrompter{},
		stdout:   &bytes.Buffer{},
		stderr:   &bytes.Buffer{},
	}
}

func (h *harness) run(args ...string) error {
	cmd := NewRootCommand(h.mgr, h.prompter, h.stdout, h.stderr)
	if args == nil {
		args = []string{}
	}
	cmd.SetArgs(args)
	return cmd.Execute()
}

func (h *harness) writeSlot(t *testing.T, root string, number int, contents string) string {
	t.Helper()
	path := filepath.Join(root, fmt.Sprintf("persistentgamedata%d.dat", number))
	require.NoError(t, afero.WriteFile(h.fs, path, []byte(contents), 0o644))
	return path
}

func (h *harness) read(t *testing.T, path string) string {
	t.Helper()
	data, err := afero.ReadFile(h.fs, path)
	require.NoError(t, err)
	return string(data)
}

func TestWizardInstallsIntoChosenSlot(t *testing.T) {
	h := newHarness(t, "0")
	h.prompter.selects = []selectResponse{{index: 0}, {index: 0}, {index: 1}}

	require.NoError(t, h.run())

	out := h.stdout.String()
	assert.Contains(t, out, "Your current save files are as follows:")
	assert.Contains(t, out, "2) [empty]")
	assert.Contains(t, out, "Installed a fully unlocked save file to slot 2")
	assert.Equal(t, "unlocked", h.read(t, filepath.Join(gameRoot, "persistentgamedata2.dat")))
	assert.Equal(t, 0, h.prompter.confirmCalls)
}

func TestWizardAsksBeforeReplacingSave(t *testing.T) {
	h := newHarness(t, "0")
	path := h.writeSlot(t, gameRoot, 1, "my run")
	h.prompter.selects = []selectResponse{{index: 0}, {index: 0}, {index: 0}}
	h.prompter.confirms = []confirmResponse{{value: false}}

	require.NoError(t, h.run())
	assert.Contains(t, h.stdout.String(), "Nothing was installed.")
	assert.Equal(t, "my run", h.read(t, path))
}

func TestWizardPromptCancelled(t *testing.T) {
	h := newHarness(t, "0")
	h.prompter.selects = []selectResponse{{err: fmt.Errorf("%w: ^C", ErrPromptCancelled)}}

	err := h.run()
	assert.ErrorIs(t, err, ErrPromptCancelled)
}

func TestInstallSubcommandNonInteractive(t *testing.T) {
	h := newHarness(t, "0")

	require.NoError(t, h.run("install", "3", "--variant", "rebirth", "--non-interactive"))
	assert.Equal(t, "unlocked", h.read(t, filepath.Join(gameRoot, "persistentgamedata3.dat")))
	assert.Zero(t, h.prompter.selectCalls)
}

func TestSlotFlagOnSubcommand(t *testing.T) {
	h := newHarness(t, "0")

	require.NoError(t, h.run("install", "--slot", "2", "--variant", "rebirth", "--non-interactive"))
	assert.Equal(t, "unlocked", h.read(t, filepath.Join(gameRoot, "persistentgamedata2.dat")))

	err := h.run("install", "--slot", "0", "--variant", "rebirth")
	assert.ErrorIs(t, err, domain.ErrSlotIndexOutOfRange)
	assert.Zero(t, h.prompter.selectCalls)
}

func TestInstallWithoutTemplatesPointsAtSavesDir(t *testing.T) {
	h := newHarness(t, "0")
	h.mgr.SetPayloads(payload.NewFS(afero.NewMemMapFs()))

	err := h.run("install", "1", "--variant", "rebirth")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrPayloadMissing)
	assert.Contains(t, err.Error(), "--saves-dir")
}

func TestNonInteractiveRequiresChoices(t *testing.T) {
	h := newHarness(t, "0")

	err := h.run("install", "--non-interactive")
	assert.ErrorIs(t, err, errNeedsInput)
	assert.Contains(t, err.Error(), "--variant")

	err = h.run("install", "--variant", "1", "--non-interactive")
	assert.ErrorIs(t, err, errNeedsInput)
	assert.Contains(t, err.Error(), "--slot")
}

func TestEnvironmentDisablesPrompts(t *testing.T) {
	t.Setenv(EnvNonInteractive, "true")
	h := newHarness(t, "0")

	err := h.run("backup")
	assert.ErrorIs(t, err, errNeedsInput)
	assert.Zero(t, h.prompter.selectCalls)
}

func TestSlotArgumentOutOfRange(t *testing.T) {
	h := newHarness(t, "0")

	err := h.run("install", "4", "--variant", "rebirth")
	assert.ErrorIs(t, err, domain.ErrSlotIndexOutOfRange)

	err = h.run("--variant", "rebirth", "--activity", "install", "--slot", "0", "--non-interactive")
	assert.ErrorIs(t, err, domain.ErrSlotIndexOutOfRange)

	err = h.run("--variant", "rebirth", "--activity", "install", "--slot", "7")
	assert.ErrorIs(t, err, domain.ErrSlotIndexOutOfRange)

	err = h.run("--variant", "6")
	assert.ErrorIs(t, err, domain.ErrSlotIndexOutOfRange)
}

func TestBackupSubcommand(t *testing.T) {
	h := newHarness(t, "0")
	h.writeSlot(t, gameRoot, 2, "keep me")

	require.NoError(t, h.run("backup", "2", "--variant", "rebirth"))
	destination := filepath.Join(backupRoot, "persistentgamedata2.dat")
	assert.Equal(t, "keep me", h.read(t, destination))
	assert.Contains(t, h.stdout.String(), "Backed up save slot 2 to: "+destination)

	err := h.run("backup", "2", "--variant", "rebirth")
	assert.ErrorIs(t, err, domain.ErrDestinationAlreadyExists)
}

func TestBackupOfEmptySlot(t *testing.T) {
	h := newHarness(t, "0")

	err := h.run("backup", "1", "--variant", "rebirth")
	assert.ErrorIs(t, err, domain.ErrSourceMissing)
}

func TestBackupDirFromEnvironment(t *testing.T) {
	t.Setenv(EnvBackupDir, "/env/backups")
	h := newHarness(t, "0")
	h.writeSlot(t, gameRoot, 1, "save")

	require.NoError(t, h.run("backup", "1", "--variant", "rebirth"))
	assert.Equal(t, "save", h.read(t, filepath.Join("/env/backups", "persistentgamedata1.dat")))

	h.writeSlot(t, gameRoot, 3, "other")
	require.NoError(t, h.run("backup", "3", "--variant", "rebirth", "--backup-dir", "/flag/backups"))
	assert.Equal(t, "other", h.read(t, filepath.Join("/flag/backups", "persistentgamedata3.dat")))
}

func TestDeleteNeedsConfirmation(t *testing.T) {
	h := newHarness(t, "0")
	path := h.writeSlot(t, gameRoot, 1, "save")

	err := h.run("delete", "1", "--variant", "rebirth", "--non-interactive")
	assert.ErrorIs(t, err, domain.ErrCancelled)
	exists, err := afero.Exists(h.fs, path)
	require.NoError(t, err)
	assert.True(t, exists)

	h.prompter.confirms = []confirmResponse{{value: true}}
	require.NoError(t, h.run("delete", "1", "--variant", "rebirth"))
	exists, err = afero.Exists(h.fs, path)
	require.NoError(t, err)
	assert.False(t, exists)
	assert.Contains(t, h.stdout.String(), "Deleted save slot 1")
}

func TestDeleteWithYes(t *testing.T) {
	h := newHarness(t, "0")
	path := h.writeSlot(t, gameRoot, 3, "save")

	require.NoError(t, h.run("delete", "3", "--variant", "rebirth", "--yes"))
	exists, err := afero.Exists(h.fs, path)
	require.NoError(t, err)
	assert.False(t, exists)
	assert.Zero(t, h.prompter.confirmCalls)
}

func TestCloudWarningOffersToDisable(t *testing.T) {
	h := newHarness(t, "1")
	h.writeSlot(t, cloudRoot, 1, "cloud save")
	h.prompter.selects = []selectResponse{{index: 0}, {index: 0}, {index: 1}}
	h.prompter.confirms = []confirmResponse{{value: true}}

	require.NoError(t, h.run())

	out := h.stdout.String()
	assert.Contains(t, out, "Warning:")
	assert.Contains(t, out, cloudRoot)
	assert.Contains(t, out, "Set \"SteamCloud=0\"")
	assert.Contains(t, h.read(t, filepath.Join(gameRoot, "options.ini")), "SteamCloud=0")
	assert.Equal(t, "unlocked", h.read(t, filepath.Join(gameRoot, "persistentgamedata2.dat")))
}

func TestCloudWarningDeclined(t *testing.T) {
	h := newHarness(t, "1")
	h.prompter.selects = []selectResponse{{index: 0}, {index: 0}, {index: 0}}
	h.prompter.confirms = []confirmResponse{{value: false}}

	require.NoError(t, h.run())

	assert.Contains(t, h.read(t, filepath.Join(gameRoot, "options.ini")), "SteamCloud=1")
	assert.Equal(t, "unlocked", h.read(t, filepath.Join(cloudRoot, "persistentgamedata1.dat")))
}

func TestToggleCommand(t *testing.T) {
	h := newHarness(t, "0")

	require.NoError(t, h.run("toggle-cloud", "--variant", "rebirth", "--yes"))
	assert.Contains(t, h.stdout.String(), "Currently, the \"SteamCloud\" feature is turned off.")
	assert.Contains(t, h.read(t, filepath.Join(gameRoot, "options.ini")), "SteamCloud=1")

	h.prompter.confirms = []confirmResponse{{value: false}}
	require.NoError(t, h.run("toggle-cloud", "--variant", "rebirth"))
	assert.Contains(t, h.stdout.String(), "was not changed")
	assert.Contains(t, h.read(t, filepath.Join(gameRoot, "options.ini")), "SteamCloud=1")
}

func TestListCommand(t *testing.T) {
	h := newHarness(t, "0")
	path := h.writeSlot(t, gameRoot, 3, "save")

	require.NoError(t, h.run("list", "--variant", "rebirth"))
	out := h.stdout.String()
	assert.Contains(t, out, "1) [empty]")
	assert.Contains(t, out, "3) "+path)
	assert.Contains(t, out, "Save directory (local): "+gameRoot)
}

func TestSavesDirOverridesTemplates(t *testing.T) {
	h := newHarness(t, "0")
	require.NoError(t, afero.WriteFile(h.fs, filepath.Join("/templates", "Rebirth", "persistentgamedata.dat"), []byte("from disk"), 0o644))

	require.NoError(t, h.run("install", "1", "--variant", "rebirth", "--saves-dir", "/templates"))
	assert.Equal(t, "from disk", h.read(t, filepath.Join(gameRoot, "persistentgamedata1.dat")))
}

type runningGame struct{}

func (runningGame) Check() error {
	return domain.New(domain.CodeGameRunning, "isaac-ng.exe is running")
}

func TestProcessCheck(t *testing.T) {
	h := newHarness(t, "0")
	h.mgr.SetProcessGuard(runningGame{})

	err := h.run("list", "--variant", "rebirth")
	assert.ErrorIs(t, err, domain.ErrGameRunning)

	require.NoError(t, h.run("list", "--variant", "rebirth", "--skip-process-check"))
}

func TestExecuteReportsFailure(t *testing.T) {
	h := newHarness(t, "0")

	code := Execute(h.mgr, h.prompter, h.stdout, h.stderr, []string{"backup", "1", "--variant", "rebirth"}, false)
	assert.Equal(t, 1, code)
	assert.Contains(t, h.stderr.String(), "Error: you cannot backup a save file for slot 1")
	assert.Zero(t, h.prompter.pauseCalls)
}

func TestExecutePausesOnTerminal(t *testing.T) {
	h := newHarness(t, "0")

	code := Execute(h.mgr, h.prompter, h.stdout, h.stderr, []string{"list", "--variant", "rebirth"}, true)
	assert.Equal(t, 0, code)
	assert.Equal(t, 1, h.prompter.pauseCalls)
	assert.Contains(t, h.stdout.String(), "You can now close this window.")

	code = Execute(h.mgr, h.prompter, h.stdout, h.stderr, []string{"list", "--variant", "rebirth", "--yes"}, true)
	assert.Equal(t, 0, code)
	assert.Equal(t, 1, h.prompter.pauseCalls)
}

func TestExecuteIgnoresFailedPause(t *testing.T) {
	h := newHarness(t, "0")
	h.prompter.pauseErr = errors.New("stdin closed")

	code := Execute(h.mgr, h.prompter, h.stdout, h.stderr, []string{"list", "--variant", "rebirth"}, true)
	assert.Equal(t, 0, code)
	assert.Equal(t, 1, h.prompter.pauseCalls)
	assert.Empty(t, h.stderr.String())
}

func TestExecuteDescribesCancellation(t *testing.T) {
	h := newHarness(t, "0")
	h.prompter.selects = []selectResponse{{err: fmt.Errorf("%w: ^C", ErrPromptCancelled)}}

	code := Execute(h.mgr, h.prompter, h.stdout, h.stderr, nil, false)
	assert.Equal(t, 1, code)
	assert.Contains(t, h.stderr.String(), "Error: cancelled")
}
