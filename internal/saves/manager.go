package saves

import (
	"github.com/rs/zerolog"
	"github.com/spf13/afero"

	"github.com/example/isaac-save-manager/internal/saves/activity"
	"github.com/example/isaac-save-manager/internal/saves/config"
	"github.com/example/isaac-save-manager/internal/saves/domain"
	"github.com/example/isaac-save-manager/internal/saves/payload"
	"github.com/example/isaac-save-manager/internal/saves/resolver"
	"github.com/example/isaac-save-manager/internal/saves/storage"
	"github.com/example/isaac-save-manager/internal/saves/sysdirs"
)

// ProcessChecker reports an error when the game is running.
type ProcessChecker interface {
	Check() error
}

// Manager ties resolution and the activity engine together for one run of the tool.
type Manager struct {
	fs        afero.Fs
	storage   *storage.Storage
	config    *config.Store
	resolver  *resolver.Resolver
	payloads  payload.Provider
	backupDir string
	guard     ProcessChecker
	logger    *zerolog.Logger
}

// NewManager creates a Manager over fs. A nil logger discards output; a nil guard
// skips the running-game check.
func NewManager(fs afero.Fs, dirs sysdirs.Provider, payloads payload.Provider, backupDir string, logger *zerolog.Logger) *Manager {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	st := storage.New(fs)
	cfg := config.New(st, logger)
	return &Manager{
		fs:        fs,
		storage:   st,
		config:    cfg,
		resolver:  resolver.New(st, dirs, cfg, logger),
		payloads:  payloads,
		backupDir: backupDir,
		logger:    logger,
	}
}

// FileSystem returns the filesystem the manager operates on.
func (m *Manager) FileSystem() afero.Fs {
	return m.fs
}

// Logger returns the logger the manager writes to. It is never nil.
func (m *Manager) Logger() *zerolog.Logger {
	return m.logger
}

// BackupDir returns the directory backups are written to.
func (m *Manager) BackupDir() string {
	return m.backupDir
}

// SetBackupDir changes the backup destination.
func (m *Manager) SetBackupDir(dir string) {
	m.backupDir = dir
}

// SetPayloads replaces the payload provider, for example with an on-disk directory.
func (m *Manager) SetPayloads(p payload.Provider) {
	m.payloads = p
}

// SetProcessGuard installs the running-game check.
func (m *Manager) SetProcessGuard(g ProcessChecker) {
	m.guard = g
}

// SetUsersRoot overrides the directory holding per-user home directories.
func (m *Manager) SetUsersRoot(root string) {
	m.resolver.SetUsersRoot(root)
}

// CheckGameNotRunning fails with GAME_RUNNING while the game is open.
func (m *Manager) CheckGameNotRunning() error {
	if m.guard == nil {
		return nil
	}
	return m.guard.Check()
}

// Resolve locates the save directories for v and lists its slots.
func (m *Manager) Resolve(v domain.Variant) (*resolver.Session, error) {
	return m.resolver.Resolve(v)
}

// Perform runs a single activity against session. slot is ignored for ToggleBackend.
func (m *Manager) Perform(session *resolver.Session, a domain.Activity, slot int) (activity.Outcome, error) {
	req := activity.Request{
		Activity:      a,
		Variant:       session.Variant,
		DocumentsRoot: session.DocumentsRoot,
		Backend:       session.Backend,
	}
	if a.RequiresSlot() {
		file, err := session.Slot(slot)
		if err != nil {
			return activity.Outcome{}, err
		}
		req.Slot = &file
	}

	engine := activity.New(m.storage, m.payloads, m.config, m.backupDir, m.logger)
	outcome, err := engine.Run(req)
	if err != nil {
		m.logger.Debug().Err(err).Str("activity", a.String()).Str("code", string(domain.CodeOf(err))).Msg("activity failed")
		return activity.Outcome{}, err
	}
	return outcome, nil
}
