package activity

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/example/isaac-save-manager/internal/saves/config"
	"github.com/example/isaac-save-manager/internal/saves/domain"
	"github.com/example/isaac-save-manager/internal/saves/payload"
	"github.com/example/isaac-save-manager/internal/saves/storage"
)

// Request is a single action against one slot, or against the backend flag.
// Slot is nil for ToggleBackend.
type Request struct {
	Activity      domain.Activity
	Variant       domain.Variant
	Slot          *domain.SlotFile
	DocumentsRoot string
	Backend       domain.Backend
}

// Outcome describes what an action changed.
type Outcome struct {
	Activity    domain.Activity
	Slot        int
	Path        string
	Destination string
	Backend     domain.Backend
}

// Engine executes exactly one activity per call.
type Engine struct {
	storage   *storage.Storage
	payloads  payload.Provider
	config    *config.Store
	backupDir string
	logger    zerolog.Logger
}

// New creates an Engine. Backups are written into backupDir. A nil logger discards output.
func New(st *storage.Storage, payloads payload.Provider, cfg *config.Store, backupDir string, logger *zerolog.Logger) *Engine {
	l := zerolog.Nop()
	if logger != nil {
		l = logger.With().Str("component", "activity").Logger()
	}
	return &Engine{
		storage:   st,
		payloads:  payloads,
		config:    cfg,
		backupDir: backupDir,
		logger:    l,
	}
}

// BackupDir returns the directory backups are copied into.
func (e *Engine) BackupDir() string {
	return e.backupDir
}

// Run performs req.
func (e *Engine) Run(req Request) (Outcome, error) {
	if req.Activity.RequiresSlot() {
		if req.Slot == nil {
			return Outcome{}, domain.Newf(domain.CodeSlotIndexOutOfRange, "%s requires a save slot", req.Activity)
		}
		if err := domain.ValidateSlot(req.Slot.Number); err != nil {
			return Outcome{}, err
		}
	}

	switch req.Activity {
	case domain.Install:
		return e.install(req)
	case domain.Backup:
		return e.backup(req)
	case domain.Delete:
		return e.delete(req)
	case domain.ToggleBackend:
		return e.toggle(req)
	}
	return Outcome{}, domain.Newf(domain.CodeSlotIndexOutOfRange, "unknown activity: %s", req.Activity)
}

func (e *Engine) install(req Request) (Outcome, error) {
	slot := req.Slot
	data, err := e.payloads.Payload(req.Variant)
	if err != nil {
		return Outcome{}, err
	}

	if err := e.storage.WriteFile(slot.Path, data); err != nil {
		return Outcome{}, domain.Wrapf(err, domain.CodeWriteFailed, "failed to write data to the following path: %s", slot.Path).
			WithDetail("path", slot.Path).
			WithDetail("slot", slot.Number)
	}

	e.logger.Info().
		Int("slot", slot.Number).
		Str("path", slot.Path).
		Bool("replaced", slot.Exists).
		Int("bytes", len(data)).
		Msg("save installed")
	return Outcome{Activity: domain.Install, Slot: slot.Number, Path: slot.Path}, nil
}

func (e *Engine) backup(req Request) (Outcome, error) {
	slot := req.Slot
	if err := e.requireExisting(domain.Backup, slot); err != nil {
		return Outcome{}, err
	}

	destination := filepath.Join(e.backupDir, filepath.Base(slot.Path))
	probe, err := e.storage.Probe(destination)
	if err != nil {
		return Outcome{}, domain.Wrapf(err, domain.CodeProbeFailed, "failed to check the backup destination: %s", destination).
			WithDetail("path", destination)
	}
	if probe == storage.Found {
		return Outcome{}, destinationExists(destination)
	}

	if err := e.storage.CopyFileExclusive(slot.Path, destination); err != nil {
		switch {
		case errors.Is(err, os.ErrExist):
			return Outcome{}, destinationExists(destination)
		case errors.Is(err, os.ErrNotExist):
			return Outcome{}, vanished(domain.Backup, slot, err)
		}
		return Outcome{}, domain.Wrapf(err, domain.CodeCopyFailed, "failed to copy %s to %s", slot.Path, destination).
			WithDetail("path", slot.Path).
			WithDetail("destination", destination)
	}

	e.logger.Info().
		Int("slot", slot.Number).
		Str("path", slot.Path).
		Str("destination", destination).
		Msg("save backed up")
	return Outcome{Activity: domain.Backup, Slot: slot.Number, Path: slot.Path, Destination: destination}, nil
}

func (e *Engine) delete(req Request) (Outcome, error) {
	slot := req.Slot
	if err := e.requireExisting(domain.Delete, slot); err != nil {
		return Outcome{}, err
	}

	if err := e.storage.Remove(slot.Path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Outcome{}, vanished(domain.Delete, slot, err)
		}
		return Outcome{}, domain.Wrapf(err, domain.CodeDeleteFailed, "failed to delete: %s", slot.Path).
			WithDetail("path", slot.Path).
			WithDetail("slot", slot.Number)
	}

	e.logger.Info().Int("slot", slot.Number).Str("path", slot.Path).Msg("save deleted")
	return Outcome{Activity: domain.Delete, Slot: slot.Number, Path: slot.Path}, nil
}

func (e *Engine) toggle(req Request) (Outcome, error) {
	path, next, err := e.config.ToggleFlag(req.DocumentsRoot, req.Backend)
	if err != nil {
		return Outcome{}, err
	}
	return Outcome{Activity: domain.ToggleBackend, Path: path, Backend: next}, nil
}

// requireExisting enforces the resolved exists flag and re-probes the slot, since the
// filesystem may have changed since the slots were listed.
func (e *Engine) requireExisting(a domain.Activity, slot *domain.SlotFile) error {
	if !slot.Exists {
		return domain.Newf(domain.CodeSourceMissing,
			"you cannot %s a save file for slot %d since the corresponding file does not exist", a, slot.Number).
			WithDetail("slot", slot.Number).
			WithDetail("path", slot.Path)
	}
	probe, err := e.storage.Probe(slot.Path)
	if err != nil {
		return domain.Wrapf(err, domain.CodeProbeFailed, "failed to check save slot %d at: %s", slot.Number, slot.Path).
			WithDetail("slot", slot.Number).
			WithDetail("path", slot.Path)
	}
	if probe == storage.NotFound {
		return vanished(a, slot, nil)
	}
	return nil
}

func vanished(a domain.Activity, slot *domain.SlotFile, cause error) error {
	err := domain.Newf(domain.CodeSourceMissing,
		"cannot %s slot %d: the file was listed but no longer exists (is the game running?): %s", a, slot.Number, slot.Path).
		WithDetail("slot", slot.Number).
		WithDetail("path", slot.Path).
		WithDetail("stale", true)
	err.Wrapped = cause
	return err
}

func destinationExists(destination string) error {
	return domain.Newf(domain.CodeDestinationAlreadyExists,
		"you cannot backup that save file because the following file already exists in the backup directory: %s", destination).
		WithDetail("destination", destination)
}
