package resolver

import (
	"errors"

	"github.com/rs/zerolog"

	"github.com/example/isaac-save-manager/internal/saves/config"
	"github.com/example/isaac-save-manager/internal/saves/domain"
	"github.com/example/isaac-save-manager/internal/saves/paths"
	"github.com/example/isaac-save-manager/internal/saves/storage"
	"github.com/example/isaac-save-manager/internal/saves/sysdirs"
	"github.com/example/isaac-save-manager/internal/saves/validator"
)

// Session is the outcome of one resolution pass. Nothing in it is cached across runs.
type Session struct {
	Variant       domain.Variant
	Backend       domain.Backend
	CloudRoot     string
	DocumentsRoot string
	ActiveRoot    string
	Slots         []domain.SlotFile
}

// Slot returns the slot with the given 1-based number.
func (s *Session) Slot(number int) (domain.SlotFile, error) {
	if err := domain.ValidateSlot(number); err != nil {
		return domain.SlotFile{}, err
	}
	for _, slot := range s.Slots {
		if slot.Number == number {
			return slot, nil
		}
	}
	return domain.SlotFile{}, domain.Newf(domain.CodeSlotIndexOutOfRange, "save slot %d was not resolved", number).
		WithDetail("slot", number)
}

// Resolver decides where the save files live.
type Resolver struct {
	storage   *storage.Storage
	dirs      sysdirs.Provider
	config    *config.Store
	usersRoot string
	logger    zerolog.Logger
}

// New creates a Resolver. A nil logger discards output.
func New(st *storage.Storage, dirs sysdirs.Provider, cfg *config.Store, logger *zerolog.Logger) *Resolver {
	l := zerolog.Nop()
	if logger != nil {
		l = logger.With().Str("component", "resolver").Logger()
	}
	return &Resolver{
		storage:   st,
		dirs:      dirs,
		config:    cfg,
		usersRoot: paths.DefaultUsersRoot(),
		logger:    l,
	}
}

// SetUsersRoot overrides the directory holding per-user home directories.
func (r *Resolver) SetUsersRoot(root string) {
	if root == "" {
		r.usersRoot = paths.DefaultUsersRoot()
		return
	}
	r.usersRoot = root
}

// ResolveCloudRoot composes <install>/userdata/<user>/250900/remote. The root itself is
// not probed.
func (r *Resolver) ResolveCloudRoot() (string, error) {
	installDir, err := r.dirs.CloudClientInstallDir()
	if err != nil {
		return "", annotate(err, domain.CodeExternalLookupFailure, "failed to find the Steam installation directory")
	}
	installDir, err = validator.ValidatePath("Steam installation", installDir)
	if err != nil {
		return "", err
	}

	userID, err := r.dirs.ActiveUserID()
	if err != nil {
		return "", annotate(err, domain.CodeExternalLookupFailure, "failed to find the active Steam user")
	}
	if userID == 0 {
		return "", domain.New(domain.CodeNoActiveSession,
			"you are not currently logged into Steam; please make sure that Steam is open and that you are logged in")
	}

	root := paths.CloudRoot(installDir, userID)
	r.logger.Debug().Str("cloud_root", root).Uint32("user_id", userID).Msg("resolved cloud root")
	return root, nil
}

// ResolveDocumentsRoot finds the documents save directory. The OS-standard location wins
// whenever its marker file exists, because the game ignores a relocated documents folder
// in that case; otherwise the provider's documents directory is tried.
func (r *Resolver) ResolveDocumentsRoot(v domain.Variant) (string, error) {
	if username := r.dirs.CurrentUsername(); username != "" {
		standard := paths.StandardDocumentsRoot(r.usersRoot, username, v)
		found, err := r.probeMarker(standard)
		if err != nil {
			return "", err
		}
		if found {
			r.logger.Debug().Str("documents_root", standard).Msg("using standard documents root")
			return standard, nil
		}
		r.logger.Debug().Str("standard_root", standard).Msg("no marker at standard documents root")
	}

	documentsDir, err := r.dirs.PersonalDocumentsDir()
	if err != nil {
		return "", annotate(err, domain.CodeExternalLookupFailure, "unable to find the path to your \"Documents\" directory")
	}
	documentsDir, err = validator.ValidatePath("documents", documentsDir)
	if err != nil {
		return "", err
	}

	custom := paths.DocumentsRoot(documentsDir, v)
	found, err := r.probeMarker(custom)
	if err != nil {
		return "", err
	}
	if found {
		r.logger.Debug().Str("documents_root", custom).Msg("using relocated documents root")
		return custom, nil
	}

	return "", domain.Newf(domain.CodeSaveDataNotFound,
		"failed to find your documents save data directory at: %s (do you have the selected version of the game installed?)", custom).
		WithDetail("path", custom)
}

// EnumerateSlots lists the three slot files of root in ascending order. A missing slot
// file is reported with Exists=false; only a failed probe is an error.
func (r *Resolver) EnumerateSlots(root string, v domain.Variant, backend domain.Backend) ([]domain.SlotFile, error) {
	slots := make([]domain.SlotFile, 0, domain.SlotCount)
	for number := 1; number <= domain.SlotCount; number++ {
		path := paths.SlotFilePath(root, v, backend, number)
		probe, err := r.storage.Probe(path)
		if err != nil {
			return nil, domain.Wrapf(err, domain.CodeProbeFailed, "failed to check save slot %d at: %s", number, path).
				WithDetail("path", path).
				WithDetail("slot", number)
		}
		slots = append(slots, domain.SlotFile{Number: number, Path: path, Exists: probe == storage.Found})
	}
	return slots, nil
}

// Resolve runs a full pass: both roots, the backend flag, then the slots of the active root.
// Both roots must resolve, whichever backend the flag selects.
func (r *Resolver) Resolve(v domain.Variant) (*Session, error) {
	if !v.Valid() {
		return nil, domain.Newf(domain.CodeSlotIndexOutOfRange, "unknown game variant: %d", int(v))
	}

	cloudRoot, err := r.ResolveCloudRoot()
	if err != nil {
		return nil, err
	}

	documentsRoot, err := r.ResolveDocumentsRoot(v)
	if err != nil {
		return nil, err
	}

	backend, err := r.config.ReadFlag(documentsRoot)
	if err != nil {
		return nil, err
	}

	session := &Session{
		Variant:       v,
		Backend:       backend,
		CloudRoot:     cloudRoot,
		DocumentsRoot: documentsRoot,
		ActiveRoot:    documentsRoot,
	}
	if backend == domain.CloudBackend {
		session.ActiveRoot = cloudRoot
	}

	slots, err := r.EnumerateSlots(session.ActiveRoot, v, backend)
	if err != nil {
		return nil, err
	}
	session.Slots = slots

	r.logger.Info().
		Str("variant", v.Token()).
		Str("backend", backend.String()).
		Str("active_root", session.ActiveRoot).
		Msg("save location resolved")
	return session, nil
}

func (r *Resolver) probeMarker(root string) (bool, error) {
	marker := paths.MarkerPath(root)
	probe, err := r.storage.Probe(marker)
	if err != nil {
		return false, domain.Wrapf(err, domain.CodeProbeFailed, "failed to check for: %s", marker).
			WithDetail("path", marker)
	}
	return probe == storage.Found, nil
}

// annotate keeps coded errors as they are and wraps anything else with code.
func annotate(err error, code domain.Code, message string) error {
	var coded *domain.Error
	if errors.As(err, &coded) {
		return err
	}
	return domain.Wrap(err, code, message)
}
