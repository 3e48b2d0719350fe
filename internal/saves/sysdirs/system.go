package sysdirs

import (
	"os"
	"os/user"

	"github.com/adrg/xdg"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"

	"github.com/example/isaac-save-manager/internal/saves/domain"
	"github.com/example/isaac-save-manager/internal/saves/validator"
)

// System answers from the real operating system.
type System struct {
	fs     afero.Fs
	logger zerolog.Logger
}

// NewSystem creates a System provider. fs is used to read cloud client state files on
// platforms without a registry. A nil logger discards output.
func NewSystem(fs afero.Fs, logger *zerolog.Logger) *System {
	l := zerolog.Nop()
	if logger != nil {
		l = logger.With().Str("component", "sysdirs").Logger()
	}
	return &System{fs: fs, logger: l}
}

// PersonalDocumentsDir asks the platform for the documents directory, honouring a
// relocated folder (Known Folders on Windows, user-dirs.dirs on Linux).
func (s *System) PersonalDocumentsDir() (string, error) {
	dir := xdg.UserDirs.Documents
	if dir == "" {
		return "", domain.New(domain.CodeExternalLookupFailure, "unable to find the path to your \"Documents\" directory")
	}
	s.logger.Debug().Str("documents", dir).Msg("resolved documents directory")
	return validator.ValidatePath("documents", dir)
}

// CurrentUsername returns the account name, falling back to the environment.
func (s *System) CurrentUsername() string {
	if u, err := user.Current(); err == nil && u.Username != "" {
		return validator.NormalizeUsername(u.Username)
	}
	for _, key := range []string{"USERNAME", "USER"} {
		if v := os.Getenv(key); v != "" {
			return validator.NormalizeUsername(v)
		}
	}
	return ""
}
