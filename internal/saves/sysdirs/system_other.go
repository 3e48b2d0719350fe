//go:build !windows

package sysdirs

import (
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strconv"

	"github.com/spf13/afero"

	"github.com/example/isaac-save-manager/internal/saves/domain"
	"github.com/example/isaac-save-manager/internal/saves/validator"
)

// registryFileName is the text file where Steam mirrors its registry on Linux and macOS.
const registryFileName = "registry.vdf"

var activeUserPattern = regexp.MustCompile(`(?i)"ActiveUser"\s+"(\d+)"`)

func steamInstallCandidates(home string) []string {
	if runtime.GOOS == "darwin" {
		return []string{filepath.Join(home, "Library", "Application Support", "Steam")}
	}
	return []string{
		filepath.Join(home, ".steam", "steam"),
		filepath.Join(home, ".local", "share", "Steam"),
		filepath.Join(home, ".var", "app", "com.valvesoftware.Steam", ".local", "share", "Steam"),
	}
}

// CloudClientInstallDir returns the first Steam installation found under the home directory.
func (s *System) CloudClientInstallDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", domain.Wrap(err, domain.CodeExternalLookupFailure, "failed to find your home directory")
	}
	for _, candidate := range steamInstallCandidates(home) {
		ok, err := afero.DirExists(s.fs, candidate)
		if err != nil {
			return "", domain.Wrapf(err, domain.CodeProbeFailed, "failed to check for a Steam installation at: %s", candidate).
				WithDetail("path", candidate)
		}
		if ok {
			s.logger.Debug().Str("steam_path", candidate).Msg("found Steam installation")
			return validator.ValidatePath("Steam installation", candidate)
		}
	}
	return "", domain.New(domain.CodeExternalLookupFailure, "failed to find a Steam installation in your home directory").
		WithDetail("home", home)
}

// ActiveUserID reads the "ActiveUser" entry from Steam's registry.vdf.
func (s *System) ActiveUserID() (uint32, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return 0, domain.Wrap(err, domain.CodeExternalLookupFailure, "failed to find your home directory")
	}
	path := filepath.Join(home, ".steam", registryFileName)
	if runtime.GOOS == "darwin" {
		path = filepath.Join(home, "Library", "Application Support", "Steam", registryFileName)
	}
	data, err := afero.ReadFile(s.fs, path)
	if err != nil {
		return 0, domain.Wrapf(err, domain.CodeExternalLookupFailure, "failed to read the Steam registry file: %s", path).
			WithDetail("path", path)
	}
	return parseActiveUser(path, data)
}

func parseActiveUser(path string, data []byte) (uint32, error) {
	match := activeUserPattern.FindSubmatch(data)
	if match == nil {
		return 0, domain.Newf(domain.CodeExternalLookupFailure, "the Steam registry file does not have an \"ActiveUser\" entry: %s", path).
			WithDetail("path", path)
	}
	id, err := strconv.ParseUint(string(match[1]), 10, 32)
	if err != nil {
		return 0, domain.Wrapf(err, domain.CodeExternalLookupFailure, "the \"ActiveUser\" entry is not a valid user id: %s", match[1]).
			WithDetail("path", path)
	}
	return uint32(id), nil
}
