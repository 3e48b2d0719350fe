package config

import (
	"bytes"

	"github.com/rs/zerolog"
	"gopkg.in/ini.v1"

	"github.com/example/isaac-save-manager/internal/saves/domain"
	"github.com/example/isaac-save-manager/internal/saves/paths"
	"github.com/example/isaac-save-manager/internal/saves/storage"
)

const (
	// SectionName is the section of options.ini holding the cloud flag.
	SectionName = "Options"
	// KeyName is the key whose value selects the storage backend.
	KeyName = "SteamCloud"
)

func init() {
	// The game expects "Key=Value" without padding or alignment.
	ini.PrettyFormat = false
}

var loadOptions = ini.LoadOptions{
	IgnoreInlineComment: true,
}

// Store reads and rewrites the backend flag inside the game's options file.
type Store struct {
	storage *storage.Storage
	logger  zerolog.Logger
}

// New creates a Store. A nil logger discards output.
func New(st *storage.Storage, logger *zerolog.Logger) *Store {
	l := zerolog.Nop()
	if logger != nil {
		l = logger.With().Str("component", "config").Logger()
	}
	return &Store{storage: st, logger: l}
}

// Path returns the options file location for a documents save directory.
func (s *Store) Path(documentsRoot string) string {
	return paths.ConfigPath(documentsRoot)
}

// ReadFlag returns the backend currently selected in the options file.
func (s *Store) ReadFlag(documentsRoot string) (domain.Backend, error) {
	_, _, backend, err := s.load(documentsRoot)
	if err != nil {
		return domain.LocalBackend, err
	}
	s.logger.Debug().Str("backend", backend.String()).Str("path", s.Path(documentsRoot)).Msg("read backend flag")
	return backend, nil
}

// WriteFlag re-reads the options file, sets the flag to backend and rewrites the whole
// file. It returns the path written.
func (s *Store) WriteFlag(documentsRoot string, backend domain.Backend) (string, error) {
	return s.rewrite(documentsRoot, func(domain.Backend) (domain.Backend, error) {
		return backend, nil
	})
}

// ToggleFlag negates the flag as it is stored right now and returns the path written and
// the new backend. expected is the value the caller last saw; when the file no longer
// holds it, nothing is written and a StaleState error is returned.
func (s *Store) ToggleFlag(documentsRoot string, expected domain.Backend) (string, domain.Backend, error) {
	var next domain.Backend
	path, err := s.rewrite(documentsRoot, func(current domain.Backend) (domain.Backend, error) {
		if current != expected {
			path := s.Path(documentsRoot)
			return current, domain.Newf(domain.CodeStaleState,
				"%s was changed to %s=%s after it was read as %s=%s; nothing was written, please run the tool again",
				path, KeyName, current.FlagValue(), KeyName, expected.FlagValue()).
				WithDetail("path", path).
				WithDetail("expected", expected.FlagValue()).
				WithDetail("found", current.FlagValue())
		}
		next = current.Toggled()
		return next, nil
	})
	if err != nil {
		return "", expected, err
	}
	return path, next, nil
}

// rewrite loads the options file, lets choose pick the new flag from the stored one and
// replaces the file atomically.
func (s *Store) rewrite(documentsRoot string, choose func(current domain.Backend) (domain.Backend, error)) (string, error) {
	file, section, previous, err := s.load(documentsRoot)
	if err != nil {
		return "", err
	}
	path := s.Path(documentsRoot)

	backend, err := choose(previous)
	if err != nil {
		return "", err
	}
	section.Key(KeyName).SetValue(backend.FlagValue())

	var buf bytes.Buffer
	if _, err := file.WriteTo(&buf); err != nil {
		return "", domain.Wrapf(err, domain.CodeWriteFailed, "failed to render %s", path).
			WithDetail("path", path)
	}
	if err := s.storage.WriteFileAtomic(path, buf.Bytes()); err != nil {
		return "", domain.Wrapf(err, domain.CodeWriteFailed, "failed to write %s", path).
			WithDetail("path", path)
	}

	s.logger.Info().
		Str("path", path).
		Str("from", previous.FlagValue()).
		Str("to", backend.FlagValue()).
		Msg("backend flag written")
	return path, nil
}

func (s *Store) load(documentsRoot string) (*ini.File, *ini.Section, domain.Backend, error) {
	path := s.Path(documentsRoot)

	probe, err := s.storage.Probe(path)
	if err != nil {
		return nil, nil, domain.LocalBackend, domain.Wrapf(err, domain.CodeProbeFailed, "failed to check for %s", path).
			WithDetail("path", path)
	}
	if probe == storage.NotFound {
		return nil, nil, domain.LocalBackend, domain.Newf(domain.CodeConfigMissing, "failed to find your %q file at: %s", paths.ConfigFileName, path).
			WithDetail("path", path)
	}

	data, err := s.storage.ReadFile(path)
	if err != nil {
		return nil, nil, domain.LocalBackend, domain.Wrapf(err, domain.CodeConfigMissing, "failed to read the file: %s", path).
			WithDetail("path", path)
	}

	file, err := ini.LoadSources(loadOptions, data)
	if err != nil {
		return nil, nil, domain.LocalBackend, domain.Wrapf(err, domain.CodeConfigParseError, "failed to parse the file: %s", path).
			WithDetail("path", path)
	}

	section, err := file.GetSection(SectionName)
	if err != nil {
		return nil, nil, domain.LocalBackend, domain.Newf(domain.CodeConfigFieldMissing, "the %q file does not have a section called: %s", path, SectionName).
			WithDetail("path", path).
			WithDetail("section", SectionName)
	}
	if !section.HasKey(KeyName) {
		return nil, nil, domain.LocalBackend, domain.Newf(domain.CodeConfigFieldMissing, "the %q file does not have a key called: %s", path, KeyName).
			WithDetail("path", path).
			WithDetail("key", KeyName)
	}

	value := section.Key(KeyName).String()
	backend, ok := domain.BackendFromFlag(value)
	if !ok {
		return nil, nil, domain.LocalBackend, domain.Newf(domain.CodeConfigValueInvalid, "the value for the %q key is invalid: %q (expected %q or %q)",
			KeyName, value, domain.LocalFlagValue, domain.CloudFlagValue).
			WithDetail("path", path).
			WithDetail("key", KeyName).
			WithDetail("value", value)
	}
	return file, section, backend, nil
}
