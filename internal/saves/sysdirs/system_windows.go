//go:build windows

package sysdirs

import (
	"golang.org/x/sys/windows/registry"

	"github.com/example/isaac-save-manager/internal/saves/domain"
	"github.com/example/isaac-save-manager/internal/saves/validator"
)

const (
	steamRegistryPath         = `Software\Valve\Steam`
	steamPathValue            = "SteamPath"
	activeProcessRegistryPath = `Software\Valve\Steam\ActiveProcess`
	activeUserValue           = "ActiveUser"
)

// CloudClientInstallDir reads HKCU\Software\Valve\Steam\SteamPath.
func (s *System) CloudClientInstallDir() (string, error) {
	key, err := registry.OpenKey(registry.CURRENT_USER, steamRegistryPath, registry.QUERY_VALUE)
	if err != nil {
		return "", domain.Wrapf(err, domain.CodeExternalLookupFailure, "failed to get the Windows registry key: %s", steamRegistryPath).
			WithDetail("key", steamRegistryPath)
	}
	defer key.Close()

	value, _, err := key.GetStringValue(steamPathValue)
	if err != nil {
		return "", domain.Wrapf(err, domain.CodeExternalLookupFailure, "failed to get the %q value from the Windows registry key: %s", steamPathValue, steamRegistryPath).
			WithDetail("key", steamRegistryPath).
			WithDetail("value", steamPathValue)
	}
	s.logger.Debug().Str("steam_path", value).Msg("read registry")
	return validator.ValidatePath("Steam installation", value)
}

// ActiveUserID reads HKCU\Software\Valve\Steam\ActiveProcess\ActiveUser.
func (s *System) ActiveUserID() (uint32, error) {
	key, err := registry.OpenKey(registry.CURRENT_USER, activeProcessRegistryPath, registry.QUERY_VALUE)
	if err != nil {
		return 0, domain.Wrapf(err, domain.CodeExternalLookupFailure, "failed to get the Windows registry key: %s", activeProcessRegistryPath).
			WithDetail("key", activeProcessRegistryPath)
	}
	defer key.Close()

	value, _, err := key.GetIntegerValue(activeUserValue)
	if err != nil {
		return 0, domain.Wrapf(err, domain.CodeExternalLookupFailure, "failed to get the %q value from the Windows registry key: %s", activeUserValue, activeProcessRegistryPath).
			WithDetail("key", activeProcessRegistryPath).
			WithDetail("value", activeUserValue)
	}
	return uint32(value), nil
}
