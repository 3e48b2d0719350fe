package paths

import (
	"fmt"
	"path/filepath"
	"runtime"
	"strconv"

	"github.com/example/isaac-save-manager/internal/saves/domain"
)

// Directory and file name constants for the game's save layout.
const (
	CloudAppID       = 250900
	CloudUserDataDir = "userdata"
	CloudSubdir      = "remote"
	DocumentsDirName = "Documents"
	MyGamesDirName   = "My Games"
	MarkerFileName   = "log.txt"
	ConfigFileName   = "options.ini"
	SlotFileStem     = "persistentgamedata"
	SlotFileExt      = ".dat"
	PayloadFileName  = SlotFileStem + SlotFileExt
)

// DefaultUsersRoot returns the directory holding per-user home directories on this OS.
func DefaultUsersRoot() string {
	switch runtime.GOOS {
	case "windows":
		return `C:\Users`
	case "darwin":
		return "/Users"
	default:
		return "/home"
	}
}

// CloudRoot returns <install>/userdata/<user>/<app>/remote.
func CloudRoot(installDir string, userID uint32) string {
	return filepath.Join(
		installDir,
		CloudUserDataDir,
		strconv.FormatUint(uint64(userID), 10),
		strconv.Itoa(CloudAppID),
		CloudSubdir,
	)
}

// StandardDocumentsRoot returns the save directory the game uses when the OS-standard
// documents directory exists, e.g. C:\Users\Alice\Documents\My Games\Binding of Isaac Repentance.
func StandardDocumentsRoot(usersRoot, username string, v domain.Variant) string {
	return filepath.Join(usersRoot, username, DocumentsDirName, MyGamesDirName, v.DirectoryName())
}

// DocumentsRoot returns the save directory under a (possibly relocated) documents directory.
func DocumentsRoot(documentsDir string, v domain.Variant) string {
	return filepath.Join(documentsDir, MyGamesDirName, v.DirectoryName())
}

// MarkerPath returns the log file whose presence marks a live save directory.
func MarkerPath(root string) string {
	return filepath.Join(root, MarkerFileName)
}

// ConfigPath returns the options file inside the documents save directory.
func ConfigPath(documentsRoot string) string {
	return filepath.Join(documentsRoot, ConfigFileName)
}

// SlotFilePrefix is empty for the local backend and the variant's cloud prefix otherwise.
func SlotFilePrefix(v domain.Variant, backend domain.Backend) string {
	if backend != domain.CloudBackend {
		return ""
	}
	return v.CloudPrefix()
}

// SlotFileName builds <prefix>persistentgamedata<slot>.dat.
func SlotFileName(v domain.Variant, backend domain.Backend, slot int) string {
	return fmt.Sprintf("%s%s%d%s", SlotFilePrefix(v, backend), SlotFileStem, slot, SlotFileExt)
}

// SlotFilePath joins SlotFileName with root.
func SlotFilePath(root string, v domain.Variant, backend domain.Backend, slot int) string {
	return filepath.Join(root, SlotFileName(v, backend, slot))
}
