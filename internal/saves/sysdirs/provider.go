// Package sysdirs answers where the operating system keeps the directories the save
// manager needs: the cloud client's installation, its logged-in user, and the user's
// documents directory.
package sysdirs

// Provider supplies platform directories and the cloud client's session state.
type Provider interface {
	// CloudClientInstallDir returns the cloud client's installation directory.
	CloudClientInstallDir() (string, error)
	// ActiveUserID returns the logged-in cloud user. Zero means nobody is logged in.
	ActiveUserID() (uint32, error)
	// PersonalDocumentsDir returns the user's (possibly relocated) documents directory.
	PersonalDocumentsDir() (string, error)
	// CurrentUsername returns the OS account name without any domain qualifier.
	CurrentUsername() string
}

// Static is a Provider with fixed answers, used for overrides and tests.
type Static struct {
	InstallDir   string
	InstallErr   error
	UserID       uint32
	UserErr      error
	DocumentsDir string
	DocumentsErr error
	Username     string
}

// CloudClientInstallDir returns InstallDir and InstallErr.
func (s *Static) CloudClientInstallDir() (string, error) {
	return s.InstallDir, s.InstallErr
}

// ActiveUserID returns UserID and UserErr.
func (s *Static) ActiveUserID() (uint32, error) {
	return s.UserID, s.UserErr
}

// PersonalDocumentsDir returns DocumentsDir and DocumentsErr.
func (s *Static) PersonalDocumentsDir() (string, error) {
	return s.DocumentsDir, s.DocumentsErr
}

// CurrentUsername returns Username.
func (s *Static) CurrentUsername() string {
	return s.Username
}
