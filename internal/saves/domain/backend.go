package domain

// Backend selects which root directory holds the authoritative save files.
type Backend int

const (
	LocalBackend Backend = iota
	CloudBackend
)

// Flag values stored in the game's options file.
const (
	LocalFlagValue = "0"
	CloudFlagValue = "1"
)

func (b Backend) String() string {
	if b == CloudBackend {
		return "cloud"
	}
	return "local"
}

// FlagValue returns the literal written to the options file for b.
func (b Backend) FlagValue() string {
	if b == CloudBackend {
		return CloudFlagValue
	}
	return LocalFlagValue
}

// Toggled returns the other backend.
func (b Backend) Toggled() Backend {
	if b == CloudBackend {
		return LocalBackend
	}
	return CloudBackend
}

// BackendFromFlag maps a stored flag literal to a backend. Only "0" and "1" are recognized.
func BackendFromFlag(value string) (Backend, bool) {
	switch value {
	case LocalFlagValue:
		return LocalBackend, true
	case CloudFlagValue:
		return CloudBackend, true
	}
	return LocalBackend, false
}
