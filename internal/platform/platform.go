package platform

import (
	"os"
	"os/user"
	"path/filepath"
	"runtime"
)

// Platform represents the operating system platform
type Platform string

const (
	MacOS   Platform = "darwin"
	Linux   Platform = "linux"
	Windows Platform = "windows"
	Unknown Platform = "unknown"
)

// Info contains the per-OS directory tables handed to the scanner as
// plain configuration. The scanner never consults this package itself.
type Info struct {
	OS       Platform
	HomeDir  string
	Username string

	// CacheRoots are the directories searched by a cache scan
	CacheRoots []string

	// ProtectedPaths are reserved system prefixes; entries under them are never deletable
	ProtectedPaths []string

	// LargeFileExclusions are path fragments skipped by the large-file finder
	LargeFileExclusions []string

	// LargeFileRoots are absolute system directories the large-file finder never enters
	LargeFileRoots []string

	// AppDataRoots are application data directories searched for stale logs
	AppDataRoots []string
}

// Detect returns the current platform
func Detect() Platform {
	switch runtime.GOOS {
	case "darwin":
		return MacOS
	case "linux":
		return Linux
	case "windows":
		return Windows
	default:
		return Unknown
	}
}

// GetInfo returns platform-specific information for the current user
func GetInfo() (*Info, error) {
	currentUser, err := user.Current()
	if err != nil {
		return nil, err
	}

	return InfoFor(Detect(), currentUser.HomeDir, currentUser.Username)
}

// InfoFor builds the directory tables for an explicit platform and home directory
func InfoFor(p Platform, homeDir, username string) (*Info, error) {
	switch p {
	case MacOS:
		return getMacOSInfo(homeDir, username), nil
	case Linux:
		return getLinuxInfo(homeDir, username), nil
	case Windows:
		return getWindowsInfo(homeDir, username), nil
	default:
		return nil, ErrUnsupportedPlatform
	}
}

// ExistingCacheRoots filters CacheRoots down to directories that exist
func (i *Info) ExistingCacheRoots() []string {
	return existingDirs(i.CacheRoots)
}

// ExistingAppDataRoots filters AppDataRoots down to directories that exist
func (i *Info) ExistingAppDataRoots() []string {
	return existingDirs(i.AppDataRoots)
}

func existingDirs(dirs []string) []string {
	var roots []string
	for _, dir := range dirs {
		if st, err := os.Stat(dir); err == nil && st.IsDir() {
			roots = append(roots, filepath.Clean(dir))
		}
	}
	return roots
}

// commonLargeFileExclusions are version-control, build and package directories
// that hold large files nobody wants listed
var commonLargeFileExclusions = []string{
	"/.git",
	"/node_modules",
	"__pycache__",
	".venv",
}

// Errors
var (
	ErrUnsupportedPlatform = &PlatformError{"unsupported platform"}
)

// PlatformError represents a platform-related error
type PlatformError struct {
	Message string
}

func (e *PlatformError) Error() string {
	return e.Message
}
