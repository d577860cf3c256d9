package platform

import "path/filepath"

// getMacOSInfo returns platform-specific information for macOS
func getMacOSInfo(homeDir, username string) *Info {
	return &Info{
		OS:       MacOS,
		HomeDir:  homeDir,
		Username: username,
		CacheRoots: []string{
			filepath.Join(homeDir, "Library/Caches"),
			filepath.Join(homeDir, "Library/Logs"),
			filepath.Join(homeDir, "Library/Developer/Xcode/DerivedData"),
			filepath.Join(homeDir, "Library/Developer/CoreSimulator/Caches"),
			"/Library/Caches",
			"/private/var/folders",
		},
		AppDataRoots: []string{
			filepath.Join(homeDir, "Library/Application Support"),
			filepath.Join(homeDir, "Library/Logs"),
		},
		ProtectedPaths: []string{
			"/System",
			"/Library/System",
			"/usr/lib",
			"/usr/bin",
			"/usr/sbin",
			"/bin",
			"/sbin",
			"/private/etc",
			"/private/var/db",
		},
		LargeFileExclusions: append([]string{
			"/.Spotlight-V100",
			"/.fseventsd",
			"/.Trashes",
		}, commonLargeFileExclusions...),
		LargeFileRoots: []string{
			"/System",
			"/Library/Developer",
			"/usr/local/Cellar",
			"/opt/homebrew/Cellar",
		},
	}
}
