package platform

import "path/filepath"

// getLinuxInfo returns platform-specific information for Linux
func getLinuxInfo(homeDir, username string) *Info {
	return &Info{
		OS:       Linux,
		HomeDir:  homeDir,
		Username: username,
		CacheRoots: []string{
			filepath.Join(homeDir, ".cache"),
			filepath.Join(homeDir, ".npm/_cacache"),
			filepath.Join(homeDir, ".gradle/caches"),
			filepath.Join(homeDir, ".cargo/registry/cache"),
			filepath.Join(homeDir, ".thumbnails"),
			"/var/cache",
			"/var/tmp",
		},
		AppDataRoots: []string{
			filepath.Join(homeDir, ".config"),
			filepath.Join(homeDir, ".local/share"),
		},
		ProtectedPaths: []string{
			"/bin",
			"/boot",
			"/dev",
			"/etc",
			"/lib",
			"/lib32",
			"/lib64",
			"/proc",
			"/sbin",
			"/sys",
			"/usr/bin",
			"/usr/lib",
			"/usr/lib64",
			"/usr/sbin",
		},
		LargeFileExclusions: append([]string{
			"/.local/share/Trash",
		}, commonLargeFileExclusions...),
		LargeFileRoots: []string{
			"/proc",
			"/sys",
			"/dev",
			"/snap",
			"/var/lib/docker",
		},
	}
}
