package platform

import (
	"os"
	"path/filepath"
)

// getWindowsInfo returns platform-specific information for Windows
func getWindowsInfo(homeDir, username string) *Info {
	systemRoot := os.Getenv("SystemRoot")
	if systemRoot == "" {
		systemRoot = `C:\Windows`
	}
	localAppData := os.Getenv("LOCALAPPDATA")
	if localAppData == "" {
		localAppData = filepath.Join(homeDir, "AppData", "Local")
	}

	return &Info{
		OS:       Windows,
		HomeDir:  homeDir,
		Username: username,
		CacheRoots: []string{
			filepath.Join(localAppData, "Temp"),
			filepath.Join(localAppData, "Microsoft", "Windows", "INetCache"),
			filepath.Join(localAppData, "npm-cache"),
			filepath.Join(systemRoot, "Temp"),
		},
		AppDataRoots: []string{
			filepath.Join(homeDir, "AppData", "Roaming"),
			localAppData,
		},
		ProtectedPaths: []string{
			systemRoot,
			`C:\Program Files`,
			`C:\Program Files (x86)`,
			`C:\ProgramData\Microsoft`,
		},
		LargeFileExclusions: append([]string{
			`\$Recycle.Bin`,
			`\System Volume Information`,
		}, commonLargeFileExclusions...),
		LargeFileRoots: []string{
			filepath.Join(systemRoot, "WinSxS"),
		},
	}
}
