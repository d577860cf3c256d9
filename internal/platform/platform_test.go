package platform

import (
	"os"
	"path/filepath"
	"testing"
)

func TestInfoFor(t *testing.T) {
	tests := []struct {
		name     string
		platform Platform
	}{
		{"linux", Linux},
		{"macos", MacOS},
		{"windows", Windows},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info, err := InfoFor(tt.platform, "/home/tester", "tester")
			if err != nil {
				t.Fatalf("InfoFor(%s) returned error: %v", tt.platform, err)
			}
			if info.OS != tt.platform {
				t.Errorf("OS = %s, want %s", info.OS, tt.platform)
			}
			if len(info.CacheRoots) == 0 {
				t.Error("expected cache roots")
			}
			if len(info.ProtectedPaths) == 0 {
				t.Error("expected protected paths")
			}
			if len(info.LargeFileExclusions) < len(commonLargeFileExclusions) {
				t.Error("expected common large-file exclusions to be included")
			}
			if len(info.AppDataRoots) == 0 {
				t.Error("expected application data roots")
			}
			for _, root := range info.LargeFileRoots {
				// Windows roots are drive paths, which are only absolute on Windows
				if tt.platform != Windows && !filepath.IsAbs(root) {
					t.Errorf("large-file root %q is not absolute", root)
				}
			}
		})
	}
}

func TestInfoForUnsupported(t *testing.T) {
	if _, err := InfoFor(Unknown, "/home/tester", "tester"); err != ErrUnsupportedPlatform {
		t.Errorf("InfoFor(unknown) error = %v, want ErrUnsupportedPlatform", err)
	}
}

func TestExistingCacheRoots(t *testing.T) {
	root := t.TempDir()
	present := filepath.Join(root, "present")
	if err := os.Mkdir(present, 0755); err != nil {
		t.Fatal(err)
	}
	notADir := filepath.Join(root, "file")
	if err := os.WriteFile(notADir, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	info := &Info{CacheRoots: []string{present, filepath.Join(root, "missing"), notADir}}
	roots := info.ExistingCacheRoots()

	if len(roots) != 1 || roots[0] != present {
		t.Errorf("ExistingCacheRoots() = %v, want [%s]", roots, present)
	}

	info = &Info{AppDataRoots: []string{filepath.Join(root, "missing"), present}}
	if roots := info.ExistingAppDataRoots(); len(roots) != 1 || roots[0] != present {
		t.Errorf("ExistingAppDataRoots() = %v, want [%s]", roots, present)
	}
}

func TestDetectCapability(t *testing.T) {
	c := DetectCapability()
	if c.CPUs < 1 {
		t.Errorf("CPUs = %d, want >= 1", c.CPUs)
	}
}
