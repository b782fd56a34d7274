package common

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Version information (set via -ldflags during build)
var (
	Version   = "dev"
	Build     = "unknown"
	GitCommit = "unknown"
)

// VersionInfo is the printable build identity
type VersionInfo struct {
	Version   string `json:"version"`
	Build     string `json:"build"`
	GitCommit string `json:"git_commit"`
}

// GetVersion returns the current version string
func GetVersion() string {
	return Version
}

// GetVersionInfo returns version, build and commit together
func GetVersionInfo() VersionInfo {
	return VersionInfo{Version: Version, Build: Build, GitCommit: GitCommit}
}

// GetFullVersion returns version with build info
func GetFullVersion() string {
	return fmt.Sprintf("%s (build: %s, commit: %s)", Version, Build, GitCommit)
}

// LoadVersionFromFile reads a .version file from dir, or from the executable's directory when dir is empty.
// A missing or blank file leaves Version unchanged.
func LoadVersionFromFile(dir string) string {
	if dir == "" {
		exePath, err := os.Executable()
		if err != nil {
			return Version
		}
		dir = filepath.Dir(exePath)
	}

	data, err := os.ReadFile(filepath.Join(dir, ".version"))
	if err != nil {
		return Version
	}

	if version := strings.TrimSpace(string(data)); version != "" {
		Version = version
	}
	return Version
}
