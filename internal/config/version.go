package config

import (
	"os"
	"os/exec"
	"runtime/debug"
	"strconv"
	"strings"
)

const fallbackVersion = "0.1.0"

// GetVersion returns the dashboard version shown in the page footer.
// APP_VERSION wins (set by CI), then the VERSION file plus the git commit count.
func GetVersion() string {
	if envVersion := strings.TrimSpace(os.Getenv("APP_VERSION")); envVersion != "" {
		return envVersion
	}

	baseVersion := getBaseVersion()
	if commitCount := getGitCommitCount(); commitCount > 0 {
		return baseVersion + "." + strconv.Itoa(commitCount)
	}

	return baseVersion
}

// getBaseVersion reads VERSION from the working directory or its parent,
// then falls back to the module version stamped by the Go toolchain.
func getBaseVersion() string {
	for _, path := range []string{"VERSION", "../VERSION"} {
		if content, err := os.ReadFile(path); err == nil {
			if v := strings.TrimSpace(string(content)); v != "" {
				return v
			}
		}
	}

	if info, ok := debug.ReadBuildInfo(); ok {
		v := strings.TrimPrefix(info.Main.Version, "v")
		if v != "" && v != "(devel)" {
			return v
		}
	}

	return fallbackVersion
}

// getGitCommitCount gets the total commit count from git
func getGitCommitCount() int {
	output, err := exec.Command("git", "rev-list", "--count", "HEAD").Output()
	if err != nil {
		return 0
	}

	count, err := strconv.Atoi(strings.TrimSpace(string(output)))
	if err != nil {
		return 0
	}

	return count
}
