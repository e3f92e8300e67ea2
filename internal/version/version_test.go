package version

import (
	"strings"
	"testing"
)

// setBuildInfo overrides the ldflags variables for one test.
func setBuildInfo(t *testing.T, version, commit, buildTime string) {
	t.Helper()
	origVersion, origCommit, origBuildTime := Version, Commit, BuildTime
	t.Cleanup(func() {
		Version, Commit, BuildTime = origVersion, origCommit, origBuildTime
	})
	Version, Commit, BuildTime = version, commit, buildTime
}

func TestString(t *testing.T) {
	t.Run("default values", func(t *testing.T) {
		setBuildInfo(t, "dev", "unknown", "unknown")

		result := String()
		if result != "dev (unknown) built unknown" {
			t.Errorf("String() = %q", result)
		}
	})

	t.Run("custom values", func(t *testing.T) {
		setBuildInfo(t, "1.2.3", "abc1234", "2026-01-15T10:00:00Z")

		expected := "1.2.3 (abc1234) built 2026-01-15T10:00:00Z"
		if result := String(); result != expected {
			t.Errorf("String() = %q, want %q", result, expected)
		}
	})
}

func TestUserAgent(t *testing.T) {
	setBuildInfo(t, "0.4.0", "abc1234", "unknown")

	if got := UserAgent(); got != "smokebench/0.4.0" {
		t.Errorf("UserAgent() = %q, want %q", got, "smokebench/0.4.0")
	}
}

func TestDefaultValues(t *testing.T) {
	// These might be overwritten by ldflags in release builds.
	for name, v := range map[string]string{"Version": Version, "Commit": Commit, "BuildTime": BuildTime} {
		if strings.TrimSpace(v) == "" {
			t.Errorf("%s should not be empty", name)
		}
	}
}
