package version

import (
	"runtime/debug"
	"strings"
	"testing"
)

func TestApplyBuildSettings(t *testing.T) {
	info := Info{Version: "1.0.0"}
	applyBuildSettings(&info, []debug.BuildSetting{
		{Key: "vcs.revision", Value: "abcdef0123456789"},
		{Key: "vcs.time", Value: "2026-01-15T10:30:00Z"},
		{Key: "vcs.modified", Value: "true"},
	})

	if info.Commit != "abcdef0" {
		t.Errorf("Commit = %q, want abcdef0", info.Commit)
	}
	if info.BuildTime != "2026-01-15T10:30:00Z" {
		t.Errorf("BuildTime = %q", info.BuildTime)
	}
	if !info.Dirty {
		t.Error("expected dirty build")
	}
}

func TestApplyBuildSettingsKeepsLinkTimeValues(t *testing.T) {
	info := Info{Version: "1.0.0", Commit: "1234567", BuildTime: "yesterday"}
	applyBuildSettings(&info, []debug.BuildSetting{
		{Key: "vcs.revision", Value: "abcdef0123456789"},
		{Key: "vcs.time", Value: "2026-01-15T10:30:00Z"},
	})
	if info.Commit != "1234567" || info.BuildTime != "yesterday" {
		t.Errorf("link-time values overwritten: %+v", info)
	}
}

func TestInfoFormatting(t *testing.T) {
	tests := []struct {
		name      string
		info      Info
		short     string
		isRelease bool
	}{
		{"dev", Info{Version: "dev"}, "dev", false},
		{"release", Info{Version: "1.2.0", Commit: "abc1234"}, "1.2.0-abc1234", true},
		{"dirty", Info{Version: "1.2.0", Commit: "abc1234", Dirty: true}, "1.2.0-abc1234-dirty", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.info.Short(); got != tt.short {
				t.Errorf("Short() = %q, want %q", got, tt.short)
			}
			if got := tt.info.IsRelease(); got != tt.isRelease {
				t.Errorf("IsRelease() = %v", got)
			}
		})
	}

	s := Info{Version: "1.2.0", BuildTime: "2026-01-15", GoVersion: "go1.26.0"}.String()
	if !strings.Contains(s, "built 2026-01-15") || !strings.HasSuffix(s, "go1.26.0") {
		t.Errorf("String() = %q", s)
	}
}

func TestUserAgent(t *testing.T) {
	orig := Version
	defer func() { Version = orig }()
	Version = "9.9.9"

	if got := UserAgent("sessionctl"); got != "sessionctl/9.9.9 restkit" {
		t.Errorf("UserAgent = %q", got)
	}
}
