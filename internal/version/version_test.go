package version

import (
	"runtime/debug"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func withBuildInfo(t *testing.T, info *debug.BuildInfo, ok bool) {
	t.Helper()
	orig := readBuildInfo
	readBuildInfo = func() (*debug.BuildInfo, bool) { return info, ok }
	t.Cleanup(func() { readBuildInfo = orig })
}

func withStamp(t *testing.T, version, commit, built string) {
	t.Helper()
	v, c, b := Version, GitCommit, BuildTime
	Version, GitCommit, BuildTime = version, commit, built
	t.Cleanup(func() { Version, GitCommit, BuildTime = v, c, b })
}

func TestStampedVersion(t *testing.T) {
	withStamp(t, "v1.2.3", "0123456789abcdef", "2026-01-02T03:04:05Z")
	withBuildInfo(t, nil, false)

	assert.Equal(t, "v1.2.3", GetVersion())
	assert.Equal(t, "0123456789abcdef", GetGitCommit())
	assert.Equal(t, "v1.2.3 (0123456)", GetShortVersion())
	assert.True(t, IsRelease())

	info := GetBuildInfo()
	assert.Equal(t, 2026, info.BuildTime.Year())
	assert.Contains(t, info.String(), "Commit: 0123456789abcdef")
	assert.Contains(t, info.String(), "Built: 2026-01-02T03:04:05Z")
}

func TestVersionFromBuildInfo(t *testing.T) {
	withStamp(t, "dev", "unknown", "unknown")
	withBuildInfo(t, &debug.BuildInfo{
		Main: debug.Module{Version: "(devel)"},
		Settings: []debug.BuildSetting{
			{Key: "vcs.revision", Value: "abcdef0123456789"},
			{Key: "vcs.modified", Value: "true"},
		},
	}, true)

	assert.Equal(t, "dev-abcdef0", GetVersion())
	assert.Equal(t, "abcdef0123456789", GetGitCommit())
	assert.Equal(t, "dev-abcdef0", GetShortVersion())
	assert.False(t, IsRelease())
	assert.True(t, IsDirty())
	assert.Contains(t, GetBuildInfo().String(), "Working directory: dirty")
}

func TestVersionWithoutAnyInfo(t *testing.T) {
	withStamp(t, "dev", "unknown", "unknown")
	withBuildInfo(t, nil, false)

	assert.Equal(t, "dev", GetVersion())
	assert.Equal(t, "unknown", GetGitCommit())
	assert.Equal(t, "dev", GetShortVersion())
	assert.False(t, IsDirty())

	s := GetBuildInfo().String()
	assert.NotContains(t, s, "Commit:")
	assert.NotContains(t, s, "Built:")
}

func TestParseISOTime(t *testing.T) {
	tests := []struct {
		input string
		zero  bool
	}{
		{"2026-01-02T03:04:05Z", false},
		{"2026-01-02T03:04:05", false},
		{"2026-01-02 03:04:05", false},
		{"unknown", true},
		{"", true},
		{"yesterday", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.zero, parseISOTime(tt.input).Equal(time.Time{}))
		})
	}
}
