package version

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInfo(t *testing.T) {
	info := Info()

	assert.NotEmpty(t, info.Version)
	assert.NotEmpty(t, info.GoVersion)

	assert.Contains(t, info.String(), "lframe labeled data tool")
	assert.Contains(t, info.String(), "Version:")
	assert.Contains(t, info.String(), "Go Version:")
}

func TestBuildInfoString(t *testing.T) {
	info := BuildInfo{
		Version:   "v1.0.0",
		BuildDate: "2024-01-01T00:00:00Z",
		GitCommit: "abc123def456",
		GoVersion: "go1.24.4",
		Module:    "github.com/paveg/lframe",
	}

	str := info.String()
	assert.Contains(t, str, "Version: v1.0.0\n")
	assert.Contains(t, str, "Build Date: 2024-01-01T00:00:00Z")
	assert.Contains(t, str, "Git Commit: abc123d") // Truncated
	assert.Contains(t, str, "Go Version: go1.24.4")
	assert.Contains(t, str, "Module: github.com/paveg/lframe")
}

func TestBuildInfoStringUnknowns(t *testing.T) {
	info := BuildInfo{
		Version:   "dev",
		BuildDate: unknownValue,
		GitCommit: unknownValue,
		GoVersion: "go1.24.4",
		Dirty:     true,
	}

	str := info.String()
	assert.Contains(t, str, "Version: dev (dirty)")
	assert.NotContains(t, str, "Build Date")
	assert.NotContains(t, str, "Git Commit")
	assert.NotContains(t, str, "Module")
}

func TestIsRelease(t *testing.T) {
	original := Version
	defer func() { Version = original }()

	tests := []struct {
		version  string
		expected bool
	}{
		{"dev", false},
		{"v1.0.0", true},
		{"v1.0.0-rc.1", false},
	}

	for _, tt := range tests {
		t.Run(tt.version, func(t *testing.T) {
			Version = tt.version
			assert.Equal(t, tt.expected, IsRelease())
		})
	}
}
