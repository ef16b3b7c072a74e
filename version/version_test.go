package version

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInfo(t *testing.T) {
	tests := []struct {
		name    string
		info    Info
		str     string
		short   string
		release bool
	}{
		{
			name:  "dev build",
			info:  Info{Version: "dev", CommitHash: "abc", BuildTime: "unknown"},
			str:   "stubgen dev (commit abc, built unknown)",
			short: "abc",
		},
		{
			name:    "tagged release",
			info:    Info{Version: "v0.3.0", CommitHash: "0123456789", BuildTime: "2024-01-02"},
			str:     "stubgen v0.3.0 (commit 0123456789, built 2024-01-02)",
			short:   "0123456",
			release: true,
		},
		{
			name:  "prerelease",
			info:  Info{Version: "v0.4.0-rc.1", CommitHash: "0123456789", BuildTime: "x"},
			str:   "stubgen v0.4.0-rc.1 (commit 0123456789, built x)",
			short: "0123456",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.str, tt.info.String())
			assert.Equal(t, tt.short, tt.info.Short())
			assert.Equal(t, tt.release, tt.info.IsRelease())
		})
	}
}

func TestGet(t *testing.T) {
	info := Get()
	assert.Equal(t, Version, info.Version)
	assert.NotEmpty(t, info.GoVersion)
	assert.Contains(t, info.Platform, "/")
}
