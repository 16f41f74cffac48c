package version

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInfo_Short(t *testing.T) {
	assert.Equal(t, "abcdef1", Info{CommitHash: "abcdef1234567"}.Short())
	assert.Equal(t, "dev", Info{CommitHash: "dev"}.Short())
}

func TestInfo_String(t *testing.T) {
	s := Info{Version: "v0.3.0", CommitHash: "abcdef1234567", BuildTime: "2026-10-01"}.String()
	assert.Equal(t, "declgen v0.3.0 (commit abcdef1, built 2026-10-01)", s)
}

func TestGet(t *testing.T) {
	info := Get()
	assert.NotEmpty(t, info.Version)
	assert.True(t, strings.HasPrefix(info.GoVersion, "go"))
	assert.Contains(t, info.Platform, "/")
}
