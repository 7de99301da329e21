package version

import (
	"encoding/json"
	"regexp"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVersion_IsNotEmpty(t *testing.T) {
	assert.NotEmpty(t, Version, "Version should not be empty")
}

func TestVersion_FollowsSemverOrDev(t *testing.T) {
	// Then: it should follow semver format or be "dev" for development builds
	if Version == "dev" {
		t.Log("Version is 'dev' (development build without ldflags)")
		return
	}
	semverRegex := regexp.MustCompile(`^\d+\.\d+\.\d+(-[a-zA-Z0-9.]+)?$`)
	require.True(t, semverRegex.MatchString(Version), "Version should follow semver format, got: %s", Version)
}

func TestString_ContainsAllBuildInfo(t *testing.T) {
	s := String()

	assert.Contains(t, s, "bigpick")
	assert.Contains(t, s, Version)
	assert.Contains(t, s, Commit)
	assert.Contains(t, s, GoVersion)
}

func TestGetInfo_RoundTripsThroughJSON(t *testing.T) {
	// Given: structured build info
	info := GetInfo()
	assert.Equal(t, runtime.GOOS, info.OS)
	assert.Equal(t, runtime.GOARCH, info.Arch)

	// When: marshaling to JSON
	data, err := json.Marshal(info)
	require.NoError(t, err)

	// Then: all fields survive
	var decoded BuildInfo
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, info, decoded)
}

func TestShort_ReturnsVersionOnly(t *testing.T) {
	assert.Equal(t, Version, Short())
}
