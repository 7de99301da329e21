package cmd

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDemoCmd_PlainFallbackForNonTTY(t *testing.T) {
	// Given: a demo command writing to a buffer (not a terminal)
	cmd := newDemoCmd()
	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(errOut)
	cmd.SetArgs([]string{"--size", "10", "--seed", "7"})

	// When: executing
	err := cmd.Execute()

	// Then: all generated rows print without a UI
	require.NoError(t, err)
	lines := strings.Split(strings.TrimRight(out.String(), "\n"), "\n")
	assert.Len(t, lines, 10)
	assert.Contains(t, errOut.String(), "10 rows")
}

func TestDemoCmd_DeterministicForSeed(t *testing.T) {
	// Given: two runs with the same seed
	run := func() string {
		cmd := newDemoCmd()
		out := &bytes.Buffer{}
		cmd.SetOut(out)
		cmd.SetErr(&bytes.Buffer{})
		cmd.SetArgs([]string{"--size", "25", "--seed", "42"})
		require.NoError(t, cmd.Execute())
		return out.String()
	}

	// Then: the generated rows are identical
	assert.Equal(t, run(), run())
}
