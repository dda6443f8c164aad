package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vvka-141/pairload/pkg/pairload"
)

func TestRoot_UnknownCommand(t *testing.T) {
	isolate(t)

	res := run(t, "upload")

	require.Error(t, res.err)
	assert.Equal(t, pairload.ExitUsageError, pairload.ExitCodeForError(res.err))
}

func TestRoot_UnknownFlag(t *testing.T) {
	isolate(t)

	res := run(t, "load", "--bogus")

	require.Error(t, res.err)
	assert.Equal(t, pairload.ExitUsageError, pairload.ExitCodeForError(res.err))
}

func TestVersionCommand(t *testing.T) {
	isolate(t)

	res := run(t, "version")

	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, "pairload ")
}

func TestResolveVersionInfo_LdflagsOverride(t *testing.T) {
	original := version
	defer func() { version = original }()

	version = "1.2.3"
	v, _, _ := resolveVersionInfo()
	assert.Equal(t, "1.2.3", v)
}

func TestResolveVersionInfo_DevFallback(t *testing.T) {
	origV, origC, origD := version, commit, date
	defer func() { version, commit, date = origV, origC, origD }()

	version, commit, date = "dev", "unknown", "unknown"
	v, c, d := resolveVersionInfo()

	assert.NotEmpty(t, v)
	assert.NotEmpty(t, c)
	assert.NotEmpty(t, d)
}

func TestFinishRun(t *testing.T) {
	defer resetFlags()

	globalFlags.strict = false
	assert.NoError(t, finishRun(pairload.ErrBatchFailed))

	globalFlags.strict = true
	err := finishRun(pairload.ErrBatchFailed)
	assert.ErrorIs(t, err, pairload.ErrBatchFailed)
	assert.NoError(t, finishRun(nil))
}
