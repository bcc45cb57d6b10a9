package stage

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestResult(t *testing.T) {
	t.Parallel()

	ok := Succeeded(Unpacked).WithDuration(2 * time.Second).WithCommand("7z x -y a.7z -oa -r")
	assert.True(t, ok.Success())
	assert.Nil(t, ok.Err())
	assert.Equal(t, Unpacked, ok.Stage())
	assert.Equal(t, 2*time.Second, ok.Duration())
	assert.Equal(t, "7z x -y a.7z -oa -r", ok.Command())

	failed := Failed(EnvironmentReady, New(KindSdkNotFound, "sdk missing"))
	assert.False(t, failed.Success())
	assert.ErrorIs(t, failed.Err(), ErrSdkNotFound)
}

func TestName_Terminal(t *testing.T) {
	t.Parallel()

	for _, n := range []Name{BuildCompleted, Aborted, PlatformUnsupported} {
		assert.True(t, n.Terminal(), n)
	}
	for _, n := range []Name{Init, SourcesValidated, Unpacked, EnvironmentReady, Configured} {
		assert.False(t, n.Terminal(), n)
	}
}
