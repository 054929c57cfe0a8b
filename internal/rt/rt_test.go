package rt

import (
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnameComment(t *testing.T) {
	s, err := UnameComment()
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(s, "# uname: "), s)
	assert.True(t, strings.HasSuffix(s, "\n"), s)
	assert.Equal(t, 1, strings.Count(s, "\n"))
	assert.True(t, len(strings.Fields(s)) >= 7, s)
}

func TestPinAlwaysReleases(t *testing.T) {
	done := make(chan struct{})
	go func() {
		defer close(done)
		release, err := Pin(Server)
		assert.NotNil(t, release)
		defer release()
		if err != nil {
			// Unprivileged test runs cannot switch to SCHED_FIFO.
			t.Logf("Pin: %v", err)
		}
	}()
	<-done

	if runtime.GOOS == "linux" {
		max, err := MaxPriority()
		require.NoError(t, err)
		assert.Equal(t, 99, max)
	}
}
