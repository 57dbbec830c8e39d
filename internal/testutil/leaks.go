package testutil

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/reglet-dev/vertical/internal/abi"
)

// RequireNoLeaks fails the test unless every string and handle allocated since
// before was snapshotted has been released.
func RequireNoLeaks(t testing.TB, before abi.Stats, msgAndArgs ...any) {
	t.Helper()

	require.Equal(t, before, abi.CurrentStats(), msgAndArgs...)
}
