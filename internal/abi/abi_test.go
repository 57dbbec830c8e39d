package abi

import (
	stdErrors "errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reglet-dev/vertical/domain/errors"
)

// resetMemoryManager clears all tracked allocations for test isolation.
func resetMemoryManager(t *testing.T) {
	t.Helper()
	FreeAllTracked()
	Configure(WithMaxTotalAllocations(NoLimit))
	t.Cleanup(FreeAllTracked)
}

func TestAllocString_RoundTrip(t *testing.T) {
	resetMemoryManager(t)

	p, err := AllocString("hello")
	require.NoError(t, err)
	require.NotNil(t, p)

	assert.Equal(t, Stats{Strings: 1, Bytes: len("hello") + 1}, CurrentStats())

	s, err := GoString(p)
	require.NoError(t, err)
	assert.Equal(t, "hello", s)

	assert.True(t, FreeString(p))
	assert.Equal(t, Stats{}, CurrentStats())
}

func TestAllocString_Empty(t *testing.T) {
	resetMemoryManager(t)

	p, err := AllocString("")
	require.NoError(t, err)
	require.NotNil(t, p, "empty string must be distinguishable from null")

	s, err := GoString(p)
	require.NoError(t, err)
	assert.Equal(t, "", s)
	assert.Equal(t, 1, CurrentStats().Bytes)

	assert.True(t, FreeString(p))
}

func TestAllocString_EmbeddedNUL(t *testing.T) {
	resetMemoryManager(t)

	p, err := AllocString("a\x00b")
	assert.ErrorIs(t, err, ErrEmbeddedNUL)
	assert.Nil(t, p)
	assert.Equal(t, Stats{}, CurrentStats())
}

func TestFreeString_NullAndDouble(t *testing.T) {
	resetMemoryManager(t)

	assert.False(t, FreeString(nil))

	p, err := AllocString("x")
	require.NoError(t, err)
	assert.True(t, FreeString(p))
	assert.False(t, FreeString(p), "second free is refused")
	assert.Equal(t, Stats{}, CurrentStats())
}

func TestGoString(t *testing.T) {
	resetMemoryManager(t)

	_, err := GoString(nil)
	assert.ErrorIs(t, err, ErrNullPointer)

	p, err := AllocString("\xff\xfe")
	require.NoError(t, err)
	defer FreeString(p)

	_, err = GoString(p)
	assert.ErrorIs(t, err, ErrInvalidUTF8)
}

func TestHandle_Lifecycle(t *testing.T) {
	resetMemoryManager(t)

	type payload struct{ name string }
	value := &payload{name: "vertical"}

	p, err := NewHandle(value)
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, Stats{Handles: 1, Bytes: handleSize}, CurrentStats())

	got, ok := LoadHandle(p)
	require.True(t, ok)
	assert.Same(t, value, got)

	released, ok := ReleaseHandle(p)
	require.True(t, ok)
	assert.Same(t, value, released)
	assert.Equal(t, Stats{}, CurrentStats())

	_, ok = LoadHandle(p)
	assert.False(t, ok, "released handle is no longer live")
	_, ok = ReleaseHandle(p)
	assert.False(t, ok, "double release is refused")
}

func TestHandle_Null(t *testing.T) {
	_, ok := LoadHandle(nil)
	assert.False(t, ok)
	_, ok = ReleaseHandle(nil)
	assert.False(t, ok)
}

func TestHandle_ForeignPointer(t *testing.T) {
	resetMemoryManager(t)

	p, err := AllocString("not a handle")
	require.NoError(t, err)
	defer FreeString(p)

	_, ok := LoadHandle(p)
	assert.False(t, ok)
	_, ok = ReleaseHandle(p)
	assert.False(t, ok)
	assert.Equal(t, 1, CurrentStats().Strings, "foreign release leaves the string alone")
}

func TestConfigure_WithMaxTotalAllocations(t *testing.T) {
	resetMemoryManager(t)

	Configure(WithMaxTotalAllocations(8))

	p, err := AllocString("1234")
	require.NoError(t, err)

	_, err = AllocString("56789")
	var allocErr *errors.AllocationError
	require.True(t, stdErrors.As(err, &allocErr))
	assert.Equal(t, 6, allocErr.Requested)
	assert.Equal(t, 5, allocErr.Current)
	assert.Equal(t, 8, allocErr.Limit)

	assert.True(t, FreeString(p))
	p, err = AllocString("56789")
	require.NoError(t, err, "freed bytes are available again")
	FreeString(p)
}

func TestConfigure_NonPositiveRemovesLimit(t *testing.T) {
	resetMemoryManager(t)

	for _, n := range []int{0, -100} {
		Configure(WithMaxTotalAllocations(4))
		_, err := AllocString("too long")
		require.Error(t, err)

		Configure(WithMaxTotalAllocations(n))
		p, err := AllocString("too long")
		require.NoError(t, err, "limit %d", n)
		FreeString(p)
	}
}

func TestAllocString_UnlimitedByDefault(t *testing.T) {
	resetMemoryManager(t)

	big := make([]byte, 8<<20)
	for i := range big {
		big[i] = 'x'
	}
	p, err := AllocString(string(big))
	require.NoError(t, err, "no cap applies unless configured")
	assert.Equal(t, len(big)+1, CurrentStats().Bytes)
	FreeString(p)
}

func TestFreeAllTracked(t *testing.T) {
	resetMemoryManager(t)

	_, err := AllocString("a")
	require.NoError(t, err)
	_, err = NewHandle(42)
	require.NoError(t, err)
	require.Equal(t, 2, CurrentStats().Strings+CurrentStats().Handles)

	FreeAllTracked()
	assert.Equal(t, Stats{}, CurrentStats())
}

func TestConcurrency(t *testing.T) {
	resetMemoryManager(t)

	var wg sync.WaitGroup
	iterations := 100

	wg.Add(iterations)
	for i := 0; i < iterations; i++ {
		go func() {
			defer wg.Done()
			p, err := AllocString("concurrent test data")
			if err != nil {
				return
			}
			_, _ = GoString(p)
			FreeString(p)

			h, err := NewHandle(i)
			if err != nil {
				return
			}
			ReleaseHandle(h)
		}()
	}
	wg.Wait()

	assert.Equal(t, Stats{}, CurrentStats())
}

func BenchmarkAllocFreeString(b *testing.B) {
	FreeAllTracked()
	line := "Prahou\tPraha\tNNFS7-----A----"

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		p, err := AllocString(line)
		if err != nil {
			b.Fatal(err)
		}
		FreeString(p)
	}
}
