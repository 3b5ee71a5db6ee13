package idx

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	t.Parallel()

	t.Run("generates valid ids", func(t *testing.T) {
		id := New()
		require.False(t, id.IsZero())
		require.Len(t, id.String(), 26)

		parsed, err := Parse(id.String())
		require.NoError(t, err)
		require.Equal(t, id, parsed)
	})

	t.Run("same millisecond ids still sort", func(t *testing.T) {
		at := time.Now().UTC()
		first := NewAt(at)
		second := NewAt(at)
		require.NotEqual(t, first, second)
		require.Less(t, first.String(), second.String())
	})
}

func TestParse(t *testing.T) {
	t.Parallel()

	t.Run("rejects garbage", func(t *testing.T) {
		for _, input := range []string{"", "   ", "not-a-ulid", "0000000000000000000000000!"} {
			_, err := Parse(input)
			require.ErrorIs(t, err, ErrInvalid)
		}
	})

	t.Run("trims whitespace", func(t *testing.T) {
		id := New()
		parsed, err := Parse("  " + id.String() + "  ")
		require.NoError(t, err)
		require.Equal(t, id, parsed)
	})
}
