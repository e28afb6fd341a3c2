package idx_test

import (
	"testing"
	"time"

	"github.com/snippetlab/auth/pkg/idx"
	"github.com/stretchr/testify/require"
)

func TestNewGeneratesValidIDs(t *testing.T) {
	t.Parallel()

	a := idx.New()
	b := idx.New()
	require.False(t, a.IsZero())
	require.NotEqual(t, a, b)

	parsed, err := idx.Parse(a.String())
	require.NoError(t, err)
	require.Equal(t, a, parsed)
}

func TestNewAtEmbedsTimestamp(t *testing.T) {
	t.Parallel()

	at := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	id := idx.NewAt(at)
	require.WithinDuration(t, at, id.Time(), time.Millisecond)
}

func TestParseRejectsGarbage(t *testing.T) {
	t.Parallel()

	for _, in := range []string{"", "  ", "not-a-ulid", "0000"} {
		_, err := idx.Parse(in)
		require.ErrorIs(t, err, idx.ErrInvalid)
	}
}

func TestIDsSortByTime(t *testing.T) {
	t.Parallel()

	early := idx.NewAt(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	late := idx.NewAt(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))
	require.Less(t, early.String(), late.String())
}
