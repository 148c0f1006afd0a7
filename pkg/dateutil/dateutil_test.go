package dateutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestIsSameUTCDay(t *testing.T) {
	t.Run("same day, different hours", func(t *testing.T) {
		a := time.Date(2024, 3, 1, 0, 0, 1, 0, time.UTC)
		b := time.Date(2024, 3, 1, 23, 59, 59, 0, time.UTC)
		require.True(t, IsSameUTCDay(a, b))
	})

	t.Run("across a midnight boundary", func(t *testing.T) {
		a := time.Date(2024, 3, 1, 23, 59, 59, 0, time.UTC)
		b := time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC)
		require.False(t, IsSameUTCDay(a, b))
	})

	t.Run("time zone of the request does not matter", func(t *testing.T) {
		loc := time.FixedZone("UTC+9", 9*3600)
		// 08:00 on March 2nd in UTC+9 is 23:00 on March 1st in UTC.
		a := time.Date(2024, 3, 2, 8, 0, 0, 0, loc)
		b := time.Date(2024, 3, 1, 23, 0, 0, 0, time.UTC)
		require.True(t, IsSameUTCDay(a, b))
	})
}
