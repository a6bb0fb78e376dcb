package dateutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func Test_NextDay(t *testing.T) {
	at := time.Date(2023, time.March, 14, 15, 9, 26, 0, time.UTC)
	require.Equal(t, time.Date(2023, time.March, 15, 0, 0, 0, 0, time.UTC), NextDay(at))

	midnight := time.Date(2023, time.March, 14, 0, 0, 0, 0, time.UTC)
	require.Equal(t, time.Date(2023, time.March, 15, 0, 0, 0, 0, time.UTC), NextDay(midnight))
}
