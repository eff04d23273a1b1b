package repositories

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFanOutRowsOnePerMemberSenderRead(t *testing.T) {
	rows := fanOutRows(10, []int{1, 2, 3}, 2)

	require.Len(t, rows, 3)
	seen := map[int]bool{}
	for _, row := range rows {
		require.Equal(t, 10, row.MessageID)
		require.False(t, seen[row.UserID], "duplicate row for user %d", row.UserID)
		seen[row.UserID] = true
		require.Equal(t, row.UserID == 2, row.IsRead)
	}
	require.True(t, seen[1] && seen[2] && seen[3])
}

func TestFanOutRowsDedupesMembers(t *testing.T) {
	rows := fanOutRows(7, []int{5, 5, 6, 6, 5}, 5)

	require.Len(t, rows, 2)
	require.Equal(t, 5, rows[0].UserID)
	require.True(t, rows[0].IsRead)
	require.Equal(t, 6, rows[1].UserID)
	require.False(t, rows[1].IsRead)
}

func TestFanOutRowsSenderNotMember(t *testing.T) {
	// A sender who raced a membership removal still fans out to the
	// remaining members; no row is invented for the absent sender.
	rows := fanOutRows(3, []int{8, 9}, 4)

	require.Len(t, rows, 2)
	for _, row := range rows {
		require.False(t, row.IsRead)
	}
}

func TestFanOutRowsEmptyRoom(t *testing.T) {
	rows := fanOutRows(1, nil, 1)
	require.Empty(t, rows)
}
