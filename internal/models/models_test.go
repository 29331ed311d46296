package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTableID(t *testing.T) {
	assert.Equal(t, "0-0", TableID(0, 0))
	assert.Equal(t, "23-15", TableID(23, 15))

	x, y, err := ParseTableID("7-12")
	require.NoError(t, err)
	assert.Equal(t, 7, x)
	assert.Equal(t, 12, y)

	for _, bad := range []string{"", "7", "a-1", "1-b", "--"} {
		_, _, err := ParseTableID(bad)
		assert.Error(t, err, "id %q", bad)
	}
}

func TestIsEditorStatus(t *testing.T) {
	for _, ok := range []string{TableAvailable, TableBlocked, TablePermanent, TableEntrance} {
		assert.True(t, IsEditorStatus(ok))
	}
	for _, bad := range []string{TableReserved, TablePending, "", "deleted"} {
		assert.False(t, IsEditorStatus(bad))
	}
}

func TestNewReservationID(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, "1748779200000", NewReservationID(now))
}

func TestTablePatchIsZero(t *testing.T) {
	assert.True(t, TablePatch{}.IsZero())
	assert.False(t, TablePatch{Status: TableBlocked}.IsZero())
	assert.False(t, TablePatch{ClearReservationID: true}.IsZero())
}
