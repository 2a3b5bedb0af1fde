package registry

import (
	"testing"

	"github.com/coder/quartz"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bura/server/internal/room"
)

func TestCreateAndGet(t *testing.T) {
	reg := New(quartz.NewMock(t), nil)
	r := reg.Create("Table 1", "classic_2p", room.DefaultTableConfig())

	got, ok := reg.Get(r.ID)
	require.True(t, ok)
	assert.Equal(t, r, got)
}

func TestGet_Missing(t *testing.T) {
	reg := New(quartz.NewMock(t), nil)
	_, ok := reg.Get("nope")
	assert.False(t, ok)
}

func TestDeleteIfEmpty(t *testing.T) {
	reg := New(quartz.NewMock(t), nil)
	r := reg.Create("Table 1", "classic_2p", room.DefaultTableConfig())

	require.NoError(t, r.AddPlayer("a", "Alice", ""))
	assert.False(t, reg.DeleteIfEmpty(r.ID))

	r.RemovePlayer("a")
	assert.True(t, reg.DeleteIfEmpty(r.ID))

	_, ok := reg.Get(r.ID)
	assert.False(t, ok)
}

func TestList(t *testing.T) {
	reg := New(quartz.NewMock(t), nil)
	reg.Create("Table 1", "classic_2p", room.DefaultTableConfig())
	reg.Create("Table 2", "classic_3p", room.DefaultTableConfig())

	summaries := reg.List()
	assert.Len(t, summaries, 2)
}
