package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSession(t *testing.T) {
	Init(nil)

	id, err := GenerateSessionID()
	require.NoError(t, err)
	assert.Len(t, id, 64)

	in := &Data{UserID: "user-alex-chen", CreatedAt: time.Date(2024, time.July, 29, 9, 0, 0, 0, time.UTC)}
	require.NoError(t, in.Write(id, time.Minute))

	out := new(Data)
	require.NoError(t, out.Read(id))
	assert.Equal(t, "user-alex-chen", out.UserID)
	assert.True(t, in.CreatedAt.Equal(out.CreatedAt))

	require.NoError(t, Delete(id))
	require.ErrorIs(t, new(Data).Read(id), ErrNoSession)
	require.ErrorIs(t, new(Data).Read(""), ErrNoSession)
}

func TestGenerateSessionID_Unique(t *testing.T) {
	a, err := GenerateSessionID()
	require.NoError(t, err)

	b, err := GenerateSessionID()
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
}
