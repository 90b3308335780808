package pagination

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCursorRoundTrip(t *testing.T) {
	in := Cursor{CreatedAt: time.Date(2026, 3, 1, 10, 0, 0, 123, time.UTC), ID: uuid.New()}
	out, err := ParseCursor(EncodeCursor(in))
	require.NoError(t, err)
	require.NotNil(t, out)
	assert.True(t, in.CreatedAt.Equal(out.CreatedAt))
	assert.Equal(t, in.ID, out.ID)
}

func TestParseCursorRejectsGarbage(t *testing.T) {
	c, err := ParseCursor("  ")
	require.NoError(t, err)
	assert.Nil(t, c)

	_, err = ParseCursor("%%%")
	require.Error(t, err)
	_, err = ParseCursor("bm9waXBl")
	require.Error(t, err)
}

func TestNormalizeLimit(t *testing.T) {
	assert.Equal(t, DefaultLimit, NormalizeLimit(0))
	assert.Equal(t, MaxLimit, NormalizeLimit(MaxLimit+1))
	assert.Equal(t, 7, NormalizeLimit(7))
}

func TestFinish(t *testing.T) {
	type row struct {
		at time.Time
		id uuid.UUID
	}
	now := time.Now().UTC()
	rows := []row{{now, uuid.New()}, {now.Add(-time.Minute), uuid.New()}, {now.Add(-2 * time.Minute), uuid.New()}}
	key := func(r row) Cursor { return Cursor{CreatedAt: r.at, ID: r.id} }

	page := Finish(rows, 2, key)
	assert.Len(t, page.Items, 2)
	require.NotEmpty(t, page.NextCursor)
	c, err := ParseCursor(page.NextCursor)
	require.NoError(t, err)
	assert.Equal(t, rows[1].id, c.ID)

	page = Finish(rows, 3, key)
	assert.Len(t, page.Items, 3)
	assert.Empty(t, page.NextCursor)
}
