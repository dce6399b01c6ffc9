package products

import (
	"bytes"
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func names(q *Queue) []string {
	out := make([]string, len(q.Items))
	for i, it := range q.Items {
		out[i] = it.Name
	}
	return out
}

func TestQueue_AddDeduplicates(t *testing.T) {
	var q Queue
	assert.True(t, q.Add("a.jpg", 10, solid(2, 3, red)))
	assert.True(t, q.Add("b.jpg", 10, solid(2, 3, red)))
	assert.False(t, q.Add("a.jpg", 10, solid(2, 3, red)), "same name and size")
	assert.True(t, q.Add("a.jpg", 11, solid(2, 3, red)), "same name, different size")
	assert.Equal(t, 3, q.Len())
}

func TestQueue_Reorder(t *testing.T) {
	var q Queue
	for _, n := range []string{"a", "b", "c"} {
		q.Add(n, 1, solid(1, 1, red))
	}
	require.NoError(t, q.Apply(2, QueueUp))
	assert.Equal(t, []string{"a", "c", "b"}, names(&q))
	require.NoError(t, q.Apply(0, QueueDown))
	assert.Equal(t, []string{"c", "a", "b"}, names(&q))

	require.NoError(t, q.Apply(0, QueueUp), "moving the first item up is a no-op")
	require.NoError(t, q.Apply(2, QueueDown), "moving the last item down is a no-op")
	assert.Equal(t, []string{"c", "a", "b"}, names(&q))
}

func TestQueue_RotateAndDelete(t *testing.T) {
	var q Queue
	q.Add("wide", 1, solid(4, 2, red))
	q.Add("other", 1, solid(1, 1, red))

	require.NoError(t, q.Apply(0, QueueRotate))
	assert.Equal(t, image.Rect(0, 0, 2, 4), q.Items[0].Image.Bounds())
	assert.Equal(t, 90, q.Items[0].Rotation)
	for i := 0; i < 3; i++ {
		require.NoError(t, q.Apply(0, QueueRotate))
	}
	assert.Equal(t, 0, q.Items[0].Rotation)

	require.NoError(t, q.Apply(0, QueueDelete))
	assert.Equal(t, []string{"other"}, names(&q))
	assert.True(t, q.Add("wide", 1, solid(4, 2, red)), "a deleted upload can be added again")

	q.Clear()
	assert.Zero(t, q.Len())
	assert.Empty(t, q.Images())
}

func TestQueue_CloneIsIndependent(t *testing.T) {
	var q Queue
	for _, n := range []string{"a", "b", "c"} {
		q.Add(n, 1, solid(1, 1, red))
	}
	c := q.Clone()
	require.NoError(t, c.Apply(0, QueueDown))
	require.NoError(t, c.Apply(2, QueueDelete))
	assert.Equal(t, []string{"a", "b", "c"}, names(&q))
	assert.Equal(t, []string{"b", "a"}, names(&c))
}

func TestQueue_Errors(t *testing.T) {
	var q Queue
	assert.ErrorIs(t, q.Apply(0, QueueUp), ErrInvalidOption)
	q.Add("a", 1, solid(1, 1, red))
	assert.ErrorIs(t, q.Apply(-1, QueueDelete), ErrInvalidOption)
	assert.ErrorIs(t, q.Apply(0, QueueAction("flip")), ErrInvalidOption)
}

func TestImagesToPDF(t *testing.T) {
	var q Queue
	q.Add("a", 1, solid(120, 80, red))
	q.Add("b", 1, solid(80, 120, blue))

	var buf bytes.Buffer
	require.NoError(t, ImagesToPDF(&buf, q.Images(), 150, 90, "holiday"))
	b := buf.Bytes()
	assert.True(t, bytes.HasPrefix(b, []byte("%PDF")))
	assert.Equal(t, 2, bytes.Count(b, []byte("/Type /Page"))-bytes.Count(b, []byte("/Type /Pages")))

	assert.ErrorIs(t, ImagesToPDF(&buf, nil, 150, 90, ""), ErrInvalidOption)
}
