package core

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestByteQueueFIFO(t *testing.T) {
	q := NewByteQueue(4)
	assert.Equal(t, 4, q.Cap())

	for _, b := range []byte{1, 2, 3} {
		require.True(t, q.Push(b))
	}
	assert.Equal(t, 3, q.Len())

	b, ok := q.Pop()
	require.True(t, ok)
	assert.Equal(t, byte(1), b)

	var got []byte
	n := q.Drain(func(b byte) { got = append(got, b) })
	assert.Equal(t, 2, n)
	assert.Equal(t, []byte{2, 3}, got)

	_, ok = q.Pop()
	assert.False(t, ok)
}

func TestByteQueueDropsWhenFull(t *testing.T) {
	q := NewByteQueue(3)
	for i := 0; i < 5; i++ {
		q.Push(byte(i))
	}

	assert.Equal(t, 3, q.Len())
	assert.Equal(t, uint32(2), q.Dropped())

	var got []byte
	q.Drain(func(b byte) { got = append(got, b) })
	assert.Equal(t, []byte{0, 1, 2}, got, "oldest bytes survive")

	q.Push(9)
	q.Reset()
	assert.Zero(t, q.Len())
}

func TestByteQueueWraps(t *testing.T) {
	q := NewByteQueue(3)
	for round := 0; round < 10; round++ {
		require.True(t, q.Push(byte(round)))
		require.True(t, q.Push(byte(round+100)))

		b, _ := q.Pop()
		assert.Equal(t, byte(round), b)
		b, _ = q.Pop()
		assert.Equal(t, byte(round+100), b)
	}
}

func TestByteQueueConcurrentProducer(t *testing.T) {
	const total = 10000
	q := NewByteQueue(total)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < total; i++ {
			q.Push(byte(i))
		}
	}()

	var got []byte
	for len(got) < total {
		q.Drain(func(b byte) { got = append(got, b) })
	}
	wg.Wait()

	for i, b := range got {
		require.Equal(t, byte(i), b, "byte %d", i)
	}
	assert.Zero(t, q.Dropped())
}
