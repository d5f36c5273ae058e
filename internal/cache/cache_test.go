package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetGet(t *testing.T) {
	c, err := New(4)
	require.NoError(t, err)

	c.Set("k", "v", time.Minute)
	assert.Equal(t, "v", c.Get("k"))
	assert.Nil(t, c.Get("missing"))
}

func TestExpiry(t *testing.T) {
	c, err := New(4)
	require.NoError(t, err)

	c.Set("k", "v", time.Millisecond)
	time.Sleep(5 * time.Millisecond)
	assert.Nil(t, c.Get("k"))
}

func TestDelete(t *testing.T) {
	c, err := New(4)
	require.NoError(t, err)

	c.Set("k", "v", time.Minute)
	c.Delete("k")
	assert.Nil(t, c.Get("k"))
}

func TestEviction(t *testing.T) {
	c, err := New(2)
	require.NoError(t, err)

	c.Set("a", 1, time.Minute)
	c.Set("b", 2, time.Minute)
	c.Set("c", 3, time.Minute)

	assert.Nil(t, c.Get("a"))
	assert.Equal(t, 3, c.Get("c"))
}
