package vault

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCoalescerLeadingAndTrailingEdges(t *testing.T) {
	c := NewCoalescer(300 * time.Millisecond)
	start := time.Unix(100, 0)

	immediate, seq1 := c.Observe(start)
	assert.True(t, immediate)
	assert.False(t, c.Flush(seq1), "single event needs no trailing refresh")

	immediate, seq2 := c.Observe(start.Add(50 * time.Millisecond))
	assert.False(t, immediate)
	immediate, seq3 := c.Observe(start.Add(100 * time.Millisecond))
	assert.False(t, immediate)

	assert.False(t, c.Flush(seq2), "superseded flush is dropped")
	assert.True(t, c.Flush(seq3))
	assert.False(t, c.Flush(seq3), "flush runs once")
}

func TestCoalescerNewBurstAfterQuietWindow(t *testing.T) {
	c := NewCoalescer(300 * time.Millisecond)
	start := time.Unix(100, 0)

	c.Observe(start)
	immediate, _ := c.Observe(start.Add(time.Second))
	assert.True(t, immediate)
}
