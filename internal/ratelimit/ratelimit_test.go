package ratelimit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.lsp.dev/protocol"
)

func TestLimiter_DeniesWithinInterval(t *testing.T) {
	l := New(50 * time.Millisecond)
	defer l.Close()

	uri := protocol.DocumentURI("file:///a/Cargo.toml")
	assert.True(t, l.Allow(uri))
	assert.False(t, l.Allow(uri))

	time.Sleep(60 * time.Millisecond)
	assert.True(t, l.Allow(uri))
}

func TestLimiter_SweepEvictsStaleEntries(t *testing.T) {
	l := New(time.Millisecond)
	defer l.Close()

	uri := protocol.DocumentURI("file:///a/Cargo.toml")
	l.Allow(uri)
	assert.Equal(t, 1, l.Len())

	l.sweep(time.Now().Add(sweepMaxAge + time.Second))
	assert.Equal(t, 0, l.Len())
}
