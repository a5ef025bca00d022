package syncchannel

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBackoffSequence(t *testing.T) {
	b := NewBackoff(250*time.Millisecond, 5*time.Second)

	var got []time.Duration
	for i := 0; i < 8; i++ {
		got = append(got, b.Next())
	}
	ms := time.Millisecond
	assert.Equal(t, []time.Duration{250 * ms, 500 * ms, 1000 * ms, 2000 * ms, 4000 * ms, 5000 * ms, 5000 * ms, 5000 * ms}, got)

	b.Reset()
	assert.Equal(t, 250*ms, b.Next())
}
