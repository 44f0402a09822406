package idle

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// TestIdleGating covers property 6: given a 2s threshold and a 3s gap
// since the last input, the gate reports idle; a touch brings it back.
func TestIdleGating(t *testing.T) {
	g := New()
	base := time.Now()
	g.Touch(base)

	assert.False(t, g.IsIdle(2, base.Add(1*time.Second)))
	assert.True(t, g.IsIdle(2, base.Add(3*time.Second)))

	g.Touch(base.Add(3 * time.Second))
	assert.False(t, g.IsIdle(2, base.Add(3*time.Second+10*time.Millisecond)))
}

func TestIdleGateDisabledByNonPositiveThreshold(t *testing.T) {
	g := New()
	base := time.Now()
	g.Touch(base)

	assert.False(t, g.IsIdle(0, base.Add(1*time.Hour)))
	assert.False(t, g.IsIdle(-5, base.Add(1*time.Hour)))
}
