package metric

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSnapshotReflectsCounters(t *testing.T) {
	c := New()
	c.EventsEmitted.Add(3)
	c.EventsDropped.Add(1)
	c.BackpressureEvents.Add(2)
	c.OperatorErrors.Add(1)

	snap := c.Snapshot()
	assert.Equal(t, int64(3), snap.EventsEmitted)
	assert.Equal(t, int64(1), snap.EventsDropped)
	assert.Equal(t, int64(2), snap.BackpressureEvents)
	assert.Equal(t, int64(1), snap.OperatorErrors)
	assert.Equal(t, int64(0), snap.EventsProcessed)
}
