package scheduler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/streamforge/streamforge/event"
	"github.com/streamforge/streamforge/operator"
	"github.com/streamforge/streamforge/queue"
)

func newTestInstance(name string) (*operator.Instance, *queue.Queue[event.Event]) {
	op := operator.FromMapFunc(name, func(evt event.Event) (event.Event, bool) { return evt, true })
	q := queue.New[event.Event](4)
	inst := operator.NewInstance(name, op, q, operator.NewEmitContext(name, 0))
	return inst, q
}

func TestRoundRobinReturnsReadyInstance(t *testing.T) {
	idle, _ := newTestInstance("idle")
	ready, readyQ := newTestInstance("ready")
	readyQ.TryPush(event.New(event.Empty()))

	sched := NewRoundRobin([]*operator.Instance{idle, ready}, 2)

	assert.Same(t, ready, sched.Next(0))
}

func TestRoundRobinReturnsNilWhenNoneReady(t *testing.T) {
	a, _ := newTestInstance("a")
	b, _ := newTestInstance("b")
	sched := NewRoundRobin([]*operator.Instance{a, b}, 1)

	assert.Nil(t, sched.Next(0))
	assert.Equal(t, int64(1), sched.Stats().Misses)
}

func TestRoundRobinDoesNotDoubleAssignAClaimedInstance(t *testing.T) {
	ready, readyQ := newTestInstance("ready")
	readyQ.TryPush(event.New(event.Empty()))

	sched := NewRoundRobin([]*operator.Instance{ready}, 2)

	first := sched.Next(0)
	require.NotNil(t, first, "expected the ready instance on the first call")

	second := sched.Next(1)
	assert.Nil(t, second, "expected nil for a second worker while the instance is still claimed")

	first.Release()
	third := sched.Next(1)
	assert.Same(t, ready, third, "expected the instance to become assignable again after Release")
}

func TestWorkStealingFallsBackToOtherPartitions(t *testing.T) {
	own, _ := newTestInstance("own")
	stolen, stolenQ := newTestInstance("stolen")
	stolenQ.TryPush(event.New(event.Empty()))

	// two workers: partition 0 gets "own" (not ready), partition 1 gets "stolen" (ready)
	sched := NewWorkStealing([]*operator.Instance{own, stolen}, 2)

	got := sched.Next(0)
	assert.Same(t, stolen, got, "expected the ready instance from the other partition")
	assert.Equal(t, int64(1), sched.Stats().Steals)
}

func TestWorkStealingPrefersOwnPartition(t *testing.T) {
	ready, readyQ := newTestInstance("ready")
	readyQ.TryPush(event.New(event.Empty()))
	other, _ := newTestInstance("other")

	sched := NewWorkStealing([]*operator.Instance{ready, other}, 2)

	got := sched.Next(0)
	assert.Same(t, ready, got, "expected its own partition's ready instance")
	assert.Equal(t, int64(0), sched.Stats().Steals, "expected 0 when the worker's own partition had work")
}
