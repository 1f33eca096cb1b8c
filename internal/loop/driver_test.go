package loop

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tejashwikalptaru/govis/internal/adapter/scheduler"
	"github.com/tejashwikalptaru/govis/internal/domain"
	"github.com/tejashwikalptaru/govis/internal/logger"
)

type countingPoller struct {
	buf   domain.FrequencySnapshot
	polls int
}

func (p *countingPoller) Poll() domain.FrequencySnapshot {
	p.polls++
	for i := range p.buf {
		p.buf[i] = uint8(p.polls)
	}
	return p.buf
}

type recordingSink struct {
	name  string
	order *[]string
	got   []domain.FrequencySnapshot
}

func (s *recordingSink) OnData(snapshot domain.FrequencySnapshot) {
	*s.order = append(*s.order, s.name)
	s.got = append(s.got, snapshot)
}

func newTestDriver() (*Driver, *countingPoller, *scheduler.Manual) {
	p := &countingPoller{buf: make(domain.FrequencySnapshot, 8)}
	sched := scheduler.NewManual()
	return NewDriver(p, sched, logger.NewTestLogger()), p, sched
}

func TestDriver_TickDeliversSameSnapshotInOrder(t *testing.T) {
	d, p, sched := newTestDriver()

	var order []string
	a := &recordingSink{name: "a", order: &order}
	b := &recordingSink{name: "b", order: &order}
	d.Register(a)
	d.Register(b)

	d.Start()
	assert.Equal(t, StateRunning, d.State())
	require.Equal(t, 1, sched.Fire(time.Now()))

	assert.Equal(t, 1, p.polls)
	assert.Equal(t, []string{"a", "b"}, order)
	require.Len(t, a.got, 1)
	require.Len(t, b.got, 1)
	assert.Same(t, &a.got[0][0], &b.got[0][0])
	assert.Same(t, &p.buf[0], &d.Latest()[0])

	// The next frame is requested after the sinks ran.
	assert.Equal(t, 1, sched.Pending())
}

func TestDriver_StopCancelsPendingFrame(t *testing.T) {
	d, p, sched := newTestDriver()
	d.Start()
	sched.Fire(time.Now())

	d.Stop()
	assert.Equal(t, StateIdle, d.State())
	assert.Equal(t, 0, sched.Pending())
	assert.Equal(t, 0, sched.Fire(time.Now()))
	assert.Equal(t, 1, p.polls)
}

func TestDriver_StopFromSink(t *testing.T) {
	d, p, sched := newTestDriver()
	d.Register(SinkFunc(func(domain.FrequencySnapshot) { d.Stop() }))

	d.Start()
	sched.Fire(time.Now())

	assert.Equal(t, StateIdle, d.State())
	assert.Equal(t, 0, sched.Pending())
	assert.Equal(t, 1, p.polls)
}

func TestDriver_StartTwiceKeepsOneFrame(t *testing.T) {
	d, _, sched := newTestDriver()
	d.Start()
	d.Start()
	assert.Equal(t, 1, sched.Pending())
}

func TestDriver_RestartIgnoresStaleCallback(t *testing.T) {
	d, p, sched := newTestDriver()
	d.Start()
	first := sched.Pending()
	d.Stop()
	d.Start()

	assert.Equal(t, first, sched.Pending())
	sched.Fire(time.Now())
	assert.Equal(t, 1, p.polls)
}

func TestDriver_Unregister(t *testing.T) {
	d, _, sched := newTestDriver()

	var order []string
	a := &recordingSink{name: "a", order: &order}
	b := &recordingSink{name: "b", order: &order}
	idA := d.Register(a)
	d.Register(b)
	d.Unregister(idA)
	d.Unregister(SinkID(999))

	d.Start()
	sched.Fire(time.Now())
	assert.Equal(t, []string{"b"}, order)
}

func TestDriver_Frames(t *testing.T) {
	d, _, sched := newTestDriver()
	assert.Nil(t, d.Latest())

	d.Start()
	for i := 0; i < 5; i++ {
		sched.Fire(time.Now())
	}
	assert.Equal(t, uint64(5), d.Frames())
}
