package snapfx

import (
	"errors"
	"time"
)

// renderQueue is the ordered set of dirty instances. An instance keeps the
// position of its first request.
type renderQueue struct {
	items  []*Instance
	queued map[*Instance]struct{}
}

func (q *renderQueue) push(c *Instance) bool {
	if q.queued == nil {
		q.queued = make(map[*Instance]struct{})
	}
	if _, ok := q.queued[c]; ok {
		return false
	}
	q.queued[c] = struct{}{}
	q.items = append(q.items, c)
	return true
}

// prepend puts items back in front of anything queued since they were
// drained, skipping instances that were queued again meanwhile.
func (q *renderQueue) prepend(items []*Instance) {
	if len(items) == 0 {
		return
	}
	if q.queued == nil {
		q.queued = make(map[*Instance]struct{})
	}
	front := make([]*Instance, 0, len(items)+len(q.items))
	for _, c := range items {
		if _, ok := q.queued[c]; ok {
			continue
		}
		q.queued[c] = struct{}{}
		front = append(front, c)
	}
	q.items = append(front, q.items...)
}

func (q *renderQueue) drain() []*Instance {
	items := q.items
	q.items = nil
	q.queued = nil
	return items
}

func (q *renderQueue) remove(c *Instance) {
	if _, ok := q.queued[c]; !ok {
		return
	}
	delete(q.queued, c)
	for i, item := range q.items {
		if item == c {
			q.items = append(q.items[:i], q.items[i+1:]...)
			return
		}
	}
}

func (q *renderQueue) len() int { return len(q.items) }

// requestRender marks c dirty. It never renders synchronously.
func (rt *Runtime) requestRender(c *Instance) {
	if c.tornDown {
		return
	}
	rt.queue.push(c)
}

// Pending returns the number of instances waiting for the next flush.
func (rt *Runtime) Pending() int {
	return rt.queue.len()
}

// Burst runs fn as one synchronous execution burst. Writes made by fn are
// only queued; when the outermost Burst returns, the queue is flushed.
// Bursts can be nested, and a Burst started while a flush is running is
// flushed by that flush.
//
// Example:
//
//	err := rt.Burst(func() {
//	    count.Set(count.Get() + 10)
//	    fmt.Println(count.Get()) // still the pre-burst value
//	})
func (rt *Runtime) Burst(fn func()) error {
	rt.burstDepth++
	func() {
		defer func() { rt.burstDepth-- }()
		fn()
	}()

	if rt.burstDepth > 0 {
		return nil
	}
	return rt.Flush()
}

// Flush renders every dirty instance, batch by batch, until none is left.
// Within a batch each instance is processed exactly once: its queued writes
// are committed, the component is re-invoked, children are reconciled and
// its qualifying effects run. Renders requested during a batch go to the
// next batch.
//
// A fatal error (slot shape change, render panic, storm budget) stops the
// flush; instances not yet processed stay queued. Effect failures do not
// stop the flush and are joined into the returned error.
//
// Flush called while a flush is running returns nil immediately.
func (rt *Runtime) Flush() error {
	if rt.flushing {
		return nil
	}
	rt.flushing = true
	defer func() { rt.flushing = false }()

	start := time.Now()
	rt.budget.reset()
	rt.emit(Event{Kind: EventFlushStart, Slot: -1})

	var fatal error
	batches := 0

loop:
	for rt.queue.len() > 0 {
		if err := rt.budget.checkBatch(); err != nil {
			fatal = err
			break
		}
		batches++

		batch := rt.queue.drain()
		for i, c := range batch {
			if c.tornDown {
				continue
			}
			if err := rt.process(c); err != nil {
				fatal = err
				rt.queue.prepend(batch[i+1:])
				break loop
			}
		}
	}

	err := errors.Join(fatal, rt.drainErrors())
	if batches > 0 {
		rt.logger.Debug("flushed", "batches", batches, "duration", time.Since(start))
	}
	rt.emit(Event{Kind: EventFlushEnd, Slot: -1, Batch: batches, Duration: time.Since(start), Err: err})
	return err
}
