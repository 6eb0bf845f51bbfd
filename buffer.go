// buffer.go: MPSC ring buffer and the single consumer draining it
//
// Copyright (c) 2025 AGILira
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package ringlog

import (
	"context"
	"math/bits"
	"sync"
	"sync/atomic"
	"time"
)

// record is one admitted log call. It is created by the producing goroutine,
// owned by the ring until popped, and its buffers go back to the pool once
// the consumer has written them.
type record struct {
	time    time.Time
	level   Level
	msg     string
	console *StringBuffer // nil when stdout mirroring is off
	file    *StringBuffer
}

// release returns the record's buffers to the pool.
func (r *record) release() {
	linePool.put(r.console)
	linePool.put(r.file)
	r.console, r.file = nil, nil
}

// ringSlot pairs a record with the sequence number that publishes it.
// seq == position          → free, waiting for the producer of that position
// seq == position + 1      → published, readable by the consumer
// seq == position + size   → freed by the consumer for the next lap
type ringSlot struct {
	seq atomic.Uint64
	rec *record
}

// ringBuffer is a lock-free bounded queue for many producers and one consumer.
// Producers reserve a position with CAS on tail, store the record and only
// then publish the slot, so the consumer never sees a half-written slot and
// two producers can never claim the same one.
type ringBuffer struct {
	slots []ringSlot
	mask  uint64
	head  atomic.Uint64 // next position to pop (consumer only)
	tail  atomic.Uint64 // next position to reserve
}

// nextPow2 returns the next power of 2 greater than or equal to x
func nextPow2(x uint64) uint64 {
	if x <= 1 {
		return 1
	}
	return 1 << (64 - bits.LeadingZeros64(x-1))
}

// newRingBuffer creates a ring holding at least size records.
// The capacity is rounded up to a power of two.
func newRingBuffer(size uint64) *ringBuffer {
	size = nextPow2(size)
	rb := &ringBuffer{
		slots: make([]ringSlot, size),
		mask:  size - 1,
	}
	for i := range rb.slots {
		rb.slots[i].seq.Store(uint64(i))
	}
	return rb
}

// capacity returns the number of records the ring can hold.
func (rb *ringBuffer) capacity() uint64 { return uint64(len(rb.slots)) }

// length returns an instantaneous estimate of queued records.
func (rb *ringBuffer) length() uint64 {
	head := rb.head.Load()
	tail := rb.tail.Load()
	if tail < head {
		return 0
	}
	return tail - head
}

// push admits r without blocking. It returns false when the ring is full.
// Safe for concurrent producers.
func (rb *ringBuffer) push(r *record) bool {
	for {
		pos := rb.tail.Load()
		slot := &rb.slots[pos&rb.mask]
		seq := slot.seq.Load()

		switch diff := int64(seq - pos); {
		case diff == 0:
			// Slot free for this lap: reserve it, then fill and publish
			if rb.tail.CompareAndSwap(pos, pos+1) {
				slot.rec = r
				slot.seq.Store(pos + 1)
				return true
			}
		case diff < 0:
			// Consumer has not released this slot from the previous lap
			return false
		}
		// Another producer moved tail, retry with the fresh position
	}
}

// pop removes the oldest published record. It returns false when the ring
// is empty or the head slot is reserved but not yet published.
// Must only be called by the single consumer.
func (rb *ringBuffer) pop() (*record, bool) {
	pos := rb.head.Load()
	slot := &rb.slots[pos&rb.mask]
	if slot.seq.Load() != pos+1 {
		return nil, false
	}
	r := slot.rec
	slot.rec = nil
	slot.seq.Store(pos + rb.mask + 1)
	rb.head.Store(pos + 1)
	return r, true
}

// consumer is the single goroutine that drains the ring into the sinks.
// It wakes on producer notifications and on a flush ticker, and drains
// everything left in the ring before it exits.
type consumer struct {
	buffer        *ringBuffer
	sink          *sinkWriter
	notify        chan struct{}
	ctx           context.Context
	cancel        context.CancelFunc
	ticker        *time.Ticker
	flushInterval time.Duration
	adaptive      bool
	wg            sync.WaitGroup
}

// newConsumer starts the consumer goroutine.
func newConsumer(buffer *ringBuffer, sink *sinkWriter, flushInterval time.Duration, adaptive bool) *consumer {
	ctx, cancel := context.WithCancel(context.Background())

	if flushInterval <= 0 {
		flushInterval = defaultFlushInterval
	}

	c := &consumer{
		buffer:        buffer,
		sink:          sink,
		notify:        make(chan struct{}, 1),
		ctx:           ctx,
		cancel:        cancel,
		ticker:        time.NewTicker(flushInterval),
		flushInterval: flushInterval,
		adaptive:      adaptive,
	}

	c.wg.Add(1)
	go c.run()

	return c
}

// wake nudges the consumer without blocking the producer.
func (c *consumer) wake() {
	select {
	case c.notify <- struct{}{}:
	default:
	}
}

func (c *consumer) run() {
	defer c.ticker.Stop()
	defer c.wg.Done()

	emptyRounds := 0

	for {
		select {
		case <-c.ctx.Done():
			// Final drain before shutdown
			c.flushAll()
			return
		case <-c.notify:
			c.flushAll()
		case <-c.ticker.C:
			itemsProcessed := c.flushAll()
			if c.adaptive {
				c.adjustFlushTiming(itemsProcessed, &emptyRounds)
			}
		}
	}
}

// adjustFlushTiming backs the ticker off while idle and tightens it under load.
func (c *consumer) adjustFlushTiming(itemsProcessed int, emptyRounds *int) {
	if itemsProcessed == 0 {
		*emptyRounds++
		if *emptyRounds >= 10 {
			c.ticker.Reset(5 * c.flushInterval)
			*emptyRounds = 0
		}
		return
	}

	*emptyRounds = 0
	if busy := c.flushInterval / 2; itemsProcessed > 10 && busy > 0 {
		c.ticker.Reset(busy)
	} else {
		c.ticker.Reset(c.flushInterval)
	}
}

// flushAll writes every published record and returns how many it wrote.
func (c *consumer) flushAll() int {
	itemsProcessed := 0
	for {
		r, ok := c.buffer.pop()
		if !ok {
			break
		}
		c.sink.writeRecord(r)
		r.release()
		itemsProcessed++
	}
	return itemsProcessed
}

// stop drains the ring and waits for the goroutine to exit.
// Producers must already be quiesced.
func (c *consumer) stop() {
	c.cancel()
	c.wg.Wait()
}
