// strbuf.go: Growable string buffer and its pool
//
// Copyright (c) 2025 AGILira
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package ringlog

// defaultLineCapacity is the capacity of pooled buffers. Most log lines fit.
const defaultLineCapacity = 256

// StringBuffer is a growable byte buffer used to assemble formatted lines.
// Capacity doubles whenever an append does not fit, so a line is never
// truncated no matter how long the message is.
type StringBuffer struct {
	data []byte
}

// NewStringBuffer returns an empty buffer with the given initial capacity.
func NewStringBuffer(capacity int) *StringBuffer {
	if capacity < 0 {
		capacity = 0
	}
	return &StringBuffer{data: make([]byte, 0, capacity)}
}

// Len returns the number of bytes held.
func (b *StringBuffer) Len() int { return len(b.data) }

// Cap returns the current capacity.
func (b *StringBuffer) Cap() int { return cap(b.data) }

// Bytes returns the held bytes. The slice aliases the buffer and is only
// valid until the next mutation.
func (b *StringBuffer) Bytes() []byte { return b.data }

// String returns a copy of the held bytes as a string.
func (b *StringBuffer) String() string { return string(b.data) }

// Reset empties the buffer, keeping its capacity.
func (b *StringBuffer) Reset() { b.data = b.data[:0] }

// grow makes room for n more bytes, doubling capacity until they fit.
func (b *StringBuffer) grow(n int) {
	need := len(b.data) + n
	if need <= cap(b.data) {
		return
	}
	newCap := cap(b.data)
	if newCap == 0 {
		newCap = 16
	}
	for newCap < need {
		newCap *= 2
	}
	data := make([]byte, len(b.data), newCap)
	copy(data, b.data)
	b.data = data
}

// Append appends p.
func (b *StringBuffer) Append(p []byte) {
	b.grow(len(p))
	b.data = append(b.data, p...)
}

// AppendString appends s.
func (b *StringBuffer) AppendString(s string) {
	b.grow(len(s))
	b.data = append(b.data, s...)
}

// AppendByte appends c.
func (b *StringBuffer) AppendByte(c byte) {
	b.grow(1)
	b.data = append(b.data, c)
}

// EnsureNewline makes the content end with exactly one '\n'.
// An empty buffer stays empty.
func (b *StringBuffer) EnsureNewline() {
	n := len(b.data)
	for n > 0 && b.data[n-1] == '\n' {
		n--
	}
	if n == 0 {
		b.data = b.data[:0]
		return
	}
	b.data = b.data[:n]
	b.AppendByte('\n')
}

// stringBufferPool recycles line buffers through a channel.
// A buffer is only put back once the consumer is completely done with it,
// so reuse can never race with a pending write.
type stringBufferPool struct {
	bufferChan chan *StringBuffer
	maxCap     int
}

func newStringBufferPool(poolSize, bufferCap int) *stringBufferPool {
	pool := &stringBufferPool{
		bufferChan: make(chan *StringBuffer, poolSize),
		maxCap:     bufferCap,
	}
	for i := 0; i < poolSize; i++ {
		pool.bufferChan <- NewStringBuffer(bufferCap)
	}
	return pool
}

// get returns an empty buffer, allocating when the pool is drained.
func (p *stringBufferPool) get() *StringBuffer {
	select {
	case b := <-p.bufferChan:
		return b
	default:
		return NewStringBuffer(p.maxCap)
	}
}

// put returns b to the pool (non-blocking). Buffers that grew past the
// pooled capacity are left to the GC so one huge message does not pin memory.
func (p *stringBufferPool) put(b *StringBuffer) {
	if b == nil || b.Cap() > p.maxCap*4 {
		return
	}
	b.Reset()
	select {
	case p.bufferChan <- b:
	default:
	}
}

var linePool = newStringBufferPool(128, defaultLineCapacity)
