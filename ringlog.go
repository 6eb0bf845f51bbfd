// ringlog.go: Public API - asynchronous ring-buffered logger
//
// Copyright (c) 2025 AGILira
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package ringlog

import (
	"fmt"
	"io"
	"os"
	"sync"
	"sync/atomic"
	"time"

	goerrors "github.com/agilira/go-errors"
	"github.com/agilira/go-timecache"
	"golang.org/x/time/rate"
)

// Lifecycle states
const (
	stateUninitialized int32 = iota
	stateInitialized
	stateDestructed
)

// live is the logger currently holding the process-wide slot. Only one
// Logger may be initialized at a time; Init claims the slot, Destruct
// releases it.
var live atomic.Pointer[Logger]

// counters are the per-lifetime statistics shared with the writer.
type counters struct {
	enqueued      atomic.Uint64
	written       atomic.Uint64
	ringFull      atomic.Uint64
	writeFaults   atomic.Uint64
	consoleFaults atomic.Uint64
	formatFaults  atomic.Uint64
	bytesWritten  atomic.Uint64
}

// lifetime is what Stats and Filename read. It is published atomically so
// both stay lock-free and may be called from an ErrorCallback at any time,
// including while Init or Destruct is running.
type lifetime struct {
	filename string
	stats    *counters
	buffer   *ringBuffer
}

// Logger is an asynchronous logger writing one timestamped file per lifetime
// and optionally mirroring to stdout.
//
// Producers format on their own goroutine and push the record into a
// fixed-size lock-free ring; a single writer goroutine owns the file and the
// console and drains the ring. Log calls never wait for I/O and never block
// on a full ring: they return RingFull instead.
//
// Basic usage:
//
//	logger := ringlog.New()
//	if res := logger.Init("logs", ringlog.LoggerConfig{PrintStdout: true}); res != ringlog.Success {
//		log.Fatalf("logger init failed: %v", res)
//	}
//	logger.Info("Hello")
//	logger.Error("Oops")
//	logger.Destruct()
type Logger struct {
	state atomic.Int32

	// gate admits producers with TryRLock. Init and Destruct hold it
	// exclusively, so they wait for in-flight producers while new ones
	// are turned away instead of blocked.
	gate sync.RWMutex

	cfg       LoggerConfig
	life      atomic.Pointer[lifetime]
	buffer    *ringBuffer
	consumer  *consumer
	sink      *sinkWriter
	timeCache *timecache.TimeCache
	limiter   *rate.Limiter
	stats     *counters

	// now names the log file; tests replace it
	now func() time.Time
}

// New returns an uninitialized Logger.
func New() *Logger {
	return &Logger{
		stats: new(counters),
		now:   time.Now,
	}
}

// Init validates dir, creates a new log file named after the current time
// inside it and starts the writer. An empty dir means "logs".
// A missing directory is created. An existing file is never reused: a
// lifetime started in the same millisecond as an earlier one gets a
// "-1", "-2"... suffix.
//
// Returns:
//   - Success
//   - NotValidDir: dir is not a directory, cannot be created or is not writable
//   - NotOpenFile: the log file cannot be opened
//   - RuntimeError: this logger (or another one in the process) is initialized
//   - FatalError: unexpected internal fault
func (l *Logger) Init(dir string, cfg LoggerConfig) (res Result) {
	l.gate.Lock()
	defer l.gate.Unlock()

	if l.state.Load() == stateInitialized {
		l.reportError("init", errAlreadyLive)
		return RuntimeError
	}
	if !live.CompareAndSwap(nil, l) {
		l.cfg = cfg
		l.reportError("init", errAnotherLive)
		return RuntimeError
	}

	defer func() {
		if r := recover(); r != nil {
			live.CompareAndSwap(l, nil)
			l.reportError("init", goerrors.New(ErrCodeInternal, fmt.Sprintf("panic during init: %v", r)))
			res = FatalError
		}
	}()

	if err := l.start(dir, cfg); err != nil {
		live.CompareAndSwap(l, nil)
		l.reportError("init", err)
		return resultOf(err)
	}

	l.state.Store(stateInitialized)
	return Success
}

// start builds every component of a new lifetime. Nothing is published on
// the Logger until all steps have succeeded.
func (l *Logger) start(dir string, cfg LoggerConfig) error {
	cfg = cfg.withDefaults()
	if dir == "" {
		dir = defaultLogsDir
	}
	l.cfg = cfg
	l.limiter = rate.NewLimiter(rate.Every(time.Second), 5)

	if err := prepareLogDir(dir, cfg.RetryCount, cfg.RetryDelay); err != nil {
		return err
	}

	file, filename, err := createLogFile(dir, l.now(), cfg.UseLocalTime, cfg.FileMode, cfg.RetryCount, cfg.RetryDelay)
	if err != nil {
		return err
	}

	var console io.Writer
	if cfg.PrintStdout {
		console = cfg.Stdout
	}

	stats := new(counters)
	buffer := newRingBuffer(uint64(cfg.BufferSize)) // #nosec G115 -- BufferSize is positive after withDefaults
	sink := newSinkWriter(file, 0, console, cfg.RetryCount, stats, l.reportError)

	l.life.Store(&lifetime{filename: filename, stats: stats, buffer: buffer})
	l.stats = stats
	l.buffer = buffer
	l.sink = sink
	l.timeCache = timecache.NewWithResolution(time.Millisecond)
	l.consumer = newConsumer(buffer, sink, cfg.FlushInterval, cfg.AdaptiveFlush)
	return nil
}

// Log formats msg on the calling goroutine and queues it for the writer.
//
// Returns:
//   - Success: the record is admitted and will be written
//   - RingFull: the ring is saturated, the record was not admitted
//   - RuntimeError: the logger is not initialized, is shutting down, or
//     level is empty or carries unknown flags
func (l *Logger) Log(level Level, msg string) Result {
	if !l.gate.TryRLock() {
		return RuntimeError
	}
	defer l.gate.RUnlock()

	if l.state.Load() != stateInitialized {
		return RuntimeError
	}
	if !level.Valid() {
		l.reportError("log", errInvalidLevel)
		return RuntimeError
	}
	return l.enqueue(level, msg)
}

// enqueue stamps, formats and pushes one record. Caller holds the gate.
func (l *Logger) enqueue(level Level, msg string) Result {
	now := l.timeCache.CachedTime()
	timestamp := formatTimestamp(now, l.cfg.UseLocalTime)

	r := &record{
		time:  now,
		level: level,
		msg:   msg,
		file:  linePool.get(),
	}
	if l.cfg.PrintStdout {
		r.console = linePool.get()
	}

	if err := formatRecord(l.cfg.Formatter, timestamp, level, msg, r.console, r.file); err != nil {
		l.stats.formatFaults.Add(1)
		l.reportError("format", err)
	}

	if !l.buffer.push(r) {
		r.release()
		l.stats.ringFull.Add(1)
		return RingFull
	}

	l.stats.enqueued.Add(1)
	l.consumer.wake()
	return Success
}

// Logf is Log with fmt.Sprintf formatting.
func (l *Logger) Logf(level Level, format string, args ...any) Result {
	if l.state.Load() != stateInitialized {
		return RuntimeError
	}
	return l.Log(level, fmt.Sprintf(format, args...))
}

// Info logs msg with LevelInfo.
func (l *Logger) Info(msg string) Result { return l.Log(LevelInfo, msg) }

// Warn logs msg with LevelWarning.
func (l *Logger) Warn(msg string) Result { return l.Log(LevelWarning, msg) }

// Error logs msg with LevelError.
func (l *Logger) Error(msg string) Result { return l.Log(LevelError, msg) }

// Custom logs msg with LevelCustom.
func (l *Logger) Custom(msg string) Result { return l.Log(LevelCustom, msg) }

// Infof logs with LevelInfo using fmt.Sprintf formatting.
func (l *Logger) Infof(format string, args ...any) Result {
	return l.Logf(LevelInfo, format, args...)
}

// Warnf logs with LevelWarning using fmt.Sprintf formatting.
func (l *Logger) Warnf(format string, args ...any) Result {
	return l.Logf(LevelWarning, format, args...)
}

// Errorf logs with LevelError using fmt.Sprintf formatting.
func (l *Logger) Errorf(format string, args ...any) Result {
	return l.Logf(LevelError, format, args...)
}

// Customf logs with LevelCustom using fmt.Sprintf formatting.
func (l *Logger) Customf(format string, args ...any) Result {
	return l.Logf(LevelCustom, format, args...)
}

// Destruct stops admission, waits for in-flight Log calls, drains every
// queued record to the sinks, stops the writer and closes the log file.
// The logger can be initialized again afterwards.
//
// Returns RuntimeError when the logger is not initialized, which makes a
// second Destruct an error rather than a double close. Returns FatalError
// when closing the file fails; the logger is destructed regardless.
func (l *Logger) Destruct() Result {
	l.gate.Lock()
	defer l.gate.Unlock()

	if l.state.Load() != stateInitialized {
		return RuntimeError
	}

	l.consumer.stop()
	l.timeCache.Stop()
	err := l.sink.close()

	l.state.Store(stateDestructed)
	live.CompareAndSwap(l, nil)

	if err != nil {
		l.reportError("file_close", goerrors.Wrap(err, ErrCodeInternal, "failed to close log file"))
		return FatalError
	}
	return Success
}

// Initialized reports whether the logger accepts records.
func (l *Logger) Initialized() bool {
	return l.state.Load() == stateInitialized
}

// Filename returns the path of the current (or last) log file.
func (l *Logger) Filename() string {
	if lt := l.life.Load(); lt != nil {
		return lt.filename
	}
	return ""
}

// Stats holds counters of the current (or last) logger lifetime.
type Stats struct {
	Enqueued        uint64 `json:"enqueued"`         // records admitted into the ring
	Written         uint64 `json:"written"`          // records the writer completed
	RingFull        uint64 `json:"ring_full"`        // Log calls rejected with RingFull
	WriteFaults     uint64 `json:"write_faults"`     // records dropped by failed file writes
	ConsoleFaults   uint64 `json:"console_faults"`   // failed console writes
	FormatterFaults uint64 `json:"formatter_faults"` // formatter panics recovered
	BytesWritten    uint64 `json:"bytes_written"`    // bytes appended to the file
	BufferSize      uint64 `json:"buffer_size"`      // ring capacity
	BufferFill      uint64 `json:"buffer_fill"`      // records queued right now
}

// Stats returns a snapshot of the logger counters. It never blocks, so it
// is safe to call concurrently and from inside an ErrorCallback.
func (l *Logger) Stats() Stats {
	lt := l.life.Load()
	if lt == nil {
		return Stats{}
	}
	return Stats{
		Enqueued:        lt.stats.enqueued.Load(),
		Written:         lt.stats.written.Load(),
		RingFull:        lt.stats.ringFull.Load(),
		WriteFaults:     lt.stats.writeFaults.Load(),
		ConsoleFaults:   lt.stats.consoleFaults.Load(),
		FormatterFaults: lt.stats.formatFaults.Load(),
		BytesWritten:    lt.stats.bytesWritten.Load(),
		BufferSize:      lt.buffer.capacity(),
		BufferFill:      lt.buffer.length(),
	}
}

// reportError hands a fault to ErrorCallback, or prints it to stderr when
// Verbose is set. Stderr output is rate limited so a failing disk cannot
// flood it.
func (l *Logger) reportError(operation string, err error) {
	if cb := l.cfg.ErrorCallback; cb != nil {
		cb(operation, err)
		return
	}
	if l.cfg.Verbose && l.limiter != nil && l.limiter.Allow() {
		fmt.Fprintf(os.Stderr, "ringlog: %s: %v\n", operation, err)
	}
}
