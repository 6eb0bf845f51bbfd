// ringlog_bench_test.go: Benchmarks
//
// Copyright (c) 2025 AGILira
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package ringlog

import (
	"io"
	"testing"
	"time"

	"github.com/agilira/go-timecache"
	"github.com/stretchr/testify/require"
)

// initBenchLogger starts a logger that retries on RingFull so the
// benchmarks measure admitted records only.
func initBenchLogger(b *testing.B, cfg LoggerConfig) *Logger {
	b.Helper()
	l := New()
	require.Equal(b, Success, l.Init(b.TempDir(), cfg))
	b.Cleanup(func() { l.Destruct() })
	return l
}

func logUntilAdmitted(l *Logger, msg string) {
	for l.Info(msg) == RingFull {
		time.Sleep(time.Microsecond)
	}
}

// BenchmarkLog measures a single producer with the default formatter.
func BenchmarkLog(b *testing.B) {
	l := initBenchLogger(b, LoggerConfig{BufferSize: 8192})
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		logUntilAdmitted(l, "Benchmark message for the ring logger")
	}
}

// BenchmarkLogParallel measures contention between producers on the ring.
func BenchmarkLogParallel(b *testing.B) {
	l := initBenchLogger(b, LoggerConfig{BufferSize: 8192})
	b.ReportAllocs()
	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			logUntilAdmitted(l, "Benchmark message under contention")
		}
	})
}

// BenchmarkLogWithConsole adds the console mirror (to io.Discard).
func BenchmarkLogWithConsole(b *testing.B) {
	l := initBenchLogger(b, LoggerConfig{BufferSize: 8192, PrintStdout: true, Stdout: io.Discard})
	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			logUntilAdmitted(l, "Benchmark message mirrored to the console")
		}
	})
}

// BenchmarkRingPushPop measures the bare ring without formatting or I/O.
func BenchmarkRingPushPop(b *testing.B) {
	rb := newRingBuffer(1024)
	r := &record{level: LevelInfo, msg: "x"}
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		rb.push(r)
		rb.pop()
	}
}

// BenchmarkFormatRecord compares the nil fast path with DefaultFormatter.
func BenchmarkFormatRecord(b *testing.B) {
	ts := formatTimestamp(time.Now(), false)
	for _, bc := range []struct {
		name string
		f    Formatter
	}{
		{"FastPath", nil},
		{"DefaultFormatter", DefaultFormatter{}},
	} {
		b.Run(bc.name, func(b *testing.B) {
			file := NewStringBuffer(256)
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				file.Reset()
				_ = formatRecord(bc.f, ts, LevelWarning, "formatted benchmark message", nil, file)
			}
		})
	}
}

// BenchmarkTimestamp compares the cached clock used for stamping with time.Now.
func BenchmarkTimestamp(b *testing.B) {
	b.Run("TimeNow", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			_ = formatTimestamp(time.Now(), false)
		}
	})
	b.Run("TimeCache", func(b *testing.B) {
		cache := timecache.NewWithResolution(time.Millisecond)
		defer cache.Stop()
		for i := 0; i < b.N; i++ {
			_ = formatTimestamp(cache.CachedTime(), false)
		}
	})
}
