// helpers_test.go: Shared test fixtures
//
// Copyright (c) 2025 AGILira
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package ringlog

import (
	"bufio"
	"bytes"
	"os"
	"regexp"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

// timestampPrefix matches the start of every default-formatted line.
var timestampPrefix = regexp.MustCompile(`^\d{4}\.\d{2}\.\d{2}-\d{2}\.\d{2}\.\d{2}\.\d{3} `)

// readLines returns the lines of path, each still carrying its newline.
func readLines(t *testing.T, path string) []string {
	t.Helper()
	f, err := os.Open(path) // #nosec G304 -- test file
	require.NoError(t, err)
	defer f.Close()

	var lines []string
	r := bufio.NewReader(f)
	for {
		line, err := r.ReadString('\n')
		if line != "" {
			lines = append(lines, line)
		}
		if err != nil {
			break
		}
	}
	return lines
}

// initTestLogger initializes a fresh logger in a temp dir and makes sure it
// is destructed when the test ends, so the process-wide slot is released.
func initTestLogger(t *testing.T, cfg LoggerConfig) *Logger {
	t.Helper()
	l := New()
	if cfg.RetryDelay == 0 {
		cfg.RetryDelay = 1
	}
	require.Equal(t, Success, l.Init(t.TempDir(), cfg))
	t.Cleanup(func() {
		if l.Initialized() {
			l.Destruct()
		}
	})
	return l
}

// syncBuffer is a bytes.Buffer safe for the writer goroutine and the test.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

// gateWriter blocks every Write until released, signalling on entered when
// the first Write starts. Used as console to stall the writer goroutine.
type gateWriter struct {
	entered chan struct{}
	release chan struct{}
	once    sync.Once
}

func newGateWriter() *gateWriter {
	return &gateWriter{
		entered: make(chan struct{}),
		release: make(chan struct{}),
	}
}

func (g *gateWriter) Write(p []byte) (int, error) {
	g.once.Do(func() { close(g.entered) })
	<-g.release
	return len(p), nil
}

func (g *gateWriter) open() { close(g.release) }
