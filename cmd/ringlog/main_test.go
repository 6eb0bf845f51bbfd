// main_test.go: ringlog command tests
//
// Copyright (c) 2025 AGILira
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package main

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/agilira/ringlog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseOptions_Defaults(t *testing.T) {
	o, err := parseOptions(nil)
	require.NoError(t, err)
	assert.Equal(t, "logs", o.dir)
	assert.True(t, o.stdout)
	assert.Equal(t, "default", o.format)
	assert.Equal(t, 1024, o.buffer)
	assert.Equal(t, 1000, o.threads)
	assert.Equal(t, 1, o.messages)
}

func TestParseOptions_Values(t *testing.T) {
	o, err := parseOptions([]string{"--dir=/tmp/x", "--buffer=4K", "--format=braces", "--threads=8", "--duration=2s"})
	require.NoError(t, err)
	assert.Equal(t, "/tmp/x", o.dir)
	assert.Equal(t, 4096, o.buffer)
	assert.Equal(t, 8, o.threads)
	assert.Equal(t, 2*time.Second, o.duration)

	cfg := o.loggerConfig()
	assert.NotNil(t, cfg.Formatter)
	assert.NotNil(t, cfg.ErrorCallback)
	assert.Equal(t, 4096, cfg.BufferSize)
}

func TestParseOptions_Invalid(t *testing.T) {
	_, err := parseOptions([]string{"--buffer=lots"})
	assert.Error(t, err)
	_, err = parseOptions([]string{"--format=xml"})
	assert.Error(t, err)
}

func TestCommands_KnownSubcommands(t *testing.T) {
	for _, name := range []string{"simple", "multi", "stress", "destruct", "soak"} {
		assert.Contains(t, commands, name)
	}
	assert.NotContains(t, commands, "")
	assert.NotContains(t, commands, "rotate")
}

func TestCommands_RunScenario(t *testing.T) {
	l := initLogger(t)
	require.NoError(t, commands["multi"](l, options{}))
	require.Equal(t, ringlog.Success, l.Destruct())
	assert.Len(t, readLog(t, l.Filename()), 4)
}

func TestBracesFormatter(t *testing.T) {
	c, f := bracesFormatter.Format("ts", ringlog.LevelError, "msg")
	assert.Equal(t, "ts {ERROR} msg", c)
	assert.Equal(t, c, f)
}

func TestConfigFromMap(t *testing.T) {
	base := fileConfig{dir: "logs", cfg: ringlog.LoggerConfig{BufferSize: 64, PrintStdout: true}}

	got, err := configFromMap(map[string]interface{}{
		"dir":            "/var/log/app",
		"use_local_time": true,
		"print_stdout":   false,
		"buffer_size":    "4K",
		"retry_count":    float64(5),
		"flush_interval": "5ms",
		"retry_delay":    float64(20),
		"format":         "braces",
		"unrelated":      []interface{}{1, 2},
	}, base)
	require.NoError(t, err)

	assert.Equal(t, "/var/log/app", got.dir)
	assert.True(t, got.cfg.UseLocalTime)
	assert.False(t, got.cfg.PrintStdout)
	assert.Equal(t, 4096, got.cfg.BufferSize)
	assert.Equal(t, 5, got.cfg.RetryCount)
	assert.Equal(t, 5*time.Millisecond, got.cfg.FlushInterval)
	assert.Equal(t, 20*time.Millisecond, got.cfg.RetryDelay)
	assert.NotNil(t, got.cfg.Formatter)

	// Base is untouched
	assert.Equal(t, 64, base.cfg.BufferSize)
}

func TestConfigFromMap_KeepsUnsetFields(t *testing.T) {
	base := fileConfig{dir: "logs", cfg: ringlog.LoggerConfig{BufferSize: 64, Formatter: bracesFormatter}}
	got, err := configFromMap(map[string]interface{}{"verbose": true}, base)
	require.NoError(t, err)
	assert.Equal(t, "logs", got.dir)
	assert.Equal(t, 64, got.cfg.BufferSize)
	assert.NotNil(t, got.cfg.Formatter)
	assert.True(t, got.cfg.Verbose)
}

func TestConfigFromMap_Errors(t *testing.T) {
	base := fileConfig{dir: "logs"}
	bad := []map[string]interface{}{
		{"dir": 3.0},
		{"print_stdout": "yes"},
		{"buffer_size": -1.0},
		{"buffer_size": 1.5},
		{"buffer_size": "huge"},
		{"flush_interval": "later"},
		{"flush_interval": true},
		{"format": "xml"},
	}
	for _, m := range bad {
		got, err := configFromMap(m, base)
		assert.Error(t, err, "%v", m)
		assert.Equal(t, base, got)
	}
}

// initLogger starts a file-only logger in a temp dir.
func initLogger(t *testing.T) *ringlog.Logger {
	t.Helper()
	l := ringlog.New()
	require.Equal(t, ringlog.Success, l.Init(t.TempDir(), ringlog.LoggerConfig{BufferSize: 64, RetryDelay: time.Millisecond}))
	t.Cleanup(func() {
		if l.Initialized() {
			l.Destruct()
		}
	})
	return l
}

func readLog(t *testing.T, path string) []string {
	t.Helper()
	data, err := os.ReadFile(path) // #nosec G304 -- test file
	require.NoError(t, err)
	return strings.Split(strings.TrimSuffix(string(data), "\n"), "\n")
}

func TestStressScenario_WritesEveryRecord(t *testing.T) {
	l := initLogger(t)
	stressScenario(l, 20, 5)
	require.Equal(t, ringlog.Success, l.Destruct())

	lines := readLog(t, l.Filename())
	assert.Len(t, lines, 20*5*2)
	for _, line := range lines {
		assert.Contains(t, line, " [INFO] Hello from ")
	}
}

func TestSimpleScenario(t *testing.T) {
	l := initLogger(t)
	simpleScenario(l)
	require.Equal(t, ringlog.Success, l.Destruct())

	lines := readLog(t, l.Filename())
	require.Len(t, lines, 7)
	assert.True(t, strings.HasSuffix(lines[0], "[INFO] Hello World!"))
	assert.True(t, strings.HasSuffix(lines[6], "[INFO|CUSTOM] several levels at once"))
}

func TestDestructScenario(t *testing.T) {
	l := initLogger(t)
	destructScenario(l)
	assert.False(t, l.Initialized())

	lines := readLog(t, l.Filename())
	require.Len(t, lines, 1)
	assert.True(t, strings.HasSuffix(lines[0], "Log before destruct"))
}

func TestSoak_StopsWithContext(t *testing.T) {
	l := initLogger(t)
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	opts := options{dir: t.TempDir(), rate: 1000, buffer: 64}
	require.NoError(t, soak(ctx, l, opts))
	require.Equal(t, ringlog.Success, l.Destruct())
	assert.NotZero(t, l.Stats().Written)
}

func TestReloader_AppliesNewConfig(t *testing.T) {
	l := initLogger(t)
	first := l.Filename()
	newDir := filepath.Join(t.TempDir(), "reloaded")

	r := &reloader{logger: l, current: fileConfig{dir: filepath.Dir(first), cfg: ringlog.LoggerConfig{}}}
	r.apply(map[string]interface{}{"dir": newDir, "buffer_size": 16.0})

	require.True(t, l.Initialized())
	assert.Equal(t, newDir, filepath.Dir(l.Filename()))
	assert.Equal(t, uint64(16), l.Stats().BufferSize)
	assert.Equal(t, newDir, r.current.dir)
}

func TestReloader_RejectsInvalidConfig(t *testing.T) {
	l := initLogger(t)
	first := l.Filename()

	r := &reloader{logger: l, current: fileConfig{dir: filepath.Dir(first)}}
	r.apply(map[string]interface{}{"format": "xml"})

	assert.True(t, l.Initialized())
	assert.Equal(t, first, l.Filename(), "an invalid file leaves the running logger alone")
}
