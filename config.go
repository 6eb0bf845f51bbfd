// config.go: Logger configuration and parsing utilities
//
// Copyright (c) 2025 AGILira
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package ringlog

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"
)

// Defaults applied by Init to unset LoggerConfig fields
const (
	defaultLogsDir       = "logs"
	defaultBufferSize    = 1024
	defaultFlushInterval = 1 * time.Millisecond
	defaultRetryCount    = 3
	defaultRetryDelay    = 10 * time.Millisecond
)

// LoggerConfig holds the options a Logger is initialized with.
// Init takes a copy; changing the value afterwards has no effect on a
// running logger. All fields are optional.
type LoggerConfig struct {
	// UseLocalTime stamps records (and names the log file) in local time.
	// False uses UTC.
	UseLocalTime bool `json:"use_local_time"`

	// PrintStdout mirrors every record to Stdout.
	PrintStdout bool `json:"print_stdout"`

	// Formatter renders records. Nil selects DefaultFormatter.
	Formatter Formatter `json:"-"`

	// BufferSize is the ring capacity in records (default: 1024).
	// Rounded up to a power of two.
	BufferSize int `json:"buffer_size"`

	// FlushInterval is how often the writer polls the ring when it has not
	// been woken by a producer (default: 1ms).
	FlushInterval time.Duration `json:"flush_interval"`

	// AdaptiveFlush lets the writer slow its polling down while idle.
	AdaptiveFlush bool `json:"adaptive_flush"`

	// FileMode is used when creating the log file (default: 0644).
	FileMode os.FileMode `json:"file_mode"`

	// RetryCount bounds retries of directory creation, file opening and
	// short writes (default: 3).
	RetryCount int `json:"retry_count"`

	// RetryDelay is the pause between directory/file retries (default: 10ms).
	RetryDelay time.Duration `json:"retry_delay"`

	// Stdout is the console sink (default: os.Stdout).
	Stdout io.Writer `json:"-"`

	// ErrorCallback receives internal faults: the failing operation and an
	// error carrying one of the ErrCode* codes. It is called from the
	// producer goroutine for init and formatting faults and from the
	// writer goroutine for I/O faults, so it must be safe for concurrent use.
	ErrorCallback func(operation string, err error) `json:"-"`

	// Verbose prints faults to stderr (rate limited) when no ErrorCallback
	// is set.
	Verbose bool `json:"verbose"`
}

// withDefaults returns a copy of c with unset fields filled in.
func (c LoggerConfig) withDefaults() LoggerConfig {
	if c.BufferSize <= 0 {
		c.BufferSize = defaultBufferSize
	}
	if c.FlushInterval <= 0 {
		c.FlushInterval = defaultFlushInterval
	}
	if c.FileMode == 0 {
		c.FileMode = GetDefaultFileMode()
	}
	if c.RetryCount <= 0 {
		c.RetryCount = defaultRetryCount
	}
	if c.RetryDelay <= 0 {
		c.RetryDelay = defaultRetryDelay
	}
	if c.Stdout == nil {
		c.Stdout = os.Stdout
	}
	return c
}

// sizeUnits maps size suffixes to multipliers, longest suffix first.
var sizeUnits = []struct {
	suffix string
	mult   int64
}{
	{"TB", 1 << 40}, {"GB", 1 << 30}, {"MB", 1 << 20}, {"KB", 1 << 10},
	{"T", 1 << 40}, {"G", 1 << 30}, {"M", 1 << 20}, {"K", 1 << 10},
	{"B", 1},
}

// ParseSize converts strings like "4096", "4K" or "1MB" to a count.
// Suffixes are case-insensitive and 1024-based.
func ParseSize(s string) (int64, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	if s == "" {
		return 0, fmt.Errorf("empty size string")
	}
	if v, err := strconv.ParseInt(s, 10, 64); err == nil {
		if v < 0 {
			return 0, fmt.Errorf("negative size %q", s)
		}
		return v, nil
	}

	for _, u := range sizeUnits {
		num, ok := strings.CutSuffix(s, u.suffix)
		if !ok {
			continue
		}
		v, err := strconv.ParseInt(strings.TrimSpace(num), 10, 64)
		if err != nil || v < 0 {
			return 0, fmt.Errorf("invalid size number in %q", s)
		}
		if v > (1<<63-1)/u.mult {
			return 0, fmt.Errorf("size %q too large", s)
		}
		return v * u.mult, nil
	}
	return 0, fmt.Errorf("unknown size suffix in %q (supported: B, K/KB, M/MB, G/GB, T/TB)", s)
}

// ParseDuration accepts Go durations plus a "d" (day) suffix, e.g. "2ms", "1d".
func ParseDuration(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty duration string")
	}
	if d, err := time.ParseDuration(s); err == nil {
		return d, nil
	}
	if num, ok := strings.CutSuffix(strings.ToLower(s), "d"); ok {
		v, err := strconv.ParseInt(num, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid duration number in %q: %v", s, err)
		}
		return time.Duration(v) * 24 * time.Hour, nil
	}
	return 0, fmt.Errorf("invalid duration %q", s)
}

// ValidatePathLength rejects paths longer than the OS allows.
func ValidatePathLength(path string) error {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("invalid path: %v", err)
	}
	limit := 4096
	if runtime.GOOS == "windows" {
		limit = 260
	}
	if len(absPath) > limit {
		return fmt.Errorf("path too long: %d characters (limit: %d)", len(absPath), limit)
	}
	return nil
}

// GetDefaultFileMode returns the mode new log files are created with.
func GetDefaultFileMode() os.FileMode {
	return 0644
}

// RetryFileOperation runs operation until it succeeds or retryCount attempts
// have failed, sleeping retryDelay between attempts. Antivirus scanners,
// network shares and overlay filesystems fail transiently often enough to
// make a short retry worthwhile.
func RetryFileOperation(operation func() error, retryCount int, retryDelay time.Duration) error {
	if retryCount <= 0 {
		retryCount = defaultRetryCount
	}
	if retryDelay <= 0 {
		retryDelay = defaultRetryDelay
	}

	var err error
	for attempt := 1; attempt <= retryCount; attempt++ {
		if err = operation(); err == nil {
			return nil
		}
		if attempt < retryCount {
			time.Sleep(retryDelay)
		}
	}
	return fmt.Errorf("operation failed after %d attempts: %w", retryCount, err)
}
