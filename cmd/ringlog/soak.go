// soak.go: Long-running producer with hot-reloaded logger configuration
//
// Copyright (c) 2025 AGILira
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package main

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/agilira/argus"
	"github.com/agilira/ringlog"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

// fileConfig is what the watched config file may set. Fields left out of
// the file keep the value given on the command line.
type fileConfig struct {
	dir string
	cfg ringlog.LoggerConfig
}

// configFromMap overlays the keys of a parsed config file on base.
// Durations and sizes may be given as numbers or as strings ("5ms", "4K").
func configFromMap(m map[string]interface{}, base fileConfig) (fileConfig, error) {
	out := base
	for key, v := range m {
		var err error
		switch key {
		case "dir":
			out.dir, err = asString(key, v)
		case "use_local_time":
			out.cfg.UseLocalTime, err = asBool(key, v)
		case "print_stdout":
			out.cfg.PrintStdout, err = asBool(key, v)
		case "adaptive_flush":
			out.cfg.AdaptiveFlush, err = asBool(key, v)
		case "verbose":
			out.cfg.Verbose, err = asBool(key, v)
		case "buffer_size":
			var n int64
			n, err = asSize(key, v)
			out.cfg.BufferSize = int(n)
		case "retry_count":
			var n int64
			n, err = asSize(key, v)
			out.cfg.RetryCount = int(n)
		case "flush_interval":
			out.cfg.FlushInterval, err = asDuration(key, v)
		case "retry_delay":
			out.cfg.RetryDelay, err = asDuration(key, v)
		case "format":
			var name string
			if name, err = asString(key, v); err == nil {
				switch name {
				case "default":
					out.cfg.Formatter = nil
				case "braces":
					out.cfg.Formatter = bracesFormatter
				default:
					err = fmt.Errorf("%s: unknown formatter %q", key, name)
				}
			}
		default:
			// Unknown keys are ignored so one file can carry other settings
		}
		if err != nil {
			return base, err
		}
	}
	return out, nil
}

func asString(key string, v interface{}) (string, error) {
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("%s: expected string, got %T", key, v)
	}
	return s, nil
}

func asBool(key string, v interface{}) (bool, error) {
	b, ok := v.(bool)
	if !ok {
		return false, fmt.Errorf("%s: expected bool, got %T", key, v)
	}
	return b, nil
}

func asSize(key string, v interface{}) (int64, error) {
	switch t := v.(type) {
	case float64:
		if t < 0 || t != float64(int64(t)) {
			return 0, fmt.Errorf("%s: expected a non-negative integer, got %v", key, t)
		}
		return int64(t), nil
	case int:
		return int64(t), nil
	case int64:
		return t, nil
	case string:
		n, err := ringlog.ParseSize(t)
		if err != nil {
			return 0, fmt.Errorf("%s: %w", key, err)
		}
		return n, nil
	}
	return 0, fmt.Errorf("%s: expected number or size string, got %T", key, v)
}

// asDuration reads strings with ParseDuration and bare numbers as milliseconds.
func asDuration(key string, v interface{}) (time.Duration, error) {
	switch t := v.(type) {
	case float64:
		return time.Duration(t * float64(time.Millisecond)), nil
	case int:
		return time.Duration(t) * time.Millisecond, nil
	case int64:
		return time.Duration(t) * time.Millisecond, nil
	case string:
		d, err := ringlog.ParseDuration(t)
		if err != nil {
			return 0, fmt.Errorf("%s: %w", key, err)
		}
		return d, nil
	}
	return 0, fmt.Errorf("%s: expected duration, got %T", key, v)
}

// reloader re-initializes the logger when the watched file changes.
// Configs are immutable once applied: a change destructs the running
// logger and starts a new lifetime with a new file.
type reloader struct {
	mu      sync.Mutex
	logger  *ringlog.Logger
	current fileConfig
}

func (r *reloader) apply(m map[string]interface{}) {
	r.mu.Lock()
	defer r.mu.Unlock()

	next, err := configFromMap(m, r.current)
	if err != nil {
		diag.WithError(err).Warn("config rejected, keeping the running logger")
		return
	}

	before := r.logger.Stats()
	if r.logger.Initialized() {
		if res := r.logger.Destruct(); res != ringlog.Success {
			diag.WithField("result", res).Warn("destruct before reload failed")
		}
	}
	if res := r.logger.Init(next.dir, next.cfg); res != ringlog.Success {
		diag.WithField("result", res).Error("reload failed, restoring previous config")
		if res := r.logger.Init(r.current.dir, r.current.cfg); res != ringlog.Success {
			diag.WithField("result", res).Error("logger could not be restored")
		}
		return
	}
	r.current = next
	diag.WithFields(logrus.Fields{
		"file":     r.logger.Filename(),
		"previous": before.Written,
	}).Info("logger reloaded")
}

// soak produces records until ctx is done, optionally paced by opts.rate.
// With opts.config set, the file is watched and every change reloads the
// logger while producers keep running; records offered during the switch
// are rejected with RUNTIME_ERROR and counted.
func soak(ctx context.Context, l *ringlog.Logger, opts options) error {
	r := &reloader{logger: l, current: fileConfig{dir: opts.dir, cfg: opts.loggerConfig()}}

	if opts.config != "" {
		watcher, err := argus.UniversalConfigWatcher(opts.config, r.apply)
		if err != nil {
			return fmt.Errorf("watch %s: %w", opts.config, err)
		}
		defer watcher.Stop()
		diag.WithField("config", opts.config).Info("watching config")
	}

	limit := rate.Inf
	if opts.rate > 0 {
		limit = rate.Limit(opts.rate)
	}
	limiter := rate.NewLimiter(limit, 1)

	var produced, rejected, full uint64
	for seq := 0; ; seq++ {
		if err := limiter.Wait(ctx); err != nil {
			break
		}
		switch l.Infof("soak record %d", seq) {
		case ringlog.Success:
			produced++
		case ringlog.RingFull:
			full++
		default:
			rejected++
		}
	}

	diag.WithFields(logrus.Fields{
		"produced":  produced,
		"ring_full": full,
		"rejected":  rejected,
	}).Info("soak finished")
	return nil
}
