// main.go: ringlog command - drives the logger through its usage scenarios
//
// Copyright (c) 2025 AGILira
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

// Command ringlog exercises the ringlog package end to end.
//
// Usage:
//
//	ringlog <simple|multi|stress|destruct|soak> [flags]
//
// Flags:
//
//	--dir       log directory (default "logs")
//	--local     stamp records in local time
//	--stdout    mirror records to stdout (default true)
//	--format    "default" or "braces" ("<ts> {<LEVEL>} <msg>")
//	--buffer    ring capacity, e.g. 1024 or 4K
//	--threads   producer goroutines for stress (default 1000)
//	--messages  records per producer for stress (default 1)
//	--rate      records per second for soak, 0 = unlimited
//	--duration  soak run time, 0 = until interrupted
//	--config    JSON file watched by soak; each change re-initializes the logger
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	flashflags "github.com/agilira/flash-flags"
	"github.com/agilira/ringlog"
	"github.com/sirupsen/logrus"
)

// options are the parsed command-line flags.
type options struct {
	dir      string
	local    bool
	stdout   bool
	format   string
	buffer   int
	threads  int
	messages int
	rate     int
	duration time.Duration
	config   string
}

// bracesFormatter renders "<ts> {<LEVEL>} <msg>" on both sinks.
var bracesFormatter = ringlog.FormatterFunc(func(ts string, lvl ringlog.Level, msg string) (string, string) {
	line := ts + " {" + lvl.String() + "} " + msg
	return line, line
})

// diag reports command progress on stderr, separate from the records
// being produced.
var diag = newDiagLogger()

func newDiagLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(os.Stderr)
	l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true, TimestampFormat: time.RFC3339})
	return l
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: ringlog <simple|multi|stress|destruct|soak> [flags]")
}

func parseOptions(args []string) (options, error) {
	fs := flashflags.New("ringlog")
	dir := fs.String("dir", "logs", "log directory")
	local := fs.Bool("local", false, "stamp records in local time")
	stdout := fs.Bool("stdout", true, "mirror records to stdout")
	format := fs.String("format", "default", `formatter: "default" or "braces"`)
	buffer := fs.String("buffer", "1024", "ring capacity (accepts K/M suffixes)")
	threads := fs.Int("threads", 1000, "producer goroutines for stress")
	messages := fs.Int("messages", 1, "records per producer for stress")
	rate := fs.Int("rate", 0, "records per second for soak (0 = unlimited)")
	duration := fs.Duration("duration", 0, "soak run time (0 = until interrupted)")
	config := fs.String("config", "", "JSON config file watched by soak")

	if err := fs.Parse(args); err != nil {
		return options{}, err
	}

	size, err := ringlog.ParseSize(*buffer)
	if err != nil {
		return options{}, fmt.Errorf("--buffer: %w", err)
	}
	if *format != "default" && *format != "braces" {
		return options{}, fmt.Errorf("--format: unknown formatter %q", *format)
	}

	return options{
		dir:      *dir,
		local:    *local,
		stdout:   *stdout,
		format:   *format,
		buffer:   int(size),
		threads:  *threads,
		messages: *messages,
		rate:     *rate,
		duration: *duration,
		config:   *config,
	}, nil
}

// loggerConfig builds the logger configuration the flags describe.
func (o options) loggerConfig() ringlog.LoggerConfig {
	cfg := ringlog.LoggerConfig{
		UseLocalTime:  o.local,
		PrintStdout:   o.stdout,
		BufferSize:    o.buffer,
		ErrorCallback: func(op string, err error) {
			diag.WithField("operation", op).WithError(err).Warn("logger fault")
		},
	}
	if o.format == "braces" {
		cfg.Formatter = bracesFormatter
	}
	return cfg
}

// commands maps each subcommand to its scenario.
var commands = map[string]func(l *ringlog.Logger, opts options) error{
	"simple": func(l *ringlog.Logger, _ options) error {
		simpleScenario(l)
		return nil
	},
	"multi": func(l *ringlog.Logger, _ options) error {
		multiScenario(l)
		return nil
	},
	"stress": func(l *ringlog.Logger, opts options) error {
		stressScenario(l, opts.threads, opts.messages)
		return nil
	},
	"destruct": func(l *ringlog.Logger, _ options) error {
		destructScenario(l)
		return nil
	},
	"soak": func(l *ringlog.Logger, opts options) error {
		ctx, stop := signalContext(opts.duration)
		defer stop()
		return soak(ctx, l, opts)
	},
}

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}
	// Unknown subcommands are rejected before a log file is created
	scenario, ok := commands[os.Args[1]]
	if !ok {
		diag.WithField("command", os.Args[1]).Error("unknown command")
		usage()
		os.Exit(2)
	}

	opts, err := parseOptions(os.Args[2:])
	if err != nil {
		diag.WithError(err).Error("invalid flags")
		usage()
		os.Exit(2)
	}

	logger := ringlog.New()
	if res := logger.Init(opts.dir, opts.loggerConfig()); res != ringlog.Success {
		diag.WithField("result", res).Fatal("logger init failed")
	}
	diag.WithField("file", logger.Filename()).Info("logger initialized")

	if err := scenario(logger, opts); err != nil {
		diag.WithField("command", os.Args[1]).WithError(err).Error("scenario failed")
	}

	if logger.Initialized() {
		if res := logger.Destruct(); res != ringlog.Success {
			diag.WithField("result", res).Fatal("logger destruct failed")
		}
	}
	report(logger.Stats())
}

func report(s ringlog.Stats) {
	diag.WithFields(logrus.Fields{
		"enqueued":       s.Enqueued,
		"written":        s.Written,
		"ring_full":      s.RingFull,
		"write_faults":   s.WriteFaults,
		"console_faults": s.ConsoleFaults,
		"bytes":          s.BytesWritten,
	}).Info("logger stats")
}

// logUntilAdmitted retries on RingFull and returns how many retries it took.
func logUntilAdmitted(l *ringlog.Logger, level ringlog.Level, msg string) (retries int, res ringlog.Result) {
	for {
		res = l.Log(level, msg)
		if res != ringlog.RingFull {
			return retries, res
		}
		retries++
		time.Sleep(50 * time.Microsecond)
	}
}

func simpleScenario(l *ringlog.Logger) {
	l.Stream(ringlog.LevelInfo).Add("Hello", "World!").Send()
	l.Stream(ringlog.LevelError).Add("Some error occured").Send()
	l.Stream(ringlog.LevelWarning).Add("Some warning").Send()

	l.Info("info from api")
	l.Error("error from api")
	l.Warn("warning from api")
	l.Log(ringlog.LevelInfo|ringlog.LevelCustom, "several levels at once")
}

// logSomething is the per-producer workload of multi and stress.
func logSomething(l *ringlog.Logger, id, i int) int {
	retries := 0
	for {
		res := l.Stream(ringlog.LevelInfo).Add("Hello from stream, thread", id).Add(", i =", i).Send()
		if res != ringlog.RingFull {
			break
		}
		retries++
		time.Sleep(50 * time.Microsecond)
	}
	r, _ := logUntilAdmitted(l, ringlog.LevelInfo, fmt.Sprintf("Hello from API! thread %d , i = %d", id, i))
	return retries + r
}

func multiScenario(l *ringlog.Logger) {
	var wg sync.WaitGroup
	for id := 1; id <= 2; id++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			logSomething(l, id, -1)
		}(id)
	}
	wg.Wait()
}

func stressScenario(l *ringlog.Logger, threads, messages int) {
	var (
		wg      sync.WaitGroup
		retries atomic.Int64
	)
	start := time.Now()
	for id := 0; id < threads; id++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for i := 0; i < messages; i++ {
				retries.Add(int64(logSomething(l, id, i)))
			}
		}(id)
	}
	wg.Wait()

	diag.WithFields(logrus.Fields{
		"threads":  threads,
		"messages": threads * messages * 2,
		"elapsed":  time.Since(start),
		"retries":  retries.Load(),
	}).Info("stress finished")
}

func destructScenario(l *ringlog.Logger) {
	l.Info("Log before destruct")
	if res := l.Destruct(); res != ringlog.Success {
		diag.WithField("result", res).Error("logger destruct failed")
		return
	}
	res := l.Info("Log after destruct")
	diag.WithField("result", res).Info("log after destruct rejected")
}

// signalContext is cancelled on SIGINT/SIGTERM, or after d when d > 0.
func signalContext(d time.Duration) (context.Context, context.CancelFunc) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	if d <= 0 {
		return ctx, stop
	}
	ctx, cancel := context.WithTimeout(ctx, d)
	return ctx, func() {
		cancel()
		stop()
	}
}
