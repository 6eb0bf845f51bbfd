// Package ringlog provides an asynchronous, process-wide logger with leveled
// messages, pluggable formatting and dual-sink output (a log file plus an
// optional stdout mirror).
//
// Producers never wait for I/O. Each call is stamped and formatted on the
// calling goroutine and pushed into a fixed-capacity lock-free ring; a single
// writer goroutine owns the file and the console and drains the ring. When
// the ring is saturated the call returns RingFull immediately: backpressure
// is explicit and nothing that was admitted is ever dropped silently.
//
// # Quick Start
//
//	logger := ringlog.New()
//	if res := logger.Init("logs", ringlog.LoggerConfig{
//		UseLocalTime: true,
//		PrintStdout:  true,
//	}); res != ringlog.Success {
//		log.Fatalf("logger init failed: %v", res)
//	}
//
//	logger.Info("Hello")
//	logger.Error("Oops")
//
//	if res := logger.Destruct(); res != ringlog.Success {
//		log.Printf("logger destruct failed: %v", res)
//	}
//
// The package-level functions (ringlog.Init, ringlog.Info, ringlog.Destruct,
// ...) operate on a default Logger, for programs that want a single
// process-wide logger without passing a value around.
//
// # Result Codes
//
// Every lifecycle and logging call returns a Result instead of an error so
// the values map one-to-one onto FFI callers:
//
//	FatalError   (-1) unexpected internal fault
//	RuntimeError  (0) wrong lifecycle state or invalid level
//	Success       (1)
//	NotValidDir   (2) directory unusable
//	NotOpenFile   (3) log file cannot be opened
//	RingFull      (4) record not admitted, retry or drop at the caller's choice
//
// Detailed errors, carrying github.com/agilira/go-errors codes (ErrCode*),
// are delivered to LoggerConfig.ErrorCallback.
//
// # Lifecycle
//
// Init opens "<dir>/<timestamp>.log" and starts the writer. Only one Logger
// may be initialized in a process at a time. Destruct stops admission, waits
// for in-flight calls, drains every queued record, then closes the file; a
// second Destruct returns RuntimeError. A destructed Logger may be
// initialized again and gets a new file.
//
// # Levels
//
// Levels are flags, not severities. A record may carry several:
//
//	logger.Log(ringlog.LevelInfo|ringlog.LevelError, "both")
//	// 2026.01.27-16.48.17.105 [INFO|ERROR] both
//
// # Formatting
//
// The default layout is "<timestamp> [<LEVEL>] <message>" with timestamps in
// TimestampLayout (2006.01.02-15.04.05.000), UTC or local time. Any
// Formatter may replace it and return different strings for the console and
// the file:
//
//	cfg.Formatter = ringlog.FormatterFunc(func(ts string, lvl ringlog.Level, msg string) (string, string) {
//		return ts + " {" + lvl.String() + "} " + msg, ts + "/" + lvl.String() + ": " + msg
//	})
//
// Every written line ends with exactly one newline. A formatter that panics
// does not take the caller down: the record falls back to the default layout
// and Stats().FormatterFaults is incremented.
//
// # Integration
//
// Logger implements io.Writer (one record per line), so it plugs into the
// standard library, logrus, zerolog or zap:
//
//	log.SetOutput(logger)
//	logrus.SetOutput(logger.Writer(ringlog.LevelInfo))
//	zl := zerolog.New(logger.Writer(ringlog.LevelCustom))
package ringlog
