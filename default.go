// default.go: Package-level functions backed by a default Logger
//
// Copyright (c) 2025 AGILira
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package ringlog

var std = New()

// Default returns the Logger behind the package-level functions.
func Default() *Logger { return std }

// Init initializes the default logger. See Logger.Init.
func Init(dir string, cfg LoggerConfig) Result { return std.Init(dir, cfg) }

// Log logs to the default logger. See Logger.Log.
func Log(level Level, msg string) Result { return std.Log(level, msg) }

// Logf logs to the default logger with fmt.Sprintf formatting.
func Logf(level Level, format string, args ...any) Result {
	return std.Logf(level, format, args...)
}

// Info logs msg with LevelInfo to the default logger.
func Info(msg string) Result { return std.Log(LevelInfo, msg) }

// Warn logs msg with LevelWarning to the default logger.
func Warn(msg string) Result { return std.Log(LevelWarning, msg) }

// Error logs msg with LevelError to the default logger.
func Error(msg string) Result { return std.Log(LevelError, msg) }

// Custom logs msg with LevelCustom to the default logger.
func Custom(msg string) Result { return std.Log(LevelCustom, msg) }

// Destruct drains and closes the default logger. See Logger.Destruct.
func Destruct() Result { return std.Destruct() }
