// result.go: Result codes and internal error codes
//
// Copyright (c) 2025 AGILira
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package ringlog

import (
	"strconv"

	goerrors "github.com/agilira/go-errors"
)

// Result is the outcome of every public lifecycle and logging call.
// The numeric values are stable so they can be passed through FFI
// boundaries as-is.
type Result int

const (
	FatalError   Result = -1 // unexpected internal fault
	RuntimeError Result = 0  // call made in the wrong lifecycle state or with bad arguments
	Success      Result = 1
	NotValidDir  Result = 2 // log directory missing, not a directory or not writable
	NotOpenFile  Result = 3 // log file could not be opened
	RingFull     Result = 4 // ring buffer saturated, record not admitted
)

// OK reports whether r is Success.
func (r Result) OK() bool { return r == Success }

func (r Result) String() string {
	switch r {
	case FatalError:
		return "FATAL_ERROR"
	case RuntimeError:
		return "RUNTIME_ERROR"
	case Success:
		return "SUCCESS"
	case NotValidDir:
		return "NOT_VALID_DIR"
	case NotOpenFile:
		return "NOT_OPEN_FILE"
	case RingFull:
		return "RING_FULL"
	}
	return "Result(" + strconv.Itoa(int(r)) + ")"
}

// Error codes carried by errors delivered to ErrorCallback.
const (
	ErrCodeInvalidDir goerrors.ErrorCode = "RINGLOG_INVALID_DIR"
	ErrCodeOpenFile   goerrors.ErrorCode = "RINGLOG_OPEN_FILE"
	ErrCodeState      goerrors.ErrorCode = "RINGLOG_STATE"
	ErrCodeRingFull   goerrors.ErrorCode = "RINGLOG_RING_FULL"
	ErrCodeWrite      goerrors.ErrorCode = "RINGLOG_WRITE"
	ErrCodeFormat     goerrors.ErrorCode = "RINGLOG_FORMAT"
	ErrCodeInternal   goerrors.ErrorCode = "RINGLOG_INTERNAL"
)

// Pre-allocated errors for the hot path
var (
	errNotInitialized = goerrors.New(ErrCodeState, "logger is not initialized")
	errAlreadyLive    = goerrors.New(ErrCodeState, "logger is already initialized")
	errAnotherLive    = goerrors.New(ErrCodeState, "another logger instance is live in this process")
	errInvalidLevel   = goerrors.New(ErrCodeState, "invalid log level")
	errRingFull       = goerrors.New(ErrCodeRingFull, "ring buffer is full")
)

// resultOf maps an internal error to the Result returned to callers.
func resultOf(err error) Result {
	switch {
	case err == nil:
		return Success
	case goerrors.HasCode(err, ErrCodeInvalidDir):
		return NotValidDir
	case goerrors.HasCode(err, ErrCodeOpenFile):
		return NotOpenFile
	case goerrors.HasCode(err, ErrCodeRingFull):
		return RingFull
	case goerrors.HasCode(err, ErrCodeState):
		return RuntimeError
	}
	return FatalError
}
