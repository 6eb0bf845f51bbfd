// file.go: Log directory validation and log file creation
//
// Copyright (c) 2025 AGILira
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package ringlog

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"time"

	goerrors "github.com/agilira/go-errors"
)

// prepareLogDir makes sure dir is an existing, writable directory,
// creating it (and its parents) when missing.
func prepareLogDir(dir string, retryCount int, retryDelay time.Duration) error {
	info, err := os.Stat(dir)
	switch {
	case err == nil && !info.IsDir():
		return goerrors.New(ErrCodeInvalidDir, fmt.Sprintf("log path %q is not a directory", dir))
	case err == nil:
		// exists, check writability below
	case os.IsNotExist(err):
		err = RetryFileOperation(func() error {
			return os.MkdirAll(dir, 0750)
		}, retryCount, retryDelay)
		if err != nil {
			return goerrors.Wrap(err, ErrCodeInvalidDir,
				fmt.Sprintf("failed to create log directory %q (check permissions and disk space)", dir))
		}
	default:
		return goerrors.Wrap(err, ErrCodeInvalidDir, fmt.Sprintf("cannot stat log directory %q", dir))
	}

	// A directory can exist and still refuse new files (read-only mount,
	// missing write bit), which is a configuration error, not an open error.
	probe, err := os.CreateTemp(dir, ".ringlog-probe-*")
	if err != nil {
		return goerrors.Wrap(err, ErrCodeInvalidDir, fmt.Sprintf("log directory %q is not writable", dir))
	}
	name := probe.Name()
	_ = probe.Close()
	_ = os.Remove(name)
	return nil
}

// maxLogFileNames bounds how many names createLogFile tries for one
// timestamp before giving up.
const maxLogFileNames = 16

// logFileName names the file of one logger lifetime after its start time.
// n > 0 disambiguates lifetimes started within the same millisecond.
func logFileName(t time.Time, local bool, n int) string {
	if n == 0 {
		return formatTimestamp(t, local) + ".log"
	}
	return formatTimestamp(t, local) + "-" + strconv.Itoa(n) + ".log"
}

// createLogFile creates a new, empty log file in dir named after start and
// returns it with its path. An existing file is never reopened: every
// lifetime gets its own file, falling back to "<ts>-1.log", "<ts>-2.log"...
// when the timestamped name is already taken.
func createLogFile(dir string, start time.Time, local bool, mode os.FileMode, retryCount int, retryDelay time.Duration) (*os.File, string, error) {
	var (
		file *os.File
		path string
	)
	err := RetryFileOperation(func() error {
		for n := 0; n < maxLogFileNames; n++ {
			candidate := filepath.Join(dir, logFileName(start, local, n))
			if err := ValidatePathLength(candidate); err != nil {
				return err
			}
			f, err := os.OpenFile(filepath.Clean(candidate), os.O_CREATE|os.O_EXCL|os.O_WRONLY|os.O_APPEND, mode) // #nosec G304 -- path is built from the configured directory and a timestamp
			if err == nil {
				file, path = f, candidate
				return nil
			}
			if !errors.Is(err, fs.ErrExist) {
				return err
			}
		}
		return fmt.Errorf("all %d names for %s are taken", maxLogFileNames, logFileName(start, local, 0))
	}, retryCount, retryDelay)
	if err != nil {
		return nil, "", goerrors.Wrap(err, ErrCodeOpenFile, fmt.Sprintf("failed to create log file in %q", dir))
	}
	return file, path, nil
}
