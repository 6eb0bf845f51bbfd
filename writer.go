// writer.go: Sink writer owning the log file and the console
//
// Copyright (c) 2025 AGILira
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package ringlog

import (
	"fmt"
	"io"
	"os"

	goerrors "github.com/agilira/go-errors"
)

// truncater is implemented by *os.File.
type truncater interface {
	Truncate(size int64) error
}

// sinkWriter performs the physical writes. It is only ever used by the
// consumer goroutine, so the file and console need no locking.
type sinkWriter struct {
	out        io.Writer // log file
	console    io.Writer // nil when stdout mirroring is off
	offset     int64     // size of the file made of complete lines only
	retryCount int
	stats      *counters
	report     func(operation string, err error)
}

func newSinkWriter(out io.Writer, offset int64, console io.Writer, retryCount int, stats *counters, report func(string, error)) *sinkWriter {
	if retryCount <= 0 {
		retryCount = defaultRetryCount
	}
	return &sinkWriter{
		out:        out,
		console:    console,
		offset:     offset,
		retryCount: retryCount,
		stats:      stats,
		report:     report,
	}
}

// writeFull writes all of p, retrying short or failed writes for the
// remainder up to attempts times. It returns the bytes written.
func writeFull(w io.Writer, p []byte, attempts int) (int, error) {
	written := 0
	var lastErr error
	for written < len(p) && attempts > 0 {
		n, err := w.Write(p[written:])
		if n < 0 {
			n = 0
		}
		written += n
		if err != nil {
			lastErr = err
			attempts--
			continue
		}
		if n == 0 {
			lastErr = io.ErrShortWrite
			attempts--
		}
	}
	if written < len(p) {
		if lastErr == nil {
			lastErr = io.ErrShortWrite
		}
		return written, lastErr
	}
	return written, nil
}

// writeRecord writes the file line and then, when mirroring, the console
// line. A file line is either written completely or not at all: after a
// failed partial write the file is truncated back to the last complete line
// and the record is dropped from both sinks.
func (s *sinkWriter) writeRecord(r *record) {
	if line := r.file.Bytes(); len(line) > 0 {
		n, err := writeFull(s.out, line, s.retryCount)
		if err != nil {
			s.stats.writeFaults.Add(1)
			if n > 0 {
				s.rollback()
			}
			s.report("file_write", goerrors.Wrap(err, ErrCodeWrite,
				fmt.Sprintf("record dropped after writing %d of %d bytes", n, len(line))))
			return
		}
		s.offset += int64(n)
		s.stats.bytesWritten.Add(uint64(n)) // #nosec G115 -- n is never negative
	}
	s.stats.written.Add(1)

	if s.console == nil || r.console == nil || r.console.Len() == 0 {
		return
	}
	if _, err := writeFull(s.console, r.console.Bytes(), s.retryCount); err != nil {
		s.stats.consoleFaults.Add(1)
		s.report("console_write", goerrors.Wrap(err, ErrCodeWrite, "console write failed"))
	}
}

// rollback removes a partially written line from the end of the file.
func (s *sinkWriter) rollback() {
	t, ok := s.out.(truncater)
	if !ok {
		s.report("file_rollback", goerrors.New(ErrCodeWrite, "partial line left in a sink that cannot be truncated"))
		return
	}
	if err := t.Truncate(s.offset); err != nil {
		s.report("file_rollback", goerrors.Wrap(err, ErrCodeWrite, "failed to truncate partial line"))
	}
}

// close syncs and closes the file. The console is never closed.
func (s *sinkWriter) close() error {
	if f, ok := s.out.(*os.File); ok {
		_ = f.Sync() // Best effort, Close reports the real failure
	}
	if c, ok := s.out.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
