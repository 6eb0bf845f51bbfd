// adapters.go: io.Writer and stream-style front ends
//
// Copyright (c) 2025 AGILira
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package ringlog

import (
	"bytes"
	"fmt"
	"io"
)

// levelWriter turns every line written to it into one record.
type levelWriter struct {
	logger *Logger
	level  Level
}

// Writer returns an io.Writer that logs each line of its input as a record
// with the given level. Trailing newlines are stripped and empty lines are
// skipped, so frameworks that terminate every entry with '\n' map one entry
// to one record.
//
// Example with the standard library and logrus:
//
//	log.SetOutput(logger.Writer(ringlog.LevelInfo))
//	logrus.SetOutput(logger.Writer(ringlog.LevelInfo))
//
// Write returns an error when a line is rejected; lines before it are
// already queued and counted in n.
func (l *Logger) Writer(level Level) io.Writer {
	return &levelWriter{logger: l, level: level}
}

// Write implements io.Writer with LevelInfo, so a Logger can be handed to
// anything that wants an io.Writer.
func (l *Logger) Write(p []byte) (int, error) {
	return l.Writer(LevelInfo).Write(p)
}

func (w *levelWriter) Write(p []byte) (int, error) {
	if !w.level.Valid() {
		return 0, errInvalidLevel
	}
	n := 0
	for len(p) > 0 {
		line := p
		consumed := len(p)
		if i := bytes.IndexByte(p, '\n'); i >= 0 {
			line = p[:i]
			consumed = i + 1
		}
		line = bytes.TrimSuffix(line, []byte{'\r'})

		if len(line) > 0 {
			switch res := w.logger.Log(w.level, string(line)); res {
			case Success:
			case RingFull:
				return n, errRingFull
			default:
				return n, errNotInitialized
			}
		}
		n += consumed
		p = p[consumed:]
	}
	return n, nil
}

// Stream collects values and logs them as one record joined by single
// spaces when Send is called:
//
//	logger.Stream(ringlog.LevelInfo).Add("Hello from stream, thread", id).Add(", i =", i).Send()
type Stream struct {
	logger *Logger
	level  Level
	buf    *StringBuffer
}

// Stream starts a record with the given level.
func (l *Logger) Stream(level Level) *Stream {
	return &Stream{logger: l, level: level, buf: NewStringBuffer(64)}
}

// Add appends each value, formatted with fmt.Sprint, separated by spaces.
func (s *Stream) Add(values ...any) *Stream {
	for _, v := range values {
		if s.buf.Len() > 0 {
			s.buf.AppendByte(' ')
		}
		s.buf.AppendString(fmt.Sprint(v))
	}
	return s
}

// Send logs the collected text. An empty stream logs nothing and returns
// Success.
func (s *Stream) Send() Result {
	if s.buf.Len() == 0 {
		return Success
	}
	res := s.logger.Log(s.level, s.buf.String())
	s.buf.Reset()
	return res
}
