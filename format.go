// format.go: Record formatting
//
// Copyright (c) 2025 AGILira
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package ringlog

import (
	"fmt"
	"time"

	goerrors "github.com/agilira/go-errors"
)

// TimestampLayout is the layout of record timestamps and log file names,
// e.g. 2026.01.27-16.48.17.105. Downstream parsers rely on every line of a
// default-formatted file starting with it.
const TimestampLayout = "2006.01.02-15.04.05.000"

// Formatter turns a record into the line printed on the console and the
// line written to the file. Either string may be empty to skip that sink.
// Returned strings are used verbatim except that each is made to end with
// exactly one newline.
type Formatter interface {
	Format(timestamp string, level Level, msg string) (console, file string)
}

// FormatterFunc adapts an ordinary function to the Formatter interface.
//
// Example:
//
//	cfg.Formatter = ringlog.FormatterFunc(func(ts string, lvl ringlog.Level, msg string) (string, string) {
//		line := ts + "/" + lvl.String() + ": " + msg
//		return line, line
//	})
type FormatterFunc func(timestamp string, level Level, msg string) (console, file string)

// Format calls f.
func (f FormatterFunc) Format(timestamp string, level Level, msg string) (string, string) {
	return f(timestamp, level, msg)
}

// DefaultFormatter renders "<timestamp> [<LEVEL>] <msg>" for both sinks.
// Line breaks inside msg are escaped so a record always occupies one line.
type DefaultFormatter struct{}

// Format implements Formatter.
func (DefaultFormatter) Format(timestamp string, level Level, msg string) (string, string) {
	b := linePool.get()
	appendDefaultLine(b, timestamp, level, msg)
	line := b.String()
	linePool.put(b)
	return line, line
}

// appendDefaultLine writes the default layout into b without a trailing newline.
func appendDefaultLine(b *StringBuffer, timestamp string, level Level, msg string) {
	b.AppendString(timestamp)
	b.AppendString(" [")
	b.AppendString(level.String())
	b.AppendString("] ")
	for i := 0; i < len(msg); i++ {
		switch c := msg[i]; c {
		case '\n':
			b.AppendString(`\n`)
		case '\r':
			b.AppendString(`\r`)
		default:
			b.AppendByte(c)
		}
	}
}

// formatTimestamp renders t in UTC or local time using TimestampLayout.
func formatTimestamp(t time.Time, local bool) string {
	if local {
		t = t.Local()
	} else {
		t = t.UTC()
	}
	return t.Format(TimestampLayout)
}

// formatRecord fills file (and console when non-nil) for one record.
// A nil formatter uses the default layout directly, skipping the
// intermediate strings. A panicking formatter is recovered and the record
// degrades to the default layout; the returned error describes the fault.
func formatRecord(f Formatter, timestamp string, level Level, msg string, console, file *StringBuffer) (fault error) {
	if f == nil {
		appendDefaultLine(file, timestamp, level, msg)
		file.EnsureNewline()
		if console != nil {
			console.Append(file.Bytes())
		}
		return nil
	}

	defer func() {
		if r := recover(); r != nil {
			file.Reset()
			appendDefaultLine(file, timestamp, level, msg)
			file.EnsureNewline()
			if console != nil {
				console.Reset()
				console.Append(file.Bytes())
			}
			fault = goerrors.New(ErrCodeFormat, fmt.Sprintf("formatter panicked: %v", r))
		}
	}()

	c, fl := f.Format(timestamp, level, msg)
	file.AppendString(fl)
	file.EnsureNewline()
	if console != nil {
		console.AppendString(c)
		console.EnsureNewline()
	}
	return nil
}
