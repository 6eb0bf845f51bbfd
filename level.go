// level.go: Log level flags
//
// Copyright (c) 2025 AGILira
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package ringlog

import (
	"fmt"
	"strings"
)

// Level is a set of category flags attached to a record.
// Levels are not ranked: a record may carry several flags at once
// (LevelInfo|LevelError) and formatters print every flag that is set.
type Level uint8

const (
	LevelInfo Level = 1 << iota
	LevelWarning
	LevelError
	LevelCustom

	// LevelMask covers every defined flag.
	LevelMask = LevelInfo | LevelWarning | LevelError | LevelCustom
)

var levelNames = [...]struct {
	flag Level
	name string
}{
	{LevelInfo, "INFO"},
	{LevelWarning, "WARNING"},
	{LevelError, "ERROR"},
	{LevelCustom, "CUSTOM"},
}

// Valid reports whether l is non-empty and carries only known flags.
func (l Level) Valid() bool {
	return l != 0 && l&^LevelMask == 0
}

// Has reports whether every flag of f is set in l.
func (l Level) Has(f Level) bool {
	return f != 0 && l&f == f
}

// String joins the names of the set flags with "|" in flag order.
// Unknown bits are rendered as a hex suffix so nothing is hidden.
func (l Level) String() string {
	if l == 0 {
		return "NONE"
	}
	// Fast path for the single-flag case used by Info/Warn/Error/Custom
	for _, n := range levelNames {
		if l == n.flag {
			return n.name
		}
	}

	var sb strings.Builder
	for _, n := range levelNames {
		if l&n.flag == 0 {
			continue
		}
		if sb.Len() > 0 {
			sb.WriteByte('|')
		}
		sb.WriteString(n.name)
	}
	if rest := l &^ LevelMask; rest != 0 {
		if sb.Len() > 0 {
			sb.WriteByte('|')
		}
		fmt.Fprintf(&sb, "0x%02x", uint8(rest))
	}
	return sb.String()
}

// ParseLevel converts names like "info", "WARN" or "info|error" to a Level.
// Case-insensitive; "WARN" is accepted as an alias of "WARNING".
func ParseLevel(s string) (Level, error) {
	if strings.TrimSpace(s) == "" {
		return 0, fmt.Errorf("empty level string")
	}

	var lvl Level
	for _, part := range strings.Split(s, "|") {
		switch strings.ToUpper(strings.TrimSpace(part)) {
		case "INFO":
			lvl |= LevelInfo
		case "WARN", "WARNING":
			lvl |= LevelWarning
		case "ERROR", "ERR":
			lvl |= LevelError
		case "CUSTOM":
			lvl |= LevelCustom
		default:
			return 0, fmt.Errorf("unknown level %q in %q", part, s)
		}
	}
	return lvl, nil
}
