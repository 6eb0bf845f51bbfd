// file_test.go: Log directory and log file creation tests
//
// Copyright (c) 2025 AGILira
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package ringlog

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	goerrors "github.com/agilira/go-errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogFileName(t *testing.T) {
	start := time.Date(2026, 1, 27, 16, 48, 17, 105_000_000, time.UTC)
	assert.Equal(t, "2026.01.27-16.48.17.105.log", logFileName(start, false, 0))
	assert.Equal(t, "2026.01.27-16.48.17.105-3.log", logFileName(start, false, 3))
}

func TestCreateLogFile_NeverReopensExistingFile(t *testing.T) {
	dir := t.TempDir()
	start := time.Date(2026, 5, 6, 7, 8, 9, 10_000_000, time.UTC)

	taken := filepath.Join(dir, logFileName(start, false, 0))
	require.NoError(t, os.WriteFile(taken, []byte("previous lifetime\n"), 0600))

	f, path, err := createLogFile(dir, start, false, 0644, 1, time.Millisecond)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, filepath.Join(dir, logFileName(start, false, 1)), path)
	info, err := f.Stat()
	require.NoError(t, err)
	assert.Zero(t, info.Size())

	data, err := os.ReadFile(taken) // #nosec G304 -- test file
	require.NoError(t, err)
	assert.Equal(t, "previous lifetime\n", string(data), "the existing file is left untouched")
}

func TestCreateLogFile_AllNamesTaken(t *testing.T) {
	dir := t.TempDir()
	start := time.Date(2026, 5, 6, 7, 8, 9, 10_000_000, time.UTC)
	for n := 0; n < maxLogFileNames; n++ {
		require.NoError(t, os.WriteFile(filepath.Join(dir, logFileName(start, false, n)), nil, 0600))
	}

	f, _, err := createLogFile(dir, start, false, 0644, 1, time.Millisecond)
	assert.Nil(t, f)
	assert.True(t, goerrors.HasCode(err, ErrCodeOpenFile))
}

func TestPrepareLogDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "a", "b")
	require.NoError(t, prepareLogDir(dir, 1, time.Millisecond))

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())

	// The writability probe leaves nothing behind
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)

	plain := filepath.Join(t.TempDir(), "plain")
	require.NoError(t, os.WriteFile(plain, nil, 0600))
	assert.True(t, goerrors.HasCode(prepareLogDir(plain, 1, time.Millisecond), ErrCodeInvalidDir))
}
