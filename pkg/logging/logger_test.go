// Copyright (C) 2026 Strandworks Bio (dev@strandworks.bio)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package logging

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLevelString(t *testing.T) {
	assert.Equal(t, "DEBUG", LevelDebug.String())
	assert.Equal(t, "INFO", LevelInfo.String())
	assert.Equal(t, "WARN", LevelWarn.String())
	assert.Equal(t, "ERROR", LevelError.String())
	assert.Equal(t, "Level(42)", Level(42).String())
}

func TestStderrOnly(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Stderr: &buf})
	defer logger.Close()

	logger.Info("resolution started", "edges", 5)
	logger.Debug("hidden at info level")

	out := buf.String()
	assert.Contains(t, out, "resolution started")
	assert.Contains(t, out, "edges=5")
	assert.NotContains(t, out, "hidden at info level")
}

func TestDebugLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: LevelDebug, Stderr: &buf})
	defer logger.Close()

	logger.Debug("visible now")
	assert.Contains(t, buf.String(), "visible now")
}

func TestFileLogging(t *testing.T) {
	var buf bytes.Buffer
	dir := t.TempDir()
	logger := New(Config{Stderr: &buf, LogDir: dir, Service: "resolver"})

	logger.Info("separated path", "edge", 3)
	require.NoError(t, logger.Close())

	name := "resolver_" + time.Now().Format("2006-01-02") + ".log"
	data, err := os.ReadFile(filepath.Join(dir, name))
	require.NoError(t, err)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(data[:bytes.IndexByte(data, '\n')], &entry))
	assert.Equal(t, "separated path", entry["msg"])
	assert.EqualValues(t, 3, entry["edge"])

	// Stderr still gets the same record.
	assert.Contains(t, buf.String(), "separated path")
}

func TestFileLoggingBadDir(t *testing.T) {
	var buf bytes.Buffer
	blocked := filepath.Join(t.TempDir(), "occupied")
	require.NoError(t, os.WriteFile(blocked, []byte("x"), 0o644))

	logger := New(Config{Stderr: &buf, LogDir: blocked})
	defer logger.Close()

	// Falls back to stderr only.
	logger.Info("still works")
	assert.Contains(t, buf.String(), "still works")
}

func TestWith(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Stderr: &buf})
	defer logger.Close()

	logger.With("iteration", 2).Info("pass complete")
	assert.Contains(t, buf.String(), "iteration=2")
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(home, ".ravel"), expandPath("~/.ravel"))
	assert.Equal(t, "/var/log/ravel", expandPath("/var/log/ravel"))
	assert.True(t, strings.HasPrefix(expandPath("~/logs"), home))
}
