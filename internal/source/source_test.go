// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package source

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = "----- 1. screw_0 -----\nposition:\n x: 1\n y: 2\n z: 3\n"

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "screw_poses.txt")
	require.NoError(t, os.WriteFile(path, []byte(sample), 0o644))

	got, err := Load(context.Background(), path, Options{})
	require.NoError(t, err)
	assert.Equal(t, sample, got)

	got, err = Load(context.Background(), "file://"+filepath.ToSlash(path), Options{})
	require.NoError(t, err)
	assert.Equal(t, sample, got)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(context.Background(), filepath.Join(t.TempDir(), "nope.txt"), Options{})

	require.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestLoad_HTTP(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/data/screw_poses.txt" {
			http.NotFound(w, r)
			return
		}
		fmt.Fprint(w, sample)
	}))
	defer srv.Close()

	got, err := Load(context.Background(), srv.URL+"/data/screw_poses.txt", Options{Client: srv.Client()})
	require.NoError(t, err)
	assert.Equal(t, sample, got)

	_, err = Load(context.Background(), srv.URL+"/missing.txt", Options{Client: srv.Client()})
	require.Error(t, err)
	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusNotFound, statusErr.StatusCode)
}

func TestLoad_HTTPTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	_, err := Load(context.Background(), srv.URL, Options{Client: srv.Client(), HTTPTimeout: 50 * time.Millisecond})
	require.Error(t, err)
	assert.Contains(t, err.Error(), srv.URL)
}

func TestLoad_UnsupportedScheme(t *testing.T) {
	_, err := Load(context.Background(), "ftp://example.com/poses.txt", Options{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported scheme")
}

func TestLoad_SerialRejectsBadBaud(t *testing.T) {
	_, err := Load(context.Background(), "serial:///dev/ttyUSB0?baud=fast", Options{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid baud")
}

func TestInterCharTimeout(t *testing.T) {
	assert.Equal(t, uint(100), interCharTimeout(0))
	assert.Equal(t, uint(500), interCharTimeout(500*time.Millisecond))
	assert.Equal(t, uint(300), interCharTimeout(250*time.Millisecond))
	assert.Equal(t, uint(25500), interCharTimeout(time.Minute))
}
