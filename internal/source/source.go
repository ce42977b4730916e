// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package source fetches the raw pose log text. It is the only place where
// reading a pose log can fail; parsing itself never does.
package source

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"time"

	serial "github.com/jacobsa/go-serial/serial"
)

const (
	defaultHTTPTimeout = 10 * time.Second
	defaultIdleTimeout = 500 * time.Millisecond
	defaultBaudRate    = 115200
)

// Options tunes the non-file transports. Zero values use defaults.
type Options struct {
	// HTTPTimeout bounds one HTTP GET.
	HTTPTimeout time.Duration
	// IdleTimeout ends a serial read once the line has been quiet this long.
	IdleTimeout time.Duration
	// BaudRate for serial locations without a ?baud= query.
	BaudRate uint
	// Client overrides the HTTP client (tests).
	Client *http.Client
}

// Load returns the full text found at location:
//
//	data/screw_poses.txt, file:///abs/path    local file
//	http://host/poses.txt, https://...        HTTP GET, 2xx only
//	serial:///dev/ttyUSB0?baud=115200         serial port, read until idle
func Load(ctx context.Context, location string, opts Options) (string, error) {
	u, err := url.Parse(location)
	if err != nil || u.Scheme == "" || len(u.Scheme) == 1 {
		// Plain paths, including Windows drive letters.
		return loadFile(location)
	}

	switch u.Scheme {
	case "file":
		return loadFile(u.Path)
	case "http", "https":
		return loadHTTP(ctx, u, opts)
	case "serial":
		return loadSerial(ctx, u, opts)
	default:
		return "", fmt.Errorf("pose source %q: unsupported scheme %q", location, u.Scheme)
	}
}

func loadFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("pose source %s: %w", path, err)
	}
	return string(data), nil
}

func loadHTTP(ctx context.Context, u *url.URL, opts Options) (string, error) {
	client := opts.Client
	if client == nil {
		client = http.DefaultClient
	}
	timeout := opts.HTTPTimeout
	if timeout <= 0 {
		timeout = defaultHTTPTimeout
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return "", fmt.Errorf("pose source %s: %w", u, err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("pose source %s: %w", u, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &StatusError{URL: u.String(), StatusCode: resp.StatusCode}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("pose source %s: read body: %w", u, err)
	}
	return string(data), nil
}

func loadSerial(ctx context.Context, u *url.URL, opts Options) (string, error) {
	baud := opts.BaudRate
	if baud == 0 {
		baud = defaultBaudRate
	}
	if q := u.Query().Get("baud"); q != "" {
		v, err := strconv.ParseUint(q, 10, 32)
		if err != nil {
			return "", fmt.Errorf("pose source %s: invalid baud %q: %w", u, q, err)
		}
		baud = uint(v)
	}
	idle := opts.IdleTimeout
	if idle <= 0 {
		idle = defaultIdleTimeout
	}

	serialOpts := serial.OpenOptions{
		PortName:              u.Path,
		BaudRate:              baud,
		DataBits:              8,
		StopBits:              1,
		MinimumReadSize:       0,
		ParityMode:            serial.PARITY_NONE,
		InterCharacterTimeout: interCharTimeout(idle),
	}

	port, err := serial.Open(serialOpts)
	if err != nil {
		return "", fmt.Errorf("pose source %s: open serial: %w", u, err)
	}

	// Closing the port unblocks the read when ctx is cancelled first.
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			port.Close()
		case <-done:
		}
	}()
	defer port.Close()

	// With MinimumReadSize 0 a read that times out returns no data, which
	// io.ReadAll takes as end of input.
	data, err := io.ReadAll(port)
	if ctxErr := ctx.Err(); ctxErr != nil {
		return "", fmt.Errorf("pose source %s: %w", u, ctxErr)
	}
	if err != nil {
		return "", fmt.Errorf("pose source %s: read serial: %w", u, err)
	}
	return string(data), nil
}

// interCharTimeout converts d to the serial driver's unit: milliseconds in
// steps of 100, between 100 and 25500.
func interCharTimeout(d time.Duration) uint {
	ms := (d.Milliseconds() + 99) / 100 * 100
	if ms < 100 {
		ms = 100
	}
	if ms > 25500 {
		ms = 25500
	}
	return uint(ms)
}

// StatusError reports a non-2xx HTTP answer.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("pose source %s: unexpected status %d %s", e.URL, e.StatusCode, http.StatusText(e.StatusCode))
}
