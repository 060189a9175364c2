// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package transport

import (
	"fmt"
	"io"
	"sync"
	"time"
)

// Trace wraps a Transport and logs every byte that crosses it, one line per
// call, in the raw wire form (still encrypted).
type Trace struct {
	inner Transport
	out   io.Writer
	start time.Time
	mu    sync.Mutex
}

// NewTrace returns a Transport that logs traffic on inner to out.
func NewTrace(inner Transport, out io.Writer) *Trace {
	return &Trace{inner: inner, out: out, start: time.Now()}
}

func (t *Trace) logf(format string, args ...interface{}) {
	t.mu.Lock()
	defer t.mu.Unlock()
	elapsed := time.Since(t.start).Seconds()
	fmt.Fprintf(t.out, "[%9.3f] %s\n", elapsed, fmt.Sprintf(format, args...))
}

func (t *Trace) Write(p []byte) error {
	err := t.inner.Write(p)
	if err != nil {
		t.logf("TX % X  error: %v", p, err)
		return err
	}
	t.logf("TX % X", p)
	return nil
}

func (t *Trace) ReadExact(n int, timeout time.Duration) ([]byte, error) {
	data, err := t.inner.ReadExact(n, timeout)
	if err != nil {
		t.logf("RX % X  (%d/%d) error: %v", data, len(data), n, err)
		return data, err
	}
	t.logf("RX % X", data)
	return data, nil
}

func (t *Trace) SetBaudRate(baud int) error {
	t.logf("-- baud %d", baud)
	return t.inner.SetBaudRate(baud)
}

func (t *Trace) Close() error {
	t.logf("-- close")
	return t.inner.Close()
}
