// Copyright 2026 The presto-sub000 Authors.
//
// Use of this software is governed by the Apache License, Version 2.0
// included in the /LICENSE file.

// Package log provides leveled, context-aware logging for the planner. Log
// lines carry the tags attached to the context via logtags, and arguments
// are redacted with the redact package so user values never reach plain
// logs.
package log

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"
	"sync/atomic"

	"github.com/cockroachdb/logtags"
	"github.com/cockroachdb/redact"
)

var (
	mu     sync.Mutex
	out    io.Writer = os.Stderr
	vLevel int32
)

// SetOutput redirects log output, returning the previous writer. Tests use
// it to capture planner logging.
func SetOutput(w io.Writer) io.Writer {
	mu.Lock()
	defer mu.Unlock()
	prev := out
	out = w
	return prev
}

// SetVModule sets the verbosity threshold for VInfof.
func SetVModule(level int) {
	atomic.StoreInt32(&vLevel, int32(level))
}

// V reports whether logging at the given verbosity is enabled.
func V(level int) bool {
	return int32(level) <= atomic.LoadInt32(&vLevel)
}

// Infof logs an informational message with the context's tags.
func Infof(ctx context.Context, format string, args ...interface{}) {
	output(ctx, "I", format, args...)
}

// Warningf logs a warning with the context's tags.
func Warningf(ctx context.Context, format string, args ...interface{}) {
	output(ctx, "W", format, args...)
}

// Errorf logs an error with the context's tags.
func Errorf(ctx context.Context, format string, args ...interface{}) {
	output(ctx, "E", format, args...)
}

// VInfof logs like Infof when the given verbosity is enabled.
func VInfof(ctx context.Context, level int, format string, args ...interface{}) {
	if V(level) {
		output(ctx, "I", format, args...)
	}
}

func output(ctx context.Context, sev string, format string, args ...interface{}) {
	var prefix string
	if tags := logtags.FromContext(ctx); tags != nil {
		prefix = "[" + tags.String() + "] "
	}
	msg := redact.Sprintf(format, args...).Redact()
	mu.Lock()
	defer mu.Unlock()
	fmt.Fprintf(out, "%s %s%s\n", sev, prefix, msg)
}
