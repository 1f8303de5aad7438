package gologger

import (
	"context"
	"testing"

	glog "github.com/goliatone/go-logger/glog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rgonek/dokuwiki-md-converter/internal/logging"
)

func TestNewProviderCreatesLogger(t *testing.T) {
	p, err := NewProvider(Config{Level: "debug", Format: "json"})
	require.NoError(t, err)

	logger := logging.ModuleLogger(p, logging.BatchModule)
	require.NotNil(t, logger)

	assert.NotPanics(t, func() {
		logger.Debug("provider.initialised", "workers", 4)
	})
}

func TestNewProviderRejectsUnknownOptions(t *testing.T) {
	_, err := NewProvider(Config{Format: "xml"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported go-logger format")

	_, err = NewProvider(Config{Level: "loud"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported level")
}

func TestNilProviderReturnsNoOp(t *testing.T) {
	var p *Provider
	assert.Equal(t, logging.NoOp(), p.GetLogger("dokumd"))
}

func TestAdapterDelegatesToUnderlyingLogger(t *testing.T) {
	stub := &stubLogger{}
	adapted := wrap(stub)

	adapted.Trace("trace", "key", "value")
	adapted.Debug("debug")
	adapted.Info("info")
	adapted.Warn("warn")
	adapted.Error("error")
	adapted.Fatal("fatal")

	fields := map[string]any{"file": "a.txt"}
	child := logging.WithFields(adapted, fields)
	require.NotNil(t, child)

	fields["file"] = "b.txt"
	require.Len(t, stub.fields, 1)
	assert.Equal(t, "a.txt", stub.fields[0]["file"])

	ctx := context.WithValue(context.Background(), struct{}{}, "value")
	adapted.WithContext(ctx)
	require.Len(t, stub.contexts, 1)
	assert.Equal(t, ctx, stub.contexts[0])

	assert.Equal(t, []string{"trace", "debug", "info", "warn", "error", "fatal"}, stub.calls)
}

func TestNormalizeLevel(t *testing.T) {
	for input, want := range map[string]string{
		"trace":   glog.Trace,
		"DEBUG":   glog.Debug,
		" info ":  glog.Info,
		"warning": glog.Warn,
		"error":   glog.Error,
		"fatal":   glog.Fatal,
	} {
		got, ok := normalizeLevel(input)
		assert.True(t, ok, input)
		assert.Equal(t, want, got, input)
	}
}

type stubLogger struct {
	calls    []string
	fields   []map[string]any
	contexts []context.Context
}

var _ glog.Logger = (*stubLogger)(nil)
var _ glog.FieldsLogger = (*stubLogger)(nil)

func (s *stubLogger) Trace(string, ...any) { s.calls = append(s.calls, "trace") }
func (s *stubLogger) Debug(string, ...any) { s.calls = append(s.calls, "debug") }
func (s *stubLogger) Info(string, ...any)  { s.calls = append(s.calls, "info") }
func (s *stubLogger) Warn(string, ...any)  { s.calls = append(s.calls, "warn") }
func (s *stubLogger) Error(string, ...any) { s.calls = append(s.calls, "error") }
func (s *stubLogger) Fatal(string, ...any) { s.calls = append(s.calls, "fatal") }

func (s *stubLogger) WithContext(ctx context.Context) glog.Logger {
	s.contexts = append(s.contexts, ctx)
	return s
}

func (s *stubLogger) WithFields(fields map[string]any) glog.Logger {
	s.fields = append(s.fields, fields)
	return s
}
