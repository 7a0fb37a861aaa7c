package log

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"runtime"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestLoggerKit(t *testing.T) {
	type logTest struct {
		with       []interface{}
		level      int
		allowedLvl int
		msg        string
		out        []string
	}

	w := func(kv ...interface{}) []interface{} {
		return kv
	}
	o := func(outs ...string) []string {
		return outs
	}
	var tests = []logTest{
		{nil, InfoLevel, InfoLevel, "hello", o("hello")},
		{nil, DebugLevel, InfoLevel, "hello", nil},
		{nil, ErrorLevel, DebugLevel, "hello", o("hello")},
		{nil, WarnLevel, ErrorLevel, "hello", nil},
		{nil, WarnLevel, DebugLevel, "hello", o("hello")},
		{w("yard", "bird"), WarnLevel, InfoLevel, "hello", o("yard", "bird", "hello")},
	}

	for i, test := range tests {
		t.Logf(" -- test %d -- \n", i)

		var b bytes.Buffer
		writer := bufio.NewWriter(&b)
		syncer := zapcore.AddSync(writer)

		var logging func(...interface{})
		logger := New(syncer, test.allowedLvl, true)

		if test.with != nil {
			logger = logger.With(test.with...)
		}

		switch test.level {
		case InfoLevel:
			logging = logger.Info
		case DebugLevel:
			logging = logger.Debug
		case WarnLevel:
			logging = logger.Warn
		case ErrorLevel:
			logging = logger.Error
		case FatalLevel:
			logging = logger.Fatal
		case PanicLevel:
			logging = logger.Panic
		default:
			t.FailNow()
		}

		logging("msg=", test.msg)
		writer.Flush()

		if test.out != nil {
			requireContains(t, &b, test.out, true)
		} else {
			requireContains(t, &b, nil, false)
		}
	}
}

func TestOddKV(t *testing.T) {
	var b bytes.Buffer
	writer := bufio.NewWriter(&b)
	syncer := zapcore.AddSync(writer)

	logger := New(syncer, InfoLevel, true)
	logger = logger.With([]interface{}{"yard", "bird", "stone"}...)

	logger.Info("msg=", "hello")
	writer.Flush()

	out := b.String()

	require.Contains(t, out, "msg=hello")
	require.Contains(t, out, "Ignored key without a value.")
}

func TestLevelFromString(t *testing.T) {
	for in, want := range map[string]int{"": InfoLevel, "DEBUG": DebugLevel, "warn": WarnLevel, "error": ErrorLevel} {
		got, err := LevelFromString(in)
		require.NoError(t, err)
		require.Equal(t, want, got)
	}
	_, err := LevelFromString("chatty")
	require.Error(t, err)
}

func TestContextLogger(t *testing.T) {
	var b bytes.Buffer
	writer := bufio.NewWriter(&b)
	logger := New(zapcore.AddSync(writer), InfoLevel, true).Named("prover")

	ctx := ToContext(context.Background(), logger)
	FromContextOrDefault(ctx).Infow("proving", "leaves", 3)
	writer.Flush()

	require.Contains(t, b.String(), "prover")
	require.Contains(t, b.String(), "leaves")
}

func TestCallerSkip(t *testing.T) {
	var b bytes.Buffer
	writer := bufio.NewWriter(&b)
	logger := New(zapcore.AddSync(writer), InfoLevel, true)

	logAt := func(l Logger) { l.Infow("skipped") }
	_, _, line, _ := runtime.Caller(0)
	logAt(logger.AddCallerSkip(1))
	writer.Flush()
	// the reported caller is the line calling the helper
	require.Contains(t, b.String(), fmt.Sprintf("log_test.go:%d", line+1))
	require.Contains(t, b.String(), "skipped")
}

func TestNopDiscards(t *testing.T) {
	require.NotPanics(t, func() { Nop().Errorw("nothing", "k", "v") })
}

func requireContains(t *testing.T, r io.Reader, outs []string, present bool) {
	out, err := io.ReadAll(r)
	require.NoError(t, err)
	if !present {
		require.Equal(t, string(out), "")
		return
	}
	for _, o := range outs {
		require.Contains(t, string(out), o)
	}
	require.NotContains(t, string(out), "Ignored key without a value.")
}
