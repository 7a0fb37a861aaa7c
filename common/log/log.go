// Package log is the structured logger of the interpreter, the prover, the
// batch verifier and the command line tool. Statements are key/value pairs
// encoded by zap as JSON or console lines.
//
// Library code receives its logger through options. The prover falls back
// to Nop and the interpreter to DefaultLogger.
package log

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger logs key/value statements at a level. The w variants take a
// message followed by alternating keys and values.
type Logger interface {
	Info(keyvals ...interface{})
	Debug(keyvals ...interface{})
	Warn(keyvals ...interface{})
	Error(keyvals ...interface{})
	Fatal(keyvals ...interface{})
	Panic(keyvals ...interface{})
	Infow(msg string, keyvals ...interface{})
	Debugw(msg string, keyvals ...interface{})
	Warnw(msg string, keyvals ...interface{})
	Errorw(msg string, keyvals ...interface{})
	Fatalw(msg string, keyvals ...interface{})
	Panicw(msg string, keyvals ...interface{})
	With(args ...interface{}) Logger
	Named(s string) Logger
	AddCallerSkip(skip int) Logger
}

type sugared struct {
	*zap.SugaredLogger
}

func (l *sugared) AddCallerSkip(skip int) Logger {
	return &sugared{l.Desugar().WithOptions(zap.AddCallerSkip(skip)).Sugar()}
}

func (l *sugared) With(args ...interface{}) Logger {
	return &sugared{l.SugaredLogger.With(args...)}
}

func (l *sugared) Named(s string) Logger {
	return &sugared{l.SugaredLogger.Named(s)}
}

// Levels, ordered from the most verbose.
const (
	DebugLevel = int(zapcore.DebugLevel)
	InfoLevel  = int(zapcore.InfoLevel)
	WarnLevel  = int(zapcore.WarnLevel)
	ErrorLevel = int(zapcore.ErrorLevel)
	PanicLevel = int(zapcore.PanicLevel)
	FatalLevel = int(zapcore.FatalLevel)
)

// DebugEnv raises DefaultLevel to debug when set to "DEBUG".
const DebugEnv = "SIGMA_TEST_LOGS"

// DefaultLevel is the level of DefaultLogger. It must be changed before the
// first call to DefaultLogger.
var DefaultLevel = InfoLevel

//nolint:gochecknoinits // the default level depends on the environment
func init() {
	if os.Getenv(DebugEnv) == "DEBUG" {
		DefaultLevel = DebugLevel
	}
}

// LevelFromString parses the level names accepted in sigma.toml. The empty
// string is the info level.
func LevelFromString(s string) (int, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "info":
		return InfoLevel, nil
	case "debug":
		return DebugLevel, nil
	case "warn", "warning":
		return WarnLevel, nil
	case "error":
		return ErrorLevel, nil
	default:
		return 0, fmt.Errorf("unknown log level %q", s)
	}
}

var defaultOnce sync.Once

// DefaultLogger returns the process wide logger, JSON on stderr at
// DefaultLevel.
func DefaultLogger() Logger {
	defaultOnce.Do(func() {
		zap.ReplaceGlobals(build(nil, DefaultLevel, true))
	})
	return &sugared{zap.S()}
}

// New returns a logger writing statements of at least level to output, or
// to stderr when output is nil.
func New(output zapcore.WriteSyncer, level int, isJSON bool) Logger {
	return &sugared{build(output, level, isJSON).Sugar()}
}

// Nop returns a logger that drops every statement.
func Nop() Logger {
	return &sugared{zap.NewNop().Sugar()}
}

func build(output zapcore.WriteSyncer, level int, isJSON bool) *zap.Logger {
	if output == nil {
		output = os.Stderr
	}
	conf := zap.NewProductionEncoderConfig()
	conf.EncodeTime = zapcore.ISO8601TimeEncoder
	conf.EncodeLevel = zapcore.CapitalLevelEncoder
	encoder := zapcore.NewConsoleEncoder(conf)
	if isJSON {
		encoder = zapcore.NewJSONEncoder(conf)
	}
	core := zapcore.NewCore(encoder, output, zapcore.Level(level))
	return zap.New(core, zap.WithCaller(true))
}

type ctxKey struct{}

// ToContext returns a copy of ctx carrying l.
func ToContext(ctx context.Context, l Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, l)
}

// FromContextOrDefault returns the logger stored by ToContext, or
// DefaultLogger when ctx carries none.
func FromContextOrDefault(ctx context.Context) Logger {
	if l, ok := ctx.Value(ctxKey{}).(Logger); ok {
		return l
	}
	return DefaultLogger()
}
