package logging

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"
)

// newTestLogger creates a logger that writes to a buffer for verification.
func newTestLogger(t *testing.T) (Logger, *zaptest.Buffer) {
	t.Helper()
	buf := &zaptest.Buffer{}
	encCfg := zap.NewProductionEncoderConfig()
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	core := zapcore.NewCore(zapcore.NewJSONEncoder(encCfg), buf, zapcore.DebugLevel)
	return &zapLogger{z: zap.New(core)}, buf
}

func TestNewLoggerJSONFormat(t *testing.T) {
	l, err := NewLogger(Config{Level: "info", Format: "json"})
	require.NoError(t, err)
	assert.NotNil(t, l)
}

func TestNewLoggerConsoleFormat(t *testing.T) {
	l, err := NewLogger(Config{Level: "debug", Format: "console"})
	require.NoError(t, err)
	assert.NotNil(t, l)
}

func TestFieldsAppearInOutput(t *testing.T) {
	l, buf := newTestLogger(t)

	l.Info("acquisition step finished",
		String("category", "competitors"),
		Int("records", 5),
		Duration("elapsed", 1200*time.Millisecond),
		Bool("cached", false),
	)

	lines := buf.Lines()
	require.Len(t, lines, 1)
	assert.Contains(t, lines[0], `"category":"competitors"`)
	assert.Contains(t, lines[0], `"records":5`)
	assert.Contains(t, lines[0], `"cached":false`)
}

func TestErrFieldNil(t *testing.T) {
	l, buf := newTestLogger(t)
	l.Warn("step failed", Err(nil))
	require.Len(t, buf.Lines(), 1)
	assert.Contains(t, buf.Lines()[0], `"error":"<nil>"`)
}

func TestErrFieldNonNil(t *testing.T) {
	l, buf := newTestLogger(t)
	l.Error("step failed", Err(errors.New("dial tcp: timeout")))
	require.Len(t, buf.Lines(), 1)
	assert.Contains(t, buf.Lines()[0], "dial tcp: timeout")
}

func TestWithDoesNotMutateParent(t *testing.T) {
	parent, buf := newTestLogger(t)
	child := parent.With(String("run_id", "abc"))

	child.Info("from child")
	parent.Info("from parent")

	lines := buf.Lines()
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], `"run_id":"abc"`)
	assert.NotContains(t, lines[1], "run_id")
}

func TestNamedAppends(t *testing.T) {
	l, buf := newTestLogger(t)
	l.Named("acquisition").Info("hello")
	require.Len(t, buf.Lines(), 1)
	assert.Contains(t, buf.Lines()[0], "acquisition")
}

func TestParseLevelDefaults(t *testing.T) {
	assert.Equal(t, zapcore.InfoLevel, parseLevel(""))
	assert.Equal(t, zapcore.InfoLevel, parseLevel("verbose"))
	assert.Equal(t, zapcore.DebugLevel, parseLevel("debug"))
	assert.Equal(t, zapcore.ErrorLevel, parseLevel("ERROR"))
}

func TestNopLoggerAllMethodsNoOp(t *testing.T) {
	l := NewNopLogger()
	l.Debug("msg")
	l.Info("msg")
	l.Warn("msg")
	l.Error("msg")
	assert.NotNil(t, l.With(String("k", "v")))
	assert.NotNil(t, l.Named("x"))
}

func TestSetDefaultIgnoresNil(t *testing.T) {
	prev := Default()
	SetDefault(nil)
	assert.Equal(t, prev, Default())

	nop := NewNopLogger()
	SetDefault(nop)
	assert.Equal(t, nop, Default())
	SetDefault(prev)
}
