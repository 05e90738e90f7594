package wireup

import (
	"bytes"
	"errors"
	"testing"

	"github.com/joeycumines/logiface"
	"github.com/joeycumines/stumpy"
	"github.com/stretchr/testify/require"
)

func newTestStumpyLogger(t *testing.T, buf *bytes.Buffer, level logiface.Level) *logiface.Logger[*stumpy.Event] {
	t.Helper()
	return stumpy.L.New(
		stumpy.L.WithLevel(level),
		stumpy.L.WithStumpy(stumpy.WithTimeField("")),
		stumpy.L.WithWriter(logiface.WriterFunc[*stumpy.Event](func(e *stumpy.Event) error {
			buf.Write(e.Bytes())
			buf.WriteByte('\n')
			return nil
		})),
	)
}

func TestLogifaceLoggerForwardsFieldsAndMessage(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogifaceLogger(newTestStumpyLogger(t, &buf, logiface.LevelInformational))

	l.Log(LogEntry{Level: LevelWarn, Category: catWireupRx, Message: "bad opcode"})

	require.Contains(t, buf.String(), `"category":"wireup_rx"`)
	require.Contains(t, buf.String(), "bad opcode")
}

func TestLogifaceLoggerIncludesError(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogifaceLogger(newTestStumpyLogger(t, &buf, logiface.LevelInformational))

	l.Log(LogEntry{Level: LevelError, Category: catReclaim, Message: "reclaim failed", Err: errors.New("bin busy")})

	require.Contains(t, buf.String(), "bin busy")
	require.Contains(t, buf.String(), "reclaim failed")
}

func TestLogifaceLoggerIsEnabledRespectsConfiguredLevel(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogifaceLogger(newTestStumpyLogger(t, &buf, logiface.LevelWarning))

	require.False(t, l.IsEnabled(LevelDebug))
	require.True(t, l.IsEnabled(LevelWarn))
	require.True(t, l.IsEnabled(LevelError))
}
