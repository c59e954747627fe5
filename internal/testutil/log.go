package testutil

import (
	"encoding/json"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"
)

const (
	logLevelKey   = "level"
	logMessageKey = "msg"
	logTimeKey    = "ts"
)

// LogEntry represents single [zap.Logger] entry.
type LogEntry struct {
	Level   zapcore.Level
	Message string
	// Integer values are represented as [json.Number].
	Fields map[string]any
}

// LogBuffer is a memory buffer for [zap.Logger] entries.
type LogBuffer struct {
	t   testing.TB
	mtx sync.Mutex
	b   zaptest.Buffer
}

// Write implements zapcore.WriteSyncer.
func (x *LogBuffer) Write(p []byte) (int, error) {
	x.mtx.Lock()
	defer x.mtx.Unlock()
	return x.b.Write(p)
}

// Sync implements zapcore.WriteSyncer.
func (x *LogBuffer) Sync() error { return nil }

// NewBufferedLogger returns JSON logger writing into memory buffer.
//
// Entries with severity less than minLevel are never written.
func NewBufferedLogger(t testing.TB, minLevel zapcore.Level) (*zap.Logger, *LogBuffer) {
	lb := &LogBuffer{t: t}

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.LevelKey = logLevelKey
	encCfg.MessageKey = logMessageKey
	encCfg.TimeKey = logTimeKey

	return zap.New(zapcore.NewCore(zapcore.NewJSONEncoder(encCfg), lb, minLevel)), lb
}

// Entries returns all written entries in order.
func (x *LogBuffer) Entries() []LogEntry {
	x.mtx.Lock()
	lines := x.b.Lines()
	x.mtx.Unlock()

	res := make([]LogEntry, len(lines))

	for i := range lines {
		dec := json.NewDecoder(strings.NewReader(lines[i]))
		dec.UseNumber()

		var m map[string]any
		require.NoError(x.t, dec.Decode(&m), i)

		lvl, ok := m[logLevelKey].(string)
		require.True(x.t, ok, i)

		var err error
		res[i].Level, err = zapcore.ParseLevel(lvl)
		require.NoError(x.t, err, i)

		res[i].Message, ok = m[logMessageKey].(string)
		require.True(x.t, ok, i)

		delete(m, logTimeKey)
		delete(m, logLevelKey)
		delete(m, logMessageKey)
		res[i].Fields = m
	}

	return res
}

// Filter returns entries of the given level with the given message.
func (x *LogBuffer) Filter(lvl zapcore.Level, msg string) []LogEntry {
	var res []LogEntry
	for _, e := range x.Entries() {
		if e.Level == lvl && e.Message == msg {
			res = append(res, e)
		}
	}
	return res
}

// AssertEmpty asserts that no entry has been written.
func (x *LogBuffer) AssertEmpty() {
	require.Empty(x.t, x.Entries())
}

// AssertContains asserts that log contains at least one entry of the given
// level and message and returns the first one.
func (x *LogBuffer) AssertContains(lvl zapcore.Level, msg string) LogEntry {
	found := x.Filter(lvl, msg)
	require.NotEmpty(x.t, found, "no %s entry %q in log", lvl, msg)
	return found[0]
}
