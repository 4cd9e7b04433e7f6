package qa

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueryLoggerWritesJSONLines(t *testing.T) {
	var buf bytes.Buffer
	l := NewQueryLogger(&buf)

	l.Log(QueryLogEntry{Question: "how to flush", NumResults: 3, Duration: 120 * time.Millisecond, CorrelationID: "c-1"})

	var entry QueryLogEntry
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "how to flush", entry.Question)
	assert.Equal(t, 3, entry.NumResults)
	assert.Equal(t, int64(120), entry.LatencyMs)
	assert.Equal(t, "c-1", entry.CorrelationID)
	assert.False(t, entry.Timestamp.IsZero())
}

func TestNewFileQueryLoggerCreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "query.log")

	l, err := NewFileQueryLogger(path)
	require.NoError(t, err)

	l.Log(QueryLogEntry{Question: "q1"})
	l.Log(QueryLogEntry{Question: "q2"})

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := bytes.Count(data, []byte("\n"))
	assert.Equal(t, 2, lines)
}
