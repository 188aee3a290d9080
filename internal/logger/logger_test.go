package logger

import (
	"bytes"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func reset() {
	SetVerbose(false)
	SetOutput(os.Stderr)
	now = time.Now
}

func TestSetVerbose(t *testing.T) {
	defer reset()
	SetVerbose(false)
	assert.False(t, IsVerbose())
	SetVerbose(true)
	assert.True(t, IsVerbose())
	SetVerbose(false)
	assert.False(t, IsVerbose())
}

func TestLevels(t *testing.T) {
	defer reset()
	cases := []struct {
		name string
		log  func(string, ...any)
		want string
	}{
		{"debug", Debug, "[DEBUG] line 3 of 7\n"},
		{"info", Info, "[INFO] line 3 of 7\n"},
		{"warn", Warn, "[WARN] line 3 of 7\n"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			var buf bytes.Buffer
			SetOutput(&buf)
			SetVerbose(true)
			c.log("line %d of %d", 3, 7)
			assert.Equal(t, c.want, buf.String())
		})
	}
}

func TestQuietWhenNotVerbose(t *testing.T) {
	defer reset()
	var buf bytes.Buffer
	SetOutput(&buf)
	SetVerbose(false)
	Debug("x")
	Info("x")
	Warn("x")
	Section("x")
	Timed("x")()
	assert.Empty(t, buf.String())
}

func TestSection(t *testing.T) {
	defer reset()
	var buf bytes.Buffer
	SetOutput(&buf)
	SetVerbose(true)
	Section("Recalculate")
	assert.Equal(t, "\n=== Recalculate ===\n", buf.String())
}

func TestTimed(t *testing.T) {
	defer reset()
	var buf bytes.Buffer
	SetOutput(&buf)
	SetVerbose(true)
	ticks := []time.Time{time.Unix(0, 0), time.Unix(2, 0)}
	now = func() time.Time {
		r := ticks[0]
		ticks = ticks[1:]
		return r
	}
	Timed("pass")()
	assert.Equal(t, "[DEBUG] pass: start\n[DEBUG] pass: done in 2s\n", buf.String())
}
