package output

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avelhart/rewind/internal/history"
)

func newBufferFormatter(format Format) (*Formatter, *bytes.Buffer) {
	buf := &bytes.Buffer{}
	f := NewFormatter()
	f.Writer = buf
	f.Format = format
	f.ColorMode = ColorNever
	return f, buf
}

func TestFormatter_JSON(t *testing.T) {
	f, buf := newBufferFormatter(FormatJSON)
	assert.True(t, f.IsJSON())

	require.NoError(t, f.JSON(map[string]string{"status": "ok"}))
	assert.JSONEq(t, `{"status":"ok"}`, buf.String())
}

func TestFormatter_ColorMode(t *testing.T) {
	f, _ := newBufferFormatter(FormatCLI)
	assert.False(t, f.IsColorEnabled())

	f.ColorMode = ColorAlways
	assert.True(t, f.IsColorEnabled())

	f.ColorMode = ColorAuto
	assert.False(t, f.IsColorEnabled(), "a buffer is not a terminal")
}

func TestCLIFormatter_Messages(t *testing.T) {
	f, buf := newBufferFormatter(FormatCLI)
	cli := NewCLIFormatter(f)

	cli.Success("done")
	cli.Error("bad")
	cli.Muted("note")

	out := buf.String()
	assert.Contains(t, out, "✓ done")
	assert.Contains(t, out, "✗ bad")
	assert.Contains(t, out, "note")
}

func TestCLIFormatter_HistoryLine(t *testing.T) {
	f, _ := newBufferFormatter(FormatCLI)
	cli := NewCLIFormatter(f)

	ts := time.Date(2026, 8, 23, 15, 4, 0, 0, time.UTC)
	line := cli.HistoryLine(3, history.Info{
		Description: `Create task "x"`,
		Category:    "user",
		Timestamp:   ts,
	})

	assert.Contains(t, line, "  3. ")
	assert.Contains(t, line, "3:04PM")
	assert.Contains(t, line, "[user]")
	assert.Contains(t, line, `Create task "x"`)
}

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "0s", FormatDuration(0))
	assert.Equal(t, "42s", FormatDuration(42*time.Second))
	assert.Equal(t, "2m 5s", FormatDuration(2*time.Minute+5*time.Second))
	assert.Equal(t, "1h 0m 3s", FormatDuration(time.Hour+3*time.Second))
}
