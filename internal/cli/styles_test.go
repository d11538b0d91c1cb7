package cli

import (
	"bytes"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var ansi = regexp.MustCompile(`\x1b\[[0-9;]*m`)

func plain(s string) string {
	return ansi.ReplaceAllString(s, "")
}

func TestRender_AlignsKeys(t *testing.T) {
	out := plain(Render([]Field{
		F("Rate", "%d Hz", 48000),
		F("Channels", "%d", 2),
	}))

	lines := strings.Split(out, "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "Rate:     48000 Hz", lines[0])
	assert.Equal(t, "Channels: 2", lines[1])
}

func TestPrintReport(t *testing.T) {
	var buf bytes.Buffer
	PrintReport(&buf, "Summary", []Field{{Key: "Clips", Value: "0"}})

	out := plain(buf.String())
	assert.Contains(t, out, "Summary")
	assert.Contains(t, out, "Clips: 0")
}
