package output_test

import (
	"bytes"
	"testing"

	"github.com/FranckCharlemagne01/super-afri-finds/internal/ui/output"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
)

func TestProfile(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	assert.Equal(t, termenv.Ascii, output.Profile(new(bytes.Buffer)), "NO_COLOR should force Ascii profile")

	// A buffer is not a terminal.
	t.Setenv("NO_COLOR", "")
	assert.Equal(t, termenv.Ascii, output.Profile(new(bytes.Buffer)))
	assert.Equal(t, termenv.Ascii, output.Profile(nil))
}

func TestProfileANSI(t *testing.T) {
	t.Setenv("NO_COLOR", "")
	assert.Equal(t, termenv.ANSI, output.ProfileANSI())

	t.Setenv("NO_COLOR", "1")
	assert.Equal(t, termenv.Ascii, output.ProfileANSI())
}

func TestNew(t *testing.T) {
	var buf bytes.Buffer
	out := output.New(&buf, termenv.Ascii)
	assert.NotNil(t, out)

	_, _ = out.WriteString("test")
	assert.Equal(t, "test", buf.String())
}

func TestNew_Nil(t *testing.T) {
	// Falls back to stderr.
	out := output.New(nil, termenv.ANSI)
	assert.NotNil(t, out)
}

func TestNew_ANSIColors(t *testing.T) {
	var buf bytes.Buffer
	out := output.New(&buf, termenv.ANSI)

	_, _ = out.WriteString(out.String("ok").Foreground(termenv.ANSIGreen).String())
	assert.Contains(t, buf.String(), "\x1b[")
	assert.Contains(t, buf.String(), "ok")
}
