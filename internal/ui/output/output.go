// Package output selects color profiles for the streams swr writes to.
package output

import (
	"io"
	"os"

	"github.com/muesli/termenv"
	"golang.org/x/term"
)

// Profile returns the color profile for w. NO_COLOR disables colors, a terminal
// gets the profile its environment advertises and anything else gets none.
func Profile(w io.Writer) termenv.Profile {
	if os.Getenv("NO_COLOR") != "" {
		return termenv.Ascii
	}
	if f, ok := w.(interface{ Fd() uintptr }); ok && term.IsTerminal(int(f.Fd())) { //nolint:gosec // fd fits in int
		return termenv.EnvColorProfile()
	}
	return termenv.Ascii
}

// ProfileANSI returns the basic ANSI profile unless NO_COLOR is set. CI log viewers
// render it even though they are not terminals.
func ProfileANSI() termenv.Profile {
	if os.Getenv("NO_COLOR") != "" {
		return termenv.Ascii
	}
	return termenv.ANSI
}

// New creates an output writing to w with the given profile. A nil w writes to
// os.Stderr.
func New(w io.Writer, profile termenv.Profile, opts ...termenv.OutputOption) *termenv.Output {
	if w == nil {
		w = os.Stderr
	}

	opts = append(opts,
		termenv.WithProfile(profile),
		termenv.WithTTY(true),
	)

	return termenv.NewOutput(w, opts...)
}
