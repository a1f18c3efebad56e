// Package style holds the palette and state badges shared by the log handler and
// the result renderer.
package style

import (
	"github.com/FranckCharlemagne01/super-afri-finds/internal/core/domain"
	"github.com/charmbracelet/lipgloss"
)

// Colors.
var (
	Slate  = lipgloss.Color("#667085")
	Green  = lipgloss.Color("#22A06B")
	Red    = lipgloss.Color("#D93025")
	Yellow = lipgloss.Color("#F59E0B")
)

// Icons.
const (
	Check   = "✓"
	Cross   = "✗"
	Warning = "!"
	Tilde   = "~"
	Dot     = "●"
	Circle  = "○"
)

// Badge is an icon with its color. A badge without color is drawn faint.
type Badge struct {
	Icon  string
	Color lipgloss.Color
}

// Faint reports whether the badge has no color of its own.
func (b Badge) Faint() bool {
	return b.Color == ""
}

// Badges for outcomes that are not query states.
var (
	Success   = Badge{Icon: Check, Color: Green}
	Failure   = Badge{Icon: Cross, Color: Red}
	Discarded = Badge{Icon: Tilde, Color: Yellow}
)

// ForState returns the badge shown next to a query in state s.
func ForState(s domain.QueryState) Badge {
	switch s {
	case domain.StateFresh:
		return Success
	case domain.StateStale, domain.StateRevalidating:
		return Badge{Icon: Tilde, Color: Yellow}
	case domain.StateErrorWithStaleData:
		return Badge{Icon: Warning, Color: Yellow}
	case domain.StateErrorEmpty:
		return Failure
	case domain.StateFetching:
		return Badge{Icon: Dot}
	default:
		return Badge{Icon: Circle}
	}
}
