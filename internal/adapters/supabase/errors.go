package supabase

import (
	"encoding/json"
	"errors"
	"regexp"
	"strings"

	"github.com/FranckCharlemagne01/super-afri-finds/internal/core/domain"
	"github.com/sony/gobreaker"
	"go.trai.ch/zerr"
)

// postgrest-go reports failed requests as "(code) message".
var executeErrorPattern = regexp.MustCompile(`(?s)^\(([^)]*)\) (.*)$`)

// classify maps a PostgREST failure onto the domain sentinels.
func classify(err error) error {
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &syntaxErr) || errors.As(err, &typeErr) {
		return domain.Permanent(zerr.Wrap(domain.ErrDecodeFailed, err.Error()))
	}

	m := executeErrorPattern.FindStringSubmatch(err.Error())
	if m == nil {
		return zerr.Wrap(domain.ErrUnavailable, err.Error())
	}

	code, message := m[1], m[2]
	return zerr.With(zerr.Wrap(sentinelFor(code), message), "code", code)
}

// sentinelFor picks the domain error for a PostgreSQL or PostgREST error code.
func sentinelFor(code string) error {
	switch {
	case code == "42501", code == "PGRST301", code == "PGRST302":
		return domain.ErrPermissionDenied
	case code == "PGRST116":
		return domain.ErrNotFound
	case strings.HasPrefix(code, "22"),
		strings.HasPrefix(code, "23"),
		code == "42P01", code == "42703",
		strings.HasPrefix(code, "PGRST1"),
		strings.HasPrefix(code, "PGRST2"):
		return domain.ErrValidation
	default:
		return domain.ErrUnavailable
	}
}

// breakerError turns the breaker's own rejections into ErrCircuitOpen.
func breakerError(err error) error {
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return zerr.With(zerr.Wrap(domain.ErrCircuitOpen, "platform calls suspended"), "breaker", err.Error())
	}
	return err
}
