package logger_test

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"sync"
	"testing"

	"github.com/FranckCharlemagne01/super-afri-finds/internal/adapters/logger"
	"github.com/FranckCharlemagne01/super-afri-finds/internal/core/domain"
	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/zerr"
)

// newTestLogger creates a logger writing to a buffer without ANSI escape codes.
func newTestLogger(t *testing.T) (*logger.Logger, *bytes.Buffer) {
	t.Helper()
	t.Setenv("NO_COLOR", "1")

	buf := &bytes.Buffer{}
	lg := logger.New().(*logger.Logger)
	lg.SetOutput(buf)
	return lg, buf
}

func TestLogger_InfoWarn(t *testing.T) {
	tests := []struct {
		name       string
		log        func(*logger.Logger)
		goldenName string
	}{
		{
			name:       "info",
			log:        func(l *logger.Logger) { l.Info("prefetched 3 keys") },
			goldenName: "info_basic",
		},
		{
			name:       "info multiline",
			log:        func(l *logger.Logger) { l.Info("line1\nline2") },
			goldenName: "info_multiline",
		},
		{
			name:       "warn",
			log:        func(l *logger.Logger) { l.Warn("revalidation of products:seller:42 failed") },
			goldenName: "warn_basic",
		},
		{
			name:       "warn empty",
			log:        func(l *logger.Logger) { l.Warn("") },
			goldenName: "warn_empty",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lg, buf := newTestLogger(t)
			tt.log(lg)

			g := goldie.New(t)
			g.Assert(t, tt.goldenName, buf.Bytes())
		})
	}
}

func TestLogger_Error(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		goldenName string
	}{
		{
			name:       "plain error",
			err:        errors.New("connection refused"),
			goldenName: "error_simple",
		},
		{
			name:       "multiline error",
			err:        errors.New("yaml: unmarshal errors:\n  line 4: cannot unmarshal"),
			goldenName: "error_multiline",
		},
		{
			name: "fetch failure chain",
			err: func() error {
				cause := zerr.With(zerr.Wrap(domain.ErrPermissionDenied, "rls policy rejected the query"), "code", "42501")
				err := zerr.Wrap(cause, domain.ErrFetchFailed.Error())
				return zerr.With(err, "key", "conversations:user:3")
			}(),
			goldenName: "error_fetch_chain",
		},
		{
			name:       "stdlib chain",
			err:        fmt.Errorf("load config: %w", fmt.Errorf("open swr.yaml: %w", errors.New("permission denied"))),
			goldenName: "error_chain_stdlib",
		},
		{
			name: "sorted metadata",
			err: func() error {
				e := zerr.Wrap(domain.ErrInvalidPolicy, "retry policy is invalid")
				e = zerr.With(e, "multiplier", 0.5)
				e = zerr.With(e, "max_retries", -1)
				return e
			}(),
			goldenName: "error_metadata_sorted",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lg, buf := newTestLogger(t)
			lg.Error(tt.err)

			g := goldie.New(t)
			g.Assert(t, tt.goldenName, buf.Bytes())
		})
	}
}

func TestLogger_Error_Nil(t *testing.T) {
	lg, buf := newTestLogger(t)
	lg.Error(nil)

	assert.Empty(t, buf.String())
}

func TestLogger_SetJSON(t *testing.T) {
	lg, buf := newTestLogger(t)
	lg.SetJSON(true)
	require.True(t, lg.JSON())

	err := zerr.With(zerr.Wrap(errors.New("503"), "fetch failed"), "key", "product:1")
	lg.Error(err)

	out := buf.String()
	assert.Contains(t, out, `"level":"ERROR"`)
	assert.Contains(t, out, `"error"`)
	assert.Contains(t, out, "fetch failed")
	assert.Contains(t, out, "product:1")
	assert.NotContains(t, out, "✗")
}

func TestLogger_FormatSwitching(t *testing.T) {
	lg, buf := newTestLogger(t)

	lg.Error(errors.New("pretty"))
	pretty := buf.String()
	buf.Reset()

	lg.SetJSON(true)
	lg.Error(errors.New("json"))
	jsonOut := buf.String()
	buf.Reset()

	lg.SetJSON(false)
	lg.Error(errors.New("pretty again"))
	back := buf.String()

	assert.Contains(t, pretty, "✗")
	assert.NotContains(t, pretty, `"error"`)
	assert.Contains(t, jsonOut, `"error"`)
	assert.NotContains(t, jsonOut, "✗")
	assert.Contains(t, back, "✗ Error: pretty again")
}

func TestLogger_SetOutput_Nil(t *testing.T) {
	require.NotPanics(t, func() {
		lg := logger.New().(*logger.Logger)
		lg.SetOutput(nil)
	})
}

func TestLogger_ConcurrentAccess(t *testing.T) {
	lg, _ := newTestLogger(t)
	lg.SetOutput(io.Discard)

	var wg sync.WaitGroup
	wg.Go(func() { lg.Info("concurrent info") })
	wg.Go(func() { lg.Warn("concurrent warn") })
	wg.Go(func() { lg.Error(errors.New("concurrent error")) })
	wg.Go(func() { lg.SetJSON(true) })
	wg.Go(func() { lg.SetJSON(false) })
	wg.Go(func() { lg.SetOutput(io.Discard) })
	wg.Wait()
}
