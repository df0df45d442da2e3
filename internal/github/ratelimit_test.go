// internal/github/ratelimit_test.go
package github

import (
	"bytes"
	"log/slog"
	"net/http"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestObserver(now time.Time) (*RateLimitObserver, *bytes.Buffer) {
	var buf bytes.Buffer
	o := NewRateLimitObserver(slog.New(slog.NewTextHandler(&buf, nil)))
	o.now = func() time.Time { return now }
	return o, &buf
}

func forbidden(remaining string, reset int64) *http.Response {
	h := http.Header{}
	h.Set(HeaderRateRemaining, remaining)
	h.Set(HeaderRateReset, strconv.FormatInt(reset, 10))
	return &http.Response{StatusCode: http.StatusForbidden, Header: h}
}

func TestRateLimitObserver_Observe(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)

	t.Run("reports the time until a future reset", func(t *testing.T) {
		o, logs := newTestObserver(now)

		report := o.Observe(forbidden("0", now.Add(90*time.Second).Unix()))

		require.NotNil(t, report)
		assert.Equal(t, "0", report.Remaining)
		assert.Equal(t, 90*time.Second, report.Wait)
		assert.Contains(t, logs.String(), "wait_seconds=90")
		assert.Contains(t, logs.String(), "remaining=0")
	})

	t.Run("clamps a past reset to zero", func(t *testing.T) {
		o, logs := newTestObserver(now)

		report := o.Observe(forbidden("0", now.Add(-time.Hour).Unix()))

		require.NotNil(t, report)
		assert.Equal(t, time.Duration(0), report.Wait)
		assert.Contains(t, logs.String(), "wait_seconds=0")
		assert.NotContains(t, logs.String(), "wait_seconds=-")
	})

	t.Run("treats an unparsable reset as already past", func(t *testing.T) {
		o, _ := newTestObserver(now)
		resp := forbidden("0", 0)
		resp.Header.Set(HeaderRateReset, "soon")

		report := o.Observe(resp)

		require.NotNil(t, report)
		assert.Equal(t, time.Duration(0), report.Wait)
	})

	t.Run("ignores responses that are not 403", func(t *testing.T) {
		o, logs := newTestObserver(now)

		assert.Nil(t, o.Observe(&http.Response{StatusCode: http.StatusInternalServerError, Header: http.Header{}}))
		assert.Nil(t, o.Observe(nil))
		assert.Empty(t, logs.String())
	})

	t.Run("tolerates missing headers", func(t *testing.T) {
		o, _ := newTestObserver(now)

		report := o.Observe(&http.Response{StatusCode: http.StatusForbidden, Header: http.Header{}})

		require.NotNil(t, report)
		assert.Empty(t, report.Remaining)
		assert.True(t, report.ResetAt.IsZero())
	})
}
