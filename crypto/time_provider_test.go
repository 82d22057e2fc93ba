package crypto

import (
	"testing"
	"time"

	"github.com/benbjohnson/clock"
)

var (
	_ TimeProvider = DefaultTimeProvider{}
	_ TimeProvider = clock.NewMock()
)

func TestTimeProvider_Default(t *testing.T) {
	t.Parallel()

	dp := DefaultTimeProvider{}

	before := time.Now()
	now := dp.Now()
	after := time.Now()

	if now.Before(before) || now.After(after) {
		t.Errorf("DefaultTimeProvider.Now() = %v, want between %v and %v", now, before, after)
	}

	if since := dp.Since(before); since < 0 {
		t.Errorf("DefaultTimeProvider.Since() = %v, want non-negative", since)
	}
}

func TestTimeProvider_Mock(t *testing.T) {
	t.Parallel()

	mock := clock.NewMock()
	mock.Set(time.Unix(1700000000, 0))

	var tp TimeProvider = mock
	start := tp.Now()
	mock.Add(5 * time.Second)

	if got := tp.Since(start); got != 5*time.Second {
		t.Errorf("Since() = %v, want 5s", got)
	}
}
