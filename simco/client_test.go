package simco

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/etnz/simbooks"
	"github.com/etnz/simbooks/date"
	"github.com/etnz/simbooks/internal/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

const history = `[
	{"date": "2025-10-15", "vwap": 0.41, "volume": 120000},
	{"date": "2025-10-16", "vwap": 0.43, "volume": 98000},
	{"date": "2025-10-17", "vwap": "0.44", "volume": 1000}
]`

func newServer(t *testing.T, status int, body string) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		if r.URL.Path != "/api/v3/market-price/0/1/2/" {
			http.NotFound(w, r)
			return
		}
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv, &hits
}

var water = simbooks.PriceRef{Kind: 1, Quality: 2}

func TestVWAP(t *testing.T) {
	srv, _ := newServer(t, http.StatusOK, history)
	c := New(srv.URL + "/")

	p, err := c.VWAP(context.Background(), 0, water, date.New(2025, 10, 16))
	require.NoError(t, err)
	assert.Equal(t, 0.43, p)

	p, err = c.VWAP(context.Background(), 0, water, date.New(2025, 10, 17))
	require.NoError(t, err)
	assert.Equal(t, 0.44, p)
}

func TestVWAPNoRecord(t *testing.T) {
	srv, _ := newServer(t, http.StatusOK, history)
	c := New(srv.URL)

	_, err := c.VWAP(context.Background(), 0, water, date.New(2025, 10, 1))
	assert.ErrorIs(t, err, simbooks.ErrNoPrice)

	_, err = c.VWAP(context.Background(), 0, simbooks.PriceRef{Kind: 9}, date.New(2025, 10, 16))
	assert.ErrorIs(t, err, simbooks.ErrNoPrice)
}

func TestVWAPServerError(t *testing.T) {
	srv, _ := newServer(t, http.StatusInternalServerError, "boom")
	c := New(srv.URL)

	_, err := c.VWAP(context.Background(), 0, water, date.New(2025, 10, 16))
	assert.ErrorIs(t, err, simbooks.ErrNoPrice)
}

func TestBreakerOpens(t *testing.T) {
	srv, hits := newServer(t, http.StatusBadGateway, "")
	c := New(srv.URL, WithBreaker(2, time.Minute))

	for i := 0; i < 5; i++ {
		_, err := c.VWAP(context.Background(), 0, water, date.New(2025, 10, 16))
		assert.ErrorIs(t, err, simbooks.ErrNoPrice)
	}
	assert.EqualValues(t, 2, hits.Load(), "open breaker short-circuits requests")
}

func TestVWAPSatisfiesPriceSource(t *testing.T) {
	srv, _ := newServer(t, http.StatusOK, history)
	var src simbooks.PriceSource = New(srv.URL)

	v := simbooks.NewValuer(src, nil, simbooks.WithClock(func() time.Time {
		return time.Date(2025, 10, 18, 2, 0, 0, 0, time.UTC)
	}))
	val, err := v.Value(context.Background(), 0, []simbooks.SnapshotItem{{Kind: 1, Quality: 2, Quantity: 100}}, 0)
	require.NoError(t, err)
	require.Len(t, val.Items, 1)
	assert.Equal(t, 0.43, val.Items[0].Price)
}

func TestVWAPLogsToContextLogger(t *testing.T) {
	srv, _ := newServer(t, http.StatusOK, history)
	core, logs := observer.New(zapcore.DebugLevel)
	ctx := logger.WithContext(context.Background(), zap.New(core).With(zap.String("run_id", "r1")))

	_, err := New(srv.URL).VWAP(ctx, 0, water, date.New(2025, 10, 16))
	require.NoError(t, err)

	entries := logs.FilterMessage("reference price fetched").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "r1", entries[0].ContextMap()["run_id"])
}
