// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package score

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/license-ranker/internal/httputil"
	"github.com/pdiddy/license-ranker/pkg/types"
)

func init() {
	httputil.RetryBaseDelay = time.Millisecond
}

func candidates(names ...string) []types.CandidateRecord {
	out := make([]types.CandidateRecord, len(names))
	for i, n := range names {
		out[i] = types.CandidateRecord{Name: n, Index: i, Line: i * 2}
	}
	return out
}

// fixedScores returns a provider that looks scores up by name and fails for
// unknown names.
func fixedScores(m map[string]float64) Provider {
	return ProviderFunc(func(_ context.Context, name string) (float64, error) {
		s, ok := m[name]
		if !ok {
			return 0, errors.New("no reviews for " + name)
		}
		return s, nil
	})
}

func TestRandom_RangeAndRounding(t *testing.T) {
	r := NewRandom()
	for i := 0; i < 500; i++ {
		s, err := r.Score(context.Background(), fmt.Sprintf("Counselor %d", i))
		require.NoError(t, err)
		assert.GreaterOrEqual(t, s, DefaultMin)
		assert.LessOrEqual(t, s, DefaultMax)
		assert.InDelta(t, math.Round(s*100)/100, s, 1e-9, "two decimal places")
	}
}

func TestRandom_SeedReproducible(t *testing.T) {
	a, b := NewSeededRandom(42), NewSeededRandom(42)
	for i := 0; i < 20; i++ {
		name := fmt.Sprintf("Counselor %d", i)
		sa, _ := a.Score(context.Background(), name)
		sb, _ := b.Score(context.Background(), name)
		assert.Equal(t, sa, sb)
	}
}

func TestRandom_ScoreDependsOnNameNotCallOrder(t *testing.T) {
	r := NewSeededRandom(7)
	first, _ := r.Score(context.Background(), "Jane Doe")
	for i := 0; i < 10; i++ {
		r.Score(context.Background(), fmt.Sprintf("other %d", i))
	}
	again, _ := r.Score(context.Background(), "Jane Doe")
	assert.Equal(t, first, again)

	distinct := map[float64]bool{}
	for i := 0; i < 50; i++ {
		s, _ := r.Score(context.Background(), fmt.Sprintf("Counselor %d", i))
		distinct[s] = true
	}
	assert.Greater(t, len(distinct), 10, "names should not collapse onto one score")
}

func TestRandom_SeedsDiffer(t *testing.T) {
	a, b := NewSeededRandom(1), NewSeededRandom(2)
	same := 0
	for i := 0; i < 20; i++ {
		name := fmt.Sprintf("Counselor %d", i)
		sa, _ := a.Score(context.Background(), name)
		sb, _ := b.Score(context.Background(), name)
		if sa == sb {
			same++
		}
	}
	assert.Less(t, same, 20)
}

func TestScoreAll_SeededRandomIsOrderIndependent(t *testing.T) {
	names := make([]string, 40)
	for i := range names {
		names[i] = fmt.Sprintf("Counselor %02d", i)
	}
	want, _, err := ScoreAll(context.Background(), NewSeededRandom(1), candidates(names...), Options{Concurrency: 1})
	require.NoError(t, err)

	for range 20 {
		got, _, err := ScoreAll(context.Background(), NewSeededRandom(1), candidates(names...), Options{Concurrency: 8})
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
}

func TestRandom_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewSeededRandom(1).Score(ctx, "x")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestScoreAll_PreservesExtractionOrder(t *testing.T) {
	// Later candidates finish first.
	delays := map[string]time.Duration{"A": 30 * time.Millisecond, "B": 10 * time.Millisecond, "C": 0}
	p := ProviderFunc(func(ctx context.Context, name string) (float64, error) {
		time.Sleep(delays[name])
		return map[string]float64{"A": 4.0, "B": 4.9, "C": 4.9}[name], nil
	})

	scored, skipped, err := ScoreAll(context.Background(), p, candidates("A", "B", "C"), Options{Concurrency: 3})
	require.NoError(t, err)
	assert.Empty(t, skipped)
	assert.Equal(t, []types.ScoredRecord{
		{Name: "A", Score: 4.0, Index: 0},
		{Name: "B", Score: 4.9, Index: 1},
		{Name: "C", Score: 4.9, Index: 2},
	}, scored)
}

func TestScoreAll_SkipsFailures(t *testing.T) {
	p := ProviderFunc(func(_ context.Context, name string) (float64, error) {
		switch name {
		case "bad":
			return 0, errors.New("quota exceeded")
		case "nan":
			return math.NaN(), nil
		}
		return 4.2, nil
	})

	scored, skipped, err := ScoreAll(context.Background(), p, candidates("ok1", "bad", "nan", "ok2"), Options{})
	require.NoError(t, err)

	assert.Equal(t, []types.ScoredRecord{
		{Name: "ok1", Score: 4.2, Index: 0},
		{Name: "ok2", Score: 4.2, Index: 3},
	}, scored)
	require.Len(t, skipped, 2)
	assert.Equal(t, "bad", skipped[0].Record.Name)
	assert.EqualError(t, skipped[0].Err, "quota exceeded")
	assert.ErrorIs(t, skipped[1].Err, ErrInvalidScore)
}

func TestScoreAll_TimeoutSkips(t *testing.T) {
	p := ProviderFunc(func(ctx context.Context, name string) (float64, error) {
		if name == "slow" {
			<-ctx.Done()
			return 0, ctx.Err()
		}
		return 5.0, nil
	})

	scored, skipped, err := ScoreAll(context.Background(), p, candidates("slow", "fast"), Options{CallTimeout: 20 * time.Millisecond})
	require.NoError(t, err)
	assert.Equal(t, []types.ScoredRecord{{Name: "fast", Score: 5.0, Index: 1}}, scored)
	require.Len(t, skipped, 1)
	assert.ErrorIs(t, skipped[0].Err, context.DeadlineExceeded)
}

func TestScoreAll_ParentCancelAborts(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	p := ProviderFunc(func(ctx context.Context, _ string) (float64, error) {
		cancel()
		<-ctx.Done()
		return 0, ctx.Err()
	})

	scored, _, err := ScoreAll(ctx, p, candidates("A", "B"), Options{Concurrency: 1})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, scored)
}

func TestScoreAll_BoundedConcurrency(t *testing.T) {
	var inFlight, peak int32
	p := ProviderFunc(func(context.Context, string) (float64, error) {
		n := atomic.AddInt32(&inFlight, 1)
		for {
			old := atomic.LoadInt32(&peak)
			if n <= old || atomic.CompareAndSwapInt32(&peak, old, n) {
				break
			}
		}
		time.Sleep(5 * time.Millisecond)
		atomic.AddInt32(&inFlight, -1)
		return 4.0, nil
	})

	scored, _, err := ScoreAll(context.Background(), p, candidates("a", "b", "c", "d", "e", "f", "g", "h"), Options{Concurrency: 2})
	require.NoError(t, err)
	assert.Len(t, scored, 8)
	assert.LessOrEqual(t, atomic.LoadInt32(&peak), int32(2))
}

func TestScoreAll_Empty(t *testing.T) {
	scored, skipped, err := ScoreAll(context.Background(), fixedScores(nil), nil, Options{})
	require.NoError(t, err)
	assert.Empty(t, scored)
	assert.Empty(t, skipped)
}

func TestHTTP_Score(t *testing.T) {
	var gotAuth, gotName string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotName = r.URL.Query().Get("name")
		switch gotName {
		case "Jane Doe":
			w.Write([]byte(`{"name":"Jane Doe","score":4.7}`))
		case "No Score":
			w.Write([]byte(`{"name":"No Score"}`))
		case "Garbled":
			w.Write([]byte(`not json`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer ts.Close()

	h := &HTTP{Client: ts.Client(), BaseURL: ts.URL + "/v1/reviews", APIKey: "rk_test"}

	s, err := h.Score(context.Background(), "Jane Doe")
	require.NoError(t, err)
	assert.Equal(t, 4.7, s)
	assert.Equal(t, "Bearer rk_test", gotAuth)
	assert.Equal(t, "Jane Doe", gotName)

	_, err = h.Score(context.Background(), "No Score")
	assert.ErrorContains(t, err, "has no score")

	_, err = h.Score(context.Background(), "Garbled")
	assert.ErrorContains(t, err, "parsing review response")

	_, err = h.Score(context.Background(), "Unknown Person")
	assert.ErrorContains(t, err, "HTTP 404")
}

func TestHTTP_RetriesThrottling(t *testing.T) {
	var calls int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Write([]byte(`{"score":3.9}`))
	}))
	defer ts.Close()

	s, err := (&HTTP{Client: ts.Client(), BaseURL: ts.URL}).Score(context.Background(), "Bob Smith")
	require.NoError(t, err)
	assert.Equal(t, 3.9, s)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestHTTP_FailuresBecomeSkips(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("name") == "Bob Smith" {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte(`{"score":4.5}`))
	}))
	defer ts.Close()

	h := &HTTP{Client: ts.Client(), BaseURL: ts.URL}
	scored, skipped, err := ScoreAll(context.Background(), h, candidates("Jane Doe", "Bob Smith"), Options{})
	require.NoError(t, err)
	assert.Equal(t, []types.ScoredRecord{{Name: "Jane Doe", Score: 4.5, Index: 0}}, scored)
	require.Len(t, skipped, 1)
	assert.Equal(t, "Bob Smith", skipped[0].Record.Name)
}
