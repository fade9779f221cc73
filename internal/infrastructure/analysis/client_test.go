package analysis

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/venturesonar/venturesonar/internal/config"
	"github.com/venturesonar/venturesonar/internal/infrastructure/cache"
	"github.com/venturesonar/venturesonar/pkg/errors"
)

func testConfig(baseURL string) config.AnalysisConfig {
	return config.AnalysisConfig{
		BaseURL:        baseURL,
		Timeout:        5 * time.Second,
		MaxRetries:     2,
		InitialBackoff: 2 * time.Second,
	}
}

// newTestClient builds a client whose sleeps are recorded instead of slept.
func newTestClient(t *testing.T, baseURL string, opts ...Option) (*Client, *[]time.Duration) {
	t.Helper()
	c, err := NewClient(testConfig(baseURL), opts...)
	require.NoError(t, err)

	delays := &[]time.Duration{}
	c.sleep = func(_ context.Context, d time.Duration) error {
		*delays = append(*delays, d)
		return nil
	}
	return c, delays
}

func TestNewClient_RejectsBadBaseURL(t *testing.T) {
	_, err := NewClient(testConfig(""))
	assert.Error(t, err)

	_, err = NewClient(testConfig("ftp://example.com"))
	assert.Error(t, err)
}

func TestFindCompetitors_DecodesEnvelope(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/find-competitors", r.URL.Path)
		w.Write([]byte(`{
			"success": true,
			"total_found": 2,
			"competitors": [
				{"company_name": "LexMachina", "location": "Menlo Park",
				 "coordinates": {"latitude": 37.45, "longitude": -122.18}, "threat_score": 8},
				{"company_name": "Stealth Legal AI", "location": "Unknown", "threat_score": 5}
			]
		}`))
	}))
	defer srv.Close()

	c, delays := newTestClient(t, srv.URL)
	result, err := c.FindCompetitors(context.Background(), "ai legal assistant")
	require.NoError(t, err)

	assert.Equal(t, 2, result.TotalFound)
	require.Len(t, result.Records, 2)
	assert.Equal(t, "LexMachina", result.Records[0].CompanyName)
	assert.NotNil(t, result.Records[0].Coordinates)
	assert.Nil(t, result.Records[1].Coordinates)
	assert.Empty(t, *delays)
}

func TestDo_RetriesOnlyOnRateLimit(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := atomic.AddInt32(&calls, 1)
		if n <= 2 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Write([]byte(`{"success": true, "total_found": 0, "vcs": []}`))
	}))
	defer srv.Close()

	c, delays := newTestClient(t, srv.URL)
	result, err := c.FindInvestors(context.Background(), "ai legal assistant")
	require.NoError(t, err)
	assert.Equal(t, 0, result.TotalFound)
	assert.Equal(t, int32(3), calls)

	// Pure exponential backoff: 2s, then 4s.
	require.Len(t, *delays, 2)
	assert.Equal(t, 2*time.Second, (*delays)[0])
	assert.Equal(t, 4*time.Second, (*delays)[1])
	assert.Less(t, (*delays)[0], (*delays)[1])
}

func TestDo_RetryBudgetExhausted(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c, delays := newTestClient(t, srv.URL)
	_, err := c.FindCofounders(context.Background(), "ai legal assistant")
	require.Error(t, err)
	assert.True(t, errors.IsRateLimited(err))
	assert.Equal(t, int32(3), calls) // initial attempt + 2 retries
	assert.Len(t, *delays, 2)
}

func TestDo_UpstreamFailureNotRetried(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c, delays := newTestClient(t, srv.URL)
	_, err := c.FindCompetitors(context.Background(), "ai legal assistant")
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeAcqUpstream, errors.GetCode(err))
	assert.Equal(t, int32(1), calls)
	assert.Empty(t, *delays)
}

func TestDo_NetworkFailureNotRetried(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	srv.Close() // dial failures from here on

	c, delays := newTestClient(t, srv.URL)
	_, err := c.FindCompetitors(context.Background(), "ai legal assistant")
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeAcqNetwork, errors.GetCode(err))
	assert.Empty(t, *delays)
}

func TestDo_TextualRateLimitMarker(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		n := atomic.AddInt32(&calls, 1)
		if n == 1 {
			// Throttling reported as plain text with a 200.
			w.Write([]byte("Rate limit exceeded, slow down"))
			return
		}
		w.Write([]byte(`{"success": true, "total_found": 0, "competitors": []}`))
	}))
	defer srv.Close()

	c, delays := newTestClient(t, srv.URL)
	_, err := c.FindCompetitors(context.Background(), "ai legal assistant")
	require.NoError(t, err)
	assert.Equal(t, int32(2), calls)
	assert.Len(t, *delays, 1)
}

func TestDo_MalformedPayloadIsDecodeError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte("<html>not json</html>"))
	}))
	defer srv.Close()

	c, _ := newTestClient(t, srv.URL)
	_, err := c.FindCompetitors(context.Background(), "ai legal assistant")
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeAcqDecode, errors.GetCode(err))
}

func TestAudienceMap_DecodesFeatureCollection(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "ai legal assistant", r.URL.Query().Get("business_idea"))
		w.Write([]byte(`{
			"type": "FeatureCollection",
			"features": [
				{"type": "Feature",
				 "geometry": {"type": "Point", "coordinates": [-0.1276, 51.5072]},
				 "properties": {"name": "Holborn", "borough": "Camden", "weight": 4,
				                "target_fit": "high", "display_name": "Holborn, Camden"}}
			],
			"metadata": {"total_locations": 1}
		}`))
	}))
	defer srv.Close()

	c, _ := newTestClient(t, srv.URL)
	fc, err := c.AudienceMap(context.Background(), "ai legal assistant")
	require.NoError(t, err)
	require.Len(t, fc.Features, 1)
	assert.Equal(t, 51.5072, fc.Features[0].Lat())
	assert.Equal(t, 4.0, fc.Features[0].Properties.Weight)
}

func TestMarketAnalysis_Decode(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{
			"queries_analyzed": ["ai legal assistant market size"],
			"google_trends": [{"2024-06": 45}, {"2024-12": 61}],
			"how_AI_proof_it_is": 7,
			"market_cap_estimation": 4200000000
		}`))
	}))
	defer srv.Close()

	c, _ := newTestClient(t, srv.URL)
	analysis, err := c.MarketAnalysis(context.Background(), "ai legal assistant")
	require.NoError(t, err)
	require.Len(t, analysis.TrendSeries, 2)
	assert.Equal(t, "2024-06", analysis.TrendSeries[0].Period)
	assert.Equal(t, 7, analysis.ResilienceScore)
}

func TestCachedResponseSkipsUpstream(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.Write([]byte(`{"success": true, "total_found": 1,
			"competitors": [{"company_name": "LexMachina", "threat_score": 8}]}`))
	}))
	defer srv.Close()

	store := cache.NewMemoryCache(time.Minute)
	c, _ := newTestClient(t, srv.URL, WithCache(store, time.Minute))

	for i := 0; i < 3; i++ {
		result, err := c.FindCompetitors(context.Background(), "ai legal assistant")
		require.NoError(t, err)
		assert.Equal(t, 1, result.TotalFound)
	}
	assert.Equal(t, int32(1), calls)
}

func TestDo_ContextCancelledDuringBackoff(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c, err := NewClient(testConfig(srv.URL))
	require.NoError(t, err)
	c.sleep = func(ctx context.Context, _ time.Duration) error { return context.Canceled }

	_, err = c.FindCompetitors(context.Background(), "ai legal assistant")
	assert.ErrorIs(t, err, context.Canceled)
}
