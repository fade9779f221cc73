package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/venturesonar/venturesonar/internal/application/acquisition"
	"github.com/venturesonar/venturesonar/internal/application/geomap"
	"github.com/venturesonar/venturesonar/internal/application/selection"
	"github.com/venturesonar/venturesonar/internal/config"
	"github.com/venturesonar/venturesonar/internal/domain/record"
	"github.com/venturesonar/venturesonar/internal/infrastructure/analysis"
	"github.com/venturesonar/venturesonar/internal/infrastructure/monitoring/logging"
)

// fakeUpstream plays the analysis service for a full pipeline run: the
// investor endpoint throttles twice before succeeding, one competitor has no
// coordinates, and one carries an out-of-range threat score.
type fakeUpstream struct {
	vcsCalls atomic.Int32
}

func (u *fakeUpstream) handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /audience-map", func(w http.ResponseWriter, r *http.Request) {
		writeBody(w, `{
			"type": "FeatureCollection",
			"features": [
				{"type": "Feature",
				 "geometry": {"type": "Point", "coordinates": [-0.1276, 51.5072]},
				 "properties": {"name": "Shoreditch", "weight": 5, "target_fit": "strong"}},
				{"type": "Feature",
				 "geometry": {"type": "Point", "coordinates": [-1.2577, 51.7520]},
				 "properties": {"name": "Oxford", "weight": 3}},
				{"type": "Feature",
				 "geometry": {"type": "Point", "coordinates": [-2.2426, 53.4808]},
				 "properties": {"name": "Manchester", "weight": 1}}
			]
		}`)
	})

	mux.HandleFunc("POST /find-competitors", func(w http.ResponseWriter, r *http.Request) {
		writeBody(w, `{
			"success": true,
			"total_found": 2,
			"competitors": [
				{"company_name": "LegalEagle AI", "location": "London, UK",
				 "threat_score": 85,
				 "coordinates": {"latitude": 51.5072, "longitude": -0.1276},
				 "explanation": {"angle": ["contract triage"], "gaps": ["no UK case law"]}},
				{"company_name": "Briefly", "location": "remote", "threat_score": 4}
			]
		}`)
	})

	mux.HandleFunc("POST /find-cofounders", func(w http.ResponseWriter, r *http.Request) {
		writeBody(w, `{
			"success": true,
			"total_found": 1,
			"cofounders": [
				{"name": "Priya Raman", "location": "Cambridge, UK", "match_score": 9,
				 "coordinates": {"latitude": 52.2053, "longitude": 0.1218}}
			]
		}`)
	})

	mux.HandleFunc("POST /find-vcs", func(w http.ResponseWriter, r *http.Request) {
		if u.vcsCalls.Add(1) <= 2 {
			http.Error(w, "rate limit exceeded", http.StatusTooManyRequests)
			return
		}
		writeBody(w, `{
			"success": true,
			"total_found": 1,
			"vcs": [
				{"name": "Ada Chen", "firm": "Foundry", "location": "London, UK",
				 "match_score": 7,
				 "coordinates": {"latitude": 51.5072, "longitude": -0.1276}}
			]
		}`)
	})

	mux.HandleFunc("POST /comprehensive-market-analysis", func(w http.ResponseWriter, r *http.Request) {
		writeBody(w, `{
			"queries_analyzed": ["legal ai", "contract review"],
			"google_trends": [{"2025-06": 64}, {"2025-12": 71}],
			"how_AI_proof_it_is": 7,
			"market_cap_estimation": 4200000000
		}`)
	})

	return mux
}

func writeBody(w http.ResponseWriter, body string) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(body))
}

func newScenarioStack(t *testing.T) *testStack {
	t.Helper()

	upstream := &fakeUpstream{}
	server := httptest.NewServer(upstream.handler())
	t.Cleanup(server.Close)

	client, err := analysis.NewClient(config.AnalysisConfig{
		BaseURL:        server.URL,
		Timeout:        5 * time.Second,
		MaxRetries:     2,
		InitialBackoff: time.Millisecond,
	})
	require.NoError(t, err)

	orch := acquisition.NewOrchestrator(client, testAcqConfig())
	t.Cleanup(orch.Close)

	resolver := geomap.NewResolver(0.012, 0.3, 1)
	ctrl := selection.NewController(logging.NewNopLogger())

	router := gin.New()
	api := router.Group("/api/v1")
	NewRunHandler(orch).RegisterRoutes(api)
	NewMapHandler(orch, resolver).RegisterRoutes(api)
	NewSelectionHandler(orch, ctrl).RegisterRoutes(api)
	NewNoticeHandler(orch).RegisterRoutes(api)

	return &testStack{router: router, orch: orch}
}

func TestPipeline_EndToEnd(t *testing.T) {
	s := newScenarioStack(t)
	s.submitAndWait(t, "AI legal assistant for small firms")

	w := s.request(http.MethodGet, "/api/v1/runs/current", "")
	require.Equal(t, http.StatusOK, w.Code)

	var snap acquisition.Snapshot
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &snap))

	// Every category settles despite the investor endpoint throttling twice.
	for _, cat := range record.AllCategories() {
		assert.Equal(t, acquisition.StatusSuccess, snap.Categories[cat].Status, cat)
	}

	require.Len(t, snap.Demographics, 3)
	weights := []float64{snap.Demographics[0].Weight, snap.Demographics[1].Weight, snap.Demographics[2].Weight}
	assert.Equal(t, []float64{5, 3, 1}, weights)

	// The out-of-range threat score is clamped at decode time.
	require.Len(t, snap.Competitors, 2)
	assert.Equal(t, 10, snap.Competitors[0].ThreatScore)
	assert.Nil(t, snap.Competitors[1].Coordinates)
	assert.Equal(t, 2, snap.TotalFound[record.CategoryCompetitors])

	require.NotNil(t, snap.Market)
	assert.Equal(t, 7, snap.Market.ResilienceScore)
	assert.Equal(t, 4.2e9, snap.Market.MarketCapUSD)
	require.Len(t, snap.Market.TrendSeries, 2)
	assert.Equal(t, "2025-06", snap.Market.TrendSeries[0].Period)
}

func TestPipeline_PinsAndHeatmap(t *testing.T) {
	s := newScenarioStack(t)
	s.submitAndWait(t, "AI legal assistant for small firms")

	w := s.request(http.MethodGet, "/api/v1/map/pins", "")
	require.Equal(t, http.StatusOK, w.Code)
	var pinsResp PinsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &pinsResp))

	// Briefly has no coordinates, so three pins: one competitor, one
	// cofounder, one investor.
	require.Len(t, pinsResp.Pins, 3)
	names := make(map[string]bool, 3)
	for _, pin := range pinsResp.Pins {
		names[pin.Name] = true
	}
	assert.True(t, names["LegalEagle AI"])
	assert.True(t, names["Ada Chen (Foundry)"])
	assert.False(t, names["Briefly"])

	w = s.request(http.MethodGet, "/api/v1/map/heatmap", "")
	require.Equal(t, http.StatusOK, w.Code)
	var layer geomap.HeatmapLayerSpec
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &layer))
	assert.True(t, layer.Visible)
	assert.Len(t, layer.Points, 3)
}

func TestPipeline_DemographicSelectionCarriesMarketStats(t *testing.T) {
	s := newScenarioStack(t)
	s.submitAndWait(t, "AI legal assistant for small firms")

	w := s.request(http.MethodPost, "/api/v1/selection", `{"category":"demographics","index":0}`)
	require.Equal(t, http.StatusOK, w.Code)

	var state selection.State
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &state))
	require.NotNil(t, state.Selection)
	assert.Equal(t, "Shoreditch", state.Selection.DisplayName)
	assert.Equal(t, 5.0, state.Selection.Weight)
	require.NotNil(t, state.Selection.Market)
	assert.Equal(t, 4.2e9, state.Selection.Market.MarketCapUSD)
	assert.Equal(t, []string{"legal ai", "contract review"}, state.Selection.Market.Keywords)
}

func TestPipeline_CompetitorSelectionShowsClampedScore(t *testing.T) {
	s := newScenarioStack(t)
	s.submitAndWait(t, "AI legal assistant for small firms")

	w := s.request(http.MethodPost, "/api/v1/selection", `{"category":"competitors","index":0}`)
	require.Equal(t, http.StatusOK, w.Code)

	var state selection.State
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &state))
	require.NotNil(t, state.Selection)
	require.NotNil(t, state.Selection.Score)
	assert.Equal(t, 10.0, state.Selection.Score.Value)
	assert.Equal(t, selection.HigherIsWorse, state.Selection.Score.Direction)
	require.NotNil(t, state.Selection.Explanation)
	assert.Equal(t, "angle", state.Selection.Explanation.Sections[0].Title)
}
