package analysis

import (
	"context"
	"net/http"
	"net/url"

	"github.com/venturesonar/venturesonar/internal/domain/record"
	"github.com/venturesonar/venturesonar/internal/infrastructure/cache"
	"github.com/venturesonar/venturesonar/pkg/geojson"
)

// ideaRequest is the body sent to the find-* endpoints.
type ideaRequest struct {
	BusinessIdea string `json:"business_idea"`
}

type competitorsEnvelope struct {
	Success     bool                `json:"success"`
	TotalFound  int                 `json:"total_found"`
	Competitors []record.Competitor `json:"competitors"`
}

type investorsEnvelope struct {
	Success    bool              `json:"success"`
	TotalFound int               `json:"total_found"`
	VCs        []record.Investor `json:"vcs"`
}

type cofoundersEnvelope struct {
	Success    bool               `json:"success"`
	TotalFound int                `json:"total_found"`
	Cofounders []record.Cofounder `json:"cofounders"`
}

// CompetitorsResult carries the competitor feed payload.  TotalFound counts
// every record the upstream returned, including ones later excluded from
// spatial rendering for missing coordinates.
type CompetitorsResult struct {
	Records    []record.Competitor `json:"records"`
	TotalFound int                 `json:"total_found"`
}

// InvestorsResult carries the investor feed payload.
type InvestorsResult struct {
	Records    []record.Investor `json:"records"`
	TotalFound int               `json:"total_found"`
}

// CofoundersResult carries the cofounder feed payload.
type CofoundersResult struct {
	Records    []record.Cofounder `json:"records"`
	TotalFound int                `json:"total_found"`
}

// AudienceMap fetches the demographic GeoJSON for an idea.
func (c *Client) AudienceMap(ctx context.Context, idea string) (*geojson.FeatureCollection, error) {
	category := string(record.CategoryDemographics)
	var fc geojson.FeatureCollection
	err := c.cached(ctx, category, idea, &fc, func(ctx context.Context) (interface{}, error) {
		var fresh geojson.FeatureCollection
		path := "/audience-map?business_idea=" + url.QueryEscape(idea)
		if err := c.do(ctx, category, http.MethodGet, path, nil, &fresh); err != nil {
			return nil, err
		}
		return &fresh, nil
	})
	if err != nil {
		return nil, err
	}
	return &fc, nil
}

// FindCompetitors fetches the competitor feed for an idea.
func (c *Client) FindCompetitors(ctx context.Context, idea string) (*CompetitorsResult, error) {
	category := string(record.CategoryCompetitors)
	var result CompetitorsResult
	err := c.cached(ctx, category, idea, &result, func(ctx context.Context) (interface{}, error) {
		var envelope competitorsEnvelope
		if err := c.do(ctx, category, http.MethodPost, "/find-competitors", ideaRequest{BusinessIdea: idea}, &envelope); err != nil {
			return nil, err
		}
		records := make([]record.Competitor, len(envelope.Competitors))
		for i, rec := range envelope.Competitors {
			rec.Normalize()
			records[i] = rec
		}
		return &CompetitorsResult{Records: records, TotalFound: envelope.TotalFound}, nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// FindCofounders fetches the cofounder feed for an idea.
func (c *Client) FindCofounders(ctx context.Context, idea string) (*CofoundersResult, error) {
	category := string(record.CategoryCofounders)
	var result CofoundersResult
	err := c.cached(ctx, category, idea, &result, func(ctx context.Context) (interface{}, error) {
		var envelope cofoundersEnvelope
		if err := c.do(ctx, category, http.MethodPost, "/find-cofounders", ideaRequest{BusinessIdea: idea}, &envelope); err != nil {
			return nil, err
		}
		records := make([]record.Cofounder, len(envelope.Cofounders))
		for i, rec := range envelope.Cofounders {
			rec.Normalize()
			records[i] = rec
		}
		return &CofoundersResult{Records: records, TotalFound: envelope.TotalFound}, nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// FindInvestors fetches the investor feed for an idea.
func (c *Client) FindInvestors(ctx context.Context, idea string) (*InvestorsResult, error) {
	category := string(record.CategoryInvestors)
	var result InvestorsResult
	err := c.cached(ctx, category, idea, &result, func(ctx context.Context) (interface{}, error) {
		var envelope investorsEnvelope
		if err := c.do(ctx, category, http.MethodPost, "/find-vcs", ideaRequest{BusinessIdea: idea}, &envelope); err != nil {
			return nil, err
		}
		records := make([]record.Investor, len(envelope.VCs))
		for i, rec := range envelope.VCs {
			rec.Normalize()
			records[i] = rec
		}
		return &InvestorsResult{Records: records, TotalFound: envelope.TotalFound}, nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// MarketAnalysis fetches the comprehensive market analysis for an idea.
func (c *Client) MarketAnalysis(ctx context.Context, idea string) (*record.MarketAnalysis, error) {
	var analysis record.MarketAnalysis
	err := c.cached(ctx, "market", idea, &analysis, func(ctx context.Context) (interface{}, error) {
		var fresh record.MarketAnalysis
		if err := c.do(ctx, "market", http.MethodPost, "/comprehensive-market-analysis", ideaRequest{BusinessIdea: idea}, &fresh); err != nil {
			return nil, err
		}
		fresh.Normalize()
		return &fresh, nil
	})
	if err != nil {
		return nil, err
	}
	return &analysis, nil
}

// cached runs the loader through the response cache when one is configured.
func (c *Client) cached(ctx context.Context, category, idea string, dest interface{}, loader func(ctx context.Context) (interface{}, error)) error {
	if c.cache == nil {
		v, err := loader(ctx)
		if err != nil {
			return err
		}
		return copyViaJSON(v, dest)
	}
	return c.cache.GetOrSet(ctx, cache.Key(category, idea), dest, c.cacheTTL, loader)
}
