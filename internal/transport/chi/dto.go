package chi

import (
	"time"

	"github.com/wildone/asset-share-commons/internal/domain/search/result"
	healthuc "github.com/wildone/asset-share-commons/internal/usecase/health"
)

// SearchResponse is the JSON envelope of one search page.
type SearchResponse struct {
	SearchID     string      `json:"search_id"`
	Results      []AssetItem `json:"results"`
	ResultCount  int         `json:"result_count"`
	HitCount     int         `json:"hit_count"`
	TotalMatches int64       `json:"total_matches"`
	TotalGuessed bool        `json:"total_guessed"`
	StartIndex   int         `json:"start_index"`
	Limit        int         `json:"limit"`
	HasMore      bool        `json:"has_more"`
	PageCount    int         `json:"page_count"`
	ElapsedMs    float64     `json:"elapsed_ms"`
	Query        string      `json:"query,omitempty"`
}

// AssetItem is a mapped search hit.
type AssetItem struct {
	Path        string            `json:"path"`
	Title       string            `json:"title,omitempty"`
	Description string            `json:"description,omitempty"`
	MimeType    string            `json:"mime_type,omitempty"`
	Size        int64             `json:"size,omitempty"`
	Modified    *time.Time        `json:"modified,omitempty"`
	Tags        []string          `json:"tags,omitempty"`
	Properties  map[string]string `json:"properties,omitempty"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

func searchResponse(env *result.Envelope, includeQuery bool) SearchResponse {
	assets := env.Results()
	items := make([]AssetItem, 0, len(assets))
	for i := range assets {
		items = append(items, assetItem(&assets[i]))
	}

	resp := SearchResponse{
		SearchID:     env.SearchID(),
		Results:      items,
		ResultCount:  env.ResultCount(),
		HitCount:     env.HitCount(),
		TotalMatches: env.TotalMatches(),
		TotalGuessed: env.TotalGuessed(),
		StartIndex:   env.StartIndex(),
		Limit:        env.Limit(),
		HasMore:      env.HasMore(),
		PageCount:    env.PageCount(),
		ElapsedMs:    float64(env.Elapsed().Microseconds()) / 1000,
	}
	if includeQuery {
		resp.Query = env.Query()
	}
	return resp
}

func assetItem(a *result.Asset) AssetItem {
	item := AssetItem{
		Path:        a.Path(),
		Title:       a.Title(),
		Description: a.Description(),
		MimeType:    a.MimeType(),
		Size:        a.Size(),
		Tags:        a.Tags(),
		Properties:  a.Properties(),
	}
	if m := a.Modified(); !m.IsZero() {
		item.Modified = &m
	}
	return item
}

func healthResponse(r healthuc.Report) HealthResponse {
	checks := make(map[string]string, len(r.Checks))
	for k, v := range r.Checks {
		checks[k] = string(v)
	}
	return HealthResponse{Status: string(r.Status), Checks: checks}
}
