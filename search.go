package assetshare

import (
	"context"
	"fmt"
	"time"

	"github.com/wildone/asset-share-commons/internal/domain/search/predicate"
	"github.com/wildone/asset-share-commons/internal/domain/search/result"
)

// Asset is a mapped search hit.
type Asset struct {
	Path        string
	Title       string
	Description string
	MimeType    string
	Size        int64
	Modified    time.Time
	Tags        []string
	Properties  map[string]string
}

// Results is one page of search results plus paging metadata.
type Results struct {
	SearchID     string
	Assets       []Asset
	HitCount     int
	TotalMatches int64
	TotalGuessed bool
	StartIndex   int
	Limit        int
	HasMore      bool
	PageCount    int
	Elapsed      time.Duration
	// Statement is the executed backend query.
	Statement string
}

// Search runs the querybuilder parameters of one request against a page.
// Parameters the page configuration controls are overridden by it.
func (c *Client) Search(ctx context.Context, pageID string, params map[string]string) (*Results, error) {
	env, err := c.searchSvc.Search(ctx, pageID, params)
	if err != nil {
		return nil, fmt.Errorf("search %q: %w", pageID, err)
	}
	return fromEnvelope(env), nil
}

// preProcessor adapts a PreHook to usecase/search.PreProcessor.
type preProcessor PreHook

func (h preProcessor) PreProcess(ctx context.Context, params map[string]string) (predicate.Group, error) {
	out, err := h(ctx, params)
	if err != nil {
		return predicate.Group{}, fmt.Errorf("pre hook: %w", err)
	}
	return predicate.Parse(out), nil
}

// postProcessor adapts a PostHook to usecase/search.PostProcessor.
type postProcessor PostHook

func (h postProcessor) PostProcess(
	ctx context.Context, tree predicate.Group, env *result.Envelope,
) (*result.Envelope, error) {
	res, err := h(ctx, tree.Params(), fromEnvelope(env))
	if err != nil {
		return nil, fmt.Errorf("post hook: %w", err)
	}
	if res == nil {
		return nil, nil
	}
	assets := make([]result.Asset, 0, len(res.Assets))
	for _, a := range res.Assets {
		ra, err := toAsset(a)
		if err != nil {
			return nil, fmt.Errorf("post hook asset %q: %w", a.Path, err)
		}
		assets = append(assets, ra)
	}
	return env.WithResults(assets), nil
}

func fromEnvelope(env *result.Envelope) *Results {
	assets := env.Results()
	out := make([]Asset, len(assets))
	for i := range assets {
		out[i] = fromAsset(&assets[i])
	}
	return &Results{
		SearchID:     env.SearchID(),
		Assets:       out,
		HitCount:     env.HitCount(),
		TotalMatches: env.TotalMatches(),
		TotalGuessed: env.TotalGuessed(),
		StartIndex:   env.StartIndex(),
		Limit:        env.Limit(),
		HasMore:      env.HasMore(),
		PageCount:    env.PageCount(),
		Elapsed:      env.Elapsed(),
		Statement:    env.Query(),
	}
}

func fromAsset(a *result.Asset) Asset {
	return Asset{
		Path:        a.Path(),
		Title:       a.Title(),
		Description: a.Description(),
		MimeType:    a.MimeType(),
		Size:        a.Size(),
		Modified:    a.Modified(),
		Tags:        a.Tags(),
		Properties:  a.Properties(),
	}
}

func toAsset(a Asset) (result.Asset, error) {
	return result.NewAsset(a.Path, a.Title, a.Description, a.MimeType, a.Size, a.Modified, a.Tags, a.Properties)
}
