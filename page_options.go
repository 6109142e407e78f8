package assetshare

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	dompc "github.com/wildone/asset-share-commons/internal/domain/pageconfig"
	pcrepo "github.com/wildone/asset-share-commons/internal/repository/pageconfig"
	pageconfiguc "github.com/wildone/asset-share-commons/internal/usecase/pageconfig"
)

// PageOption sets one property of a page configuration.
type PageOption func(dompc.Properties)

// SearchPaths restricts searches of the page to the given repository roots.
func SearchPaths(paths ...string) PageOption {
	return func(p dompc.Properties) { p[dompc.PropPaths] = strings.Join(paths, ",") }
}

// PageLimit sets the default result window size.
func PageLimit(n int) PageOption {
	return func(p dompc.Properties) { p[dompc.PropLimit] = strconv.Itoa(n) }
}

// GuessTotal caps total counting at n matches.
func GuessTotal(n int) PageOption {
	return func(p dompc.Properties) { p[dompc.PropGuessTotal] = strconv.Itoa(n) }
}

// ExactTotal asks for a continuously estimated total instead of a capped one.
func ExactTotal() PageOption {
	return func(p dompc.Properties) { p[dompc.PropGuessTotal] = dompc.GuessTotalContinuous }
}

// DefaultOrder sets the ordering used when a request names none.
func DefaultOrder(orderBy string, desc bool) PageOption {
	return func(p dompc.Properties) {
		p[dompc.PropOrderBy] = orderBy
		p[dompc.PropOrderBySort] = "asc"
		if desc {
			p[dompc.PropOrderBySort] = "desc"
		}
	}
}

// Fragments applies the named filter fragments to every search of the page.
func Fragments(names ...string) PageOption {
	return func(p dompc.Properties) { p[dompc.PropSearchPredicates] = strings.Join(names, ",") }
}

// Hidden adds constraint groups, as flat querybuilder parameters, to every search of the page.
func Hidden(groups ...map[string]string) PageOption {
	return func(p dompc.Properties) {
		raw, err := json.Marshal(groups)
		if err != nil {
			return
		}
		p[dompc.PropHiddenPredicates] = string(raw)
	}
}

func pageProperties(opts []PageOption) dompc.Properties {
	p := make(dompc.Properties, len(opts))
	for _, o := range opts {
		o(p)
	}
	return p
}

// PageService manages stored page configurations.
type PageService struct {
	repo    *pcrepo.Repo
	configs *pageconfiguc.Service
}

// Save replaces the stored configuration of a page. Saving no options clears it.
func (s *PageService) Save(ctx context.Context, pageID string, opts ...PageOption) error {
	if err := s.repo.Save(ctx, pageID, pageProperties(opts)); err != nil {
		return fmt.Errorf("save page %q: %w", pageID, err)
	}
	s.configs.Invalidate(pageID)
	return nil
}

// PageConfig is the resolved configuration of a page.
type PageConfig struct {
	Paths       []string
	Limit       int
	GuessTotal  string
	OrderBy     string
	OrderBySort string
	Fragments   []string
}

// Get returns the resolved configuration of a page, falling back to defaults.
func (s *PageService) Get(ctx context.Context, pageID string) (PageConfig, error) {
	cfg, err := s.configs.Get(ctx, pageID)
	if err != nil {
		return PageConfig{}, fmt.Errorf("get page %q: %w", pageID, err)
	}
	return PageConfig{
		Paths:       cfg.Paths(),
		Limit:       cfg.Limit(),
		GuessTotal:  cfg.GuessTotal(),
		OrderBy:     cfg.OrderBy(),
		OrderBySort: cfg.OrderBySort(),
		Fragments:   cfg.Fragments(),
	}, nil
}
