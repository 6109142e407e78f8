package pageconfig

import (
	"context"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/wildone/asset-share-commons/internal/domain"
	dompc "github.com/wildone/asset-share-commons/internal/domain/pageconfig"
)

// Static serves page configurations declared in the service configuration.
type Static struct {
	pages map[string]dompc.Properties
}

// NewStatic creates a read-only store over the given pages.
func NewStatic(pages map[string]map[string]string) *Static {
	s := &Static{pages: make(map[string]dompc.Properties, len(pages))}
	for id, props := range pages {
		cp := make(dompc.Properties, len(props))
		for k, v := range props {
			cp[k] = v
		}
		s.pages[id] = cp
	}
	return s
}

// LoadStatic reads a YAML document mapping page ids to their properties.
func LoadStatic(path string) (*Static, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read pages %s: %w", path, err)
	}
	var pages map[string]map[string]string
	if err := yaml.Unmarshal(data, &pages); err != nil {
		return nil, fmt.Errorf("parse pages %s: %w", path, err)
	}
	return NewStatic(pages), nil
}

// Get implements usecase/pageconfig.Store.
func (s *Static) Get(_ context.Context, pageID string) (dompc.Properties, error) {
	props, ok := s.pages[pageID]
	if !ok || len(props) == 0 {
		return nil, domain.ErrNotFound
	}
	out := make(dompc.Properties, len(props))
	for k, v := range props {
		out[k] = v
	}
	return out, nil
}

type reader interface {
	Get(ctx context.Context, pageID string) (dompc.Properties, error)
}

// Chain consults stores in order and returns the first page found.
type Chain []reader

// Get implements usecase/pageconfig.Store.
func (c Chain) Get(ctx context.Context, pageID string) (dompc.Properties, error) {
	for _, s := range c {
		props, err := s.Get(ctx, pageID)
		if err == nil {
			return props, nil
		}
		if !errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
	}
	return nil, domain.ErrNotFound
}
