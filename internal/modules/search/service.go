package search

import (
	"strings"

	"github.com/rs/zerolog"

	"github.com/areddy/alphaseeker/internal/clients/yahoo"
	"github.com/areddy/alphaseeker/internal/domain"
)

// Finder is the symbol lookup the service delegates to
type Finder interface {
	Search(query string) ([]yahoo.SearchMatch, error)
}

// Service wraps symbol search with region-aware exchange filtering
type Service struct {
	finder Finder
	log    zerolog.Logger
}

// NewService creates a search service
func NewService(finder Finder, log zerolog.Logger) *Service {
	return &Service{
		finder: finder,
		log:    log.With().Str("service", "search").Logger(),
	}
}

var indiaExchanges = map[string]bool{
	"NSI": true,
	"BSE": true,
	"NSE": true,
}

// Find looks up symbols matching a query, keeping only listings tradable in
// the requested region
func (s *Service) Find(query string, region domain.Region) ([]yahoo.SearchMatch, error) {
	matches, err := s.finder.Search(query)
	if err != nil {
		return nil, err
	}

	filtered := make([]yahoo.SearchMatch, 0, len(matches))
	for _, m := range matches {
		if matchesRegion(m, region) {
			filtered = append(filtered, m)
		}
	}
	return filtered, nil
}

func matchesRegion(m yahoo.SearchMatch, region domain.Region) bool {
	if region == domain.RegionIndia {
		return strings.HasSuffix(m.Symbol, ".NS") ||
			strings.HasSuffix(m.Symbol, ".BO") ||
			indiaExchanges[m.Exchange]
	}
	// US listings carry bare symbols without a country suffix
	return !strings.Contains(m.Symbol, ".")
}
