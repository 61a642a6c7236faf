package report

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"github.com/pharmakart/pharmacy-backend/internal/apperr"
)

// Defaults for the dashboard alert queries.
const (
	DefaultExpiryWindowDays  = 90
	DefaultLowStockThreshold = 10
	maxSuggestions           = 10
)

// Service answers the shop dashboard and search queries.
type Service struct {
	repo Repository
	log  zerolog.Logger
}

// NewService creates a report service.
func NewService(repo Repository, log zerolog.Logger) *Service {
	return &Service{repo: repo, log: log}
}

// Stats returns the shop dashboard summary.
func (s *Service) Stats(ctx context.Context, shopID int64) (*Stats, error) {
	return s.repo.Stats(ctx, shopID)
}

// ExpiringSoon lists in-stock batches whose expiry falls inside the window.
func (s *Service) ExpiringSoon(ctx context.Context, shopID int64, within int) ([]*BatchAlert, error) {
	if within <= 0 {
		within = DefaultExpiryWindowDays
	}
	return s.repo.ExpiringSoon(ctx, shopID, within)
}

// LowStock lists batches at or below the threshold.
func (s *Service) LowStock(ctx context.Context, shopID int64, threshold int) ([]*BatchAlert, error) {
	if threshold <= 0 {
		threshold = DefaultLowStockThreshold
	}
	return s.repo.LowStock(ctx, shopID, threshold)
}

// Search matches products by name and groups their sellable batches.
func (s *Service) Search(ctx context.Context, shopID int64, query string) ([]*SearchResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, apperr.New(apperr.Validation, "search query is required")
	}
	alerts, err := s.repo.SearchBatches(ctx, shopID, query)
	if err != nil {
		return nil, err
	}
	results := []*SearchResult{}
	byProduct := map[string]*SearchResult{}
	for _, a := range alerts {
		res, ok := byProduct[a.ProductID]
		if !ok {
			res = &SearchResult{
				ProductID:   a.ProductID,
				GenericName: a.GenericName,
				BrandName:   a.BrandName,
			}
			byProduct[a.ProductID] = res
			results = append(results, res)
		}
		res.Batches = append(res.Batches, *a)
	}
	return results, nil
}

// Suggestions returns typeahead hits for a name prefix.
func (s *Service) Suggestions(ctx context.Context, shopID int64, prefix string) ([]*Suggestion, error) {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		return []*Suggestion{}, nil
	}
	return s.repo.Suggestions(ctx, shopID, prefix, maxSuggestions)
}
