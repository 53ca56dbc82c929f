package middleware

import (
	"context"
	"maps"
	"regexp"
	"slices"

	"github.com/aretw0/greenscreen/pkg/domain"
	"github.com/aretw0/greenscreen/pkg/ports"
)

// Masked replaces values of masked keys.
const Masked = "***"

type maskMiddleware struct {
	next     ports.ResultStore
	patterns []*regexp.Regexp
}

// NewMaskMiddleware masks scraped values whose keys match any pattern before
// they reach the store. The caller's result is left untouched.
func NewMaskMiddleware(patterns []string) (Middleware, error) {
	compiled := make([]*regexp.Regexp, len(patterns))
	for i, p := range patterns {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, err
		}
		compiled[i] = re
	}
	return func(next ports.ResultStore) ports.ResultStore {
		return &maskMiddleware{next: next, patterns: compiled}
	}, nil
}

func (m *maskMiddleware) Save(ctx context.Context, result *domain.Result) error {
	cloned := *result
	cloned.Data = maps.Clone(result.Data)
	cloned.Log = slices.Clone(result.Log)
	for k := range cloned.Data {
		if m.masks(k) {
			cloned.Data[k] = Masked
		}
	}
	return m.next.Save(ctx, &cloned)
}

func (m *maskMiddleware) masks(key string) bool {
	for _, p := range m.patterns {
		if p.MatchString(key) {
			return true
		}
	}
	return false
}

func (m *maskMiddleware) Load(ctx context.Context, runID string) (*domain.Result, error) {
	return m.next.Load(ctx, runID)
}

func (m *maskMiddleware) Delete(ctx context.Context, runID string) error {
	return m.next.Delete(ctx, runID)
}

func (m *maskMiddleware) List(ctx context.Context) ([]string, error) {
	return m.next.List(ctx)
}
