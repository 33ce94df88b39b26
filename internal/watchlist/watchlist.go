// Package watchlist implements the user-facing operations on the tracked set:
// adding a product from its store page and editing, reordering, removing or
// acknowledging tracked items. None of them touch the last refresh time.
package watchlist

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/five82/salecheck/internal/backend"
	"github.com/five82/salecheck/internal/product"
	"github.com/five82/salecheck/internal/state"
)

// ErrNotProductPage rejects URLs that are not a store product page.
var ErrNotProductPage = errors.New("not a product page")

// Service applies watchlist edits through a Store.
type Service struct {
	store    state.Store
	resolver backend.ProductResolver
}

// New returns a Service. resolver may be nil when Track is not used.
func New(store state.Store, resolver backend.ProductResolver) *Service {
	return &Service{store: store, resolver: resolver}
}

// ValidateProductURL checks that pageURL points at a product page.
func ValidateProductURL(pageURL string) error {
	u, err := url.Parse(strings.TrimSpace(pageURL))
	if err != nil || u.Host == "" {
		return notProductPage()
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return notProductPage()
	}
	if !strings.Contains(strings.ToLower(u.Hostname()), "amazon.") {
		return notProductPage()
	}
	if !strings.Contains(u.Path, "/dp/") && !strings.Contains(u.Path, "/gp/product/") {
		return notProductPage()
	}
	return nil
}

func notProductPage() error {
	return &product.ValidationError{Kind: ErrNotProductPage, Message: "Open an Amazon product page to track it."}
}

// Track resolves pageURL and appends the product. Capacity is checked before
// the remote lookup so a full list never costs a request.
func (s *Service) Track(ctx context.Context, pageURL string) (product.Record, error) {
	if err := ValidateProductURL(pageURL); err != nil {
		return product.Record{}, err
	}
	if s.resolver == nil {
		return product.Record{}, fmt.Errorf("no product resolver configured")
	}

	snap, err := s.store.Load(ctx)
	if err != nil {
		return product.Record{}, fmt.Errorf("load state: %w", err)
	}
	if err := product.CheckCapacity(snap.Products); err != nil {
		return product.Record{}, err
	}

	candidate, err := s.resolver.ProductByURL(ctx, strings.TrimSpace(pageURL))
	if err != nil {
		return product.Record{}, fmt.Errorf("resolve product: %w", err)
	}

	var added product.Record
	_, err = s.store.Update(ctx, func(cur *state.Snapshot) error {
		next, err := product.Add(cur.Products, candidate)
		if err != nil {
			return err
		}
		cur.Products = next
		added = next[len(next)-1]
		return nil
	})
	if err != nil {
		return product.Record{}, err
	}
	return added, nil
}

// List returns the tracked products in display order.
func (s *Service) List(ctx context.Context) ([]product.Record, error) {
	snap, err := s.store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load state: %w", err)
	}
	return snap.Products, nil
}

func (s *Service) Remove(ctx context.Context, id string) error {
	return s.edit(ctx, func(records []product.Record) ([]product.Record, error) {
		return product.Remove(records, id)
	})
}

// Rename sets a custom title; a blank title keeps the current one.
func (s *Service) Rename(ctx context.Context, id, title string) error {
	return s.edit(ctx, func(records []product.Record) ([]product.Record, error) {
		return product.Rename(records, id, title)
	})
}

func (s *Service) ResetTitle(ctx context.Context, id string) error {
	return s.edit(ctx, func(records []product.Record) ([]product.Record, error) {
		return product.ResetTitle(records, id)
	})
}

// Move places id at index, clamped to the list bounds.
func (s *Service) Move(ctx context.Context, id string, index int) error {
	return s.edit(ctx, func(records []product.Record) ([]product.Record, error) {
		return product.Move(records, id, index)
	})
}

// Acknowledge marks the drop on id as seen.
func (s *Service) Acknowledge(ctx context.Context, id string) error {
	return s.edit(ctx, func(records []product.Record) ([]product.Record, error) {
		return product.Acknowledge(records, id)
	})
}

func (s *Service) AcknowledgeAll(ctx context.Context) error {
	return s.edit(ctx, func(records []product.Record) ([]product.Record, error) {
		return product.AcknowledgeAll(records), nil
	})
}

func (s *Service) edit(ctx context.Context, fn func([]product.Record) ([]product.Record, error)) error {
	_, err := s.store.Update(ctx, func(cur *state.Snapshot) error {
		next, err := fn(cur.Products)
		if err != nil {
			return err
		}
		cur.Products = next
		return nil
	})
	return err
}
