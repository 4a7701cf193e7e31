// Package seed loads the embedded sample marketplace into the repositories.
package seed

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/HerbHall/tradeboard/internal/services"
	"github.com/HerbHall/tradeboard/pkg/models"
)

//go:embed catalog.yaml
var catalogRawData []byte

// ProductEntry is a product plus how many days ago it was listed.
type ProductEntry struct {
	models.Product `yaml:",inline"`
	AgeDays        int `yaml:"age_days"`
}

// OrderEntry is an order plus how many days ago it was placed.
type OrderEntry struct {
	models.Order `yaml:",inline"`
	AgeDays      int `yaml:"age_days"`
}

// Catalog is the sample data set.
type Catalog struct {
	Products []ProductEntry `yaml:"products"`
	Orders   []OrderEntry   `yaml:"orders"`
}

var (
	sampleOnce sync.Once
	sample     Catalog
	sampleErr  error
)

// Sample returns a copy of the embedded catalog, parsed on first use.
func Sample() (Catalog, error) {
	sampleOnce.Do(func() {
		sample, sampleErr = Parse(catalogRawData)
	})
	if sampleErr != nil {
		return Catalog{}, sampleErr
	}
	return Catalog{
		Products: append([]ProductEntry(nil), sample.Products...),
		Orders:   append([]OrderEntry(nil), sample.Orders...),
	}, nil
}

// Parse decodes a catalog document.
func Parse(data []byte) (Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return Catalog{}, fmt.Errorf("seed: parse yaml: %w", err)
	}
	return c, nil
}

// Stats counts what Load did.
type Stats struct {
	Products int
	Orders   int
	Skipped  int
}

// Loader inserts a catalog into the repositories.
type Loader struct {
	Products    services.ProductRepository
	Orders      services.OrderRepository
	Logger      *zap.Logger
	Now         func() time.Time
	Concurrency int
}

// Load inserts every entry of c. Entries that already exist are skipped, so
// loading the same catalog twice is harmless.
func (l *Loader) Load(ctx context.Context, c Catalog) (Stats, error) {
	logger := l.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	now := time.Now
	if l.Now != nil {
		now = l.Now
	}
	base := now().UTC()

	var products, orders, skipped atomic.Int64
	g, ctx := errgroup.WithContext(ctx)
	limit := l.Concurrency
	if limit < 1 {
		limit = 4
	}
	g.SetLimit(limit)

	for _, e := range c.Products {
		g.Go(func() error {
			p := e.Product
			p.CreatedAt = base.Add(-time.Duration(e.AgeDays) * 24 * time.Hour)
			err := l.Products.Create(ctx, &p)
			switch {
			case errors.Is(err, services.ErrAlreadyExists):
				skipped.Add(1)
				return nil
			case err != nil:
				return fmt.Errorf("seed product %s/%s: %w", p.SellerID, p.SKU, err)
			}
			products.Add(1)
			return nil
		})
	}
	for _, e := range c.Orders {
		g.Go(func() error {
			o := e.Order
			o.CreatedAt = base.Add(-time.Duration(e.AgeDays) * 24 * time.Hour)
			err := l.Orders.Create(ctx, &o)
			switch {
			case errors.Is(err, services.ErrAlreadyExists):
				skipped.Add(1)
				return nil
			case err != nil:
				return fmt.Errorf("seed order %s: %w", o.Number, err)
			}
			orders.Add(1)
			return nil
		})
	}

	err := g.Wait()
	stats := Stats{Products: int(products.Load()), Orders: int(orders.Load()), Skipped: int(skipped.Load())}
	logger.Info("seed finished",
		zap.Int("products", stats.Products),
		zap.Int("orders", stats.Orders),
		zap.Int("skipped", stats.Skipped),
		zap.Error(err),
	)
	return stats, err
}
