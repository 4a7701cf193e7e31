package testutil

import (
	"context"
	"testing"

	"github.com/HerbHall/tradeboard/internal/services"
	"github.com/HerbHall/tradeboard/internal/store"
)

// NewStore creates an in-memory SQLiteStore for testing.
// The store is automatically closed when the test completes.
func NewStore(t *testing.T) *store.SQLiteStore {
	t.Helper()
	db, err := store.New(":memory:")
	if err != nil {
		t.Fatalf("testutil.NewStore: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// NewRepos returns migrated product and order repositories over a fresh
// in-memory store. Timestamps come from clock.
func NewRepos(t *testing.T, clock *Clock) (*services.SQLiteProductRepository, *services.SQLiteOrderRepository) {
	t.Helper()
	st := NewStore(t)
	ctx := context.Background()

	products, err := services.NewSQLiteProductRepository(ctx, st, services.WithClock(clock.Now))
	if err != nil {
		t.Fatalf("testutil.NewRepos products: %v", err)
	}
	orders, err := services.NewSQLiteOrderRepository(ctx, st, services.WithClock(clock.Now))
	if err != nil {
		t.Fatalf("testutil.NewRepos orders: %v", err)
	}
	return products, orders
}
