package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/HerbHall/tradeboard/internal/services"
	"github.com/HerbHall/tradeboard/internal/testutil"
	"github.com/HerbHall/tradeboard/pkg/models"
)

func newOrderRepo(t *testing.T) services.OrderRepository {
	t.Helper()
	_, orders := testutil.NewRepos(t, testutil.NewClock().Step(time.Minute))
	return orders
}

func TestSQLiteOrderRepository_CreateAndGet(t *testing.T) {
	repo := newOrderRepo(t)
	ctx := context.Background()

	o := testutil.NewOrder(testutil.WithTotal(12345))
	if err := repo.Create(ctx, &o); err != nil {
		t.Fatalf("Create: %v", err)
	}

	got, err := repo.Get(ctx, o.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Number != o.Number {
		t.Errorf("Number = %q, want %q", got.Number, o.Number)
	}
	if got.TotalCents != 12345 {
		t.Errorf("TotalCents = %d, want 12345", got.TotalCents)
	}
	if got.Status != models.OrderStatusPending {
		t.Errorf("Status = %q, want pending", got.Status)
	}
}

func TestSQLiteOrderRepository_CreateGeneratesNumber(t *testing.T) {
	repo := newOrderRepo(t)

	o := models.Order{BuyerID: "b", SellerID: "s"}
	if err := repo.Create(context.Background(), &o); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if o.ID == "" || o.Number == "" {
		t.Errorf("ID/Number = %q/%q, want generated", o.ID, o.Number)
	}
}

func TestSQLiteOrderRepository_UpdateStatus(t *testing.T) {
	repo := newOrderRepo(t)
	ctx := context.Background()

	o := testutil.NewOrder()
	if err := repo.Create(ctx, &o); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := repo.UpdateStatus(ctx, o.ID, models.OrderStatusShipped); err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}
	got, _ := repo.Get(ctx, o.ID)
	if got.Status != models.OrderStatusShipped {
		t.Errorf("Status = %q, want shipped", got.Status)
	}

	if err := repo.UpdateStatus(ctx, o.ID, "lost"); !errors.Is(err, services.ErrInvalid) {
		t.Errorf("invalid status = %v, want ErrInvalid", err)
	}
	if err := repo.UpdateStatus(ctx, "missing", models.OrderStatusShipped); !errors.Is(err, services.ErrNotFound) {
		t.Errorf("missing order = %v, want ErrNotFound", err)
	}
}

func TestSQLiteOrderRepository_ListFilterAndSort(t *testing.T) {
	repo := newOrderRepo(t)
	ctx := context.Background()

	fixtures := []models.Order{
		testutil.NewOrder(testutil.WithTotal(300), testutil.WithOrderSeller("s1")),
		testutil.NewOrder(testutil.WithTotal(100), testutil.WithOrderSeller("s1"),
			testutil.WithOrderStatus(models.OrderStatusShipped)),
		testutil.NewOrder(testutil.WithTotal(200), testutil.WithOrderSeller("s2"), testutil.WithBuyer("b2")),
	}
	for i := range fixtures {
		if err := repo.Create(ctx, &fixtures[i]); err != nil {
			t.Fatalf("Create %d: %v", i, err)
		}
	}

	result, err := repo.List(ctx, services.OrderFilter{SellerID: "s1"},
		services.ListOptions{SortBy: "total", SortOrder: "asc"})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if result.Total != 2 {
		t.Fatalf("Total = %d, want 2", result.Total)
	}
	if result.Items[0].TotalCents != 100 || result.Items[1].TotalCents != 300 {
		t.Errorf("order = %d,%d, want 100,300", result.Items[0].TotalCents, result.Items[1].TotalCents)
	}

	result, err = repo.List(ctx, services.OrderFilter{Status: "shipped"}, services.ListOptions{})
	if err != nil {
		t.Fatalf("List shipped: %v", err)
	}
	if result.Total != 1 {
		t.Errorf("shipped Total = %d, want 1", result.Total)
	}

	result, err = repo.List(ctx, services.OrderFilter{BuyerID: "b2"}, services.ListOptions{})
	if err != nil {
		t.Fatalf("List buyer: %v", err)
	}
	if result.Total != 1 {
		t.Errorf("buyer Total = %d, want 1", result.Total)
	}

	result, err = repo.List(ctx, services.OrderFilter{Search: fixtures[0].Number}, services.ListOptions{})
	if err != nil {
		t.Fatalf("List search: %v", err)
	}
	if result.Total != 1 || result.Items[0].ID != fixtures[0].ID {
		t.Errorf("search by number returned %d results", result.Total)
	}
}

func TestSQLiteOrderRepository_ListSearchWildcardsLiteral(t *testing.T) {
	repo := newOrderRepo(t)
	ctx := context.Background()

	for _, number := range []string{"PO_2026_01", "PO-2026-02", "PO%2026"} {
		o := testutil.NewOrder()
		o.Number = number
		if err := repo.Create(ctx, &o); err != nil {
			t.Fatalf("Create %s: %v", number, err)
		}
	}

	for search, want := range map[string]int{"_": 1, "%": 1, "PO_": 1, "2026": 3} {
		result, err := repo.List(ctx, services.OrderFilter{Search: search}, services.ListOptions{})
		if err != nil {
			t.Fatalf("List %q: %v", search, err)
		}
		if result.Total != want {
			t.Errorf("search %q: Total = %d, want %d", search, result.Total, want)
		}
	}
}
