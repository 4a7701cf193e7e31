package server

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/HerbHall/tradeboard/internal/listapi"
	"github.com/HerbHall/tradeboard/internal/services"
	"github.com/HerbHall/tradeboard/pkg/listquery"
)

// Filter keys accepted by the list routes.
var (
	productFilterKeys = []string{"status", "category", "sellerId", "minPrice", "maxPrice"}
	orderFilterKeys   = []string{"status", "buyerId", "sellerId"}
)

func (s *Server) limits(sortKeys, filterKeys []string) listapi.Limits {
	return listapi.Limits{
		DefaultPageSize: s.defaultPageSize,
		MaxPageSize:     s.maxPageSize,
		SortKeys:        sortKeys,
		FilterKeys:      filterKeys,
	}
}

// handleListProducts answers the product list view.
//
//	GET /api/v1/products?search=&filters={"status":"active"}&sort={"field":"price","order":"asc"}&page=1&pageSize=10
func (s *Server) handleListProducts(w http.ResponseWriter, r *http.Request) {
	q, err := listapi.Decode(r.URL.Query(), s.limits(services.ProductSortKeys(), productFilterKeys))
	if err != nil {
		listapi.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	filter, err := productFilter(q)
	if err != nil {
		listapi.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := s.deps.Products.List(r.Context(), filter, listapi.ListOptions(q))
	if err != nil {
		s.logger.Warn("failed to list products", zap.Error(err),
			zap.String("request_id", RequestIDFromContext(r.Context())))
		listapi.WriteError(w, http.StatusInternalServerError, "failed to list products")
		return
	}
	s.metrics.observePage("products", len(result.Items))
	listapi.WriteOK(w, result.Items, result.Total)
}

func productFilter(q listquery.Query) (services.ProductFilter, error) {
	f := services.ProductFilter{
		Status:   listapi.String(q.Filters, "status"),
		Category: listapi.String(q.Filters, "category"),
		SellerID: listapi.String(q.Filters, "sellerId"),
		Search:   q.Search,
	}
	var err error
	if f.MinPriceCents, err = listapi.Int64(q.Filters, "minPrice"); err != nil {
		return f, err
	}
	if f.MaxPriceCents, err = listapi.Int64(q.Filters, "maxPrice"); err != nil {
		return f, err
	}
	return f, nil
}

func (s *Server) handleGetProduct(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	p, err := s.deps.Products.Get(r.Context(), id)
	if errors.Is(err, services.ErrNotFound) {
		NotFound(w, "product "+id+" not found", r.URL.Path)
		return
	}
	if err != nil {
		s.logger.Warn("failed to get product", zap.String("id", id), zap.Error(err))
		InternalError(w, "failed to get product", r.URL.Path)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// handleListOrders answers the order list view of the seller console and
// the admin back-office.
func (s *Server) handleListOrders(w http.ResponseWriter, r *http.Request) {
	q, err := listapi.Decode(r.URL.Query(), s.limits(services.OrderSortKeys(), orderFilterKeys))
	if err != nil {
		listapi.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	filter := services.OrderFilter{
		Status:   listapi.String(q.Filters, "status"),
		BuyerID:  listapi.String(q.Filters, "buyerId"),
		SellerID: listapi.String(q.Filters, "sellerId"),
		Search:   q.Search,
	}

	result, err := s.deps.Orders.List(r.Context(), filter, listapi.ListOptions(q))
	if err != nil {
		s.logger.Warn("failed to list orders", zap.Error(err),
			zap.String("request_id", RequestIDFromContext(r.Context())))
		listapi.WriteError(w, http.StatusInternalServerError, "failed to list orders")
		return
	}
	s.metrics.observePage("orders", len(result.Items))
	listapi.WriteOK(w, result.Items, result.Total)
}

func (s *Server) handleGetOrder(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	o, err := s.deps.Orders.Get(r.Context(), id)
	if errors.Is(err, services.ErrNotFound) {
		NotFound(w, "order "+id+" not found", r.URL.Path)
		return
	}
	if err != nil {
		s.logger.Warn("failed to get order", zap.String("id", id), zap.Error(err))
		InternalError(w, "failed to get order", r.URL.Path)
		return
	}
	writeJSON(w, http.StatusOK, o)
}
