package client

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HerbHall/tradeboard/internal/server"
	"github.com/HerbHall/tradeboard/internal/testutil"
	"github.com/HerbHall/tradeboard/pkg/listquery"
	"github.com/HerbHall/tradeboard/pkg/models"
)

type row struct {
	ID string `json:"id"`
}

func serve(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	ts := httptest.NewServer(h)
	t.Cleanup(ts.Close)
	return New(ts.URL+"/", WithLogger(testutil.Logger()))
}

func TestFetcher_SendsTransformedQuery(t *testing.T) {
	var got *http.Request
	c := serve(t, func(w http.ResponseWriter, r *http.Request) {
		got = r
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success":true,"data":{"docs":[{"id":"a"}],"totalCount":1}}`))
	})

	q := listquery.NewQuery(listquery.Partial{Search: "bolt", Filters: listquery.Filters{}.Set("status", "active")})
	resp, err := Fetcher[row](c, "/api/v1/products")(context.Background(), listquery.Transform(q))
	require.NoError(t, err)

	assert.Equal(t, "/api/v1/products", got.URL.Path)
	assert.Equal(t, "bolt", got.URL.Query().Get("search"))
	assert.Equal(t, `{"status":"active"}`, got.URL.Query().Get("filters"))
	assert.Equal(t, `{"field":"createdAt","order":"desc"}`, got.URL.Query().Get("sort"))
	assert.Equal(t, "1", got.URL.Query().Get("page"))
	assert.Equal(t, "10", got.URL.Query().Get("pageSize"))
	assert.Equal(t, "tradeboard/dev", got.Header.Get("User-Agent"))

	require.True(t, resp.Success)
	assert.Equal(t, []row{{ID: "a"}}, resp.Data.Docs)
}

func TestFetcher_Responses(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		ctype       string
		body        string
		wantErr     bool
		wantSuccess bool
		wantMessage string
	}{
		{"items shape", 200, "application/json", `{"success":true,"data":{"items":[],"totalCount":0}}`, false, true, ""},
		{"envelope failure", 400, "application/json", `{"success":false,"message":"invalid page"}`, false, false, "invalid page"},
		{"failure without message", 500, "application/json", `{"success":false}`, false, false, "Internal Server Error"},
		{"problem detail", 429, "application/problem+json", `{"title":"Too Many Requests","detail":"slow down"}`, false, false, "slow down"},
		{"problem title only", 404, "application/problem+json; charset=utf-8", `{"title":"Not Found"}`, false, false, "Not Found"},
		{"html error page", 502, "text/html", `<html>bad gateway</html>`, true, false, ""},
		{"empty body", 200, "application/json", ``, true, false, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := serve(t, func(w http.ResponseWriter, _ *http.Request) {
				w.Header().Set("Content-Type", tt.ctype)
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})

			resp, err := Fetcher[row](c, "/x")(context.Background(), listquery.Params{})
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantSuccess, resp.Success)
			assert.Equal(t, tt.wantMessage, resp.Message)
		})
	}
}

func TestFetcher_NetworkError(t *testing.T) {
	ts := httptest.NewServer(http.NotFoundHandler())
	ts.Close()

	c := New(ts.URL)
	_, err := Fetcher[row](c, "/x")(context.Background(), listquery.Params{})
	assert.Error(t, err)
}

func TestFetcher_RateLimitHonorsContext(t *testing.T) {
	c := serve(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"success":true,"data":{"docs":[],"totalCount":0}}`))
	})
	WithRateLimit(0.001, 1)(c)
	fetch := Fetcher[row](c, "/x")

	_, err := fetch(context.Background(), listquery.Params{})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = fetch(ctx, listquery.Params{})
	assert.Error(t, err)
}

func TestController_AgainstServer(t *testing.T) {
	products, orders := testutil.NewRepos(t, testutil.NewClock().Step(time.Minute))
	ctx := context.Background()
	for _, p := range []models.Product{
		testutil.NewProduct(testutil.WithName("Hex Bolt"), testutil.WithPrice(120)),
		testutil.NewProduct(testutil.WithName("Hex Nut"), testutil.WithPrice(40)),
		testutil.NewProduct(testutil.WithName("Ball Valve"), testutil.WithCategory("valves")),
	} {
		require.NoError(t, products.Create(ctx, &p))
	}

	srv := server.New("", server.Deps{Products: products, Orders: orders}, testutil.Logger())
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	notes := testutil.NewNotifier()
	ctrl := listquery.New(Fetcher[models.Product](New(ts.URL), "/api/v1/products"),
		listquery.WithNotifier(notes),
		listquery.WithLogger(testutil.Logger()),
	)
	defer ctrl.Close()

	ctrl.Wait()
	st := ctrl.State()
	require.Equal(t, listquery.StatusSuccess, st.Status)
	assert.Equal(t, 3, st.TotalCount)

	ctrl.SetFilter("category", "fasteners")
	ctrl.SetSort("price", listquery.Asc)
	ctrl.Wait()
	st = ctrl.State()
	require.Len(t, st.Items, 2)
	assert.Equal(t, "Hex Nut", st.Items[0].Name)
	assert.Equal(t, 1, st.Query.Page)

	// A filter the server rejects surfaces its message once.
	ctrl.SetFilter("color", "red")
	ctrl.Wait()
	st = ctrl.State()
	assert.Equal(t, listquery.StatusError, st.Status)
	assert.Empty(t, st.Items)
	assert.Equal(t, 0, st.TotalCount)

	var appErr *listquery.ApplicationError
	require.True(t, errors.As(st.Err, &appErr))
	require.Len(t, notes.Notifications(), 1)
	assert.Contains(t, notes.Notifications()[0].Message, `unsupported filter "color"`)
}
