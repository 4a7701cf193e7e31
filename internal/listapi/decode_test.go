package listapi

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HerbHall/tradeboard/pkg/listquery"
)

func TestDecode_Defaults(t *testing.T) {
	q, err := Decode(url.Values{}, DefaultLimits)
	require.NoError(t, err)

	assert.Equal(t, 1, q.Page)
	assert.Equal(t, listquery.DefaultPageSize, q.PageSize)
	assert.Empty(t, q.Search)
	assert.Empty(t, q.Sort.Key)
	assert.Equal(t, 0, q.Filters.Len())
}

func TestDecode_RoundTripsTransform(t *testing.T) {
	tests := []struct {
		name string
		q    listquery.Query
	}{
		{"default", listquery.DefaultQuery()},
		{"search and page", listquery.NewQuery(listquery.Partial{Search: "hex bolt", Page: 3, PageSize: 25})},
		{"sort asc", listquery.NewQuery(listquery.Partial{Sort: &listquery.Sort{Key: "price", Direction: listquery.Asc}})},
		{"filters", listquery.NewQuery(listquery.Partial{Filters: listquery.Filters{}.
			Set("status", "active").
			Set("minPrice", int64(100)).
			Set("category", "valves & fittings")})},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := url.ParseQuery(listquery.Transform(tt.q).Encode())
			require.NoError(t, err)

			got, err := Decode(v, DefaultLimits)
			require.NoError(t, err)
			assert.True(t, tt.q.Equal(got), "decoded %+v, want %+v", got, tt.q)
		})
	}
}

func TestDecode_DropsEmptyFilterValues(t *testing.T) {
	v := url.Values{listquery.ParamFilters: {`{"status":"","category":null,"sellerId":"s1"}`}}

	q, err := Decode(v, DefaultLimits)
	require.NoError(t, err)
	assert.Equal(t, []string{"sellerId"}, q.Filters.Keys())
}

func TestDecode_SortWithoutOrderDefaultsDesc(t *testing.T) {
	v := url.Values{listquery.ParamSort: {`{"field":"name"}`}}

	q, err := Decode(v, DefaultLimits)
	require.NoError(t, err)
	assert.Equal(t, listquery.Sort{Key: "name", Direction: listquery.Desc}, q.Sort)
}

func TestDecode_Errors(t *testing.T) {
	lim := Limits{
		MaxPageSize: 50,
		SortKeys:    []string{"createdAt", "name"},
		FilterKeys:  []string{"status"},
	}
	tests := []struct {
		name  string
		v     url.Values
		param string
	}{
		{"page not a number", url.Values{"page": {"two"}}, listquery.ParamPage},
		{"page zero", url.Values{"page": {"0"}}, listquery.ParamPage},
		{"page size negative", url.Values{"pageSize": {"-5"}}, listquery.ParamPageSize},
		{"page size too large", url.Values{"pageSize": {"51"}}, listquery.ParamPageSize},
		{"page offset overflows", url.Values{"page": {"1152921504606846977"}, "pageSize": {"16"}}, listquery.ParamPage},
		{"sort not json", url.Values{"sort": {"name"}}, listquery.ParamSort},
		{"sort missing field", url.Values{"sort": {`{"order":"asc"}`}}, listquery.ParamSort},
		{"sort unknown field", url.Values{"sort": {`{"field":"price","order":"asc"}`}}, listquery.ParamSort},
		{"sort bad order", url.Values{"sort": {`{"field":"name","order":"up"}`}}, listquery.ParamSort},
		{"filters not object", url.Values{"filters": {`["status"]`}}, listquery.ParamFilters},
		{"filters nested", url.Values{"filters": {`{"status":{"in":["a"]}}`}}, listquery.ParamFilters},
		{"filters unknown key", url.Values{"filters": {`{"color":"red"}`}}, listquery.ParamFilters},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(tt.v, lim)
			require.Error(t, err)

			var de *DecodeError
			require.True(t, errors.As(err, &de), "error %T is not a *DecodeError", err)
			assert.Equal(t, tt.param, de.Param)
		})
	}
}

func TestListOptions(t *testing.T) {
	q := listquery.NewQuery(listquery.Partial{Page: 3, PageSize: 20, Sort: &listquery.Sort{Key: "name", Direction: listquery.Asc}})

	opts := ListOptions(q)
	assert.Equal(t, 20, opts.Limit)
	assert.Equal(t, 40, opts.Offset)
	assert.Equal(t, "name", opts.SortBy)
	assert.Equal(t, "asc", opts.SortOrder)
}

func TestFilterAccessors(t *testing.T) {
	f := listquery.Filters{}.
		Set("status", "active").
		Set("minPrice", int64(100)).
		Set("maxPrice", "2500").
		Set("ratio", 1.5).
		Set("flag", true)

	assert.Equal(t, "active", String(f, "status"))
	assert.Equal(t, "100", String(f, "minPrice"))
	assert.Equal(t, "true", String(f, "flag"))
	assert.Equal(t, "", String(f, "missing"))

	n, err := Int64(f, "minPrice")
	require.NoError(t, err)
	assert.Equal(t, int64(100), *n)

	n, err = Int64(f, "maxPrice")
	require.NoError(t, err)
	assert.Equal(t, int64(2500), *n)

	n, err = Int64(f, "missing")
	require.NoError(t, err)
	assert.Nil(t, n)

	_, err = Int64(f, "ratio")
	assert.Error(t, err)
	_, err = Int64(f, "flag")
	assert.Error(t, err)
}

func TestWriteOK_EmptyDocs(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteOK[string](rec, nil, 0)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"success":true,"data":{"docs":[],"totalCount":0}}`, rec.Body.String())
}

func TestWriteError(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteError(rec, http.StatusBadRequest, "invalid page: must be a positive integer")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"success":false,"message":"invalid page: must be a positive integer"}`, rec.Body.String())
}
