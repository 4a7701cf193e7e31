package listquery

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultQuery(t *testing.T) {
	q := DefaultQuery()

	assert.Equal(t, "", q.Search)
	assert.Equal(t, 0, q.Filters.Len())
	assert.Equal(t, 1, q.Page)
	assert.Equal(t, 10, q.PageSize)
	assert.Equal(t, Sort{Key: "createdAt", Direction: Desc}, q.Sort)
}

func TestNewQuery_Overrides(t *testing.T) {
	q := NewQuery(Partial{
		Search:   "valve",
		Filters:  Filters{}.Set("status", "active"),
		PageSize: 50,
		Sort:     &Sort{Key: "price", Direction: Asc},
	})

	assert.Equal(t, "valve", q.Search)
	assert.Equal(t, 1, q.Page)
	assert.Equal(t, 50, q.PageSize)
	assert.Equal(t, Sort{Key: "price", Direction: Asc}, q.Sort)
	v, _ := q.Filters.Get("status")
	assert.Equal(t, "active", v)
}

func TestNewQuery_ExplicitNoSort(t *testing.T) {
	q := NewQuery(Partial{Sort: &Sort{}})
	assert.Equal(t, "", q.Sort.Key)
}

func TestNewQuery_IgnoresInvalidPaging(t *testing.T) {
	q := NewQuery(Partial{Page: -3, PageSize: 0})
	assert.Equal(t, 1, q.Page)
	assert.Equal(t, 10, q.PageSize)
}

func TestQuery_CloneIsIndependent(t *testing.T) {
	q := DefaultQuery()
	q.Filters = q.Filters.Set("a", "1")
	cp := q.Clone()
	cp.Filters[0].Value = "2"

	v, _ := q.Filters.Get("a")
	assert.Equal(t, "1", v)
	assert.False(t, q.Equal(cp))
}

func TestQuery_Offset(t *testing.T) {
	q := DefaultQuery()
	q.Page = 3
	q.PageSize = 20
	assert.Equal(t, 40, q.Offset())
}

func TestQuery_OffsetSaturates(t *testing.T) {
	q := DefaultQuery()
	q.Page = math.MaxInt/16 + 2
	q.PageSize = 16
	assert.Equal(t, math.MaxInt, q.Offset())
}

func TestDirection_Valid(t *testing.T) {
	assert.True(t, Asc.Valid())
	assert.True(t, Desc.Valid())
	assert.False(t, Direction("up").Valid())
}
