package shared

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseListFilters(t *testing.T) {
	f := ParseListFilters(url.Values{
		"search":   {"  cola "},
		"status":   {"Inactive"},
		"category": {" 1B4E28BA-2FA1-11D2-883F-0016D3CCA427 "},
		"page":     {"3"},
		"limit":    {"500"},
	})
	assert.Equal(t, "cola", f.Search)
	require.NotNil(t, f.IsActive())
	assert.False(t, *f.IsActive())
	assert.Equal(t, "1b4e28ba-2fa1-11d2-883f-0016d3cca427", f.CategoryID)
	assert.Equal(t, MaxLimit, f.Limit)
	assert.Equal(t, 200, f.Offset())

	def := ParseListFilters(url.Values{"status": {"bogus"}})
	assert.Nil(t, def.IsActive())
	assert.Equal(t, DefaultPage, def.Page)
	assert.Equal(t, 0, def.Offset())
}

func TestParseListFiltersDropsMalformedReferenceIDs(t *testing.T) {
	f := ParseListFilters(url.Values{
		"category": {"abc"},
		"supplier": {"1b4e28ba-2fa1-11d2-883f"},
		"search":   {"rice"},
	})
	assert.Empty(t, f.CategoryID)
	assert.Empty(t, f.SupplierID)
	assert.Equal(t, "rice", f.Search)

	sql, args, err := ApplyFilters(Builder().Select("p.id").From("products p"), "p", f).ToSql()
	require.NoError(t, err)
	assert.Equal(t, "SELECT p.id FROM products p WHERE p.name ILIKE $1", sql)
	assert.Equal(t, []any{"%rice%"}, args)
}

func TestApplyFiltersComposesConditions(t *testing.T) {
	f := ListFilters{Search: "50%", Status: StatusActive, SupplierID: "s1"}
	sql, args, err := ApplyFilters(Builder().Select("p.id").From("products p"), "p", f).ToSql()
	require.NoError(t, err)
	assert.Equal(t, "SELECT p.id FROM products p WHERE p.name ILIKE $1 AND p.is_active = $2 AND p.supplier_id = $3", sql)
	assert.Equal(t, []any{`%50\%%`, true, "s1"}, args)
}

func TestParseID(t *testing.T) {
	_, err := ParseID("not-a-uuid")
	require.Error(t, err)
	id, err := ParseID(" 1b4e28ba-2fa1-11d2-883f-0016d3cca427 ")
	require.NoError(t, err)
	assert.Equal(t, "1b4e28ba-2fa1-11d2-883f-0016d3cca427", id)
}
