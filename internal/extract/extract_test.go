package extract_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"empire-monitor/internal/extract"
)

func TestFields_TypedExtraction(t *testing.T) {
	fragment := `{"id":433895123,"market_name":"AK-47 | Redline (Field-Tested)","wear":0.23456,` +
		`"market_value":185000,"above_recommended_price":-4.2,"is_commodity":false,"price_is_unreliable":true}`

	fields := extract.Fields(fragment, []extract.FieldSpec{
		{Name: "id", Kind: extract.Int},
		{Name: "market_name", Kind: extract.String},
		{Name: "wear", Kind: extract.Float},
		{Name: "market_value", Kind: extract.Int},
		{Name: "above_recommended_price", Kind: extract.Float},
		{Name: "is_commodity", Kind: extract.Bool},
		{Name: "price_is_unreliable", Kind: extract.Bool},
	})

	assert.Equal(t, int64(433895123), fields["id"])
	assert.Equal(t, "AK-47 | Redline (Field-Tested)", fields["market_name"])
	assert.Equal(t, 0.23456, fields["wear"])
	assert.Equal(t, int64(185000), fields["market_value"])
	assert.Equal(t, -4.2, fields["above_recommended_price"])
	assert.Equal(t, false, fields["is_commodity"])
	assert.Equal(t, true, fields["price_is_unreliable"])
}

func TestFields_AbsentFieldsOmitted(t *testing.T) {
	fields := extract.Fields(`{"id":7}`, []extract.FieldSpec{
		{Name: "id", Kind: extract.Int},
		{Name: "market_name", Kind: extract.String},
		{Name: "wear", Kind: extract.Float},
	})

	assert.Equal(t, int64(7), fields["id"])
	_, hasName := fields["market_name"]
	assert.False(t, hasName)
	_, hasWear := fields["wear"]
	assert.False(t, hasWear)
}

// A single malformed sub-object must not prevent extracting well-formed
// sibling fields.
func TestFields_MalformedFragment(t *testing.T) {
	fragment := `{"id":42,"icon_url":"\ud83d broken,"market_value":1000,"suggested_price":900`

	fields := extract.Fields(fragment, []extract.FieldSpec{
		{Name: "id", Kind: extract.Int},
		{Name: "market_value", Kind: extract.Int},
		{Name: "suggested_price", Kind: extract.Int},
	})

	assert.Equal(t, int64(42), fields["id"])
	assert.Equal(t, int64(1000), fields["market_value"])
	assert.Equal(t, int64(900), fields["suggested_price"])
}

func TestFields_OrderIndependent(t *testing.T) {
	fragment := `{"id":1,"market_value":500,"market_name":"Widget"}`
	ab := []extract.FieldSpec{
		{Name: "market_value", Kind: extract.Int},
		{Name: "market_name", Kind: extract.String},
	}
	ba := []extract.FieldSpec{
		{Name: "market_name", Kind: extract.String},
		{Name: "market_value", Kind: extract.Int},
	}

	assert.Equal(t, extract.Fields(fragment, ab), extract.Fields(fragment, ba))
}

// The same key can appear at two nesting levels. Unscoped extraction is
// first-match; scoping to the embedded section picks the nested value.
func TestFields_RepeatedKeyFirstMatch(t *testing.T) {
	fragment := `{"id":9,"category":"outer","item_search":{"category":"Rifle","sub_type":"AK-47","rarity":"Classified"}}`

	top := extract.Fields(fragment, []extract.FieldSpec{{Name: "category", Kind: extract.String}})
	assert.Equal(t, "outer", top["category"])

	section, ok := extract.Section(fragment, "item_search")
	require.True(t, ok)
	scoped := extract.Fields(section, []extract.FieldSpec{
		{Name: "category", Kind: extract.String},
		{Name: "sub_type", Kind: extract.String},
		{Name: "rarity", Kind: extract.String},
	})
	assert.Equal(t, "Rifle", scoped["category"])
	assert.Equal(t, "AK-47", scoped["sub_type"])
	assert.Equal(t, "Classified", scoped["rarity"])
}

// When the key exists only inside the nested object, unscoped first-match
// already lands on the nested value; both interpretations agree.
func TestFields_NestedOnlyKey(t *testing.T) {
	fragment := `{"id":9,"item_search":{"rarity":"Covert"}}`

	top := extract.Fields(fragment, []extract.FieldSpec{{Name: "rarity", Kind: extract.String}})
	assert.Equal(t, "Covert", top["rarity"])
}

func TestSection_Missing(t *testing.T) {
	_, ok := extract.Section(`{"id":1}`, "item_search")
	assert.False(t, ok)
}

func TestSection_Unterminated(t *testing.T) {
	_, ok := extract.Section(`{"item_search":{"category":"Rifle"`, "item_search")
	assert.False(t, ok)
}

func TestMatchBracket_NestedDepth(t *testing.T) {
	s := `[1,[2,[3]]],tail`
	// Contents begin at offset 1, matching close is the third ']'.
	assert.Equal(t, 10, extract.MatchBracket(s, 1))

	deep := `[[[[42]]]]`
	assert.Equal(t, 9, extract.MatchBracket(deep, 1))
}

func TestMatchBracket_Unterminated(t *testing.T) {
	assert.Equal(t, extract.NoMatch, extract.MatchBracket(`[1,[2,[3]]`, 1))
	assert.Equal(t, extract.NoMatch, extract.MatchBracket(``, 0))
}

func TestIDList(t *testing.T) {
	assert.Equal(t, []int64{433895123}, extract.IDList(`433895123`))
	assert.Equal(t, []int64{433895123, 433895124}, extract.IDList(`433895123,433895124`))
	assert.Nil(t, extract.IDList(`no ids here`))
}

// A removal payload carrying objects instead of a bare identifier array
// exposes other numbers; only identifier-length runs come through.
func TestIDList_IgnoresSmallIntegers(t *testing.T) {
	assert.Equal(t, []int64{433895123}, extract.IDList(`{"id":433895123,"price":100}`))
	assert.Nil(t, extract.IDList(`42,100,99999`))
}

func TestAccessors(t *testing.T) {
	fields := map[string]any{
		"id":   int64(5),
		"wear": 0.1,
		"name": "x",
		"flag": true,
	}

	v, ok := extract.GetInt(fields, "id")
	require.True(t, ok)
	assert.Equal(t, int64(5), v)
	_, ok = extract.GetInt(fields, "missing")
	assert.False(t, ok)

	require.NotNil(t, extract.IntPtr(fields, "id"))
	assert.Equal(t, int64(5), *extract.IntPtr(fields, "id"))
	assert.Nil(t, extract.IntPtr(fields, "missing"))

	require.NotNil(t, extract.FloatPtr(fields, "wear"))
	assert.Equal(t, 0.1, *extract.FloatPtr(fields, "wear"))

	require.NotNil(t, extract.StrPtr(fields, "name"))
	assert.Equal(t, "x", *extract.StrPtr(fields, "name"))

	assert.True(t, extract.BoolVal(fields, "flag"))
	assert.False(t, extract.BoolVal(fields, "missing"))
}
