package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestParseRecordPriceExtraction(t *testing.T) {
	rec, ok := parseRecord("Tomato  15-18 pcs/kg  45.50", "", nil)
	require.True(t, ok)
	assert.Equal(t, "Tomato", rec.Name)
	require.NotNil(t, rec.Specification)
	assert.Equal(t, "15-18 pcs/kg", *rec.Specification)
	require.NotNil(t, rec.Price)
	assert.Equal(t, 45.50, *rec.Price)
	assert.Equal(t, "PHP/kg", rec.Unit)
}

func TestParseRecordThousandsGrouping(t *testing.T) {
	rec, ok := parseRecord("Yellow-Fin Tuna  Frozen  1,250.00", "", nil)
	require.True(t, ok)
	require.NotNil(t, rec.Price)
	assert.Equal(t, 1250.0, *rec.Price)
}

func TestParseRecordNotAvailable(t *testing.T) {
	// "n/a" is an explicit null price, not a parse failure: the text is
	// still split into name and specification.
	rec, ok := parseRecord("Galunggong  Imported  n/a", "", nil)
	require.True(t, ok)
	assert.Nil(t, rec.Price)
	assert.Equal(t, "Galunggong", rec.Name)
	assert.Equal(t, strPtr("Imported"), rec.Specification)
}

func TestParseRecordNoPrice(t *testing.T) {
	// A line with neither a price nor an "n/a" marker yields no record.
	_, ok := parseRecord("Broccoli, Local  Medium (8 -10 cm", "", nil)
	assert.False(t, ok)
}

func TestParseRecordContinuationMerge(t *testing.T) {
	prev := "Broccoli, Local  Medium (8 -10 cm"
	rec, ok := parseRecord("diameter/bunch hd)  160.00", prev, nil)
	require.True(t, ok)
	require.NotNil(t, rec.Price)
	assert.Equal(t, 160.0, *rec.Price)
	assert.Equal(t, "Broccoli, Local", rec.Name)
	require.NotNil(t, rec.Specification)
	assert.Contains(t, *rec.Specification, "diameter/bunch hd)")
}

func TestParseRecordNoMergeAfterPricedLine(t *testing.T) {
	// The previous line already carries a price, so the current one is a
	// new row, not a wrap fragment.
	rec, ok := parseRecord("diameter spec  55.00", "Tomato  15-18 pcs/kg  45.50", nil)
	require.True(t, ok)
	assert.Equal(t, "diameter spec", rec.Name)
	require.NotNil(t, rec.Price)
	assert.Equal(t, 55.0, *rec.Price)
}

func TestParseRecordNoMergeAfterHeaderLine(t *testing.T) {
	// Page noise is never a merge candidate even when it has no price.
	rec, ok := parseRecord("1st grade onion  120.00", "Department of Agriculture", nil)
	require.True(t, ok)
	assert.Equal(t, "1st grade onion", rec.Name)
}

func TestParseRecordRejectsLeakedHeader(t *testing.T) {
	_, ok := parseRecord("SUMMARY OF PREVAILING RETAIL MARKET LEVELS  100.00", "", nil)
	assert.False(t, ok)
}

func TestParseRecordRejectsTinyName(t *testing.T) {
	_, ok := parseRecord("x  45.00", "", nil)
	assert.False(t, ok)
}

func TestSplitNameSpec(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		wantName string
		wantSpec string
	}{
		{"double space wins", "Tomato  15-18 pcs/kg", "Tomato", "15-18 pcs/kg"},
		{"comma before keywords", "Pechay, Native", "Pechay", "Native"},
		{"keyword anchor", "Bangus Medium (3-4 pcs/kg)", "Bangus", "Medium (3-4 pcs/kg)"},
		{"broken percentage", "Premium 5% broken", "Premium", "5% broken"},
		{"cut descriptor", "Beef Brisket Meat with Bones", "Beef Brisket", "Meat with Bones"},
		{"white rice anchor", "Fancy White Rice", "Fancy", "White Rice"},
		{"no separator", "Kangkong", "Kangkong", ""},
		// Double space takes priority over a keyword inside the name.
		{"keyword inside name", "Local Mackerel  Fresh", "Local Mackerel", "Fresh"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			name, spec := splitNameSpec(tt.text)
			assert.Equal(t, tt.wantName, name)
			assert.Equal(t, tt.wantSpec, spec)
		})
	}
}
