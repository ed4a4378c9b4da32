package source

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTargetRoundTrip(t *testing.T) {
	dir := t.TempDir()
	discount := 30.0
	sheet := Sheet{
		Name:   "sheet_a",
		Suffix: "a",
		Offers: []SheetOffer{
			{ID: 1, InternalName: "Preorder-100-CA-Seat-0902-30", ShippingText: "02 Sep 2025", Discount: &discount},
			{ID: 2, InternalName: "Preorder-16wks-40", ShippingText: "112 days after checkout"},
		},
		Rows: []SheetVariant{
			{OfferID: 1, VariantID: "45000000001", Discount: &discount},
			{OfferID: 2, VariantID: "45000000002"},
		},
	}
	require.NoError(t, WriteTarget(dir, sheet))

	offers, variants, err := ReadTarget(dir, "a")
	require.NoError(t, err)

	require.Len(t, offers, 2)
	assert.Equal(t, sheet.Offers[0].InternalName, offers[0].InternalName)
	assert.Equal(t, sheet.Offers[0].ShippingText, offers[0].ShippingText)
	require.NotNil(t, offers[0].Discount)
	assert.Equal(t, 30.0, *offers[0].Discount)
	assert.Nil(t, offers[1].Discount)

	require.Len(t, variants, 2)
	assert.Equal(t, 1, variants[0].OfferID)
	assert.Equal(t, "45000000001", variants[0].VariantID)
	assert.Equal(t, 2, variants[1].OfferID)
	assert.Equal(t, "45000000002", variants[1].VariantID)
}

func TestReadTargetMissingFile(t *testing.T) {
	_, _, err := ReadTarget(t.TempDir(), "nope")
	require.Error(t, err)
}
