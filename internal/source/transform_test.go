package source

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeVariantID(t *testing.T) {
	assert.Equal(t, "45123456789", normalizeVariantID("45123456789"))
	assert.Equal(t, "45123456789", normalizeVariantID("45123456789.0"))
	assert.Equal(t, "45123456789", normalizeVariantID("  45123456789 "))
	assert.Equal(t, "", normalizeVariantID(""))
	assert.Equal(t, "", normalizeVariantID("#N/A"))
	assert.Equal(t, "", normalizeVariantID("#n/a"))
	assert.Equal(t, "", normalizeVariantID("not-a-number"))
	assert.Equal(t, "", normalizeVariantID("45123x456"))
}

func TestDeriveOfferWeeks(t *testing.T) {
	discount := 40.0
	name, shipping := deriveOffer("16 Weeks", "", &discount)
	assert.Equal(t, "Preorder-16wks-40", name)
	assert.Equal(t, "112 days after checkout", shipping)
}

func TestDeriveOfferWeeksUnparsable(t *testing.T) {
	discount := 40.0
	name, shipping := deriveOffer("Some Weeks", "", &discount)
	assert.Equal(t, "Some Weeks", name)
	assert.Equal(t, "0 days after checkout", shipping)
}

func TestDeriveOfferDated(t *testing.T) {
	discount := 30.0
	name, shipping := deriveOffer("100-CA-Seat", "09/02/2025", &discount)
	assert.Equal(t, "Preorder-100-CA-Seat-0902-30", name)
	assert.Equal(t, "02 Sep 2025", shipping)
}

func TestDeriveOfferFractionalDiscount(t *testing.T) {
	discount := 32.5
	name, _ := deriveOffer("200-TX-Frame", "12/15/2025", &discount)
	assert.Equal(t, "Preorder-200-TX-Frame-1215-32.5", name)
}

func TestDeriveOfferNoDiscount(t *testing.T) {
	name, shipping := deriveOffer("100-CA-Seat", "09/02/2025", nil)
	assert.Equal(t, "100-CA-Seat", name)
	assert.Equal(t, "09/02/2025", shipping)
}

func TestDeriveOfferStripsHash(t *testing.T) {
	discount := 25.0
	name, _ := deriveOffer("Cont#42", "01/05/2026", &discount)
	assert.Equal(t, "Preorder-Cont42-0105-25", name)
}

func TestParseInternalName(t *testing.T) {
	tests := []struct {
		in        string
		container string
		arrival   string
	}{
		{"Preorder-100-CA-Seat-0902-30", "100-CA-Seat", "0902"},
		{"Preorder-200-TX-Frame-1215-32.5", "200-TX-Frame", "1215"},
		{"Preorder-16wks-40", "16wks-40", "16wks"},
	}
	for _, tt := range tests {
		container, arrival := ParseInternalName(tt.in)
		assert.Equal(t, tt.container, container, tt.in)
		assert.Equal(t, tt.arrival, arrival, tt.in)
	}
}
