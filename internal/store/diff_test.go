package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"preorder/internal/models"
)

func TestComputeDiff(t *testing.T) {
	live := []models.Offer{
		batchOffer("Preorder-100-CA-Seat-0902-30", "100-CA-Seat", "0902", 30),
		batchOffer("Preorder-200-TX-Frame-0910-25", "200-TX-Frame", "0910", 25),
	}
	batch := []models.Offer{
		// Same container/discount, new arrival date: an update.
		batchOffer("Preorder-100-CA-Seat-0909-30", "100-CA-Seat", "0909", 30),
		// New container: an insert.
		batchOffer("Preorder-300-FL-Leg-1001-20", "300-FL-Leg", "1001", 20),
	}

	diff := ComputeDiff(live, batch)

	require.Len(t, diff.ToInsert, 1)
	assert.Equal(t, "Preorder-300-FL-Leg-1001-20", diff.ToInsert[0].InternalName)

	require.Len(t, diff.ToUpdate, 1)
	assert.Equal(t, live[0].ID, diff.ToUpdate[0].ID)
	assert.Equal(t, "Preorder-100-CA-Seat-0909-30", diff.ToUpdate[0].InternalName)
	assert.Equal(t, "0909", diff.ToUpdate[0].ContainerArrivalMMDD)

	require.Len(t, diff.ToDelete, 1)
	assert.Equal(t, "Preorder-200-TX-Frame-0910-25", diff.ToDelete[0].InternalName)
}

func TestComputeDiffUnchanged(t *testing.T) {
	offer := batchOffer("Preorder-100-CA-Seat-0902-30", "100-CA-Seat", "0902", 30)
	diff := ComputeDiff([]models.Offer{offer}, []models.Offer{offer})
	assert.Empty(t, diff.ToInsert)
	assert.Empty(t, diff.ToUpdate)
	assert.Empty(t, diff.ToDelete)
}

func TestApplyDiff(t *testing.T) {
	s := newTestStore(t)

	// Live state: one offer that will be renamed, one that will disappear,
	// one that stays as is.
	renamed := batchOffer("Preorder-100-CA-Seat-0902-30", "100-CA-Seat", "0902", 30)
	removed := batchOffer("Preorder-200-TX-Frame-0910-25", "200-TX-Frame", "0910", 25)
	unchanged := batchOffer("Preorder-16wks-40", "16wks-40", "16wks", 40)
	require.NoError(t, s.InsertOffers([]models.Offer{renamed, removed, unchanged}))

	// Batch state: the renamed offer under its new name, the unchanged offer,
	// and a brand new offer with one variant.
	newOffer := batchOffer("Preorder-300-FL-Leg-1001-20", "300-FL-Leg", "1001", 20)
	batch := []models.Offer{
		batchOffer("Preorder-100-CA-Seat-0909-30", "100-CA-Seat", "0909", 30),
		batchOffer("Preorder-16wks-40", "16wks-40", "16wks", 40),
		newOffer,
	}
	require.NoError(t, s.UpsertBatchOffers(batch))
	require.NoError(t, s.ReplaceBatchVariants(newOffer.ID, []models.Variant{
		{OfferID: newOffer.ID, VariantID: "45000000007"},
	}))

	live, err := s.LiveOffers()
	require.NoError(t, err)
	batchOffers, err := s.BatchOffers()
	require.NoError(t, err)
	require.NoError(t, s.ApplyDiff(ComputeDiff(live, batchOffers)))

	statusOf := func(name string) string {
		offer, err := s.LiveOfferByName(name)
		require.NoError(t, err)
		require.NotNil(t, offer.Status)
		return *offer.Status
	}

	assert.Equal(t, models.StatusUpdate, statusOf("Preorder-100-CA-Seat-0909-30"))
	assert.Equal(t, models.StatusUpdate, statusOf("Preorder-16wks-40"))
	assert.Equal(t, models.StatusDelete, statusOf("Preorder-200-TX-Frame-0910-25"))
	assert.Equal(t, models.StatusInsert, statusOf("Preorder-300-FL-Leg-1001-20"))

	// The inserted offer's batch variants were remapped to the new live row.
	inserted, err := s.LiveOfferByName("Preorder-300-FL-Leg-1001-20")
	require.NoError(t, err)
	ids, err := s.LiveVariantIDsForOffer(inserted.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"45000000007"}, ids)

	// The renamed offer keeps its row id.
	updated, err := s.LiveOfferByName("Preorder-100-CA-Seat-0909-30")
	require.NoError(t, err)
	assert.Equal(t, renamed.ID, updated.ID)
	assert.Equal(t, "0909", updated.ContainerArrivalMMDD)
}
