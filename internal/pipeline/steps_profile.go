package pipeline

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"preorder/internal/services/shopify"
)

// syncProfile makes the delivery profile's variant membership mirror the
// live variant table: members missing from the store are dissociated and
// store variants missing from the profile are associated. Failed batches go
// into a report instead of aborting the step.
func (p *Pipeline) syncProfile(ctx context.Context) error {
	if p.cfg.ShopifyDeliveryProfileID == "" {
		return fmt.Errorf("SHOPIFY_DELIVERY_PROFILE_ID is not configured")
	}
	profileGID := toProfileGID(p.cfg.ShopifyDeliveryProfileID)

	ids, err := p.store.AllLiveVariantIDs()
	if err != nil {
		return err
	}
	want := make(map[string]bool, len(ids))
	for _, id := range ids {
		want[shopify.ToVariantGID(id)] = true
	}

	existing, err := p.shopify.ProfileVariantIDs(ctx, profileGID)
	if err != nil {
		return err
	}

	var toAssociate, toDissociate []string
	for gid := range want {
		if !existing[gid] {
			toAssociate = append(toAssociate, gid)
		}
	}
	for gid := range existing {
		if !want[gid] {
			toDissociate = append(toDissociate, gid)
		}
	}
	p.logger.Info("Profile sync: %d in store, %d on profile, %d to associate, %d to dissociate",
		len(want), len(existing), len(toAssociate), len(toDissociate))

	dissociated, errs := p.shopify.DissociateVariants(ctx, profileGID, toDissociate)
	associated, assocErrs := p.shopify.AssociateVariants(ctx, profileGID, toAssociate)
	errs = append(errs, assocErrs...)

	p.logger.Info("Profile sync applied: %d associated, %d dissociated", associated, dissociated)
	if len(errs) > 0 {
		rows := [][]string{{"op", "batch_index", "member_count", "error"}}
		for _, e := range errs {
			detail := e.Err
			if len(e.UserErrors) > 0 {
				msgs := make([]string, len(e.UserErrors))
				for i, ue := range e.UserErrors {
					msgs[i] = ue.Message
				}
				detail = strings.Join(msgs, "; ")
			}
			rows = append(rows, []string{e.Op, fmt.Sprintf("%d", e.BatchIndex), fmt.Sprintf("%d", len(e.MemberIDs)), detail})
		}
		reportPath := filepath.Join(p.cfg.TargetCSVDir, "delivery_profile_sync_report.csv")
		if err := writeReport(reportPath, rows); err != nil {
			return fmt.Errorf("failed to write profile sync report: %w", err)
		}
		return fmt.Errorf("profile sync hit %d failed batches (report at %s)", len(errs), reportPath)
	}
	return nil
}

func toProfileGID(value string) string {
	if strings.HasPrefix(value, "gid://shopify/DeliveryProfile/") {
		return value
	}
	return "gid://shopify/DeliveryProfile/" + value
}
