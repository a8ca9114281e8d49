package subscription

import (
	"context"
	"fmt"
	"slices"

	"gorm.io/gorm"

	"github.com/badgeworks/variantbadges/internal/models"
	"github.com/badgeworks/variantbadges/pkg/types"
)

// splitRetained orders the badged product ids ascending and splits them into
// the retained head and the purged tail. Ordering by id keeps the selection
// reproducible regardless of row update order.
func splitRetained(productIDs []int64, keep int) (retained, purged []int64) {
	ids := slices.Clone(productIDs)
	slices.Sort(ids)
	if keep < 0 {
		keep = 0
	}
	if len(ids) <= keep {
		return ids, nil
	}
	return ids[:keep], ids[keep:]
}

// cleanupForFreeTier removes badges from every product beyond the free-tier
// cap. Destructive and one-way; reports cleaned=false when the shop was
// already within the cap.
func (s *Service) cleanupForFreeTier(ctx context.Context, tx *gorm.DB, shop string) (types.CleanupResult, error) {
	var productIDs []int64
	err := tx.WithContext(ctx).Model(&models.BadgeAssignment{}).
		Where("shop = ?", shop).
		Distinct("product_id").
		Pluck("product_id", &productIDs).Error
	if err != nil {
		return types.CleanupResult{}, fmt.Errorf("failed to list badged products: %w", err)
	}

	retained, purged := splitRetained(productIDs, s.cfg.Plan.FreeMaxProducts)
	if len(purged) == 0 {
		return types.CleanupResult{Cleaned: false, KeptProducts: len(retained)}, nil
	}

	err = tx.WithContext(ctx).
		Where("shop = ? AND product_id IN ?", shop, purged).
		Delete(&models.BadgeAssignment{}).Error
	if err != nil {
		return types.CleanupResult{}, fmt.Errorf("failed to purge badge assignments: %w", err)
	}

	return types.CleanupResult{
		Cleaned:      true,
		KeptProducts: len(retained),
		RemovedCount: len(purged),
	}, nil
}
