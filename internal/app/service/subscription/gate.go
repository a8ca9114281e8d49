package subscription

import (
	"context"

	"github.com/badgeworks/variantbadges/internal/models"
	"github.com/badgeworks/variantbadges/pkg/logctx"
	"github.com/badgeworks/variantbadges/pkg/types"
)

// decideAssign is the pure gate rule: unlimited plans always pass, edits to
// an already-badged product always pass, and only growth in the
// distinct-product count is checked against the cap.
func decideAssign(decision types.PlanDecision, currentCount, maxCount int, alreadyBadged bool) bool {
	if decision.Unlimited {
		return true
	}
	if alreadyBadged {
		return true
	}
	return currentCount < maxCount
}

// CanAssign decides whether a badge write targeting productID is permitted
// under the shop's effective plan. The limit is a soft product cap, not a
// critical invariant, so any internal failure here fails open.
func (s *Service) CanAssign(ctx context.Context, shop string, productID int64) types.LimitCheck {
	log := logctx.FromCtx(ctx, s.log)
	maxCount := s.cfg.Plan.FreeMaxProducts

	decision, err := s.Resolve(ctx, shop)
	if err != nil {
		log.Errorw("plan resolution failed, allowing badge write", "shop", shop, "err", err)
		return types.LimitCheck{Allowed: true, MaxCount: maxCount, Unlimited: true}
	}
	if decision.Unlimited {
		return types.LimitCheck{Allowed: true, MaxCount: maxCount, Unlimited: true}
	}

	var currentCount int64
	err = s.db.WithContext(ctx).Model(&models.BadgeAssignment{}).
		Where("shop = ?", shop).
		Distinct("product_id").
		Count(&currentCount).Error
	if err != nil {
		log.Errorw("badged product count failed, allowing badge write", "shop", shop, "err", err)
		return types.LimitCheck{Allowed: true, MaxCount: maxCount, Unlimited: true}
	}

	var existing int64
	err = s.db.WithContext(ctx).Model(&models.BadgeAssignment{}).
		Where("shop = ? AND product_id = ?", shop, productID).
		Count(&existing).Error
	if err != nil {
		log.Errorw("badged product lookup failed, allowing badge write", "shop", shop, "err", err)
		return types.LimitCheck{Allowed: true, MaxCount: maxCount, Unlimited: true}
	}

	return types.LimitCheck{
		Allowed:      decideAssign(decision, int(currentCount), maxCount, existing > 0),
		CurrentCount: int(currentCount),
		MaxCount:     maxCount,
	}
}
