package subscription

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/badgeworks/variantbadges/internal/models"
	"github.com/badgeworks/variantbadges/pkg/logctx"
	"github.com/badgeworks/variantbadges/pkg/types"
)

// ResolvePlan derives the effective plan from a stored subscription row and
// the clock. It is a pure function; the returned lapsed flag tells the
// caller that the cancelled-pro grace period is over and the downgrade
// transition (badge cleanup + row reset) must be applied.
//
// A pending row is free regardless of plan name: an upgrade awaiting merchant
// approval must not grant early access.
func ResolvePlan(sub *models.Subscription, now time.Time) (types.PlanDecision, bool) {
	if sub == nil {
		return types.PlanDecision{Plan: types.PlanFree}, false
	}

	if sub.Status == types.SubscriptionStatusPending {
		return types.PlanDecision{Plan: types.PlanFree, PendingUpgrade: true}, false
	}

	if sub.PlanName == types.PlanPro {
		switch sub.Status {
		case types.SubscriptionStatusActive:
			return types.PlanDecision{Plan: types.PlanPro, Unlimited: true}, false
		case types.SubscriptionStatusCancelled:
			if sub.InGrace(now) {
				return types.PlanDecision{
					Plan:           types.PlanPro,
					Unlimited:      true,
					GraceExpiresOn: sub.BillingOn,
				}, false
			}
			return types.PlanDecision{Plan: types.PlanFree}, true
		}
	}

	return types.PlanDecision{Plan: types.PlanFree}, false
}

// Resolve returns the shop's effective plan, lazily creating the free row on
// first touch and applying the grace-lapse downgrade when due. Callers never
// observe a stale cancelled-but-expired state.
func (s *Service) Resolve(ctx context.Context, shop string) (types.PlanDecision, error) {
	sub, err := s.Ensure(ctx, shop)
	if err != nil {
		return types.PlanDecision{}, err
	}

	decision, lapsed := ResolvePlan(sub, time.Now())
	if !lapsed {
		return decision, nil
	}

	if err := s.applyLapse(ctx, shop); err != nil {
		return types.PlanDecision{}, fmt.Errorf("failed to apply grace lapse: %w", err)
	}
	return decision, nil
}

// applyLapse performs the one-way downgrade after the grace period expires:
// claim the transition with a conditional update, run the badge cleanup, and
// reset the row to free/active. Claim and cleanup share a transaction, so a
// crash rolls both back and the next read re-triggers the transition. Losing
// the claim race means another request already downgraded; that is a no-op.
func (s *Service) applyLapse(ctx context.Context, shop string) error {
	log := logctx.FromCtx(ctx, s.log)
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Subscription{}).
			Where("shop = ? AND status = ?", shop, types.SubscriptionStatusCancelled).
			Updates(map[string]any{
				"plan_name":    types.PlanFree,
				"status":       types.SubscriptionStatusActive,
				"charge_id":    nil,
				"billing_on":   nil,
				"cancelled_at": nil,
			})
		if res.Error != nil {
			return fmt.Errorf("failed to downgrade subscription: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return nil
		}

		result, err := s.cleanupForFreeTier(ctx, tx, shop)
		if err != nil {
			return err
		}
		if result.Cleaned {
			log.Infow("grace period lapsed, badges cleaned",
				"shop", shop, "kept", result.KeptProducts, "removed", result.RemovedCount)
		} else {
			log.Infow("grace period lapsed, shop within cap", "shop", shop)
		}
		return nil
	})
}
