package subscription

import (
	"context"
	"fmt"
	"strconv"
	"time"

	goshopify "github.com/bold-commerce/go-shopify/v4"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"

	"github.com/badgeworks/variantbadges/internal/models"
	"github.com/badgeworks/variantbadges/pkg/logctx"
	"github.com/badgeworks/variantbadges/pkg/types"
)

const (
	chargeStatusAccepted = "accepted"
	chargeStatusDeclined = "declined"
)

// CancelWarning tells the merchant how many badged products will fall
// outside the free cap once the grace period ends.
type CancelWarning struct {
	CurrentProducts int `json:"current_products"`
	FreeLimit       int `json:"free_limit"`
	ProductsToLose  int `json:"products_to_lose"`
}

type CancelOutcome struct {
	Plan      types.PlanName           `json:"plan"`
	Status    types.SubscriptionStatus `json:"status"`
	ExpiresOn *time.Time               `json:"expires_on,omitempty"`
	Message   string                   `json:"message,omitempty"`
	Warning   *CancelWarning           `json:"warning,omitempty"`
}

// isDevelopmentStore detects partner/dev stores, which must be charged in
// test mode. Matches the platform's plan_name values.
func isDevelopmentStore(planName string) bool {
	switch planName {
	case "partner_test", "affiliate", "staff_business":
		return true
	}
	return false
}

// CreateCharge creates a pending recurring application charge and records it
// as a pending upgrade. The merchant approves it at the returned
// confirmation URL; plan access does not change until activation.
func (s *Service) CreateCharge(ctx context.Context, shop string) (confirmationURL string, chargeID uint64, err error) {
	log := logctx.FromCtx(ctx, s.log)
	token, err := s.accessToken(ctx, shop)
	if err != nil {
		return "", 0, err
	}

	shopInfo, err := s.api.GetShop(ctx, shop, token)
	if err != nil {
		return "", 0, fmt.Errorf("failed to fetch shop info: %w", err)
	}
	testMode := isDevelopmentStore(shopInfo.PlanName)

	price := decimal.NewFromFloat(s.cfg.Billing.ProPrice)
	charge := goshopify.RecurringApplicationCharge{
		Name:      s.cfg.Billing.ProPlanName,
		Price:     &price,
		ReturnURL: fmt.Sprintf("%s/api/billing/activate?shop=%s&charge_id={charge_id}", s.cfg.Shopify.AppURL, shop),
		TrialDays: s.cfg.Billing.TrialDays,
		Test:      &testMode,
	}
	created, err := s.api.CreateRecurringCharge(ctx, shop, token, charge)
	if err != nil {
		return "", 0, fmt.Errorf("failed to create charge: %w", err)
	}

	id := strconv.FormatUint(created.Id, 10)
	sub := &models.Subscription{
		Shop:     shop,
		PlanName: types.PlanFree,
		Status:   types.SubscriptionStatusPending,
		ChargeID: &id,
		Extra: datatypes.NewJSONType(&models.SubscriptionExtra{
			Price:           s.cfg.Billing.ProPrice,
			Test:            testMode,
			ConfirmationURL: created.ConfirmationURL,
		}),
	}
	if err := s.save(ctx, s.db, sub); err != nil {
		return "", 0, err
	}

	log.Infow("created billing charge", "shop", shop, "charge_id", created.Id, "test", testMode)
	return created.ConfirmationURL, created.Id, nil
}

// ActivateCharge completes the upgrade after the merchant approves the
// charge. Declined charges reset the row to free/active.
func (s *Service) ActivateCharge(ctx context.Context, shop string, chargeID uint64) error {
	log := logctx.FromCtx(ctx, s.log)
	token, err := s.accessToken(ctx, shop)
	if err != nil {
		return err
	}

	charge, err := s.api.GetRecurringCharge(ctx, shop, token, chargeID)
	if err != nil {
		return fmt.Errorf("failed to fetch charge: %w", err)
	}

	switch charge.Status {
	case chargeStatusAccepted:
		activated, err := s.api.ActivateRecurringCharge(ctx, shop, token, *charge)
		if err != nil {
			return fmt.Errorf("failed to activate charge: %w", err)
		}
		id := strconv.FormatUint(chargeID, 10)
		sub := &models.Subscription{
			Shop:     shop,
			PlanName: types.PlanPro,
			Status:   types.SubscriptionStatusActive,
			ChargeID: &id,
		}
		if activated.BillingOn != nil {
			sub.BillingOn = activated.BillingOn
		}
		if err := s.save(ctx, s.db, sub); err != nil {
			return err
		}
		log.Infow("activated pro plan", "shop", shop, "charge_id", chargeID)
		return nil
	case chargeStatusDeclined:
		log.Infow("charge declined by merchant", "shop", shop, "charge_id", chargeID)
		return s.save(ctx, s.db, &models.Subscription{
			Shop:     shop,
			PlanName: types.PlanFree,
			Status:   types.SubscriptionStatusActive,
		})
	default:
		log.Warnw("charge not actionable", "shop", shop, "charge_id", chargeID, "status", charge.Status)
		return nil
	}
}

// Cancel downgrades the shop. A pending upgrade is simply voided; an active
// pro plan keeps unlimited access until its billing date (grace period) and
// is marked cancelled, with a warning about the products at risk.
func (s *Service) Cancel(ctx context.Context, shop string) (*CancelOutcome, error) {
	log := logctx.FromCtx(ctx, s.log)
	sub, err := s.Ensure(ctx, shop)
	if err != nil {
		return nil, err
	}

	if sub.Status == types.SubscriptionStatusPending {
		if sub.ChargeID != nil {
			s.deleteChargeBestEffort(ctx, shop, *sub.ChargeID)
		}
		if err := s.save(ctx, s.db, &models.Subscription{
			Shop:     shop,
			PlanName: types.PlanFree,
			Status:   types.SubscriptionStatusActive,
		}); err != nil {
			return nil, err
		}
		log.Infow("cancelled pending upgrade", "shop", shop)
		return &CancelOutcome{
			Plan:    types.PlanFree,
			Status:  types.SubscriptionStatusActive,
			Message: "Pending upgrade cancelled - returned to Free plan",
		}, nil
	}

	if sub.PlanName != types.PlanPro || sub.ChargeID == nil {
		return &CancelOutcome{Plan: sub.PlanName, Status: sub.Status, Message: "Nothing to cancel"}, nil
	}

	token, err := s.accessToken(ctx, shop)
	if err != nil {
		return nil, err
	}
	chargeID, err := strconv.ParseUint(*sub.ChargeID, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid stored charge id %q: %w", *sub.ChargeID, err)
	}

	var expiresOn *time.Time
	if charge, err := s.api.GetRecurringCharge(ctx, shop, token, chargeID); err != nil {
		log.Warnw("failed to fetch charge before cancel", "shop", shop, "err", err)
	} else if charge.BillingOn != nil {
		expiresOn = charge.BillingOn
	}
	if err := s.api.CancelRecurringCharge(ctx, shop, token, chargeID); err != nil {
		return nil, err
	}

	now := time.Now()
	cancelled := &models.Subscription{
		Shop:        shop,
		PlanName:    types.PlanPro,
		Status:      types.SubscriptionStatusCancelled,
		ChargeID:    sub.ChargeID,
		BillingOn:   expiresOn,
		CancelledAt: &now,
	}
	if err := s.save(ctx, s.db, cancelled); err != nil {
		return nil, err
	}

	var badgedProducts int64
	if err := s.db.WithContext(ctx).Model(&models.BadgeAssignment{}).
		Where("shop = ?", shop).
		Distinct("product_id").
		Count(&badgedProducts).Error; err != nil {
		log.Warnw("failed to count badged products for cancel warning", "shop", shop, "err", err)
	}
	atRisk := 0
	if int(badgedProducts) > s.cfg.Plan.FreeMaxProducts {
		atRisk = int(badgedProducts) - s.cfg.Plan.FreeMaxProducts
	}

	log.Infow("cancelled pro subscription", "shop", shop, "expires_on", expiresOn, "products_to_lose", atRisk)
	return &CancelOutcome{
		Plan:      types.PlanPro,
		Status:    types.SubscriptionStatusCancelled,
		ExpiresOn: expiresOn,
		Warning: &CancelWarning{
			CurrentProducts: int(badgedProducts),
			FreeLimit:       s.cfg.Plan.FreeMaxProducts,
			ProductsToLose:  atRisk,
		},
	}, nil
}

func (s *Service) deleteChargeBestEffort(ctx context.Context, shop, storedID string) {
	log := logctx.FromCtx(ctx, s.log)
	token, err := s.accessToken(ctx, shop)
	if err != nil {
		log.Warnw("could not delete pending charge", "shop", shop, "err", err)
		return
	}
	chargeID, err := strconv.ParseUint(storedID, 10, 64)
	if err != nil {
		log.Warnw("could not delete pending charge", "shop", shop, "charge_id", storedID, "err", err)
		return
	}
	if err := s.api.CancelRecurringCharge(ctx, shop, token, chargeID); err != nil {
		log.Warnw("could not delete pending charge (may not exist)", "shop", shop, "err", err)
	}
}

// Status returns the stored row after applying the lazy lapse transition, so
// callers never see an expired grace period.
func (s *Service) Status(ctx context.Context, shop string) (*models.Subscription, types.PlanDecision, error) {
	decision, err := s.Resolve(ctx, shop)
	if err != nil {
		return nil, types.PlanDecision{}, err
	}
	var sub models.Subscription
	if err := s.db.WithContext(ctx).Where("shop = ?", shop).First(&sub).Error; err != nil {
		return nil, types.PlanDecision{}, fmt.Errorf("failed to reload subscription: %w", err)
	}
	return &sub, decision, nil
}
