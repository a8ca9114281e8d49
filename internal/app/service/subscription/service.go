package subscription

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/badgeworks/variantbadges/internal/models"
	platshopify "github.com/badgeworks/variantbadges/internal/platform/shopify"
	"github.com/badgeworks/variantbadges/pkg/config"
	"github.com/badgeworks/variantbadges/pkg/tool"
	"github.com/badgeworks/variantbadges/pkg/types"
)

var (
	ErrShopNotFound = errors.New("shop session not found")
)

type Service struct {
	cfg *config.Config
	db  *gorm.DB
	log *zap.SugaredLogger
	api *platshopify.Client
}

func NewService(cfg *config.Config, db *gorm.DB, log *zap.SugaredLogger, api *platshopify.Client) *Service {
	return &Service{cfg: cfg, db: db, log: log, api: api}
}

// Ensure returns the shop's subscription row, creating a free/active one on
// first touch.
func (s *Service) Ensure(ctx context.Context, shop string) (*models.Subscription, error) {
	var sub models.Subscription
	err := s.db.WithContext(ctx).Where("shop = ?", shop).First(&sub).Error
	if err == nil {
		return &sub, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to load subscription: %w", err)
	}

	sub = models.Subscription{
		ID:       tool.GenerateUUIDV7(),
		Shop:     shop,
		PlanName: types.PlanFree,
		Status:   types.SubscriptionStatusActive,
	}
	if err := s.db.WithContext(ctx).Create(&sub).Error; err != nil {
		return nil, fmt.Errorf("failed to create subscription: %w", err)
	}
	s.log.Infow("initialized free subscription", "shop", shop)
	return &sub, nil
}

// save replaces the mutable fields of the shop's single subscription row,
// preserving identity, or creates the row when missing.
func (s *Service) save(ctx context.Context, tx *gorm.DB, m *models.Subscription) error {
	var original models.Subscription
	if err := tx.WithContext(ctx).Where("shop = ?", m.Shop).First(&original).Error; err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("failed to load original subscription: %w", err)
		}
	}
	if original.ID != "" {
		m.ID = original.ID
		m.CreatedAt = original.CreatedAt
	} else if m.ID == "" {
		m.ID = tool.GenerateUUIDV7()
	}
	if err := tx.WithContext(ctx).Save(m).Error; err != nil {
		return fmt.Errorf("failed to upsert subscription: %w", err)
	}
	return nil
}

// MarkUninstalled flags the subscription so a later reinstall starts clean.
func (s *Service) MarkUninstalled(ctx context.Context, shop string) error {
	res := s.db.WithContext(ctx).Model(&models.Subscription{}).
		Where("shop = ?", shop).
		Updates(map[string]any{
			"status":       types.SubscriptionStatusUninstalled,
			"charge_id":    nil,
			"billing_on":   nil,
			"cancelled_at": nil,
		})
	if res.Error != nil {
		return fmt.Errorf("failed to mark subscription uninstalled: %w", res.Error)
	}
	return nil
}

// ResetOnInstall initializes or resets the subscription after OAuth. A first
// install creates free/active; a reinstall over an uninstalled or cancelled
// row resets it rather than resuming the stale state.
func (s *Service) ResetOnInstall(ctx context.Context, shop string) error {
	sub, err := s.Ensure(ctx, shop)
	if err != nil {
		return err
	}
	switch sub.Status {
	case types.SubscriptionStatusUninstalled, types.SubscriptionStatusCancelled:
		s.log.Infow("reinstall detected, resetting to free plan",
			"shop", shop, "previous_plan", sub.PlanName, "previous_status", sub.Status)
		sub.PlanName = types.PlanFree
		sub.Status = types.SubscriptionStatusActive
		sub.ChargeID = nil
		sub.BillingOn = nil
		sub.CancelledAt = nil
		return s.save(ctx, s.db, sub)
	}
	return nil
}

// accessToken loads the stored credential for the shop's Admin API calls.
func (s *Service) accessToken(ctx context.Context, shop string) (string, error) {
	var row models.Shop
	if err := s.db.WithContext(ctx).Where("domain = ?", shop).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrShopNotFound
		}
		return "", fmt.Errorf("failed to load shop session: %w", err)
	}
	return row.AccessToken, nil
}
