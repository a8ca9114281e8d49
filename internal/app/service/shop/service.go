package shop

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/badgeworks/variantbadges/internal/app/service/analytics"
	"github.com/badgeworks/variantbadges/internal/app/service/badge"
	"github.com/badgeworks/variantbadges/internal/app/service/settings"
	"github.com/badgeworks/variantbadges/internal/app/service/subscription"
	"github.com/badgeworks/variantbadges/internal/models"
	"github.com/badgeworks/variantbadges/pkg/logctx"
	"github.com/badgeworks/variantbadges/pkg/tool"
)

var ErrNotInstalled = errors.New("shop not installed")

// Service manages the install lifecycle: OAuth session storage and the
// uninstall/redact cleanup fan-out.
type Service struct {
	db        *gorm.DB
	log       *zap.SugaredLogger
	plans     *subscription.Service
	badges    *badge.Service
	settings  *settings.Service
	analytics *analytics.Service
}

func NewService(db *gorm.DB, log *zap.SugaredLogger, plans *subscription.Service, badges *badge.Service, settings *settings.Service, analytics *analytics.Service) *Service {
	return &Service{db: db, log: log, plans: plans, badges: badges, settings: settings, analytics: analytics}
}

// SaveSession stores the OAuth access token for a shop, replacing any
// previous one, and resets the subscription when this is a reinstall.
func (s *Service) SaveSession(ctx context.Context, domain, accessToken string) error {
	log := logctx.FromCtx(ctx, s.log)
	row := &models.Shop{
		ID:          tool.GenerateUUIDV7(),
		Domain:      domain,
		AccessToken: accessToken,
	}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "domain"}},
		DoUpdates: clause.AssignmentColumns([]string{"access_token", "updated_at"}),
	}).Create(row).Error
	if err != nil {
		return fmt.Errorf("failed to save shop session: %w", err)
	}

	if err := s.plans.ResetOnInstall(ctx, domain); err != nil {
		return err
	}
	log.Infow("shop session saved", "shop", domain)
	return nil
}

// GetSession returns the stored access token for a shop.
func (s *Service) GetSession(ctx context.Context, domain string) (*models.Shop, error) {
	var row models.Shop
	if err := s.db.WithContext(ctx).Where("domain = ?", domain).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotInstalled
		}
		return nil, fmt.Errorf("failed to load shop session: %w", err)
	}
	return &row, nil
}

// HandleUninstalled processes the app/uninstalled webhook: drop the shop's
// data and credential, and flag the subscription so a reinstall starts on
// the free plan. Each step is attempted even if an earlier one fails, since
// the webhook is not redelivered after a 200.
func (s *Service) HandleUninstalled(ctx context.Context, domain string) error {
	log := logctx.FromCtx(ctx, s.log)
	var firstErr error
	keep := func(err error) {
		if err != nil {
			log.Errorw("uninstall cleanup step failed", "shop", domain, "err", err)
			if firstErr == nil {
				firstErr = err
			}
		}
	}

	keep(s.badges.DeleteShopData(ctx, domain))
	keep(s.settings.DeleteShopData(ctx, domain))
	keep(s.analytics.DeleteShopData(ctx, domain))
	keep(s.plans.MarkUninstalled(ctx, domain))
	keep(s.db.WithContext(ctx).Where("domain = ?", domain).Delete(&models.Shop{}).Error)

	if firstErr == nil {
		log.Infow("shop uninstalled, data removed", "shop", domain)
	}
	return firstErr
}
