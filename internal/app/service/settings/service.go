package settings

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/badgeworks/variantbadges/internal/models"
	"github.com/badgeworks/variantbadges/internal/platform/cache"
	"github.com/badgeworks/variantbadges/pkg/config"
	"github.com/badgeworks/variantbadges/pkg/logctx"
	"github.com/badgeworks/variantbadges/pkg/tool"
)

type Service struct {
	cfg   *config.Config
	db    *gorm.DB
	log   *zap.SugaredLogger
	cache *cache.Cache
}

func NewService(cfg *config.Config, db *gorm.DB, log *zap.SugaredLogger, cache *cache.Cache) *Service {
	return &Service{cfg: cfg, db: db, log: log, cache: cache}
}

// Patch carries the fields a settings update may change. Nil fields are left
// untouched.
type Patch struct {
	SelectedOptionName  *string `json:"selected_option_name"`
	BadgeDisplayEnabled *bool   `json:"badge_display_enabled"`
	AutoSaleEnabled     *bool   `json:"auto_sale_enabled"`
}

// Get returns the shop's settings, falling back to defaults when the shop
// has never saved any.
func (s *Service) Get(ctx context.Context, shop string) (*models.Settings, error) {
	var row models.Settings
	err := s.db.WithContext(ctx).Where("shop = ?", shop).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &models.Settings{Shop: shop, BadgeDisplay: true}, nil
		}
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}
	return &row, nil
}

// Update applies the patch. Changing the selected option name deletes every
// badge assignment the shop has in the same transaction, since existing
// badges are keyed on values of the old option and would be meaningless
// under the new one.
func (s *Service) Update(ctx context.Context, shop string, patch Patch) (*models.Settings, int64, error) {
	log := logctx.FromCtx(ctx, s.log)

	var row models.Settings
	var removedBadges int64
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Where("shop = ?", shop).First(&row).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			row = models.Settings{ID: tool.GenerateUUIDV7(), Shop: shop, BadgeDisplay: true}
		} else if err != nil {
			return fmt.Errorf("failed to load settings: %w", err)
		}

		optionChanged := patch.SelectedOptionName != nil &&
			row.SelectedOption() != *patch.SelectedOptionName

		if patch.SelectedOptionName != nil {
			if *patch.SelectedOptionName == "" {
				row.SelectedOptionName = nil
			} else {
				row.SelectedOptionName = patch.SelectedOptionName
			}
		}
		if patch.BadgeDisplayEnabled != nil {
			row.BadgeDisplay = *patch.BadgeDisplayEnabled
		}
		if patch.AutoSaleEnabled != nil {
			row.AutoSale = *patch.AutoSaleEnabled
		}

		if err := tx.Save(&row).Error; err != nil {
			return fmt.Errorf("failed to save settings: %w", err)
		}

		if optionChanged {
			res := tx.Where("shop = ?", shop).Delete(&models.BadgeAssignment{})
			if res.Error != nil {
				return fmt.Errorf("failed to clear badge assignments: %w", res.Error)
			}
			removedBadges = res.RowsAffected
		}
		return nil
	})
	if err != nil {
		return nil, 0, err
	}

	if removedBadges > 0 {
		log.Infow("selected option changed, badges cleared",
			"shop", shop, "new_option", row.SelectedOption(), "removed_badges", removedBadges)
	}
	return &row, removedBadges, nil
}

// DeleteShopData removes the shop's settings row (uninstall/redact path).
func (s *Service) DeleteShopData(ctx context.Context, shop string) error {
	if err := s.db.WithContext(ctx).Where("shop = ?", shop).Delete(&models.Settings{}).Error; err != nil {
		return fmt.Errorf("failed to delete settings: %w", err)
	}
	return nil
}
