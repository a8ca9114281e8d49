package badge

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/badgeworks/variantbadges/internal/app/service/subscription"
	"github.com/badgeworks/variantbadges/internal/models"
	"github.com/badgeworks/variantbadges/internal/platform/cache"
	platshopify "github.com/badgeworks/variantbadges/internal/platform/shopify"
	"github.com/badgeworks/variantbadges/pkg/config"
	"github.com/badgeworks/variantbadges/pkg/logctx"
	"github.com/badgeworks/variantbadges/pkg/tool"
	"github.com/badgeworks/variantbadges/pkg/types"
)

var (
	ErrNoOptionSelected    = errors.New("no badge option selected in settings")
	ErrInvalidBadgeType    = errors.New("invalid badge type")
	ErrOptionValueNotFound = errors.New("option value not found on product")
)

// LimitError is returned when the plan gate rejects growth to a new product.
type LimitError struct {
	CurrentProducts int
	MaxProducts     int
}

func (e *LimitError) Error() string {
	return fmt.Sprintf("product limit reached (%d/%d)", e.CurrentProducts, e.MaxProducts)
}

type Service struct {
	cfg   *config.Config
	db    *gorm.DB
	log   *zap.SugaredLogger
	api   *platshopify.Client
	plans *subscription.Service
	cache *cache.Cache
}

func NewService(cfg *config.Config, db *gorm.DB, log *zap.SugaredLogger, api *platshopify.Client, plans *subscription.Service, cache *cache.Cache) *Service {
	return &Service{cfg: cfg, db: db, log: log, api: api, plans: plans, cache: cache}
}

func (s *Service) settings(ctx context.Context, shop string) (*models.Settings, error) {
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

func (s *Service) shopToken(ctx context.Context, shop string) (string, error) {
	var row models.Shop
	if err := s.db.WithContext(ctx).Where("domain = ?", shop).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", subscription.ErrShopNotFound
		}
		return "", fmt.Errorf("failed to load shop session: %w", err)
	}
	return row.AccessToken, nil
}

// resolveVariants maps (product, option value) to the matching variant ids
// under the shop's selected option, fetching the product schema from the
// Admin API.
func (s *Service) resolveVariants(ctx context.Context, shop string, productID int64, optionValue string) (ProductInfo, []int64, string, error) {
	settings, err := s.settings(ctx, shop)
	if err != nil {
		return ProductInfo{}, nil, "", err
	}
	selected := settings.SelectedOption()
	if selected == "" {
		return ProductInfo{}, nil, "", ErrNoOptionSelected
	}

	token, err := s.shopToken(ctx, shop)
	if err != nil {
		return ProductInfo{}, nil, "", err
	}
	product, err := s.api.GetProduct(ctx, shop, token, productID)
	if err != nil {
		return ProductInfo{}, nil, "", err
	}

	info := FromShopifyProduct(product)
	group, ok := FindGroup(GroupByOption(info, selected), optionValue)
	if !ok || len(group.VariantIDs) == 0 {
		return info, nil, selected, ErrOptionValueNotFound
	}
	return info, group.VariantIDs, selected, nil
}

// Assign puts badgeType on every variant of the product matching
// optionValue. One row per variant, keyed (shop, variant); re-assigning
// overwrites. Growth to a product with no badges yet passes the plan gate
// first.
func (s *Service) Assign(ctx context.Context, shop string, productID int64, optionValue string, badgeType types.BadgeType) (int, error) {
	log := logctx.FromCtx(ctx, s.log)
	if !s.cfg.ValidBadgeType(badgeType) {
		return 0, ErrInvalidBadgeType
	}

	check := s.plans.CanAssign(ctx, shop, productID)
	if !check.Allowed {
		return 0, &LimitError{CurrentProducts: check.CurrentCount, MaxProducts: check.MaxCount}
	}

	info, variantIDs, selected, err := s.resolveVariants(ctx, shop, productID, optionValue)
	if err != nil {
		return 0, err
	}

	rows := make([]*models.BadgeAssignment, 0, len(variantIDs))
	for _, vid := range variantIDs {
		rows = append(rows, &models.BadgeAssignment{
			ID:           tool.GenerateUUIDV7(),
			Shop:         shop,
			VariantID:    vid,
			ProductID:    productID,
			ProductTitle: info.Title,
			OptionType:   selected,
			OptionValue:  optionValue,
			BadgeType:    badgeType,
		})
	}
	err = s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "shop"}, {Name: "variant_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"badge_type", "option_type", "option_value", "product_title", "updated_at",
		}),
	}).Create(&rows).Error
	if err != nil {
		return 0, fmt.Errorf("failed to upsert badge assignments: %w", err)
	}

	s.invalidate(ctx, shop, productID)
	log.Infow("badges assigned", "shop", shop, "product_id", productID,
		"option_value", optionValue, "badge_type", badgeType, "variants", len(rows))
	return len(rows), nil
}

// Remove deletes the badges on every variant of the product matching
// optionValue.
func (s *Service) Remove(ctx context.Context, shop string, productID int64, optionValue string) (int, error) {
	log := logctx.FromCtx(ctx, s.log)
	res := s.db.WithContext(ctx).
		Where("shop = ? AND product_id = ? AND option_value = ?", shop, productID, optionValue).
		Delete(&models.BadgeAssignment{})
	if res.Error != nil {
		return 0, fmt.Errorf("failed to delete badge assignments: %w", res.Error)
	}
	s.invalidate(ctx, shop, productID)
	log.Infow("badges removed", "shop", shop, "product_id", productID,
		"option_value", optionValue, "variants", res.RowsAffected)
	return int(res.RowsAffected), nil
}

// ListEntry is one (product, option value) row of the admin listing with
// the group's effective badge.
type ListEntry struct {
	ProductID    int64            `json:"product_id"`
	ProductTitle string           `json:"product_title"`
	OptionValue  string           `json:"option_value"`
	Badge        types.GroupBadge `json:"badge"`
	VariantIDs   []int64          `json:"variant_ids"`
}

// List returns the shop's badge assignments grouped per product and option
// value, ordered by product title (case-insensitive) then option value.
func (s *Service) List(ctx context.Context, shop string, page, pageSize int) ([]ListEntry, int, error) {
	var rows []models.BadgeAssignment
	err := s.db.WithContext(ctx).
		Where("shop = ?", shop).
		Order("LOWER(product_title) ASC, option_value ASC, variant_id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list badge assignments: %w", err)
	}

	entries := groupRows(rows)
	total := len(entries)

	if pageSize <= 0 {
		pageSize = 50
	}
	if page < 1 {
		page = 1
	}
	start := (page - 1) * pageSize
	if start >= total {
		return []ListEntry{}, total, nil
	}
	end := start + pageSize
	if end > total {
		end = total
	}
	return entries[start:end], total, nil
}

// groupRows folds ordered assignment rows into list entries, deriving each
// group's effective badge.
func groupRows(rows []models.BadgeAssignment) []ListEntry {
	var entries []ListEntry
	idx := make(map[string]int)
	badges := make(map[int64]types.BadgeType, len(rows))
	for _, r := range rows {
		badges[r.VariantID] = r.BadgeType
	}
	for _, r := range rows {
		key := strconv.FormatInt(r.ProductID, 10) + "\x00" + r.OptionValue
		i, ok := idx[key]
		if !ok {
			i = len(entries)
			idx[key] = i
			entries = append(entries, ListEntry{
				ProductID:    r.ProductID,
				ProductTitle: r.ProductTitle,
				OptionValue:  r.OptionValue,
			})
		}
		entries[i].VariantIDs = append(entries[i].VariantIDs, r.VariantID)
	}
	for i := range entries {
		entries[i].Badge = EffectiveBadge(entries[i].VariantIDs, badges)
	}
	return entries
}

// PublicBadges is the storefront read contract: a flat variant→badge map
// plus the option dimension it is keyed on.
type PublicBadges struct {
	Badges         map[string]types.BadgeType `json:"badges"`
	SelectedOption *string                    `json:"selectedOption"`
}

func productCacheKey(shop string, productID int64) string {
	return fmt.Sprintf("badges:%s:%d", shop, productID)
}

// ProductBadges serves the public per-product read. Rows written under a
// previous option dimension are filtered out by option_type.
func (s *Service) ProductBadges(ctx context.Context, shop string, productID int64) (*PublicBadges, error) {
	key := productCacheKey(shop, productID)
	if b, ok := s.cache.Get(ctx, key); ok {
		var cached PublicBadges
		if err := json.Unmarshal(b, &cached); err == nil {
			return &cached, nil
		}
	}

	settings, err := s.settings(ctx, shop)
	if err != nil {
		return nil, err
	}
	out := &PublicBadges{Badges: map[string]types.BadgeType{}}
	selected := settings.SelectedOption()
	if selected == "" {
		return out, nil
	}
	out.SelectedOption = settings.SelectedOptionName

	var rows []models.BadgeAssignment
	err = s.db.WithContext(ctx).
		Where("shop = ? AND product_id = ? AND option_type = ?", shop, productID, selected).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load badge assignments: %w", err)
	}
	for _, r := range rows {
		out.Badges[strconv.FormatInt(r.VariantID, 10)] = r.BadgeType
	}

	if b, err := json.Marshal(out); err == nil {
		s.cache.Set(ctx, key, b)
	}
	return out, nil
}

// AllBadges serves the shop-wide public read used on collection pages.
func (s *Service) AllBadges(ctx context.Context, shop string) (map[string]types.BadgeType, error) {
	var rows []models.BadgeAssignment
	err := s.db.WithContext(ctx).Where("shop = ?", shop).Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load badge assignments: %w", err)
	}
	badges := make(map[string]types.BadgeType, len(rows))
	for _, r := range rows {
		badges[strconv.FormatInt(r.VariantID, 10)] = r.BadgeType
	}
	return badges, nil
}

// BulkItem is one entry of a bulk assignment request. Remove=true deletes
// the value's badges instead of writing one.
type BulkItem struct {
	ProductID   int64           `json:"product_id"`
	OptionValue string          `json:"option_value"`
	BadgeType   types.BadgeType `json:"badge_type"`
	Remove      bool            `json:"remove"`
}

type BulkItemResult struct {
	ProductID       int64  `json:"product_id"`
	OptionValue     string `json:"option_value"`
	Success         bool   `json:"success"`
	VariantsUpdated int    `json:"variants_updated"`
	Error           string `json:"error,omitempty"`
}

// BulkApply applies each item independently and reports per-item outcomes
// rather than aborting the batch on first failure.
func (s *Service) BulkApply(ctx context.Context, shop string, items []BulkItem) []BulkItemResult {
	results := make([]BulkItemResult, 0, len(items))
	for _, item := range items {
		r := BulkItemResult{ProductID: item.ProductID, OptionValue: item.OptionValue}
		var n int
		var err error
		if item.Remove {
			n, err = s.Remove(ctx, shop, item.ProductID, item.OptionValue)
		} else {
			n, err = s.Assign(ctx, shop, item.ProductID, item.OptionValue, item.BadgeType)
		}
		if err != nil {
			r.Error = err.Error()
		} else {
			r.Success = true
			r.VariantsUpdated = n
		}
		results = append(results, r)
	}
	return results
}

// DeleteShopData removes every badge row for a shop (uninstall/redact path).
func (s *Service) DeleteShopData(ctx context.Context, shop string) error {
	if err := s.db.WithContext(ctx).Where("shop = ?", shop).Delete(&models.BadgeAssignment{}).Error; err != nil {
		return fmt.Errorf("failed to delete badge assignments: %w", err)
	}
	return nil
}

func (s *Service) invalidate(ctx context.Context, shop string, productID int64) {
	s.cache.Invalidate(ctx, productCacheKey(shop, productID))
}
