package analytics

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/samber/lo"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/badgeworks/variantbadges/internal/models"
	"github.com/badgeworks/variantbadges/pkg/logctx"
	"github.com/badgeworks/variantbadges/pkg/tool"
	"github.com/badgeworks/variantbadges/pkg/types"
)

type Service struct {
	db  *gorm.DB
	log *zap.SugaredLogger
}

func NewService(db *gorm.DB, log *zap.SugaredLogger) *Service {
	return &Service{db: db, log: log}
}

// Event is one storefront beacon payload.
type Event struct {
	ProductID   int64                    `json:"product_id"`
	VariantID   int64                    `json:"variant_id"`
	BadgeType   types.BadgeType          `json:"badge_type"`
	OptionValue string                   `json:"option_value"`
	EventType   types.AnalyticsEventType `json:"event_type"`
	SessionID   string                   `json:"session_id"`
}

// Track records a storefront event. The write is best effort: tracking must
// never surface an error into the storefront, so failures are only logged.
func (s *Service) Track(ctx context.Context, shop string, ev Event) {
	log := logctx.FromCtx(ctx, s.log)
	if !types.ValidAnalyticsEventType(ev.EventType) {
		log.Debugw("dropping event with unknown type", "shop", shop, "event_type", ev.EventType)
		return
	}
	row := &models.AnalyticsEvent{
		ID:          tool.GenerateUUIDV7(),
		Shop:        shop,
		ProductID:   ev.ProductID,
		VariantID:   ev.VariantID,
		BadgeType:   ev.BadgeType,
		OptionValue: ev.OptionValue,
		EventType:   ev.EventType,
		SessionID:   ev.SessionID,
	}
	if err := s.db.WithContext(ctx).Create(row).Error; err != nil {
		log.Warnw("failed to record analytics event", "shop", shop, "event_type", ev.EventType, "err", err)
	}
}

type badgeEventCount struct {
	BadgeType types.BadgeType          `json:"badge_type"`
	EventType types.AnalyticsEventType `json:"event_type"`
	Value     int64                    `json:"value"`
}

// DailyPoint is one day of event counts for the dashboard chart.
type DailyPoint struct {
	Date  string                   `json:"date"`
	Label types.AnalyticsEventType `gorm:"column:label" json:"event_type"`
	Value int64                    `json:"value"`
}

// BadgeSummary aggregates one badge type's funnel.
type BadgeSummary struct {
	BadgeType types.BadgeType `json:"badge_type"`
	Views     int64           `json:"views"`
	Clicks    int64           `json:"clicks"`
	AddToCart int64           `json:"add_to_cart"`
}

type Summary struct {
	TotalEvents int64          `json:"total_events"`
	Badges      []BadgeSummary `json:"badges"`
	Daily       []DailyPoint   `json:"daily"`
}

// Summarize builds the merchant dashboard numbers for the trailing window.
func (s *Service) Summarize(ctx context.Context, shop string, days int) (*Summary, error) {
	if days <= 0 {
		days = 30
	}
	since := time.Now().AddDate(0, 0, -days)

	var counts []badgeEventCount
	err := s.db.WithContext(ctx).Table((models.AnalyticsEvent{}).TableName()).
		Select("badge_type, event_type, count(*) as value").
		Where("shop = ? AND created_at >= ?", shop, since).
		Group("badge_type").
		Group("event_type").
		Find(&counts).Error
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate analytics events: %w", err)
	}

	var daily []DailyPoint
	err = s.db.WithContext(ctx).Table((models.AnalyticsEvent{}).TableName()).
		Select("TO_CHAR(created_at, 'YYYY-MM-DD') as date, event_type as label, count(*) as value").
		Where("shop = ? AND created_at >= ?", shop, since).
		Group("TO_CHAR(created_at, 'YYYY-MM-DD')").
		Group("event_type").
		Order("date").
		Find(&daily).Error
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate daily analytics: %w", err)
	}

	summary := &Summary{Daily: daily, Badges: foldBadgeCounts(counts)}
	summary.TotalEvents = lo.SumBy(counts, func(c badgeEventCount) int64 { return c.Value })
	return summary, nil
}

// foldBadgeCounts pivots (badge, event, count) rows into one funnel row per
// badge type.
func foldBadgeCounts(counts []badgeEventCount) []BadgeSummary {
	grouped := lo.GroupBy(counts, func(c badgeEventCount) types.BadgeType { return c.BadgeType })
	keys := lo.Keys(grouped)
	slices.Sort(keys)

	out := make([]BadgeSummary, 0, len(keys))
	for _, badge := range keys {
		row := BadgeSummary{BadgeType: badge}
		for _, c := range grouped[badge] {
			switch c.EventType {
			case types.AnalyticsEventView:
				row.Views += c.Value
			case types.AnalyticsEventClick:
				row.Clicks += c.Value
			case types.AnalyticsEventAddToCart:
				row.AddToCart += c.Value
			}
		}
		out = append(out, row)
	}
	return out
}

// DeleteShopData removes every analytics row for a shop (uninstall/redact
// path).
func (s *Service) DeleteShopData(ctx context.Context, shop string) error {
	if err := s.db.WithContext(ctx).Where("shop = ?", shop).Delete(&models.AnalyticsEvent{}).Error; err != nil {
		return fmt.Errorf("failed to delete analytics events: %w", err)
	}
	return nil
}
