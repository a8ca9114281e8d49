package app

import (
	"time"

	"go.uber.org/fx"

	"github.com/badgeworks/variantbadges/internal/app/api/server"
	"github.com/badgeworks/variantbadges/internal/app/service/analytics"
	"github.com/badgeworks/variantbadges/internal/app/service/badge"
	"github.com/badgeworks/variantbadges/internal/app/service/settings"
	"github.com/badgeworks/variantbadges/internal/app/service/shop"
	"github.com/badgeworks/variantbadges/internal/app/service/subscription"
	"github.com/badgeworks/variantbadges/internal/platform/cache"
	"github.com/badgeworks/variantbadges/internal/platform/db"
	"github.com/badgeworks/variantbadges/internal/platform/shopify"
	"github.com/badgeworks/variantbadges/pkg/config"
	"github.com/badgeworks/variantbadges/pkg/logger"
)

const (
	DefaultStartTimeout = 15 * time.Second
	DefaultStopTimeout  = 10 * time.Second
)

var Module = fx.Options(
	logger.Module,
	config.Module,
	db.Module,
	shopify.Module,
	cache.Module,
	server.Module,
	subscription.Module,
	badge.Module,
	settings.Module,
	analytics.Module,
	shop.Module,
)
