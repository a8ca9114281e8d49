package shopify

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	goshopify "github.com/bold-commerce/go-shopify/v4"
	"go.uber.org/fx"
	"go.uber.org/zap"

	cfgpkg "github.com/badgeworks/variantbadges/pkg/config"
)

// Client wraps the Admin API for the app. Every call is scoped to a shop
// domain plus its stored access token; a fresh per-shop API client is built
// per call (the underlying client is cheap and carries no state we keep).
type Client struct {
	app goshopify.App
	cfg *cfgpkg.Config
	log *zap.SugaredLogger
}

func NewClient(cfg *cfgpkg.Config, log *zap.SugaredLogger) *Client {
	app := goshopify.App{
		ApiKey:    cfg.Shopify.APIKey,
		ApiSecret: cfg.Shopify.APISecret,
		Scope:     cfg.Shopify.Scopes,
	}
	return &Client{app: app, cfg: cfg, log: log}
}

func (c *Client) forShop(shopDomain, accessToken string) (*goshopify.Client, error) {
	client, err := goshopify.NewClient(c.app, shopDomain, accessToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}
	return client, nil
}

// IsAuthError reports whether err looks like a revoked/invalid credential.
// The library wraps HTTP errors, so the status has to be read off the text.
func IsAuthError(err error) bool {
	if err == nil {
		return false
	}
	s := strings.ToLower(err.Error())
	return strings.Contains(s, "401") ||
		strings.Contains(s, "unauthorized") ||
		strings.Contains(s, "invalid api key or access token")
}

// OAuth

// AuthorizeURL builds the install/authorize URL. Built by hand because the
// redirect_uri and state parameters must match the callback exactly.
func (c *Client) AuthorizeURL(shopDomain, state string) string {
	redirectURI := c.cfg.Shopify.AppURL + "/auth/callback"
	return fmt.Sprintf(
		"https://%s/admin/oauth/authorize?client_id=%s&scope=%s&redirect_uri=%s&state=%s",
		shopDomain,
		c.cfg.Shopify.APIKey,
		url.QueryEscape(c.cfg.Shopify.Scopes),
		url.QueryEscape(redirectURI),
		url.QueryEscape(state),
	)
}

func (c *Client) ExchangeToken(ctx context.Context, shopDomain, code string) (string, error) {
	token, err := c.app.GetAccessToken(ctx, shopDomain, code)
	if err != nil {
		return "", fmt.Errorf("failed to exchange token: %w", err)
	}
	return token, nil
}

// VerifyCallback checks the HMAC on an OAuth callback URL.
func (c *Client) VerifyCallback(u *url.URL) bool {
	ok, err := c.app.VerifyAuthorizationURL(u)
	return err == nil && ok
}

// VerifyWebhook checks the platform HMAC header on a webhook delivery.
func (c *Client) VerifyWebhook(req *http.Request) bool {
	return c.app.VerifyWebhookRequest(req)
}

// VerifyWebhookMessage checks a webhook body against its HMAC header. Used
// when the body has already been drained from the request.
func (c *Client) VerifyWebhookMessage(body []byte, hmacHeader string) bool {
	return c.app.VerifyMessage(string(body), hmacHeader)
}

// Shop and products

func (c *Client) GetShop(ctx context.Context, shopDomain, accessToken string) (*goshopify.Shop, error) {
	client, err := c.forShop(shopDomain, accessToken)
	if err != nil {
		return nil, err
	}
	shop, err := client.Shop.Get(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to get shop: %w", err)
	}
	return shop, nil
}

func (c *Client) GetProduct(ctx context.Context, shopDomain, accessToken string, productID int64) (*goshopify.Product, error) {
	client, err := c.forShop(shopDomain, accessToken)
	if err != nil {
		return nil, err
	}
	product, err := client.Product.Get(ctx, uint64(productID), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	return product, nil
}

func (c *Client) ListProducts(ctx context.Context, shopDomain, accessToken string, limit int) ([]goshopify.Product, error) {
	client, err := c.forShop(shopDomain, accessToken)
	if err != nil {
		return nil, err
	}
	products, err := client.Product.List(ctx, goshopify.ListOptions{Limit: limit})
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	return products, nil
}

// Billing

func (c *Client) CreateRecurringCharge(ctx context.Context, shopDomain, accessToken string, charge goshopify.RecurringApplicationCharge) (*goshopify.RecurringApplicationCharge, error) {
	client, err := c.forShop(shopDomain, accessToken)
	if err != nil {
		return nil, err
	}
	created, err := client.RecurringApplicationCharge.Create(ctx, charge)
	if err != nil {
		return nil, fmt.Errorf("failed to create recurring charge: %w", err)
	}
	return created, nil
}

func (c *Client) GetRecurringCharge(ctx context.Context, shopDomain, accessToken string, chargeID uint64) (*goshopify.RecurringApplicationCharge, error) {
	client, err := c.forShop(shopDomain, accessToken)
	if err != nil {
		return nil, err
	}
	charge, err := client.RecurringApplicationCharge.Get(ctx, chargeID, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to get recurring charge: %w", err)
	}
	return charge, nil
}

func (c *Client) ActivateRecurringCharge(ctx context.Context, shopDomain, accessToken string, charge goshopify.RecurringApplicationCharge) (*goshopify.RecurringApplicationCharge, error) {
	client, err := c.forShop(shopDomain, accessToken)
	if err != nil {
		return nil, err
	}
	activated, err := client.RecurringApplicationCharge.Activate(ctx, charge)
	if err != nil {
		return nil, fmt.Errorf("failed to activate recurring charge: %w", err)
	}
	return activated, nil
}

func (c *Client) CancelRecurringCharge(ctx context.Context, shopDomain, accessToken string, chargeID uint64) error {
	client, err := c.forShop(shopDomain, accessToken)
	if err != nil {
		return err
	}
	if err := client.RecurringApplicationCharge.Delete(ctx, chargeID); err != nil {
		return fmt.Errorf("failed to cancel recurring charge: %w", err)
	}
	return nil
}

// Webhooks and themes

func (c *Client) CreateWebhook(ctx context.Context, shopDomain, accessToken, topic, address string) (*goshopify.Webhook, error) {
	client, err := c.forShop(shopDomain, accessToken)
	if err != nil {
		return nil, err
	}
	created, err := client.Webhook.Create(ctx, goshopify.Webhook{
		Topic:   topic,
		Address: address,
		Format:  "json",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create webhook %s: %w", topic, err)
	}
	return created, nil
}

func (c *Client) ListThemes(ctx context.Context, shopDomain, accessToken string) ([]goshopify.Theme, error) {
	client, err := c.forShop(shopDomain, accessToken)
	if err != nil {
		return nil, err
	}
	themes, err := client.Theme.List(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list themes: %w", err)
	}
	return themes, nil
}

func (c *Client) GetAsset(ctx context.Context, shopDomain, accessToken string, themeID uint64, key string) (*goshopify.Asset, error) {
	client, err := c.forShop(shopDomain, accessToken)
	if err != nil {
		return nil, err
	}
	asset, err := client.Asset.Get(ctx, themeID, key)
	if err != nil {
		return nil, fmt.Errorf("failed to get asset %s: %w", key, err)
	}
	return asset, nil
}

var Module = fx.Options(
	fx.Provide(NewClient),
)
