package catalog

import (
	"context"
	"encoding/json"
	"time"

	redis "github.com/redis/go-redis/v9"

	"github.com/invorya/pos-api/internal/application/ports"
	"github.com/invorya/pos-api/internal/domain"
	"github.com/invorya/pos-api/pkg/logger"
)

var _ ports.CatalogProvider = (*CachedProvider)(nil)

// CachedProvider envuelve un CatalogProvider con caché Redis de snapshots.
// Los precios cambian poco dentro de una jornada; un TTL corto mantiene la
// caché fresca sin golpear el catálogo en cada línea de venta.
// Errores de Redis degradan a leer del provider interno (la caché nunca
// tumba una venta).
type CachedProvider struct {
	inner  ports.CatalogProvider
	client *redis.Client
	ttl    time.Duration
	log    *logger.Logger
}

func NewCachedProvider(inner ports.CatalogProvider, client *redis.Client, ttl time.Duration, log *logger.Logger) *CachedProvider {
	return &CachedProvider{inner: inner, client: client, ttl: ttl, log: log}
}

func (c *CachedProvider) ResolveProduct(ctx context.Context, scope domain.Scope, productID string) (*ports.ProductSnapshot, error) {
	key := "catalog:product:" + scope.TenantID + ":" + scope.StoreID + ":" + productID
	if val, err := c.client.Get(ctx, key).Result(); err == nil {
		var snap ports.ProductSnapshot
		if err := json.Unmarshal([]byte(val), &snap); err == nil {
			return &snap, nil
		}
		// entrada corrupta: ignorar y resolver de nuevo
		_ = c.client.Del(ctx, key).Err()
	} else if err != redis.Nil {
		c.log.Warn().Err(err).Str("key", key).Msg("catálogo: error leyendo caché")
	}

	snap, err := c.inner.ResolveProduct(ctx, scope, productID)
	if err != nil {
		return nil, err
	}
	c.set(ctx, key, snap)
	return snap, nil
}

func (c *CachedProvider) ResolveExtra(ctx context.Context, scope domain.Scope, extraID string) (*ports.ExtraSnapshot, error) {
	key := "catalog:extra:" + scope.TenantID + ":" + scope.StoreID + ":" + extraID
	if val, err := c.client.Get(ctx, key).Result(); err == nil {
		var snap ports.ExtraSnapshot
		if err := json.Unmarshal([]byte(val), &snap); err == nil {
			return &snap, nil
		}
		_ = c.client.Del(ctx, key).Err()
	} else if err != redis.Nil {
		c.log.Warn().Err(err).Str("key", key).Msg("catálogo: error leyendo caché")
	}

	snap, err := c.inner.ResolveExtra(ctx, scope, extraID)
	if err != nil {
		return nil, err
	}
	c.set(ctx, key, snap)
	return snap, nil
}

func (c *CachedProvider) set(ctx context.Context, key string, value any) {
	payload, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, key, payload, c.ttl).Err(); err != nil {
		c.log.Warn().Err(err).Str("key", key).Msg("catálogo: error escribiendo caché")
	}
}
