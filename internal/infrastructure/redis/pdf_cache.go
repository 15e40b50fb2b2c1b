package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/jhoicas/Facturo-api/internal/application/billing"
)

var _ billing.PDFCache = (*PDFCache)(nil)

// PDFCache guarda los PDFs renderizados. La clave incluye updated_at, así una
// factura modificada nunca devuelve un PDF viejo.
type PDFCache struct {
	client *goredis.Client
	prefix string
}

// NewPDFCache construye la caché; prefix separa entornos que comparten Redis.
func NewPDFCache(client *goredis.Client, prefix string) *PDFCache {
	return &PDFCache{client: client, prefix: prefix}
}

// Get devuelve (nil, false, nil) cuando la clave no existe.
func (c *PDFCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	b, err := c.client.Get(ctx, c.prefix+key).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("pdf cache get: %w", err)
	}
	return b, true, nil
}

func (c *PDFCache) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	if err := c.client.Set(ctx, c.prefix+key, data, ttl).Err(); err != nil {
		return fmt.Errorf("pdf cache set: %w", err)
	}
	return nil
}
