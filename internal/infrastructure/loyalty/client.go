package loyalty

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/invorya/pos-api/internal/application/ports"
	"github.com/invorya/pos-api/pkg/logger"
)

var (
	_ ports.PointsReverser = (*Client)(nil)
	_ ports.PointsReverser = (*Noop)(nil)
)

// Client cliente HTTP del servicio de fidelidad.
// Usa net/http de la stdlib: el servicio expone un endpoint JSON simple y no
// amerita un SDK.
type Client struct {
	baseURL string
	http    *http.Client
	log     *logger.Logger
}

func NewClient(baseURL string, timeout time.Duration, log *logger.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
		log:     log,
	}
}

type reverseRequest struct {
	SaleID     string    `json:"sale_id"`
	Points     int64     `json:"points"`
	UserID     string    `json:"user_id"`
	OccurredAt time.Time `json:"occurred_at"`
}

// ReversePoints solicita la reversión de los puntos otorgados por una venta.
// Un 404 significa que el otorgamiento original no existe (ya conciliado por
// otro canal): se loguea y no se reporta error.
func (c *Client) ReversePoints(ctx context.Context, saleID string, points int64, userID string, occurredAtUtc time.Time) error {
	payload, err := json.Marshal(reverseRequest{
		SaleID:     saleID,
		Points:     points,
		UserID:     userID,
		OccurredAt: occurredAtUtc,
	})
	if err != nil {
		return fmt.Errorf("marshal reverse request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/points/reversals", bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build reverse request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("llamar servicio de fidelidad: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return nil
	case resp.StatusCode == http.StatusNotFound:
		c.log.Warn().Str("sale_id", saleID).Msg("fidelidad: otorgamiento no encontrado, se asume conciliado")
		return nil
	default:
		return fmt.Errorf("servicio de fidelidad respondió %d", resp.StatusCode)
	}
}

// Noop implementación nula para despliegues sin programa de fidelidad.
type Noop struct{}

func (Noop) ReversePoints(ctx context.Context, saleID string, points int64, userID string, occurredAtUtc time.Time) error {
	return nil
}
