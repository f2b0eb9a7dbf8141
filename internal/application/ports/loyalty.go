package ports

import (
	"context"
	"time"
)

// PointsReverser revierte los puntos de fidelidad otorgados por una venta
// anulada. Colaborador externo: si el otorgamiento original no se encuentra,
// la implementación lo trata como ya conciliado (log, sin error).
type PointsReverser interface {
	ReversePoints(ctx context.Context, saleID string, points int64, userID string, occurredAtUtc time.Time) error
}
