package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/invorya/pos-api/internal/application/dto"
	"github.com/invorya/pos-api/internal/domain"
)

// respondDomainError traduce errores de dominio al status y cuerpo HTTP.
// Los errores estructurados (ítem no disponible, ajuste en conflicto) exponen
// sus campos en Details para que el cliente muestre el motivo exacto.
func respondDomainError(c *fiber.Ctx, err error) error {
	var unavailable *domain.ItemUnavailableError
	if errors.As(err, &unavailable) {
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{
			Code:    "ITEM_UNAVAILABLE",
			Message: "ítem no disponible",
			Details: map[string]string{
				"item_type":     unavailable.ItemType,
				"item_id":       unavailable.ItemID,
				"reason":        unavailable.Reason,
				"available_qty": unavailable.AvailableQty.String(),
			},
		})
	}
	var adjConflict *domain.InventoryAdjustmentConflictError
	if errors.As(err, &adjConflict) {
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{
			Code:    "ADJUSTMENT_CONFLICT",
			Message: "el ajuste dejaría inventario negativo",
			Details: map[string]string{
				"item_type": adjConflict.ItemType,
				"item_id":   adjConflict.ItemID,
				"on_hand":   adjConflict.OnHand.String(),
				"requested": adjConflict.Requested.String(),
			},
		})
	}
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "datos inválidos"})
	case errors.Is(err, domain.ErrUnauthorized):
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Code: "FORBIDDEN", Message: "operación no autorizada"})
	case errors.Is(err, domain.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "recurso no encontrado"})
	case errors.Is(err, domain.ErrConflict):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "CONFLICT", Message: "conflicto con el estado actual"})
	case errors.Is(err, domain.ErrShiftRequired):
		return c.Status(fiber.StatusUnprocessableEntity).JSON(dto.ErrorResponse{Code: "SHIFT_REQUIRED", Message: "se requiere un turno abierto para vender"})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
}
