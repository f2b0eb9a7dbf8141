package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/invorya/pos-api/internal/application/dto"
	"github.com/invorya/pos-api/internal/application/shift"
)

// ShiftHandler maneja las peticiones HTTP de turnos de caja (protegido).
type ShiftHandler struct {
	uc *shift.UseCase
}

// NewShiftHandler construye el handler.
func NewShiftHandler(uc *shift.UseCase) *ShiftHandler {
	return &ShiftHandler{uc: uc}
}

// Open godoc
// @Summary      Abrir turno de caja
// @Description  A lo sumo un turno abierto por tienda: una segunda apertura
//
//	concurrente responde 409.
//
// @Tags         shifts
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.OpenShiftRequest  true  "opening_float"
// @Success      201   {object}  dto.ShiftResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/shifts [post]
func (h *ShiftHandler) Open(c *fiber.Ctx) error {
	var in dto.OpenShiftRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	opened, err := h.uc.OpenShift(c.Context(), GetScope(c), GetActor(c), in)
	if err != nil {
		return respondDomainError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toShiftResponse(opened))
}

// GetCurrent godoc
// @Summary      Turno abierto de la tienda
// @Tags         shifts
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.ShiftResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/shifts/current [get]
func (h *ShiftHandler) GetCurrent(c *fiber.Ctx) error {
	current, err := h.uc.GetCurrentShift(c.Context(), GetScope(c))
	if err != nil {
		return respondDomainError(c, err)
	}
	return c.JSON(toShiftResponse(current))
}

// ClosePreview godoc
// @Summary      Previsualizar cierre de turno
// @Description  Proyección pura: efectivo esperado y totales por método de
//
//	pago (ventas anuladas excluidas). No muta estado.
//
// @Tags         shifts
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID del turno"
// @Success      200  {object}  dto.ClosePreviewResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/shifts/{id}/close-preview [get]
func (h *ShiftHandler) ClosePreview(c *fiber.Ctx) error {
	preview, err := h.uc.GetClosePreview(c.Context(), GetScope(c), c.Params("id"))
	if err != nil {
		return respondDomainError(c, err)
	}
	return c.JSON(preview)
}

// Close godoc
// @Summary      Cerrar turno
// @Description  Registra los montos contados, calcula la variancia contra lo
//
//	esperado y transiciona OPEN -> CLOSED. El doble cierre responde 409.
//
// @Tags         shifts
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                 true  "ID del turno"
// @Param        body  body  dto.CloseShiftRequest  true  "counted por método de pago"
// @Success      200   {object}  dto.ShiftResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/shifts/{id}/close [post]
func (h *ShiftHandler) Close(c *fiber.Ctx) error {
	var in dto.CloseShiftRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	closed, err := h.uc.CloseShift(c.Context(), GetScope(c), GetActor(c), c.Params("id"), in)
	if err != nil {
		return respondDomainError(c, err)
	}
	return c.JSON(toShiftResponse(closed))
}
