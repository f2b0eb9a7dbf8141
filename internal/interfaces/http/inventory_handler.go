package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/invorya/pos-api/internal/application/dto"
	"github.com/invorya/pos-api/internal/application/inventory"
)

// InventoryHandler maneja las peticiones HTTP del libro de inventario (protegido).
type InventoryHandler struct {
	uc *inventory.LedgerUseCase
}

// NewInventoryHandler construye el handler.
func NewInventoryHandler(uc *inventory.LedgerUseCase) *InventoryHandler {
	return &InventoryHandler{uc: uc}
}

// Adjust godoc
// @Summary      Ajustar saldo de inventario
// @Description  Aplica un delta firmado sobre el saldo. Si el resultado sería
//
//	negativo responde 409 con el saldo actual.
//
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.AdjustInventoryRequest  true  "item_type, item_id, delta, reason"
// @Success      200   {object}  dto.InventoryBalanceResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/inventory/adjustments [post]
func (h *InventoryHandler) Adjust(c *fiber.Ctx) error {
	var in dto.AdjustInventoryRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	balance, err := h.uc.AdjustInventory(c.Context(), GetScope(c), in, GetActor(c))
	if err != nil {
		return respondDomainError(c, err)
	}
	return c.JSON(toBalanceResponse(balance))
}

// SetBalance godoc
// @Summary      Fijar saldo absoluto (toma física)
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.SetInventoryBalanceRequest  true  "item_type, item_id, on_hand"
// @Success      200   {object}  dto.InventoryBalanceResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/inventory/balances [put]
func (h *InventoryHandler) SetBalance(c *fiber.Ctx) error {
	var in dto.SetInventoryBalanceRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	balance, err := h.uc.SetInventoryBalance(c.Context(), GetScope(c), in, GetActor(c))
	if err != nil {
		return respondDomainError(c, err)
	}
	return c.JSON(toBalanceResponse(balance))
}

// GetBalance godoc
// @Summary      Saldo de un ítem en la tienda
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        item_type  path  string  true  "product | extra"
// @Param        item_id    path  string  true  "ID del ítem"
// @Success      200  {object}  dto.InventoryBalanceResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/inventory/balances/{item_type}/{item_id} [get]
func (h *InventoryHandler) GetBalance(c *fiber.Ctx) error {
	balance, err := h.uc.GetBalance(c.Context(), GetScope(c), c.Params("item_type"), c.Params("item_id"))
	if err != nil {
		return respondDomainError(c, err)
	}
	return c.JSON(toBalanceResponse(balance))
}

// ListBalances godoc
// @Summary      Saldos de la tienda
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        limit   query  int  false  "máx 100, default 20"
// @Param        offset  query  int  false  "default 0"
// @Success      200  {array}  dto.InventoryBalanceResponse
// @Router       /api/inventory/balances [get]
func (h *InventoryHandler) ListBalances(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_QUERY", Message: "query inválido"})
	}
	balances, err := h.uc.ListBalances(c.Context(), GetScope(c), page)
	if err != nil {
		return respondDomainError(c, err)
	}
	out := make([]dto.InventoryBalanceResponse, 0, len(balances))
	for _, b := range balances {
		out = append(out, toBalanceResponse(b))
	}
	return c.JSON(out)
}

// ListMovements godoc
// @Summary      Diario de movimientos de un ítem
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        item_type  path   string  true   "product | extra"
// @Param        item_id    path   string  true   "ID del ítem"
// @Param        from       query  string  false  "RFC3339"
// @Param        to         query  string  false  "RFC3339"
// @Success      200  {array}  dto.InventoryMovementResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/inventory/movements/{item_type}/{item_id} [get]
func (h *InventoryHandler) ListMovements(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_QUERY", Message: "query inválido"})
	}
	from, err := parseTimeQuery(c.Query("from"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_QUERY", Message: "from debe ser RFC3339"})
	}
	to, err := parseTimeQuery(c.Query("to"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_QUERY", Message: "to debe ser RFC3339"})
	}
	movements, err := h.uc.ListMovements(c.Context(), GetScope(c), c.Params("item_type"), c.Params("item_id"), from, to, page)
	if err != nil {
		return respondDomainError(c, err)
	}
	out := make([]dto.InventoryMovementResponse, 0, len(movements))
	for _, m := range movements {
		out = append(out, toMovementResponse(m))
	}
	return c.JSON(out)
}

func parseTimeQuery(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
