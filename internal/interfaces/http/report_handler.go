package http

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/invorya/pos-api/internal/application/reporting"
)

// ReportHandler expone las proyecciones de reporte (protegido, solo lectura).
type ReportHandler struct {
	uc *reporting.UseCase
}

// NewReportHandler construye el handler.
func NewReportHandler(uc *reporting.UseCase) *ReportHandler {
	return &ReportHandler{uc: uc}
}

// DailySummary godoc
// @Summary      Resumen de un día de negocio
// @Tags         reports
// @Security     Bearer
// @Produce      json
// @Param        date  query  string  true  "YYYY-MM-DD (día de negocio)"
// @Success      200  {object}  dto.DailySummaryResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/reports/daily-summary [get]
func (h *ReportHandler) DailySummary(c *fiber.Ctx) error {
	summary, err := h.uc.GetDailySummary(c.Context(), GetScope(c), c.Query("date"))
	if err != nil {
		return respondDomainError(c, err)
	}
	return c.JSON(summary)
}

// TopProducts godoc
// @Summary      Productos más vendidos del período
// @Tags         reports
// @Security     Bearer
// @Produce      json
// @Param        from   query  string  true   "YYYY-MM-DD"
// @Param        to     query  string  true   "YYYY-MM-DD"
// @Param        limit  query  int     false  "default 10"
// @Success      200  {array}  dto.TopProductResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/reports/top-products [get]
func (h *ReportHandler) TopProducts(c *fiber.Ctx) error {
	limit, _ := strconv.Atoi(c.Query("limit", "10"))
	rows, err := h.uc.GetTopProducts(c.Context(), GetScope(c), c.Query("from"), c.Query("to"), limit)
	if err != nil {
		return respondDomainError(c, err)
	}
	return c.JSON(rows)
}

// SalesByPaymentMethod godoc
// @Summary      Ventas por método de pago
// @Tags         reports
// @Security     Bearer
// @Produce      json
// @Param        from  query  string  true  "YYYY-MM-DD"
// @Param        to    query  string  true  "YYYY-MM-DD"
// @Success      200  {array}  dto.PaymentMethodReportResponse
// @Router       /api/reports/payment-methods [get]
func (h *ReportHandler) SalesByPaymentMethod(c *fiber.Ctx) error {
	rows, err := h.uc.GetSalesByPaymentMethod(c.Context(), GetScope(c), c.Query("from"), c.Query("to"))
	if err != nil {
		return respondDomainError(c, err)
	}
	return c.JSON(rows)
}

// HourlyDistribution godoc
// @Summary      Distribución horaria de ventas
// @Tags         reports
// @Security     Bearer
// @Produce      json
// @Param        from  query  string  true  "YYYY-MM-DD"
// @Param        to    query  string  true  "YYYY-MM-DD"
// @Success      200  {array}  dto.HourlyReportResponse
// @Router       /api/reports/hourly [get]
func (h *ReportHandler) HourlyDistribution(c *fiber.Ctx) error {
	rows, err := h.uc.GetHourlyDistribution(c.Context(), GetScope(c), c.Query("from"), c.Query("to"))
	if err != nil {
		return respondDomainError(c, err)
	}
	return c.JSON(rows)
}

// SalesByCashier godoc
// @Summary      Ventas por cajero
// @Tags         reports
// @Security     Bearer
// @Produce      json
// @Param        from  query  string  true  "YYYY-MM-DD"
// @Param        to    query  string  true  "YYYY-MM-DD"
// @Success      200  {array}  dto.CashierReportResponse
// @Router       /api/reports/cashiers [get]
func (h *ReportHandler) SalesByCashier(c *fiber.Ctx) error {
	rows, err := h.uc.GetSalesByCashier(c.Context(), GetScope(c), c.Query("from"), c.Query("to"))
	if err != nil {
		return respondDomainError(c, err)
	}
	return c.JSON(rows)
}

// VoidReasons godoc
// @Summary      Anulaciones por motivo
// @Tags         reports
// @Security     Bearer
// @Produce      json
// @Param        from  query  string  true  "YYYY-MM-DD"
// @Param        to    query  string  true  "YYYY-MM-DD"
// @Success      200  {array}  dto.VoidReasonReportResponse
// @Router       /api/reports/void-reasons [get]
func (h *ReportHandler) VoidReasons(c *fiber.Ctx) error {
	rows, err := h.uc.GetVoidReasons(c.Context(), GetScope(c), c.Query("from"), c.Query("to"))
	if err != nil {
		return respondDomainError(c, err)
	}
	return c.JSON(rows)
}

// ShiftReports godoc
// @Summary      Resumen por turno del período
// @Tags         reports
// @Security     Bearer
// @Produce      json
// @Param        from  query  string  true  "YYYY-MM-DD"
// @Param        to    query  string  true  "YYYY-MM-DD"
// @Success      200  {array}  dto.ShiftReportResponse
// @Router       /api/reports/shifts [get]
func (h *ReportHandler) ShiftReports(c *fiber.Ctx) error {
	rows, err := h.uc.GetShiftReports(c.Context(), GetScope(c), c.Query("from"), c.Query("to"))
	if err != nil {
		return respondDomainError(c, err)
	}
	return c.JSON(rows)
}
