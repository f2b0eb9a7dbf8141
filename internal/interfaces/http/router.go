package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/invorya/pos-api/internal/application/inventory"
	"github.com/invorya/pos-api/internal/application/reporting"
	"github.com/invorya/pos-api/internal/application/sale"
	"github.com/invorya/pos-api/internal/application/shift"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	SaleUC      *sale.UseCase
	ShiftUC     *shift.UseCase
	InventoryUC *inventory.LedgerUseCase
	ReportUC    *reporting.UseCase
	JWTSecret   string
}

// Router registra las rutas de la API. Toda la API es protegida: el token
// lleva tenant y tienda y delimita el alcance de cada petición.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api", AuthMiddleware(deps.JWTSecret))

	// Ventas
	sales := api.Group("/sales")
	saleHandler := NewSaleHandler(deps.SaleUC)
	sales.Post("/", saleHandler.Create)
	sales.Get("/:id", saleHandler.GetByID)
	sales.Post("/:id/void", saleHandler.Void)

	// Turnos de caja
	shifts := api.Group("/shifts")
	shiftHandler := NewShiftHandler(deps.ShiftUC)
	shifts.Post("/", shiftHandler.Open)
	shifts.Get("/current", shiftHandler.GetCurrent)
	shifts.Get("/:id/close-preview", shiftHandler.ClosePreview)
	shifts.Post("/:id/close", shiftHandler.Close)

	// Inventario (ajustes solo para admin/gerente)
	inv := api.Group("/inventory")
	inventoryHandler := NewInventoryHandler(deps.InventoryUC)
	inv.Post("/adjustments", RequireRole("admin", "gerente"), inventoryHandler.Adjust)
	inv.Put("/balances", RequireRole("admin", "gerente"), inventoryHandler.SetBalance)
	inv.Get("/balances", inventoryHandler.ListBalances)
	inv.Get("/balances/:item_type/:item_id", inventoryHandler.GetBalance)
	inv.Get("/movements/:item_type/:item_id", inventoryHandler.ListMovements)

	// Reportes
	reports := api.Group("/reports")
	reportHandler := NewReportHandler(deps.ReportUC)
	reports.Get("/daily-summary", reportHandler.DailySummary)
	reports.Get("/top-products", reportHandler.TopProducts)
	reports.Get("/payment-methods", reportHandler.SalesByPaymentMethod)
	reports.Get("/hourly", reportHandler.HourlyDistribution)
	reports.Get("/cashiers", reportHandler.SalesByCashier)
	reports.Get("/void-reasons", reportHandler.VoidReasons)
	reports.Get("/shifts", reportHandler.ShiftReports)
}
