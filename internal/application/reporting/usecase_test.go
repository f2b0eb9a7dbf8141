package reporting_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/invorya/pos-api/internal/application/reporting"
	"github.com/invorya/pos-api/internal/domain"
	"github.com/invorya/pos-api/internal/domain/entity"
	"github.com/invorya/pos-api/internal/infrastructure/memory"
)

var testScope = domain.Scope{TenantID: "tenant-1", StoreID: "store-1"}

type saleSpec struct {
	businessDate string
	hourUTC      int
	status       string
	method       string
	cashier      string
	total        int64
	points       int64
	voidReason   string
	lines        []lineSpec
}

type lineSpec struct {
	productID string
	name      string
	qty       int64
	subtotal  int64
}

func newFixture(t *testing.T) (*reporting.UseCase, *memory.Store) {
	t.Helper()
	store := memory.New(time.UTC)
	return reporting.NewUseCase(store.Reports()), store
}

func seedSale(t *testing.T, store *memory.Store, spec saleSpec) {
	t.Helper()
	day, err := time.Parse("2006-01-02", spec.businessDate)
	require.NoError(t, err)
	occurred := day.Add(time.Duration(spec.hourUTC) * time.Hour)

	s := &entity.Sale{
		ID:            uuid.New().String(),
		TenantID:      testScope.TenantID,
		StoreID:       testScope.StoreID,
		CashierID:     spec.cashier,
		Status:        spec.status,
		PaymentMethod: spec.method,
		Subtotal:      decimal.NewFromInt(spec.total),
		Total:         decimal.NewFromInt(spec.total),
		PointsEarned:  spec.points,
		OccurredAt:    occurred,
		BusinessDate:  spec.businessDate,
		VoidReason:    spec.voidReason,
		CreatedAt:     occurred,
	}
	for _, l := range spec.lines {
		s.Lines = append(s.Lines, &entity.SaleLine{
			ID:          uuid.New().String(),
			SaleID:      s.ID,
			ProductID:   l.productID,
			ProductName: l.name,
			Quantity:    decimal.NewFromInt(l.qty),
			Subtotal:    decimal.NewFromInt(l.subtotal),
		})
	}
	require.NoError(t, store.Sales().Create(context.Background(), s))
}

func TestGetDailySummary_AgrupaPorFechaDeNegocio(t *testing.T) {
	uc, store := newFixture(t)
	seedSale(t, store, saleSpec{businessDate: "2025-03-10", hourUTC: 12, status: entity.SaleStatusCompleted, method: entity.PaymentCash, cashier: "ana", total: 30, points: 3})
	seedSale(t, store, saleSpec{businessDate: "2025-03-10", hourUTC: 14, status: entity.SaleStatusCompleted, method: entity.PaymentCard, cashier: "ana", total: 20})
	seedSale(t, store, saleSpec{businessDate: "2025-03-10", hourUTC: 16, status: entity.SaleStatusVoided, method: entity.PaymentCash, cashier: "ana", total: 15, voidReason: "error"})
	// otro día de negocio: fuera del resumen
	seedSale(t, store, saleSpec{businessDate: "2025-03-11", hourUTC: 12, status: entity.SaleStatusCompleted, method: entity.PaymentCash, cashier: "ana", total: 99})

	summary, err := uc.GetDailySummary(context.Background(), testScope, "2025-03-10")
	require.NoError(t, err)
	assert.Equal(t, "2025-03-10", summary.BusinessDate)
	assert.Equal(t, int64(2), summary.SaleCount)
	assert.Equal(t, int64(1), summary.VoidCount)
	assert.True(t, summary.GrossTotal.Equal(decimal.NewFromInt(50)), "bruto %s", summary.GrossTotal)
	assert.True(t, summary.VoidedTotal.Equal(decimal.NewFromInt(15)))
	assert.True(t, summary.NetTotal.Equal(decimal.NewFromInt(50)), "las anuladas no restan del neto, simplemente no suman")
	assert.Equal(t, int64(3), summary.PointsEarned)
}

func TestGetDailySummary_FechaInvalida(t *testing.T) {
	uc, _ := newFixture(t)
	_, err := uc.GetDailySummary(context.Background(), testScope, "10/03/2025")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestGetTopProducts_OrdenaPorUnidades(t *testing.T) {
	uc, store := newFixture(t)
	seedSale(t, store, saleSpec{
		businessDate: "2025-03-10", hourUTC: 12, status: entity.SaleStatusCompleted, method: entity.PaymentCash, cashier: "ana", total: 50,
		lines: []lineSpec{
			{productID: "cafe", name: "Café", qty: 3, subtotal: 30},
			{productID: "jugo", name: "Jugo", qty: 1, subtotal: 7},
		},
	})
	seedSale(t, store, saleSpec{
		businessDate: "2025-03-11", hourUTC: 12, status: entity.SaleStatusCompleted, method: entity.PaymentCash, cashier: "ana", total: 20,
		lines: []lineSpec{{productID: "cafe", name: "Café", qty: 2, subtotal: 20}},
	})
	// las líneas de una venta anulada no cuentan
	seedSale(t, store, saleSpec{
		businessDate: "2025-03-11", hourUTC: 13, status: entity.SaleStatusVoided, method: entity.PaymentCash, cashier: "ana", total: 70, voidReason: "error",
		lines: []lineSpec{{productID: "jugo", name: "Jugo", qty: 10, subtotal: 70}},
	})

	top, err := uc.GetTopProducts(context.Background(), testScope, "2025-03-10", "2025-03-11", 10)
	require.NoError(t, err)
	require.Len(t, top, 2)
	assert.Equal(t, "cafe", top[0].ProductID)
	assert.True(t, top[0].UnitsSold.Equal(decimal.NewFromInt(5)))
	assert.True(t, top[0].Revenue.Equal(decimal.NewFromInt(50)))
	assert.Equal(t, "jugo", top[1].ProductID)
	assert.True(t, top[1].UnitsSold.Equal(decimal.NewFromInt(1)))
}

func TestGetTopProducts_RangoInvalido(t *testing.T) {
	uc, _ := newFixture(t)
	_, err := uc.GetTopProducts(context.Background(), testScope, "2025-03-11", "2025-03-10", 10)
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "from posterior a to")
}

func TestGetSalesByPaymentMethod(t *testing.T) {
	uc, store := newFixture(t)
	seedSale(t, store, saleSpec{businessDate: "2025-03-10", hourUTC: 10, status: entity.SaleStatusCompleted, method: entity.PaymentCash, cashier: "ana", total: 10})
	seedSale(t, store, saleSpec{businessDate: "2025-03-10", hourUTC: 11, status: entity.SaleStatusCompleted, method: entity.PaymentCash, cashier: "ana", total: 20})
	seedSale(t, store, saleSpec{businessDate: "2025-03-10", hourUTC: 12, status: entity.SaleStatusCompleted, method: entity.PaymentCard, cashier: "ana", total: 15})

	rows, err := uc.GetSalesByPaymentMethod(context.Background(), testScope, "2025-03-10", "2025-03-10")
	require.NoError(t, err)

	byMethod := map[string]decimal.Decimal{}
	for _, r := range rows {
		byMethod[r.PaymentMethod] = r.Total
	}
	assert.True(t, byMethod[entity.PaymentCash].Equal(decimal.NewFromInt(30)))
	assert.True(t, byMethod[entity.PaymentCard].Equal(decimal.NewFromInt(15)))
}

func TestGetHourlyDistribution_HoraLocal(t *testing.T) {
	uc, store := newFixture(t)
	seedSale(t, store, saleSpec{businessDate: "2025-03-10", hourUTC: 9, status: entity.SaleStatusCompleted, method: entity.PaymentCash, cashier: "ana", total: 10})
	seedSale(t, store, saleSpec{businessDate: "2025-03-10", hourUTC: 9, status: entity.SaleStatusCompleted, method: entity.PaymentCash, cashier: "ana", total: 5})
	seedSale(t, store, saleSpec{businessDate: "2025-03-10", hourUTC: 18, status: entity.SaleStatusCompleted, method: entity.PaymentCash, cashier: "ana", total: 7})

	rows, err := uc.GetHourlyDistribution(context.Background(), testScope, "2025-03-10", "2025-03-10")
	require.NoError(t, err)

	byHour := map[int]int64{}
	for _, r := range rows {
		byHour[r.Hour] = r.SaleCount
	}
	assert.Equal(t, int64(2), byHour[9])
	assert.Equal(t, int64(1), byHour[18])
}

func TestGetVoidReasons_AgrupaPorMotivo(t *testing.T) {
	uc, store := newFixture(t)
	seedSale(t, store, saleSpec{businessDate: "2025-03-10", hourUTC: 10, status: entity.SaleStatusVoided, method: entity.PaymentCash, cashier: "ana", total: 10, voidReason: "error de cobro"})
	seedSale(t, store, saleSpec{businessDate: "2025-03-10", hourUTC: 11, status: entity.SaleStatusVoided, method: entity.PaymentCash, cashier: "ana", total: 20, voidReason: "error de cobro"})
	seedSale(t, store, saleSpec{businessDate: "2025-03-10", hourUTC: 12, status: entity.SaleStatusVoided, method: entity.PaymentCash, cashier: "ana", total: 5, voidReason: "cliente"})
	seedSale(t, store, saleSpec{businessDate: "2025-03-10", hourUTC: 13, status: entity.SaleStatusCompleted, method: entity.PaymentCash, cashier: "ana", total: 50})

	rows, err := uc.GetVoidReasons(context.Background(), testScope, "2025-03-10", "2025-03-10")
	require.NoError(t, err)

	byReason := map[string]int64{}
	for _, r := range rows {
		byReason[r.Reason] = r.VoidCount
	}
	assert.Equal(t, int64(2), byReason["error de cobro"])
	assert.Equal(t, int64(1), byReason["cliente"])
	assert.Len(t, rows, 2, "las ventas completadas no aparecen")
}

func TestGetSalesByCashier_OtroTenantNoAparece(t *testing.T) {
	uc, store := newFixture(t)
	seedSale(t, store, saleSpec{businessDate: "2025-03-10", hourUTC: 10, status: entity.SaleStatusCompleted, method: entity.PaymentCash, cashier: "ana", total: 10})

	foreign := &entity.Sale{
		ID:            uuid.New().String(),
		TenantID:      "tenant-2",
		StoreID:       "store-9",
		CashierID:     "bob",
		Status:        entity.SaleStatusCompleted,
		PaymentMethod: entity.PaymentCash,
		Total:         decimal.NewFromInt(500),
		OccurredAt:    time.Date(2025, 3, 10, 10, 0, 0, 0, time.UTC),
		BusinessDate:  "2025-03-10",
	}
	require.NoError(t, store.Sales().Create(context.Background(), foreign))

	rows, err := uc.GetSalesByCashier(context.Background(), testScope, "2025-03-10", "2025-03-10")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "ana", rows[0].CashierID)
	assert.True(t, rows[0].Total.Equal(decimal.NewFromInt(10)))
}
