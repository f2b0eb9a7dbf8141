package sale_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/invorya/pos-api/internal/application/dto"
	appinv "github.com/invorya/pos-api/internal/application/inventory"
	"github.com/invorya/pos-api/internal/application/ports"
	"github.com/invorya/pos-api/internal/application/sale"
	"github.com/invorya/pos-api/internal/domain"
	"github.com/invorya/pos-api/internal/domain/entity"
	infraaudit "github.com/invorya/pos-api/internal/infrastructure/audit"
	"github.com/invorya/pos-api/internal/infrastructure/catalog"
	infraclock "github.com/invorya/pos-api/internal/infrastructure/clock"
	"github.com/invorya/pos-api/internal/infrastructure/loyalty"
	"github.com/invorya/pos-api/internal/infrastructure/memory"
	"github.com/invorya/pos-api/pkg/logger"
)

var (
	testScope = domain.Scope{TenantID: "tenant-1", StoreID: "store-1"}
	cashier   = domain.Actor{UserID: "cajero-1", Role: "cajero"}
	fixedNow  = time.Date(2025, 3, 10, 15, 0, 0, 0, time.UTC)
)

// failingPoints simula un servicio de fidelidad caído.
type failingPoints struct{}

func (failingPoints) ReversePoints(ctx context.Context, saleID string, points int64, userID string, occurredAtUtc time.Time) error {
	return errors.New("loyalty: connection refused")
}

// recordingPoints registra las reversiones recibidas.
type recordingPoints struct {
	calls []string
}

func (r *recordingPoints) ReversePoints(ctx context.Context, saleID string, points int64, userID string, occurredAtUtc time.Time) error {
	r.calls = append(r.calls, saleID)
	return nil
}

type fixture struct {
	uc      *sale.UseCase
	store   *memory.Store
	cat     *catalog.StaticProvider
	ledger  *appinv.LedgerUseCase
	points  ports.PointsReverser
	policy  sale.Policy
	shiftID string
}

func newFixture(t *testing.T, policy sale.Policy, points ports.PointsReverser) *fixture {
	t.Helper()
	store := memory.New(time.UTC)
	clk := infraclock.NewFixed(fixedNow, "UTC", 0)
	audit := infraaudit.NewRepositoryLogger(store.Audits())
	log := logger.Nop()
	ledger := appinv.NewLedgerUseCase(store, store.Balances(), store.Movements(), clk, audit, log)
	if points == nil {
		points = loyalty.Noop{}
	}
	cat := catalog.NewStaticProvider()
	uc := sale.NewUseCase(store, ledger, store.Sales(), store.Shifts(), cat, points, clk, audit, log, policy)
	return &fixture{uc: uc, store: store, cat: cat, ledger: ledger, points: points, policy: policy}
}

func (f *fixture) openShift(t *testing.T) {
	t.Helper()
	shift := &entity.Shift{
		ID:           "shift-1",
		TenantID:     testScope.TenantID,
		StoreID:      testScope.StoreID,
		CashierID:    cashier.UserID,
		Status:       entity.ShiftStatusOpen,
		OpeningFloat: decimal.NewFromInt(100),
		OpenedAt:     fixedNow,
	}
	require.NoError(t, f.store.Shifts().Create(context.Background(), shift))
	f.shiftID = shift.ID
}

func (f *fixture) seedBalance(t *testing.T, itemType, itemID string, onHand int64) {
	t.Helper()
	require.NoError(t, f.store.Balances().Save(context.Background(), &entity.InventoryBalance{
		TenantID: testScope.TenantID,
		StoreID:  testScope.StoreID,
		ItemType: itemType,
		ItemID:   itemID,
		OnHand:   decimal.NewFromInt(onHand),
		Reserved: decimal.Zero,
	}))
}

func putHamburguesa(cat *catalog.StaticProvider) {
	cat.PutProduct(testScope.TenantID, ports.ProductSnapshot{
		ID:        "hamburguesa",
		Name:      "Hamburguesa",
		Active:    true,
		Available: true,
		Price:     decimal.NewFromInt(12),
		SelectionGroups: []ports.SelectionGroupSnapshot{
			{
				ID: "tamano", Name: "Tamaño", MinSelect: 1, MaxSelect: 1,
				Options: []ports.OptionItemSnapshot{
					{ID: "normal", Name: "Normal", Surcharge: decimal.Zero},
					{ID: "doble", Name: "Doble", Surcharge: decimal.NewFromInt(3)},
				},
			},
			{
				ID: "salsas", Name: "Salsas", MinSelect: 0, MaxSelect: 2,
				Options: []ports.OptionItemSnapshot{
					{ID: "bbq", Name: "BBQ", Surcharge: decimal.Zero},
					{ID: "ajo", Name: "Ajo", Surcharge: decimal.Zero},
					{ID: "picante", Name: "Picante", Surcharge: decimal.Zero},
				},
			},
		},
	})
	cat.PutExtra(testScope.TenantID, ports.ExtraSnapshot{
		ID: "queso", Name: "Queso extra", Active: true, Available: true, Price: decimal.NewFromInt(2),
	})
}

func lineaBasica(qty int64) dto.CreateSaleLineRequest {
	return dto.CreateSaleLineRequest{
		ProductID: "hamburguesa",
		Quantity:  decimal.NewFromInt(qty),
		Options:   []dto.SelectedOption{{GroupID: "tamano", OptionID: "doble"}},
	}
}

// ── CreateSale ────────────────────────────────────────────────────────────────

func TestCreateSale_CongelaPreciosYDescuentaStock(t *testing.T) {
	f := newFixture(t, sale.Policy{PointsRate: decimal.NewFromFloat(0.1)}, nil)
	putHamburguesa(f.cat)
	f.openShift(t)
	f.seedBalance(t, entity.ItemTypeProduct, "hamburguesa", 10)
	f.seedBalance(t, entity.ItemTypeExtra, "queso", 5)

	line := lineaBasica(2)
	line.Extras = []dto.SelectedExtra{{ExtraID: "queso", Quantity: decimal.NewFromInt(2)}}

	created, err := f.uc.CreateSale(context.Background(), testScope, cashier, dto.CreateSaleRequest{
		PaymentMethod: entity.PaymentCash,
		Lines:         []dto.CreateSaleLineRequest{line},
	})
	require.NoError(t, err)

	assert.Equal(t, entity.SaleStatusCompleted, created.Status)
	assert.Equal(t, f.shiftID, created.ShiftID)
	assert.NotEmpty(t, created.CommitToken)
	assert.Equal(t, "2025-03-10", created.BusinessDate)

	require.Len(t, created.Lines, 1)
	got := created.Lines[0]
	// precio unitario = base 12 + recargo "doble" 3
	assert.True(t, got.UnitPrice.Equal(decimal.NewFromInt(15)), "unitario %s", got.UnitPrice)
	assert.True(t, got.Subtotal.Equal(decimal.NewFromInt(30)), "subtotal %s", got.Subtotal)
	// total = 30 + queso 2x2
	assert.True(t, created.Subtotal.Equal(decimal.NewFromInt(30)))
	assert.True(t, created.Total.Equal(decimal.NewFromInt(34)), "total %s", created.Total)
	assert.Equal(t, int64(3), created.PointsEarned, "floor(34 * 0.1)")

	// stock descontado dentro de la misma transacción
	balance, err := f.ledger.GetBalance(context.Background(), testScope, entity.ItemTypeProduct, "hamburguesa")
	require.NoError(t, err)
	assert.True(t, balance.OnHand.Equal(decimal.NewFromInt(8)))
	balance, err = f.ledger.GetBalance(context.Background(), testScope, entity.ItemTypeExtra, "queso")
	require.NoError(t, err)
	assert.True(t, balance.OnHand.Equal(decimal.NewFromInt(3)))
}

func TestCreateSale_PrecioCongeladoNoSigueAlCatalogo(t *testing.T) {
	f := newFixture(t, sale.Policy{}, nil)
	putHamburguesa(f.cat)

	created, err := f.uc.CreateSale(context.Background(), testScope, cashier, dto.CreateSaleRequest{
		PaymentMethod: entity.PaymentCard,
		Lines:         []dto.CreateSaleLineRequest{lineaBasica(1)},
	})
	require.NoError(t, err)

	// el precio sube después de la venta
	f.cat.PutProduct(testScope.TenantID, ports.ProductSnapshot{
		ID: "hamburguesa", Name: "Hamburguesa", Active: true, Available: true,
		Price: decimal.NewFromInt(99),
		SelectionGroups: []ports.SelectionGroupSnapshot{{
			ID: "tamano", MinSelect: 1, MaxSelect: 1,
			Options: []ports.OptionItemSnapshot{{ID: "doble", Surcharge: decimal.NewFromInt(3)}},
		}},
	})

	reloaded, err := f.uc.GetSale(context.Background(), testScope, created.ID)
	require.NoError(t, err)
	assert.True(t, reloaded.Lines[0].UnitPrice.Equal(decimal.NewFromInt(15)), "la venta conserva el precio del momento")
}

func TestCreateSale_StockInsuficienteNoDejasEstado(t *testing.T) {
	f := newFixture(t, sale.Policy{}, nil)
	putHamburguesa(f.cat)
	f.seedBalance(t, entity.ItemTypeProduct, "hamburguesa", 1)

	_, err := f.uc.CreateSale(context.Background(), testScope, cashier, dto.CreateSaleRequest{
		PaymentMethod: entity.PaymentCash,
		Lines:         []dto.CreateSaleLineRequest{lineaBasica(5)},
	})

	var unavailable *domain.ItemUnavailableError
	require.ErrorAs(t, err, &unavailable)
	assert.Equal(t, "hamburguesa", unavailable.ItemID)
	assert.Equal(t, domain.ReasonUnavailableInStore, unavailable.Reason)
	assert.True(t, unavailable.AvailableQty.Equal(decimal.NewFromInt(1)))

	// nada persistido: ni venta ni movimiento ni saldo tocado
	balance, err := f.ledger.GetBalance(context.Background(), testScope, entity.ItemTypeProduct, "hamburguesa")
	require.NoError(t, err)
	assert.True(t, balance.OnHand.Equal(decimal.NewFromInt(1)))
	movs, err := f.ledger.ListMovements(context.Background(), testScope, entity.ItemTypeProduct, "hamburguesa", nil, nil, dto.PageRequest{})
	require.NoError(t, err)
	assert.Empty(t, movs)
}

func TestCreateSale_SinTurnoAbiertoConPolitica(t *testing.T) {
	f := newFixture(t, sale.Policy{ShiftRequired: true}, nil)
	putHamburguesa(f.cat)

	_, err := f.uc.CreateSale(context.Background(), testScope, cashier, dto.CreateSaleRequest{
		PaymentMethod: entity.PaymentCash,
		Lines:         []dto.CreateSaleLineRequest{lineaBasica(1)},
	})
	assert.ErrorIs(t, err, domain.ErrShiftRequired)
}

func TestCreateSale_SinTurnoSinPolitica(t *testing.T) {
	f := newFixture(t, sale.Policy{ShiftRequired: false}, nil)
	putHamburguesa(f.cat)

	created, err := f.uc.CreateSale(context.Background(), testScope, cashier, dto.CreateSaleRequest{
		PaymentMethod: entity.PaymentCash,
		Lines:         []dto.CreateSaleLineRequest{lineaBasica(1)},
	})
	require.NoError(t, err)
	assert.Empty(t, created.ShiftID)
}

func TestCreateSale_ProductoInactivo(t *testing.T) {
	f := newFixture(t, sale.Policy{}, nil)
	f.cat.PutProduct(testScope.TenantID, ports.ProductSnapshot{
		ID: "retirado", Name: "Retirado", Active: false, Available: true, Price: decimal.NewFromInt(5),
	})

	_, err := f.uc.CreateSale(context.Background(), testScope, cashier, dto.CreateSaleRequest{
		PaymentMethod: entity.PaymentCash,
		Lines: []dto.CreateSaleLineRequest{{
			ProductID: "retirado", Quantity: decimal.NewFromInt(1),
		}},
	})

	var unavailable *domain.ItemUnavailableError
	require.ErrorAs(t, err, &unavailable)
	assert.Equal(t, domain.ReasonInactive, unavailable.Reason)
}

func TestCreateSale_ProductoNoDisponibleEnTienda(t *testing.T) {
	f := newFixture(t, sale.Policy{}, nil)
	putHamburguesa(f.cat)
	f.cat.SetUnavailable(testScope, "hamburguesa")

	_, err := f.uc.CreateSale(context.Background(), testScope, cashier, dto.CreateSaleRequest{
		PaymentMethod: entity.PaymentCash,
		Lines:         []dto.CreateSaleLineRequest{lineaBasica(1)},
	})

	var unavailable *domain.ItemUnavailableError
	require.ErrorAs(t, err, &unavailable)
	assert.Equal(t, domain.ReasonUnavailableInStore, unavailable.Reason)
}

func TestCreateSale_OpcionNoPermitida(t *testing.T) {
	f := newFixture(t, sale.Policy{}, nil)
	putHamburguesa(f.cat)

	_, err := f.uc.CreateSale(context.Background(), testScope, cashier, dto.CreateSaleRequest{
		PaymentMethod: entity.PaymentCash,
		Lines: []dto.CreateSaleLineRequest{{
			ProductID: "hamburguesa",
			Quantity:  decimal.NewFromInt(1),
			Options: []dto.SelectedOption{
				{GroupID: "tamano", OptionID: "doble"},
				{GroupID: "salsas", OptionID: "mostaza"}, // no existe en el grupo
			},
		}},
	})

	var unavailable *domain.ItemUnavailableError
	require.ErrorAs(t, err, &unavailable)
	assert.Equal(t, "option", unavailable.ItemType)
	assert.Equal(t, domain.ReasonNotAllowed, unavailable.Reason)
}

func TestCreateSale_MinMaxDeGrupo(t *testing.T) {
	f := newFixture(t, sale.Policy{}, nil)
	putHamburguesa(f.cat)
	ctx := context.Background()

	// falta la selección obligatoria de "tamano"
	_, err := f.uc.CreateSale(ctx, testScope, cashier, dto.CreateSaleRequest{
		PaymentMethod: entity.PaymentCash,
		Lines: []dto.CreateSaleLineRequest{{
			ProductID: "hamburguesa", Quantity: decimal.NewFromInt(1),
		}},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "min_select incumplido")

	// tres salsas exceden max_select=2
	_, err = f.uc.CreateSale(ctx, testScope, cashier, dto.CreateSaleRequest{
		PaymentMethod: entity.PaymentCash,
		Lines: []dto.CreateSaleLineRequest{{
			ProductID: "hamburguesa", Quantity: decimal.NewFromInt(1),
			Options: []dto.SelectedOption{
				{GroupID: "tamano", OptionID: "normal"},
				{GroupID: "salsas", OptionID: "bbq"},
				{GroupID: "salsas", OptionID: "ajo"},
				{GroupID: "salsas", OptionID: "picante"},
			},
		}},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "max_select excedido")
}

func TestCreateSale_ValidacionDeEntrada(t *testing.T) {
	f := newFixture(t, sale.Policy{}, nil)
	ctx := context.Background()

	_, err := f.uc.CreateSale(ctx, testScope, cashier, dto.CreateSaleRequest{
		PaymentMethod: "BITCOIN",
		Lines:         []dto.CreateSaleLineRequest{lineaBasica(1)},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "método de pago desconocido")

	_, err = f.uc.CreateSale(ctx, testScope, cashier, dto.CreateSaleRequest{
		PaymentMethod: entity.PaymentCash,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "sin líneas")

	_, err = f.uc.CreateSale(ctx, testScope, cashier, dto.CreateSaleRequest{
		PaymentMethod: entity.PaymentCash,
		Lines:         []dto.CreateSaleLineRequest{{ProductID: "hamburguesa", Quantity: decimal.Zero}},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "cantidad no positiva")
}

func TestGetSale_OtroTenantEsNotFound(t *testing.T) {
	f := newFixture(t, sale.Policy{}, nil)
	putHamburguesa(f.cat)

	created, err := f.uc.CreateSale(context.Background(), testScope, cashier, dto.CreateSaleRequest{
		PaymentMethod: entity.PaymentCash,
		Lines:         []dto.CreateSaleLineRequest{lineaBasica(1)},
	})
	require.NoError(t, err)

	otherTenant := domain.Scope{TenantID: "tenant-2", StoreID: "store-9"}
	_, err = f.uc.GetSale(context.Background(), otherTenant, created.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound, "otro tenant no distingue entre inexistente y ajeno")
}

// ── VoidSale ──────────────────────────────────────────────────────────────────

func crearVentaConStock(t *testing.T, f *fixture) *entity.Sale {
	t.Helper()
	putHamburguesa(f.cat)
	f.seedBalance(t, entity.ItemTypeProduct, "hamburguesa", 10)
	created, err := f.uc.CreateSale(context.Background(), testScope, cashier, dto.CreateSaleRequest{
		PaymentMethod: entity.PaymentCash,
		Lines:         []dto.CreateSaleLineRequest{lineaBasica(2)},
	})
	require.NoError(t, err)
	return created
}

func TestVoidSale_RestauraInventario(t *testing.T) {
	points := &recordingPoints{}
	f := newFixture(t, sale.Policy{PointsRate: decimal.NewFromFloat(0.1)}, points)
	created := crearVentaConStock(t, f)

	result, err := f.uc.VoidSale(context.Background(), testScope, cashier, created.ID, dto.VoidSaleRequest{
		Reason: "cliente se retractó",
	})
	require.NoError(t, err)
	assert.Equal(t, entity.SaleStatusVoided, result.Sale.Status)
	assert.Equal(t, "cliente se retractó", result.Sale.VoidReason)
	assert.Equal(t, cashier.UserID, result.Sale.VoidedBy)
	require.NotNil(t, result.Sale.VoidedAt)
	assert.Empty(t, result.Warnings)

	balance, err := f.ledger.GetBalance(context.Background(), testScope, entity.ItemTypeProduct, "hamburguesa")
	require.NoError(t, err)
	assert.True(t, balance.OnHand.Equal(decimal.NewFromInt(10)), "el stock vuelve al nivel previo")

	// los puntos otorgados se revirtieron
	assert.Equal(t, []string{created.ID}, points.calls)
}

func TestVoidSale_DobleAnulacionEsConflicto(t *testing.T) {
	f := newFixture(t, sale.Policy{}, nil)
	created := crearVentaConStock(t, f)
	ctx := context.Background()

	_, err := f.uc.VoidSale(ctx, testScope, cashier, created.ID, dto.VoidSaleRequest{Reason: "error de cobro"})
	require.NoError(t, err)

	_, err = f.uc.VoidSale(ctx, testScope, cashier, created.ID, dto.VoidSaleRequest{Reason: "otra vez"})
	assert.ErrorIs(t, err, domain.ErrConflict)

	// la doble anulación no duplica la reposición de stock
	balance, err := f.ledger.GetBalance(ctx, testScope, entity.ItemTypeProduct, "hamburguesa")
	require.NoError(t, err)
	assert.True(t, balance.OnHand.Equal(decimal.NewFromInt(10)))
}

func TestVoidSale_SinMotivoEsInvalido(t *testing.T) {
	f := newFixture(t, sale.Policy{}, nil)
	created := crearVentaConStock(t, f)

	_, err := f.uc.VoidSale(context.Background(), testScope, cashier, created.ID, dto.VoidSaleRequest{})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestVoidSale_PINDeGerente(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("4321"), bcrypt.MinCost)
	require.NoError(t, err)
	f := newFixture(t, sale.Policy{ManagerPINHash: string(hash)}, nil)
	created := crearVentaConStock(t, f)
	ctx := context.Background()

	_, err = f.uc.VoidSale(ctx, testScope, cashier, created.ID, dto.VoidSaleRequest{
		Reason: "prueba", ManagerPIN: "0000",
	})
	assert.ErrorIs(t, err, domain.ErrUnauthorized, "PIN incorrecto")

	result, err := f.uc.VoidSale(ctx, testScope, cashier, created.ID, dto.VoidSaleRequest{
		Reason: "prueba", ManagerPIN: "4321",
	})
	require.NoError(t, err)
	assert.Equal(t, entity.SaleStatusVoided, result.Sale.Status)
}

func TestVoidSale_FallaDePuntosDejaAdvertencia(t *testing.T) {
	f := newFixture(t, sale.Policy{PointsRate: decimal.NewFromFloat(0.5)}, failingPoints{})
	created := crearVentaConStock(t, f)

	result, err := f.uc.VoidSale(context.Background(), testScope, cashier, created.ID, dto.VoidSaleRequest{
		Reason: "producto en mal estado",
	})
	require.NoError(t, err, "la anulación no falla por el colaborador de puntos")
	assert.Equal(t, entity.SaleStatusVoided, result.Sale.Status)
	require.Len(t, result.Warnings, 1)
	assert.Contains(t, result.Warnings[0], "puntos no revertidos")

	// el inventario sí quedó revertido
	balance, err := f.ledger.GetBalance(context.Background(), testScope, entity.ItemTypeProduct, "hamburguesa")
	require.NoError(t, err)
	assert.True(t, balance.OnHand.Equal(decimal.NewFromInt(10)))
}

func TestVoidSale_VentaDeOtroTenant(t *testing.T) {
	f := newFixture(t, sale.Policy{}, nil)
	created := crearVentaConStock(t, f)

	otherTenant := domain.Scope{TenantID: "tenant-2", StoreID: "store-9"}
	_, err := f.uc.VoidSale(context.Background(), otherTenant, cashier, created.ID, dto.VoidSaleRequest{Reason: "x"})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
