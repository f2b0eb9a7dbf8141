package inventory_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/invorya/pos-api/internal/application/dto"
	appinv "github.com/invorya/pos-api/internal/application/inventory"
	"github.com/invorya/pos-api/internal/domain"
	"github.com/invorya/pos-api/internal/domain/entity"
	"github.com/invorya/pos-api/internal/domain/repository"
	infraaudit "github.com/invorya/pos-api/internal/infrastructure/audit"
	infraclock "github.com/invorya/pos-api/internal/infrastructure/clock"
	"github.com/invorya/pos-api/internal/infrastructure/memory"
	"github.com/invorya/pos-api/pkg/logger"
)

var (
	testScope = domain.Scope{TenantID: "tenant-1", StoreID: "store-1"}
	testActor = domain.Actor{UserID: "user-1", Role: "cajero"}
	fixedNow  = time.Date(2025, 3, 10, 15, 0, 0, 0, time.UTC)
)

func newFixture(t *testing.T) (*appinv.LedgerUseCase, *memory.Store) {
	t.Helper()
	store := memory.New(time.UTC)
	clk := infraclock.NewFixed(fixedNow, "UTC", 0)
	uc := appinv.NewLedgerUseCase(
		store,
		store.Balances(),
		store.Movements(),
		clk,
		infraaudit.NewRepositoryLogger(store.Audits()),
		logger.Nop(),
	)
	return uc, store
}

func seedBalance(t *testing.T, store *memory.Store, itemType, itemID string, onHand int64) {
	t.Helper()
	err := store.Balances().Save(context.Background(), &entity.InventoryBalance{
		TenantID:  testScope.TenantID,
		StoreID:   testScope.StoreID,
		ItemType:  itemType,
		ItemID:    itemID,
		OnHand:    decimal.NewFromInt(onHand),
		Reserved:  decimal.Zero,
		UpdatedAt: fixedNow,
	})
	require.NoError(t, err)
}

func TestAdjustInventory_AplicaDelta(t *testing.T) {
	uc, store := newFixture(t)
	seedBalance(t, store, entity.ItemTypeProduct, "cafe", 10)

	balance, err := uc.AdjustInventory(context.Background(), testScope, dto.AdjustInventoryRequest{
		ItemType: entity.ItemTypeProduct,
		ItemID:   "cafe",
		Delta:    decimal.NewFromInt(-4),
		Reason:   "merma",
	}, testActor)
	require.NoError(t, err)
	assert.True(t, balance.OnHand.Equal(decimal.NewFromInt(6)), "10 - 4 = 6, quedó %s", balance.OnHand)

	// el ajuste queda en el diario
	movs, err := uc.ListMovements(context.Background(), testScope, entity.ItemTypeProduct, "cafe", nil, nil, dto.PageRequest{})
	require.NoError(t, err)
	require.Len(t, movs, 1)
	assert.Equal(t, entity.MovementTypeAdjustment, movs[0].Type)
	assert.True(t, movs[0].Quantity.Equal(decimal.NewFromInt(-4)))
	assert.Equal(t, "merma", movs[0].Reason)
}

func TestAdjustInventory_CreaFilaSiNoExiste(t *testing.T) {
	uc, _ := newFixture(t)

	balance, err := uc.AdjustInventory(context.Background(), testScope, dto.AdjustInventoryRequest{
		ItemType: entity.ItemTypeProduct,
		ItemID:   "nuevo",
		Delta:    decimal.NewFromInt(25),
	}, testActor)
	require.NoError(t, err)
	assert.True(t, balance.OnHand.Equal(decimal.NewFromInt(25)))
	assert.Equal(t, int64(1), balance.Version)
}

func TestAdjustInventory_NegativoRetornaConflicto(t *testing.T) {
	uc, store := newFixture(t)
	seedBalance(t, store, entity.ItemTypeProduct, "cafe", 3)

	_, err := uc.AdjustInventory(context.Background(), testScope, dto.AdjustInventoryRequest{
		ItemType: entity.ItemTypeProduct,
		ItemID:   "cafe",
		Delta:    decimal.NewFromInt(-5),
	}, testActor)

	var conflict *domain.InventoryAdjustmentConflictError
	require.ErrorAs(t, err, &conflict)
	assert.True(t, conflict.OnHand.Equal(decimal.NewFromInt(3)))
	assert.True(t, conflict.Requested.Equal(decimal.NewFromInt(-5)))

	// el saldo no cambió y no quedó movimiento
	balance, err := uc.GetBalance(context.Background(), testScope, entity.ItemTypeProduct, "cafe")
	require.NoError(t, err)
	assert.True(t, balance.OnHand.Equal(decimal.NewFromInt(3)))
	movs, err := uc.ListMovements(context.Background(), testScope, entity.ItemTypeProduct, "cafe", nil, nil, dto.PageRequest{})
	require.NoError(t, err)
	assert.Empty(t, movs)
}

func TestAdjustInventory_EntradaInvalida(t *testing.T) {
	uc, _ := newFixture(t)
	ctx := context.Background()

	_, err := uc.AdjustInventory(ctx, testScope, dto.AdjustInventoryRequest{ItemID: "", Delta: decimal.NewFromInt(1)}, testActor)
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "item vacío")

	_, err = uc.AdjustInventory(ctx, testScope, dto.AdjustInventoryRequest{ItemID: "x", Delta: decimal.Zero}, testActor)
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "delta cero")

	_, err = uc.AdjustInventory(ctx, testScope, dto.AdjustInventoryRequest{ItemType: "combo", ItemID: "x", Delta: decimal.NewFromInt(1)}, testActor)
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "tipo desconocido")
}

func TestSetInventoryBalance_TomaFisica(t *testing.T) {
	uc, store := newFixture(t)
	seedBalance(t, store, entity.ItemTypeProduct, "cafe", 10)

	balance, err := uc.SetInventoryBalance(context.Background(), testScope, dto.SetInventoryBalanceRequest{
		ItemType: entity.ItemTypeProduct,
		ItemID:   "cafe",
		OnHand:   decimal.NewFromInt(7),
	}, testActor)
	require.NoError(t, err)
	assert.True(t, balance.OnHand.Equal(decimal.NewFromInt(7)))

	// el movimiento SET registra el delta contra el saldo anterior
	movs, err := uc.ListMovements(context.Background(), testScope, entity.ItemTypeProduct, "cafe", nil, nil, dto.PageRequest{})
	require.NoError(t, err)
	require.Len(t, movs, 1)
	assert.Equal(t, entity.MovementTypeSet, movs[0].Type)
	assert.True(t, movs[0].Quantity.Equal(decimal.NewFromInt(-3)))
}

func TestSetInventoryBalance_RechazaNegativo(t *testing.T) {
	uc, _ := newFixture(t)
	_, err := uc.SetInventoryBalance(context.Background(), testScope, dto.SetInventoryBalanceRequest{
		ItemType: entity.ItemTypeProduct,
		ItemID:   "cafe",
		OnHand:   decimal.NewFromInt(-1),
	}, testActor)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestConsumeForSale_TodoONada(t *testing.T) {
	uc, store := newFixture(t)
	seedBalance(t, store, entity.ItemTypeProduct, "cafe", 10)
	seedBalance(t, store, entity.ItemTypeProduct, "pan", 5)
	seedBalance(t, store, entity.ItemTypeProduct, "leche", 1)

	lines := []appinv.ConsumeLine{
		{ItemType: entity.ItemTypeProduct, ItemID: "cafe", Quantity: decimal.NewFromInt(2)},
		{ItemType: entity.ItemTypeProduct, ItemID: "pan", Quantity: decimal.NewFromInt(1)},
		{ItemType: entity.ItemTypeProduct, ItemID: "leche", Quantity: decimal.NewFromInt(3)}, // insuficiente
	}
	runErr := store.Run(context.Background(), func(
		balanceRepo repository.InventoryBalanceRepository,
		movementRepo repository.InventoryMovementRepository,
	) error {
		return uc.ConsumeForSaleInTx(context.Background(), balanceRepo, movementRepo, testScope, "sale-1", "token-1", lines, testActor.UserID, fixedNow)
	})

	var unavailable *domain.ItemUnavailableError
	require.ErrorAs(t, runErr, &unavailable)
	assert.Equal(t, "leche", unavailable.ItemID)
	assert.True(t, unavailable.AvailableQty.Equal(decimal.NewFromInt(1)))

	// rollback total: ningún saldo quedó tocado
	for item, want := range map[string]int64{"cafe": 10, "pan": 5, "leche": 1} {
		balance, err := uc.GetBalance(context.Background(), testScope, entity.ItemTypeProduct, item)
		require.NoError(t, err)
		assert.True(t, balance.OnHand.Equal(decimal.NewFromInt(want)), "%s debe seguir en %d", item, want)
	}
}

func TestConsumeForSale_ItemNoControladoSeOmite(t *testing.T) {
	uc, store := newFixture(t)
	seedBalance(t, store, entity.ItemTypeProduct, "cafe", 10)

	lines := []appinv.ConsumeLine{
		{ItemType: entity.ItemTypeProduct, ItemID: "cafe", Quantity: decimal.NewFromInt(2)},
		{ItemType: entity.ItemTypeProduct, ItemID: "servilleta", Quantity: decimal.NewFromInt(50)}, // sin fila de saldo
	}
	err := store.Run(context.Background(), func(
		balanceRepo repository.InventoryBalanceRepository,
		movementRepo repository.InventoryMovementRepository,
	) error {
		return uc.ConsumeForSaleInTx(context.Background(), balanceRepo, movementRepo, testScope, "sale-2", "token-2", lines, testActor.UserID, fixedNow)
	})
	require.NoError(t, err)

	balance, err := uc.GetBalance(context.Background(), testScope, entity.ItemTypeProduct, "cafe")
	require.NoError(t, err)
	assert.True(t, balance.OnHand.Equal(decimal.NewFromInt(8)))

	// el ítem no controlado no genera movimiento ni saldo
	_, err = uc.GetBalance(context.Background(), testScope, entity.ItemTypeProduct, "servilleta")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestReverseForSale_Idempotente(t *testing.T) {
	uc, store := newFixture(t)
	seedBalance(t, store, entity.ItemTypeProduct, "cafe", 10)
	ctx := context.Background()

	consume := func() error {
		return store.Run(ctx, func(
			balanceRepo repository.InventoryBalanceRepository,
			movementRepo repository.InventoryMovementRepository,
		) error {
			return uc.ConsumeForSaleInTx(ctx, balanceRepo, movementRepo, testScope, "sale-3", "token-3",
				[]appinv.ConsumeLine{{ItemType: entity.ItemTypeProduct, ItemID: "cafe", Quantity: decimal.NewFromInt(4)}},
				testActor.UserID, fixedNow)
		})
	}
	require.NoError(t, consume())

	reverse := func() (bool, error) {
		var reversed bool
		err := store.Run(ctx, func(
			balanceRepo repository.InventoryBalanceRepository,
			movementRepo repository.InventoryMovementRepository,
		) error {
			var err error
			reversed, err = uc.ReverseForSaleInTx(ctx, balanceRepo, movementRepo, testScope, "sale-3", "token-3", testActor.UserID, fixedNow)
			return err
		})
		return reversed, err
	}

	reversed, err := reverse()
	require.NoError(t, err)
	assert.True(t, reversed)

	balance, err := uc.GetBalance(ctx, testScope, entity.ItemTypeProduct, "cafe")
	require.NoError(t, err)
	assert.True(t, balance.OnHand.Equal(decimal.NewFromInt(10)), "la reversión restaura el saldo")

	// segunda reversión con el mismo token: no-op
	reversed, err = reverse()
	require.NoError(t, err)
	assert.False(t, reversed)

	balance, err = uc.GetBalance(ctx, testScope, entity.ItemTypeProduct, "cafe")
	require.NoError(t, err)
	assert.True(t, balance.OnHand.Equal(decimal.NewFromInt(10)), "la segunda reversión no duplica stock")
}

func TestReverseForSale_TokenVacioNoHaceNada(t *testing.T) {
	uc, store := newFixture(t)
	err := store.Run(context.Background(), func(
		balanceRepo repository.InventoryBalanceRepository,
		movementRepo repository.InventoryMovementRepository,
	) error {
		reversed, err := uc.ReverseForSaleInTx(context.Background(), balanceRepo, movementRepo, testScope, "sale-x", "", testActor.UserID, fixedNow)
		assert.False(t, reversed)
		return err
	})
	require.NoError(t, err)
}

func TestGetBalance_NoExisteRetornaNotFound(t *testing.T) {
	uc, _ := newFixture(t)
	_, err := uc.GetBalance(context.Background(), testScope, entity.ItemTypeProduct, "fantasma")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
