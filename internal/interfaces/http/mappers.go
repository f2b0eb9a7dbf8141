package http

import (
	"time"

	"github.com/invorya/pos-api/internal/application/dto"
	"github.com/invorya/pos-api/internal/domain/entity"
)

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func formatTimePtr(t *time.Time) string {
	if t == nil {
		return ""
	}
	return formatTime(*t)
}

func toSaleResponse(s *entity.Sale) dto.SaleResponse {
	out := dto.SaleResponse{
		ID:            s.ID,
		StoreID:       s.StoreID,
		ShiftID:       s.ShiftID,
		CashierID:     s.CashierID,
		Status:        s.Status,
		PaymentMethod: s.PaymentMethod,
		Subtotal:      s.Subtotal,
		Total:         s.Total,
		PointsEarned:  s.PointsEarned,
		CorrelationID: s.CorrelationID,
		OccurredAt:    formatTime(s.OccurredAt),
		BusinessDate:  s.BusinessDate,
		VoidReason:    s.VoidReason,
		VoidedAt:      formatTimePtr(s.VoidedAt),
	}
	for _, line := range s.Lines {
		lineResp := dto.SaleLineResponse{
			ID:          line.ID,
			ProductID:   line.ProductID,
			ProductName: line.ProductName,
			UnitPrice:   line.UnitPrice,
			Quantity:    line.Quantity,
			Subtotal:    line.Subtotal,
		}
		for _, opt := range line.Options {
			lineResp.Options = append(lineResp.Options, dto.SaleLineOptionResponse{
				GroupID:    opt.GroupID,
				OptionID:   opt.OptionID,
				OptionName: opt.OptionName,
				Surcharge:  opt.Surcharge,
			})
		}
		for _, ex := range line.Extras {
			lineResp.Extras = append(lineResp.Extras, dto.SaleLineExtraResponse{
				ExtraID:   ex.ExtraID,
				ExtraName: ex.ExtraName,
				UnitPrice: ex.UnitPrice,
				Quantity:  ex.Quantity,
			})
		}
		out.Lines = append(out.Lines, lineResp)
	}
	return out
}

func toShiftResponse(s *entity.Shift) dto.ShiftResponse {
	out := dto.ShiftResponse{
		ID:           s.ID,
		StoreID:      s.StoreID,
		CashierID:    s.CashierID,
		Status:       s.Status,
		OpeningFloat: s.OpeningFloat,
		OpenedAt:     formatTime(s.OpenedAt),
		ClosedAt:     formatTimePtr(s.ClosedAt),
		ClosedBy:     s.ClosedBy,
		Notes:        s.Notes,
	}
	for _, t := range s.Totals {
		out.Totals = append(out.Totals, dto.ShiftTotalResponse{
			PaymentMethod: t.PaymentMethod,
			Expected:      t.Expected,
			Counted:       t.Counted,
			Variance:      t.Variance,
		})
	}
	return out
}

func toBalanceResponse(b *entity.InventoryBalance) dto.InventoryBalanceResponse {
	return dto.InventoryBalanceResponse{
		ItemType:  b.ItemType,
		ItemID:    b.ItemID,
		OnHand:    b.OnHand,
		Reserved:  b.Reserved,
		Version:   b.Version,
		UpdatedAt: formatTime(b.UpdatedAt),
	}
}

func toMovementResponse(m *entity.InventoryMovement) dto.InventoryMovementResponse {
	return dto.InventoryMovementResponse{
		ID:          m.ID,
		ItemType:    m.ItemType,
		ItemID:      m.ItemID,
		Type:        m.Type,
		Quantity:    m.Quantity,
		Reason:      m.Reason,
		ReferenceID: m.ReferenceID,
		OccurredAt:  formatTime(m.OccurredAt),
		CreatedBy:   m.CreatedBy,
	}
}
