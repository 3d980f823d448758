// Command gen generates type-safe GORM query helpers for the loyalty models.
package main

import (
	"loyalty/internal/infra/persistence/model"

	"gorm.io/gen"
)

func main() {
	models := []any{
		model.ClientModel{},
		model.CoinHistoryModel{},
		model.CoinRuleModel{},
		model.VoucherRuleModel{},
		model.ClientVoucherModel{},
		model.VoucherHistoryModel{},
		model.VoucherReservationModel{},
		model.OrderModel{},
		model.OrderItemModel{},
		model.StaffModel{},
		model.RatingModel{},
	}

	g := gen.NewGenerator(gen.Config{
		OutPath:       "./internal/infra/persistence/postgres/query",
		Mode:          gen.WithDefaultQuery | gen.WithQueryInterface,
		FieldNullable: true,
	})

	g.ApplyBasic(models...)

	g.Execute()
}
