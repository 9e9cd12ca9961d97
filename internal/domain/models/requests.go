package models

// TradesRequest filters the trade ledger projection.
type TradesRequest struct {
	Model string `query:"model" validate:"omitempty,max=64"`
	Limit int    `query:"limit" default:"50" validate:"gte=1,lte=200"`
}

// PnlRequest selects one model's P&L series.
type PnlRequest struct {
	Model string `query:"model" validate:"required,max=64"`
	Limit int    `query:"limit" default:"300" validate:"gte=1,lte=3000"`
}
