package models

// Requests for analytics HTTP endpoints. Defined in domain for consistency and reuse.

type PriceHistoryRequest struct {
	Ingredient string `param:"ingredient" validate:"required,max=128"`
	Days       int    `param:"days" validate:"gte=0,lte=3650"`
	AsOf       string `query:"as_of"`
}

type DealPatternRequest struct {
	Ingredient string `param:"ingredient" validate:"required,max=128"`
	AsOf       string `query:"as_of"`
}

type SnapshotRequest struct {
	AsOf string `query:"as_of"`
}
