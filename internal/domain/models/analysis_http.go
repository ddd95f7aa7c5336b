package models

// Requests for the analysis HTTP endpoints. Defined in domain for
// consistency and reuse; defaults and validation rules live on the tags.

type AdviceRequest struct {
	Symbol string `query:"symbol" json:"symbol" validate:"required"`
	N      int    `query:"n" json:"n" default:"1500" validate:"gte=300,lte=20000"`
}

type AnalogsRequest struct {
	Symbol    string  `query:"symbol" json:"symbol" validate:"required"`
	N         int     `query:"n" json:"n" default:"1500" validate:"gte=300,lte=20000"`
	Tolerance float64 `query:"tolerance" json:"tolerance" default:"0.05" validate:"gt=0,lte=0.5"`
	Enhanced  bool    `query:"enhanced" json:"enhanced" default:"true"`
}

type RegimeRequest struct {
	Symbol string `query:"symbol" json:"symbol" validate:"required"`
	N      int    `query:"n" json:"n" default:"400" validate:"gte=60,lte=20000"`
}

type ScanRequest struct {
	// Symbols overrides the configured scan universe when non-empty.
	Symbols []string `query:"symbols" json:"symbols" validate:"max=100,dive,min=1"`
}
