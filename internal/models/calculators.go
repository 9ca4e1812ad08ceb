package models

// AreaUnit is the unit a field area is given in
type AreaUnit string

const (
	AreaHectare     AreaUnit = "hectare"
	AreaSquareMeter AreaUnit = "m2"
)

// DoseUnit is the label rate of a spray or fertilizer product
type DoseUnit string

const (
	DoseKgPerHectare    DoseUnit = "kg_ha"
	DoseLitrePerHectare DoseUnit = "l_ha"
	// DoseMlPer100Litres is a concentration in the spray tank
	DoseMlPer100Litres DoseUnit = "ml_100l"
)

// ProductUnit returns the unit the total product amount is reported in
func (u DoseUnit) ProductUnit() string {
	switch u {
	case DoseKgPerHectare:
		return "kg"
	case DoseLitrePerHectare:
		return "L"
	case DoseMlPer100Litres:
		return "ml"
	default:
		return ""
	}
}

// SprayInput describes a spray or fertilizer application.
// SprayVolume is the water volume in litres per hectare.
type SprayInput struct {
	Area        float64  `json:"area"`
	AreaUnit    AreaUnit `json:"area_unit"`
	Dose        float64  `json:"dose"`
	DoseUnit    DoseUnit `json:"dose_unit"`
	SprayVolume float64  `json:"spray_volume"`
}

// SprayResult is the amount of product and, when a spray volume is known,
// of finished mix for the whole area
type SprayResult struct {
	TotalProduct float64  `json:"total_product"`
	ProductUnit  string   `json:"product_unit"`
	TotalMix     *float64 `json:"total_mix_litres,omitempty"`
}

// IrrigationInput is an area and the water depth to apply in millimetres
type IrrigationInput struct {
	Area     float64  `json:"area"`
	AreaUnit AreaUnit `json:"area_unit"`
	DepthMM  float64  `json:"depth_mm"`
}

type IrrigationResult struct {
	Litres      float64 `json:"litres"`
	CubicMeters float64 `json:"cubic_meters"`
}
