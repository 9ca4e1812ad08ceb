package service

import (
	"math"

	"farm-assistant/internal/models"
)

const squareMetersPerHectare = 10000

// SprayMix works out how much product and finished mix an application
// over the given area needs. Amounts are rounded to two decimals.
func SprayMix(in models.SprayInput) (*models.SprayResult, error) {
	if err := checkAmounts(map[string]float64{
		"area":         in.Area,
		"dose":         in.Dose,
		"spray volume": in.SprayVolume,
	}); err != nil {
		return nil, err
	}
	hectares, err := toHectares(in.Area, in.AreaUnit)
	if err != nil {
		return nil, err
	}

	result := &models.SprayResult{ProductUnit: in.DoseUnit.ProductUnit()}
	switch in.DoseUnit {
	case models.DoseKgPerHectare, models.DoseLitrePerHectare:
		result.TotalProduct = round2(hectares * in.Dose)
		if in.SprayVolume > 0 {
			mix := round2(hectares * in.SprayVolume)
			result.TotalMix = &mix
		}
	case models.DoseMlPer100Litres:
		if in.SprayVolume <= 0 {
			return nil, validationError("a spray volume is required for a %s dose", in.DoseUnit)
		}
		mix := hectares * in.SprayVolume
		result.TotalProduct = round2(mix / 100 * in.Dose)
		mix = round2(mix)
		result.TotalMix = &mix
	default:
		return nil, validationError("unknown dose unit %q", in.DoseUnit)
	}
	return result, nil
}

// IrrigationVolume is the water needed to apply DepthMM over the area
func IrrigationVolume(in models.IrrigationInput) (*models.IrrigationResult, error) {
	if err := checkAmounts(map[string]float64{
		"area":  in.Area,
		"depth": in.DepthMM,
	}); err != nil {
		return nil, err
	}
	hectares, err := toHectares(in.Area, in.AreaUnit)
	if err != nil {
		return nil, err
	}

	cubic := hectares * squareMetersPerHectare * in.DepthMM / 1000
	return &models.IrrigationResult{
		Litres:      round2(cubic * 1000),
		CubicMeters: round2(cubic),
	}, nil
}

func checkAmounts(amounts map[string]float64) error {
	for name, v := range amounts {
		if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
			return validationError("%s must be a non-negative number", name)
		}
	}
	return nil
}

// toHectares defaults an empty unit to hectares
func toHectares(area float64, unit models.AreaUnit) (float64, error) {
	switch unit {
	case models.AreaHectare, "":
		return area, nil
	case models.AreaSquareMeter:
		return area / squareMetersPerHectare, nil
	default:
		return 0, validationError("unknown area unit %q", unit)
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
