package appointment

import (
	"github.com/BruksfildServices01/salon-booking/internal/models"
	"github.com/BruksfildServices01/salon-booking/internal/money"
)

const (
	LocationSalon = "salon"
	LocationHome  = "home"
)

func IsValidLocation(t string) bool {
	return t == LocationSalon || t == LocationHome
}

// PricingCalculator turns service unit prices into the stored breakdown.
// Fees are rounded half-up to the minor unit, so the total is an exact sum.
type PricingCalculator struct {
	homeFeeBps    int64
	commissionBps int64
}

func NewPricingCalculator(homeFeePercent, commissionPercent float64) *PricingCalculator {
	return &PricingCalculator{
		homeFeeBps:    money.BasisPoints(homeFeePercent),
		commissionBps: money.BasisPoints(commissionPercent),
	}
}

func (p *PricingCalculator) Compute(unitPrices []int64, locationType string) models.Pricing {
	var services int64
	for _, price := range unitPrices {
		services += price
	}

	var homeFee int64
	if locationType == LocationHome {
		homeFee = money.ApplyBasisPoints(services, p.homeFeeBps)
	}

	platformFee := money.ApplyBasisPoints(services+homeFee, p.commissionBps)

	return models.Pricing{
		Services:       services,
		HomeServiceFee: homeFee,
		PlatformFee:    platformFee,
		Total:          services + homeFee + platformFee,
	}
}
