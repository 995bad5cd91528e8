package appointment

import (
	"math"

	"github.com/BruksfildServices01/sacrament-scheduler/internal/models"
)

// BaseFee returns the fee a schedule charges before discounts. Multiple
// services whose schedule points at a variant are priced by the variant.
func BaseFee(service *models.SacramentService, variant *models.ServiceVariant) float64 {
	if service.IsMultipleService && variant != nil {
		return variant.Fee
	}
	return service.Fee
}

// ApplyMemberDiscount reduces amount by the service discount when the
// applicant is an approved member. Never returns a negative amount.
func ApplyMemberDiscount(amount float64, discountType string, discountValue float64, approvedMember bool) float64 {
	if !approvedMember || discountValue <= 0 {
		return amount
	}

	var discounted float64
	switch discountType {
	case models.DiscountPercentage:
		discounted = amount - amount*discountValue/100
	case models.DiscountFixed:
		discounted = amount - discountValue
	default:
		return amount
	}

	return math.Max(0, roundCents(discounted))
}

// ResolveFee is the authoritative fee for a booking, recomputed from the
// catalog every time it is needed.
func ResolveFee(
	service *models.SacramentService,
	variant *models.ServiceVariant,
	approvedMember bool,
) float64 {
	return ApplyMemberDiscount(
		BaseFee(service, variant),
		service.DiscountType,
		service.DiscountValue,
		approvedMember,
	)
}

// RequiresMembership: free services other than masses are reserved for
// approved members of the parish.
func RequiresMembership(service *models.SacramentService, fee float64) bool {
	return fee <= 0 && !service.IsMass
}

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}
