package pricing

import (
	"math"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tuanphm/teehouse-backend/pkg/config"
	pkgerrors "github.com/tuanphm/teehouse-backend/pkg/errors"
	"github.com/tuanphm/teehouse-backend/pkg/types"
)

const earthRadiusKm = 6371.0

// QuoteLine is one cart line with the server-held unit price already resolved.
type QuoteLine struct {
	ProductID uuid.UUID
	Qty       int
	UnitPrice int64
}

// Quote is the authoritative money breakdown for an order, in VND.
type Quote struct {
	Subtotal    int64
	ShippingFee int64
	Discount    int64
	Total       int64
	DistanceKm  float64
}

// Calculator computes order totals from cart lines and a delivery coordinate.
// It is deterministic for a given (lines, coordinate) pair so quotes can be
// replayed in audits and tests.
type Calculator struct {
	store    config.StoreConfig
	shipping config.ShippingConfig
}

// NewCalculator builds a calculator pinned to the store location and fee table.
func NewCalculator(store config.StoreConfig, shipping config.ShippingConfig) *Calculator {
	return &Calculator{store: store, shipping: shipping}
}

// Quote recomputes subtotal, shipping fee and total. Client-supplied money
// fields are never an input here.
func (c *Calculator) Quote(lines []QuoteLine, address types.ShippingAddress, discount int64) (*Quote, error) {
	if len(lines) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
	}
	if discount < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "discount must not be negative")
	}

	var subtotal int64
	for _, line := range lines {
		if line.Qty < 1 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "line quantity must be at least 1").
				WithDetails(map[string]any{"product_id": line.ProductID})
		}
		if line.UnitPrice < 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "unit price must not be negative").
				WithDetails(map[string]any{"product_id": line.ProductID})
		}
		subtotal += line.UnitPrice * int64(line.Qty)
	}

	distance, err := c.deliveryDistanceKm(address)
	if err != nil {
		return nil, err
	}

	fee := c.shippingFee(distance)

	total := subtotal + fee - discount
	if total < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "discount exceeds order value")
	}

	return &Quote{
		Subtotal:    subtotal,
		ShippingFee: fee,
		Discount:    discount,
		Total:       total,
		DistanceKm:  distance,
	}, nil
}

func (c *Calculator) deliveryDistanceKm(address types.ShippingAddress) (float64, error) {
	if !address.HasCoordinate() {
		return 0, pkgerrors.New(pkgerrors.CodeInvalidLocation, "delivery coordinate is required")
	}
	if !c.isServiceable(address.Lat, address.Lng) {
		return 0, pkgerrors.New(pkgerrors.CodeInvalidLocation, "delivery coordinate outside serviceable region").
			WithDetails(map[string]any{"lat": address.Lat, "lng": address.Lng})
	}
	return haversineKm(c.store.Lat, c.store.Lng, address.Lat, address.Lng), nil
}

func (c *Calculator) isServiceable(lat, lng float64) bool {
	return lat >= c.store.ServiceMinLat && lat <= c.store.ServiceMaxLat &&
		lng >= c.store.ServiceMinLng && lng <= c.store.ServiceMaxLng
}

// shippingFee computes baseFee + distance*perKmFee rounded to whole VND.
func (c *Calculator) shippingFee(distanceKm float64) int64 {
	variable := decimal.NewFromFloat(distanceKm).
		Mul(decimal.NewFromInt(c.shipping.PerKmFee)).
		Round(0)
	return decimal.NewFromInt(c.shipping.BaseFee).Add(variable).IntPart()
}

// haversineKm returns the great-circle distance between two coordinates.
func haversineKm(lat1, lng1, lat2, lng2 float64) float64 {
	toRad := func(deg float64) float64 { return deg * math.Pi / 180 }

	dLat := toRad(lat2 - lat1)
	dLng := toRad(lng2 - lng1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(lat1))*math.Cos(toRad(lat2))*
			math.Sin(dLng/2)*math.Sin(dLng/2)
	return earthRadiusKm * 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}
