package pricing

import (
	"math"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tuanphm/teehouse-backend/pkg/config"
	pkgerrors "github.com/tuanphm/teehouse-backend/pkg/errors"
	"github.com/tuanphm/teehouse-backend/pkg/types"
)

func newTestCalculator() *Calculator {
	store := config.StoreConfig{
		Lat:           10.776111,
		Lng:           106.695833,
		ServiceMinLat: 8.0,
		ServiceMaxLat: 23.5,
		ServiceMinLng: 102.0,
		ServiceMaxLng: 110.0,
	}
	shipping := config.ShippingConfig{BaseFee: 20000, PerKmFee: 5000}
	return NewCalculator(store, shipping)
}

func storeFrontAddress() types.ShippingAddress {
	return types.ShippingAddress{
		FullName: "Nguyen Van A",
		Phone:    "0900000001",
		Line1:    "12 Ly Tu Trong",
		City:     "Ho Chi Minh",
		Lat:      10.776111,
		Lng:      106.695833,
	}
}

func TestQuoteAtStoreLocationChargesBaseFeeOnly(t *testing.T) {
	calc := newTestCalculator()

	lines := []QuoteLine{
		{ProductID: uuid.New(), Qty: 2, UnitPrice: 150000},
	}
	quote, err := calc.Quote(lines, storeFrontAddress(), 0)
	require.NoError(t, err)

	assert.Equal(t, int64(300000), quote.Subtotal)
	assert.Equal(t, int64(20000), quote.ShippingFee)
	assert.Equal(t, int64(320000), quote.Total)
	assert.InDelta(t, 0.0, quote.DistanceKm, 0.001)
}

func TestQuoteDistanceFeeIsRoundedPerKm(t *testing.T) {
	calc := newTestCalculator()

	// One hundredth of a degree of latitude is 1.11195 km on the great
	// circle, so the variable fee is 5559.75 VND before rounding.
	address := storeFrontAddress()
	address.Lat += 0.01

	quote, err := calc.Quote([]QuoteLine{{ProductID: uuid.New(), Qty: 1, UnitPrice: 100000}}, address, 0)
	require.NoError(t, err)

	assert.InDelta(t, 1.11195, quote.DistanceKm, 0.001)
	assert.Equal(t, int64(25560), quote.ShippingFee)
	assert.Equal(t, int64(125560), quote.Total)
}

func TestQuoteFiveKilometreDelivery(t *testing.T) {
	calc := newTestCalculator()

	// A pure-latitude offset of 5/R radians puts the customer exactly 5 km
	// north of the store: qty 2 at 150,000 plus 20,000 + 5x5,000 shipping.
	address := storeFrontAddress()
	address.Lat += 5.0 / earthRadiusKm * 180 / math.Pi

	quote, err := calc.Quote([]QuoteLine{{ProductID: uuid.New(), Qty: 2, UnitPrice: 150000}}, address, 0)
	require.NoError(t, err)

	assert.InDelta(t, 5.0, quote.DistanceKm, 0.0001)
	assert.Equal(t, int64(300000), quote.Subtotal)
	assert.Equal(t, int64(45000), quote.ShippingFee)
	assert.Equal(t, int64(345000), quote.Total)
}

func TestQuoteSumsMultipleLines(t *testing.T) {
	calc := newTestCalculator()

	lines := []QuoteLine{
		{ProductID: uuid.New(), Qty: 2, UnitPrice: 150000},
		{ProductID: uuid.New(), Qty: 1, UnitPrice: 99000},
	}
	quote, err := calc.Quote(lines, storeFrontAddress(), 50000)
	require.NoError(t, err)

	assert.Equal(t, int64(399000), quote.Subtotal)
	assert.Equal(t, int64(50000), quote.Discount)
	assert.Equal(t, quote.Subtotal+quote.ShippingFee-quote.Discount, quote.Total)
}

func TestQuoteRejectsEmptyCart(t *testing.T) {
	calc := newTestCalculator()

	_, err := calc.Quote(nil, storeFrontAddress(), 0)
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestQuoteRejectsNonPositiveQty(t *testing.T) {
	calc := newTestCalculator()

	_, err := calc.Quote([]QuoteLine{{ProductID: uuid.New(), Qty: 0, UnitPrice: 1000}}, storeFrontAddress(), 0)
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestQuoteRejectsNegativeDiscount(t *testing.T) {
	calc := newTestCalculator()

	_, err := calc.Quote([]QuoteLine{{ProductID: uuid.New(), Qty: 1, UnitPrice: 1000}}, storeFrontAddress(), -1)
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestQuoteRejectsDiscountExceedingOrderValue(t *testing.T) {
	calc := newTestCalculator()

	_, err := calc.Quote([]QuoteLine{{ProductID: uuid.New(), Qty: 1, UnitPrice: 10000}}, storeFrontAddress(), 1000000)
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestQuoteRequiresDeliveryCoordinate(t *testing.T) {
	calc := newTestCalculator()

	address := storeFrontAddress()
	address.Lat = 0
	address.Lng = 0

	_, err := calc.Quote([]QuoteLine{{ProductID: uuid.New(), Qty: 1, UnitPrice: 1000}}, address, 0)
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeInvalidLocation))
}

func TestQuoteRejectsCoordinateOutsideServiceRegion(t *testing.T) {
	calc := newTestCalculator()

	// Tokyo is well outside the serviceable bounding box.
	address := storeFrontAddress()
	address.Lat = 35.6762
	address.Lng = 139.6503

	_, err := calc.Quote([]QuoteLine{{ProductID: uuid.New(), Qty: 1, UnitPrice: 1000}}, address, 0)
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeInvalidLocation))
}

func TestHaversineIsSymmetric(t *testing.T) {
	a := haversineKm(10.776111, 106.695833, 21.028511, 105.804817)
	b := haversineKm(21.028511, 105.804817, 10.776111, 106.695833)

	assert.InDelta(t, a, b, 0.000001)
	// Saigon to Hanoi is roughly 1,140 km as the crow flies.
	assert.InDelta(t, 1140.0, a, 20.0)
}
