package enums

import "fmt"

// PaymentMethod selects the gateway adapter used to settle an order.
type PaymentMethod string

const (
	PaymentMethodCashOnDelivery  PaymentMethod = "cash_on_delivery"
	PaymentMethodDomesticGateway PaymentMethod = "domestic_gateway"
	PaymentMethodCardGateway     PaymentMethod = "card_gateway"
)

var validPaymentMethods = []PaymentMethod{
	PaymentMethodCashOnDelivery,
	PaymentMethodDomesticGateway,
	PaymentMethodCardGateway,
}

// String implements fmt.Stringer.
func (p PaymentMethod) String() string {
	return string(p)
}

// IsValid reports whether the value is a known PaymentMethod.
func (p PaymentMethod) IsValid() bool {
	for _, candidate := range validPaymentMethods {
		if candidate == p {
			return true
		}
	}
	return false
}

// RequiresGatewaySession reports whether the method settles through an
// external gateway redirect.
func (p PaymentMethod) RequiresGatewaySession() bool {
	return p == PaymentMethodDomesticGateway || p == PaymentMethodCardGateway
}

// ParsePaymentMethod converts raw input into a PaymentMethod.
func ParsePaymentMethod(value string) (PaymentMethod, error) {
	for _, candidate := range validPaymentMethods {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid payment method %q", value)
}
