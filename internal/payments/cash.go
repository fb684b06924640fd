package payments

import (
	"context"
	"net/url"

	"github.com/tuanphm/teehouse-backend/pkg/db/models"
	"github.com/tuanphm/teehouse-backend/pkg/enums"
	pkgerrors "github.com/tuanphm/teehouse-backend/pkg/errors"
)

// cashGateway exists so dispatch stays uniform; cash orders settle at the
// door and never hold a payment session.
type cashGateway struct{}

// NewCashGateway builds the cash-on-delivery adapter.
func NewCashGateway() Gateway {
	return cashGateway{}
}

func (cashGateway) Method() enums.PaymentMethod {
	return enums.PaymentMethodCashOnDelivery
}

func (cashGateway) CreateSession(ctx context.Context, order *models.Order) (*RedirectTarget, error) {
	return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "cash orders do not use a payment session")
}

func (cashGateway) VerifyCallback(ctx context.Context, params url.Values) (*VerifiedOutcome, error) {
	return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "cash orders have no gateway callback")
}
