package payments

import (
	"context"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/tuanphm/teehouse-backend/pkg/config"
	"github.com/tuanphm/teehouse-backend/pkg/db/models"
	"github.com/tuanphm/teehouse-backend/pkg/enums"
	pkgerrors "github.com/tuanphm/teehouse-backend/pkg/errors"
)

const (
	paramAmount        = "vnp_Amount"
	paramTxnRef        = "vnp_TxnRef"
	paramTmnCode       = "vnp_TmnCode"
	paramCreateDate    = "vnp_CreateDate"
	paramOrderInfo     = "vnp_OrderInfo"
	paramReturnURL     = "vnp_ReturnUrl"
	paramResponseCode  = "vnp_ResponseCode"
	paramTransactionNo = "vnp_TransactionNo"
	paramSecureHash    = "vnp_SecureHash"

	responseCodeSuccess = "00"
)

// domesticGateway implements the signed-querystring terminal used by local
// banks. The order reference and amount travel in the query; an HMAC-SHA512
// over the sorted parameters proves nothing was altered in flight.
type domesticGateway struct {
	cfg config.DomesticGatewayConfig
}

// NewDomesticGateway builds the domestic signed-query adapter.
func NewDomesticGateway(cfg config.DomesticGatewayConfig) (Gateway, error) {
	if strings.TrimSpace(cfg.TerminalCode) == "" {
		return nil, fmt.Errorf("domestic gateway terminal code is required")
	}
	if strings.TrimSpace(cfg.HashSecret) == "" {
		return nil, fmt.Errorf("domestic gateway hash secret is required")
	}
	if strings.TrimSpace(cfg.PayURL) == "" {
		return nil, fmt.Errorf("domestic gateway pay url is required")
	}
	return &domesticGateway{cfg: cfg}, nil
}

func (g *domesticGateway) Method() enums.PaymentMethod {
	return enums.PaymentMethodDomesticGateway
}

func (g *domesticGateway) CreateSession(ctx context.Context, order *models.Order) (*RedirectTarget, error) {
	if order == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order required")
	}

	params := url.Values{}
	params.Set(paramTmnCode, g.cfg.TerminalCode)
	params.Set(paramTxnRef, order.OrderNumber)
	// The terminal expects amounts in minor units (VND x100).
	params.Set(paramAmount, fmt.Sprintf("%d", order.TotalAmount*100))
	params.Set(paramOrderInfo, fmt.Sprintf("Thanh toan don hang %s", order.OrderNumber))
	params.Set(paramCreateDate, time.Now().UTC().Format("20060102150405"))
	if g.cfg.ReturnURL != "" {
		params.Set(paramReturnURL, g.cfg.ReturnURL)
	}
	params.Set(paramSecureHash, g.sign(params))

	return &RedirectTarget{
		URL: fmt.Sprintf("%s?%s", g.cfg.PayURL, params.Encode()),
	}, nil
}

// VerifyCallback recomputes the signature over the returned parameters.
// A mismatch means the redirect was tampered with and is rejected outright.
func (g *domesticGateway) VerifyCallback(ctx context.Context, params url.Values) (*VerifiedOutcome, error) {
	received := params.Get(paramSecureHash)
	if received == "" {
		return nil, pkgerrors.New(pkgerrors.CodeTampered, "missing gateway signature")
	}
	orderRef := params.Get(paramTxnRef)
	if orderRef == "" {
		return nil, pkgerrors.New(pkgerrors.CodeTampered, "missing order reference")
	}

	unsigned := url.Values{}
	for key, values := range params {
		if key == paramSecureHash {
			continue
		}
		for _, v := range values {
			unsigned.Add(key, v)
		}
	}

	expected := g.sign(unsigned)
	if !hmac.Equal([]byte(expected), []byte(received)) {
		return nil, pkgerrors.New(pkgerrors.CodeTampered, "gateway signature mismatch")
	}

	code := params.Get(paramResponseCode)
	outcome := &VerifiedOutcome{
		OrderReference: orderRef,
		Succeeded:      code == responseCodeSuccess,
		TransactionRef: params.Get(paramTransactionNo),
		Raw:            []byte(params.Encode()),
	}
	if minor, err := strconv.ParseInt(params.Get(paramAmount), 10, 64); err == nil {
		// The terminal echoes the amount in minor units (VND x100).
		outcome.Amount = minor / 100
	}
	if !outcome.Succeeded {
		outcome.FailureReason = fmt.Sprintf("gateway response code %s", code)
	}
	return outcome, nil
}

// sign produces an HMAC-SHA512 over the parameters in lexical key order.
func (g *domesticGateway) sign(params url.Values) string {
	keys := make([]string, 0, len(params))
	for key := range params {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var builder strings.Builder
	for i, key := range keys {
		if i > 0 {
			builder.WriteByte('&')
		}
		builder.WriteString(key)
		builder.WriteByte('=')
		builder.WriteString(url.QueryEscape(params.Get(key)))
	}

	mac := hmac.New(sha512.New, []byte(g.cfg.HashSecret))
	mac.Write([]byte(builder.String()))
	return hex.EncodeToString(mac.Sum(nil))
}
