package square

import (
	"strings"

	sq "github.com/square/square-go-sdk"
	sqcheckout "github.com/square/square-go-sdk/checkout"
)

// PaymentLinkCreateParams contains the fields required to open a hosted checkout.
type PaymentLinkCreateParams struct {
	Name           string
	AmountCents    int64
	Currency       string
	ReferenceID    string
	Description    string
	RedirectURL    string
	BuyerEmail     string
	BuyerPhone     string
	BuyerGiven     string
	BuyerFamily    string
	IdempotencyKey string
}

func (p PaymentLinkCreateParams) toSquareRequest(idempotencyKey, locationID string) *sqcheckout.CreatePaymentLinkRequest {
	req := &sqcheckout.CreatePaymentLinkRequest{
		IdempotencyKey: ptrString(idempotencyKey),
		QuickPay: &sq.QuickPay{
			Name:       p.Name,
			PriceMoney: moneyPtr(p.AmountCents, p.Currency),
			LocationID: locationID,
		},
	}
	if trimmed := strings.TrimSpace(p.Description); trimmed != "" {
		req.Description = ptrString(trimmed)
	}
	if trimmed := strings.TrimSpace(p.ReferenceID); trimmed != "" {
		req.PaymentNote = ptrString(trimmed)
	}
	if trimmed := strings.TrimSpace(p.RedirectURL); trimmed != "" {
		req.CheckoutOptions = &sq.CheckoutOptions{
			RedirectURL: ptrString(trimmed),
		}
	}

	prePop := &sq.PrePopulatedData{}
	populated := false
	if trimmed := strings.TrimSpace(p.BuyerEmail); trimmed != "" {
		prePop.BuyerEmail = ptrString(trimmed)
		populated = true
	}
	if trimmed := strings.TrimSpace(p.BuyerPhone); trimmed != "" {
		// Already E.164, enforced at the contact validation boundary.
		prePop.BuyerPhoneNumber = ptrString(trimmed)
		populated = true
	}
	if populated {
		req.PrePopulatedData = prePop
	}

	if given, family := strings.TrimSpace(p.BuyerGiven), strings.TrimSpace(p.BuyerFamily); given != "" || family != "" {
		if req.PrePopulatedData == nil {
			req.PrePopulatedData = &sq.PrePopulatedData{}
		}
		req.PrePopulatedData.BuyerAddress = &sq.Address{
			FirstName: ptrString(given),
			LastName:  ptrString(family),
		}
	}

	return req
}

func ptrString(value string) *string {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	return &value
}

func int64Ptr(value int64) *int64 {
	return &value
}

func currencyPtr(code string) *sq.Currency {
	trimmed := strings.ToUpper(strings.TrimSpace(code))
	if trimmed == "" {
		trimmed = "USD"
	}
	c := sq.Currency(trimmed)
	return &c
}

func moneyPtr(amount int64, currency string) *sq.Money {
	if amount == 0 {
		return nil
	}
	return &sq.Money{
		Amount:   int64Ptr(amount),
		Currency: currencyPtr(currency),
	}
}
