package payment

import (
	"errors"
	"net/url"
	"strings"

	statement "municipal-statements/internal/statement/domain"
)

// PathPrefix is the payment route on the portal origin.
const PathPrefix = "yebopay-payment"

// Resolver builds the per-customer payment URL bound over the payment
// provider logo.
type Resolver struct {
	origin string
}

// NewResolver constructs a resolver for the given portal origin.
func NewResolver(origin string) (*Resolver, error) {
	origin = strings.TrimRight(strings.TrimSpace(origin), "/")
	if origin == "" {
		return nil, errors.New("payment resolver: empty origin")
	}
	parsed, err := url.Parse(origin)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return nil, errors.New("payment resolver: origin must be an absolute url")
	}
	return &Resolver{origin: origin}, nil
}

// Link returns {origin}/yebopay-payment/{account}/{holder}/{amount}. Each
// segment is percent-encoded and the amount is fixed to two decimals.
func (r *Resolver) Link(model statement.StatementModel) (string, error) {
	if r == nil {
		return "", errors.New("payment resolver: nil resolver")
	}
	if model.AccountNumber == "" {
		return "", statement.ErrEmptyAccountNumber
	}
	segments := []string{
		PathPrefix,
		url.PathEscape(model.AccountNumber),
		url.PathEscape(model.AccountHolderName),
		url.PathEscape(model.OutstandingTotalBalance.StringFixed(2)),
	}
	return r.origin + "/" + strings.Join(segments, "/"), nil
}
