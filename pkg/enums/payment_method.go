package enums

import "fmt"

// PaymentMethod is how an order is paid. Offline methods never open a
// gateway session; the remaining values mirror the gateway's payment
// groups so the reconciler can store what the provider reports.
type PaymentMethod string

const (
	PaymentMethodCash       PaymentMethod = "cash"
	PaymentMethodUPI        PaymentMethod = "upi"
	PaymentMethodOnline     PaymentMethod = "online"
	PaymentMethodCreditCard PaymentMethod = "credit_card"
	PaymentMethodDebitCard  PaymentMethod = "debit_card"
	PaymentMethodNetBanking PaymentMethod = "net_banking"
	PaymentMethodWallet     PaymentMethod = "wallet"
	PaymentMethodPayLater   PaymentMethod = "pay_later"
)

var validPaymentMethods = []PaymentMethod{
	PaymentMethodCash,
	PaymentMethodUPI,
	PaymentMethodOnline,
	PaymentMethodCreditCard,
	PaymentMethodDebitCard,
	PaymentMethodNetBanking,
	PaymentMethodWallet,
	PaymentMethodPayLater,
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

// IsOffline reports whether the method settles at the counter and skips
// the payment gateway entirely.
func (p PaymentMethod) IsOffline() bool {
	return p == PaymentMethodCash || p == PaymentMethodUPI
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
