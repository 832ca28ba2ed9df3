package enums

import "fmt"

// PaymentType describes how a table sale was settled.
type PaymentType string

const (
	PaymentTypeCash       PaymentType = "dinheiro"
	PaymentTypePix        PaymentType = "pix"
	PaymentTypeCreditCard PaymentType = "cartao_credito"
	PaymentTypeDebitCard  PaymentType = "cartao_debito"
	PaymentTypeVoucher    PaymentType = "voucher"
	PaymentTypeMixed      PaymentType = "misto"
)

var validPaymentTypes = []PaymentType{
	PaymentTypeCash,
	PaymentTypePix,
	PaymentTypeCreditCard,
	PaymentTypeDebitCard,
	PaymentTypeVoucher,
	PaymentTypeMixed,
}

// String implements fmt.Stringer.
func (p PaymentType) String() string {
	return string(p)
}

// IsValid reports whether the value is a known PaymentType.
func (p PaymentType) IsValid() bool {
	for _, candidate := range validPaymentTypes {
		if candidate == p {
			return true
		}
	}
	return false
}

// AllowsChange reports whether change can be handed back for this payment.
func (p PaymentType) AllowsChange() bool {
	return p == PaymentTypeCash || p == PaymentTypeMixed
}

// ParsePaymentType converts raw input into a PaymentType.
func ParsePaymentType(value string) (PaymentType, error) {
	for _, candidate := range validPaymentTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid payment type %q", value)
}
