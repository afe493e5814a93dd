package shared

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// KindTag names the variant of an account.
type KindTag string

const (
	Basic   KindTag = "basic"
	Savings KindTag = "savings"
)

func ParseKindTag(s string) (KindTag, error) {
	switch KindTag(strings.ToLower(strings.TrimSpace(s))) {
	case Basic:
		return Basic, nil
	case Savings:
		return Savings, nil
	default:
		return "", fmt.Errorf("unknown account kind %q (supported: basic, savings)", s)
	}
}

// Kind is a tagged union over the account variants. Only Savings carries an
// interest rate, expressed in percent.
type Kind struct {
	tag  KindTag
	rate decimal.Decimal
}

func BasicKind() Kind {
	return Kind{tag: Basic}
}

func SavingsKind(ratePercent decimal.Decimal) Kind {
	return Kind{tag: Savings, rate: ratePercent}
}

func (k Kind) Tag() KindTag {
	if k.tag == "" {
		return Basic
	}
	return k.tag
}

// InterestRate returns the savings rate in percent. ok is false for every
// variant that does not accrue interest.
func (k Kind) InterestRate() (rate decimal.Decimal, ok bool) {
	if k.tag != Savings {
		return decimal.Zero, false
	}
	return k.rate, true
}

func (k Kind) Equal(other Kind) bool {
	return k.Tag() == other.Tag() && k.rate.Equal(other.rate)
}

func (k Kind) String() string {
	if rate, ok := k.InterestRate(); ok {
		return fmt.Sprintf("%s(%s%%)", Savings, rate.String())
	}
	return string(Basic)
}

// AccountSummary is the public listing view of an account.
type AccountSummary struct {
	ID         string `json:"id"`
	HolderName string `json:"holderName"`
}
