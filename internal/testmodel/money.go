package testmodel

import (
	"errors"
	"fmt"
)

var ErrNegativeAmount = errors.New("negative amount")

// Money is an amount in minor units. It can only be made with NewMoney.
type Money struct {
	Cents    int64
	Currency string

	formatted string
}

// NewMoney validates the amount and caches its rendering.
func NewMoney(cents int64, currency string) (Money, error) {
	if cents < 0 {
		return Money{}, fmt.Errorf("%w: %d", ErrNegativeAmount, cents)
	}

	return Money{
		Cents:     cents,
		Currency:  currency,
		formatted: fmt.Sprintf("%d.%02d %s", cents/100, cents%100, currency),
	}, nil
}

func (m Money) String() string {
	return m.formatted
}
