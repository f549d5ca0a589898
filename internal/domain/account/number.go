package account

import (
	"crypto/rand"
	"fmt"
	"io"
	"math/big"
)

var (
	numberFloor = new(big.Int).Exp(big.NewInt(10), big.NewInt(NumberLength-1), nil)
	numberSpan  = new(big.Int).Sub(new(big.Int).Exp(big.NewInt(10), big.NewInt(NumberLength), nil), numberFloor)
)

// NumberGenerator produces candidate account numbers.
type NumberGenerator interface {
	Next() (string, error)
}

// RandomNumbers draws 12-digit numbers with a non-zero leading digit.
type RandomNumbers struct {
	Rand io.Reader
}

func (g RandomNumbers) Next() (string, error) {
	r := g.Rand
	if r == nil {
		r = rand.Reader
	}
	n, err := rand.Int(r, numberSpan)
	if err != nil {
		return "", fmt.Errorf("generate account number: %w", err)
	}
	return n.Add(n, numberFloor).String(), nil
}

// IsValidNumber reports whether s has the shape of an account number.
func IsValidNumber(s string) bool {
	if len(s) != NumberLength || s[0] == '0' {
		return false
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}
