package utils

import (
	"crypto/rand"
	"math/big"
	"strconv"
)

const (
	minCode = 100000
	maxCode = 999999
)

// GenerateNumericCode returns a six digit code drawn uniformly from
// [100000, 999999].
func GenerateNumericCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(maxCode-minCode+1))
	if err != nil {
		return "", err
	}
	return strconv.FormatInt(n.Int64()+minCode, 10), nil
}

func IsNumericCode(code string) bool {
	if len(code) != 6 {
		return false
	}
	for _, r := range code {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
