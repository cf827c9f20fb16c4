package utils

import "golang.org/x/crypto/bcrypt"

const PasswordCost = 10

func HashPassword(password string, cost int) (string, error) {
	if cost == 0 {
		cost = PasswordCost
	}
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(bytes), nil
}

func CheckPassword(hash string, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
