package utils

import (
	"regexp"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"golang.org/x/crypto/bcrypt"
)

const BcryptCost = 14

const TokenTTL = 24 * time.Hour

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), BcryptCost)
	return string(bytes), err
}

func CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

func IsValidEmail(email string) bool {
	return emailRegex.MatchString(email)
}

// GenerateToken signs an HS256 token carrying the company identity.
func GenerateToken(companyID int, secret []byte) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"company_id": companyID,
		"exp":        now.Add(TokenTTL).Unix(),
		"iat":        now.Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}
