// cmd/gentoken/main.go — Mints a signed JWT for local testing.
// Usage: JWT_SECRET=devsecret go run ./cmd/gentoken admin
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"tillpoint/internal/middleware"
)

func main() {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		secret = "devsecret"
	}
	role := "admin"
	if len(os.Args) > 1 {
		role = os.Args[1]
	}

	claims := middleware.JWTClaims{
		UserID:   uuid.NewString(),
		Username: "dev-" + role,
		Role:     role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(8 * time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		panic(err)
	}
	fmt.Println(token)
}
