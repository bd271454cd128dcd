package models

import (
	"github.com/golang-jwt/jwt/v4"
)

type CustomClaims struct {
	jwt.RegisteredClaims
	Wallet   string `json:"wallet"`
	Username string `json:"username"`
}
