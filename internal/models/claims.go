package models

import "github.com/golang-jwt/jwt/v5"

// Roles known to the authorization layer.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

type UserClaims struct {
	jwt.RegisteredClaims
	UserID       uint   `json:"user_id"`
	Email        string `json:"email"`
	TokenVersion int    `json:"token_version"`
}
