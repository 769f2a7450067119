package models

import "github.com/golang-jwt/jwt/v5"

// Identity is an account allowed to authenticate against the API.
type Identity struct {
	Username     string `json:"username"`
	PasswordHash string `json:"-"`
	Admin        bool   `json:"admin"`
}

// LoginRequest holds the form-encoded credentials for POST /login.
type LoginRequest struct {
	Username string `form:"username" json:"username" validate:"required"`
	Password string `form:"password" json:"password" validate:"required"`
}

// TokenResponse returns the issued bearer token.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}

// JWTClaims represents the JWT payload for access tokens. The subject carries
// the username.
type JWTClaims struct {
	Admin bool `json:"admin"`
	jwt.RegisteredClaims
}
