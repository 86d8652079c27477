package auth

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/koxixo/orders-backend/pkg/enums"
)

// AccessTokenPayload captures the data available when minting a JWT.
type AccessTokenPayload struct {
	UserID int64
	Role   enums.UserRole
	JTI    string
}

// AccessTokenClaims represents the typed JWT the API accepts. The core
// never authenticates credentials; it only verifies tokens minted by
// the identity provider and trusts the {user_id, role} pair inside.
type AccessTokenClaims struct {
	UserID int64          `json:"user_id"`
	Role   enums.UserRole `json:"role"`
	jwt.RegisteredClaims
}
