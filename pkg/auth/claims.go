package auth

import (
	"github.com/feastline/feastline-backend/pkg/enums"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// AccessTokenPayload captures the data carried by a client JWT. Tokens are
// minted by the external identity service; this package only needs the
// shape to verify and to build fixtures.
type AccessTokenPayload struct {
	UserID   uuid.UUID
	Role     enums.UserRole
	OutletID *uuid.UUID
}

// AccessTokenClaims represents the typed JWT presented by clients.
type AccessTokenClaims struct {
	UserID   uuid.UUID      `json:"user_id"`
	Role     enums.UserRole `json:"role"`
	OutletID *uuid.UUID     `json:"outlet_id,omitempty"`
	jwt.RegisteredClaims
}
