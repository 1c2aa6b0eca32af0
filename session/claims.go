package session

import (
	"github.com/golang-jwt/jwt/v5"

	apperrors "github.com/starack/admin-console/internal/errors"
)

// Role is a user role as issued by the user service.
type Role string

const (
	RoleManager  Role = "Manager"
	RoleLeader   Role = "Leader"
	RoleEmployee Role = "Employee"
)

// UserClaims is the decoded payload segment of an access token. The token is
// treated as opaque apart from this middle segment; the signature is never
// verified client-side, the backends reject tampered tokens themselves.
type UserClaims struct {
	ID          string `json:"_id"`
	Fullname    string `json:"fullname"`
	Email       string `json:"email"`
	Role        Role   `json:"role"`
	Status      string `json:"status"`
	AccountType string `json:"accountType"`
	CreatedAt   string `json:"createdAt"`
	jwt.RegisteredClaims
}

// DecodeClaims splits a three-segment token, base64url-decodes the payload
// segment and unmarshals it as JSON. No signature or expiry validation is
// performed here.
func DecodeClaims(tokenString string) (*UserClaims, error) {
	claims := &UserClaims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(tokenString, claims); err != nil {
		return nil, apperrors.Wrapf(apperrors.ErrInvalidToken, "[DecodeClaims] %v", err)
	}
	return claims, nil
}
