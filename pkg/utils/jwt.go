package utils

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// EmployeeClaims represents the claims in an employee access token
type EmployeeClaims struct {
	EmployeeID   uuid.UUID  `json:"employee_id"`
	Name         string     `json:"name"`
	SalesPointID *uuid.UUID `json:"sales_point_id,omitempty"`
	jwt.RegisteredClaims
}

// JWTManager handles JWT token generation and validation
type JWTManager struct {
	secretKey         []byte
	accessTokenExpiry time.Duration
}

// NewJWTManager creates a new JWT manager
func NewJWTManager(secret string, accessExpiry time.Duration) *JWTManager {
	return &JWTManager{
		secretKey:         []byte(secret),
		accessTokenExpiry: accessExpiry,
	}
}

// GenerateAccessToken issues a token for an employee. Tokens are normally
// minted by the staff directory; this is used by tooling and tests.
func (m *JWTManager) GenerateAccessToken(employeeID uuid.UUID, name string, salesPointID *uuid.UUID) (string, error) {
	now := time.Now()
	claims := &EmployeeClaims{
		EmployeeID:   employeeID,
		Name:         name,
		SalesPointID: salesPointID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(m.accessTokenExpiry)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    "hospitality-pos",
			Subject:   employeeID.String(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secretKey)
}

// ValidateAccessToken validates an access token and returns the claims
func (m *JWTManager) ValidateAccessToken(tokenString string) (*EmployeeClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &EmployeeClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return m.secretKey, nil
	})

	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*EmployeeClaims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token")
	}
	if claims.EmployeeID == uuid.Nil {
		return nil, errors.New("token carries no employee")
	}

	return claims, nil
}
