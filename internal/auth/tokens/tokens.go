package tokens

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken covers every reason a bearer token is rejected.
var ErrInvalidToken = errors.New("invalid token")

// Claims is the envelope issued after a successful login.
type Claims struct {
	ProjectID string                 `json:"projectId,omitempty"`
	Role      string                 `json:"role,omitempty"`
	Claim     map[string]interface{} `json:"claim,omitempty"`
	jwt.RegisteredClaims
}

// TokenRequest describes the token to issue.
type TokenRequest struct {
	Subject   string
	ProjectID string
	Role      string
	Claim     map[string]interface{}
	Expiry    time.Duration
}

// CreateToken creates an ES256 signed JWT.
func CreateToken(privateKeyPEM, keyID string, req TokenRequest) (string, error) {
	privateKey, keyErr := jwt.ParseECPrivateKeyFromPEM([]byte(privateKeyPEM))
	if keyErr != nil {
		return "", keyErr
	}
	if req.Expiry <= 0 {
		req.Expiry = 48 * time.Hour
	}

	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "exchange-engine",
			Subject:   req.Subject,
			ExpiresAt: jwt.NewNumericDate(now.Add(req.Expiry)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
		ProjectID: req.ProjectID,
		Role:      req.Role,
		Claim:     req.Claim,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodES256, claims)
	if keyID != "" {
		token.Header["kid"] = keyID
	}
	return token.SignedString(privateKey)
}

// Verifier validates bearer tokens against one EC public key.
type Verifier struct {
	parser *jwt.Parser
	key    interface{}
}

// NewVerifier parses the public key once.
func NewVerifier(publicKeyPEM string) (*Verifier, error) {
	key, err := jwt.ParseECPublicKeyFromPEM([]byte(publicKeyPEM))
	if err != nil {
		return nil, fmt.Errorf("failed to parse EC public key: %w", err)
	}
	return &Verifier{
		parser: jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodES256.Name}), jwt.WithExpirationRequired()),
		key:    key,
	}, nil
}

// VerifyToken returns the token claims. The claims always carry a subject.
func (v *Verifier) VerifyToken(tokenString string) (jwt.MapClaims, error) {
	claims := jwt.MapClaims{}
	token, err := v.parser.ParseWithClaims(tokenString, claims, func(*jwt.Token) (interface{}, error) {
		return v.key, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid {
		return nil, ErrInvalidToken
	}
	sub, err := claims.GetSubject()
	if err != nil || sub == "" {
		return nil, fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}
	return claims, nil
}
