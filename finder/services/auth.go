package services

import (
	"context"
	"fmt"

	"github.com/golang-jwt/jwt/v5"

	finderrors "github.com/drapcode/exchange-engine/finder/errors"
	"github.com/drapcode/exchange-engine/internal/types"
	usersrepo "github.com/drapcode/exchange-engine/users/repository"
)

// TokenVerifier checks a bearer token and returns its claims.
type TokenVerifier interface {
	VerifyToken(token string) (jwt.MapClaims, error)
}

// Authenticator turns a bearer token into the caller's AuthContext.
type Authenticator interface {
	Authenticate(ctx context.Context, projectID, token string) (types.AuthContext, error)
}

type tokenAuthenticator struct {
	verifier TokenVerifier
	users    usersrepo.Repository
}

// NewAuthenticator verifies tokens with verifier and loads the user named by
// the sub claim from the project's user collection.
func NewAuthenticator(verifier TokenVerifier, users usersrepo.Repository) Authenticator {
	return &tokenAuthenticator{verifier: verifier, users: users}
}

func (a *tokenAuthenticator) Authenticate(ctx context.Context, projectID, token string) (types.AuthContext, error) {
	if token == "" {
		return types.AuthContext{}, finderrors.Unauthenticated(finderrors.ErrMissingToken)
	}

	claims, err := a.verifier.VerifyToken(token)
	if err != nil || len(claims) == 0 {
		return types.AuthContext{}, finderrors.Unauthorized(finderrors.ErrInvalidToken)
	}
	sub, _ := claims["sub"].(string)
	if sub == "" {
		return types.AuthContext{}, finderrors.Unauthorized(finderrors.ErrInvalidToken)
	}

	found, err := a.users.FindByLogin(ctx, projectID, sub)
	if err != nil {
		return types.AuthContext{}, fmt.Errorf("find user: %w", err)
	}
	user, ok := found.Get()
	if !ok {
		return types.AuthContext{}, finderrors.Unauthenticated(finderrors.ErrUserNotFound)
	}

	auth := types.AuthContext{Token: token, User: user}
	if id, ok := types.FirstOf(user["tenantId"]).Get(); ok {
		auth.TenantID = fmt.Sprint(id)
	}
	if id, ok := types.FirstOf(user["userSettingId"]).Get(); ok {
		auth.UserSettingID = fmt.Sprint(id)
	}
	return auth, nil
}
