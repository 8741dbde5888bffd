package auth

import (
	"context"
	"fmt"

	"github.com/supabase-community/gotrue-go"

	pkgauth "github.com/haydenbleasel/tersa-sub001/pkg/auth"
)

// SupabaseTokenVerifier validates access tokens by asking the Supabase
// auth server for the token's user.
type SupabaseTokenVerifier struct {
	client gotrue.Client
}

// NewSupabaseTokenVerifier creates a verifier from the Supabase auth client.
func NewSupabaseTokenVerifier(client gotrue.Client) *SupabaseTokenVerifier {
	return &SupabaseTokenVerifier{client: client}
}

// Verify resolves the token to a user. The auth client has no context
// support; ctx is only checked before the call.
func (v *SupabaseTokenVerifier) Verify(ctx context.Context, token string) (*pkgauth.UserContext, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	user, err := v.client.WithToken(token).GetUser()
	if err != nil {
		return nil, fmt.Errorf("supabase rejected token: %w", err)
	}
	return &pkgauth.UserContext{
		UserID: user.ID.String(),
		Email:  user.Email,
	}, nil
}
