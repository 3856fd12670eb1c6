package session

import (
	"context"

	"golang.org/x/oauth2"

	"github.com/kamui-project/netstack/internal/api"
)

// tokenSource serves the current session's stored token to oauth2 clients
type tokenSource struct {
	ctx   context.Context
	scope *Scope
}

// TokenSource returns an oauth2.TokenSource reading the current session's token.
// It never refreshes; an expired or missing token yields api.ErrAuthenticationRequired.
func (s *Scope) TokenSource(ctx context.Context) oauth2.TokenSource {
	return &tokenSource{ctx: ctx, scope: s}
}

func (ts *tokenSource) Token() (*oauth2.Token, error) {
	tok, err := ts.scope.CurrentToken(ts.ctx)
	if err != nil {
		return nil, err
	}
	if tok == nil || !tok.IsValid(ts.scope.now()) {
		return nil, &api.NetworkError{Kind: api.KindAuthenticationRequired}
	}
	return tok.OAuth2(), nil
}
