package remote

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/oauth2"
)

// TokenName is the key the remote token is persisted under.
const TokenName = "remote"

// TokenStore persists OAuth2 tokens between runs.
type TokenStore interface {
	LoadToken(ctx context.Context, name string) (*oauth2.Token, error)
	SaveToken(ctx context.Context, name string, tok *oauth2.Token) error
}

// NewHTTPClient returns an HTTP client authenticating against the remote.
//
// With client credentials and a token URL the token is refreshed through
// OAuth2 and every rotated token is written to store. With only an access
// token a static bearer is used. Without either requests are unauthenticated.
func NewHTTPClient(ctx context.Context, cfg Config, store TokenStore, logger *zap.Logger) (*http.Client, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	base := &http.Client{Timeout: timeout(cfg)}
	ctx = context.WithValue(ctx, oauth2.HTTPClient, base)

	seed, err := initialToken(ctx, cfg, store)
	if err != nil {
		return nil, err
	}

	var ts oauth2.TokenSource
	switch {
	case cfg.ClientID != "" && cfg.TokenURL != "":
		if seed == nil {
			return nil, fmt.Errorf("remote oauth2 configured without a token to refresh")
		}
		conf := &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			Scopes:       strings.Fields(cfg.Scope),
			Endpoint:     oauth2.Endpoint{TokenURL: cfg.TokenURL},
		}
		ts = &persistingTokenSource{
			base:   conf.TokenSource(ctx, seed),
			store:  store,
			last:   seed.AccessToken,
			logger: logger,
		}
	case seed != nil:
		ts = oauth2.StaticTokenSource(seed)
	default:
		logger.Warn("No remote credentials configured, requests are unauthenticated")
		return base, nil
	}

	client := oauth2.NewClient(ctx, ts)
	client.Timeout = base.Timeout
	return client, nil
}

func initialToken(ctx context.Context, cfg Config, store TokenStore) (*oauth2.Token, error) {
	if store != nil {
		tok, err := store.LoadToken(ctx, TokenName)
		if err != nil {
			return nil, fmt.Errorf("failed to load persisted token: %w", err)
		}
		if tok != nil {
			return tok, nil
		}
	}
	if cfg.AccessToken == "" && cfg.RefreshToken == "" {
		return nil, nil
	}
	return &oauth2.Token{
		AccessToken:  cfg.AccessToken,
		RefreshToken: cfg.RefreshToken,
		TokenType:    "Bearer",
	}, nil
}

// persistingTokenSource saves every token that differs from the last one seen.
type persistingTokenSource struct {
	base   oauth2.TokenSource
	store  TokenStore
	logger *zap.Logger

	mu   sync.Mutex
	last string
}

func (p *persistingTokenSource) Token() (*oauth2.Token, error) {
	tok, err := p.base.Token()
	if err != nil {
		return nil, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if tok.AccessToken == p.last || p.store == nil {
		return tok, nil
	}
	// TokenSource.Token takes no context.
	if err := p.store.SaveToken(context.Background(), TokenName, tok); err != nil {
		p.logger.Error("Failed to persist refreshed token", zap.Error(err))
		return tok, nil
	}
	p.last = tok.AccessToken
	p.logger.Info("Persisted refreshed remote token")
	return tok, nil
}
