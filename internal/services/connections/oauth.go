package connections

import (
	"context"
	"fmt"

	"golang.org/x/oauth2"

	"github.com/bra3n/bra3n/internal/models"
)

// OAuthClient wraps the OAuth2 flow for an external integration provider
type OAuthClient struct {
	provider models.ConnectionProvider
	config   *oauth2.Config
}

// NewOAuthClient creates an OAuth2 client for the given provider
func NewOAuthClient(provider models.ConnectionProvider, clientID, clientSecret, redirectURL string) (*OAuthClient, error) {
	var endpoint oauth2.Endpoint
	var scopes []string

	switch provider {
	case models.ConnectionProviderNotion:
		endpoint = oauth2.Endpoint{
			AuthURL:   "https://api.notion.com/v1/oauth/authorize",
			TokenURL:  "https://api.notion.com/v1/oauth/token",
			AuthStyle: oauth2.AuthStyleInHeader,
		}
	case models.ConnectionProviderGoogleDrive:
		endpoint = oauth2.Endpoint{
			AuthURL:  "https://accounts.google.com/o/oauth2/auth",
			TokenURL: "https://oauth2.googleapis.com/token",
		}
		scopes = []string{"https://www.googleapis.com/auth/drive.readonly"}
	default:
		return nil, fmt.Errorf("unsupported provider: %s", provider)
	}

	return &OAuthClient{
		provider: provider,
		config: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL,
			Scopes:       scopes,
			Endpoint:     endpoint,
		},
	}, nil
}

// Provider returns the provider this client talks to
func (c *OAuthClient) Provider() models.ConnectionProvider {
	return c.provider
}

// AuthCodeURL returns the authorization URL for the connect flow
func (c *OAuthClient) AuthCodeURL(state string) string {
	return c.config.AuthCodeURL(state, oauth2.AccessTypeOffline)
}

// ExchangeCode exchanges an authorization code for tokens
func (c *OAuthClient) ExchangeCode(ctx context.Context, code string) (*oauth2.Token, error) {
	token, err := c.config.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange code: %w", err)
	}
	return token, nil
}
