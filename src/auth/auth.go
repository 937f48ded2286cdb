package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"

	"github.com/dghubble/oauth1"
	"github.com/joho/godotenv"
)

// Environment variables holding the app and user tokens
const (
	EnvConsumerKey       = "TWITTER_CONSUMER_KEY"
	EnvConsumerSecret    = "TWITTER_CONSUMER_SECRET"
	EnvAccessToken       = "TWITTER_ACCESS_TOKEN"
	EnvAccessTokenSecret = "TWITTER_ACCESS_TOKEN_SECRET"
	EnvBearerToken       = "TWITTER_BEARER_TOKEN"
)

// ErrMissingCredentials is returned when one or more tokens are empty
var ErrMissingCredentials = errors.New("missing twitter credentials")

// Credentials are the OAuth 1.0a consumer and access tokens used for user
// context calls, and the app-only bearer token the filtered stream requires.
type Credentials struct {
	ConsumerKey       string
	ConsumerSecret    string
	AccessToken       string
	AccessTokenSecret string
	BearerToken       string
}

// LoadCredentials reads the tokens from the environment. If envFile is set it is
// loaded first with godotenv; a missing file is not an error. Variables already
// present in the environment win over the file. Each auth mode validates the
// tokens it needs when it is used.
func LoadCredentials(envFile string) (Credentials, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				return Credentials{}, fmt.Errorf("failed to load %s: %w", envFile, err)
			}
			slog.Info("No env file found, using environment variables", "path", envFile)
		}
	}

	creds := Credentials{
		ConsumerKey:       os.Getenv(EnvConsumerKey),
		ConsumerSecret:    os.Getenv(EnvConsumerSecret),
		AccessToken:       os.Getenv(EnvAccessToken),
		AccessTokenSecret: os.Getenv(EnvAccessTokenSecret),
		BearerToken:       os.Getenv(EnvBearerToken),
	}
	return creds, nil
}

// Validate returns ErrMissingCredentials naming every empty OAuth 1.0a token
func (c Credentials) Validate() error {
	var missing []string
	if c.ConsumerKey == "" {
		missing = append(missing, EnvConsumerKey)
	}
	if c.ConsumerSecret == "" {
		missing = append(missing, EnvConsumerSecret)
	}
	if c.AccessToken == "" {
		missing = append(missing, EnvAccessToken)
	}
	if c.AccessTokenSecret == "" {
		missing = append(missing, EnvAccessTokenSecret)
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrMissingCredentials, strings.Join(missing, ", "))
	}
	return nil
}

// ValidateBearer returns ErrMissingCredentials when the bearer token is empty
func (c Credentials) ValidateBearer() error {
	if c.BearerToken == "" {
		return fmt.Errorf("%w: %s", ErrMissingCredentials, EnvBearerToken)
	}
	return nil
}

// Authenticator turns credentials into a signed HTTP client
type Authenticator struct {
	creds Credentials
}

// NewAuthenticator creates an Authenticator for the given credentials
func NewAuthenticator(creds Credentials) *Authenticator {
	return &Authenticator{creds: creds}
}

// AuthenticateTwitterApp returns an http.Client that signs every request with
// OAuth 1.0a user context. The client lives as long as ctx.
func (a *Authenticator) AuthenticateTwitterApp(ctx context.Context) (*http.Client, error) {
	if err := a.creds.Validate(); err != nil {
		return nil, err
	}
	config := oauth1.NewConfig(a.creds.ConsumerKey, a.creds.ConsumerSecret)
	token := oauth1.NewToken(a.creds.AccessToken, a.creds.AccessTokenSecret)
	return config.Client(ctx, token), nil
}

// BearerAuthorizer adds an OAuth 2.0 app-only bearer token to each request.
// It satisfies the go-twitter Authorizer interface.
type BearerAuthorizer struct {
	Token string
}

func (a BearerAuthorizer) Add(req *http.Request) {
	req.Header.Add("Authorization", "Bearer "+a.Token)
}

// AppOnlyAuthorizer returns the bearer authorizer for app-only endpoints such as the filtered stream
func (a *Authenticator) AppOnlyAuthorizer() (BearerAuthorizer, error) {
	if err := a.creds.ValidateBearer(); err != nil {
		return BearerAuthorizer{}, err
	}
	return BearerAuthorizer{Token: a.creds.BearerToken}, nil
}
