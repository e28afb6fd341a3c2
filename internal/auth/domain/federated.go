package domain

import (
	"errors"
	"fmt"
	"time"
)

// Provider identifies a federated identity provider.
type Provider string

const (
	ProviderGoogle Provider = "GOOGLE"
)

// ErrUnsupportedProvider reports a provider with no attribute mapper.
var ErrUnsupportedProvider = errors.New("domain: unsupported federation provider")

// FederatedIdentity is the normalized assertion produced after the OAuth2
// handshake layer completes the provider code exchange.
type FederatedIdentity struct {
	Provider      Provider
	Subject       string // provider-unique subject ("sub")
	Email         string
	Name          string
	EmailVerified bool
}

// identityMappers maps each provider to a pure attribute-normalization
// function. Adding a provider means adding one entry here.
var identityMappers = map[Provider]func(map[string]any) FederatedIdentity{
	ProviderGoogle: mapGoogleAttributes,
}

// NormalizeIdentity dispatches raw provider attributes through the mapping
// table. The subject attribute is mandatory; everything else degrades to
// zero values.
func NormalizeIdentity(provider Provider, attributes map[string]any) (FederatedIdentity, error) {
	mapper, ok := identityMappers[provider]
	if !ok {
		return FederatedIdentity{}, fmt.Errorf("%w: %s", ErrUnsupportedProvider, provider)
	}
	identity := mapper(attributes)
	if identity.Subject == "" {
		return FederatedIdentity{}, fmt.Errorf("domain: %s assertion missing subject", provider)
	}
	return identity, nil
}

func mapGoogleAttributes(attributes map[string]any) FederatedIdentity {
	identity := FederatedIdentity{Provider: ProviderGoogle}
	if sub, ok := attributes["sub"].(string); ok {
		identity.Subject = sub
	}
	if email, ok := attributes["email"].(string); ok {
		identity.Email = email
	}
	if name, ok := attributes["name"].(string); ok {
		identity.Name = name
	}
	if verified, ok := attributes["email_verified"].(bool); ok {
		identity.EmailVerified = verified
	}
	return identity
}

// OAuthAccount links a provider subject to a local user. The pair
// (Provider, ProviderSubject) is unique and resolves to exactly one user;
// one user may hold linkages from several providers plus a local credential
// sharing the same email.
type OAuthAccount struct {
	ID              string
	UserID          string
	Provider        Provider
	ProviderSubject string
	Email           string
	EmailVerified   bool
	LastLoginAt     *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}
