package bridge

import (
	"context"
	"errors"
	"log/slog"
	"strconv"

	"github.com/aussiebroadwan/grantstore/internal/oauth2/domain"
	"github.com/aussiebroadwan/grantstore/pkg/slogx"
)

var (
	// ErrUnauthorized means the request carried no usable credentials. The
	// gateway maps it to a 401 challenge rather than a policy decision.
	ErrUnauthorized = errors.New("bridge: unauthorized")

	// ErrForbidden means credentials were presented but rejected.
	ErrForbidden = errors.New("bridge: forbidden")
)

// Decision effects.
const (
	EffectAllow = "Allow"
	EffectDeny  = "Deny"
)

// Decision is the policy verdict returned to the gateway. Context carries
// the resolved token attributes downstream handlers read; values are strings
// because gateway authorizer contexts are flat string maps.
type Decision struct {
	PrincipalID string
	Effect      string
	Resource    string
	Context     map[string]string
}

// Engine is the protocol engine the bridge drives. Authenticate validates
// the request's access token and returns it; ErrUnauthorized when no token
// is present, ErrForbidden when the token is unknown or expired.
type Engine interface {
	Authenticate(ctx context.Context, req *Request) (*domain.AccessToken, error)
}

// Authorizer turns engine verdicts into gateway decisions.
type Authorizer struct {
	engine Engine
	logger *slog.Logger
}

func NewAuthorizer(engine Engine, logger *slog.Logger) *Authorizer {
	return &Authorizer{
		engine: engine,
		logger: slogx.Component(logger, "bridge"),
	}
}

// Authorize authenticates the event and produces a Decision. Missing
// credentials surface as ErrUnauthorized; a rejected token or a backend
// failure produces a Deny decision, so a storage outage never turns into an
// Allow.
func (a *Authorizer) Authorize(ctx context.Context, ev Event) (*Decision, error) {
	req, err := NewRequest(ev)
	if err != nil {
		a.logger.WarnContext(ctx, "malformed event", slog.String("error", err.Error()))
		return nil, ErrUnauthorized
	}

	token, err := a.engine.Authenticate(ctx, req)
	switch {
	case errors.Is(err, ErrUnauthorized):
		return nil, ErrUnauthorized
	case err != nil:
		a.logger.WarnContext(ctx, "authentication rejected", slog.String("error", err.Error()))
		return &Decision{
			PrincipalID: "anonymous",
			Effect:      EffectDeny,
			Resource:    ev.Resource,
		}, nil
	}

	return &Decision{
		PrincipalID: token.User.ID,
		Effect:      EffectAllow,
		Resource:    ev.Resource,
		Context:     decisionContext(token),
	}, nil
}

func decisionContext(token *domain.AccessToken) map[string]string {
	out := map[string]string{
		"user_id":   token.User.ID,
		"client_id": token.Client.ID,
		"scope":     token.Scope,
	}
	if token.AccessTokenExpiresAt != nil {
		out["expires"] = strconv.FormatInt(token.AccessTokenExpiresAt.Unix(), 10)
	}
	return out
}

// UserResolver is the slice of the grant model the bridge needs to
// authenticate resource owners. *model.GrantModel satisfies it.
type UserResolver interface {
	GetUser(ctx context.Context, username, password string) (*domain.Credential, error)
}

// ResourceOwnerAuthenticator resolves the resource owner behind a request's
// Basic credentials through the grant model, for the authorization endpoint
// where the user consenting to a client must prove who they are.
type ResourceOwnerAuthenticator struct {
	model  UserResolver
	logger *slog.Logger
}

func NewResourceOwnerAuthenticator(m UserResolver, logger *slog.Logger) *ResourceOwnerAuthenticator {
	return &ResourceOwnerAuthenticator{
		model:  m,
		logger: slogx.Component(logger, "bridge.owner"),
	}
}

// Resolve returns the authenticated credential, ErrUnauthorized when no
// Basic credentials are present, or ErrForbidden when they do not match.
// Storage errors propagate unmodified.
func (r *ResourceOwnerAuthenticator) Resolve(ctx context.Context, req *Request) (*domain.Credential, error) {
	username, password, ok := req.BasicCredentials()
	if !ok {
		return nil, ErrUnauthorized
	}

	user, err := r.model.GetUser(ctx, username, password)
	if err != nil {
		return nil, err
	}
	if user == nil {
		r.logger.DebugContext(ctx, "resource owner rejected", slog.String("username", username))
		return nil, ErrForbidden
	}
	return user, nil
}
