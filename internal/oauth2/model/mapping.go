package model

import (
	"time"

	"github.com/aussiebroadwan/grantstore/internal/oauth2/domain"
	"github.com/aussiebroadwan/grantstore/internal/oauth2/store"
)

// Record⇄domain transforms. Expiries are stored as integer epoch seconds;
// an absent field lifts to a nil time and a nil time generates no field.

func expiryFromRecord(item store.Record, field string) *time.Time {
	secs, ok := item.Int64(field)
	if !ok {
		return nil
	}
	t := time.Unix(secs, 0).UTC()
	return &t
}

func setExpiry(item store.Record, field string, t *time.Time) {
	if t == nil {
		return
	}
	item[field] = t.Unix()
}

func clientFromRecord(item store.Record) *domain.Client {
	return &domain.Client{
		ID:           item.String("client_id"),
		RedirectURIs: item.StringSlice("redirect_uris"),
		Grants:       item.StringSlice("grants"),
		User:         domain.UserRef{ID: item.String("user_id")},
	}
}

// credentialFromRecord projects the stored record down to {id, username}.
// The password hash stays behind the model boundary.
func credentialFromRecord(item store.Record) *domain.Credential {
	return &domain.Credential{
		ID:       item.String("id"),
		Username: item.String("username"),
	}
}

func accessTokenFromRecord(item store.Record) *domain.AccessToken {
	return &domain.AccessToken{
		AccessToken:          item.String("access_token"),
		AccessTokenExpiresAt: expiryFromRecord(item, "access_token_expires_on"),
		Scope:                item.String("scope"),
		Client:               domain.ClientRef{ID: item.String("client_id")},
		User:                 domain.UserRef{ID: item.String("user_id")},
	}
}

func refreshTokenFromRecord(item store.Record) *domain.RefreshToken {
	return &domain.RefreshToken{
		AccessToken:           item.String("access_token"),
		RefreshToken:          item.String("refresh_token"),
		RefreshTokenExpiresAt: expiryFromRecord(item, "refresh_token_expires_on"),
		Scope:                 item.String("scope"),
		Client:                domain.ClientRef{ID: item.String("client_id")},
		User:                  domain.UserRef{ID: item.String("user_id")},
	}
}

func authorizationCodeFromRecord(item store.Record) *domain.AuthorizationCode {
	return &domain.AuthorizationCode{
		Code:        item.String("code"),
		ExpiresAt:   expiryFromRecord(item, "code_expires_on"),
		Scope:       item.String("scope"),
		RedirectURI: item.String("redirect_uri"),
		Client:      domain.ClientRef{ID: item.String("client_id")},
		User:        domain.UserRef{ID: item.String("user_id")},
	}
}

func accessTokenRecord(token domain.Token, client domain.ClientRef, user domain.UserRef) store.Record {
	item := store.Record{
		"access_token": token.AccessToken,
		"client_id":    client.ID,
		"user_id":      user.ID,
	}
	setExpiry(item, "access_token_expires_on", token.AccessTokenExpiresAt)
	if token.Scope != "" {
		item["scope"] = token.Scope
	}
	return item
}

func refreshTokenRecord(token domain.Token, client domain.ClientRef, user domain.UserRef) store.Record {
	item := store.Record{
		"refresh_token": token.RefreshToken,
		"access_token":  token.AccessToken,
		"client_id":     client.ID,
		"user_id":       user.ID,
	}
	setExpiry(item, "refresh_token_expires_on", token.RefreshTokenExpiresAt)
	if token.Scope != "" {
		item["scope"] = token.Scope
	}
	return item
}

func authorizationCodeRecord(code domain.AuthorizationCode, client domain.ClientRef, user domain.UserRef) store.Record {
	item := store.Record{
		"code":      code.Code,
		"client_id": client.ID,
		"user_id":   user.ID,
	}
	setExpiry(item, "code_expires_on", code.ExpiresAt)
	if code.Scope != "" {
		item["scope"] = code.Scope
	}
	if code.RedirectURI != "" {
		item["redirect_uri"] = code.RedirectURI
	}
	return item
}
