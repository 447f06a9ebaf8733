package model

import "github.com/aussiebroadwan/grantstore/internal/oauth2/store"

// Criteria builders for the model's lookups. Each is a single equality on
// one field; index lookups differ only by the index name.

func byField(field, value string) store.Criteria {
	return store.Criteria{
		Where:  field + " = :" + field,
		Values: map[string]any{":" + field: value},
	}
}

func byIndexedField(index, field, value string) store.Criteria {
	c := byField(field, value)
	c.Index = index
	return c
}

func clientByID(clientID string) store.Criteria {
	return byField("client_id", clientID)
}

func credentialByUsername(username string) store.Criteria {
	return byField("username", username)
}

func credentialByID(id string) store.Criteria {
	return byIndexedField(store.IndexCredentialsByID, "id", id)
}

func accessTokenByValue(token string) store.Criteria {
	return byField("access_token", token)
}

func refreshTokenByValue(token string) store.Criteria {
	return byField("refresh_token", token)
}

func authorizationCodeByValue(code string) store.Criteria {
	return byField("code", code)
}
