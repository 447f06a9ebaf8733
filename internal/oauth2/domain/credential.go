package domain

import "github.com/jellydator/validation"

// Credential is the projection of a stored credential that may cross the
// grant model boundary: the stable id and the username, nothing else.
type Credential struct {
	ID       string
	Username string
}

// CredentialRegistration is what a provisioning caller supplies when
// creating or replacing a credential. The password arrives already hashed
// under the process-wide salt.
type CredentialRegistration struct {
	ID           string
	Username     string
	PasswordHash string
}

func (r CredentialRegistration) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.ID, validation.Required),
		validation.Field(&r.Username, validation.Required),
		validation.Field(&r.PasswordHash, validation.Required),
	)
}
