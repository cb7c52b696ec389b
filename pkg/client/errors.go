package client

import "errors"

var (
	// ErrCredentialRejected means the auth service answered 401 for a
	// credential that verified locally, typically because the account
	// was removed after the credential was minted.
	ErrCredentialRejected = errors.New("credential rejected by auth service")
)
