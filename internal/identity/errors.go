package identity

import "errors"

var (
	ErrInvalidSecret      = errors.New("secret encoding not recognized")
	ErrDuplicateIdentity  = errors.New("identity with this address already exists")
	ErrWeakPassword       = errors.New("keystore password must be at least 8 characters")
	ErrWrongPassword      = errors.New("keystore password is wrong or file is corrupted")
	ErrKeystoreIntegrity  = errors.New("keystore address does not match its secret")
	ErrIdentityNotFound   = errors.New("identity not found")
	ErrInvalidKeyMaterial = errors.New("stored key material cannot be parsed")
	ErrGeneration         = errors.New("key generation failed")
)
