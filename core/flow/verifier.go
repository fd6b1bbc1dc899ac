package flow

import (
	"crypto/subtle"
	"strings"

	"github.com/fitgate/fitgate/core/identity"
	"golang.org/x/crypto/bcrypt"
)

// Verify reports whether the submitted secret matches the stored
// credential. It fails closed: a blank submission never matches, and an
// absent credential rejects everything. When the credential is a bcrypt
// hash the legacy value is never consulted; the plaintext comparison
// exists only for the pre-migration format.
//
// Verify is pure: no side effects, no store access.
func Verify(submitted string, cred identity.Credential) bool {
	if strings.TrimSpace(submitted) == "" {
		return false
	}

	switch cred.Kind() {
	case identity.CredentialHashed:
		return bcrypt.CompareHashAndPassword([]byte(cred.Hash()), []byte(submitted)) == nil
	case identity.CredentialLegacy:
		return subtle.ConstantTimeCompare([]byte(cred.Legacy()), []byte(submitted)) == 1
	default:
		return false
	}
}
