package flow

import (
	"testing"

	"github.com/fitgate/fitgate/core/identity"
	"golang.org/x/crypto/bcrypt"
)

func hashOf(t *testing.T, password string) string {
	t.Helper()
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("bcrypt: %v", err)
	}
	return string(h)
}

func TestVerifyHashed(t *testing.T) {
	hash := hashOf(t, "correct horse")

	if !Verify("correct horse", identity.HashedCredential(hash)) {
		t.Error("correct password rejected")
	}
	if Verify("wrong horse", identity.HashedCredential(hash)) {
		t.Error("wrong password accepted")
	}
}

func TestVerifyBlankFailsClosed(t *testing.T) {
	hash := hashOf(t, "")

	for _, submitted := range []string{"", "   ", "\t"} {
		if Verify(submitted, identity.HashedCredential(hash)) {
			t.Errorf("blank submission %q accepted", submitted)
		}
		if Verify(submitted, identity.LegacyCredential(submitted)) {
			t.Errorf("blank submission %q accepted against legacy", submitted)
		}
	}
}

// When a valid hash is present the legacy value is never consulted.
func TestVerifyHashWinsOverLegacy(t *testing.T) {
	hash := hashOf(t, "hashedpw")
	cred := identity.CredentialFromColumns(hash, "legacypw")

	if !Verify("hashedpw", cred) {
		t.Error("password matching hash rejected")
	}
	if Verify("legacypw", cred) {
		t.Error("legacy value consulted despite valid hash")
	}
}

func TestVerifyLegacy(t *testing.T) {
	cred := identity.LegacyCredential("oldsecret")

	if !Verify("oldsecret", cred) {
		t.Error("matching legacy secret rejected")
	}
	if Verify("other", cred) {
		t.Error("non-matching legacy secret accepted")
	}
}

func TestVerifyAbsentAlwaysFalse(t *testing.T) {
	if Verify("anything", identity.NoCredential()) {
		t.Error("absent credential accepted a submission")
	}
}

func TestBcryptHasherRoundTrip(t *testing.T) {
	h := &BcryptHasher{Cost: bcrypt.MinCost}

	hash, err := h.Hash("pa55word")
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	if !h.Compare("pa55word", hash) {
		t.Error("hashed password does not verify")
	}
	if h.Compare("password", hash) {
		t.Error("wrong password verifies")
	}

	// The produced hash must be recognizable to the column sniffing.
	if identity.CredentialFromColumns(hash, "").Kind() != identity.CredentialHashed {
		t.Error("hasher output not recognized as a bcrypt hash")
	}
}
