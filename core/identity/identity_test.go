package identity

import "testing"

func TestCredentialFromColumns(t *testing.T) {
	hash := "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"

	tests := []struct {
		name   string
		hash   string
		legacy string
		want   CredentialKind
	}{
		{"hash only", hash, "", CredentialHashed},
		{"legacy only", "", "secret", CredentialLegacy},
		{"both present, hash wins", hash, "secret", CredentialHashed},
		{"2b variant", "$2b$12$abcdefghijklmnopqrstuv", "", CredentialHashed},
		{"2y variant", "$2y$12$abcdefghijklmnopqrstuv", "", CredentialHashed},
		{"unrecognized hash column ignored", "md5:d41d8cd98f", "secret", CredentialLegacy},
		{"neither", "", "", CredentialAbsent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cred := CredentialFromColumns(tt.hash, tt.legacy)
			if cred.Kind() != tt.want {
				t.Errorf("Kind() = %v, want %v", cred.Kind(), tt.want)
			}
		})
	}
}

func TestCredentialColumnsRoundTrip(t *testing.T) {
	hash := "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"

	h, l := HashedCredential(hash).Columns()
	if h != hash || l != "" {
		t.Errorf("hashed Columns() = (%q, %q)", h, l)
	}

	h, l = LegacyCredential("secret").Columns()
	if h != "" || l != "secret" {
		t.Errorf("legacy Columns() = (%q, %q)", h, l)
	}
}

func TestZeroCredentialIsAbsent(t *testing.T) {
	var cred Credential
	if cred.Kind() != CredentialAbsent {
		t.Errorf("zero credential Kind() = %v, want CredentialAbsent", cred.Kind())
	}
}
