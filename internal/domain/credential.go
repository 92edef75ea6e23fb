package domain

import "time"

// CredentialTTL is how long a cached session token stays usable. The target
// services expire sessions server-side after roughly an hour; anything older
// is treated as dead without trying it.
const CredentialTTL = time.Hour

// Credential is one cached session token. Exactly one credential is live per
// service; a refresh overwrites the previous entry.
type Credential struct {
	Service    ServiceKey
	Token      string
	AcquiredAt time.Time
}

// Expired reports whether the credential has outlived CredentialTTL at the
// given instant. A credential aged exactly the TTL counts as expired.
func (c Credential) Expired(now time.Time) bool {
	return now.Sub(c.AcquiredAt) >= CredentialTTL
}
