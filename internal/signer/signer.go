package signer

// Signer interface for signing package artifacts
type Signer interface {
	// SignDetached creates a binary detached signature (for the RPM signature header)
	SignDetached(data []byte) ([]byte, error)

	// GetPublicKey returns the public key
	GetPublicKey() ([]byte, error)

	// KeyID returns the hex encoded id of the signing key
	KeyID() string
}
