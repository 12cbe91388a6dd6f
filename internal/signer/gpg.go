package signer

import (
	"bytes"
	"crypto"
	"fmt"
	"os"

	"github.com/ProtonMail/go-crypto/openpgp"
	"github.com/ProtonMail/go-crypto/openpgp/armor"
	"github.com/ProtonMail/go-crypto/openpgp/packet"
)

// GPGSigner implements Signer interface using an OpenPGP private key
type GPGSigner struct {
	entity *openpgp.Entity
}

// NewGPGSigner creates a new GPG signer from a private key file
func NewGPGSigner(keyPath, passphrase string) (*GPGSigner, error) {
	if keyPath == "" {
		return nil, fmt.Errorf("key path is empty")
	}

	// Read private key file
	material, err := os.ReadFile(keyPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read key file: %w", err)
	}

	return NewGPGSignerFromBytes(material, passphrase)
}

// NewGPGSignerFromBytes creates a new GPG signer from raw key material,
// either ASCII armored or binary
func NewGPGSignerFromBytes(material []byte, passphrase string) (*GPGSigner, error) {
	// Try to parse as armored key first
	entityList, err := openpgp.ReadArmoredKeyRing(bytes.NewReader(material))
	if err != nil {
		// Try as binary key
		entityList, err = openpgp.ReadKeyRing(bytes.NewReader(material))
		if err != nil {
			return nil, fmt.Errorf("failed to read key: %w", err)
		}
	}

	if len(entityList) == 0 {
		return nil, fmt.Errorf("no keys found in key file")
	}

	entity := entityList[0]
	if entity.PrivateKey == nil {
		return nil, fmt.Errorf("key %s has no private key material", entity.PrimaryKey.KeyIdString())
	}

	if entity.PrivateKey.Encrypted {
		if passphrase == "" {
			return nil, fmt.Errorf("private key is encrypted but no passphrase provided")
		}
		if err := entity.PrivateKey.Decrypt([]byte(passphrase)); err != nil {
			return nil, fmt.Errorf("failed to decrypt private key: %w", err)
		}
	}

	// Decrypt subkeys as well
	for _, subkey := range entity.Subkeys {
		if subkey.PrivateKey != nil && subkey.PrivateKey.Encrypted && passphrase != "" {
			if err := subkey.PrivateKey.Decrypt([]byte(passphrase)); err != nil {
				return nil, fmt.Errorf("failed to decrypt subkey: %w", err)
			}
		}
	}

	return &GPGSigner{entity: entity}, nil
}

func signConfig() *packet.Config {
	return &packet.Config{
		DefaultHash: crypto.SHA256,
	}
}

// SignDetached creates a binary detached signature
func (s *GPGSigner) SignDetached(data []byte) ([]byte, error) {
	var buf bytes.Buffer

	if err := openpgp.DetachSign(&buf, s.entity, bytes.NewReader(data), signConfig()); err != nil {
		return nil, fmt.Errorf("failed to create detached signature: %w", err)
	}

	return buf.Bytes(), nil
}

// GetPublicKey returns the public key in armored format
func (s *GPGSigner) GetPublicKey() ([]byte, error) {
	var buf bytes.Buffer

	w, err := armor.Encode(&buf, openpgp.PublicKeyType, nil)
	if err != nil {
		return nil, err
	}

	err = s.entity.Serialize(w)
	if err != nil {
		w.Close()
		return nil, err
	}

	if err := w.Close(); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// KeyID returns the id of the primary key
func (s *GPGSigner) KeyID() string {
	return s.entity.PrimaryKey.KeyIdString()
}
