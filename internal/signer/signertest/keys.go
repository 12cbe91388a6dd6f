// Package signertest generates throwaway OpenPGP keys for tests.
package signertest

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/ProtonMail/go-crypto/openpgp"
	"github.com/ProtonMail/go-crypto/openpgp/armor"
	"github.com/ProtonMail/go-crypto/openpgp/packet"
)

// Key is a generated key pair in armored form
type Key struct {
	Entity  *openpgp.Entity
	Private []byte
	Public  []byte
}

// GenerateKey creates an unencrypted RSA signing key
func GenerateKey(tb testing.TB) *Key {
	tb.Helper()

	entity, err := openpgp.NewEntity("rpm-builder test", "", "test@example.com", &packet.Config{
		Algorithm: packet.PubKeyAlgoRSA,
		RSABits:   2048,
	})
	if err != nil {
		tb.Fatalf("Failed to generate key: %v", err)
	}

	var private bytes.Buffer
	w, err := armor.Encode(&private, openpgp.PrivateKeyType, nil)
	if err != nil {
		tb.Fatalf("Failed to create armor encoder: %v", err)
	}
	if err := entity.SerializePrivate(w, nil); err != nil {
		tb.Fatalf("Failed to serialize private key: %v", err)
	}
	w.Close()

	var public bytes.Buffer
	w, err = armor.Encode(&public, openpgp.PublicKeyType, nil)
	if err != nil {
		tb.Fatalf("Failed to create armor encoder: %v", err)
	}
	if err := entity.Serialize(w); err != nil {
		tb.Fatalf("Failed to serialize public key: %v", err)
	}
	w.Close()

	return &Key{
		Entity:  entity,
		Private: private.Bytes(),
		Public:  public.Bytes(),
	}
}

// WriteFile stores data in dir under name and returns the path
func WriteFile(tb testing.TB, dir, name string, data []byte) string {
	tb.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0600); err != nil {
		tb.Fatalf("Failed to write %s: %v", path, err)
	}
	return path
}
