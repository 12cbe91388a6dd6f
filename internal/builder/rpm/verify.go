package rpm

import (
	"bytes"
	"fmt"
	"io"

	"github.com/ProtonMail/go-crypto/openpgp"
	"github.com/ralt/rpm-builder/internal/models"
	"github.com/sassoftware/go-rpmutils"
)

// VerifyResult describes the signatures found on a verified package
type VerifyResult struct {
	Name    string
	Version string
	Release string
	// KeyIDs lists the signing keys, one per signature
	KeyIDs []string
	// HeaderOnly is true when no signature covers the payload
	HeaderOnly bool
}

// ReadKeyRing parses armored or binary public key material
func ReadKeyRing(material []byte) (openpgp.EntityList, error) {
	keyring, err := openpgp.ReadArmoredKeyRing(bytes.NewReader(material))
	if err != nil {
		keyring, err = openpgp.ReadKeyRing(bytes.NewReader(material))
		if err != nil {
			return nil, fmt.Errorf("failed to read public key: %w", err)
		}
	}
	if len(keyring) == 0 {
		return nil, fmt.Errorf("no keys found in public key material")
	}
	return keyring, nil
}

// Verify checks the digests and signatures of the package read from r
// against publicKey. An unsigned package fails verification.
func Verify(r io.Reader, publicKey []byte) (*VerifyResult, error) {
	keyring, err := ReadKeyRing(publicKey)
	if err != nil {
		return nil, models.NewError(models.ErrVerify, "", err)
	}

	hdr, sigs, err := rpmutils.Verify(r, keyring)
	if err != nil {
		return nil, models.NewError(models.ErrVerify, "", fmt.Errorf("signature verification failed: %w", err))
	}
	if len(sigs) == 0 {
		return nil, models.NewError(models.ErrVerify, "", fmt.Errorf("package is not signed"))
	}

	pkg := &rpmutils.Rpm{Header: hdr}
	result := &VerifyResult{
		Name:       getStringTag(pkg, rpmutils.NAME),
		Version:    getStringTag(pkg, rpmutils.VERSION),
		Release:    getStringTag(pkg, rpmutils.RELEASE),
		HeaderOnly: true,
	}
	for _, sig := range sigs {
		if sig.Signer != nil {
			result.KeyIDs = append(result.KeyIDs, sig.Signer.PrimaryKey.KeyIdString())
		}
		if !sig.HeaderOnly {
			result.HeaderOnly = false
		}
	}

	return result, nil
}
