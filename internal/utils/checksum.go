package utils

import (
	"crypto/sha256"
	"crypto/sha512"
	"encoding/hex"
	"io"
	"os"
)

// Digest identifies a built artifact on disk
type Digest struct {
	SHA256 string
	SHA512 string
	Size   int64
}

// DigestFile hashes the file at path in a single pass
func DigestFile(path string) (*Digest, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return DigestReader(f)
}

// DigestReader hashes everything left in r
func DigestReader(r io.Reader) (*Digest, error) {
	sha256Hash := sha256.New()
	sha512Hash := sha512.New()

	size, err := io.Copy(io.MultiWriter(sha256Hash, sha512Hash), r)
	if err != nil {
		return nil, err
	}

	return &Digest{
		SHA256: hex.EncodeToString(sha256Hash.Sum(nil)),
		SHA512: hex.EncodeToString(sha512Hash.Sum(nil)),
		Size:   size,
	}, nil
}
