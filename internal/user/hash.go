package user

import (
	"crypto/rand"
	"crypto/subtle"
	"errors"

	"golang.org/x/crypto/argon2"
)

var errHashMismatch = errors.New("hash doesn't match")

type (
	argonHasher struct {
		time    uint32
		memory  uint32
		threads uint8
		keyLen  uint32
		saltLen uint32
	}

	hashAndSalt struct {
		hash []byte
		salt []byte
	}
)

func newArgon2IdHasher(time, saltLen uint32, memory uint32, threads uint8, keyLen uint32) *argonHasher {
	return &argonHasher{time: time, saltLen: saltLen, memory: memory, threads: threads, keyLen: keyLen}
}

// GenerateHash derives an argon2id key from the password. A random salt of
// the configured length is generated when none is provided.
func (a *argonHasher) GenerateHash(password, salt []byte) (*hashAndSalt, error) {
	if len(salt) == 0 {
		var err error
		if salt, err = randomSecret(a.saltLen); err != nil {
			return nil, err
		}
	}

	hash := argon2.IDKey(password, salt, a.time, a.memory, a.threads, a.keyLen)
	return &hashAndSalt{hash, salt}, nil
}

// Compare re-derives the hash of password using the stored salt, and
// compares it against the stored hash in constant time.
func (a *argonHasher) Compare(hash, salt, password []byte) error {
	derived, err := a.GenerateHash(password, salt)
	if err != nil {
		return err
	}

	if subtle.ConstantTimeCompare(hash, derived.hash) != 1 {
		return errHashMismatch
	}

	return nil
}

func randomSecret(length uint32) ([]byte, error) {
	secret := make([]byte, length)
	if _, err := rand.Read(secret); err != nil {
		return nil, err
	}

	return secret, nil
}
