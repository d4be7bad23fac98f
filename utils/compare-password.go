package utils

import (
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"strings"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrIncorrectPassword = errors.New("incorrect password")
	ErrInvalidHashFormat = errors.New("invalid password hash format")
)

// ComparePass verifies password against a stored hash. Besides our own
// argon2id format it accepts bcrypt hashes, which is what accounts created
// before the Go service carry.
func ComparePass(password, hashPassword string) error {
	if strings.HasPrefix(hashPassword, "$2") {
		err := bcrypt.CompareHashAndPassword([]byte(hashPassword), []byte(password))
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return ErrIncorrectPassword
		}
		return err
	}

	parts := strings.Split(hashPassword, ".")
	if len(parts) != 2 {
		return ErrInvalidHashFormat
	}
	salt, err := base64.StdEncoding.DecodeString(parts[0])
	if err != nil {
		return ErrInvalidHashFormat
	}
	hash, err := base64.StdEncoding.DecodeString(parts[1])
	if err != nil || len(hash) == 0 {
		return ErrInvalidHashFormat
	}

	computed := argon2.IDKey([]byte(password), salt, argonTime, argonMemory, argonThreads, uint32(len(hash)))
	if subtle.ConstantTimeCompare(hash, computed) != 1 {
		return ErrIncorrectPassword
	}
	return nil
}
