package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"

	"folio/constants"

	"github.com/juju/errors"
	"golang.org/x/crypto/bcrypt"
)

// dummyHash is compared against when a username does not exist, so that an
// unknown user costs the same bcrypt round as a wrong password.
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("folio-dummy-password"), bcrypt.DefaultCost)

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return "", errors.NotValidf("password longer than 72 bytes")
	}
	if err != nil {
		return "", errors.Annotate(err, "hashing password")
	}
	return string(hash), nil
}

func passwordMatches(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// generateSessionToken returns a hex encoded token with
// constants.SESSION_TOKEN_BYTES of entropy.
func generateSessionToken() (string, error) {
	tokenBytes := make([]byte, constants.SESSION_TOKEN_BYTES)
	if _, err := rand.Read(tokenBytes); err != nil {
		return "", errors.Annotate(err, "reading random bytes")
	}
	return hex.EncodeToString(tokenBytes), nil
}

// hashSessionToken is what gets stored and looked up. The browser holds the
// only copy of the plaintext.
func hashSessionToken(token string) string {
	h := sha256.Sum256([]byte(token))
	return hex.EncodeToString(h[:])
}
