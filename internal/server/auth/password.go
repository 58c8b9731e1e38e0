package auth

import (
	"crypto/sha512"
	"crypto/subtle"
	"encoding/hex"

	"github.com/dmitrijs2005/conduit/internal/common"
	"github.com/dmitrijs2005/conduit/internal/server/models"
	"golang.org/x/crypto/pbkdf2"
)

const (
	// Parameters of the key derivation. Changing any of them invalidates
	// every stored hash, so they are fixed.
	saltBytes      = 16
	hashIterations = 10000
	hashKeyLength  = 512
)

// DeriveHash applies PBKDF2-SHA512 to the password with the given salt and
// returns the hex-encoded result. Deterministic: the same (password, salt)
// pair always yields the same hash.
func DeriveHash(password, salt string) string {
	key := pbkdf2.Key([]byte(password), []byte(salt), hashIterations, hashKeyLength, sha512.New)
	return hex.EncodeToString(key)
}

// SetPassword generates a fresh random salt and stores the derived hash and
// salt on the user.
func SetPassword(u *models.User, password string) error {
	salt, err := common.MakeRandHexString(saltBytes)
	if err != nil {
		return err
	}
	u.PasswordSalt = salt
	u.PasswordHash = DeriveHash(password, salt)
	return nil
}

// VerifyPassword recomputes the hash with the stored salt and compares it to
// the stored hash in constant time.
func VerifyPassword(u *models.User, password string) bool {
	if u.PasswordSalt == "" || u.PasswordHash == "" {
		return false
	}
	candidate := DeriveHash(password, u.PasswordSalt)
	return subtle.ConstantTimeCompare([]byte(candidate), []byte(u.PasswordHash)) == 1
}
