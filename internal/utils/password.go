package utils

import "golang.org/x/crypto/bcrypt"

// HashPassword bcrypt-hashes a staff password at the given cost (wired from
// BCRYPT_COST).  Costs below bcrypt.MinCost fall back to the bcrypt default.
func HashPassword(plain string, cost int) (string, error) {
    hash, err := bcrypt.GenerateFromPassword([]byte(plain), cost)
    if err != nil {
        return "", err
    }
    return string(hash), nil
}

// VerifyPassword reports whether plain matches the stored staff hash.
func VerifyPassword(hash, plain string) bool {
    return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}
