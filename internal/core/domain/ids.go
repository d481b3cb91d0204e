package domain

import "encoding/hex"

const idLength = 24

// IsValidID reports whether id is the hex form of a 12-byte store object id.
func IsValidID(id string) bool {
	if len(id) != idLength {
		return false
	}
	_, err := hex.DecodeString(id)
	return err == nil
}
