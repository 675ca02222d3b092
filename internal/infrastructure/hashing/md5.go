// Package hashing provides the barcode payload digest.
package hashing

import (
	"crypto/md5"
	"encoding/hex"

	"github.com/erp/barcode/internal/domain/barcode"
)

// MD5Hasher hashes barcode payloads to lowercase hex MD5 digests.
// Existing barcode_hash columns are keyed on this format.
type MD5Hasher struct{}

// NewMD5Hasher creates a new MD5Hasher
func NewMD5Hasher() MD5Hasher {
	return MD5Hasher{}
}

// Hash returns the digest of the raw payload
func (MD5Hasher) Hash(data string) barcode.Hash {
	sum := md5.Sum([]byte(data))
	return barcode.Hash(hex.EncodeToString(sum[:]))
}

var _ barcode.Hasher = MD5Hasher{}
