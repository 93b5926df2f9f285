package ingest

import (
	"encoding/binary"
	"encoding/hex"

	"github.com/minio/highwayhash"
)

var hashKey = []byte("bill-scanner-doc-fingerprint-k32")

// ContentHash returns the hex highwayhash-64 of data, used to spot re-submitted bills.
func ContentHash(data []byte) (string, error) {
	h, err := highwayhash.New64(hashKey)
	if err != nil {
		return "", err
	}
	if _, err := h.Write(data); err != nil {
		return "", err
	}
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], h.Sum64())
	return hex.EncodeToString(buf[:]), nil
}
