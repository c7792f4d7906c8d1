package id

import (
	"crypto/rand"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"time"
)

// NewID32 returns exactly 32 hex characters (no separators/prefixes).
func NewID32() string {
	b := make([]byte, 16)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}

func randomDigits5() string {
	var b [8]byte
	_, _ = rand.Read(b[:])
	n := binary.BigEndian.Uint64(b[:]) % 100000
	return fmt.Sprintf("%05d", n)
}

// NewReceiptNumber builds a human-readable payment receipt number,
// format PAY-YYYYMMDD-NNNNN. Uniqueness is enforced by the DB index;
// callers retry generation on collision.
func NewReceiptNumber(at time.Time) string {
	return fmt.Sprintf("PAY-%s-%s", at.UTC().Format("20060102"), randomDigits5())
}

// NewInvoiceNumber builds an invoice number, format INV-YYYYMM-NNNNN.
func NewInvoiceNumber(at time.Time) string {
	return fmt.Sprintf("INV-%s-%s", at.UTC().Format("200601"), randomDigits5())
}
