package utils

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strconv"
	"time"
)

// NewTransactionKey returns a default idempotency key: TXN<unix millis>-<6 hex>.
func NewTransactionKey(now time.Time) (string, error) {
	suffix, err := randomHex(3)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("TXN%d-%s", now.UnixMilli(), suffix), nil
}

// NewMembershipID returns a candidate membership id: MBR-<base36 millis>-<8 hex>.
func NewMembershipID(now time.Time) (string, error) {
	suffix, err := randomHex(4)
	if err != nil {
		return "", err
	}
	return "MBR-" + strconv.FormatInt(now.UnixMilli(), 36) + "-" + suffix, nil
}

// randomHex reads n random bytes and hex encodes them.
func randomHex(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to read random bytes: %w", err)
	}
	return hex.EncodeToString(b), nil
}
