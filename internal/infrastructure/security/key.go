package security

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
)

// DecodeSecretKey turns the configured base64 shared secret into raw HMAC key
// bytes. Trailing padding is optional.
func DecodeSecretKey(encoded string) ([]byte, error) {
	s := strings.TrimRight(strings.TrimSpace(encoded), "=")
	if s == "" {
		return nil, errors.New("secret key is empty")
	}
	key, err := base64.RawStdEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("decode secret key: %w", err)
	}
	return key, nil
}
