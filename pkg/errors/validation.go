package errors

import (
	"net"
	"strconv"
	"strings"
	"unicode"
)

// maxNodeIDLength bounds node ids accepted from outside the process
// (HTTP bodies, CLI flags). Snapshot contents are not validated.
const maxNodeIDLength = 256

// ValidateNodeID validates a node id received from a viewer.
//
// The validation rules are intentionally conservative:
//   - No empty ids
//   - No control characters
//   - Maximum length of 256 characters
func ValidateNodeID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidNodeID, "node id cannot be empty")
	}

	if len(id) > maxNodeIDLength {
		return New(ErrCodeInvalidNodeID, "node id too long (max %d characters)", maxNodeIDLength)
	}

	for _, r := range id {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidNodeID, "node id contains invalid control characters")
		}
	}

	return nil
}

// ValidateCacheKey validates a cache key or key prefix.
// Keys are shared with other writers of the cache, so whitespace and
// glob metacharacters are rejected.
func ValidateCacheKey(key string) error {
	if key == "" {
		return New(ErrCodeInvalidKey, "cache key cannot be empty")
	}

	if len(key) > 512 {
		return New(ErrCodeInvalidKey, "cache key too long (max 512 characters)")
	}

	for _, r := range key {
		if unicode.IsSpace(r) || unicode.IsControl(r) {
			return New(ErrCodeInvalidKey, "cache key contains whitespace or control characters")
		}
	}

	if strings.ContainsAny(key, "*?[]") {
		return New(ErrCodeInvalidKey, "cache key cannot contain glob characters: %q", key)
	}

	return nil
}

// ValidateListenAddr validates a host:port listen address.
// An empty host is allowed (listen on all interfaces).
func ValidateListenAddr(addr string) error {
	if addr == "" {
		return New(ErrCodeInvalidConfig, "listen address cannot be empty")
	}

	_, port, err := net.SplitHostPort(addr)
	if err != nil {
		return Wrap(ErrCodeInvalidConfig, err, "invalid listen address %q", addr)
	}

	n, err := strconv.Atoi(port)
	if err != nil || n < 0 || n > 65535 {
		return New(ErrCodeInvalidConfig, "invalid port in listen address %q", addr)
	}

	return nil
}
