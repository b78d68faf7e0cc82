package utils

import (
	"crypto/rand"
	"fmt"
	"strings"
)

// Unambiguous alphabet: no 0/O or 1/I/L.
const inviteAlphabet = "23456789ABCDEFGHJKMNPQRSTUVWXYZ"

const (
	inviteGroups    = 3
	inviteGroupSize = 4
)

// GenerateInviteCode returns a random code in the form XXXX-XXXX-XXXX.
func GenerateInviteCode() (string, error) {
	buf := make([]byte, inviteGroups*inviteGroupSize)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate random bytes: %w", err)
	}

	var sb strings.Builder
	for i, b := range buf {
		if i > 0 && i%inviteGroupSize == 0 {
			sb.WriteByte('-')
		}
		sb.WriteByte(inviteAlphabet[int(b)%len(inviteAlphabet)])
	}
	return sb.String(), nil
}

// NormalizeInviteCode uppercases and trims user input.
func NormalizeInviteCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
