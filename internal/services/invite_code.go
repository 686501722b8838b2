package services

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"regexp"

	"calendrier/internal/domain"
)

// DefaultInviteCodeAttempts bounds how many codes are drawn before giving up.
const DefaultInviteCodeAttempts = 5

var (
	inviteCodeAlphabet = []byte("ABCDEFGHIJKLMNOPQRSTUVWXYZ")
	inviteCodePattern  = regexp.MustCompile(`^[A-Z]{6}$`)
)

// generateInviteCode draws InviteCodeLength letters uniformly from A-Z.
func generateInviteCode() (string, error) {
	b := make([]byte, domain.InviteCodeLength)
	max := big.NewInt(int64(len(inviteCodeAlphabet)))
	for i := range b {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		b[i] = inviteCodeAlphabet[n.Int64()]
	}
	return string(b), nil
}

// codeSource is swapped in tests to force collisions.
var codeSource = generateInviteCode

// GenerateUniqueInviteCode draws codes and hands each to tryCreate until one is
// accepted. tryCreate must report a taken code with domain.ErrDuplicateInviteCode;
// any other error stops the loop. After maxAttempts collisions it returns
// domain.ErrInviteCodeCollision.
func GenerateUniqueInviteCode(ctx context.Context, tryCreate func(ctx context.Context, code string) error, maxAttempts int) (string, error) {
	if maxAttempts < 1 {
		maxAttempts = DefaultInviteCodeAttempts
	}
	for attempt := 0; attempt < maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		code, err := codeSource()
		if err != nil {
			return "", fmt.Errorf("generate invite code: %w", err)
		}
		err = tryCreate(ctx, code)
		if err == nil {
			return code, nil
		}
		if !errors.Is(err, domain.ErrDuplicateInviteCode) {
			return "", err
		}
	}
	return "", domain.ErrInviteCodeCollision
}

// ValidInviteCode reports whether code is exactly six uppercase letters.
func ValidInviteCode(code string) bool {
	return inviteCodePattern.MatchString(code)
}
