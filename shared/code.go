package shared

import (
	"crypto/rand"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"easedrop/shared/constants"
)

// ErrCodeSpaceExhausted is returned when repeated generation attempts keep
// colliding with live codes, meaning the keyspace is close to full.
var ErrCodeSpaceExhausted = errors.New("unable to generate a unique code")

var codePattern = regexp.MustCompile(fmt.Sprintf(
	`^%s-[%s]{%d}$`,
	constants.CodePrefix,
	constants.CodeAlphabet,
	constants.CodeSuffixLength))

// GenerateCode returns a new smart code in PREFIX-XXXX form, drawn uniformly
// from the restricted alphabet. The alphabet has 32 symbols, which divides
// 256 evenly, so reducing a random byte mod 32 introduces no bias.
func GenerateCode() string {
	suffix := make([]byte, constants.CodeSuffixLength)
	if _, err := rand.Read(suffix); err != nil {
		panic("crypto/rand failed: " + err.Error())
	}

	for i, b := range suffix {
		suffix[i] = constants.CodeAlphabet[int(b)%len(constants.CodeAlphabet)]
	}

	return constants.CodePrefix + "-" + string(suffix)
}

// GenerateUniqueCode generates codes until one doesn't collide with a live
// record, capped at constants.MaxCodeAttempts tries. The exists check only
// needs to cover live codes -- expired codes are free to reuse.
func GenerateUniqueCode(exists func(string) (bool, error)) (string, error) {
	for attempt := 0; attempt < constants.MaxCodeAttempts; attempt++ {
		code := GenerateCode()
		inUse, err := exists(code)
		if err != nil {
			return "", err
		} else if !inUse {
			return code, nil
		}
	}

	return "", ErrCodeSpaceExhausted
}

// IsValidCode checks a string against the exact smart code format.
func IsValidCode(code string) bool {
	return codePattern.MatchString(code)
}

// NormalizeCode cleans up hand-typed input: uppercases, strips characters
// outside the code alphabet, and re-inserts the separator after the prefix.
// Cosmetic only -- the result still has to pass IsValidCode.
func NormalizeCode(input string) string {
	var clean strings.Builder
	for _, r := range strings.ToUpper(input) {
		if strings.ContainsRune(constants.CodeAlphabet, r) {
			clean.WriteRune(r)
		}
	}

	cleaned := clean.String()
	prefixLen := len(constants.CodePrefix)
	if len(cleaned) <= prefixLen {
		return cleaned
	}

	suffixEnd := prefixLen + constants.CodeSuffixLength
	if len(cleaned) > suffixEnd {
		cleaned = cleaned[:suffixEnd]
	}

	return cleaned[:prefixLen] + "-" + cleaned[prefixLen:]
}
