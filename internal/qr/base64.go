package qr

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode"
)

var (
	ErrBase64Repair = errors.New("candidate is not repairable base64")

	numericPrefix = regexp.MustCompile(`^\d+@`)
	segmentSplit  = regexp.MustCompile(`[,|\s]+`)
	pngSignature  = []byte("\x89PNG\r\n\x1a\n")
)

// IsPNG reports whether data starts with the PNG file signature.
func IsPNG(data []byte) bool {
	return bytes.HasPrefix(data, pngSignature)
}

// RepairBase64 coerces a provider supplied string into canonical padded
// base64. The result always decodes; anything that cannot be made to decode
// is rejected with ErrBase64Repair.
func RepairBase64(candidate string) (string, error) {
	s := strings.TrimSpace(candidate)
	s = numericPrefix.ReplaceAllString(s, "")
	s = stripDataURL(s)
	s = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) && !unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)

	var b strings.Builder
	for _, segment := range segmentSplit.Split(s, -1) {
		for _, r := range segment {
			switch {
			case r == '-':
				b.WriteByte('+')
			case r == '_':
				b.WriteByte('/')
			case isBase64Char(r):
				b.WriteRune(r)
			}
		}
	}

	out := b.String()
	if out == "" {
		return "", fmt.Errorf("%w: empty after cleanup", ErrBase64Repair)
	}
	switch len(out) % 4 {
	case 1:
		return "", fmt.Errorf("%w: dangling character", ErrBase64Repair)
	case 2:
		out += "=="
	case 3:
		out += "="
	}

	if _, err := base64.StdEncoding.DecodeString(out); err != nil {
		return "", fmt.Errorf("%w: %v", ErrBase64Repair, err)
	}
	return out, nil
}

// DecodeCandidate repairs and decodes a base64 candidate in one step.
func DecodeCandidate(candidate string) ([]byte, error) {
	repaired, err := RepairBase64(candidate)
	if err != nil {
		return nil, err
	}
	return base64.StdEncoding.DecodeString(repaired)
}

func stripDataURL(s string) string {
	if !strings.HasPrefix(strings.ToLower(s), "data:") {
		return s
	}
	if i := strings.Index(s, ","); i >= 0 {
		return s[i+1:]
	}
	return s
}

func isBase64Char(r rune) bool {
	return (r >= 'A' && r <= 'Z') || (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '+' || r == '/'
}
