package extractors

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/transform"

	"github.com/oshiete-dev/oshiete-cli/internal/core/domain"
)

// DecodeText converts raw file bytes to a UTF-8 string. Valid UTF-8 passes
// through unchanged; anything else is decoded as Shift-JIS. Input that is
// neither is an error.
func DecodeText(raw []byte) (string, error) {
	if utf8.Valid(raw) {
		return string(raw), nil
	}

	decoded, _, err := transform.Bytes(japanese.ShiftJIS.NewDecoder(), raw)
	if err != nil {
		return "", fmt.Errorf("decoding as Shift-JIS: %w", err)
	}

	// The decoder substitutes U+FFFD for byte sequences outside Shift-JIS.
	// The input was not valid UTF-8, so any replacement rune marks bytes
	// that neither encoding explains.
	if strings.ContainsRune(string(decoded), utf8.RuneError) {
		return "", fmt.Errorf("%w: content is neither valid UTF-8 nor Shift-JIS", domain.ErrInvalidInput)
	}

	return string(decoded), nil
}
