package directory

import (
	"fmt"

	"golang.org/x/text/encoding/unicode"
)

// utf16le encodes unicodePwd values. Active Directory rejects plain writes to
// credential attributes; the accepted form is the new password wrapped in
// double quotes and encoded as UTF-16LE, sent over an encrypted channel.
var utf16le = unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM)

func encodePassword(secret string) (string, error) {
	encoded, err := utf16le.NewEncoder().String(`"` + secret + `"`)
	if err != nil {
		return "", fmt.Errorf("encode password: %w", err)
	}
	return encoded, nil
}
