package wire

import (
	"encoding/base64"

	"github.com/wippyai/stabletrace/errors"
)

// textEncoding is the URL-safe alphabet (A-Z a-z 0-9 - _) without '='
// padding. A trailing group of 1 or 2 bytes becomes 2 or 3 characters.
var textEncoding = base64.RawURLEncoding

// EncodeBase64URL encodes data as unpadded URL-safe base64.
func EncodeBase64URL(data []byte) string {
	return textEncoding.EncodeToString(data)
}

// EncodedBase64URLLen returns the text length for n input bytes.
func EncodedBase64URLLen(n int) int {
	return textEncoding.EncodedLen(n)
}

// DecodeBase64URL decodes unpadded URL-safe base64.
func DecodeBase64URL(s string) ([]byte, error) {
	data, err := textEncoding.DecodeString(s)
	if err != nil {
		return nil, errors.New(errors.PhaseDecode, errors.KindInvalidData).
			Format("base64url").
			Cause(err).
			Build()
	}
	return data, nil
}
