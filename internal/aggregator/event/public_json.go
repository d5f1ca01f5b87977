package event

import (
	"encoding/json"
	"fmt"

	"github.com/mr-tron/base58"
)

// MarshalJSON encodes a Public key as its base58 string form.
func (p Public) MarshalJSON() ([]byte, error) {
	return json.Marshal(base58.Encode(p[:]))
}

// UnmarshalJSON decodes a base58-encoded Public key.
func (p *Public) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	decoded, err := base58.Decode(s)
	if err != nil {
		return fmt.Errorf("event: decode public key: %w", err)
	}
	if len(decoded) != len(*p) {
		return fmt.Errorf("event: public key wrong length %d", len(decoded))
	}
	copy(p[:], decoded)
	return nil
}

// String returns the base58 encoding of the address.
func (p Public) String() string { return base58.Encode(p[:]) }

// MarshalJSON encodes a Signature as its base58 string form.
func (s Signature) MarshalJSON() ([]byte, error) {
	return json.Marshal(base58.Encode(s[:]))
}

// UnmarshalJSON decodes a base58-encoded Signature.
func (s *Signature) UnmarshalJSON(b []byte) error {
	var str string
	if err := json.Unmarshal(b, &str); err != nil {
		return err
	}
	decoded, err := base58.Decode(str)
	if err != nil {
		return fmt.Errorf("event: decode signature: %w", err)
	}
	if len(decoded) != len(*s) {
		return fmt.Errorf("event: signature wrong length %d", len(decoded))
	}
	copy(s[:], decoded)
	return nil
}

// String returns the base58 encoding of the signature.
func (s Signature) String() string { return base58.Encode(s[:]) }
