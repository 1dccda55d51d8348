// Package handshake implements the protocol pieces of the Google popup login:
// the opaque state parameter round-tripped through the provider and the
// mapping of start-request query parameters onto provider prompt options.
//
// The callback is stateless on purpose: the popup and the opener window do not
// share a session, so every piece of continuation state either travels inside
// the state parameter or falls back to configured defaults.
package handshake

import (
	"encoding/base64"
	"encoding/json"
	"errors"
)

// State is the caller-supplied context carried through the identity provider
// and echoed back on callback. The provider preserves it verbatim.
type State struct {
	// ClientURL is the origin the terminal page posts its message back to.
	// It is always taken from configuration, never from client input.
	ClientURL string `json:"clientURL"`
	// UniqueID correlates one popup attempt with one callback.
	UniqueID string `json:"uniqueId"`
	// ForceSelection records that this attempt followed a sign-out and the
	// provider was asked to re-prompt for an account.
	ForceSelection bool `json:"forceSelection"`
}

var ErrInvalidState = errors.New("invalid state parameter")

// Encode serializes the state as base64 of its JSON form.
func (s State) Encode() string {
	raw, _ := json.Marshal(s)
	return base64.StdEncoding.EncodeToString(raw)
}

// DecodeState parses a state parameter produced by Encode. Both standard and
// URL-safe base64 are accepted since the value passes through query strings.
func DecodeState(encoded string) (State, error) {
	if encoded == "" {
		return State{}, ErrInvalidState
	}
	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		raw, err = base64.URLEncoding.DecodeString(encoded)
		if err != nil {
			return State{}, ErrInvalidState
		}
	}
	var s State
	if err := json.Unmarshal(raw, &s); err != nil {
		return State{}, ErrInvalidState
	}
	return s, nil
}
