// Package wire defines the JSON wire protocol exchanged over /v1/ws,
// grounded on the untagged-union message shapes the original Rust server
// serializes via serde (Auth vs Manage, "op"-tagged sub-messages).
package wire

import "encoding/json"

// AuthMessage is the first message any connection must send.
type AuthMessage struct {
	Token string `json:"token"`
}

// ManageMessage is an "op"-discriminated intent sent after authentication.
type ManageMessage struct {
	Op   string  `json:"op"`
	Rank *string `json:"rank,omitempty"`
	Suit *string `json:"suit,omitempty"`
}

const (
	OpFindGame = "find_game"
	OpPlayCard = "play_card"
	OpSub      = "sub"
	OpUnsub    = "unsub"
)

// Incoming is the untagged union: exactly one of Auth or Manage is set,
// matching the inbound message shapes of §6. A frame carrying a "token"
// field is an Auth message; otherwise it is dispatched by "op".
type Incoming struct {
	Auth   *AuthMessage
	Manage *ManageMessage
}

// ParseIncoming decodes a text frame into an Incoming union value.
func ParseIncoming(data []byte) (*Incoming, error) {
	var probe struct {
		Token *string `json:"token"`
		Op    *string `json:"op"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, err
	}
	if probe.Token != nil {
		var auth AuthMessage
		if err := json.Unmarshal(data, &auth); err != nil {
			return nil, err
		}
		return &Incoming{Auth: &auth}, nil
	}
	var manage ManageMessage
	if err := json.Unmarshal(data, &manage); err != nil {
		return nil, err
	}
	return &Incoming{Manage: &manage}, nil
}
