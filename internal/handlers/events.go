// internal/handlers/events.go
package handlers

import (
	"github.com/mitchellh/mapstructure"
)

// clientFrame is the envelope for every inbound message. Ack carries the
// client's correlation id when it wants an acknowledgement back; zero means
// fire and forget.
type clientFrame struct {
	Type string                 `json:"type"`
	Data map[string]interface{} `json:"data"`
	Ack  int64                  `json:"ack"`
}

// ackFrame is the envelope for acknowledgements. Data always carries "ok",
// plus "error" on failure and any handler extras on success.
type ackFrame struct {
	Type string                 `json:"type"`
	Ack  int64                  `json:"ack"`
	Data map[string]interface{} `json:"data"`
}

// Inbound payload shapes, decoded leniently from the frame's data object.

type helloRequest struct {
	Token string `json:"token"`
	Name  string `json:"name"`
}

type createRoomRequest struct {
	Name     string `json:"name"`
	Passcode string `json:"passcode"`
}

type joinRoomRequest struct {
	RoomID   string `json:"roomId"`
	Name     string `json:"name"`
	Passcode string `json:"passcode"`
}

type readyRequest struct {
	Ready bool `json:"ready"`
}

type characterRequest struct {
	CharacterID string `json:"characterId"`
}

type drawRequest struct {
	Count int `json:"count"`
}

type playRequest struct {
	CardID   string `json:"cardId"`
	Location int    `json:"location"`
}

// discardRequest accepts a single id or a batch; both forms merge, single
// id first.
type discardRequest struct {
	CardID  string   `json:"cardId"`
	CardIDs []string `json:"cardIds"`
}

type moveRequest struct {
	CardID string `json:"cardId"`
	From   int    `json:"from"`
	To     int    `json:"to"`
}

type removeRequest struct {
	CardID string `json:"cardId"`
	From   int    `json:"from"`
}

type chatSendRequest struct {
	Text string `json:"text"`
}

// decodePayload maps a frame's data object onto a typed request. Weak typing
// tolerates clients that send "3" where 3 is meant.
func decodePayload(data map[string]interface{}, out interface{}) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		TagName:          "json",
		WeaklyTypedInput: true,
	})
	if err != nil {
		return err
	}
	return dec.Decode(data)
}
