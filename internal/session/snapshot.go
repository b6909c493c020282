package session

import (
	"encoding/json"
	"errors"

	"github.com/nhle/taskflow/internal/model"
)

// ErrAnonymous is returned when encoding a session with no signed-in user.
var ErrAnonymous = errors.New("session is anonymous")

// Snapshot is the serialized form of an authenticated session.
type Snapshot struct {
	User  *model.User `json:"user"`
	Token string      `json:"token"`
}

// Encode serializes an authenticated session.
func Encode(s model.Session) ([]byte, error) {
	if s.Anonymous() || s.Token == "" {
		return nil, ErrAnonymous
	}
	return json.Marshal(Snapshot{User: s.User, Token: s.Token})
}

// RestoreSession decodes a snapshot produced by Encode. Empty or malformed
// input, or a snapshot missing its user or token, yields an anonymous
// session.
func RestoreSession(blob []byte) model.Session {
	if len(blob) == 0 {
		return model.Session{}
	}
	var snap Snapshot
	if err := json.Unmarshal(blob, &snap); err != nil {
		return model.Session{}
	}
	if snap.User == nil || snap.User.ID == "" || snap.Token == "" {
		return model.Session{}
	}
	return model.Session{User: snap.User, Token: snap.Token, IsAuthenticated: true}
}
