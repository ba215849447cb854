package streamchat

import (
	"fmt"

	"github.com/google/uuid"
)

// NewSessionID returns a random room identifier in UUID v4 form
// (xxxxxxxx-xxxx-4xxx-yxxx-xxxxxxxxxxxx, y in 8..b).
// It is a routing key, not a credential.
func NewSessionID() string {
	id, err := uuid.NewRandom()
	if err != nil {
		panic(fmt.Sprintf("streamchat: generate session id: %v", err))
	}
	return id.String()
}
