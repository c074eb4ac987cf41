package messaging

import (
	"encoding/json"
	"fmt"

	"github.com/pixil98/go-adventure/internal/action"
)

// TurnPublisher pushes each turn's applied events onto the session's
// subject as JSON.
type TurnPublisher struct {
	server *NatsServer
}

func NewTurnPublisher(server *NatsServer) *TurnPublisher {
	return &TurnPublisher{server: server}
}

func (p *TurnPublisher) PublishTurn(sessionID string, events []action.Event) error {
	data, err := json.Marshal(events)
	if err != nil {
		return fmt.Errorf("marshalling events: %w", err)
	}
	return p.server.Publish(fmt.Sprintf("session.%s.events", sessionID), data)
}
