package listener

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/pixil98/go-adventure/internal/engine"
	"github.com/pixil98/go-adventure/internal/session"
)

// ConnectionManager turns each accepted connection into a play session:
// one session per connection, one engine turn per line of input.
type ConnectionManager struct {
	engine       *engine.Engine
	defaultWorld string
}

func NewConnectionManager(e *engine.Engine, defaultWorld string) *ConnectionManager {
	return &ConnectionManager{
		engine:       e,
		defaultWorld: defaultWorld,
	}
}

func (m *ConnectionManager) AcceptConnection(ctx context.Context, conn io.ReadWriter) {
	if err := m.runSession(ctx, newCRLFReadWriter(conn)); err != nil {
		slog.WarnContext(ctx, "play session", "error", err)
	}
}

func (m *ConnectionManager) runSession(ctx context.Context, conn io.ReadWriter) error {
	turn, err := m.engine.StartSession(ctx, m.defaultWorld, false)
	if err != nil {
		fmt.Fprintf(conn, "Unable to start a session: %s\n", err)
		return fmt.Errorf("starting session: %w", err)
	}

	slog.InfoContext(ctx, "session started", "session", turn.SessionID, "world", m.defaultWorld)

	fmt.Fprintf(conn, "%s\n\n> ", turn.Narrative)

	scanner := bufio.NewScanner(conn)
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return nil
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			fmt.Fprint(conn, "> ")
			continue
		}
		if line == "quit" || line == "exit" {
			fmt.Fprint(conn, "Goodbye.\n")
			return nil
		}

		turn, err := m.engine.SubmitAction(ctx, turn.SessionID, line, false)
		if err != nil {
			if errors.Is(err, session.ErrTurnInFlight) {
				fmt.Fprint(conn, "Still working on your last action.\n\n> ")
				continue
			}
			return fmt.Errorf("submitting action: %w", err)
		}

		fmt.Fprintf(conn, "%s\n", turn.Narrative)
		if turn.EndingNarrative != "" {
			fmt.Fprintf(conn, "\n%s\n", turn.EndingNarrative)
		}
		fmt.Fprint(conn, "\n> ")
	}

	if err := scanner.Err(); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("reading input: %w", err)
	}
	return nil
}
