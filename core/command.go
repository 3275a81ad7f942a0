package core

import (
	"errors"
	"fmt"

	"quadfc/protocol"
)

// ErrUnknownMessage is returned when no handler is registered for a message ID
var ErrUnknownMessage = errors.New("unknown message")

// CommandHandler handles one decoded ground message
type CommandHandler func(msg *protocol.Message) error

// Command is a registered ground message
type Command struct {
	ID      byte
	Name    string
	Handler CommandHandler
}

// CommandRegistry maps ground message IDs to their handlers
type CommandRegistry struct {
	commands map[byte]*Command
	unknown  uint32
}

// NewCommandRegistry creates an empty registry
func NewCommandRegistry() *CommandRegistry {
	return &CommandRegistry{
		commands: make(map[byte]*Command),
	}
}

// Register adds or replaces the handler for id
func (r *CommandRegistry) Register(id byte, name string, handler CommandHandler) {
	r.commands[id] = &Command{
		ID:      id,
		Name:    name,
		Handler: handler,
	}
}

// GetCommand retrieves a command by ID
func (r *CommandRegistry) GetCommand(id byte) (*Command, bool) {
	cmd, ok := r.commands[id]
	return cmd, ok
}

// Count returns the number of registered commands
func (r *CommandRegistry) Count() int {
	return len(r.commands)
}

// Unknown returns how many messages had no handler
func (r *CommandRegistry) Unknown() uint32 {
	return r.unknown
}

// Dispatch calls the handler registered for msg.ID
func (r *CommandRegistry) Dispatch(msg *protocol.Message) error {
	cmd, ok := r.commands[msg.ID]
	if !ok {
		r.unknown++
		return fmt.Errorf("message %d: %w", msg.ID, ErrUnknownMessage)
	}
	if err := cmd.Handler(msg); err != nil {
		return fmt.Errorf("%s: %w", cmd.Name, err)
	}
	return nil
}
