package singleinstance

// This file defines the API for resident ownership and the control channel.

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Verbs understood by the resident. PING is answered by the server itself.
const (
	VerbPing    = "PING"
	VerbReload  = "RELOAD"
	VerbToggle  = "TOGGLE"
	VerbVisible = "VISIBLE"
	VerbQuit    = "QUIT"
)

var (
	// ErrNoResident is returned by clients when no resident answers PING.
	ErrNoResident = errors.New("no resident overlay is running")
	// ErrUnknownCommand is returned for verbs outside the protocol.
	ErrUnknownCommand = errors.New("unknown command")
)

// Server owns the TCP endpoint and accepts control commands.
type Server interface {
	// Start begins listening on the first port of the configured range
	// [49600,49650]. Failing to bind means another resident owns it.
	Start(ctx context.Context) error
	// Port returns the bound TCP port, or 0 if not started.
	Port() int
	// Next returns the next accepted command connection, or ctx error.
	Next(ctx context.Context) (Conn, error)
	// Close releases ownership and stops accepting clients.
	Close() error
}

// Conn represents one client connection carrying a single command.
type Conn interface {
	Command() Command
	// RespondOK acknowledges the command, optionally with a message.
	RespondOK(text string) error
	// RespondError reports a failure with a human-readable message.
	RespondError(msg string) error
	Close() error
}

// Command is one parsed request line, e.g. "TOGGLE cursor_tail".
type Command struct {
	Verb string
	Arg  string
}

func (c Command) String() string {
	if c.Arg == "" {
		return c.Verb
	}
	return c.Verb + " " + c.Arg
}

// ParseCommand parses a request line. Verbs are case-insensitive.
func ParseCommand(line string) (Command, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return Command{}, fmt.Errorf("%w: empty request", ErrUnknownCommand)
	}
	cmd := Command{Verb: strings.ToUpper(fields[0])}
	if len(fields) > 1 {
		cmd.Arg = strings.Join(fields[1:], " ")
	}
	switch cmd.Verb {
	case VerbPing, VerbReload, VerbVisible, VerbQuit:
		return cmd, nil
	case VerbToggle:
		if cmd.Arg == "" {
			return Command{}, fmt.Errorf("%s needs an effect name", VerbToggle)
		}
		return cmd, nil
	default:
		return Command{}, fmt.Errorf("%w: %q", ErrUnknownCommand, fields[0])
	}
}

// Client sends commands to a resident.
type Client interface {
	// Send scans the port range for a resident and delivers cmd. It returns
	// ErrNoResident when nobody answers.
	Send(ctx context.Context, cmd Command) (string, error)
}

// NewServer returns TCP implementation.
func NewServer() Server { return newTcpServer() }

// NewClient returns TCP implementation.
func NewClient() Client { return newTcpClient() }
