package singleinstance

import (
	"context"
	"errors"
	"io"
	"strings"
	"time"
)

const sendTimeout = 2 * time.Second

type tcpClient struct{}

func newTcpClient() Client { return &tcpClient{} }

func (c *tcpClient) Send(ctx context.Context, cmd Command) (string, error) {
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, sendTimeout)
		defer cancel()
	}
	port, ok := DetectResidentPort(ctx)
	if !ok {
		return "", ErrNoResident
	}
	if cmd.Verb == VerbPing {
		return "", nil
	}

	status, br, err := roundTrip(ctx, residentAddr(port), cmd.String()+"\n")
	if err != nil {
		return "", err
	}
	body, _ := io.ReadAll(br)
	switch status {
	case okResponse:
		return string(body), nil
	case errorResponse:
		return "", errors.New(strings.TrimSpace(string(body)))
	default:
		return "", errors.New("unexpected resident reply: " + strings.TrimSpace(status))
	}
}
