package singleinstance

import (
	"bufio"
	"context"
	"net"
	"strconv"
	"time"
)

// probeTimeout bounds each PING so a stray listener in the range cannot
// stall the scan.
const probeTimeout = 300 * time.Millisecond

// DetectResidentPort returns the port of a running overlay, found by asking
// each port in the range for PONG.
func DetectResidentPort(ctx context.Context) (int, bool) {
	start, end := ControlPorts()
	for port := start; port <= end; port++ {
		if ctx.Err() != nil {
			return 0, false
		}
		if probe(ctx, residentAddr(port)) {
			return port, true
		}
	}
	return 0, false
}

func residentAddr(port int) string {
	return net.JoinHostPort(residentHost, strconv.Itoa(port))
}

func probe(ctx context.Context, addr string) bool {
	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()
	status, _, err := roundTrip(ctx, addr, pingRequest)
	return err == nil && status == pongResponse
}

// roundTrip writes one request line and returns the first reply line plus
// whatever follows it until the resident closes the connection.
func roundTrip(ctx context.Context, addr, line string) (string, *bufio.Reader, error) {
	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return "", nil, err
	}
	context.AfterFunc(ctx, func() { conn.Close() })
	if dl, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(dl)
	}
	if _, err := conn.Write([]byte(line)); err != nil {
		conn.Close()
		return "", nil, err
	}
	br := bufio.NewReader(conn)
	status, err := br.ReadString('\n')
	if err != nil {
		conn.Close()
		return "", nil, err
	}
	return status, br, nil
}
