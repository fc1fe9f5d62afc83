package singleinstance

import (
	"os"
	"strconv"
	"strings"
)

// The overlay's control channel lives in this loopback range. The resident
// binds the first port; ctl and the panel scan the whole range for it.
const (
	defaultPortStart = 49600
	defaultPortEnd   = 49650

	portStartEnv = "SINGLEINSTANCE_PORT_START"
	portEndEnv   = "SINGLEINSTANCE_PORT_END"
)

// ControlPorts returns the inclusive port range after applying the
// SINGLEINSTANCE_PORT_START/END overrides. Unparsable values are ignored;
// the range is kept within [1024, 65535] and ordered.
func ControlPorts() (start, end int) {
	start = envPort(portStartEnv, defaultPortStart)
	end = envPort(portEndEnv, defaultPortEnd)
	start = min(max(start, 1024), 65535)
	end = min(max(end, 1024), 65535)
	if end < start {
		start, end = end, start
	}
	return start, end
}

func envPort(name string, fallback int) int {
	v := strings.TrimSpace(os.Getenv(name))
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
