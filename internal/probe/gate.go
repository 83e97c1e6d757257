package probe

import (
	"net"
	"time"
)

// ConnectivityGate reports whether the host currently has network
// connectivity. Implementations must be cheap and side-effect free.
type ConnectivityGate interface {
	IsConnected() bool
}

// DialGate answers by attempting a short TCP dial against well-known
// anycast resolvers. Any successful dial counts as connected.
type DialGate struct {
	Timeout time.Duration
	Hosts   []string
}

func NewDialGate() *DialGate {
	return &DialGate{
		Timeout: 2 * time.Second,
		Hosts:   []string{"1.1.1.1:443", "8.8.8.8:53"},
	}
}

func (g *DialGate) IsConnected() bool {
	for _, h := range g.Hosts {
		conn, err := net.DialTimeout("tcp", h, g.Timeout)
		if err == nil {
			conn.Close()
			return true
		}
	}
	return false
}