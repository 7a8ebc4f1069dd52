package test

import (
	"net"
	"testing"
)

// ListenAddr returns a free localhost address for a server under test, in
// the host:port form the preview config takes.
func ListenAddr(t testing.TB) string {
	t.Helper()
	l, err := net.Listen("tcp", "localhost:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	addr := l.Addr().String()
	if err := l.Close(); err != nil {
		t.Fatalf("close listener: %v", err)
	}
	return addr
}
