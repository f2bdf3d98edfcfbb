package utils

import (
	"net"
	"testing"
)

func TestIsAddressInUse(t *testing.T) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	addr := l.Addr().String()
	if !IsAddressInUse("tcp", addr) {
		t.Errorf("%s should be in use", addr)
	}
	l.Close()
	if IsAddressInUse("tcp", addr) {
		t.Errorf("%s should be free after close", addr)
	}
}
