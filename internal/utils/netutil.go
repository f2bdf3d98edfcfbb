package utils

import (
	"net"
	"time"
)

/**
 * Check whether something accepts connections on the address
 * @param {string} network - tcp or unix
 * @param {string} address - host:port or socket path
 * @returns {bool} Returns true if a connection could be established
 */
func IsAddressInUse(network, address string) bool {
	conn, err := net.DialTimeout(network, address, time.Second)
	if err != nil {
		return false
	}
	conn.Close()
	return true
}
