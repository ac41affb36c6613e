package observability

import (
	"net"
)

// GetOutboundIP returns the local address used for outbound traffic, or
// an empty string when there is no route.
func GetOutboundIP() string {
	// udp does not send anything on Dial
	conn, err := net.Dial("udp", "8.8.8.8:80")
	if err != nil {
		return ""
	}
	defer func() {
		_ = conn.Close()
	}()
	localAddr := conn.LocalAddr().(*net.UDPAddr)
	return localAddr.IP.String()
}
