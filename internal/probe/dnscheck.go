package probe

import (
	"context"
	"errors"
	"net"
	"strings"
	"time"
)

var dnsTimeout = 3 * time.Second

// dnsClass buckets a hostname's DNS state so transport failures can
// carry a more useful error description than the raw dial error.
// Classes: "NXDOMAIN" | "RESOLVES" | "SERVFAIL_or_TIMEOUT" | "INVALID_NAME".
func dnsClass(host string) string {
	host = strings.TrimSpace(host)
	if host == "" || strings.Contains(host, "://") {
		return "INVALID_NAME"
	}
	if ip := net.ParseIP(host); ip != nil {
		return "RESOLVES"
	}

	ctx, cancel := context.WithTimeout(context.Background(), dnsTimeout)
	defer cancel()
	r := &net.Resolver{} // OS resolver

	ips, err := r.LookupIP(ctx, "ip", host)
	if err == nil && len(ips) > 0 {
		return "RESOLVES"
	}
	var de *net.DNSError
	if errors.As(err, &de) {
		if de.IsNotFound {
			return "NXDOMAIN"
		}
		if de.IsTemporary || de.Timeout() {
			return "SERVFAIL_or_TIMEOUT"
		}
	}
	return "NXDOMAIN"
}

// refineTransportError annotates a transport failure with the DNS
// class of the host when the name does not resolve, which separates
// "that domain does not exist" from "the server is unreachable".
func refineTransportError(host string, err error) string {
	msg := err.Error()
	if class := dnsClass(host); class != "RESOLVES" && class != "INVALID_NAME" {
		return msg + " (dns=" + class + ")"
	}
	return msg
}
