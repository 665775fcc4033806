package domain

import (
	"strings"
	"time"
)

// BlockedAddress records an address banned from the platform.
type BlockedAddress struct {
	ID      string
	Address string
	Reason  string
	BanDate time.Time
}

const ipv4MappedPrefix = "::ffff:"

// NormalizeAddress canonicalizes a client address before any blocklist
// comparison. IPv4-mapped IPv6 addresses are reduced to their IPv4 form so
// that bans inserted from either representation match.
func NormalizeAddress(address string) string {
	address = strings.TrimSpace(address)
	if strings.HasPrefix(address, ipv4MappedPrefix) {
		return address[len(ipv4MappedPrefix):]
	}
	return address
}
