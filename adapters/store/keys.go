package store

import "strings"

// walletKey normalizes hex addresses so checksummed and lower-case forms of
// the same wallet share one entry.
func walletKey(address string) string {
	return strings.ToLower(strings.TrimSpace(address))
}
