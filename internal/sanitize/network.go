package sanitize

import "strings"

// LoopbackLocal is the canonical network id every loopback address collapses
// to. Merging all local agents into one origin is intentional — see
// DESIGN.md's Open Question decisions.
const LoopbackLocal = "loopback-local"

// NetworkID derives a normalized network identity from the first entry of a
// forwarded-for header, falling back to the raw peer address. Loopback
// addresses of either family collapse to LoopbackLocal.
func NetworkID(forwardedFor, rawAddr string) string {
	candidate := rawAddr
	if forwardedFor != "" {
		if first, _, ok := strings.Cut(forwardedFor, ","); ok {
			candidate = strings.TrimSpace(first)
		} else {
			candidate = strings.TrimSpace(forwardedFor)
		}
	}

	host := stripPort(candidate)
	if isLoopbackHost(host) {
		return LoopbackLocal
	}
	return host
}

func stripPort(addr string) string {
	addr = strings.TrimPrefix(addr, "[")
	if idx := strings.LastIndex(addr, "]:"); idx >= 0 {
		return addr[:idx]
	}
	if strings.Count(addr, ":") == 1 {
		if host, _, ok := strings.Cut(addr, ":"); ok {
			return host
		}
	}
	return strings.TrimSuffix(addr, "]")
}

func isLoopbackHost(host string) bool {
	return host == "127.0.0.1" || host == "::1" || host == "localhost" || strings.HasPrefix(host, "127.")
}

// IsLikelyPrivateOrLocal reports whether a normalized network id looks like
// a loopback, RFC1918, link-local, or IPv6 ULA address.
func IsLikelyPrivateOrLocal(networkID string) bool {
	id := stripIPv4MappedPrefix(networkID)

	if id == LoopbackLocal {
		return true
	}
	if strings.HasPrefix(id, "10.") || strings.HasPrefix(id, "192.168.") || strings.HasPrefix(id, "169.254.") {
		return true
	}
	if isIn172Range(id) {
		return true
	}
	lower := strings.ToLower(id)
	if strings.HasPrefix(lower, "fc") || strings.HasPrefix(lower, "fd") {
		return true
	}
	return false
}

func stripIPv4MappedPrefix(id string) string {
	lower := strings.ToLower(id)
	const prefix = "::ffff:"
	if strings.HasPrefix(lower, prefix) {
		return id[len(prefix):]
	}
	return id
}

func isIn172Range(id string) bool {
	if !strings.HasPrefix(id, "172.") {
		return false
	}
	rest := strings.TrimPrefix(id, "172.")
	secondOctet, _, ok := strings.Cut(rest, ".")
	if !ok {
		return false
	}
	n := 0
	for _, c := range secondOctet {
		if c < '0' || c > '9' {
			return false
		}
		n = n*10 + int(c-'0')
	}
	return n >= 16 && n <= 31
}
