// Package sanitize implements the pure validators and normalizers used to
// scrub user-supplied fields before they enter either engine's registries.
// Every function here is side-effect-free and safe to unit test in
// isolation, following the teacher's room_helpers.go convention of keeping
// business logic pure and pushing I/O to the caller.
package sanitize

import (
	"regexp"
	"strings"

	"github.com/google/uuid"
)

const defaultMaxLen = 128

var uuidLike = regexp.MustCompile(`^[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}$`)

var hostIDStripPattern = regexp.MustCompile(`[^A-Za-z0-9_-]`)

// String returns the trimmed string if v is a string, truncated to maxLen.
// Any other input type yields the empty string. maxLen <= 0 uses the
// default of 128.
func String(v any, maxLen int) string {
	if maxLen <= 0 {
		maxLen = defaultMaxLen
	}
	s, ok := v.(string)
	if !ok {
		return ""
	}
	s = strings.TrimSpace(s)
	if len(s) > maxLen {
		s = s[:maxLen]
	}
	return s
}

// IsUUIDLike reports whether v is a string matching the canonical
// 8-4-4-4-12 hex UUID form, case-insensitive.
func IsUUIDLike(v any) bool {
	s, ok := v.(string)
	if !ok {
		return false
	}
	return uuidLike.MatchString(s)
}

// BuildSuggestedHostID derives a deterministic, bounded host id suggestion
// from a peer id: strip to [A-Za-z0-9_-], take the first 20 characters,
// falling back to the first 8 characters of a fresh UUID if that leaves
// nothing usable.
func BuildSuggestedHostID(peerID string) string {
	stripped := hostIDStripPattern.ReplaceAllString(peerID, "")
	if len(stripped) > 20 {
		stripped = stripped[:20]
	}
	if stripped == "" {
		stripped = strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	}
	return "host-" + stripped
}

// MaxHostIDLen bounds host id strings (§3 Data Model: Host).
const MaxHostIDLen = 64

// HostID trims and bounds a host id to MaxHostIDLen characters.
func HostID(v any) string {
	return String(v, MaxHostIDLen)
}
