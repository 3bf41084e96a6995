package digest

import (
	"strings"

	"github.com/bizlink/digest-engine/internal/domain"
)

// ResolveRecipients expands a preference into the concrete delivery list:
// primary recipient first, then extras, trimmed, blanks dropped, duplicates
// removed keeping first occurrence. An empty result means the group must be
// skipped (counted and logged), never that the run should fail.
func ResolveRecipients(p *domain.BatchingPreference) []string {
	seen := make(map[string]struct{})
	var result []string

	add := func(addr string) {
		addr = strings.TrimSpace(addr)
		if addr == "" {
			return
		}
		if _, dup := seen[addr]; dup {
			return
		}
		seen[addr] = struct{}{}
		result = append(result, addr)
	}

	add(p.PrimaryRecipient)
	for _, addr := range p.ExtraRecipients {
		add(addr)
	}
	return result
}
