package digest_test

import (
	"reflect"
	"testing"

	"github.com/bizlink/digest-engine/internal/digest"
	"github.com/bizlink/digest-engine/internal/domain"
)

func TestResolveRecipients(t *testing.T) {
	tests := []struct {
		name     string
		pref     domain.BatchingPreference
		expected []string
	}{
		{
			name: "primary first then extras",
			pref: domain.BatchingPreference{
				PrimaryRecipient: "ops@bizlink.test",
				ExtraRecipients:  []string{"audit@bizlink.test"},
			},
			expected: []string{"ops@bizlink.test", "audit@bizlink.test"},
		},
		{
			name: "duplicates removed keeping first occurrence",
			pref: domain.BatchingPreference{
				PrimaryRecipient: "ops@bizlink.test",
				ExtraRecipients:  []string{"audit@bizlink.test", "ops@bizlink.test", "audit@bizlink.test"},
			},
			expected: []string{"ops@bizlink.test", "audit@bizlink.test"},
		},
		{
			name: "blank and whitespace entries dropped",
			pref: domain.BatchingPreference{
				PrimaryRecipient: "  ops@bizlink.test  ",
				ExtraRecipients:  []string{"", "   ", "audit@bizlink.test"},
			},
			expected: []string{"ops@bizlink.test", "audit@bizlink.test"},
		},
		{
			name:     "all blank yields nil",
			pref:     domain.BatchingPreference{PrimaryRecipient: " ", ExtraRecipients: []string{""}},
			expected: nil,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := digest.ResolveRecipients(&tc.pref)
			if !reflect.DeepEqual(got, tc.expected) {
				t.Fatalf("expected %v, got %v", tc.expected, got)
			}
		})
	}
}
