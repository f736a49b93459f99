package utils

import "testing"

func TestReferralCodeFor(t *testing.T) {
	cases := []struct {
		username   string
		telegramID int64
		want       string
	}{
		{"alice", 1, "ASalice"},
		{"bob_99", 2, "ASbob99"},
		{"дмитрий", 3, "AS3"},
		{"", 4, "AS4"},
		{"mixed.Case-User", 5, "ASmixedCaseUser"},
	}
	for _, tc := range cases {
		if got := ReferralCodeFor(tc.username, tc.telegramID); got != tc.want {
			t.Fatalf("ReferralCodeFor(%q, %d) = %q, want %q", tc.username, tc.telegramID, got, tc.want)
		}
	}
}
