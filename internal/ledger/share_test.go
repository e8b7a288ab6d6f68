package ledger

import "testing"

func TestShare(t *testing.T) {
	tests := []struct {
		name        string
		amount      int64
		memberCount int
		want        int64
	}{
		{name: "even split", amount: 300, memberCount: 3, want: 100},
		{name: "two members", amount: 40, memberCount: 2, want: 20},
		{name: "single member", amount: 75, memberCount: 1, want: 75},
		// 100/3 = 33.33 rounds down to 33. Two non-payer shares sum to 66,
		// not the 67 the payer is actually out; the drift is intentional.
		{name: "remainder rounds down", amount: 100, memberCount: 3, want: 33},
		{name: "remainder rounds up", amount: 200, memberCount: 3, want: 67},
		{name: "half rounds away from zero", amount: 5, memberCount: 2, want: 3},
		{name: "large amount", amount: 1_000_000, memberCount: 7, want: 142857},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Share(tt.amount, tt.memberCount); got != tt.want {
				t.Errorf("Share(%d, %d) = %d, want %d", tt.amount, tt.memberCount, got, tt.want)
			}
		})
	}
}

func TestShareDriftIsNotConserved(t *testing.T) {
	// Documented behavior: uniform rounded shares do not reconstruct the
	// original amount when it is not evenly divisible.
	share := Share(100, 3)
	if share*3 == 100 {
		t.Fatalf("expected drift for 100/3, got conserving shares of %d", share)
	}
	if got := share * 2; got != 66 {
		t.Errorf("non-payer shares sum = %d, want 66", got)
	}
}
