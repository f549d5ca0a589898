package transaction

import (
	"testing"

	"bankapi/internal/shared/money"
)

func TestType(t *testing.T) {
	tests := []struct {
		typ    Type
		valid  bool
		credit bool
	}{
		{TypeDeposit, true, true},
		{TypeTransferIn, true, true},
		{TypeWithdraw, true, false},
		{TypeTransferOut, true, false},
		{Type("refund"), false, false},
		{Type(""), false, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.typ), func(t *testing.T) {
			if got := tt.typ.Valid(); got != tt.valid {
				t.Errorf("Valid() = %v, want %v", got, tt.valid)
			}
			if got := tt.typ.Credit(); got != tt.credit {
				t.Errorf("Credit() = %v, want %v", got, tt.credit)
			}
		})
	}
}

func TestTotals_Net(t *testing.T) {
	totals := Totals{Credits: money.Cents(12000), Debits: money.Cents(5000)}
	if totals.Net() != 7000 {
		t.Errorf("Net() = %d, want 7000", totals.Net())
	}
}
