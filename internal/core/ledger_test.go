package core

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func TestToStoredAmount(t *testing.T) {
	tests := []struct {
		name    string
		kind    TransactionKind
		entered string
		want    string
		wantErr error
	}{
		{
			name:    "expense stays positive",
			kind:    KindExpense,
			entered: "150.25",
			want:    "150.25",
		},
		{
			name:    "income becomes negative",
			kind:    KindIncome,
			entered: "150.25",
			want:    "-150.25",
		},
		{
			name:    "zero expense",
			kind:    KindExpense,
			entered: "0",
			want:    "0",
		},
		{
			name:    "negative input rejected",
			kind:    KindExpense,
			entered: "-10",
			wantErr: ErrNegativeAmount,
		},
		{
			name:    "negative income input rejected",
			kind:    KindIncome,
			entered: "-10",
			wantErr: ErrNegativeAmount,
		},
		{
			name:    "unknown kind rejected",
			kind:    TransactionKind("transfer"),
			entered: "10",
			wantErr: ErrUnknownKind,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ToStoredAmount(tt.kind, decimal.RequireFromString(tt.entered))
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("ToStoredAmount() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("ToStoredAmount() unexpected error: %v", err)
			}
			if got.String() != tt.want {
				t.Errorf("ToStoredAmount() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name   string
		stored string
		want   TransactionKind
	}{
		{"positive is expense", "500", KindExpense},
		{"negative is income", "-500", KindIncome},
		{"zero is expense", "0", KindExpense},
		{"small negative is income", "-0.01", KindIncome},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(decimal.RequireFromString(tt.stored)); got != tt.want {
				t.Errorf("Classify(%s) = %s, want %s", tt.stored, got, tt.want)
			}
		})
	}
}

// Round-trip: storing an entered magnitude and classifying the result must
// recover the kind the user chose.
func TestSignRoundTrip(t *testing.T) {
	amounts := []string{"0.01", "1", "99.99", "125000"}
	for _, kind := range []TransactionKind{KindExpense, KindIncome} {
		for _, a := range amounts {
			entered := decimal.RequireFromString(a)
			stored, err := ToStoredAmount(kind, entered)
			if err != nil {
				t.Fatalf("ToStoredAmount(%s, %s): %v", kind, a, err)
			}
			if got := Classify(stored); got != kind {
				t.Errorf("Classify(ToStoredAmount(%s, %s)) = %s", kind, a, got)
			}
		}
	}
}

func TestToStoredClientFacingAmount(t *testing.T) {
	cf := decimal.NewNullDecimal(decimal.RequireFromString("40"))

	t.Run("income always equals stored amount", func(t *testing.T) {
		stored, _ := ToStoredAmount(KindIncome, decimal.RequireFromString("100"))
		got := ToStoredClientFacingAmount(KindIncome, stored, cf)
		if !got.Valid || !got.Decimal.Equal(stored) {
			t.Errorf("income client-facing = %v, want %s", got, stored)
		}
	})

	t.Run("expense keeps entered value", func(t *testing.T) {
		stored, _ := ToStoredAmount(KindExpense, decimal.RequireFromString("100"))
		got := ToStoredClientFacingAmount(KindExpense, stored, cf)
		if !got.Valid || !got.Decimal.Equal(cf.Decimal) {
			t.Errorf("expense client-facing = %v, want %s", got, cf.Decimal)
		}
	})

	t.Run("expense allows undecided", func(t *testing.T) {
		stored, _ := ToStoredAmount(KindExpense, decimal.RequireFromString("100"))
		got := ToStoredClientFacingAmount(KindExpense, stored, decimal.NullDecimal{})
		if got.Valid {
			t.Errorf("expense client-facing = %v, want null", got)
		}
	})
}

func TestParseKind(t *testing.T) {
	if _, err := ParseKind("expense"); err != nil {
		t.Errorf("ParseKind(expense) error = %v", err)
	}
	if _, err := ParseKind("income"); err != nil {
		t.Errorf("ParseKind(income) error = %v", err)
	}
	if _, err := ParseKind("refund"); !errors.Is(err, ErrUnknownKind) {
		t.Errorf("ParseKind(refund) error = %v, want ErrUnknownKind", err)
	}
}
