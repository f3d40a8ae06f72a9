package core

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestParseTxType(t *testing.T) {
	cases := []struct {
		in   string
		want TxType
		ok   bool
	}{
		{"expense", Expense, true},
		{" Income ", Income, true},
		{"transfer", "", false},
		{"", "", false},
	}
	for _, tc := range cases {
		got, err := ParseTxType(tc.in)
		if tc.ok && (err != nil || got != tc.want) {
			t.Fatalf("%q expected %q, got %q (err=%v)", tc.in, tc.want, got, err)
		}
		if !tc.ok && err == nil {
			t.Fatalf("%q expected error", tc.in)
		}
	}
}

func TestDaysIn(t *testing.T) {
	cases := []struct {
		year  int
		month time.Month
		want  int
	}{
		{2024, time.February, 29},
		{2023, time.February, 28},
		{1900, time.February, 28},
		{2000, time.February, 29},
		{2024, time.April, 30},
		{2024, time.December, 31},
	}
	for _, tc := range cases {
		if got := DaysIn(tc.year, tc.month); got != tc.want {
			t.Fatalf("DaysIn(%d, %s) = %d, want %d", tc.year, tc.month, got, tc.want)
		}
	}
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2024-03-05")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.String() != "2024-03-05" {
		t.Fatalf("round trip mismatch: %s", d)
	}
	if _, err := ParseDate("2024-13-01"); !errors.Is(err, ErrInvalidDate) {
		t.Fatalf("expected ErrInvalidDate, got %v", err)
	}
}

func TestTagValidate(t *testing.T) {
	good := Tag{Name: "Food", Type: Expense, Icon: "food", Color: "#F44336"}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	bads := []struct {
		tag  Tag
		want error
	}{
		{Tag{Name: "   ", Type: Expense, Color: "#F44336"}, ErrEmptyTagName},
		{Tag{Name: "x", Type: "transfer", Color: "#F44336"}, ErrInvalidType},
		{Tag{Name: "x", Type: Income, Color: "red"}, ErrInvalidColor},
	}
	for i, tc := range bads {
		err := tc.tag.Validate()
		if !errors.Is(err, tc.want) || !IsValidation(err) {
			t.Fatalf("case %d expected validation error %v, got %v", i, tc.want, err)
		}
	}
}

func TestTransactionValidate(t *testing.T) {
	good := Transaction{
		Amount:   decimal.RequireFromString("12.50"),
		Currency: "CNY",
		Date:     time.Date(2024, 3, 5, 10, 0, 0, 0, time.UTC),
		Type:     Expense,
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	bads := []func(tx *Transaction){
		func(tx *Transaction) { tx.Amount = decimal.Zero },
		func(tx *Transaction) { tx.Amount = decimal.NewFromInt(-3) },
		func(tx *Transaction) { tx.Currency = "" },
		func(tx *Transaction) { tx.Type = "" },
		func(tx *Transaction) { tx.Date = time.Time{} },
		func(tx *Transaction) { tx.Note = strings.Repeat("餐", MaxNoteLength+1) },
	}
	for i, mutate := range bads {
		tx := good
		mutate(&tx)
		if err := tx.Validate(); !IsValidation(err) {
			t.Fatalf("case %d expected validation error, got %v", i, err)
		}
	}
}

func TestNoteLengthCountsCharacters(t *testing.T) {
	tests := []struct {
		name    string
		note    string
		wantErr bool
	}{
		{"short cjk", strings.Repeat("餐", 70), false},
		{"cjk at limit", strings.Repeat("餐", MaxNoteLength), false},
		{"cjk over limit", strings.Repeat("餐", MaxNoteLength+1), true},
		{"ascii over limit", strings.Repeat("a", MaxNoteLength+1), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tx := Transaction{
				Amount:   decimal.NewFromInt(10),
				Currency: "CNY",
				Date:     time.Date(2024, 3, 5, 10, 0, 0, 0, time.UTC),
				Type:     Expense,
				Note:     tt.note,
			}
			if err := tx.Validate(); (err != nil) != tt.wantErr {
				t.Fatalf("Transaction.Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			re := RecurringExpense{Amount: decimal.NewFromInt(10), Currency: "CNY", DayOfMonth: 1, Note: tt.note}
			if err := re.Validate(); (err != nil) != tt.wantErr {
				t.Fatalf("RecurringExpense.Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestRecurringExpenseValidate(t *testing.T) {
	base := RecurringExpense{Amount: decimal.NewFromInt(100), Currency: "CNY", DayOfMonth: 31}
	if err := base.Validate(); err != nil {
		t.Fatalf("day 31 should be valid, got %v", err)
	}
	for _, day := range []int{0, 32, -1} {
		re := base
		re.DayOfMonth = day
		if err := re.Validate(); !errors.Is(err, ErrInvalidDayOfMonth) {
			t.Fatalf("day %d expected ErrInvalidDayOfMonth, got %v", day, err)
		}
	}
	re := base
	re.Amount = decimal.Zero
	if err := re.Validate(); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount, got %v", err)
	}
}

func TestTagRefDisplay(t *testing.T) {
	food := Tag{ID: 1, Name: "Food", Type: Expense, Icon: "food", Color: "#F44336"}
	if got := Resolved(food).Display(); got != food {
		t.Fatalf("resolved display = %+v", got)
	}
	got := Missing.Display()
	if got.ID != OtherTagID || got.Name != OtherTagName || got.Color != OtherTagColor || got.Icon != OtherTagIcon {
		t.Fatalf("missing display = %+v", got)
	}
	if _, ok := Missing.Tag(); ok {
		t.Fatalf("Missing must not resolve")
	}
}

func TestErrorClassification(t *testing.T) {
	err := &StorageError{Op: "insert transaction", Err: errors.New("disk full")}
	if !IsStorage(err) || IsValidation(err) {
		t.Fatalf("storage error misclassified")
	}
	if NewStorageError("noop", nil) != nil {
		t.Fatalf("nil error must stay nil")
	}
	wrapped := errors.Join(errors.New("ctx"), ErrNotFound)
	if !IsNotFound(wrapped) {
		t.Fatalf("expected not found")
	}
}

func TestDateJSON(t *testing.T) {
	d := NewDate(2024, 2, 29)
	b, err := d.MarshalJSON()
	if err != nil || string(b) != `"2024-02-29"` {
		t.Fatalf("marshal = %s, %v", b, err)
	}
	var back Date
	if err := back.UnmarshalJSON(b); err != nil || back != d {
		t.Fatalf("unmarshal = %s, %v", back, err)
	}
}
