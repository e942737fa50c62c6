package core

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestDateValidate(t *testing.T) {
	cases := []struct {
		d  Date
		ok bool
	}{
		{NewDate(2025, 1, 1), true},
		{NewDate(2025, 12, 31), true},
		{Date{Time: time.Time{}}, false},
	}
	for i, tc := range cases {
		err := tc.d.Validate()
		if tc.ok && err != nil {
			t.Fatalf("case %d expected ok, got %v", i, err)
		}
		if !tc.ok && err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestParseDate(t *testing.T) {
	cases := []struct {
		in   string
		want Date
		ok   bool
	}{
		{"2024-01-15", NewDate(2024, 1, 15), true},
		{"2024-01-15T10:30:00.000Z", NewDate(2024, 1, 15), true},
		{" 2024-02-29 ", NewDate(2024, 2, 29), true},
		{"15/01/2024", Date{}, false},
	}
	for i, tc := range cases {
		got, err := ParseDate(tc.in)
		if tc.ok {
			if err != nil || !got.Equal(tc.want.Time) {
				t.Fatalf("case %d expected %s, got %s (err=%v)", i, tc.want, got, err)
			}
		} else if err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestTransactionJSON(t *testing.T) {
	in := `{"id":"a","amount":12.5,"description":"Lunch","category":"Food","date":"2024-01-15","type":"expense"}`
	var tx Transaction
	if err := json.Unmarshal([]byte(in), &tx); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if tx.Amount.Cents != 1250 || tx.Type != Expense || !tx.Date.Equal(NewDate(2024, 1, 15).Time) {
		t.Fatalf("unexpected transaction %+v", tx)
	}
	out, err := json.Marshal(tx)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(out) != in {
		t.Fatalf("expected %s, got %s", in, out)
	}
}

func TestBudgetOptionalEndDate(t *testing.T) {
	b := Budget{ID: "b", Name: "Food", Amount: Cents(20000), Period: Monthly, StartDate: NewDate(2024, 1, 1)}
	out, err := json.Marshal(b)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if strings.Contains(string(out), "endDate") {
		t.Fatalf("open ended budget should omit endDate: %s", out)
	}
	var back Budget
	if err := json.Unmarshal(out, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !back.EndDate.IsZero() {
		t.Fatalf("expected zero end date, got %s", back.EndDate)
	}
}

func TestTransactionValidate(t *testing.T) {
	good := Transaction{
		Date:        NewDate(2025, 1, 1),
		Description: "ok",
		Amount:      Money{Cents: 0},
		Category:    "Food",
		Type:        Expense,
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	bads := []Transaction{
		{Date: Date{}, Description: "a", Amount: Cents(1), Category: "c", Type: Income},
		{Date: NewDate(2025, 1, 1), Description: " ", Amount: Cents(1), Category: "c", Type: Income},
		{Date: NewDate(2025, 1, 1), Description: strings.Repeat("x", 201), Amount: Cents(1), Category: "c", Type: Income},
		{Date: NewDate(2025, 1, 1), Description: "a", Amount: Cents(-1), Category: "c", Type: Income},
		{Date: NewDate(2025, 1, 1), Description: "a", Amount: Cents(1), Category: "", Type: Income},
		{Date: NewDate(2025, 1, 1), Description: "a", Amount: Cents(1), Category: "c", Type: "transfer"},
	}
	for i, tx := range bads {
		err := tx.Validate()
		if err == nil {
			t.Fatalf("case %d expected error", i)
		}
		if !IsValidationError(err) {
			t.Fatalf("case %d expected validation error, got %v", i, err)
		}
	}
}

func TestBudgetValidate(t *testing.T) {
	base := Budget{Name: "Food", Amount: Cents(100), Period: Monthly, StartDate: NewDate(2024, 1, 1)}
	if err := base.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	cases := []struct {
		mut  func(*Budget)
		want error
	}{
		{func(b *Budget) { b.Amount = Cents(0) }, ErrInvalidAmount},
		{func(b *Budget) { b.Period = "weekly" }, ErrInvalidPeriod},
		{func(b *Budget) { b.EndDate = NewDate(2023, 12, 31) }, ErrInvalidDateRange},
		{func(b *Budget) { b.Name = "" }, ErrEmptyName},
	}
	for i, tc := range cases {
		b := base
		tc.mut(&b)
		if err := b.Validate(); !errors.Is(err, tc.want) {
			t.Fatalf("case %d expected %v, got %v", i, tc.want, err)
		}
	}
}

func TestGoalValidate(t *testing.T) {
	g := Goal{Name: "Car", TargetAmount: Cents(100), StartDate: NewDate(2024, 1, 1), Priority: PriorityHigh}
	if err := g.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	g.Priority = "urgent"
	if err := g.Validate(); !errors.Is(err, ErrInvalidPriority) {
		t.Fatalf("expected invalid priority, got %v", err)
	}
}

func TestPreferencesValidate(t *testing.T) {
	if err := (Preferences{ThemeMode: ThemeSystem, ColorScheme: SchemeTeal}).Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if err := (Preferences{ThemeMode: "sepia", ColorScheme: SchemeBlue}).Validate(); !errors.Is(err, ErrInvalidTheme) {
		t.Fatalf("expected invalid theme, got %v", err)
	}
	if err := (Preferences{ThemeMode: ThemeDark, ColorScheme: "red"}).Validate(); !errors.Is(err, ErrInvalidScheme) {
		t.Fatalf("expected invalid scheme, got %v", err)
	}
}
