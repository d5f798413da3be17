package core

import "testing"

func TestSummarizeByType(t *testing.T) {
	groups := []TypeAggregate{
		{Type: TypeIncome, TotalMillis: 2500000, Count: 3},
		{Type: TypeExpense, TotalMillis: 999500, Count: 7},
	}
	s := SummarizeByType(groups)
	if s.TotalIncomeMillis != 2500000 {
		t.Fatalf("income = %d", s.TotalIncomeMillis)
	}
	if s.TotalExpenseMillis != 999500 {
		t.Fatalf("expense = %d", s.TotalExpenseMillis)
	}
	if s.BalanceMillis != 1500500 {
		t.Fatalf("balance = %d", s.BalanceMillis)
	}
	if s.TransactionCount != 10 {
		t.Fatalf("count = %d", s.TransactionCount)
	}
}

func TestSummarizeMissingGroups(t *testing.T) {
	s := SummarizeByType(nil)
	if s.TotalIncomeMillis != 0 || s.TotalExpenseMillis != 0 || s.BalanceMillis != 0 || s.TransactionCount != 0 {
		t.Fatalf("empty summary not zero: %+v", s)
	}

	s = SummarizeByType([]TypeAggregate{{Type: TypeExpense, TotalMillis: 100, Count: 1}})
	if s.TotalIncomeMillis != 0 {
		t.Fatalf("missing income group should be 0, got %d", s.TotalIncomeMillis)
	}
	if s.BalanceMillis != -100 {
		t.Fatalf("balance = %d, want -100", s.BalanceMillis)
	}
}

// Summation of many 3-decimal amounts must be exact. 1001 income records
// of 0.003 sum to exactly 3.003, which binary floats cannot represent.
func TestSummaryExactness(t *testing.T) {
	var total int64
	count := int64(0)
	for i := 0; i < 1001; i++ {
		total += 3 // 0.003 in millis
		count++
	}
	s := SummarizeByType([]TypeAggregate{{Type: TypeIncome, TotalMillis: total, Count: count}})
	if s.TotalIncomeMillis != 3003 {
		t.Fatalf("income = %d, want 3003", s.TotalIncomeMillis)
	}
	if FormatMillis(s.TotalIncomeMillis) != "3.003" {
		t.Fatalf("formatted = %q", FormatMillis(s.TotalIncomeMillis))
	}
}
