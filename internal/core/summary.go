package core

// TypeAggregate is one group of the by-type aggregation: a transaction
// type with the exact sum of its amounts and the number of records.
type TypeAggregate struct {
	Type        TransactionType
	TotalMillis int64
	Count       int64
}

// Summary is the income/expense/balance rollup for a filtered set.
type Summary struct {
	TotalIncomeMillis  int64
	TotalExpenseMillis int64
	BalanceMillis      int64
	TransactionCount   int64
}

// SummarizeByType folds per-type aggregates into a Summary. A missing
// group contributes zero; the count is the sum of all group counts.
// All arithmetic is integer millis, so the totals carry no rounding drift.
func SummarizeByType(groups []TypeAggregate) Summary {
	var s Summary
	for _, g := range groups {
		switch g.Type {
		case TypeIncome:
			s.TotalIncomeMillis += g.TotalMillis
		case TypeExpense:
			s.TotalExpenseMillis += g.TotalMillis
		}
		s.TransactionCount += g.Count
	}
	s.BalanceMillis = s.TotalIncomeMillis - s.TotalExpenseMillis
	return s
}
