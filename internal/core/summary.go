package core

import "time"

// CategorySummary aggregates spend for one expense category.
type CategorySummary struct {
	Category string
	Count    int64
	Total    Money
}

// ExpenseSummary reports per-category spend over a date range.
type ExpenseSummary struct {
	StartDate  time.Time
	EndDate    time.Time
	Categories []CategorySummary
}
