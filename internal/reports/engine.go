// Package reports builds point-in-time metric snapshots for a date
// range by re-running the aggregation core over a filtered transaction
// window and the immediately preceding window of equal length.
//
// The engine is deterministic: given identical inputs, two generated
// snapshots are identical. It performs no I/O; callers supply the
// record sets and the rate table.
package reports

import (
	"fmt"
	"math"
	"time"

	"finsight/internal/metrics"
	"finsight/internal/models"
)

// Scope selects which slice of the user's finances a report covers.
type Scope string

const (
	ScopePersonal Scope = "personal"
	ScopeBusiness Scope = "business"
)

// Period names a reporting window relative to the as-of date.
type Period string

const (
	PeriodMonth   Period = "month"
	PeriodQuarter Period = "quarter"
	PeriodYear    Period = "year"
	PeriodYTD     Period = "ytd"
	PeriodCustom  Period = "custom"
)

// Params configures a snapshot generation run.
type Params struct {
	Scope        Scope
	Period       Period
	BaseCurrency string
	CustomRange  *metrics.DateWindow // required when Period is custom
	AsOf         time.Time
}

// Inputs carries the record sets a snapshot is derived from. The
// persistence layer loads and sanitizes these before calling Generate.
type Inputs struct {
	Accounts     []models.Account
	Transactions []models.Transaction
	Budgets      []models.BudgetCategory
	Investments  []models.Investment
	Entities     []models.BusinessEntity
	Rates        metrics.Rates
	Categories   metrics.CategoryMap
}

// MetricValue is a computed figure plus its presentation form and its
// change versus the previous window. Delta is nil when the previous
// window had a zero base, since a percentage against zero is undefined.
type MetricValue struct {
	Value      float64  `json:"value"`
	Formatted  string   `json:"formatted"`
	Currency   string   `json:"currency"`
	Delta      *float64 `json:"delta,omitempty"`
	DeltaValue *float64 `json:"delta_value,omitempty"`
}

// Snapshot is the immutable result of a report run.
type Snapshot struct {
	Scope          Scope              `json:"scope"`
	Period         Period             `json:"period"`
	Window         metrics.DateWindow `json:"window"`
	PreviousWindow metrics.DateWindow `json:"previous_window"`
	BaseCurrency   string             `json:"base_currency"`

	TotalIncome   MetricValue `json:"total_income"`
	TotalExpenses MetricValue `json:"total_expenses"`
	NetCashFlow   MetricValue `json:"net_cash_flow"`
	NetWorth      MetricValue `json:"net_worth"`

	Budgets []models.BudgetCategory `json:"budgets"`

	// Business scope only.
	Businesses []models.BusinessEntity `json:"businesses,omitempty"`
	Warnings   []string                `json:"warnings,omitempty"`
}

// WarningCheck inspects the window's transactions for data-quality
// problems and returns zero or more human-readable warnings. Checks are
// business policy and pluggable; see DefaultChecks.
type WarningCheck func(transactions []models.Transaction, rates metrics.Rates) []string

// Engine generates snapshots. A zero-value Engine uses DefaultChecks.
type Engine struct {
	checks []WarningCheck
}

// NewEngine creates an Engine with the given warning checks; nil means
// DefaultChecks.
func NewEngine(checks []WarningCheck) *Engine {
	if checks == nil {
		checks = DefaultChecks()
	}
	return &Engine{checks: checks}
}

// Generate resolves the period into a concrete window plus its
// predecessor, re-runs the aggregators over each, and packages the
// results with deltas.
func (e *Engine) Generate(params Params, in Inputs) (*Snapshot, error) {
	window, previous, err := ResolveWindows(params.Period, params.AsOf, params.CustomRange)
	if err != nil {
		return nil, err
	}

	curTx := filterWindow(in.Transactions, window)
	prevTx := filterWindow(in.Transactions, previous)

	curIncome, curExpense, err := cashFlow(curTx, params.BaseCurrency, in.Rates)
	if err != nil {
		return nil, err
	}
	prevIncome, prevExpense, err := cashFlow(prevTx, params.BaseCurrency, in.Rates)
	if err != nil {
		return nil, err
	}

	windowEnd, err := time.Parse("2006-01-02", window.End)
	if err != nil {
		return nil, fmt.Errorf("invalid window end %q: %w", window.End, err)
	}
	budgets, err := metrics.ComputeSpent(in.Budgets, curTx, params.BaseCurrency, in.Rates, windowEnd, in.Categories)
	if err != nil {
		return nil, err
	}

	netWorth, err := metrics.NetWorth(in.Accounts, in.Investments, params.BaseCurrency, in.Rates)
	if err != nil {
		return nil, err
	}

	snapshot := &Snapshot{
		Scope:          params.Scope,
		Period:         params.Period,
		Window:         window,
		PreviousWindow: previous,
		BaseCurrency:   params.BaseCurrency,
		TotalIncome:    metricValue(curIncome, prevIncome, params.BaseCurrency),
		TotalExpenses:  metricValue(curExpense, prevExpense, params.BaseCurrency),
		NetCashFlow:    metricValue(curIncome-curExpense, prevIncome-prevExpense, params.BaseCurrency),
		// Net worth is point-in-time, not window-scoped, so it carries no delta.
		NetWorth: MetricValue{
			Value:     netWorth,
			Formatted: metrics.FormatAmount(netWorth, params.BaseCurrency),
			Currency:  params.BaseCurrency,
		},
		Budgets: budgets,
	}

	if params.Scope == ScopeBusiness {
		if err := e.addBusinessBreakdown(snapshot, params, in, window, previous); err != nil {
			return nil, err
		}
	}

	return snapshot, nil
}

// addBusinessBreakdown fills per-entity P&L for the window, the
// period-over-period profit trend, and data-quality warnings.
func (e *Engine) addBusinessBreakdown(snapshot *Snapshot, params Params, in Inputs, window, previous metrics.DateWindow) error {
	current, err := metrics.ComputeEntityMetrics(in.Entities, in.Transactions, params.BaseCurrency, in.Rates, &window)
	if err != nil {
		return err
	}
	prior, err := metrics.ComputeEntityMetrics(in.Entities, in.Transactions, params.BaseCurrency, in.Rates, &previous)
	if err != nil {
		return err
	}

	for i := range current {
		prevProfit := prior[i].Metrics.Profit
		if prevProfit != 0 {
			current[i].Metrics.Trend = (current[i].Metrics.Profit - prevProfit) / math.Abs(prevProfit) * 100
		}
	}
	snapshot.Businesses = current

	warnings := []string{}
	windowTx := filterWindow(in.Transactions, window)
	for _, check := range e.checks {
		warnings = append(warnings, check(windowTx, in.Rates)...)
	}
	snapshot.Warnings = warnings
	return nil
}

// cashFlow sums normalized income and expense magnitudes, skipping
// transfer/adjustment bookkeeping entries.
func cashFlow(transactions []models.Transaction, baseCurrency string, rates metrics.Rates) (income, expense float64, err error) {
	for i := range transactions {
		tx := &transactions[i]
		if tx.ExcludedFromRollups() {
			continue
		}
		amount, convErr := metrics.Convert(tx.NumericAmount, tx.Currency, baseCurrency, rates)
		if convErr != nil {
			return 0, 0, convErr
		}
		switch tx.Type {
		case models.TransactionTypeCredit:
			income += amount
		case models.TransactionTypeDebit:
			expense += amount
		}
	}
	return income, expense, nil
}

func filterWindow(transactions []models.Transaction, window metrics.DateWindow) []models.Transaction {
	out := make([]models.Transaction, 0, len(transactions))
	for i := range transactions {
		if window.Contains(transactions[i].Date) {
			out = append(out, transactions[i])
		}
	}
	return out
}

func metricValue(current, previous float64, currency string) MetricValue {
	mv := MetricValue{
		Value:     current,
		Formatted: metrics.FormatAmount(current, currency),
		Currency:  currency,
	}
	deltaValue := current - previous
	mv.DeltaValue = &deltaValue
	if previous != 0 {
		delta := (current - previous) / math.Abs(previous) * 100
		mv.Delta = &delta
	}
	return mv
}
