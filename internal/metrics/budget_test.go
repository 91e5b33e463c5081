package metrics

import (
	"testing"
	"time"

	"finsight/internal/models"
)

func budgetFixture(category string, budgetType models.BudgetType, limit float64) models.BudgetCategory {
	b := models.BudgetCategory{
		Category: category,
		Type:     budgetType,
		Limit:    limit,
	}
	b.ID = "budget-" + category
	return b
}

func monthTx(date, category string, txType models.TransactionType, amount float64) models.Transaction {
	return models.Transaction{
		Type:          txType,
		NumericAmount: amount,
		Currency:      "USD",
		Date:          date,
		Category:      category,
	}
}

func TestComputeSpent(t *testing.T) {
	asOf := time.Date(2025, 8, 20, 0, 0, 0, 0, time.UTC)

	t.Run("current_month_only", func(t *testing.T) {
		budgets := []models.BudgetCategory{budgetFixture("Food", models.BudgetTypeExpense, 500)}
		txs := []models.Transaction{
			monthTx("2025-08-02", "Food", models.TransactionTypeDebit, 100),
			monthTx("2025-08-15", "Food", models.TransactionTypeDebit, 50),
			monthTx("2025-09-01", "Food", models.TransactionTypeDebit, 1000), // next month, excluded
		}

		out, err := ComputeSpent(budgets, txs, "USD", testRates(), asOf, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if out[0].Spent != 150 {
			t.Errorf("Spent = %v, want 150", out[0].Spent)
		}
	})

	t.Run("refunds_reduce_spend", func(t *testing.T) {
		budgets := []models.BudgetCategory{budgetFixture("Food", models.BudgetTypeExpense, 500)}
		txs := []models.Transaction{
			monthTx("2025-08-02", "Food", models.TransactionTypeDebit, 200),
			monthTx("2025-08-10", "Food", models.TransactionTypeCredit, 60),
		}

		out, err := ComputeSpent(budgets, txs, "USD", testRates(), asOf, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if out[0].Spent != 140 {
			t.Errorf("Spent = %v, want 140", out[0].Spent)
		}
	})

	t.Run("spent_clamped_at_zero", func(t *testing.T) {
		budgets := []models.BudgetCategory{budgetFixture("Food", models.BudgetTypeExpense, 500)}
		txs := []models.Transaction{
			monthTx("2025-08-02", "Food", models.TransactionTypeDebit, 50),
			monthTx("2025-08-10", "Food", models.TransactionTypeCredit, 400), // oversized refund
		}

		out, err := ComputeSpent(budgets, txs, "USD", testRates(), asOf, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if out[0].Spent != 0 {
			t.Errorf("Spent = %v, want 0 (clamped)", out[0].Spent)
		}
	})

	t.Run("income_budget_mirrors_sign", func(t *testing.T) {
		budgets := []models.BudgetCategory{budgetFixture("Salary", models.BudgetTypeIncome, 4000)}
		txs := []models.Transaction{
			monthTx("2025-08-01", "Salary", models.TransactionTypeCredit, 3000),
			monthTx("2025-08-05", "Salary", models.TransactionTypeDebit, 500), // clawback
		}

		out, err := ComputeSpent(budgets, txs, "USD", testRates(), asOf, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if out[0].Spent != 2500 {
			t.Errorf("Spent = %v, want 2500", out[0].Spent)
		}
	})

	t.Run("exact_match_no_substring", func(t *testing.T) {
		budgets := []models.BudgetCategory{budgetFixture("Car", models.BudgetTypeExpense, 300)}
		txs := []models.Transaction{
			monthTx("2025-08-02", "Career", models.TransactionTypeDebit, 250),
		}

		out, err := ComputeSpent(budgets, txs, "USD", testRates(), asOf, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if out[0].Spent != 0 {
			t.Errorf("Spent = %v, want 0 (Career must not match Car)", out[0].Spent)
		}
	})

	t.Run("category_map_expands_matches", func(t *testing.T) {
		budgets := []models.BudgetCategory{budgetFixture("Food", models.BudgetTypeExpense, 500)}
		txs := []models.Transaction{
			monthTx("2025-08-02", "Groceries", models.TransactionTypeDebit, 80),
			monthTx("2025-08-03", "Restaurants", models.TransactionTypeDebit, 40),
			monthTx("2025-08-04", "Gas", models.TransactionTypeDebit, 30),
		}
		categories := CategoryMap{"Food": {"Groceries", "Restaurants"}}

		out, err := ComputeSpent(budgets, txs, "USD", testRates(), asOf, categories)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if out[0].Spent != 120 {
			t.Errorf("Spent = %v, want 120", out[0].Spent)
		}
	})

	t.Run("transfers_and_adjustments_excluded", func(t *testing.T) {
		budgets := []models.BudgetCategory{budgetFixture("Transfer", models.BudgetTypeExpense, 100)}
		txs := []models.Transaction{
			monthTx("2025-08-02", "Transfer", models.TransactionTypeDebit, 500),
			monthTx("2025-08-03", "Adjustment", models.TransactionTypeDebit, 200),
		}

		out, err := ComputeSpent(budgets, txs, "USD", testRates(), asOf, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if out[0].Spent != 0 {
			t.Errorf("Spent = %v, want 0 (bookkeeping categories excluded)", out[0].Spent)
		}
	})

	t.Run("normalizes_currencies", func(t *testing.T) {
		budgets := []models.BudgetCategory{budgetFixture("Food", models.BudgetTypeExpense, 500)}
		txs := []models.Transaction{
			{Type: models.TransactionTypeDebit, NumericAmount: 85, Currency: "EUR", Date: "2025-08-02", Category: "Food"},
		}

		out, err := ComputeSpent(budgets, txs, "USD", testRates(), asOf, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if RoundCents(out[0].Spent) != 100 {
			t.Errorf("Spent = %v, want 100 (85 EUR at 0.85)", out[0].Spent)
		}
	})

	t.Run("unknown_currency_fails_loudly", func(t *testing.T) {
		budgets := []models.BudgetCategory{budgetFixture("Food", models.BudgetTypeExpense, 500)}
		txs := []models.Transaction{
			{Type: models.TransactionTypeDebit, NumericAmount: 10, Currency: "XXX", Date: "2025-08-02", Category: "Food"},
		}

		if _, err := ComputeSpent(budgets, txs, "USD", testRates(), asOf, nil); err == nil {
			t.Fatal("expected error for unknown currency, got nil")
		}
	})

	t.Run("does_not_mutate_inputs", func(t *testing.T) {
		budgets := []models.BudgetCategory{budgetFixture("Food", models.BudgetTypeExpense, 500)}
		txs := []models.Transaction{
			monthTx("2025-08-02", "Food", models.TransactionTypeDebit, 100),
		}

		out, err := ComputeSpent(budgets, txs, "USD", testRates(), asOf, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if budgets[0].Spent != 0 {
			t.Errorf("input budget mutated: Spent = %v", budgets[0].Spent)
		}
		if out[0].Spent != 100 {
			t.Errorf("output Spent = %v, want 100", out[0].Spent)
		}

		// Idempotent: a second pass over the same inputs gives the same result.
		again, err := ComputeSpent(budgets, txs, "USD", testRates(), asOf, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if again[0].Spent != out[0].Spent {
			t.Errorf("not idempotent: %v vs %v", again[0].Spent, out[0].Spent)
		}
	})
}
