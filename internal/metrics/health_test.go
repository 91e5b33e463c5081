package metrics

import (
	"testing"
	"time"

	"finsight/internal/models"
)

func healthTx(date string, txType models.TransactionType, amount float64) models.Transaction {
	return models.Transaction{
		Type:          txType,
		NumericAmount: amount,
		Currency:      "USD",
		Date:          date,
		Category:      "General",
	}
}

func TestComputeHealthScore(t *testing.T) {
	asOf := time.Date(2025, 8, 20, 0, 0, 0, 0, time.UTC)

	t.Run("new_account", func(t *testing.T) {
		score, err := ComputeHealthScore(map[models.AccountType]float64{}, nil, "USD", testRates(), asOf)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !score.IsNew {
			t.Error("expected IsNew for empty account")
		}
		if score.Score != 0 {
			t.Errorf("Score = %d, want 0", score.Score)
		}
	})

	t.Run("few_transactions_with_assets_is_judged", func(t *testing.T) {
		assets := map[models.AccountType]float64{models.AccountTypeChecking: 10000}
		txs := []models.Transaction{healthTx("2025-08-10", models.TransactionTypeDebit, 100)}

		score, err := ComputeHealthScore(assets, txs, "USD", testRates(), asOf)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if score.IsNew {
			t.Error("account with assets must not be marked new")
		}
	})

	t.Run("healthy_profile", func(t *testing.T) {
		assets := map[models.AccountType]float64{
			models.AccountTypeChecking:   20000,
			models.AccountTypeSavings:    30000,
			models.AccountTypeInvestment: 40000,
			models.AccountTypeCrypto:     5000,
		}
		txs := []models.Transaction{
			healthTx("2025-08-01", models.TransactionTypeCredit, 6000),
			healthTx("2025-08-05", models.TransactionTypeDebit, 1500),
			healthTx("2025-08-10", models.TransactionTypeDebit, 500),
			healthTx("2025-08-12", models.TransactionTypeDebit, 300),
			healthTx("2025-08-15", models.TransactionTypeDebit, 200),
		}

		score, err := ComputeHealthScore(assets, txs, "USD", testRates(), asOf)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		// Runway: 50000 cash / 2500 burn = 20 months, capped at 30pts.
		// Savings rate: (6000-2500)/6000 = 0.583, capped at 40pts.
		// No debt: 20pts. Four asset classes: 10pts.
		if score.Score != 100 {
			t.Errorf("Score = %d, want 100", score.Score)
		}
		if score.Details.LiquidityScore != 30 {
			t.Errorf("LiquidityScore = %v, want 30", score.Details.LiquidityScore)
		}
		if score.Details.DiversityScore != 10 {
			t.Errorf("DiversityScore = %v, want 10", score.Details.DiversityScore)
		}
	})

	t.Run("no_income_zero_savings_rate", func(t *testing.T) {
		assets := map[models.AccountType]float64{models.AccountTypeChecking: 1000}
		txs := []models.Transaction{
			healthTx("2025-08-01", models.TransactionTypeDebit, 100),
			healthTx("2025-08-02", models.TransactionTypeDebit, 100),
			healthTx("2025-08-03", models.TransactionTypeDebit, 100),
			healthTx("2025-08-04", models.TransactionTypeDebit, 100),
			healthTx("2025-08-05", models.TransactionTypeDebit, 100),
		}

		score, err := ComputeHealthScore(assets, txs, "USD", testRates(), asOf)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if score.Details.SavingsRate != 0 {
			t.Errorf("SavingsRate = %v, want 0 (no income, no NaN)", score.Details.SavingsRate)
		}
		if score.Details.SavingsRateScore != 0 {
			t.Errorf("SavingsRateScore = %v, want 0", score.Details.SavingsRateScore)
		}
	})

	t.Run("heavy_debt_floors_at_zero", func(t *testing.T) {
		assets := map[models.AccountType]float64{
			models.AccountTypeChecking: 1000,
			models.AccountTypeCredit:   -5000,
		}
		txs := []models.Transaction{
			healthTx("2025-08-01", models.TransactionTypeCredit, 100),
			healthTx("2025-08-02", models.TransactionTypeDebit, 900),
			healthTx("2025-08-03", models.TransactionTypeDebit, 900),
			healthTx("2025-08-04", models.TransactionTypeDebit, 900),
			healthTx("2025-08-05", models.TransactionTypeDebit, 900),
		}

		score, err := ComputeHealthScore(assets, txs, "USD", testRates(), asOf)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		// Debt ratio 5:1 would be -80 unclamped; each sub-score floors at 0.
		if score.Details.DebtRatioScore != 0 {
			t.Errorf("DebtRatioScore = %v, want 0", score.Details.DebtRatioScore)
		}
		if score.Score < 0 || score.Score > 100 {
			t.Errorf("Score = %d, out of [0,100]", score.Score)
		}
	})

	t.Run("bounds_hold_for_arbitrary_inputs", func(t *testing.T) {
		profiles := []map[models.AccountType]float64{
			{models.AccountTypeChecking: 1e9},
			{models.AccountTypeCredit: -1e9, models.AccountTypeSavings: 1},
			{models.AccountTypeCrypto: 0.01},
		}
		txs := []models.Transaction{
			healthTx("2025-08-01", models.TransactionTypeCredit, 1e8),
			healthTx("2025-08-02", models.TransactionTypeDebit, 1e9),
			healthTx("2025-08-03", models.TransactionTypeDebit, 0.01),
			healthTx("2025-08-04", models.TransactionTypeCredit, 0),
			healthTx("2025-08-05", models.TransactionTypeDebit, 7),
		}
		for i, assets := range profiles {
			score, err := ComputeHealthScore(assets, txs, "USD", testRates(), asOf)
			if err != nil {
				t.Fatalf("profile %d: unexpected error: %v", i, err)
			}
			if score.Score < 0 || score.Score > 100 {
				t.Errorf("profile %d: Score = %d, out of [0,100]", i, score.Score)
			}
		}
	})

	t.Run("transfers_excluded_from_burn", func(t *testing.T) {
		assets := map[models.AccountType]float64{models.AccountTypeChecking: 6000}
		txs := []models.Transaction{
			healthTx("2025-08-01", models.TransactionTypeDebit, 1000),
			{Type: models.TransactionTypeDebit, NumericAmount: 50000, Currency: "USD", Date: "2025-08-02", Category: models.CategoryTransfer},
			healthTx("2025-08-03", models.TransactionTypeCredit, 2000),
			healthTx("2025-08-04", models.TransactionTypeDebit, 10),
			healthTx("2025-08-05", models.TransactionTypeDebit, 10),
		}

		score, err := ComputeHealthScore(assets, txs, "USD", testRates(), asOf)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		// Burn is 1020, not 51020: runway 6000/1020 ≈ 5.9 months.
		if score.Details.MonthsRunway < 5 || score.Details.MonthsRunway > 6 {
			t.Errorf("MonthsRunway = %v, want ~5.9", score.Details.MonthsRunway)
		}
	})
}
