package metrics

import (
	"math"
	"time"

	"finsight/internal/models"
)

// Weights and breakpoints for the health score. Fixed heuristics, not
// tunable at runtime.
const (
	liquidityMax    = 30.0
	savingsRateMax  = 40.0
	debtRatioMax    = 20.0
	diversityMax    = 10.0
	targetRunway    = 6.0  // months of cash runway for full liquidity score
	targetSavings   = 0.40 // savings rate for full savings score
	targetDiversity = 4.0  // distinct asset classes for full diversity score

	newAccountTxThreshold = 5
)

// HealthDetails breaks the overall score into its four sub-scores plus
// the underlying ratios they were derived from.
type HealthDetails struct {
	LiquidityScore   float64 `json:"liquidity_score"`
	SavingsRateScore float64 `json:"savings_rate_score"`
	DebtRatioScore   float64 `json:"debt_ratio_score"`
	DiversityScore   float64 `json:"diversity_score"`

	MonthsRunway    float64 `json:"months_runway"`
	SavingsRate     float64 `json:"savings_rate"`
	DebtRatio       float64 `json:"debt_ratio"`
	AssetClassCount int     `json:"asset_class_count"`
}

// HealthScore is a 0-100 financial health rating. IsNew marks accounts
// too empty to judge: callers should render a pending state instead of
// a score of zero that looks like a verdict.
type HealthScore struct {
	Score   int           `json:"score"`
	IsNew   bool          `json:"is_new"`
	Details HealthDetails `json:"details"`
}

// ComputeHealthScore combines liquidity runway, trailing-30-day savings
// rate, debt ratio, and asset-class diversity into a weighted score.
// Each sub-score is clamped to its own maximum before summing, so no
// component can go negative and drag the total below zero.
//
// assetsByType holds per-account-type totals already normalized to
// baseCurrency (debt types carry negative values). Transaction amounts
// are normalized here.
func ComputeHealthScore(
	assetsByType map[models.AccountType]float64,
	transactions []models.Transaction,
	baseCurrency string,
	rates Rates,
	asOf time.Time,
) (*HealthScore, error) {
	var totalAssets, totalDebt, cash float64
	classCount := 0
	for accountType, value := range assetsByType {
		if accountType.IsDebt() {
			if value < 0 {
				totalDebt += -value
			}
			continue
		}
		if value > 0 {
			totalAssets += value
			classCount++
		}
		if accountType == models.AccountTypeChecking || accountType == models.AccountTypeSavings {
			if value > 0 {
				cash += value
			}
		}
	}

	if len(transactions) < newAccountTxThreshold && totalAssets == 0 {
		return &HealthScore{Score: 0, IsNew: true}, nil
	}

	income30, expense30, err := trailing30Day(transactions, baseCurrency, rates, asOf)
	if err != nil {
		return nil, err
	}

	// Liquidity: months of runway at the trailing burn rate, scored
	// against a 6-month target. Divisor floored at 1 so an account with
	// no recorded spending still gets a finite runway.
	burn := expense30
	if burn < 1 {
		burn = 1
	}
	monthsRunway := cash / burn
	liquidity := math.Min(liquidityMax, monthsRunway/targetRunway*liquidityMax)

	// Savings rate over the trailing 30 days; 0 when there is no income.
	var savingsRate float64
	if income30 > 0 {
		savingsRate = (income30 - expense30) / income30
	}
	savings := math.Min(savingsRateMax, math.Max(0, savingsRate/targetSavings*savingsRateMax))

	// Debt ratio: 0 when there are no assets.
	var debtRatio float64
	if totalAssets > 0 {
		debtRatio = totalDebt / totalAssets
	}
	debtScore := math.Min(debtRatioMax, math.Max(0, debtRatioMax-debtRatio*debtRatioMax))

	diversity := math.Min(diversityMax, float64(classCount)/targetDiversity*diversityMax)

	total := int(math.Round(liquidity + savings + debtScore + diversity))

	return &HealthScore{
		Score: total,
		Details: HealthDetails{
			LiquidityScore:   liquidity,
			SavingsRateScore: savings,
			DebtRatioScore:   debtScore,
			DiversityScore:   diversity,
			MonthsRunway:     monthsRunway,
			SavingsRate:      savingsRate,
			DebtRatio:        debtRatio,
			AssetClassCount:  classCount,
		},
	}, nil
}

// trailing30Day sums normalized credit and debit amounts for the 30
// calendar days ending at asOf. Transfer/adjustment bookkeeping entries
// are excluded so internal moves don't inflate income or burn.
func trailing30Day(transactions []models.Transaction, baseCurrency string, rates Rates, asOf time.Time) (income, expense float64, err error) {
	cutoff := asOf.AddDate(0, 0, -30).Format("2006-01-02")
	end := asOf.Format("2006-01-02")

	for i := range transactions {
		tx := &transactions[i]
		if tx.ExcludedFromRollups() {
			continue
		}
		if tx.Date <= cutoff || tx.Date > end {
			continue
		}

		amount, convErr := Convert(tx.NumericAmount, tx.Currency, baseCurrency, rates)
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
