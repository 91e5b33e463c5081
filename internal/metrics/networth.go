package metrics

import "finsight/internal/models"

// NetWorth sums account balances (signed, so credit-account debt
// reduces the total) and investment current values, normalized to
// baseCurrency. Empty inputs yield 0.
func NetWorth(
	accounts []models.Account,
	investments []models.Investment,
	baseCurrency string,
	rates Rates,
) (float64, error) {
	var total float64

	for i := range accounts {
		amount, err := Convert(accounts[i].Balance, accounts[i].Currency, baseCurrency, rates)
		if err != nil {
			return 0, err
		}
		total += amount
	}

	for i := range investments {
		amount, err := Convert(investments[i].CurrentValue, investments[i].Currency, baseCurrency, rates)
		if err != nil {
			return 0, err
		}
		total += amount
	}

	return total, nil
}
