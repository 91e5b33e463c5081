package services

import (
	"errors"
	"time"

	"gorm.io/gorm"

	apperrors "finsight/internal/errors"
	"finsight/internal/models"
	"finsight/internal/pagination"
)

const isoDate = "2006-01-02"

// transactionService handles transaction-related business logic.
type transactionService struct {
	db             *gorm.DB
	accountService AccountServicer
}

// NewTransactionService creates a new TransactionServicer.
func NewTransactionService(db *gorm.DB, accountService AccountServicer) TransactionServicer {
	return &transactionService{
		db:             db,
		accountService: accountService,
	}
}

// CreateTransaction records a transaction and moves the account balance
// inside a single database transaction. Amounts are unsigned
// magnitudes; direction lives only in Type.
func (s *transactionService) CreateTransaction(userID string, in TransactionInput) (*models.Transaction, error) {
	if in.Amount < 0 {
		return nil, apperrors.ErrNegativeAmount
	}
	if in.AccountID == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "account ID is required")
	}
	if in.Type != models.TransactionTypeCredit && in.Type != models.TransactionTypeDebit {
		return nil, apperrors.ErrInvalidTransactionType
	}

	if in.Date == "" {
		in.Date = time.Now().Format(isoDate)
	} else if _, err := time.Parse(isoDate, in.Date); err != nil {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "date must be YYYY-MM-DD")
	}

	account, err := s.accountService.GetAccountByID(userID, in.AccountID)
	if err != nil {
		return nil, err
	}

	if in.Currency == "" {
		in.Currency = account.Currency
	}

	if in.BusinessID != nil {
		if err := s.checkBusinessOwnership(userID, *in.BusinessID); err != nil {
			return nil, err
		}
	}

	transaction := &models.Transaction{
		UserID:            userID,
		AccountID:         account.ID,
		BusinessID:        in.BusinessID,
		Type:              in.Type,
		NumericAmount:     in.Amount,
		Currency:          in.Currency,
		Date:              in.Date,
		Category:          in.Category,
		Merchant:          in.Merchant,
		Notes:             in.Notes,
		IsRecurring:       in.IsRecurring,
		RecurringInterval: in.RecurringInterval,
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(transaction).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return s.accountService.ApplyTransaction(tx, account, in.Type, in.Amount)
	})
	if err != nil {
		return nil, err
	}

	return transaction, nil
}

// GetUserTransactions retrieves a paginated, filtered list of the
// user's transactions, most recent date first.
func (s *transactionService) GetUserTransactions(userID string, page pagination.PageRequest, filter TransactionFilter) (*pagination.PageResponse[models.Transaction], error) {
	page.Defaults()

	base := s.applyFilter(s.db.Model(&models.Transaction{}).Where("user_id = ?", userID), filter)

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var transactions []models.Transaction
	if err := base.Scopes(pagination.Paginate(page)).
		Order("date DESC, created_at DESC").
		Find(&transactions).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(transactions, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// GetAccountTransactions retrieves transactions for a single account.
func (s *transactionService) GetAccountTransactions(userID, accountID string, page pagination.PageRequest, filter TransactionFilter) (*pagination.PageResponse[models.Transaction], error) {
	if _, err := s.accountService.GetAccountByID(userID, accountID); err != nil {
		return nil, err
	}
	filter.AccountID = &accountID
	return s.GetUserTransactions(userID, page, filter)
}

// GetTransactionByID retrieves a transaction by ID for a specific user.
func (s *transactionService) GetTransactionByID(userID, transactionID string) (*models.Transaction, error) {
	var transaction models.Transaction
	if err := s.db.Where("id = ? AND user_id = ?", transactionID, userID).First(&transaction).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrTransactionNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &transaction, nil
}

// UpdateTransaction applies field changes and keeps the account balance
// consistent by reversing the old effect and applying the new one.
func (s *transactionService) UpdateTransaction(userID, transactionID string, in TransactionUpdate) (*models.Transaction, error) {
	transaction, err := s.GetTransactionByID(userID, transactionID)
	if err != nil {
		return nil, err
	}

	newType := transaction.Type
	if in.Type != nil {
		if *in.Type != models.TransactionTypeCredit && *in.Type != models.TransactionTypeDebit {
			return nil, apperrors.ErrInvalidTransactionType
		}
		newType = *in.Type
	}
	newAmount := transaction.NumericAmount
	if in.Amount != nil {
		if *in.Amount < 0 {
			return nil, apperrors.ErrNegativeAmount
		}
		newAmount = *in.Amount
	}
	if in.Date != nil {
		if _, err := time.Parse(isoDate, *in.Date); err != nil {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "date must be YYYY-MM-DD")
		}
		transaction.Date = *in.Date
	}
	if in.Category != nil {
		transaction.Category = *in.Category
	}
	if in.Merchant != nil {
		transaction.Merchant = *in.Merchant
	}
	if in.Notes != nil {
		transaction.Notes = *in.Notes
	}
	if in.BusinessID != nil {
		if *in.BusinessID == "" {
			transaction.BusinessID = nil
		} else {
			if err := s.checkBusinessOwnership(userID, *in.BusinessID); err != nil {
				return nil, err
			}
			transaction.BusinessID = in.BusinessID
		}
	}

	account, err := s.accountService.GetAccountByID(userID, transaction.AccountID)
	if err != nil {
		return nil, err
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		// Reverse the old balance effect, then apply the new one.
		reversed := models.TransactionTypeDebit
		if transaction.Type == models.TransactionTypeDebit {
			reversed = models.TransactionTypeCredit
		}
		if err := s.accountService.ApplyTransaction(tx, account, reversed, transaction.NumericAmount); err != nil {
			return err
		}
		if err := s.accountService.ApplyTransaction(tx, account, newType, newAmount); err != nil {
			return err
		}

		transaction.Type = newType
		transaction.NumericAmount = newAmount
		if err := tx.Save(transaction).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return transaction, nil
}

// DeleteTransaction removes a transaction and reverses its balance effect.
func (s *transactionService) DeleteTransaction(userID, transactionID string) error {
	transaction, err := s.GetTransactionByID(userID, transactionID)
	if err != nil {
		return err
	}

	account, err := s.accountService.GetAccountByID(userID, transaction.AccountID)
	if err != nil {
		return err
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		reversed := models.TransactionTypeDebit
		if transaction.Type == models.TransactionTypeDebit {
			reversed = models.TransactionTypeCredit
		}
		if err := s.accountService.ApplyTransaction(tx, account, reversed, transaction.NumericAmount); err != nil {
			return err
		}
		if err := tx.Delete(transaction).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return nil
	})
}

// ListForExport returns every matching transaction in ascending date
// order plus an account ID to name lookup for the CSV writer.
func (s *transactionService) ListForExport(userID string, filter TransactionFilter) ([]models.Transaction, map[string]string, error) {
	base := s.applyFilter(s.db.Model(&models.Transaction{}).Where("user_id = ?", userID), filter)

	var transactions []models.Transaction
	if err := base.Order("date, created_at").Find(&transactions).Error; err != nil {
		return nil, nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var accounts []models.Account
	if err := s.db.Where("user_id = ?", userID).Find(&accounts).Error; err != nil {
		return nil, nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	names := make(map[string]string, len(accounts))
	for i := range accounts {
		names[accounts[i].ID] = accounts[i].Name
	}

	return transactions, names, nil
}

func (s *transactionService) applyFilter(query *gorm.DB, filter TransactionFilter) *gorm.DB {
	if filter.FromDate != nil {
		query = query.Where("date >= ?", *filter.FromDate)
	}
	if filter.ToDate != nil {
		query = query.Where("date <= ?", *filter.ToDate)
	}
	if filter.Type != nil {
		query = query.Where("type = ?", *filter.Type)
	}
	if filter.Category != nil {
		query = query.Where("category = ?", *filter.Category)
	}
	if filter.AccountID != nil {
		query = query.Where("account_id = ?", *filter.AccountID)
	}
	if filter.BusinessID != nil {
		query = query.Where("business_id = ?", *filter.BusinessID)
	}
	if filter.MinAmount != nil {
		query = query.Where("numeric_amount >= ?", *filter.MinAmount)
	}
	if filter.MaxAmount != nil {
		query = query.Where("numeric_amount <= ?", *filter.MaxAmount)
	}
	return query
}

func (s *transactionService) checkBusinessOwnership(userID, businessID string) error {
	var count int64
	if err := s.db.Model(&models.BusinessEntity{}).
		Where("id = ? AND user_id = ?", businessID, userID).
		Count(&count).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if count == 0 {
		return apperrors.ErrBusinessNotFound
	}
	return nil
}
