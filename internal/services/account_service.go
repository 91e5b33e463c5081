package services

import (
	"errors"
	"time"

	"gorm.io/gorm"

	apperrors "finsight/internal/errors"
	"finsight/internal/metrics"
	"finsight/internal/models"
	"finsight/internal/pagination"
)

// accountService handles account-related business logic.
type accountService struct {
	db *gorm.DB
}

// NewAccountService creates a new AccountServicer.
func NewAccountService(db *gorm.DB) AccountServicer {
	return &accountService{db: db}
}

// CreateAccount creates a new account for a user. A non-zero initial
// balance is recorded both on the account and as the replay baseline,
// so a fresh account always reconciles cleanly.
func (s *accountService) CreateAccount(userID, name, description string, accountType models.AccountType, currency string, initialBalance float64) (*models.Account, error) {
	if name == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "account name is required")
	}

	if currency == "" {
		currency = "USD"
	}

	account := &models.Account{
		UserID:         userID,
		Name:           name,
		Type:           accountType,
		Description:    description,
		Balance:        initialBalance,
		InitialBalance: initialBalance,
		Currency:       currency,
		IsActive:       true,
	}

	if err := s.db.Create(account).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return account, nil
}

// GetUserAccounts retrieves a paginated list of active accounts for a user.
func (s *accountService) GetUserAccounts(userID string, page pagination.PageRequest) (*pagination.PageResponse[models.Account], error) {
	page.Defaults()

	var totalItems int64
	base := s.db.Model(&models.Account{}).Where("user_id = ? AND is_active = ?", userID, true)
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var accounts []models.Account
	if err := base.Scopes(pagination.Paginate(page)).Order("created_at").Find(&accounts).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(accounts, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// GetAccountByID retrieves an account by ID for a specific user.
func (s *accountService) GetAccountByID(userID, accountID string) (*models.Account, error) {
	var account models.Account
	if err := s.db.Where("id = ? AND user_id = ?", accountID, userID).First(&account).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrAccountNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &account, nil
}

// UpdateAccount updates an existing account. Currency and balance are
// never updatable here; balances only move through transactions.
func (s *accountService) UpdateAccount(userID, accountID string, fields AccountUpdateFields) (*models.Account, error) {
	account, err := s.GetAccountByID(userID, accountID)
	if err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	if fields.Name != nil && *fields.Name != "" {
		updates["name"] = *fields.Name
	}
	if fields.Description != nil {
		updates["description"] = *fields.Description
	}
	if fields.IsActive != nil {
		updates["is_active"] = *fields.IsActive
	}

	if len(updates) > 0 {
		if err := s.db.Model(account).Updates(updates).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if err := s.db.Where("id = ?", account.ID).First(account).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}

	return account, nil
}

// DeactivateAccount soft-disables an account. Its history stays in
// place and still feeds reports; it just stops appearing in listings.
func (s *accountService) DeactivateAccount(userID, accountID string) error {
	account, err := s.GetAccountByID(userID, accountID)
	if err != nil {
		return err
	}
	if err := s.db.Model(account).Update("is_active", false).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// Reconcile replays the account's full transaction history against its
// initial balance and compares the result with the stored balance.
// Comparison happens at cent precision so float noise from incremental
// updates does not read as drift.
func (s *accountService) Reconcile(userID, accountID string) (*ReconcileResult, error) {
	account, err := s.GetAccountByID(userID, accountID)
	if err != nil {
		return nil, err
	}

	var transactions []models.Transaction
	if err := s.db.Where("account_id = ?", accountID).Find(&transactions).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	replayed := metrics.Reconcile(account, transactions)
	drift := metrics.RoundCents(account.Balance - replayed)

	return &ReconcileResult{
		AccountID: account.ID,
		Stored:    account.Balance,
		Replayed:  replayed,
		Drift:     drift,
		InSync:    drift == 0,
	}, nil
}

// RepairDrift resets the stored balance to the replayed figure. The
// ledger is the source of truth; the stored balance is only a cache.
func (s *accountService) RepairDrift(userID, accountID string) (*ReconcileResult, error) {
	result, err := s.Reconcile(userID, accountID)
	if err != nil {
		return nil, err
	}
	if result.InSync {
		return result, nil
	}

	if err := s.db.Model(&models.Account{}).Where("id = ?", accountID).
		Update("balance", result.Replayed).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result.Stored = result.Replayed
	result.Drift = 0
	result.InSync = true
	return result, nil
}

// ApplyTransaction moves the stored balance for one transaction.
// Credits add, debits subtract; the balance is signed, so debt accounts
// simply go negative.
func (s *accountService) ApplyTransaction(tx *gorm.DB, account *models.Account, transactionType models.TransactionType, amount float64) error {
	switch transactionType {
	case models.TransactionTypeCredit:
		account.Balance += amount
	case models.TransactionTypeDebit:
		account.Balance -= amount
	default:
		return apperrors.ErrInvalidTransactionType
	}

	if err := tx.Model(account).Updates(map[string]interface{}{
		"balance":    account.Balance,
		"updated_at": time.Now(),
	}).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}
