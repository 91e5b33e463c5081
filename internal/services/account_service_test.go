package services

import (
	"testing"

	"finsight/internal/models"
	"finsight/internal/pagination"
	"finsight/internal/testutil"
)

func TestCreateAccount(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewAccountService(db)
		user := testutil.CreateTestUser(t, db)

		account, err := svc.CreateAccount(user.ID, "Main Checking", "", models.AccountTypeChecking, "USD", 1000)
		testutil.AssertNoError(t, err)

		if account.ID == "" {
			t.Fatal("expected non-empty account ID")
		}
		if account.Balance != 1000 {
			t.Errorf("expected balance 1000, got %v", account.Balance)
		}
		if account.InitialBalance != 1000 {
			t.Errorf("expected initial balance 1000, got %v", account.InitialBalance)
		}
	})

	t.Run("missing_name", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewAccountService(db)
		user := testutil.CreateTestUser(t, db)

		_, err := svc.CreateAccount(user.ID, "", "", models.AccountTypeChecking, "USD", 0)
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})

	t.Run("default_currency", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewAccountService(db)
		user := testutil.CreateTestUser(t, db)

		account, err := svc.CreateAccount(user.ID, "Savings", "", models.AccountTypeSavings, "", 0)
		testutil.AssertNoError(t, err)
		if account.Currency != "USD" {
			t.Errorf("expected USD default, got %s", account.Currency)
		}
	})
}

func TestGetUserAccounts(t *testing.T) {
	t.Run("excludes_other_users_and_inactive", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewAccountService(db)
		user1 := testutil.CreateTestUser(t, db)
		user2 := testutil.CreateTestUser(t, db)

		mine := testutil.CreateTestAccount(t, db, user1.ID, models.AccountTypeChecking)
		testutil.CreateTestAccount(t, db, user2.ID, models.AccountTypeChecking)
		inactive := testutil.CreateTestAccount(t, db, user1.ID, models.AccountTypeSavings)
		testutil.AssertNoError(t, svc.DeactivateAccount(user1.ID, inactive.ID))

		result, err := svc.GetUserAccounts(user1.ID, pagination.PageRequest{})
		testutil.AssertNoError(t, err)
		if len(result.Data) != 1 {
			t.Fatalf("expected 1 account, got %d", len(result.Data))
		}
		if result.Data[0].ID != mine.ID {
			t.Errorf("expected account %s, got %s", mine.ID, result.Data[0].ID)
		}
	})
}

func TestGetAccountByID(t *testing.T) {
	t.Run("wrong_user", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewAccountService(db)
		user1 := testutil.CreateTestUser(t, db)
		user2 := testutil.CreateTestUser(t, db)
		account := testutil.CreateTestAccount(t, db, user2.ID, models.AccountTypeChecking)

		_, err := svc.GetAccountByID(user1.ID, account.ID)
		testutil.AssertAppError(t, err, "ACCOUNT_NOT_FOUND")
	})
}

func TestReconcile(t *testing.T) {
	t.Run("in_sync", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		accountSvc := NewAccountService(db)
		txSvc := NewTransactionService(db, accountSvc)
		user := testutil.CreateTestUser(t, db)
		account, err := accountSvc.CreateAccount(user.ID, "Checking", "", models.AccountTypeChecking, "USD", 1000)
		testutil.AssertNoError(t, err)

		_, err = txSvc.CreateTransaction(user.ID, TransactionInput{
			AccountID: account.ID, Type: models.TransactionTypeCredit, Amount: 500, Category: "Salary",
		})
		testutil.AssertNoError(t, err)
		_, err = txSvc.CreateTransaction(user.ID, TransactionInput{
			AccountID: account.ID, Type: models.TransactionTypeDebit, Amount: 200, Category: "Food",
		})
		testutil.AssertNoError(t, err)

		result, err := accountSvc.Reconcile(user.ID, account.ID)
		testutil.AssertNoError(t, err)

		if !result.InSync {
			t.Errorf("expected in sync, got drift %v", result.Drift)
		}
		if result.Replayed != 1300 {
			t.Errorf("expected replayed 1300, got %v", result.Replayed)
		}
	})

	t.Run("detects_drift", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewAccountService(db)
		user := testutil.CreateTestUser(t, db)
		account, err := svc.CreateAccount(user.ID, "Checking", "", models.AccountTypeChecking, "USD", 1000)
		testutil.AssertNoError(t, err)

		// Corrupt the stored balance behind the service's back.
		testutil.AssertNoError(t, db.Model(account).Update("balance", 1250).Error)

		result, err := svc.Reconcile(user.ID, account.ID)
		testutil.AssertNoError(t, err)
		if result.InSync {
			t.Fatal("expected drift to be detected")
		}
		if result.Drift != 250 {
			t.Errorf("expected drift 250, got %v", result.Drift)
		}
	})

	t.Run("repair_resets_to_replayed", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewAccountService(db)
		user := testutil.CreateTestUser(t, db)
		account, err := svc.CreateAccount(user.ID, "Checking", "", models.AccountTypeChecking, "USD", 1000)
		testutil.AssertNoError(t, err)

		testutil.AssertNoError(t, db.Model(account).Update("balance", 999).Error)

		result, err := svc.RepairDrift(user.ID, account.ID)
		testutil.AssertNoError(t, err)
		if !result.InSync {
			t.Fatal("expected repaired account to be in sync")
		}

		reloaded, err := svc.GetAccountByID(user.ID, account.ID)
		testutil.AssertNoError(t, err)
		if reloaded.Balance != 1000 {
			t.Errorf("expected stored balance reset to 1000, got %v", reloaded.Balance)
		}
	})
}
