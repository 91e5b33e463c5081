package integration

import (
	"fmt"
	"net/http"
	"testing"
)

func TestAuthFlow_RegisterLoginProfileRefresh(t *testing.T) {
	app := setupApp(t)

	accessToken, refreshToken, userID := app.registerUser(t, "auth@test.com", "password123")
	if accessToken == "" || refreshToken == "" {
		t.Fatal("expected tokens from registration")
	}
	if userID == "" {
		t.Fatal("expected a user ID from registration")
	}

	loginAccess, loginRefresh := app.loginUser(t, "auth@test.com", "password123")

	rec := app.request("GET", "/api/v1/profile", "", loginAccess)
	if rec.Code != http.StatusOK {
		t.Fatalf("profile failed: %d %s", rec.Code, rec.Body.String())
	}
	user := parseJSON(t, rec)["user"].(map[string]interface{})
	if user["email"] != "auth@test.com" {
		t.Errorf("expected email auth@test.com, got %v", user["email"])
	}
	if user["base_currency"] != "USD" {
		t.Errorf("expected default base currency USD, got %v", user["base_currency"])
	}

	// The rotated refresh token must mint a working access token.
	body := fmt.Sprintf(`{"refresh_token":%q}`, loginRefresh)
	rec = app.request("POST", "/api/v1/auth/refresh", body, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("refresh failed: %d %s", rec.Code, rec.Body.String())
	}
	newAccess, _ := parseJSON(t, rec)["access_token"].(string)
	if newAccess == "" {
		t.Fatal("expected an access token from refresh")
	}
	rec = app.request("GET", "/api/v1/profile", "", newAccess)
	if rec.Code != http.StatusOK {
		t.Fatalf("profile with refreshed token failed: %d %s", rec.Code, rec.Body.String())
	}
}

func TestAuthFlow_BaseCurrency(t *testing.T) {
	app := setupApp(t)

	rec := app.request("POST", "/api/v1/auth/register",
		`{"email":"eur@test.com","password":"password123","base_currency":"EUR"}`, "")
	if rec.Code != http.StatusCreated {
		t.Fatalf("register failed: %d %s", rec.Code, rec.Body.String())
	}
	token := parseJSON(t, rec)["access_token"].(string)

	rec = app.request("PUT", "/api/v1/profile/base-currency", `{"base_currency":"GBP"}`, token)
	if rec.Code != http.StatusOK {
		t.Fatalf("base currency update failed: %d %s", rec.Code, rec.Body.String())
	}

	rec = app.request("GET", "/api/v1/profile", "", token)
	user := parseJSON(t, rec)["user"].(map[string]interface{})
	if user["base_currency"] != "GBP" {
		t.Errorf("expected base currency GBP, got %v", user["base_currency"])
	}

	rec = app.request("PUT", "/api/v1/profile/base-currency", `{"base_currency":"ZZZ"}`, token)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown currency, got %d", rec.Code)
	}
}

func TestAuthFlow_RegisterDuplicateEmail(t *testing.T) {
	app := setupApp(t)

	app.registerUser(t, "dup@test.com", "password123")

	rec := app.request("POST", "/api/v1/auth/register",
		`{"email":"dup@test.com","password":"password123"}`, "")
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409 for duplicate email, got %d: %s", rec.Code, rec.Body.String())
	}
	assertErrorCode(t, rec, "DUPLICATE_EMAIL")
}

func TestAuthFlow_LoginWrongPassword(t *testing.T) {
	app := setupApp(t)

	app.registerUser(t, "wrong@test.com", "password123")

	rec := app.request("POST", "/api/v1/auth/login",
		`{"email":"wrong@test.com","password":"wrongpassword"}`, "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d: %s", rec.Code, rec.Body.String())
	}
	assertErrorCode(t, rec, "INVALID_CREDENTIALS")
}

func TestAuthFlow_AccountLockout(t *testing.T) {
	app := setupApp(t)

	app.registerUser(t, "lockout@test.com", "password123")

	for i := 0; i < 5; i++ {
		rec := app.request("POST", "/api/v1/auth/login",
			`{"email":"lockout@test.com","password":"wrong"}`, "")
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("attempt %d: expected 401, got %d", i+1, rec.Code)
		}
	}

	rec := app.request("POST", "/api/v1/auth/login",
		`{"email":"lockout@test.com","password":"wrong"}`, "")
	if rec.Code != http.StatusLocked {
		t.Fatalf("expected 423 after lockout threshold, got %d: %s", rec.Code, rec.Body.String())
	}
	assertErrorCode(t, rec, "ACCOUNT_LOCKED")

	// The lock holds even for the right password.
	rec = app.request("POST", "/api/v1/auth/login",
		`{"email":"lockout@test.com","password":"password123"}`, "")
	if rec.Code != http.StatusLocked {
		t.Fatalf("expected 423 with correct password while locked, got %d", rec.Code)
	}
}

func TestAuthFlow_ProtectedRoutesRejectBadTokens(t *testing.T) {
	app := setupApp(t)

	rec := app.request("GET", "/api/v1/profile", "", "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without a token, got %d", rec.Code)
	}

	rec = app.request("GET", "/api/v1/profile", "", "invalid-token")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for a garbage token, got %d", rec.Code)
	}
}
