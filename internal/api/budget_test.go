package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"testing"

	"fintrack/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type budgetEnvelope struct {
	Budget BudgetResponse    `json:"budget"`
	Errors map[string]string `json:"errors"`
}

func TestBudgetAbsoluteCreateAndConflict(t *testing.T) {
	r, db := newTestServer(t)
	_, token := signupTestUser(t, db, "tester@example.com")

	form := url.Values{
		"intent": {"save-budget"}, "month": {"3"}, "year": {"2025"}, "amount": {"500.00"},
	}
	rr := postForm(r, token, "/budgets", form)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	// the second save for the same period is a user-correctable conflict
	rr = postForm(r, token, "/budgets", form)
	require.Equal(t, http.StatusOK, rr.Code)
	var resp budgetEnvelope
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Contains(t, resp.Errors, "month")

	var count int64
	require.NoError(t, db.Model(&domain.Budget{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestBudgetPercentMode(t *testing.T) {
	r, db := newTestServer(t)
	_, token := signupTestUser(t, db, "tester@example.com")

	// $2000 income in June
	rr := postForm(r, token, "/incomes", url.Values{
		"intent": {"create"}, "amount": {"2000.00"}, "date": {"2025-06-01"}, "source": {"salary"},
	})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	// 25% of $2000 derives exactly $500.00
	rr = postForm(r, token, "/budgets", url.Values{
		"intent": {"save-budget"}, "month": {"6"}, "year": {"2025"},
		"mode": {"percent"}, "percent": {"25"},
	})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	var resp budgetEnvelope
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "500.00", resp.Budget.Amount)
}

func TestBudgetPercentModeZeroIncome(t *testing.T) {
	r, db := newTestServer(t)
	_, token := signupTestUser(t, db, "tester@example.com")

	rr := postForm(r, token, "/budgets", url.Values{
		"intent": {"save-budget"}, "month": {"7"}, "year": {"2025"},
		"mode": {"percent"}, "percent": {"25"},
	})
	require.Equal(t, http.StatusOK, rr.Code)
	var resp budgetEnvelope
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Contains(t, resp.Errors, "percent")

	// the failed derivation created no row
	var count int64
	require.NoError(t, db.Model(&domain.Budget{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestBudgetFrozenAfterIncomeChanges(t *testing.T) {
	r, db := newTestServer(t)
	user, token := signupTestUser(t, db, "tester@example.com")

	rr := postForm(r, token, "/incomes", url.Values{
		"intent": {"create"}, "amount": {"2000.00"}, "date": {"2025-06-01"},
	})
	require.Equal(t, http.StatusCreated, rr.Code)
	rr = postForm(r, token, "/budgets", url.Values{
		"intent": {"save-budget"}, "month": {"6"}, "year": {"2025"},
		"mode": {"percent"}, "percent": {"25"},
	})
	require.Equal(t, http.StatusCreated, rr.Code)

	// more income later in the month must not move the stored ceiling
	rr = postForm(r, token, "/incomes", url.Values{
		"intent": {"create"}, "amount": {"3000.00"}, "date": {"2025-06-20"},
	})
	require.Equal(t, http.StatusCreated, rr.Code)

	var b domain.Budget
	require.NoError(t, db.Where("user_id = ? AND month = ? AND year = ?", user.ID, 6, 2025).First(&b).Error)
	assert.Equal(t, "500.00", b.Amount.StringFixed(2))
}

func TestBudgetUpdateAmountOnly(t *testing.T) {
	r, db := newTestServer(t)
	user, token := signupTestUser(t, db, "tester@example.com")

	rr := postForm(r, token, "/budgets", url.Values{
		"intent": {"save-budget"}, "month": {"3"}, "year": {"2025"}, "amount": {"500.00"},
	})
	require.Equal(t, http.StatusCreated, rr.Code)

	rr = postForm(r, token, "/budgets", url.Values{
		"intent": {"update"}, "month": {"3"}, "year": {"2025"}, "amount": {"650.00"},
	})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var b domain.Budget
	require.NoError(t, db.Where("user_id = ?", user.ID).First(&b).Error)
	assert.Equal(t, "650.00", b.Amount.StringFixed(2))
	assert.Equal(t, 3, b.Month)
	assert.Equal(t, 2025, b.Year)
}

func TestBudgetUtilizationStatus(t *testing.T) {
	r, db := newTestServer(t)
	user, token := signupTestUser(t, db, "tester@example.com")
	food := categoryByName(t, db, user.ID, "Food & Dining")

	rr := postForm(r, token, "/budgets", url.Values{
		"intent": {"save-budget"}, "month": {"6"}, "year": {"2025"}, "amount": {"500.00"},
	})
	require.Equal(t, http.StatusCreated, rr.Code)

	rr = postForm(r, token, "/transactions", url.Values{
		"intent": {"create"}, "amount": {"450.00"}, "category_id": {fmt.Sprint(food.ID)}, "date": {"2025-06-10"},
	})
	require.Equal(t, http.StatusCreated, rr.Code)

	rr = getPath(r, token, "/budgets/current?month=6&year=2025")
	require.Equal(t, http.StatusOK, rr.Code)
	var resp budgetEnvelope
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "450.00", resp.Budget.Spent)
	assert.Equal(t, "50.00", resp.Budget.Remaining)
	assert.Equal(t, 90.0, resp.Budget.Utilization)
	assert.Equal(t, "warning", resp.Budget.Status)
}

func TestBudgetInvalidPeriod(t *testing.T) {
	r, db := newTestServer(t)
	_, token := signupTestUser(t, db, "tester@example.com")

	rr := postForm(r, token, "/budgets", url.Values{
		"intent": {"save-budget"}, "month": {"13"}, "year": {"2025"}, "amount": {"500.00"},
	})
	require.Equal(t, http.StatusOK, rr.Code)
	var resp budgetEnvelope
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Contains(t, resp.Errors, "month")
}
