package handlers_test

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"github.com/SscSPs/vault_ledger/internal/apperrors"
	"github.com/SscSPs/vault_ledger/internal/core/domain"
	"github.com/SscSPs/vault_ledger/internal/dto"
)

func (suite *HandlerTestSuite) TestCreateTransaction_Success() {
	body := map[string]any{
		"transactionId": "tx-1",
		"type":          "deposit",
		"amount":        "12.34",
		"memo":          "rent",
		"id":            "forged",
	}
	suite.txnService.On("Create", mock.Anything, mock.MatchedBy(func(req dto.CreateTransactionRequest) bool {
		return req.TransactionID == "tx-1" &&
			req.Type == "deposit" &&
			req.Amount.Equal(decimal.RequireFromString("12.34")) &&
			req.Extra["memo"] == "rent" &&
			req.Extra["id"] == "forged"
	}), identityWithID("u1")).Return(&domain.Transaction{
		ID:            "sys-1",
		TransactionID: "tx-1",
		Type:          domain.TypeDeposit,
		Amount:        decimal.RequireFromString("12.34"),
		Status:        domain.StatusPending,
		UserID:        "u1",
	}, nil).Once()

	w, env := suite.do(http.MethodPost, "/api/v1/transactions", body, &suite.user)

	suite.Equal(http.StatusCreated, w.Code)
	suite.True(env.IsOK)
	var txn map[string]any
	suite.Require().NoError(json.Unmarshal(env.Data, &txn))
	suite.Equal("sys-1", txn["id"])
	suite.Equal("tx-1", txn["transactionId"])
	suite.txnService.AssertExpectations(suite.T())
}

func (suite *HandlerTestSuite) TestCreateTransaction_RequiresToken() {
	w, env := suite.do(http.MethodPost, "/api/v1/transactions", map[string]any{"type": "deposit"}, nil)

	suite.Equal(http.StatusUnauthorized, w.Code)
	suite.False(env.IsOK)
	suite.txnService.AssertNotCalled(suite.T(), "Create", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *HandlerTestSuite) TestCreateTransaction_BadBody() {
	testCases := []struct {
		name string
		body any
	}{
		{name: "malformed json", body: `{"type":`},
		{name: "bad type identifier", body: map[string]any{"type": "9 lives"}},
		{name: "negative repayment period", body: map[string]any{"type": "loan", "repaymentPeriod": -3}},
	}

	for _, tc := range testCases {
		suite.Run(tc.name, func() {
			w, env := suite.do(http.MethodPost, "/api/v1/transactions", tc.body, &suite.user)

			suite.Equal(http.StatusBadRequest, w.Code)
			suite.False(env.IsOK)
			suite.Contains(env.Error, "Invalid request format")
		})
	}
	suite.txnService.AssertNotCalled(suite.T(), "Create", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *HandlerTestSuite) TestCreateTransaction_UnknownTypeIsAccepted() {
	suite.txnService.On("Create", mock.Anything, mock.MatchedBy(func(req dto.CreateTransactionRequest) bool {
		return req.Type == "staking_reward"
	}), mock.Anything).Return(&domain.Transaction{ID: "sys-2", Type: "staking_reward"}, nil).Once()

	w, _ := suite.do(http.MethodPost, "/api/v1/transactions", map[string]any{"type": "staking_reward"}, &suite.user)

	suite.Equal(http.StatusCreated, w.Code)
}

func (suite *HandlerTestSuite) TestCreateTransaction_ErrorMapping() {
	testCases := []struct {
		name       string
		err        error
		wantStatus int
		wantError  string
	}{
		{
			name:       "non-member loan",
			err:        fmt.Errorf("%w: Loan access restricted to members", apperrors.ErrForbidden),
			wantStatus: http.StatusForbidden,
			wantError:  "Loan access restricted to members",
		},
		{
			name:       "validation",
			err:        fmt.Errorf("%w: amount must be positive", apperrors.ErrValidation),
			wantStatus: http.StatusBadRequest,
			wantError:  "amount must be positive",
		},
		{
			name:       "duplicate",
			err:        fmt.Errorf("%w: transaction tx-1", apperrors.ErrDuplicate),
			wantStatus: http.StatusConflict,
			wantError:  "transaction tx-1",
		},
		{
			name:       "store failure",
			err:        fmt.Errorf("%w: insert: connection reset", apperrors.ErrStore),
			wantStatus: http.StatusInternalServerError,
			wantError:  "Server error",
		},
		{
			name:       "unexpected",
			err:        errors.New("boom"),
			wantStatus: http.StatusInternalServerError,
			wantError:  "Server error",
		},
	}

	for _, tc := range testCases {
		suite.Run(tc.name, func() {
			suite.SetupTest()
			suite.txnService.On("Create", mock.Anything, mock.Anything, mock.Anything).Return(nil, tc.err).Once()

			w, env := suite.do(http.MethodPost, "/api/v1/transactions", map[string]any{"type": "loan"}, &suite.user)

			suite.Equal(tc.wantStatus, w.Code)
			suite.False(env.IsOK)
			suite.Equal(tc.wantError, env.Error)
		})
	}
}

func (suite *HandlerTestSuite) TestListTransactions_AnonymousReachesService() {
	suite.txnService.On("List", mock.Anything, dto.ListTransactionsParams{}, (*domain.Identity)(nil)).
		Return(nil, fmt.Errorf("%w: authentication required", apperrors.ErrUnauthorized)).Once()

	w, env := suite.do(http.MethodGet, "/api/v1/transactions", nil, nil)

	suite.Equal(http.StatusUnauthorized, w.Code)
	suite.Equal("authentication required", env.Error)
	suite.txnService.AssertExpectations(suite.T())
}

func (suite *HandlerTestSuite) TestListTransactions_Success() {
	next := "cursor-2"
	suite.txnService.On("List", mock.Anything, dto.ListTransactionsParams{UserID: "u1", Limit: 2, NextToken: "cursor-1"}, identityWithID("u1")).
		Return(&dto.ListTransactionsResponse{
			Items:     []domain.Transaction{{ID: "a", UserID: "u1"}, {ID: "b", UserID: "u1"}},
			NextToken: &next,
		}, nil).Once()

	w, env := suite.do(http.MethodGet, "/api/v1/transactions?userId=u1&limit=2&nextToken=cursor-1", nil, &suite.user)

	suite.Equal(http.StatusOK, w.Code)
	var page struct {
		Items     []domain.Transaction `json:"items"`
		NextToken string               `json:"nextToken"`
	}
	suite.Require().NoError(json.Unmarshal(env.Data, &page))
	suite.Len(page.Items, 2)
	suite.Equal("cursor-2", page.NextToken)
}

func (suite *HandlerTestSuite) TestListTransactions_BadLimit() {
	w, env := suite.do(http.MethodGet, "/api/v1/transactions?limit=-1", nil, &suite.user)

	suite.Equal(http.StatusBadRequest, w.Code)
	suite.Contains(env.Error, "Invalid query parameters")
	suite.txnService.AssertNotCalled(suite.T(), "List", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *HandlerTestSuite) TestListTransactions_ForbiddenForOtherUser() {
	suite.txnService.On("List", mock.Anything, dto.ListTransactionsParams{UserID: "u2"}, identityWithID("u1")).
		Return(nil, fmt.Errorf("%w: cannot list another user's transactions", apperrors.ErrForbidden)).Once()

	w, _ := suite.do(http.MethodGet, "/api/v1/transactions?userId=u2", nil, &suite.user)

	suite.Equal(http.StatusForbidden, w.Code)
}

func (suite *HandlerTestSuite) TestGetTransaction() {
	suite.txnService.On("Get", mock.Anything, "tx-1", identityWithID("u1")).
		Return(&domain.Transaction{ID: "sys-1", TransactionID: "tx-1", UserID: "u1"}, nil).Once()
	suite.txnService.On("Get", mock.Anything, "missing", identityWithID("u1")).
		Return(nil, fmt.Errorf("%w: Transaction not found", apperrors.ErrNotFound)).Once()

	w, env := suite.do(http.MethodGet, "/api/v1/transactions/tx-1", nil, &suite.user)
	suite.Equal(http.StatusOK, w.Code)
	suite.True(env.IsOK)

	w, env = suite.do(http.MethodGet, "/api/v1/transactions/missing", nil, &suite.user)
	suite.Equal(http.StatusNotFound, w.Code)
	suite.Equal("Transaction not found", env.Error)
}

func (suite *HandlerTestSuite) TestUpdateStatus_Success() {
	suite.txnService.On("UpdateStatus", mock.Anything, "tx-1", domain.TransactionStatus("Completed"), identityWithID("admin-1")).
		Return(&domain.Transaction{ID: "sys-1", TransactionID: "tx-1", Status: "Completed", AppliedToBalances: true}, nil).Once()

	w, env := suite.do(http.MethodPatch, "/api/v1/transactions/tx-1/status", map[string]any{"status": "Completed"}, &suite.admin)

	suite.Equal(http.StatusOK, w.Code)
	var txn domain.Transaction
	suite.Require().NoError(json.Unmarshal(env.Data, &txn))
	suite.Equal(domain.TransactionStatus("Completed"), txn.Status)
	suite.True(txn.AppliedToBalances)
	suite.txnService.AssertExpectations(suite.T())
}

func (suite *HandlerTestSuite) TestUpdateStatus_NonAdmin() {
	suite.txnService.On("UpdateStatus", mock.Anything, "tx-1", domain.TransactionStatus("Completed"), identityWithID("u1")).
		Return(nil, fmt.Errorf("%w: admin only", apperrors.ErrForbidden)).Once()

	w, env := suite.do(http.MethodPatch, "/api/v1/transactions/tx-1/status", map[string]any{"status": "Completed"}, &suite.user)

	suite.Equal(http.StatusForbidden, w.Code)
	suite.Equal("admin only", env.Error)
}

func (suite *HandlerTestSuite) TestUpdateStatus_NonAdminEmptyStatus() {
	suite.txnService.On("UpdateStatus", mock.Anything, "tx-1", domain.TransactionStatus(""), identityWithID("u1")).
		Return(nil, fmt.Errorf("%w: admin only", apperrors.ErrForbidden)).Once()

	w, env := suite.do(http.MethodPatch, "/api/v1/transactions/tx-1/status", map[string]any{"status": ""}, &suite.user)

	suite.Equal(http.StatusForbidden, w.Code)
	suite.Equal("admin only", env.Error)
	suite.txnService.AssertExpectations(suite.T())
}

func (suite *HandlerTestSuite) TestUpdateStatus_MalformedBody() {
	w, _ := suite.do(http.MethodPatch, "/api/v1/transactions/tx-1/status", `not-json`, &suite.admin)

	suite.Equal(http.StatusBadRequest, w.Code)
	suite.txnService.AssertNotCalled(suite.T(), "UpdateStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}
