package handlers_test

import (
	"fmt"
	"net/http"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"github.com/SscSPs/vault_ledger/internal/apperrors"
	"github.com/SscSPs/vault_ledger/internal/core/domain"
	"github.com/SscSPs/vault_ledger/internal/dto"
	"github.com/SscSPs/vault_ledger/internal/handlers"
)

const depositBody = `{"address":"bc1qxyz","amountBTC":"0.01","network":"bitcoin","txId":"chain-1","userId":"u1","confirmations":3}`

func (suite *HandlerTestSuite) TestCryptoWebhook_Success() {
	suite.webhookSvc.On("VerifySignature", []byte(depositBody), "abc123").Return(nil).Once()
	suite.webhookSvc.On("IngestCryptoDeposit", mock.Anything, mock.MatchedBy(func(req dto.CryptoWebhookRequest) bool {
		return req.TxID == "chain-1" && req.UserID == "u1" && req.AmountBTC != nil &&
			req.AmountBTC.Equal(decimal.RequireFromString("0.01")) && req.Confirmations == 3
	})).Return(&domain.Transaction{ID: "sys-9", TransactionID: "chain-1", Status: "Confirmed"}, nil).Once()

	w, env := suite.do(http.MethodPost, "/api/webhooks/crypto", depositBody, nil, handlers.SignatureHeader, "abc123")

	suite.Equal(http.StatusOK, w.Code)
	suite.True(env.IsOK)
	suite.webhookSvc.AssertExpectations(suite.T())
}

func (suite *HandlerTestSuite) TestCryptoWebhook_BadSignature() {
	suite.webhookSvc.On("VerifySignature", mock.Anything, "forged").
		Return(fmt.Errorf("%w: invalid webhook signature", apperrors.ErrUnauthorized)).Once()

	w, env := suite.do(http.MethodPost, "/api/webhooks/crypto", depositBody, nil, handlers.SignatureHeader, "forged")

	suite.Equal(http.StatusUnauthorized, w.Code)
	suite.Equal("invalid webhook signature", env.Error)
	suite.webhookSvc.AssertNotCalled(suite.T(), "IngestCryptoDeposit", mock.Anything, mock.Anything)
}

func (suite *HandlerTestSuite) TestCryptoWebhook_MissingFields() {
	body := `{"network":"bitcoin"}`
	suite.webhookSvc.On("VerifySignature", []byte(body), "").Return(nil).Once()
	suite.webhookSvc.On("IngestCryptoDeposit", mock.Anything, mock.Anything).
		Return(nil, fmt.Errorf("%w: missing required fields", apperrors.ErrValidation)).Once()

	w, env := suite.do(http.MethodPost, "/api/webhooks/crypto", body, nil)

	suite.Equal(http.StatusBadRequest, w.Code)
	suite.Equal("missing required fields", env.Error)
}

func (suite *HandlerTestSuite) TestCryptoWebhook_MalformedJSON() {
	suite.webhookSvc.On("VerifySignature", mock.Anything, mock.Anything).Return(nil).Once()

	w, _ := suite.do(http.MethodPost, "/api/webhooks/crypto", `{"txId":`, nil)

	suite.Equal(http.StatusBadRequest, w.Code)
	suite.webhookSvc.AssertNotCalled(suite.T(), "IngestCryptoDeposit", mock.Anything, mock.Anything)
}
