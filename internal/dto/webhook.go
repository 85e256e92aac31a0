package dto

import "github.com/shopspring/decimal"

// CryptoWebhookRequest is the normalised on-chain deposit callback.
type CryptoWebhookRequest struct {
	Address       string           `json:"address"`
	AmountBTC     *decimal.Decimal `json:"amountBTC"`
	Network       string           `json:"network"`
	TxID          string           `json:"txId"`
	UserID        string           `json:"userId"`
	Confirmations int              `json:"confirmations"`
}
