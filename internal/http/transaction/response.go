package transaction

import (
	"time"

	"github.com/MrJamesThe3rd/clerk/internal/transaction"
)

type itemResponse struct {
	SKU             string `json:"sku"`
	Name            string `json:"name"`
	Quantity        int    `json:"quantity"`
	UnitPrice       int64  `json:"unit_price"`
	LineTotal       int64  `json:"line_total"`
	DiscountApplied int64  `json:"discount_applied"`
}

type transactionResponse struct {
	ID            string             `json:"transaction_id"`
	Timestamp     time.Time          `json:"timestamp"`
	UserID        string             `json:"user_id"`
	CashierName   string             `json:"cashier_name"`
	Items         []itemResponse     `json:"items"`
	ItemCount     int                `json:"item_count"`
	Subtotal      int64              `json:"subtotal"`
	Tax           int64              `json:"tax"`
	DiscountTotal int64              `json:"discount_total"`
	Total         int64              `json:"total"`
	PaymentMethod string             `json:"payment_method"`
	Status        transaction.Status `json:"status"`
}

func toResponse(tx *transaction.Transaction, loc *time.Location) transactionResponse {
	resp := transactionResponse{
		ID:            tx.ID,
		Timestamp:     tx.Timestamp.In(loc),
		UserID:        tx.UserID,
		CashierName:   tx.CashierName,
		Items:         make([]itemResponse, len(tx.Items)),
		ItemCount:     tx.ItemCount(),
		Subtotal:      tx.Subtotal,
		Tax:           tx.Tax,
		DiscountTotal: tx.DiscountTotal,
		Total:         tx.Total,
		PaymentMethod: tx.PaymentMethod,
		Status:        tx.Status,
	}

	for i, it := range tx.Items {
		resp.Items[i] = itemResponse(it)
	}

	return resp
}

func toResponseList(txs []*transaction.Transaction, loc *time.Location) []transactionResponse {
	resp := make([]transactionResponse, len(txs))
	for i, tx := range txs {
		resp[i] = toResponse(tx, loc)
	}

	return resp
}
