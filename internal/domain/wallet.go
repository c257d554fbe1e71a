package domain

import (
	"math"
	"strings"
	"time"
)

// ============================================================
// Wallet, Payments & Offers
// ============================================================

// TransactionType is the direction of a wallet movement.
type TransactionType string

const (
	TxCredit TransactionType = "credit"
	TxDebit  TransactionType = "debit"
)

// MinTopUp is the smallest amount accepted by AddMoney.
const MinTopUp = 100.0

// WalletTransaction is one row of the wallet history.
type WalletTransaction struct {
	ID           string          `json:"id"`
	Type         TransactionType `json:"type"`
	Amount       float64         `json:"amount"`
	Description  string          `json:"description"`
	JobID        string          `json:"jobId,omitempty"`
	Counterparty string          `json:"electrician,omitempty"`
	CreatedAt    time.Time       `json:"date"`
}

// Wallet is the prepaid balance of a customer.
type Wallet struct {
	UserID       string              `json:"userId"`
	Balance      float64             `json:"balance"`
	AppliedOffer string              `json:"appliedOffer,omitempty"`
	UsedOffers   []string            `json:"usedOffers,omitempty"`
	Transactions []WalletTransaction `json:"transactions"`
}

// Credit adds money and records a history row, newest first.
func (w *Wallet) Credit(tx WalletTransaction) {
	tx.Type = TxCredit
	w.Balance += tx.Amount
	w.Transactions = append([]WalletTransaction{tx}, w.Transactions...)
}

// Debit removes money, failing when the balance does not cover it.
func (w *Wallet) Debit(tx WalletTransaction) error {
	if tx.Amount > w.Balance {
		return &ErrInsufficientFunds{Available: w.Balance, Required: tx.Amount}
	}
	tx.Type = TxDebit
	w.Balance -= tx.Amount
	w.Transactions = append([]WalletTransaction{tx}, w.Transactions...)
	return nil
}

// HasDebits reports whether the wallet ever paid for anything.
func (w *Wallet) HasDebits() bool {
	for _, tx := range w.Transactions {
		if tx.Type == TxDebit {
			return true
		}
	}
	return false
}

// OfferUsed reports whether code was already redeemed.
func (w *Wallet) OfferUsed(code string) bool {
	for _, c := range w.UsedOffers {
		if c == code {
			return true
		}
	}
	return false
}

// AddMoneyRequest is the body of POST /v1/wallet/add.
type AddMoneyRequest struct {
	Amount float64 `json:"amount"`
}

// Offer is a promotion customers can apply to their wallet.
type Offer struct {
	ID              string  `json:"id"`
	Code            string  `json:"code"`
	Title           string  `json:"title"`
	Description     string  `json:"description"`
	DiscountPercent float64 `json:"discount,omitempty"`
	MinAmount       float64 `json:"minAmount,omitempty"`
	BonusAmount     float64 `json:"bonusAmount,omitempty"`
	FirstBooking    bool    `json:"firstBooking,omitempty"`
}

const (
	OfferFirst20 = "FIRST20"
	OfferAdd500  = "ADD500"
)

// Offers is the fixed promotion catalog. Titles are resolved per locale.
var Offers = []Offer{
	{ID: "1", Code: OfferFirst20, Title: "offer.first20.title", Description: "offer.first20.description", DiscountPercent: 20, FirstBooking: true},
	{ID: "2", Code: OfferAdd500, Title: "offer.add500.title", Description: "offer.add500.description", MinAmount: 500, BonusAmount: 100},
}

// FindOffer looks an offer up by code, case-insensitively.
func FindOffer(code string) (Offer, bool) {
	code = strings.ToUpper(strings.TrimSpace(code))
	for _, o := range Offers {
		if o.Code == code {
			return o, true
		}
	}
	return Offer{}, false
}

// ApplyOfferRequest is the body of POST /v1/wallet/offers/apply.
type ApplyOfferRequest struct {
	Code string `json:"code"`
}

// PaymentMethod is how a job was paid.
type PaymentMethod string

const (
	PayOnline PaymentMethod = "online"
	PayCash   PaymentMethod = "cash"
	PayWallet PaymentMethod = "wallet"
)

// PaymentStatus is the outcome of a payment.
type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentCompleted PaymentStatus = "completed"
	PaymentFailed    PaymentStatus = "failed"
)

// Payment records the settlement of a job.
type Payment struct {
	ID        string        `json:"id"`
	JobID     string        `json:"jobId"`
	Amount    float64       `json:"amount"`
	Cashback  float64       `json:"cashback,omitempty"`
	Method    PaymentMethod `json:"method"`
	Status    PaymentStatus `json:"status"`
	Timestamp time.Time     `json:"timestamp"`
}

// PayRequest is the body of POST /v1/jobs/{id}/pay.
type PayRequest struct {
	Method PaymentMethod `json:"method"`
}

// Validate checks the payment method.
func (r PayRequest) Validate() error {
	switch r.Method {
	case PayOnline, PayCash, PayWallet:
		return nil
	}
	return &ErrValidation{Field: "method", Message: "method must be online, cash or wallet"}
}

// PaymentReceipt is returned by POST /v1/jobs/{id}/pay.
type PaymentReceipt struct {
	Payment Payment `json:"payment"`
	Job     Job     `json:"job"`
	Wallet  *Wallet `json:"wallet,omitempty"`
}

// CashbackFor returns the cashback percent of total, rounded to paise.
func CashbackFor(total, percent float64) float64 {
	return math.Round(total*percent) / 100
}
