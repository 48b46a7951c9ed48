package model

import "time"

// TransactionStatus is the settlement state of a financial transaction.
type TransactionStatus string

const (
	TxPending     TransactionStatus = "PENDENTE"
	TxPartialPaid TransactionStatus = "PARCIALMENTE_PAGO"
	TxPaid        TransactionStatus = "PAGO"
	TxRealized    TransactionStatus = "REALIZADO"
)

func (s TransactionStatus) String() string {
	return string(s)
}

// IsValid checks whether the status is a known value.
func (s TransactionStatus) IsValid() bool {
	switch s {
	case TxPending, TxPartialPaid, TxPaid, TxRealized:
		return true
	}
	return false
}

// Nature says whether a transaction is income or an expense.
type Nature string

const (
	NatureIncome  Nature = "RECEITA"
	NatureExpense Nature = "DESPESA"
)

// IsValid checks whether the nature is a known value.
func (n Nature) IsValid() bool {
	return n == NatureIncome || n == NatureExpense
}

// TypeNature classifies transaction types as gains or losses.
type TypeNature string

const (
	TypeGain TypeNature = "GANHO"
	TypeLoss TypeNature = "PERDA"
)

// IsValid checks whether the type nature is a known value.
func (n TypeNature) IsValid() bool {
	return n == TypeGain || n == TypeLoss
}

// Default transaction type names created for every user.
const (
	CommissionTypeName = "Comissão"
	ExpenseTypeName    = "Despesa"
)

// TransactionType is a user-defined category of transaction.
type TransactionType struct {
	ID        string     `json:"id"`
	UserID    string     `json:"user_id"`
	Name      string     `json:"name"`
	Nature    TypeNature `json:"nature"`
	CreatedAt time.Time  `json:"created_at"`
}

// Transaction is a receivable or payable, typically a policy commission.
type Transaction struct {
	ID              string            `json:"id"`
	UserID          string            `json:"user_id"`
	ClientID        string            `json:"client_id,omitempty"`
	PolicyID        string            `json:"policy_id,omitempty"`
	TypeID          string            `json:"type_id,omitempty"`
	CompanyID       string            `json:"company_id,omitempty"`
	Description     string            `json:"description"`
	Amount          float64           `json:"amount"`
	PaidAmount      float64           `json:"paid_amount"`
	Date            Date              `json:"date,omitzero"`
	TransactionDate Date              `json:"transaction_date,omitzero"`
	DueDate         Date              `json:"due_date,omitzero"`
	Status          TransactionStatus `json:"status"`
	Nature          Nature            `json:"nature"`
	BrokerageID     string            `json:"brokerage_id,omitempty"`
	ProducerID      string            `json:"producer_id,omitempty"`
	CreatedAt       time.Time         `json:"created_at"`
}

// Remaining is the amount still owed.
func (t *Transaction) Remaining() float64 {
	return RoundCents(t.Amount - t.PaidAmount)
}

// Payment is a partial settlement (baixa parcial) of a transaction.
type Payment struct {
	ID            string    `json:"id"`
	TransactionID string    `json:"transaction_id"`
	UserID        string    `json:"user_id"`
	Amount        float64   `json:"amount"`
	Description   string    `json:"description"`
	PaymentDate   Date      `json:"payment_date"`
	CreatedAt     time.Time `json:"created_at"`
}

// TransactionFilter holds criteria for querying transactions. An empty
// UserID matches every user.
type TransactionFilter struct {
	UserID   string              `json:"user_id,omitempty"`
	PolicyID string              `json:"policy_id,omitempty"`
	ClientID string              `json:"client_id,omitempty"`
	TypeID   string              `json:"type_id,omitempty"`
	Status   []TransactionStatus `json:"status,omitempty"`
	Nature   Nature              `json:"nature,omitempty"`
	DateFrom Date                `json:"date_from,omitzero"`
	DateTo   Date                `json:"date_to,omitzero"` // inclusive
	Limit    int                 `json:"limit,omitempty"`
	Offset   int                 `json:"offset,omitempty"`
}
