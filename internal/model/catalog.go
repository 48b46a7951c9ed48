package model

import "time"

// Producer is a salesperson who brings business to the brokerage.
type Producer struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Name      string    `json:"name"`
	Email     string    `json:"email,omitempty"`
	Phone     string    `json:"phone,omitempty"`
	CPFCNPJ   string    `json:"cpf_cnpj,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Company is an insurer (seguradora).
type Company struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// Ramo is a line of insurance (auto, vida, residencial, ...).
type Ramo struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Name      string    `json:"nome"`
	CreatedAt time.Time `json:"created_at"`
}
