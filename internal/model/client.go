package model

import "time"

// ClientStatus is the lifecycle state of a client record.
type ClientStatus string

const (
	ClientActive   ClientStatus = "Ativo"
	ClientInactive ClientStatus = "Inativo"
)

func (s ClientStatus) String() string {
	return string(s)
}

// IsValid checks whether the status is a known value.
func (s ClientStatus) IsValid() bool {
	switch s {
	case ClientActive, ClientInactive:
		return true
	}
	return false
}

// Client is a customer of the brokerage.
type Client struct {
	ID           string       `json:"id"`
	UserID       string       `json:"user_id"`
	Name         string       `json:"name"`
	Email        string       `json:"email,omitempty"`
	Phone        string       `json:"phone,omitempty"`
	CPFCNPJ      string       `json:"cpf_cnpj,omitempty"`
	BirthDate    Date         `json:"birth_date,omitzero"`
	Address      string       `json:"address,omitempty"`
	Status       ClientStatus `json:"status"`
	Observations string       `json:"observations,omitempty"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`
}

// ClientFilter holds criteria for querying clients.
type ClientFilter struct {
	UserID    string       `json:"user_id,omitempty"`
	Search    string       `json:"search,omitempty"` // matches name, email, phone or cpf_cnpj
	Status    ClientStatus `json:"status,omitempty"`
	CompanyID string       `json:"company_id,omitempty"` // clients with any policy at this insurer
	Ramo      string       `json:"ramo,omitempty"`       // clients with any policy of this line
	Limit     int          `json:"limit,omitempty"`
	Offset    int          `json:"offset,omitempty"`
}

// ClientKPIs summarises the client base for the dashboard.
type ClientKPIs struct {
	TotalActive         int     `json:"total_active"`
	NewClientsLast30d   int     `json:"new_clients_last_30d"`
	ClientsWithPolicies int     `json:"clients_with_policies"`
	TotalPoliciesValue  float64 `json:"total_policies_value"`
}
