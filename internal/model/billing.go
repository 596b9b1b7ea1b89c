package model

import "fmt"

// InvoiceStatus is the lifecycle state of an invoice.
type InvoiceStatus string

const (
	InvoicePaid      InvoiceStatus = "paid"
	InvoicePending   InvoiceStatus = "pending"
	InvoiceOverdue   InvoiceStatus = "overdue"
	InvoiceCancelled InvoiceStatus = "cancelled"
)

// IsValid checks whether the status is a known value.
func (s InvoiceStatus) IsValid() bool {
	switch s {
	case InvoicePaid, InvoicePending, InvoiceOverdue, InvoiceCancelled:
		return true
	}
	return false
}

// InvoiceItem is one billed line.
type InvoiceItem struct {
	Description string  `json:"description"`
	Quantity    int     `json:"quantity"`
	UnitPrice   float64 `json:"unitPrice"`
	Total       float64 `json:"total"`
}

// Invoice is a bill issued to a client.
type Invoice struct {
	ID         string        `json:"id"`
	Number     string        `json:"number"`
	ClientID   string        `json:"clientId"`
	ClientName string        `json:"clientName"`
	Amount     float64       `json:"amount"`
	Status     InvoiceStatus `json:"status"`
	DueDate    Date          `json:"dueDate"`
	PaidDate   *Date         `json:"paidDate,omitempty"`
	Items      []InvoiceItem `json:"items"`
	CreatedAt  Date          `json:"createdAt"`
}

// PaymentType distinguishes cards from bank accounts.
type PaymentType string

const (
	PaymentCard PaymentType = "card"
	PaymentBank PaymentType = "bank"
)

// PaymentMethod is a stored way of paying invoices.
type PaymentMethod struct {
	ID          string      `json:"id"`
	Type        PaymentType `json:"type"`
	Last4       string      `json:"last4"`
	Brand       string      `json:"brand"`
	ExpiryMonth int         `json:"expiryMonth"`
	ExpiryYear  int         `json:"expiryYear"`
	IsDefault   bool        `json:"isDefault"`
	IsActive    bool        `json:"isActive"`
}

// Expiry formats the expiry as MM/YYYY.
func (p *PaymentMethod) Expiry() string {
	return fmt.Sprintf("%02d/%d", p.ExpiryMonth, p.ExpiryYear)
}

// ExpiryKey orders payment methods by expiry.
func (p *PaymentMethod) ExpiryKey() int {
	return p.ExpiryYear*100 + p.ExpiryMonth
}

// PaymentForm is the card entry payload.
type PaymentForm struct {
	CardNumber     string `json:"cardNumber"`
	ExpiryMonth    string `json:"expiryMonth"`
	ExpiryYear     string `json:"expiryYear"`
	CVV            string `json:"cvv"`
	CardholderName string `json:"cardholderName"`
}

// BillingStats is the revenue summary on the billing screen.
type BillingStats struct {
	TotalRevenue        float64 `json:"totalRevenue"`
	MonthlyRevenue      float64 `json:"monthlyRevenue"`
	OutstandingInvoices int     `json:"outstandingInvoices"`
	OverdueAmount       float64 `json:"overdueAmount"`
	ActiveSubscriptions int     `json:"activeSubscriptions"`
}
