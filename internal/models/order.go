package models

import "github.com/shopspring/decimal"

// BillingForm holds the raw checkout form values as submitted
type BillingForm struct {
	FullName   string `json:"fullName"`
	Address    string `json:"address"`
	Email      string `json:"email"`
	Phone      string `json:"phone"`
	CreditCard string `json:"creditCard"`
}

// OrderRecord is the finalized purchase built from a selected item and a
// validated billing form
type OrderRecord struct {
	Item        Item   `json:"item"`
	FullName    string `json:"fullName"`
	Address     string `json:"address"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	CreditCard  string `json:"creditCard"`
	OrderNumber int    `json:"orderNumber"`
}

// CardLast4 returns the trailing four characters of the card number
func (o OrderRecord) CardLast4() string {
	if len(o.CreditCard) <= 4 {
		return o.CreditCard
	}
	return o.CreditCard[len(o.CreditCard)-4:]
}

// Confirmation is what the confirmation screen shows for a taken order.
// The full card number is intentionally absent.
type Confirmation struct {
	OrderNumber   int             `json:"orderNumber"`
	Item          Item            `json:"item"`
	AmountCharged decimal.Decimal `json:"amountCharged"`
	CardLast4     string          `json:"cardLast4"`
	FullName      string          `json:"fullName"`
	Address       string          `json:"address"`
	Email         string          `json:"email"`
	Phone         string          `json:"phone"`
}

// NewConfirmation derives the confirmation view of an order
func NewConfirmation(o OrderRecord) Confirmation {
	return Confirmation{
		OrderNumber:   o.OrderNumber,
		Item:          o.Item,
		AmountCharged: o.Item.ActualPrice,
		CardLast4:     o.CardLast4(),
		FullName:      o.FullName,
		Address:       o.Address,
		Email:         o.Email,
		Phone:         o.Phone,
	}
}

// FieldErrorSet maps a form field name to a human readable message.
// An empty set means the form is valid.
type FieldErrorSet map[string]string

// Empty reports whether no field failed
func (s FieldErrorSet) Empty() bool {
	return len(s) == 0
}
