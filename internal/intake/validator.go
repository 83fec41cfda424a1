// Package intake validates checkout billing forms.
package intake

import (
	"regexp"
	"strings"

	"github.com/Lixing-Zhang/kart-challenge/storefront/internal/models"
	"github.com/go-playground/validator/v10"
)

// Field names used as FieldErrorSet keys and form input names
const (
	FieldFullName   = "fullName"
	FieldAddress    = "address"
	FieldEmail      = "email"
	FieldPhone      = "phone"
	FieldCreditCard = "creditCard"
)

// Rule binds a form field to a validator tag and the message shown when the
// tag fails
type Rule struct {
	Field   string
	Tag     string
	Message string
	Value   func(models.BillingForm) string
}

// patterns are registered as custom validator tags
var patterns = map[string]*regexp.Regexp{
	"letters_spaces": regexp.MustCompile(`^[A-Za-z ]+$`),
	// any Unicode space separator or BOM counts as whitespace
	"simple_email": regexp.MustCompile(`^[^\s\p{Z}\x{FEFF}@]+@[^\s\p{Z}\x{FEFF}@]+\.[^\s\p{Z}\x{FEFF}@]+$`),
	"dashed_phone": regexp.MustCompile(`^\d{3}-\d{3}-\d{4}$`),
	// 19 digits exactly, kept as-is rather than the usual 13-19 range
	"card_digits": regexp.MustCompile(`^\d{19}$`),
}

// DefaultRules is the checkout form rule table, evaluated in order
var DefaultRules = []Rule{
	{
		Field:   FieldFullName,
		Tag:     "required,letters_spaces",
		Message: "Full name should only contain letters and spaces",
		Value:   func(f models.BillingForm) string { return f.FullName },
	},
	{
		Field:   FieldAddress,
		Tag:     "required,nonblank",
		Message: "Address is required",
		Value:   func(f models.BillingForm) string { return f.Address },
	},
	{
		Field:   FieldEmail,
		Tag:     "required,simple_email",
		Message: "Please enter a valid email address",
		Value:   func(f models.BillingForm) string { return f.Email },
	},
	{
		Field:   FieldPhone,
		Tag:     "required,dashed_phone",
		Message: "Phone number should be in the format xxx-xxx-xxxx",
		Value:   func(f models.BillingForm) string { return f.Phone },
	},
	{
		Field:   FieldCreditCard,
		Tag:     "required,card_digits",
		Message: "Credit card should be 19 digits long",
		Value:   func(f models.BillingForm) string { return f.CreditCard },
	},
}

// Validator checks billing forms against a rule table
type Validator struct {
	validate *validator.Validate
	rules    []Rule
}

// New creates a validator using DefaultRules
func New() *Validator {
	return NewWithRules(DefaultRules)
}

// NewWithRules creates a validator for a custom rule table
func NewWithRules(rules []Rule) *Validator {
	v := validator.New()
	for tag, re := range patterns {
		re := re
		// tags are fixed at build time so registration cannot fail
		_ = v.RegisterValidation(tag, func(fl validator.FieldLevel) bool {
			return re.MatchString(fl.Field().String())
		})
	}
	_ = v.RegisterValidation("nonblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})

	return &Validator{validate: v, rules: rules}
}

// Validate runs every rule and collects all failures. Fields are independent:
// one failing field never hides another.
func (v *Validator) Validate(form models.BillingForm) models.FieldErrorSet {
	errs := models.FieldErrorSet{}
	for _, rule := range v.rules {
		if _, failed := errs[rule.Field]; failed {
			continue
		}
		if err := v.validate.Var(rule.Value(form), rule.Tag); err != nil {
			errs[rule.Field] = rule.Message
		}
	}
	return errs
}
