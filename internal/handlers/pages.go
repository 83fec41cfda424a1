package handlers

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"

	"github.com/Lixing-Zhang/kart-challenge/storefront/internal/catalog"
	"github.com/Lixing-Zhang/kart-challenge/storefront/internal/intake"
	"github.com/Lixing-Zhang/kart-challenge/storefront/internal/models"
	"github.com/Lixing-Zhang/kart-challenge/storefront/internal/service"
	"github.com/shopspring/decimal"
)

//go:embed templates/*.html
var templateFS embed.FS

var templateFuncs = template.FuncMap{
	"money": func(d decimal.Decimal) string { return "$" + d.StringFixed(2) },
}

// PageHandler renders the three storefront screens as HTML
type PageHandler struct {
	catalog  *service.CatalogService
	checkout *service.CheckoutService
	pages    map[string]*template.Template
	logger   *slog.Logger
}

// NewPageHandler parses the page templates
func NewPageHandler(catalogSvc *service.CatalogService, checkoutSvc *service.CheckoutService, logger *slog.Logger) (*PageHandler, error) {
	pages := make(map[string]*template.Template)
	for _, name := range []string{"catalog", "checkout", "confirmation"} {
		t, err := template.New(name).Funcs(templateFuncs).ParseFS(templateFS, "templates/layout.html", "templates/"+name+".html")
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s template: %w", name, err)
		}
		pages[name] = t
	}

	return &PageHandler{
		catalog:  catalogSvc,
		checkout: checkoutSvc,
		pages:    pages,
		logger:   logger,
	}, nil
}

type catalogPage struct {
	State    catalog.State
	SortKeys []catalog.SortKey
}

type checkoutPage struct {
	Item   *models.Item
	Form   models.BillingForm
	Errors models.FieldErrorSet
	Fields []formField
}

type formField struct {
	Name        string
	Label       string
	Type        string
	Placeholder string
	Value       string
	Error       string
}

type confirmationPage struct {
	Confirmation *models.Confirmation
}

// Catalog handles GET /
// A plain visit regenerates the catalog; filter and sort parameters re-query
// the current one.
func (h *PageHandler) Catalog(w http.ResponseWriter, r *http.Request) {
	sess, ok := requireSession(w, r, h.logger)
	if !ok {
		return
	}

	q := r.URL.Query()
	if !q.Has("filter") && !q.Has("sort") {
		h.render(w, http.StatusOK, "catalog", catalogPage{
			State:    h.catalog.Visit(r.Context(), sess),
			SortKeys: catalog.SortKeys,
		})
		return
	}

	status := http.StatusOK
	state, err := h.catalog.Query(r.Context(), sess, q.Get("filter"), q.Get("sort"))
	if err != nil {
		h.logger.Warn("invalid catalog query", "sort", q.Get("sort"), "error", err)
		status = http.StatusBadRequest
		state, _ = h.catalog.Query(r.Context(), sess, q.Get("filter"), "")
	}
	h.render(w, status, "catalog", catalogPage{State: state, SortKeys: catalog.SortKeys})
}

// Buy handles POST /buy/{itemId}
func (h *PageHandler) Buy(w http.ResponseWriter, r *http.Request) {
	sess, ok := requireSession(w, r, h.logger)
	if !ok {
		return
	}

	id, err := itemIDParam(r)
	if err != nil {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	if _, err := h.catalog.Select(r.Context(), sess, id); err != nil {
		if !errors.Is(err, service.ErrItemNotFound) {
			h.logger.Error("failed to select item", "itemId", id, "error", err)
		}
		// stale page after the catalog was regenerated
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, "/checkout", http.StatusSeeOther)
}

// Checkout handles GET /checkout
func (h *PageHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	sess, ok := requireSession(w, r, h.logger)
	if !ok {
		return
	}

	item, err := h.checkout.Begin(r.Context(), sess)
	if err != nil {
		h.redirectHome(w, r, err)
		return
	}
	h.render(w, http.StatusOK, "checkout", newCheckoutPage(item, models.BillingForm{}, nil))
}

// SubmitCheckout handles POST /checkout
func (h *PageHandler) SubmitCheckout(w http.ResponseWriter, r *http.Request) {
	sess, ok := requireSession(w, r, h.logger)
	if !ok {
		return
	}

	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form", http.StatusBadRequest)
		return
	}
	form := models.BillingForm{
		FullName:   r.PostForm.Get(intake.FieldFullName),
		Address:    r.PostForm.Get(intake.FieldAddress),
		Email:      r.PostForm.Get(intake.FieldEmail),
		Phone:      r.PostForm.Get(intake.FieldPhone),
		CreditCard: r.PostForm.Get(intake.FieldCreditCard),
	}

	_, err := h.checkout.Submit(r.Context(), sess, form)
	if err == nil {
		http.Redirect(w, r, "/confirmation", http.StatusSeeOther)
		return
	}

	var verr *service.ValidationError
	if errors.As(err, &verr) {
		item, beginErr := h.checkout.Begin(r.Context(), sess)
		if beginErr != nil {
			h.redirectHome(w, r, beginErr)
			return
		}
		h.render(w, http.StatusUnprocessableEntity, "checkout", newCheckoutPage(item, form, verr.Fields))
		return
	}
	h.redirectHome(w, r, err)
}

// Confirmation handles GET /confirmation
func (h *PageHandler) Confirmation(w http.ResponseWriter, r *http.Request) {
	sess, ok := requireSession(w, r, h.logger)
	if !ok {
		return
	}

	conf, err := h.checkout.Confirm(r.Context(), sess)
	if err != nil {
		if !errors.Is(err, service.ErrMissingOrder) {
			h.logger.Error("failed to load order", "error", err)
		}
		h.render(w, http.StatusNotFound, "confirmation", confirmationPage{})
		return
	}
	h.render(w, http.StatusOK, "confirmation", confirmationPage{Confirmation: conf})
}

func (h *PageHandler) redirectHome(w http.ResponseWriter, r *http.Request, err error) {
	if !errors.Is(err, service.ErrMissingSelection) {
		h.logger.Error("checkout failed", "error", err)
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *PageHandler) render(w http.ResponseWriter, status int, page string, data interface{}) {
	var buf bytes.Buffer
	if err := h.pages[page].ExecuteTemplate(&buf, "layout", data); err != nil {
		h.logger.Error("failed to render page", "page", page, "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

func newCheckoutPage(item *models.Item, form models.BillingForm, errs models.FieldErrorSet) checkoutPage {
	return checkoutPage{
		Item:   item,
		Form:   form,
		Errors: errs,
		Fields: []formField{
			{intake.FieldFullName, "Full Name", "text", "Full Name", form.FullName, errs[intake.FieldFullName]},
			{intake.FieldAddress, "Address", "text", "Address", form.Address, errs[intake.FieldAddress]},
			{intake.FieldEmail, "Email", "email", "Email", form.Email, errs[intake.FieldEmail]},
			{intake.FieldPhone, "Phone", "tel", "Phone (xxx-xxx-xxxx)", form.Phone, errs[intake.FieldPhone]},
			{intake.FieldCreditCard, "Credit Card", "text", "Credit Card (19 digits)", form.CreditCard, errs[intake.FieldCreditCard]},
		},
	}
}
