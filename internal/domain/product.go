package domain

// Product represents a product in the storefront catalog.
// Records are loaded from a static JSON file and are immutable for the
// lifetime of the process.
type Product struct {
	ID             string          `json:"id" validate:"required,min=6,max=40,catalog_id"`
	Title          string          `json:"title" validate:"required,max=160"`
	Description    string          `json:"description" validate:"required,max=5000"`
	Images         []string        `json:"images" validate:"min=1,max=10,dive,https_url"`
	Price          Price           `json:"price"`
	PaymentMethods []PaymentMethod `json:"paymentMethods" validate:"min=1,dive"`
	Seller         Seller          `json:"seller"`
	Stock          int             `json:"stock" validate:"gte=0"`
	Rating         Rating          `json:"rating"`
	Flags          *Flags          `json:"flags,omitempty"`
}

// Price is a positive decimal amount with at most two fractional digits.
type Price struct {
	Amount   float64 `json:"amount" validate:"gt=0,price_precision"`
	Currency string  `json:"currency" validate:"oneof=MXN USD"`
}

// PaymentMethod is a display entry in the buy box.
type PaymentMethod struct {
	Label string `json:"label" validate:"required,max=40"`
	Note  string `json:"note,omitempty" validate:"max=100"`
}

// Seller identifies the merchant offering the product.
type Seller struct {
	ID         string  `json:"id" validate:"required,min=6,max=40,catalog_id"`
	Name       string  `json:"name" validate:"required"`
	Rating     float64 `json:"rating" validate:"gte=0,lte=5"`
	Sales      int     `json:"sales" validate:"gte=0"`
	IsOfficial bool    `json:"isOfficial"`
	Location   string  `json:"location,omitempty"`
}

// Rating aggregates customer reviews. Average moves in 0.1 steps.
type Rating struct {
	Average float64 `json:"average" validate:"gte=0,lte=5,rating_step"`
	Count   int     `json:"count" validate:"gte=0"`
}

// Flags are optional presentation toggles. No business logic depends on
// them beyond display.
type Flags struct {
	Full         bool `json:"full,omitempty"`
	FreeShipping bool `json:"freeShipping,omitempty"`
}

// Available reports whether the product can be purchased. Stock zero is
// the sentinel for "unavailable" and gates buy actions in the frontend.
func (p *Product) Available() bool {
	return p.Stock > 0
}
