package procurement

import (
	"fmt"
	"strings"

	"github.com/erp/procurement/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Line is a product line of a purchase order
type Line struct {
	ID          uuid.UUID
	Sequence    int
	ProductName string
	Description string
	Quantity    decimal.Decimal
	PriceUnit   decimal.Decimal
	Subtotal    decimal.Decimal
}

// LineInput describes a line to put on an order
type LineInput struct {
	ProductName string
	Description string
	Quantity    decimal.Decimal
	PriceUnit   decimal.Decimal
}

func newLine(seq int, in LineInput) (Line, error) {
	name := strings.TrimSpace(in.ProductName)
	if name == "" {
		return Line{}, shared.NewDomainError("INVALID_PRODUCT_NAME", "Product name cannot be empty")
	}
	return Line{
		ID:          uuid.New(),
		Sequence:    seq,
		ProductName: name,
		Description: strings.TrimSpace(in.Description),
		Quantity:    in.Quantity,
		PriceUnit:   in.PriceUnit,
		Subtotal:    in.Quantity.Mul(in.PriceUnit).Round(2),
	}, nil
}

// Validate checks the line's price and quantity
func (l Line) Validate() error {
	if l.PriceUnit.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_LINE_PRICE",
			fmt.Sprintf("Product '%s' must have a price greater than 0.", l.ProductName))
	}
	if l.Quantity.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_LINE_QUANTITY",
			fmt.Sprintf("Product '%s' must have a quantity greater than 0.", l.ProductName))
	}
	return nil
}
