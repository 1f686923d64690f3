package notify

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/integration"
	"github.com/storefront/backend/internal/domain/order"
	"golang.org/x/text/cases"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var (
	printer = message.NewPrinter(language.English)
	titler  = cases.Title(language.English)
)

// FormatMoney renders amount in the given ISO currency, e.g. "$ 12.50".
// Unknown currency codes fall back to "<amount> <code>".
func FormatMoney(amount decimal.Decimal, code string) string {
	unit, err := currency.ParseISO(code)
	if err != nil {
		return fmt.Sprintf("%s %s", amount.StringFixed(2), strings.ToUpper(code))
	}
	return printer.Sprint(currency.Symbol(unit.Amount(amount.InexactFloat64())))
}

// FormatOrderMessage describes an order event for a customer conversation
func FormatOrderMessage(n integration.Notification, currencyCode string) string {
	o := n.Order
	var b strings.Builder

	switch n.EventType {
	case order.EventTypeOrderCreated:
		fmt.Fprintf(&b, "Thank you for your order %s!", o.OrderNumber)
	case order.EventTypeOrderPaid:
		fmt.Fprintf(&b, "Payment received for order %s.", o.OrderNumber)
	default:
		fmt.Fprintf(&b, "Order %s is now %s.", o.OrderNumber, titler.String(string(o.Status)))
	}

	fmt.Fprintf(&b, "\nStatus: %s", titler.String(string(o.Status)))
	fmt.Fprintf(&b, "\nTotal: %s", FormatMoney(o.Total, currencyCode))
	if o.TrackingNumber != "" {
		fmt.Fprintf(&b, "\nTracking number: %s", o.TrackingNumber)
	}
	return b.String()
}
