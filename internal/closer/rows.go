package closer

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/santif/monthly-close/internal/domain"
	"github.com/santif/monthly-close/internal/money"
)

// MissingLocationMarker is written into a registration row when an upload
// succeeded but returned no locator. It is never an empty string: the gap
// must be visible to the human reviewing the registry.
const MissingLocationMarker = "location_unavailable"

// BuildDebtRow assembles one debt-registry row:
// period, primary amount, secondary amount, rate, note.
func BuildDebtRow(period domain.Period, primary, secondary, rate decimal.Decimal, note string) []string {
	return []string{
		period.String(),
		money.Format(primary),
		money.Format(secondary),
		money.Format(rate),
		note,
	}
}

// BuildInvoiceRow assembles one invoice-registry row:
// issue date, period, entity, filename, document location, amounts.
func BuildInvoiceRow(issueDate time.Time, period domain.Period, entityName, filename, location string, primary, secondary decimal.Decimal) []string {
	return []string{
		issueDate.Format("2006-01-02"),
		period.String(),
		entityName,
		filename,
		location,
		money.Format(primary),
		money.Format(secondary),
	}
}
