package event

import (
	"errors"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

var ErrEventNotFound = errors.New("event not found")

// DefaultPrice is stored for events created without a price; it marks the event as free.
const DefaultPrice = "0"

type Event struct {
	Id          int
	Title       string
	Description *string
	Date        time.Time
	Location    string
	Category    string
	// Price is a decimal amount kept as text, e.g. "0" or "19.99".
	Price     string
	ImageUrl  *string
	Organizer string
	// Attendees is the number of RSVPs with status "going".
	Attendees int
	CreatedAt time.Time
}

// PriceValue parses Price. Text that does not parse counts as zero, so such events
// are free.
func (e Event) PriceValue() decimal.Decimal {
	if e.Price == "" {
		return decimal.Zero
	}
	price, err := decimal.NewFromString(e.Price)
	if err != nil {
		return decimal.Zero
	}
	return price
}

func (e Event) IsPaid() bool {
	return e.PriceValue().IsPositive()
}

// NormalizePrice returns the canonical text of a decimal price ("20.00" becomes "20").
// Empty input yields DefaultPrice.
func NormalizePrice(price string) (string, error) {
	if strings.TrimSpace(price) == "" {
		return DefaultPrice, nil
	}
	d, err := decimal.NewFromString(strings.TrimSpace(price))
	if err != nil {
		return "", err
	}
	return d.String(), nil
}

type Category struct {
	Id    string
	Label string
}

// Categories lists the categories offered when creating and browsing events.
var Categories = []Category{
	{Id: "technology", Label: "Technology"},
	{Id: "business", Label: "Business"},
	{Id: "health", Label: "Health"},
	{Id: "sports", Label: "Sports"},
	{Id: "arts", Label: "Arts"},
	{Id: "music", Label: "Music"},
}

// CategoryLabel returns the display label of a category id. Unknown ids are
// capitalized as-is.
func CategoryLabel(id string) string {
	if id == AllCategories {
		return "All Events"
	}
	for _, c := range Categories {
		if c.Id == id {
			return c.Label
		}
	}
	first, size := utf8.DecodeRuneInString(id)
	if size == 0 {
		return ""
	}
	return string(unicode.ToUpper(first)) + id[size:]
}
