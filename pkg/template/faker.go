package template

import (
	"fmt"
	"strings"
)

var (
	fakerFirstNames = []string{"John", "Jane", "Bob", "Alice", "Charlie", "Diana", "Edward", "Fiona"}
	fakerLastNames  = []string{"Smith", "Doe", "Johnson", "Williams", "Brown", "Davis", "Miller", "Wilson"}
	fakerDomains    = []string{"example.com", "test.com", "mock.io", "demo.org"}
	fakerStreets    = []string{"Main St", "Oak Ave", "Elm St", "Park Blvd", "Cedar Ln", "Maple Dr", "Pine Rd", "Lake Way"}
	fakerCities     = []string{"New York", "Los Angeles", "Chicago", "Houston", "Phoenix", "Seattle", "Denver", "Boston"}
	fakerStates     = []string{"NY", "CA", "IL", "TX", "AZ", "WA", "CO", "MA"}
	fakerCompanies  = []string{"Acme Corp", "Globex Inc", "Initech", "Umbrella Corp", "Stark Industries", "Wayne Enterprises"}
	fakerWords      = []string{"alpha", "beta", "gamma", "delta", "epsilon", "zeta", "theta", "lambda", "sigma", "omega"}
	fakerSentences  = []string{
		"The quick brown fox jumps over the lazy dog.",
		"Lorem ipsum dolor sit amet.",
		"All systems nominal.",
		"Your order has been shipped.",
	}
	fakerCurrencyCodes = []string{"USD", "EUR", "GBP", "JPY", "CNY", "AUD", "CAD", "CHF"}
	fakerColors        = []string{"Crimson", "Azure", "Emerald", "Ivory", "Coral", "Indigo", "Amber", "Jade", "Teal"}

	fakerProductAdjectives = []string{"Rustic", "Elegant", "Handcrafted", "Sleek", "Practical", "Modern", "Vintage", "Compact"}
	fakerProductMaterials  = []string{"Steel", "Wooden", "Granite", "Rubber", "Cotton", "Leather", "Bamboo", "Ceramic"}
	fakerProductNouns      = []string{"Chair", "Table", "Lamp", "Keyboard", "Backpack", "Watch", "Wallet", "Mug"}
)

// Fake returns sample data of the given kind and whether the kind is known.
func (e *Engine) Fake(kind string) (string, bool) {
	switch kind {
	case "uuid":
		return e.uuid(), true
	case "boolean":
		return fmt.Sprint(e.intN(2) == 1), true
	case "name":
		return e.pick(fakerFirstNames) + " " + e.pick(fakerLastNames), true
	case "firstName":
		return e.pick(fakerFirstNames), true
	case "lastName":
		return e.pick(fakerLastNames), true
	case "email":
		return strings.ToLower(e.pick(fakerFirstNames)) + fmt.Sprint(e.intN(1000)) + "@" + e.pick(fakerDomains), true
	case "address":
		idx := e.intN(len(fakerCities))
		return fmt.Sprintf("%d %s, %s, %s %05d", e.intN(9999)+1, e.pick(fakerStreets), fakerCities[idx], fakerStates[idx], e.intN(99999)), true
	case "city":
		return e.pick(fakerCities), true
	case "phone":
		return fmt.Sprintf("+1-%03d-%03d-%04d", e.intN(900)+100, e.intN(900)+100, e.intN(10000)), true
	case "company":
		return e.pick(fakerCompanies), true
	case "word":
		return e.pick(fakerWords), true
	case "sentence":
		return e.pick(fakerSentences), true
	case "ipv4":
		return fmt.Sprintf("%d.%d.%d.%d", e.intN(256), e.intN(256), e.intN(256), e.intN(256)), true
	case "ipv6":
		groups := make([]string, 8)
		for i := range groups {
			groups[i] = fmt.Sprintf("%04x", e.intN(65536))
		}
		return strings.Join(groups, ":"), true
	case "credit_card":
		return e.creditCard(), true
	case "currency_code":
		return e.pick(fakerCurrencyCodes), true
	case "price":
		return fmt.Sprintf("%d.%02d", e.intN(999)+1, e.intN(100)), true
	case "color":
		return e.pick(fakerColors), true
	case "product_name":
		return e.pick(fakerProductAdjectives) + " " + e.pick(fakerProductMaterials) + " " + e.pick(fakerProductNouns), true
	case "url":
		return "https://" + e.pick(fakerDomains) + "/" + e.pick(fakerWords), true
	case "date":
		return fmt.Sprintf("20%02d-%02d-%02d", e.intN(30), e.intN(12)+1, e.intN(28)+1), true
	}
	return "", false
}

// creditCard generates a Luhn-valid 16-digit number with a Visa-like prefix.
func (e *Engine) creditCard() string {
	digits := make([]int, 16)
	digits[0] = 4
	for i := 1; i < 15; i++ {
		digits[i] = e.intN(10)
	}

	// Digits at even indices sit at odd positions from the right and are doubled.
	sum := 0
	for i := 0; i < 15; i++ {
		d := digits[i]
		if i%2 == 0 {
			d *= 2
			if d > 9 {
				d -= 9
			}
		}
		sum += d
	}
	digits[15] = (10 - (sum % 10)) % 10

	var sb strings.Builder
	for _, d := range digits {
		sb.WriteByte(byte('0' + d))
	}
	return sb.String()
}
