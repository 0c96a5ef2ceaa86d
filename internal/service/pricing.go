package service

import "github.com/vinsight/vinsight/internal/domain"

// PackagePrice is one purchasable report tier in a given currency.
type PackagePrice struct {
	ID       string  `json:"id"`
	Currency string  `json:"currency"`
	Symbol   string  `json:"symbol"`
	Amount   float64 `json:"amount"`
}

type tierPricing struct {
	Basic    float64
	Standard float64
	Premium  float64
}

// Package tiers.
const (
	PackageBasic    = "basic"
	PackageStandard = "standard"
	PackagePremium  = "premium"
)

// pricingMap holds the fixed per-currency price list. Unknown currencies
// fall back to USD.
var pricingMap = map[string]tierPricing{
	"USD": {Basic: 40, Standard: 60, Premium: 80},
	"EUR": {Basic: 27.99, Standard: 46.99, Premium: 65.99},
	"GBP": {Basic: 24.99, Standard: 41.99, Premium: 58.99},
	"AUD": {Basic: 44.99, Standard: 74.99, Premium: 104.99},
	"PLN": {Basic: 119.99, Standard: 199.99, Premium: 279.99},
	"SEK": {Basic: 299.99, Standard: 499.99, Premium: 699.99},
	"AED": {Basic: 109.99, Standard: 183.99, Premium: 257.99},
	"MDL": {Basic: 539.99, Standard: 899.99, Premium: 1259.99},
	"BAM": {Basic: 54.99, Standard: 91.99, Premium: 128.99},
	"RON": {Basic: 139.99, Standard: 233.99, Premium: 327.99},
	"DKK": {Basic: 209.99, Standard: 349.99, Premium: 489.99},
	"CHF": {Basic: 27.99, Standard: 46.99, Premium: 65.99},
	"CZK": {Basic: 699.99, Standard: 1166.99, Premium: 1633.99},
	"BGN": {Basic: 54.99, Standard: 91.99, Premium: 128.99},
	"HUF": {Basic: 10999.99, Standard: 18333.99, Premium: 25666.99},
	"UAH": {Basic: 1199.99, Standard: 1999.99, Premium: 2799.99},
}

var currencySymbols = map[string]string{
	"USD": "$",
	"EUR": "€",
	"GBP": "£",
	"AUD": "A$",
	"PLN": "zł",
	"SEK": "kr",
	"AED": "د.إ",
	"MDL": "L",
	"BAM": "KM",
	"RON": "lei",
	"DKK": "kr",
	"CHF": "CHF",
	"CZK": "Kč",
	"BGN": "лв",
	"HUF": "Ft",
	"UAH": "₴",
}

// ValidPackage reports whether id names a purchasable tier.
func ValidPackage(id string) bool {
	switch id {
	case PackageBasic, PackageStandard, PackagePremium:
		return true
	}
	return false
}

// Packages returns the three report tiers priced in the given currency.
// Unknown currencies are served in USD.
func Packages(currency string) []PackagePrice {
	pricing, ok := pricingMap[currency]
	if !ok {
		currency = "USD"
		pricing = pricingMap["USD"]
	}
	symbol := currencySymbols[currency]

	return []PackagePrice{
		{ID: PackageBasic, Currency: currency, Symbol: symbol, Amount: pricing.Basic},
		{ID: PackageStandard, Currency: currency, Symbol: symbol, Amount: pricing.Standard},
		{ID: PackagePremium, Currency: currency, Symbol: symbol, Amount: pricing.Premium},
	}
}

// PackagePriceFor returns the list price for one tier in one currency.
func PackagePriceFor(packageID, currency string) (float64, error) {
	if !ValidPackage(packageID) {
		return 0, domain.Errorf(domain.EINVALID, "pricing.lookup", "unknown package: %s", packageID)
	}

	pricing, ok := pricingMap[currency]
	if !ok {
		pricing = pricingMap["USD"]
	}

	switch packageID {
	case PackageBasic:
		return pricing.Basic, nil
	case PackageStandard:
		return pricing.Standard, nil
	default:
		return pricing.Premium, nil
	}
}
