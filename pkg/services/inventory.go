package services

import (
	"regexp"
	"strconv"
	"strings"
)

// InventoryService normalizes website-inventory fields as they arrive from
// spreadsheets and scraped listings: prices like "$1,800", traffic figures
// like "74K" or "1.2M", yes/no flags and messy website URLs. Executors use it
// when importing or exporting inventory rows; it carries no state.
type InventoryService struct{}

// NewInventoryService creates an inventory helper service.
func NewInventoryService() *InventoryService {
	return &InventoryService{}
}

var (
	schemePattern = regexp.MustCompile(`^https?://`)
	wwwPattern    = regexp.MustCompile(`^www\.`)
)

// ParsePrice parses a price like "$75" or "$1,800" to a decimal value.
// Unparseable input yields 0.
func (s *InventoryService) ParsePrice(raw string) float64 {
	cleaned := strings.TrimSpace(strings.ReplaceAll(strings.ReplaceAll(raw, "$", ""), ",", ""))
	if cleaned == "" {
		return 0
	}

	value, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0
	}

	return value
}

// ParseTraffic parses a traffic figure like "74K", "158.1K" or "1.2M" to an
// absolute count. Unparseable input yields 0.
func (s *InventoryService) ParseTraffic(raw string) int64 {
	cleaned := strings.ToUpper(strings.TrimSpace(strings.ReplaceAll(raw, ",", "")))
	if cleaned == "" {
		return 0
	}

	multiplier := float64(1)

	switch {
	case strings.HasSuffix(cleaned, "M"):
		multiplier = 1_000_000
		cleaned = strings.TrimSuffix(cleaned, "M")
	case strings.HasSuffix(cleaned, "K"):
		multiplier = 1_000
		cleaned = strings.TrimSuffix(cleaned, "K")
	}

	value, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0
	}

	return int64(value * multiplier)
}

// ParseBool parses Yes/No/- style flags.
func (s *InventoryService) ParseBool(raw string) bool {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "yes", "true", "1":
		return true
	default:
		return false
	}
}

// ParseDofollow parses the do-follow field. Empty and unknown values default
// to dofollow, since that is the common case for listed sites.
func (s *InventoryService) ParseDofollow(raw string) bool {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "no", "nofollow", "false", "0", "-":
		return false
	default:
		return true
	}
}

// CleanWebsite reduces a URL to its bare domain: no scheme, no leading www,
// no trailing slash. Empty input yields an empty string.
func (s *InventoryService) CleanWebsite(raw string) string {
	cleaned := strings.TrimSpace(raw)
	if cleaned == "" {
		return ""
	}

	cleaned = schemePattern.ReplaceAllString(cleaned, "")
	cleaned = wwwPattern.ReplaceAllString(cleaned, "")

	return strings.TrimRight(cleaned, "/")
}
