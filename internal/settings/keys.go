package settings

import (
	"regexp"
	"strconv"

	"github.com/fekuna/prun-market-service/internal/apperr"
)

// Key is one of the fixed setting names. Storage accepts nothing else.
type Key string

const (
	KeyDefaultCurrency        Key = "default_currency"
	KeyDefaultLocation        Key = "default_location"
	KeyDefaultPriceList       Key = "default_price_list"
	KeyReservationExpiryHours Key = "reservation_expiry_hours"
	KeyListingVisibility      Key = "listing_visibility"
)

var Keys = []Key{
	KeyDefaultCurrency,
	KeyDefaultLocation,
	KeyDefaultPriceList,
	KeyReservationExpiryHours,
	KeyListingVisibility,
}

const maxExpiryHours = 24 * 30

var systemDefaults = Values{
	KeyDefaultCurrency:        "CIS",
	KeyDefaultLocation:        "",
	KeyDefaultPriceList:       "",
	KeyReservationExpiryHours: "0",
	KeyListingVisibility:      "all",
}

var currencyPattern = regexp.MustCompile(`^[A-Z]{3}$`)

// Values maps keys to raw string values. Empty strings count as unset.
type Values map[Key]string

func (k Key) IsValid() bool {
	_, ok := systemDefaults[k]
	return ok
}

// Validate checks value against the key's domain.
func Validate(key Key, value string) error {
	if !key.IsValid() {
		return apperr.Validationf("unknown setting %q", key)
	}
	if value == "" {
		return nil
	}

	switch key {
	case KeyDefaultCurrency:
		if !currencyPattern.MatchString(value) {
			return apperr.Validationf("currency must be a 3-letter code, got %q", value)
		}
	case KeyReservationExpiryHours:
		n, err := strconv.Atoi(value)
		if err != nil || n < 0 || n > maxExpiryHours {
			return apperr.Validationf("reservation expiry must be between 0 and %d hours", maxExpiryHours)
		}
	case KeyListingVisibility:
		switch value {
		case "all", "internal", "partner":
		default:
			return apperr.Validationf("visibility must be all, internal or partner, got %q", value)
		}
	}
	return nil
}
