package settings

import (
	"testing"

	"github.com/fekuna/prun-market-service/internal/apperr"
	"github.com/stretchr/testify/assert"
)

func TestResolve_order(t *testing.T) {
	explicit := Values{KeyDefaultCurrency: "AIC"}
	channel := Values{KeyDefaultCurrency: "NCC", KeyDefaultLocation: "MOR"}
	user := Values{KeyDefaultCurrency: "ICA", KeyDefaultLocation: "BEN", KeyDefaultPriceList: "KAWA"}

	v, src := Resolve(KeyDefaultCurrency, explicit, channel, user)
	assert.Equal(t, "AIC", v)
	assert.Equal(t, SourceExplicit, src)

	v, src = Resolve(KeyDefaultLocation, explicit, channel, user)
	assert.Equal(t, "MOR", v)
	assert.Equal(t, SourceChannel, src)

	v, src = Resolve(KeyDefaultPriceList, explicit, channel, user)
	assert.Equal(t, "KAWA", v)
	assert.Equal(t, SourceUser, src)

	v, src = Resolve(KeyReservationExpiryHours, explicit, channel, user)
	assert.Equal(t, "0", v)
	assert.Equal(t, SourceSystem, src)
}

func TestResolve_emptyValuesAreUnset(t *testing.T) {
	v, src := Resolve(KeyDefaultCurrency, Values{KeyDefaultCurrency: ""}, nil, Values{KeyDefaultCurrency: "ICA"})
	assert.Equal(t, "ICA", v)
	assert.Equal(t, SourceUser, src)
}

func TestResolveAll_coversEveryKey(t *testing.T) {
	r := ResolveAll(nil, nil, Values{KeyReservationExpiryHours: "48"})
	for _, k := range Keys {
		assert.NotEmpty(t, r.Source(k), k)
	}
	assert.Equal(t, 48, r.Int(KeyReservationExpiryHours))
	assert.Equal(t, "CIS", r.Get(KeyDefaultCurrency))
}

func TestResolved_IntFallsBackOnGarbage(t *testing.T) {
	r := ResolveAll(nil, nil, Values{KeyReservationExpiryHours: "soon"})
	assert.Equal(t, 0, r.Int(KeyReservationExpiryHours))
}

func TestValidate(t *testing.T) {
	tests := []struct {
		key   Key
		value string
		ok    bool
	}{
		{KeyDefaultCurrency, "AIC", true},
		{KeyDefaultCurrency, "aic", false},
		{KeyReservationExpiryHours, "24", true},
		{KeyReservationExpiryHours, "-1", false},
		{KeyReservationExpiryHours, "9999", false},
		{KeyListingVisibility, "partner", true},
		{KeyListingVisibility, "public", false},
		{KeyDefaultLocation, "", true},
		{Key("theme"), "dark", false},
	}
	for _, tt := range tests {
		err := Validate(tt.key, tt.value)
		if tt.ok {
			assert.NoError(t, err, "%s=%s", tt.key, tt.value)
		} else {
			assert.True(t, apperr.Is(err, apperr.KindValidation), "%s=%s", tt.key, tt.value)
		}
	}
}
