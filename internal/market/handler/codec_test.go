package handler

import (
	"math"
	"testing"

	"github.com/fekuna/prun-market-service/internal/apperr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/types/known/structpb"
)

func TestNum(t *testing.T) {
	tests := []struct {
		name  string
		value interface{}
		want  int
		ok    bool
	}{
		{"whole", 300, 300, true},
		{"negative whole", -5, -5, true},
		{"whole float", 12.0, 12, true},
		{"fraction", 2.7, 0, false},
		{"huge", 1e300, 0, false},
		{"just past int range", math.Pow(2, 63), 0, false},
		{"nan", math.NaN(), 0, false},
		{"infinity", math.Inf(1), 0, false},
		{"string", "10", 0, false},
		{"bool", true, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in, err := structpb.NewStruct(map[string]interface{}{"quantity": tt.value})
			require.NoError(t, err)

			got, err := num(in, "quantity")
			if !tt.ok {
				assert.True(t, apperr.Is(err, apperr.KindValidation), "got %v", err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestOptNum_absentOrNull(t *testing.T) {
	in, err := structpb.NewStruct(map[string]interface{}{"limit_quantity": nil})
	require.NoError(t, err)

	n, err := optNum(in, "limit_quantity")
	require.NoError(t, err)
	assert.Nil(t, n)

	n, err = optNum(in, "missing")
	require.NoError(t, err)
	assert.Nil(t, n)

	q, err := num(nil, "quantity")
	require.NoError(t, err)
	assert.Zero(t, q)
}

func TestMoney_rejectsNonFinite(t *testing.T) {
	in, err := structpb.NewStruct(map[string]interface{}{"price": math.Inf(-1)})
	require.NoError(t, err)

	_, err = money(in, "price")
	assert.True(t, apperr.Is(err, apperr.KindValidation))
}
