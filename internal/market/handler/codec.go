package handler

import (
	"encoding/json"
	"fmt"
	"math"
	"time"

	"github.com/fekuna/prun-market-service/internal/apperr"
	"github.com/shopspring/decimal"
	"google.golang.org/protobuf/types/known/structpb"
)

func field(in *structpb.Struct, key string) (*structpb.Value, bool) {
	if in == nil {
		return nil, false
	}
	v, ok := in.GetFields()[key]
	if !ok {
		return nil, false
	}
	if _, isNull := v.GetKind().(*structpb.Value_NullValue); isNull {
		return nil, false
	}
	return v, true
}

func str(in *structpb.Struct, key string) string {
	v, ok := field(in, key)
	if !ok {
		return ""
	}
	return v.GetStringValue()
}

func optStr(in *structpb.Struct, key string) *string {
	v, ok := field(in, key)
	if !ok {
		return nil
	}
	s := v.GetStringValue()
	return &s
}

// num reads a whole number. Fractions and values outside the int range are
// rejected instead of truncated.
func num(in *structpb.Struct, key string) (int, error) {
	n, err := optNum(in, key)
	if err != nil || n == nil {
		return 0, err
	}
	return *n, nil
}

func optNum(in *structpb.Struct, key string) (*int, error) {
	v, ok := field(in, key)
	if !ok {
		return nil, nil
	}
	k, isNumber := v.GetKind().(*structpb.Value_NumberValue)
	if !isNumber {
		return nil, apperr.Validationf("%s must be a whole number", key)
	}
	f := k.NumberValue
	if math.IsNaN(f) || math.IsInf(f, 0) || math.Trunc(f) != f || f < math.MinInt || f >= math.MaxInt {
		return nil, apperr.Validationf("%s must be a whole number", key)
	}
	n := int(f)
	return &n, nil
}

func boolean(in *structpb.Struct, key string) bool {
	v, ok := field(in, key)
	return ok && v.GetBoolValue()
}

func strList(in *structpb.Struct, key string) []string {
	v, ok := field(in, key)
	if !ok {
		return nil
	}
	var out []string
	for _, item := range v.GetListValue().GetValues() {
		out = append(out, item.GetStringValue())
	}
	return out
}

func structList(in *structpb.Struct, key string) []*structpb.Struct {
	v, ok := field(in, key)
	if !ok {
		return nil
	}
	var out []*structpb.Struct
	for _, item := range v.GetListValue().GetValues() {
		if sv := item.GetStructValue(); sv != nil {
			out = append(out, sv)
		}
	}
	return out
}

// money accepts either a JSON number or a decimal string.
func money(in *structpb.Struct, key string) (decimal.Decimal, error) {
	v, ok := field(in, key)
	if !ok {
		return decimal.Zero, nil
	}
	switch k := v.GetKind().(type) {
	case *structpb.Value_StringValue:
		d, err := decimal.NewFromString(k.StringValue)
		if err != nil {
			return decimal.Zero, apperr.Validationf("%s is not a number", key)
		}
		return d, nil
	case *structpb.Value_NumberValue:
		if math.IsNaN(k.NumberValue) || math.IsInf(k.NumberValue, 0) {
			return decimal.Zero, apperr.Validationf("%s is not a number", key)
		}
		return decimal.NewFromFloat(k.NumberValue), nil
	}
	return decimal.Zero, apperr.Validationf("%s is not a number", key)
}

func optTime(in *structpb.Struct, key string) (*time.Time, error) {
	v, ok := field(in, key)
	if !ok || v.GetStringValue() == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, v.GetStringValue())
	if err != nil {
		return nil, apperr.Validationf("%s must be an RFC 3339 timestamp", key)
	}
	return &t, nil
}

// toStruct converts v through its JSON form.
func toStruct(v interface{}) (*structpb.Struct, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode response: %w", err)
	}
	m := map[string]interface{}{}
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("encode response: %w", err)
	}
	return structpb.NewStruct(m)
}
