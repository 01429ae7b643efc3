package pedido

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// objeto is a JSON object whose members are decoded lazily.
type objeto map[string]json.RawMessage

func decodeObjeto(raw json.RawMessage) (objeto, bool) {
	if !ehTipo(raw, '{') {
		return nil, false
	}
	var o objeto
	if err := json.Unmarshal(raw, &o); err != nil {
		return nil, false
	}
	return o, true
}

// valor returns the first member present under any of the given keys.
// A member holding JSON null is present.
func (o objeto) valor(chaves ...string) (json.RawMessage, bool) {
	for _, k := range chaves {
		if v, ok := o[k]; ok {
			return v, true
		}
	}
	return nil, false
}

// texto returns the member as a string and whether it is a JSON string.
func (o objeto) texto(chaves ...string) (string, bool) {
	v, ok := o.valor(chaves...)
	if !ok || !ehTipo(v, '"') {
		return "", false
	}
	var s string
	if err := json.Unmarshal(v, &s); err != nil {
		return "", false
	}
	return s, true
}

// textoOu is texto with a fallback for absent, null or non-string members.
func (o objeto) textoOu(padrao string, chaves ...string) string {
	if s, ok := o.texto(chaves...); ok && strings.TrimSpace(s) != "" {
		return strings.TrimSpace(s)
	}
	return padrao
}

// filho returns a nested object member.
func (o objeto) filho(chaves ...string) (objeto, bool) {
	v, ok := o.valor(chaves...)
	if !ok {
		return nil, false
	}
	return decodeObjeto(v)
}

func (o objeto) lista(chaves ...string) []json.RawMessage {
	v, ok := o.valor(chaves...)
	if !ok || !ehTipo(v, '[') {
		return nil
	}
	var l []json.RawMessage
	if err := json.Unmarshal(v, &l); err != nil {
		return nil
	}
	return l
}

func ehTipo(raw json.RawMessage, inicio byte) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) > 0 && raw[0] == inicio
}

// escalar decodes a JSON scalar keeping numbers as json.Number.
func escalar(raw json.RawMessage) interface{} {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v interface{}
	if err := dec.Decode(&v); err != nil {
		return nil
	}
	return v
}

// Amounts stored in decimal(12,2) columns stay below valorLimite. The exponent
// is checked first since comparing or rounding "1e400000000" expands every digit.
const (
	expoenteMin = -30
	expoenteMax = 10
)

var valorLimite = decimal.New(1, 10)

// DentroDoLimite reports whether d can be stored as a decimal(12,2) amount
// without expanding a huge exponent.
func DentroDoLimite(d decimal.Decimal) bool {
	if e := d.Exponent(); e < expoenteMin || e > expoenteMax {
		return false
	}
	return d.Abs().LessThan(valorLimite)
}

// numero coerces a JSON number or numeric string to a decimal. Strings may use
// a decimal comma ("40,50"). Values outside the storable range are rejected.
func numero(raw json.RawMessage) (decimal.Decimal, bool) {
	var s string
	switch v := escalar(raw).(type) {
	case json.Number:
		s = v.String()
	case string:
		s = strings.TrimSpace(v)
		if strings.Contains(s, ",") && !strings.Contains(s, ".") {
			s = strings.Replace(s, ",", ".", 1)
		}
	default:
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(s)
	if err != nil || !DentroDoLimite(d) {
		return decimal.Zero, false
	}
	return d, true
}

// inteiro coerces a JSON number or numeric string to an int, truncating fractions.
func inteiro(raw json.RawMessage) (int, bool) {
	switch v := escalar(raw).(type) {
	case json.Number:
		if i, err := v.Int64(); err == nil {
			return int(i), true
		}
		if f, err := v.Float64(); err == nil {
			return int(f), true
		}
	case string:
		s := strings.TrimSpace(v)
		if i, err := strconv.Atoi(s); err == nil {
			return i, true
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return int(f), true
		}
	}
	return 0, false
}
