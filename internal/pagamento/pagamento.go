// Package pagamento defines the canonical payment methods accepted by the caixa
// and the synonym table used to canonicalize free text coming from integrations.
package pagamento

import (
	"errors"
	"strings"
)

// Tipo is a canonical payment method. The zero value is not valid.
type Tipo string

const (
	Dinheiro      Tipo = "DINHEIRO"
	CartaoCredito Tipo = "CARTAO_CREDITO"
	CartaoDebito  Tipo = "CARTAO_DEBITO"
	Pix           Tipo = "PIX"
	VR            Tipo = "VR"
	Outro         Tipo = "OUTRO"
	Pendente      Tipo = "PENDENTE"
)

// Todos lists every canonical method in display order.
var Todos = []Tipo{Dinheiro, CartaoCredito, CartaoDebito, Pix, VR, Outro, Pendente}

// ErrTipoInvalido is returned by Parse for anything outside the canonical set.
var ErrTipoInvalido = errors.New("tipo de pagamento inválido")

// sinonimos maps upper-cased free text to a canonical value. Canonical values
// map to themselves through Valido and are not repeated here.
var sinonimos = map[string]Tipo{
	"CREDITO":       CartaoCredito,
	"CRÉDITO":       CartaoCredito,
	"CARTAO":        CartaoCredito,
	"CARTÃO":        CartaoCredito,
	"DEBITO":        CartaoDebito,
	"DÉBITO":        CartaoDebito,
	"DINHEIRO/PIX":  Pix,
	"OUTROS":        Outro,
	"VALE REFEICAO": VR,
	"VALE REFEIÇÃO": VR,

	// names used by older integrations
	"CASH":             Dinheiro,
	"CASH_CREDIT_CARD": CartaoCredito,
	"CASH_DEBIT_CARD":  CartaoDebito,
	"MEAL_VOUCHER":     VR,
	"OTHER":            Outro,
	"PENDING":          Pendente,
}

var rotulos = map[Tipo]string{
	Dinheiro:      "Dinheiro",
	CartaoCredito: "Cartão de Crédito",
	CartaoDebito:  "Cartão de Débito",
	Pix:           "PIX",
	VR:            "Vale Refeição",
	Outro:         "Outro",
	Pendente:      "Pendente",
}

// Valido reports whether t is one of the canonical methods.
func (t Tipo) Valido() bool {
	_, ok := rotulos[t]
	return ok
}

// Rotulo returns the human label printed on receipts.
func (t Tipo) Rotulo() string {
	if r, ok := rotulos[t]; ok {
		return r
	}
	return string(t)
}

func (t Tipo) String() string { return string(t) }

// Normalizar canonicalizes free text. Unknown or empty input degrades to
// Pendente; it never fails.
func Normalizar(s string) Tipo {
	chave := strings.ToUpper(strings.TrimSpace(s))
	if t, ok := sinonimos[chave]; ok {
		return t
	}
	if t := Tipo(chave); t.Valido() {
		return t
	}
	return Pendente
}

// Parse is the strict variant used for staff input: only canonical names are accepted.
func Parse(s string) (Tipo, error) {
	t := Tipo(strings.ToUpper(strings.TrimSpace(s)))
	if !t.Valido() {
		return "", ErrTipoInvalido
	}
	return t, nil
}
