// Package pedido turns the order payloads posted by the Cardápio.ai webhook into
// a single canonical Pedido.
//
// Two shapes are accepted, checked in this order:
//
//   - flat: nomeCliente, telefoneCliente, tipoPedido, valorCompra, dataCompra, produtos...
//   - legacy: cliente{nome, telefone}, pedido{tipo, valorTotal, dataHora...}, produtos
//
// English key names (customerName, order.totalAmount, ...) are accepted as aliases.
// Only an unrecognized shape or an invalid amount reject the payload; bad dates
// fall back to the current time and unknown payment methods to PENDENTE.
package pedido

import (
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/silvioaquino/Gestao-PDV/internal/pagamento"

	"github.com/shopspring/decimal"
)

var (
	ErrJSONInvalido          = errors.New("corpo da requisição não é um JSON válido")
	ErrFormatoNaoReconhecido = errors.New("os dados do webhook não estão em um formato reconhecido")
	ErrValorInvalido         = errors.New("o valor total do pedido deve ser um número maior que zero")
)

// Formato identifies which payload shape was recognized.
type Formato string

const (
	FormatoPlano  Formato = "plano"
	FormatoLegado Formato = "legado"
)

const (
	tipoPedidoPadrao  = "DELIVERY"
	nomeProdutoPadrao = "Produto sem nome"
)

// Adicional is an add-on attached to an item.
type Adicional struct {
	Nome       string          `json:"nome"`
	Quantidade int             `json:"quantidade"`
	Valor      decimal.Decimal `json:"valor"`
}

// Item is one product line of the order.
type Item struct {
	Nome       string          `json:"nome"`
	Quantidade int             `json:"quantidade"`
	Valor      decimal.Decimal `json:"valor"`
	Adicionais []Adicional     `json:"adicionais"`
	Observacao string          `json:"observacao,omitempty"`
}

// Pedido is the canonical order produced by the Normalizador.
type Pedido struct {
	Formato         Formato
	NomeCliente     string
	TelefoneCliente string
	TipoPedido      string
	Endereco        string
	DataPedido      time.Time
	// DataInformada is false when DataPedido fell back to the current time.
	DataInformada bool
	Valor         decimal.Decimal
	TipoPagamento pagamento.Tipo
	// PagamentoInformado is the payment text exactly as received.
	PagamentoInformado string
	Itens              []Item
	Bruto              json.RawMessage
}

// Normalizador is safe for concurrent use.
type Normalizador struct {
	local *time.Location
	agora func() time.Time
}

// NewNormalizador builds a Normalizador that interprets DD/MM/YYYY dates in loc.
// A nil loc means UTC.
func NewNormalizador(loc *time.Location) *Normalizador {
	if loc == nil {
		loc = time.UTC
	}
	return &Normalizador{local: loc, agora: time.Now}
}

// WithClock replaces the clock used for date fallbacks.
func (n *Normalizador) WithClock(agora func() time.Time) *Normalizador {
	cp := *n
	cp.agora = agora
	return &cp
}

// Normalizar validates and canonicalizes a raw payload.
func (n *Normalizador) Normalizar(raw []byte) (*Pedido, error) {
	raiz, ok := decodeObjeto(raw)
	if !ok {
		if json.Valid(raw) {
			return nil, ErrFormatoNaoReconhecido
		}
		return nil, ErrJSONInvalido
	}

	var (
		p   *Pedido
		err error
	)
	switch {
	case ehPlano(raiz):
		p, err = n.plano(raiz)
	case ehLegado(raiz):
		p, err = n.legado(raiz)
	default:
		return nil, ErrFormatoNaoReconhecido
	}
	if err != nil {
		return nil, err
	}
	p.Bruto = append(json.RawMessage(nil), raw...)
	return p, nil
}

// ── Format detection ─────────────────────────────────────────────────────────

func ehPlano(o objeto) bool {
	_, nome := o.texto("nomeCliente", "customerName")
	_, tel := o.texto("telefoneCliente", "customerPhone")
	_, tipo := o.texto("tipoPedido", "orderType")
	_, valor := o.valor("valorCompra", "purchaseAmount")
	return nome && tel && tipo && valor
}

func ehLegado(o objeto) bool {
	cliente, ok := o.filho("cliente", "customer")
	if !ok {
		return false
	}
	if _, ok := cliente.texto("nome", "name"); !ok {
		return false
	}
	ped, ok := o.filho("pedido", "order")
	if !ok {
		return false
	}
	_, ok = ped.valor("valorTotal", "totalAmount")
	return ok
}

// ── Shapes ───────────────────────────────────────────────────────────────────

func (n *Normalizador) plano(o objeto) (*Pedido, error) {
	bruto, _ := o.valor("valorCompra", "purchaseAmount")
	valor, err := valorTotal(bruto)
	if err != nil {
		return nil, err
	}
	nome, _ := o.texto("nomeCliente", "customerName")
	informado, _ := o.texto("tipoPagamento", "paymentMethod")
	data, dataOK := n.dataBR(o.textoOu("", "dataCompra", "purchaseDate"))

	return &Pedido{
		Formato:            FormatoPlano,
		NomeCliente:        strings.TrimSpace(nome),
		TelefoneCliente:    o.textoOu("", "telefoneCliente", "customerPhone"),
		TipoPedido:         o.textoOu(tipoPedidoPadrao, "tipoPedido", "orderType"),
		Endereco:           o.textoOu("", "endereco", "address"),
		DataPedido:         data,
		DataInformada:      dataOK,
		Valor:              valor,
		TipoPagamento:      pagamento.Normalizar(informado),
		PagamentoInformado: informado,
		Itens:              itens(o.lista("produtos", "items")),
	}, nil
}

func (n *Normalizador) legado(o objeto) (*Pedido, error) {
	cliente, _ := o.filho("cliente", "customer")
	ped, _ := o.filho("pedido", "order")

	bruto, _ := ped.valor("valorTotal", "totalAmount")
	valor, err := valorTotal(bruto)
	if err != nil {
		return nil, err
	}
	nome, _ := cliente.texto("nome", "name")
	informado, _ := ped.texto("tipoPagamento", "paymentMethod")
	data, dataOK := n.dataHora(ped.textoOu("", "dataHora", "dateTime"))

	return &Pedido{
		Formato:            FormatoLegado,
		NomeCliente:        strings.TrimSpace(nome),
		TelefoneCliente:    cliente.textoOu("", "telefone", "phone"),
		TipoPedido:         ped.textoOu(tipoPedidoPadrao, "tipo", "type"),
		Endereco:           ped.textoOu("", "endereco", "address"),
		DataPedido:         data,
		DataInformada:      dataOK,
		Valor:              valor,
		TipoPagamento:      pagamento.Normalizar(informado),
		PagamentoInformado: informado,
		Itens:              itens(o.lista("produtos", "items")),
	}, nil
}

// ── Coercion rules ───────────────────────────────────────────────────────────

func valorTotal(raw json.RawMessage) (decimal.Decimal, error) {
	v, ok := numero(raw)
	if !ok || !v.IsPositive() {
		return decimal.Zero, ErrValorInvalido
	}
	v = v.Round(2)
	if !v.IsPositive() {
		return decimal.Zero, ErrValorInvalido
	}
	return v, nil
}

func itens(lista []json.RawMessage) []Item {
	out := make([]Item, 0, len(lista))
	for _, raw := range lista {
		o, ok := decodeObjeto(raw)
		if !ok {
			continue
		}
		out = append(out, Item{
			Nome:       o.textoOu(nomeProdutoPadrao, "nome", "name"),
			Quantidade: quantidade(o, "quantidade", "quantity"),
			Valor:      preco(o, "valor", "price"),
			Adicionais: adicionais(o.lista("adicionais", "addons")),
			Observacao: o.textoOu("", "observacao", "note"),
		})
	}
	return out
}

// adicionais accepts both object add-ons and the legacy plain-string form.
func adicionais(lista []json.RawMessage) []Adicional {
	out := make([]Adicional, 0, len(lista))
	for _, raw := range lista {
		if ehTipo(raw, '"') {
			var nome string
			if err := json.Unmarshal(raw, &nome); err == nil && strings.TrimSpace(nome) != "" {
				out = append(out, Adicional{Nome: strings.TrimSpace(nome), Quantidade: 1, Valor: decimal.Zero})
			}
			continue
		}
		o, ok := decodeObjeto(raw)
		if !ok {
			continue
		}
		out = append(out, Adicional{
			Nome:       o.textoOu("", "nome", "name"),
			Quantidade: quantidade(o, "quantidade", "quantity"),
			Valor:      preco(o, "valor", "price"),
		})
	}
	return out
}

func quantidade(o objeto, chaves ...string) int {
	raw, ok := o.valor(chaves...)
	if !ok {
		return 1
	}
	q, ok := inteiro(raw)
	if !ok || q < 1 {
		return 1
	}
	return q
}

func preco(o objeto, chaves ...string) decimal.Decimal {
	raw, ok := o.valor(chaves...)
	if !ok {
		return decimal.Zero
	}
	v, ok := numero(raw)
	if !ok {
		return decimal.Zero
	}
	return v.Round(2)
}

// dataBR parses DD/MM/YYYY as midnight in the configured location.
func (n *Normalizador) dataBR(s string) (time.Time, bool) {
	partes := strings.Split(strings.TrimSpace(s), "/")
	if len(partes) != 3 {
		return n.agora(), false
	}
	dia, errD := strconv.Atoi(partes[0])
	mes, errM := strconv.Atoi(partes[1])
	ano, errA := strconv.Atoi(partes[2])
	if errD != nil || errM != nil || errA != nil {
		return n.agora(), false
	}
	if dia <= 0 || mes <= 0 || ano <= 0 || dia > 31 || mes > 12 || ano < 2000 {
		return n.agora(), false
	}
	return time.Date(ano, time.Month(mes), dia, 0, 0, 0, 0, n.local), true
}

// dataHora parses the legacy timestamp: RFC 3339 first, then DD/MM/YYYY.
func (n *Normalizador) dataHora(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return n.agora(), false
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, true
	}
	if t, err := time.ParseInLocation("2006-01-02T15:04:05", s, n.local); err == nil {
		return t, true
	}
	return n.dataBR(s)
}
