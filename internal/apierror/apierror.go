// Package apierror provides the typed errors returned by services and the
// standardized envelope written to clients. All 4xx/5xx responses go through
// this package so internal details (DB errors, stack traces) never leak.
package apierror

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an error for the HTTP boundary.
type Kind int

const (
	KindValidacao Kind = iota
	KindCaixaJaAberto
	KindSemCaixaAberto
	KindNaoEncontrado
	KindNaoAutorizado
	KindProibido
	KindMuitasRequisicoes
	KindConflito
	KindIndisponivel
	KindArmazenamento
)

// Status maps a Kind to its HTTP status code.
func (k Kind) Status() int {
	switch k {
	case KindValidacao, KindCaixaJaAberto, KindSemCaixaAberto:
		return http.StatusBadRequest
	case KindNaoEncontrado:
		return http.StatusNotFound
	case KindNaoAutorizado:
		return http.StatusUnauthorized
	case KindProibido:
		return http.StatusForbidden
	case KindMuitasRequisicoes:
		return http.StatusTooManyRequests
	case KindConflito:
		return http.StatusConflict
	case KindIndisponivel:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// Error codes written to the "error" field of the envelope.
const (
	CodigoValidacao         = "VALIDACAO"
	CodigoFormato           = "FORMATO_NAO_RECONHECIDO"
	CodigoValorInvalido     = "VALOR_INVALIDO"
	CodigoCaixaJaAberto     = "CAIXA_JA_ABERTO"
	CodigoSemCaixaAberto    = "SEM_CAIXA_ABERTO"
	CodigoNaoEncontrado     = "NAO_ENCONTRADO"
	CodigoNaoAutorizado     = "NAO_AUTORIZADO"
	CodigoProibido          = "PROIBIDO"
	CodigoMuitasRequisicoes = "MUITAS_REQUISICOES"
	CodigoConflito          = "CONFLITO"
	CodigoIndisponivel      = "SERVICO_INDISPONIVEL"
	CodigoErroInterno       = "ERRO_INTERNO"
)

// Error is the typed error every service returns.
type Error struct {
	Kind    Kind
	Codigo  string
	Message string
	Fields  map[string]string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Status is shorthand for e.Kind.Status().
func (e *Error) Status() int { return e.Kind.Status() }

// ── Constructors ─────────────────────────────────────────────────────────────

func Validacao(msg string) *Error {
	return &Error{Kind: KindValidacao, Codigo: CodigoValidacao, Message: msg}
}

// ValidacaoCampos reports per-field validator failures.
func ValidacaoCampos(fields map[string]string) *Error {
	return &Error{Kind: KindValidacao, Codigo: CodigoValidacao, Message: "Erro de validação", Fields: fields}
}

func FormatoNaoReconhecido(err error) *Error {
	return &Error{Kind: KindValidacao, Codigo: CodigoFormato, Message: "Formato de dados inválido", Err: err}
}

func ValorInvalido(err error) *Error {
	return &Error{Kind: KindValidacao, Codigo: CodigoValorInvalido, Message: "Valor total inválido", Err: err}
}

func CaixaJaAberto() *Error {
	return &Error{Kind: KindCaixaJaAberto, Codigo: CodigoCaixaJaAberto, Message: "Já existe um caixa aberto"}
}

func SemCaixaAberto() *Error {
	return &Error{Kind: KindSemCaixaAberto, Codigo: CodigoSemCaixaAberto,
		Message: "Nenhum caixa aberto. Abra um caixa no sistema PDV antes de registrar lançamentos"}
}

func NaoEncontrado(recurso string) *Error {
	return &Error{Kind: KindNaoEncontrado, Codigo: CodigoNaoEncontrado, Message: recurso + " não encontrado"}
}

func NaoAutorizado(msg string) *Error {
	return &Error{Kind: KindNaoAutorizado, Codigo: CodigoNaoAutorizado, Message: msg}
}

func Proibido(msg string) *Error {
	return &Error{Kind: KindProibido, Codigo: CodigoProibido, Message: msg}
}

func MuitasRequisicoes(msg string) *Error {
	return &Error{Kind: KindMuitasRequisicoes, Codigo: CodigoMuitasRequisicoes, Message: msg}
}

// Conflito reports a request that collides with one still in progress.
func Conflito(msg string) *Error {
	return &Error{Kind: KindConflito, Codigo: CodigoConflito, Message: msg}
}

// Indisponivel reports a dependency (printer, queue) that cannot be reached.
func Indisponivel(msg string, err error) *Error {
	return &Error{Kind: KindIndisponivel, Codigo: CodigoIndisponivel, Message: msg, Err: err}
}

// Armazenamento wraps a data-store failure. op names the failed operation.
func Armazenamento(op string, err error) *Error {
	return &Error{Kind: KindArmazenamento, Codigo: CodigoErroInterno,
		Message: "Erro ao acessar o banco de dados", Err: fmt.Errorf("%s: %w", op, err)}
}

// From extracts the *Error from err's chain; anything else is treated as a
// storage failure.
func From(err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return &Error{Kind: KindArmazenamento, Codigo: CodigoErroInterno, Message: "Erro interno do servidor", Err: err}
}

// Is reports whether err carries kind k.
func Is(err error, k Kind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == k
}

// ── Envelope ─────────────────────────────────────────────────────────────────

// Response is the canonical error envelope for all 4xx/5xx HTTP responses.
type Response struct {
	Success bool              `json:"success"`
	Error   string            `json:"error"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

// Body builds the envelope for e. Causes of 5xx errors are included only when
// detalhar is set (non-production).
func (e *Error) Body(detalhar bool) Response {
	msg := e.Message
	if e.Kind == KindArmazenamento || e.Kind == KindIndisponivel {
		if detalhar && e.Err != nil {
			msg = e.Message + ": " + e.Err.Error()
		}
	} else if e.Err != nil && e.Kind == KindValidacao {
		msg = e.Err.Error()
	}
	return Response{Success: false, Error: e.Codigo, Message: msg, Fields: e.Fields}
}

// New builds a bare envelope; used by middleware that has no typed error.
func New(codigo, msg string) Response {
	return Response{Success: false, Error: codigo, Message: msg}
}
