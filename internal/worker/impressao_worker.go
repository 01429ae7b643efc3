package worker

// impressao_worker.go
// Prints the caixa receipt on the thermal printer for jobs from QueueImpressao.

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/silvioaquino/Gestao-PDV/internal/dto"
	"github.com/silvioaquino/Gestao-PDV/internal/infra"
	"github.com/silvioaquino/Gestao-PDV/internal/printer"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// FonteComprovante loads the receipt data of a session.
type FonteComprovante interface {
	Comprovante(ctx context.Context, id uuid.UUID) (*dto.ComprovanteCaixa, error)
}

// Impressora renders receipts and sends them to the printer through the
// circuit breaker.
type Impressora struct {
	printer printer.Printer
	cb      *infra.CircuitBreaker
	largura int
}

func NewImpressora(p printer.Printer, cb *infra.CircuitBreaker, largura int) *Impressora {
	return &Impressora{printer: p, cb: cb, largura: largura}
}

// Configurada reports whether a real printer is attached.
func (i *Impressora) Configurada() bool { return i.printer.Tipo() != "none" }

// Estado is "disabled" without a printer, otherwise the breaker state.
func (i *Impressora) Estado() string {
	switch {
	case !i.Configurada():
		return "disabled"
	case i.cb == nil:
		return infra.CBClosed.String()
	default:
		return i.cb.State().String()
	}
}

// Imprimir sends one receipt. With no printer configured it returns
// printer.ErrSemImpressora without touching the breaker.
func (i *Impressora) Imprimir(ctx context.Context, c dto.ComprovanteCaixa) error {
	if !i.Configurada() {
		return printer.ErrSemImpressora
	}
	data := printer.MontarComprovante(c, i.largura)
	if i.cb == nil {
		return i.printer.Print(ctx, data)
	}
	return i.cb.Execute(func() error { return i.printer.Print(ctx, data) })
}

// ImpressaoWorker processes print jobs.
type ImpressaoWorker struct {
	fonte      FonteComprovante
	impressora *Impressora
}

func NewImpressaoWorker(fonte FonteComprovante, impressora *Impressora) *ImpressaoWorker {
	return &ImpressaoWorker{fonte: fonte, impressora: impressora}
}

// Process prints the receipt named in the payload. Payload errors and a
// missing printer are not retried.
func (w *ImpressaoWorker) Process(ctx context.Context, raw json.RawMessage) error {
	var payload CaixaJobPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		log.Error().Err(err).Msg("impressao_worker: invalid payload")
		return nil
	}
	id, err := uuid.Parse(payload.CaixaID)
	if err != nil {
		log.Error().Str("caixa_id", payload.CaixaID).Msg("impressao_worker: invalid caixa_id")
		return nil
	}

	c, err := w.fonte.Comprovante(ctx, id)
	if err != nil {
		return fmt.Errorf("carregar comprovante: %w", err)
	}
	err = w.impressora.Imprimir(ctx, *c)
	if errors.Is(err, printer.ErrSemImpressora) {
		log.Warn().Str("caixa_id", payload.CaixaID).Msg("impressao_worker: no printer configured, skipping")
		return nil
	}
	if err != nil {
		return err
	}
	log.Info().Str("caixa_id", payload.CaixaID).Msg("impressao_worker: comprovante impresso")
	return nil
}
