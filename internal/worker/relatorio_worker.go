package worker

// relatorio_worker.go
// Renders the closing report PDF and e-mails it for jobs from QueueRelatorio.

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/silvioaquino/Gestao-PDV/internal/infra"
	"github.com/silvioaquino/Gestao-PDV/internal/printer"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Remetente sends one e-mail with an attachment.
type Remetente interface {
	EnviarRelatorio(to, subject, body, pdfPath string) error
}

type RelatorioWorker struct {
	fonte          FonteComprovante
	mailer         Remetente
	pdfStoragePath string
}

func NewRelatorioWorker(fonte FonteComprovante, mailer Remetente, pdfStoragePath string) *RelatorioWorker {
	return &RelatorioWorker{fonte: fonte, mailer: mailer, pdfStoragePath: pdfStoragePath}
}

func (w *RelatorioWorker) Process(ctx context.Context, raw json.RawMessage) error {
	var payload CaixaJobPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		log.Error().Err(err).Msg("relatorio_worker: invalid payload")
		return nil
	}
	if payload.Destinatario == "" {
		log.Warn().Msg("relatorio_worker: empty destinatario, skipping")
		return nil
	}
	id, err := uuid.Parse(payload.CaixaID)
	if err != nil {
		log.Error().Str("caixa_id", payload.CaixaID).Msg("relatorio_worker: invalid caixa_id")
		return nil
	}

	c, err := w.fonte.Comprovante(ctx, id)
	if err != nil {
		return fmt.Errorf("carregar comprovante: %w", err)
	}
	path, err := infra.SalvarRelatorioPDF(*c, w.pdfStoragePath)
	if err != nil {
		return fmt.Errorf("gerar pdf: %w", err)
	}

	data := c.EmitidoEm
	if c.DataFechamento != nil {
		data = *c.DataFechamento
	}
	subject := fmt.Sprintf("Fechamento de caixa %s - %s", data.Format("02/01/2006"), c.RestauranteNome)
	body := fmt.Sprintf("Segue em anexo o relatório do caixa aberto em %s.\n\nSaldo em dinheiro: %s\nFaturamento: %s\n",
		c.DataAbertura.Format("02/01/2006 15:04"),
		printer.FormatarMoeda(c.Resumo.SaldoDinheiro),
		printer.FormatarMoeda(c.Resumo.Faturamento))

	if err := w.mailer.EnviarRelatorio(payload.Destinatario, subject, body, path); err != nil {
		return fmt.Errorf("enviar e-mail: %w", err)
	}
	log.Info().Str("caixa_id", payload.CaixaID).Str("to", payload.Destinatario).Msg("relatorio_worker: relatório enviado")
	return nil
}
