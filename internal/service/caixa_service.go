package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/silvioaquino/Gestao-PDV/internal/apierror"
	"github.com/silvioaquino/Gestao-PDV/internal/conciliacao"
	"github.com/silvioaquino/Gestao-PDV/internal/config"
	"github.com/silvioaquino/Gestao-PDV/internal/dto"
	"github.com/silvioaquino/Gestao-PDV/internal/model"
	"github.com/silvioaquino/Gestao-PDV/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

const layoutData = "2006-01-02"

type CaixaService interface {
	Abrir(ctx context.Context, usuarioID *uuid.UUID, req dto.AbrirCaixaRequest) (*dto.SessaoCaixaResponse, error)
	Status(ctx context.Context) (*dto.CaixaStatusResponse, error)
	Fechar(ctx context.Context, usuarioID *uuid.UUID, req dto.FecharCaixaRequest) (*dto.FechamentoResponse, error)
	// ConsultarPorData returns the session opened on data (YYYY-MM-DD, business
	// time zone). An empty data means today.
	ConsultarPorData(ctx context.Context, data string) (*dto.CaixaDetalheResponse, error)
	Detalhe(ctx context.Context, id uuid.UUID) (*dto.CaixaDetalheResponse, error)
	Historico(ctx context.Context, f dto.HistoricoFilter) (*dto.HistoricoResponse, error)
	// Comprovante gathers what the receipt and the PDF report print.
	Comprovante(ctx context.Context, id uuid.UUID) (*dto.ComprovanteCaixa, error)
	// ExigirAberta resolves the session a new entry is recorded against. A nil
	// id means the current open session. Unknown or closed sessions yield
	// SemCaixaAberto. tx may be nil.
	ExigirAberta(ctx context.Context, tx *gorm.DB, id *uuid.UUID) (*model.SessaoCaixa, error)
}

type caixaService struct {
	caixas    repository.CaixaRepository
	vendas    repository.VendaRepository
	manuais   repository.VendaManualRepository
	retiradas repository.RetiradaRepository
	fila      Fila
	cfg       *config.Config
	agora     func() time.Time
}

func NewCaixaService(
	caixas repository.CaixaRepository,
	vendas repository.VendaRepository,
	manuais repository.VendaManualRepository,
	retiradas repository.RetiradaRepository,
	fila Fila,
	cfg *config.Config,
) CaixaService {
	return &caixaService{
		caixas:    caixas,
		vendas:    vendas,
		manuais:   manuais,
		retiradas: retiradas,
		fila:      fila,
		cfg:       cfg,
		agora:     relogio,
	}
}

// ── Abrir ────────────────────────────────────────────────────────────────────

func (s *caixaService) Abrir(ctx context.Context, usuarioID *uuid.UUID, req dto.AbrirCaixaRequest) (*dto.SessaoCaixaResponse, error) {
	if req.ValorInicial.IsNegative() {
		return nil, apierror.Validacao("valor_inicial não pode ser negativo")
	}

	sessao := &model.SessaoCaixa{
		DataAbertura: s.agora(),
		ValorInicial: req.ValorInicial.Round(2),
		Observacao:   texto(req.Observacao),
		Status:       model.CaixaAberto,
		UsuarioID:    usuarioID,
	}

	err := runTx(ctx, s.caixas.DB(), func(tx *gorm.DB) error {
		_, err := s.caixas.FindSessaoAberta(ctx, tx)
		if err == nil {
			return apierror.CaixaJaAberto()
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return apierror.Armazenamento("buscar caixa aberto", err)
		}
		return s.caixas.CreateSessao(ctx, tx, sessao)
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return nil, apierror.CaixaJaAberto()
	}
	if err != nil {
		return nil, traduzir("abrir caixa", "Caixa", err)
	}

	log.Info().Str("caixa_id", sessao.ID.String()).
		Str("valor_inicial", sessao.ValorInicial.StringFixed(2)).
		Msg("caixa aberto")
	resp := sessaoToResponse(sessao, s.cfg.Location())
	return &resp, nil
}

func (s *caixaService) Status(ctx context.Context) (*dto.CaixaStatusResponse, error) {
	sessao, err := s.caixas.FindSessaoAberta(ctx, nil)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &dto.CaixaStatusResponse{CaixaAberto: false}, nil
	}
	if err != nil {
		return nil, apierror.Armazenamento("buscar caixa aberto", err)
	}
	resp := sessaoToResponse(sessao, s.cfg.Location())
	return &dto.CaixaStatusResponse{CaixaAberto: true, CaixaAtual: &resp}, nil
}

// ── Fechar ───────────────────────────────────────────────────────────────────

func (s *caixaService) Fechar(ctx context.Context, usuarioID *uuid.UUID, req dto.FecharCaixaRequest) (*dto.FechamentoResponse, error) {
	id, err := uuid.Parse(strings.TrimSpace(req.CaixaAberturaID))
	if err != nil {
		return nil, apierror.Validacao("caixa_abertura_id inválido")
	}
	if req.ValorRetiradaFinal.IsNegative() {
		return nil, apierror.Validacao("valor_retirada_final não pode ser negativo")
	}

	agora := s.agora()
	var fechamento *model.FechamentoCaixa

	err = runTx(ctx, s.caixas.DB(), func(tx *gorm.DB) error {
		// Locked before reading the entries: a sale recorded concurrently
		// either commits first and is counted, or finds the session closed.
		sessao, err := s.caixas.FindSessaoByID(ctx, tx, id)
		if err != nil {
			return err
		}
		if !sessao.Aberta() {
			return repository.ErrSessaoNaoAberta
		}

		if req.ValorRetiradaFinal.IsPositive() {
			obs := "Retirada no fechamento do caixa"
			if err := s.retiradas.Create(ctx, tx, &model.Retirada{
				CaixaAberturaID: id,
				Valor:           req.ValorRetiradaFinal.Round(2),
				Observacao:      &obs,
				DataRetirada:    agora,
			}); err != nil {
				return fmt.Errorf("registrar retirada final: %w", err)
			}
		}

		mov, err := s.carregar(ctx, tx, id)
		if err != nil {
			return err
		}
		resumo := conciliacao.Calcular(mov.entrada(sessao.ValorInicial))

		porTipo, err := json.Marshal(resumo.PorTipo)
		if err != nil {
			return fmt.Errorf("serializar totais por tipo: %w", err)
		}
		fechamento = &model.FechamentoCaixa{
			CaixaAberturaID:     id,
			ValorAbertura:       resumo.ValorAbertura,
			TotalVendas:         resumo.TotalVendas,
			TotalVendasDinheiro: resumo.TotalVendasDinheiro,
			TotalRetiradas:      resumo.TotalRetiradas,
			SaldoFinal:          resumo.SaldoDinheiro,
			Faturamento:         resumo.Faturamento,
			Diferenca:           resumo.DiferencaTotal,
			PorTipo:             porTipo,
			Observacoes:         texto(req.Observacoes),
			DataFechamento:      agora,
			UsuarioID:           usuarioID,
		}
		if err := s.caixas.CreateFechamento(ctx, tx, fechamento); err != nil {
			return err
		}
		return s.caixas.FecharSessao(ctx, tx, id)
	})
	switch {
	case errors.Is(err, repository.ErrSessaoNaoAberta), errors.Is(err, gorm.ErrDuplicatedKey):
		return nil, apierror.Validacao("Caixa já fechado")
	case err != nil:
		return nil, traduzir("fechar caixa", "Caixa", err)
	}

	log.Info().Str("caixa_id", id.String()).
		Str("saldo_final", fechamento.SaldoFinal.StringFixed(2)).
		Str("diferenca", fechamento.Diferenca.StringFixed(2)).
		Msg("caixa fechado")
	s.aposFechar(ctx, id)

	return fechamentoToResponse(fechamento, s.cfg.Location()), nil
}

// aposFechar enqueues the receipt and the e-mailed report. Queue failures do
// not undo the close.
func (s *caixaService) aposFechar(ctx context.Context, id uuid.UUID) {
	if s.fila == nil {
		return
	}
	if s.cfg.ImprimirAoFechar {
		if err := s.fila.EnqueueImpressao(ctx, id); err != nil {
			log.Warn().Err(err).Str("caixa_id", id.String()).Msg("falha ao enfileirar impressão")
		}
	}
	if s.cfg.SMTPEnabled() {
		if err := s.fila.EnqueueRelatorio(ctx, id, s.cfg.RelatorioEmail); err != nil {
			log.Warn().Err(err).Str("caixa_id", id.String()).Msg("falha ao enfileirar relatório")
		}
	}
}

// ── Consulta ─────────────────────────────────────────────────────────────────

func (s *caixaService) ConsultarPorData(ctx context.Context, data string) (*dto.CaixaDetalheResponse, error) {
	loc := s.cfg.Location()
	var dia time.Time
	if data = strings.TrimSpace(data); data == "" {
		y, m, d := s.agora().In(loc).Date()
		dia = time.Date(y, m, d, 0, 0, 0, 0, loc)
	} else {
		var err error
		dia, err = time.ParseInLocation(layoutData, data, loc)
		if err != nil {
			return nil, apierror.Validacao("data deve estar no formato AAAA-MM-DD")
		}
	}
	fim := dia.AddDate(0, 0, 1).Add(-time.Millisecond)

	sessao, err := s.caixas.FindSessaoPorPeriodo(ctx, dia, fim)
	if err != nil {
		return nil, traduzir("consultar caixa", "Caixa", err)
	}
	return s.detalhar(ctx, sessao)
}

func (s *caixaService) Detalhe(ctx context.Context, id uuid.UUID) (*dto.CaixaDetalheResponse, error) {
	sessao, err := s.caixas.FindSessaoByID(ctx, nil, id)
	if err != nil {
		return nil, traduzir("buscar caixa", "Caixa", err)
	}
	return s.detalhar(ctx, sessao)
}

func (s *caixaService) Historico(ctx context.Context, f dto.HistoricoFilter) (*dto.HistoricoResponse, error) {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 {
		f.Limit = 20
	}
	sessoes, total, err := s.caixas.ListSessoes(ctx, f.Page, f.Limit)
	if err != nil {
		return nil, apierror.Armazenamento("listar caixas", err)
	}
	loc := s.cfg.Location()
	resp := &dto.HistoricoResponse{
		Data:  make([]dto.SessaoCaixaResponse, 0, len(sessoes)),
		Total: total,
		Page:  f.Page,
		Limit: f.Limit,
	}
	for i := range sessoes {
		resp.Data = append(resp.Data, sessaoToResponse(&sessoes[i], loc))
	}
	return resp, nil
}

func (s *caixaService) Comprovante(ctx context.Context, id uuid.UUID) (*dto.ComprovanteCaixa, error) {
	sessao, err := s.caixas.FindSessaoByID(ctx, nil, id)
	if err != nil {
		return nil, traduzir("buscar caixa", "Caixa", err)
	}
	mov, err := s.carregar(ctx, nil, id)
	if err != nil {
		return nil, traduzir("carregar movimento", "Caixa", err)
	}

	loc := s.cfg.Location()
	c := &dto.ComprovanteCaixa{
		CaixaAberturaID: id.String(),
		RestauranteNome: s.cfg.RestauranteNome,
		RestauranteCNPJ: s.cfg.RestauranteCNPJ,
		Fechado:         !sessao.Aberta(),
		DataAbertura:    sessao.DataAbertura.In(loc),
		EmitidoEm:       s.agora().In(loc),
		Resumo:          conciliacao.Calcular(mov.entrada(sessao.ValorInicial)),
		Retiradas:       make([]dto.RetiradaComprovante, 0, len(mov.retiradas)),
	}
	if sessao.Fechamento != nil {
		df := sessao.Fechamento.DataFechamento.In(loc)
		c.DataFechamento = &df
		if sessao.Fechamento.Observacoes != nil {
			c.Observacoes = *sessao.Fechamento.Observacoes
		}
	}
	for _, r := range mov.retiradas {
		rc := dto.RetiradaComprovante{Valor: r.Valor, Data: r.DataRetirada.In(loc)}
		if r.Observacao != nil {
			rc.Observacao = *r.Observacao
		}
		c.Retiradas = append(c.Retiradas, rc)
	}
	return c, nil
}

// ── ExigirAberta ─────────────────────────────────────────────────────────────

func (s *caixaService) ExigirAberta(ctx context.Context, tx *gorm.DB, id *uuid.UUID) (*model.SessaoCaixa, error) {
	var (
		sessao *model.SessaoCaixa
		err    error
	)
	if id == nil {
		sessao, err = s.caixas.FindSessaoAberta(ctx, tx)
	} else {
		sessao, err = s.caixas.FindSessaoByID(ctx, tx, *id)
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apierror.SemCaixaAberto()
	}
	if err != nil {
		return nil, apierror.Armazenamento("buscar caixa", err)
	}
	if !sessao.Aberta() {
		return nil, apierror.SemCaixaAberto()
	}
	return sessao, nil
}

// ── helpers ──────────────────────────────────────────────────────────────────

func (s *caixaService) carregar(ctx context.Context, tx *gorm.DB, id uuid.UUID) (movimento, error) {
	var (
		mov movimento
		err error
	)
	if mov.vendas, err = s.vendas.ListBySessao(ctx, tx, id); err != nil {
		return mov, fmt.Errorf("listar vendas: %w", err)
	}
	if mov.manuais, err = s.manuais.ListBySessao(ctx, tx, id); err != nil {
		return mov, fmt.Errorf("listar vendas manuais: %w", err)
	}
	if mov.retiradas, err = s.retiradas.ListBySessao(ctx, tx, id); err != nil {
		return mov, fmt.Errorf("listar retiradas: %w", err)
	}
	return mov, nil
}

func (s *caixaService) detalhar(ctx context.Context, sessao *model.SessaoCaixa) (*dto.CaixaDetalheResponse, error) {
	mov, err := s.carregar(ctx, nil, sessao.ID)
	if err != nil {
		return nil, apierror.Armazenamento("carregar movimento", err)
	}
	loc := s.cfg.Location()
	resp := &dto.CaixaDetalheResponse{
		Caixa:         sessaoToResponse(sessao, loc),
		Resumo:        conciliacao.Calcular(mov.entrada(sessao.ValorInicial)),
		Vendas:        make([]dto.VendaResponse, 0, len(mov.vendas)),
		VendasManuais: make([]dto.VendaManualResponse, 0, len(mov.manuais)),
		Retiradas:     make([]dto.RetiradaResponse, 0, len(mov.retiradas)),
	}
	for i := range mov.vendas {
		resp.Vendas = append(resp.Vendas, vendaToResponse(&mov.vendas[i], loc))
	}
	for i := range mov.manuais {
		resp.VendasManuais = append(resp.VendasManuais, vendaManualToResponse(&mov.manuais[i], loc))
	}
	for i := range mov.retiradas {
		resp.Retiradas = append(resp.Retiradas, retiradaToResponse(&mov.retiradas[i], loc))
	}
	if sessao.Fechamento != nil {
		resp.Fechamento = fechamentoToResponse(sessao.Fechamento, loc)
	}
	return resp, nil
}
