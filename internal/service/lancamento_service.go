package service

import (
	"context"
	"time"

	"github.com/silvioaquino/Gestao-PDV/internal/apierror"
	"github.com/silvioaquino/Gestao-PDV/internal/config"
	"github.com/silvioaquino/Gestao-PDV/internal/dto"
	"github.com/silvioaquino/Gestao-PDV/internal/model"
	"github.com/silvioaquino/Gestao-PDV/internal/pagamento"
	"github.com/silvioaquino/Gestao-PDV/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// ── Vendas manuais ───────────────────────────────────────────────────────────

type VendaManualService interface {
	Registrar(ctx context.Context, req dto.VendaManualRequest) (*dto.VendaManualResponse, error)
	Listar(ctx context.Context, f dto.LancamentoFilter) ([]dto.VendaManualResponse, error)
	Excluir(ctx context.Context, id uuid.UUID) error
}

type vendaManualService struct {
	repo   repository.VendaManualRepository
	caixas repository.CaixaRepository
	caixa  CaixaService
	cfg    *config.Config
	agora  func() time.Time
}

func NewVendaManualService(
	repo repository.VendaManualRepository,
	caixas repository.CaixaRepository,
	caixa CaixaService,
	cfg *config.Config,
) VendaManualService {
	return &vendaManualService{repo: repo, caixas: caixas, caixa: caixa, cfg: cfg, agora: relogio}
}

func (s *vendaManualService) Registrar(ctx context.Context, req dto.VendaManualRequest) (*dto.VendaManualResponse, error) {
	caixaID, err := parseID(req.CaixaAberturaID)
	if err != nil {
		return nil, err
	}
	tipo, err := pagamento.Parse(req.TipoPagamento)
	if err != nil {
		return nil, apierror.Validacao(err.Error())
	}
	if !req.Valor.IsPositive() {
		return nil, apierror.Validacao("valor deve ser maior que zero")
	}

	v := &model.VendaManual{
		TipoPagamento: tipo,
		Valor:         req.Valor.Round(2),
		Descricao:     texto(req.Descricao),
		DataVenda:     s.agora(),
	}
	err = runTx(ctx, s.caixas.DB(), func(tx *gorm.DB) error {
		sessao, err := s.caixa.ExigirAberta(ctx, tx, caixaID)
		if err != nil {
			return err
		}
		v.CaixaAberturaID = sessao.ID
		return s.repo.Create(ctx, tx, v)
	})
	if err != nil {
		return nil, traduzir("registrar venda manual", "Venda manual", err)
	}

	log.Info().Str("caixa_id", v.CaixaAberturaID.String()).
		Str("tipo_pagamento", string(v.TipoPagamento)).
		Str("valor", v.Valor.StringFixed(2)).
		Msg("venda manual registrada")
	resp := vendaManualToResponse(v, s.cfg.Location())
	return &resp, nil
}

func (s *vendaManualService) Listar(ctx context.Context, f dto.LancamentoFilter) ([]dto.VendaManualResponse, error) {
	filtro, err := resolverFiltro(f)
	if err != nil {
		return nil, err
	}
	itens, err := s.repo.List(ctx, filtro)
	if err != nil {
		return nil, apierror.Armazenamento("listar vendas manuais", err)
	}
	loc := s.cfg.Location()
	out := make([]dto.VendaManualResponse, 0, len(itens))
	for i := range itens {
		out = append(out, vendaManualToResponse(&itens[i], loc))
	}
	return out, nil
}

func (s *vendaManualService) Excluir(ctx context.Context, id uuid.UUID) error {
	return traduzir("excluir venda manual", "Venda manual", s.repo.Delete(ctx, id))
}

// ── Retiradas ────────────────────────────────────────────────────────────────

type RetiradaService interface {
	Registrar(ctx context.Context, req dto.RetiradaRequest) (*dto.RetiradaResponse, error)
	Listar(ctx context.Context, f dto.LancamentoFilter) ([]dto.RetiradaResponse, error)
	Excluir(ctx context.Context, id uuid.UUID) error
}

type retiradaService struct {
	repo   repository.RetiradaRepository
	caixas repository.CaixaRepository
	caixa  CaixaService
	cfg    *config.Config
	agora  func() time.Time
}

func NewRetiradaService(
	repo repository.RetiradaRepository,
	caixas repository.CaixaRepository,
	caixa CaixaService,
	cfg *config.Config,
) RetiradaService {
	return &retiradaService{repo: repo, caixas: caixas, caixa: caixa, cfg: cfg, agora: relogio}
}

func (s *retiradaService) Registrar(ctx context.Context, req dto.RetiradaRequest) (*dto.RetiradaResponse, error) {
	caixaID, err := parseID(req.CaixaAberturaID)
	if err != nil {
		return nil, err
	}
	if !req.Valor.IsPositive() {
		return nil, apierror.Validacao("valor deve ser maior que zero")
	}

	r := &model.Retirada{
		Valor:        req.Valor.Round(2),
		Observacao:   texto(req.Observacao),
		DataRetirada: s.agora(),
	}
	err = runTx(ctx, s.caixas.DB(), func(tx *gorm.DB) error {
		sessao, err := s.caixa.ExigirAberta(ctx, tx, caixaID)
		if err != nil {
			return err
		}
		r.CaixaAberturaID = sessao.ID
		return s.repo.Create(ctx, tx, r)
	})
	if err != nil {
		return nil, traduzir("registrar retirada", "Retirada", err)
	}

	log.Info().Str("caixa_id", r.CaixaAberturaID.String()).
		Str("valor", r.Valor.StringFixed(2)).
		Msg("retirada registrada")
	resp := retiradaToResponse(r, s.cfg.Location())
	return &resp, nil
}

func (s *retiradaService) Listar(ctx context.Context, f dto.LancamentoFilter) ([]dto.RetiradaResponse, error) {
	filtro, err := resolverFiltro(f)
	if err != nil {
		return nil, err
	}
	itens, err := s.repo.List(ctx, filtro)
	if err != nil {
		return nil, apierror.Armazenamento("listar retiradas", err)
	}
	loc := s.cfg.Location()
	out := make([]dto.RetiradaResponse, 0, len(itens))
	for i := range itens {
		out = append(out, retiradaToResponse(&itens[i], loc))
	}
	return out, nil
}

func (s *retiradaService) Excluir(ctx context.Context, id uuid.UUID) error {
	return traduzir("excluir retirada", "Retirada", s.repo.Delete(ctx, id))
}
