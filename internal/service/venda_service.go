package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/silvioaquino/Gestao-PDV/internal/apierror"
	"github.com/silvioaquino/Gestao-PDV/internal/config"
	"github.com/silvioaquino/Gestao-PDV/internal/dto"
	"github.com/silvioaquino/Gestao-PDV/internal/model"
	"github.com/silvioaquino/Gestao-PDV/internal/pagamento"
	"github.com/silvioaquino/Gestao-PDV/internal/pedido"
	"github.com/silvioaquino/Gestao-PDV/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

const origemCardapio = "cardapio-ai"

type VendaService interface {
	// IngerirPedido normalizes a Cardápio.ai payload and records it against the
	// open session.
	IngerirPedido(ctx context.Context, raw []byte) (*dto.WebhookResponse, error)
	Registrar(ctx context.Context, req dto.RegistrarVendaRequest) (*dto.VendaResponse, error)
	Listar(ctx context.Context, f dto.LancamentoFilter) ([]dto.VendaResponse, error)
	Obter(ctx context.Context, id uuid.UUID) (*dto.VendaResponse, error)
	AtualizarTipoPagamento(ctx context.Context, id uuid.UUID, req dto.AtualizarVendaRequest) (*dto.VendaResponse, error)
	Excluir(ctx context.Context, id uuid.UUID) error
}

type vendaService struct {
	vendas       repository.VendaRepository
	caixa        CaixaService
	caixas       repository.CaixaRepository
	normalizador *pedido.Normalizador
	cfg          *config.Config
	agora        func() time.Time
}

func NewVendaService(
	vendas repository.VendaRepository,
	caixas repository.CaixaRepository,
	caixa CaixaService,
	cfg *config.Config,
) VendaService {
	return &vendaService{
		vendas:       vendas,
		caixa:        caixa,
		caixas:       caixas,
		normalizador: pedido.NewNormalizador(cfg.Location()),
		cfg:          cfg,
		agora:        relogio,
	}
}

// ── Webhook ──────────────────────────────────────────────────────────────────

func (s *vendaService) IngerirPedido(ctx context.Context, raw []byte) (*dto.WebhookResponse, error) {
	// No point normalizing an order that cannot be recorded
	if _, err := s.caixa.ExigirAberta(ctx, nil, nil); err != nil {
		return nil, err
	}

	p, err := s.normalizador.Normalizar(raw)
	switch {
	case errors.Is(err, pedido.ErrJSONInvalido):
		return nil, apierror.Validacao(err.Error())
	case errors.Is(err, pedido.ErrFormatoNaoReconhecido):
		return nil, apierror.FormatoNaoReconhecido(err)
	case errors.Is(err, pedido.ErrValorInvalido):
		return nil, apierror.ValorInvalido(err)
	case err != nil:
		return nil, apierror.Validacao(err.Error())
	}

	agora := s.agora()
	venda, err := vendaDoPedido(p, agora)
	if err != nil {
		return nil, apierror.Armazenamento("montar venda", err)
	}

	err = runTx(ctx, s.caixas.DB(), func(tx *gorm.DB) error {
		sessao, err := s.caixa.ExigirAberta(ctx, tx, nil)
		if err != nil {
			return err
		}
		venda.CaixaAberturaID = sessao.ID
		return s.vendas.Create(ctx, tx, venda)
	})
	if err != nil {
		return nil, traduzir("registrar venda", "Venda", err)
	}

	if !p.DataInformada {
		log.Warn().Str("venda_id", venda.ID.String()).Msg("data do pedido ausente ou inválida; usando data atual")
	}
	log.Info().Str("venda_id", venda.ID.String()).
		Str("formato", string(p.Formato)).
		Str("valor", venda.ValorTotal.StringFixed(2)).
		Str("tipo_pagamento", string(venda.TipoPagamento)).
		Msg("pedido recebido")

	loc := s.cfg.Location()
	return &dto.WebhookResponse{
		Success: true,
		Message: "Venda registrada com sucesso",
		VendaID: venda.ID.String(),
		Data: dto.WebhookVendaData{
			ID:              venda.ID.String(),
			NomeCliente:     venda.NomeCliente,
			ValorTotal:      venda.ValorTotal,
			TipoPagamento:   string(venda.TipoPagamento),
			DataVenda:       formatar(venda.DataVenda, loc),
			DataPedido:      formatar(venda.DataPedido, loc),
			CaixaAberturaID: venda.CaixaAberturaID.String(),
			ProdutosCount:   len(venda.Produtos),
		},
	}, nil
}

// vendaDoPedido maps a normalized order onto a Venda. The audit snapshot keeps
// the payload exactly as received.
func vendaDoPedido(p *pedido.Pedido, recebidoEm time.Time) (*model.Venda, error) {
	snapshot, err := json.Marshal(map[string]any{
		"formato":     p.Formato,
		"origem":      origemCardapio,
		"recebido_em": recebidoEm.Format(time.RFC3339),
		"original":    p.Bruto,
	})
	if err != nil {
		return nil, err
	}

	v := &model.Venda{
		DataVenda:       recebidoEm,
		DataPedido:      p.DataPedido.UTC(),
		ValorTotal:      p.Valor.Round(2),
		TipoPagamento:   p.TipoPagamento,
		NomeCliente:     p.NomeCliente,
		TelefoneCliente: p.TelefoneCliente,
		TipoPedido:      p.TipoPedido,
		DadosPedido:     snapshot,
		Produtos:        make([]model.ProdutoVenda, 0, len(p.Itens)),
	}
	if p.Endereco != "" {
		end := p.Endereco
		v.Endereco = &end
	}
	for _, it := range p.Itens {
		adicionais, err := json.Marshal(it.Adicionais)
		if err != nil {
			return nil, fmt.Errorf("adicionais de %q: %w", it.Nome, err)
		}
		pv := model.ProdutoVenda{
			Nome:       it.Nome,
			Quantidade: it.Quantidade,
			Valor:      it.Valor.Round(2),
			Adicionais: adicionais,
		}
		if it.Observacao != "" {
			obs := it.Observacao
			pv.Observacao = &obs
		}
		v.Produtos = append(v.Produtos, pv)
	}
	return v, nil
}

// ── Staff ────────────────────────────────────────────────────────────────────

func (s *vendaService) Registrar(ctx context.Context, req dto.RegistrarVendaRequest) (*dto.VendaResponse, error) {
	caixaID, err := parseID(req.CaixaAberturaID)
	if err != nil {
		return nil, err
	}
	tipo, err := pagamento.Parse(req.TipoPagamento)
	if err != nil {
		return nil, apierror.Validacao(err.Error())
	}
	if !req.ValorTotal.IsPositive() {
		return nil, apierror.Validacao("valor_total deve ser maior que zero")
	}

	agora := s.agora()
	venda := &model.Venda{
		DataVenda:       agora,
		DataPedido:      agora,
		ValorTotal:      req.ValorTotal.Round(2),
		TipoPagamento:   tipo,
		Manual:          true,
		NomeCliente:     strings.TrimSpace(req.NomeCliente),
		TelefoneCliente: strings.TrimSpace(req.TelefoneCliente),
		TipoPedido:      strings.ToUpper(strings.TrimSpace(req.TipoPedido)),
		Endereco:        texto(req.Endereco),
		Produtos:        make([]model.ProdutoVenda, 0, len(req.Produtos)),
	}
	if venda.TipoPedido == "" {
		venda.TipoPedido = "DELIVERY"
	}
	for _, it := range req.Produtos {
		venda.Produtos = append(venda.Produtos, model.ProdutoVenda{
			Nome:       strings.TrimSpace(it.Nome),
			Quantidade: it.Quantidade,
			Valor:      it.Valor.Round(2),
			Adicionais: []byte("[]"),
			Observacao: texto(it.Observacao),
		})
	}

	err = runTx(ctx, s.caixas.DB(), func(tx *gorm.DB) error {
		sessao, err := s.caixa.ExigirAberta(ctx, tx, caixaID)
		if err != nil {
			return err
		}
		venda.CaixaAberturaID = sessao.ID
		return s.vendas.Create(ctx, tx, venda)
	})
	if err != nil {
		return nil, traduzir("registrar venda", "Venda", err)
	}
	resp := vendaToResponse(venda, s.cfg.Location())
	return &resp, nil
}

func (s *vendaService) Listar(ctx context.Context, f dto.LancamentoFilter) ([]dto.VendaResponse, error) {
	filtro, err := resolverFiltro(f)
	if err != nil {
		return nil, err
	}
	vendas, err := s.vendas.List(ctx, filtro)
	if err != nil {
		return nil, apierror.Armazenamento("listar vendas", err)
	}
	loc := s.cfg.Location()
	out := make([]dto.VendaResponse, 0, len(vendas))
	for i := range vendas {
		out = append(out, vendaToResponse(&vendas[i], loc))
	}
	return out, nil
}

func (s *vendaService) Obter(ctx context.Context, id uuid.UUID) (*dto.VendaResponse, error) {
	v, err := s.vendas.FindByID(ctx, id)
	if err != nil {
		return nil, traduzir("buscar venda", "Venda", err)
	}
	resp := vendaToResponse(v, s.cfg.Location())
	return &resp, nil
}

// AtualizarTipoPagamento is allowed on closed sessions too; the closing report
// keeps the totals computed at close time.
func (s *vendaService) AtualizarTipoPagamento(ctx context.Context, id uuid.UUID, req dto.AtualizarVendaRequest) (*dto.VendaResponse, error) {
	tipo, err := pagamento.Parse(req.TipoPagamento)
	if err != nil {
		return nil, apierror.Validacao(err.Error())
	}
	if err := s.vendas.UpdateTipoPagamento(ctx, id, tipo); err != nil {
		return nil, traduzir("atualizar venda", "Venda", err)
	}
	return s.Obter(ctx, id)
}

func (s *vendaService) Excluir(ctx context.Context, id uuid.UUID) error {
	return traduzir("excluir venda", "Venda", s.vendas.Delete(ctx, id))
}

// resolverFiltro maps the list query onto a repository.Filtro. Without a
// caixaId every entry is listed, whatever the register state.
func resolverFiltro(f dto.LancamentoFilter) (repository.Filtro, error) {
	filtro := repository.Filtro{Limit: f.Limit}
	id, err := parseID(f.CaixaID)
	if err != nil {
		return filtro, apierror.Validacao("caixaId inválido")
	}
	filtro.CaixaID = id
	return filtro, nil
}
