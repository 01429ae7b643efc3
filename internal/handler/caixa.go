package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/silvioaquino/Gestao-PDV/internal/apierror"
	"github.com/silvioaquino/Gestao-PDV/internal/dto"
	"github.com/silvioaquino/Gestao-PDV/internal/infra"
	"github.com/silvioaquino/Gestao-PDV/internal/middleware"
	"github.com/silvioaquino/Gestao-PDV/internal/printer"
	"github.com/silvioaquino/Gestao-PDV/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// FilaImpressao enqueues receipt print jobs.
type FilaImpressao interface {
	EnqueueImpressao(ctx context.Context, caixaID uuid.UUID) error
}

// Impressora prints a receipt synchronously.
type Impressora interface {
	Configurada() bool
	Imprimir(ctx context.Context, c dto.ComprovanteCaixa) error
}

type CaixaHandler struct {
	svc        service.CaixaService
	fila       FilaImpressao
	impressora Impressora
}

// NewCaixaHandler takes an optional fila; without one receipts print inline.
func NewCaixaHandler(svc service.CaixaService, fila FilaImpressao, impressora Impressora) *CaixaHandler {
	return &CaixaHandler{svc: svc, fila: fila, impressora: impressora}
}

// Status godoc
// @Summary Retorna se há caixa aberto e a sessão atual
// @Tags caixa
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.CaixaStatusResponse
// @Router /api/caixa/status [get]
func (h *CaixaHandler) Status(c *gin.Context) {
	resp, err := h.svc.Status(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	responder(c, http.StatusOK, resp, "")
}

// Abrir godoc
// @Summary Abre uma nova sessão de caixa
// @Tags caixa
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.AbrirCaixaRequest true "Dados de abertura"
// @Success 201 {object} dto.SessaoCaixaResponse
// @Failure 400 {object} apierror.Response
// @Router /api/caixa/abrir [post]
func (h *CaixaHandler) Abrir(c *gin.Context) {
	var req dto.AbrirCaixaRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Abrir(c.Request.Context(), middleware.UsuarioID(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	responder(c, http.StatusCreated, resp, "Caixa aberto com sucesso")
}

// Fechar godoc
// @Summary Fecha a sessão e grava o relatório de fechamento
// @Tags caixa
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.FecharCaixaRequest true "Dados de fechamento"
// @Success 200 {object} dto.FechamentoResponse
// @Failure 400 {object} apierror.Response
// @Failure 404 {object} apierror.Response
// @Router /api/caixa/fechar [post]
func (h *CaixaHandler) Fechar(c *gin.Context) {
	var req dto.FecharCaixaRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Fechar(c.Request.Context(), middleware.UsuarioID(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	responder(c, http.StatusOK, resp, "Caixa fechado com sucesso")
}

// Consultar godoc
// @Summary Consulta o caixa aberto em uma data
// @Tags caixa
// @Produce json
// @Security BearerAuth
// @Param data query string false "Data no formato AAAA-MM-DD (padrão: hoje)"
// @Success 200 {object} dto.CaixaDetalheResponse
// @Failure 404 {object} apierror.Response
// @Router /api/caixa/consulta [get]
func (h *CaixaHandler) Consultar(c *gin.Context) {
	resp, err := h.svc.ConsultarPorData(c.Request.Context(), c.Query("data"))
	if err != nil {
		respondError(c, err)
		return
	}
	responder(c, http.StatusOK, resp, "")
}

// Historico godoc
// @Summary Lista as sessões de caixa, mais recentes primeiro
// @Tags caixa
// @Produce json
// @Security BearerAuth
// @Param page query int false "Página"
// @Param limit query int false "Itens por página (máx. 100)"
// @Success 200 {object} dto.HistoricoResponse
// @Router /api/caixa/historico [get]
func (h *CaixaHandler) Historico(c *gin.Context) {
	var f dto.HistoricoFilter
	if !bindQuery(c, &f) {
		return
	}
	resp, err := h.svc.Historico(c.Request.Context(), f)
	if err != nil {
		respondError(c, err)
		return
	}
	responder(c, http.StatusOK, resp, "")
}

// Detalhe godoc
// @Summary Sessão com lançamentos e conciliação
// @Tags caixa
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID da sessão"
// @Success 200 {object} dto.CaixaDetalheResponse
// @Failure 404 {object} apierror.Response
// @Router /api/caixa/{id} [get]
func (h *CaixaHandler) Detalhe(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	resp, err := h.svc.Detalhe(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	responder(c, http.StatusOK, resp, "")
}

// Relatorio godoc
// @Summary Relatório do caixa em PDF
// @Tags caixa
// @Produce application/pdf
// @Security BearerAuth
// @Param id path string true "ID da sessão"
// @Success 200 {file} binary
// @Failure 404 {object} apierror.Response
// @Router /api/caixa/{id}/relatorio [get]
func (h *CaixaHandler) Relatorio(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	comp, err := h.svc.Comprovante(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	pdf, err := infra.RelatorioPDF(*comp)
	if err != nil {
		respondError(c, fmt.Errorf("gerar relatório: %w", err))
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`inline; filename="caixa_%s.pdf"`, id))
	c.Data(http.StatusOK, "application/pdf", pdf)
}

// Imprimir godoc
// @Summary Imprime o comprovante do caixa na impressora térmica
// @Tags caixa
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID da sessão"
// @Success 200 {object} dto.ImpressaoResponse "impresso"
// @Success 202 {object} dto.ImpressaoResponse "enfileirado"
// @Failure 404 {object} apierror.Response
// @Failure 503 {object} apierror.Response
// @Router /api/caixa/{id}/imprimir [post]
func (h *CaixaHandler) Imprimir(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	comp, err := h.svc.Comprovante(ctx, id)
	if err != nil {
		respondError(c, err)
		return
	}
	if !h.impressora.Configurada() {
		respondError(c, apierror.Validacao("Nenhuma impressora configurada"))
		return
	}
	resp := dto.ImpressaoResponse{CaixaAberturaID: id.String()}

	if h.fila != nil {
		if err := h.fila.EnqueueImpressao(ctx, id); err != nil {
			respondError(c, apierror.Indisponivel("Fila de impressão indisponível", err))
			return
		}
		resp.Enfileirado = true
		responder(c, http.StatusAccepted, resp, "Impressão enfileirada")
		return
	}

	err = h.impressora.Imprimir(ctx, *comp)
	switch {
	case errors.Is(err, printer.ErrSemImpressora):
		respondError(c, apierror.Validacao("Nenhuma impressora configurada"))
	case err != nil:
		respondError(c, apierror.Indisponivel("Impressora indisponível", err))
	default:
		responder(c, http.StatusOK, resp, "Comprovante impresso")
	}
}
