package handler

import (
	"net/http"

	"github.com/silvioaquino/Gestao-PDV/internal/dto"
	"github.com/silvioaquino/Gestao-PDV/internal/service"

	"github.com/gin-gonic/gin"
)

type VendasHandler struct{ svc service.VendaService }

func NewVendasHandler(svc service.VendaService) *VendasHandler { return &VendasHandler{svc: svc} }

// Registrar godoc
// @Summary Registra uma venda manual completa
// @Tags vendas
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.RegistrarVendaRequest true "Venda"
// @Success 201 {object} dto.VendaResponse
// @Failure 400 {object} apierror.Response
// @Router /api/vendas [post]
func (h *VendasHandler) Registrar(c *gin.Context) {
	var req dto.RegistrarVendaRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Registrar(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	responder(c, http.StatusCreated, resp, "Venda registrada com sucesso")
}

// Listar godoc
// @Summary Lista as vendas de um caixa
// @Tags vendas
// @Produce json
// @Security BearerAuth
// @Param caixaId query string false "ID da sessão (padrão: caixa aberto)"
// @Param limit query int false "Máximo de registros"
// @Success 200 {array} dto.VendaResponse
// @Router /api/vendas [get]
func (h *VendasHandler) Listar(c *gin.Context) {
	var f dto.LancamentoFilter
	if !bindQuery(c, &f) {
		return
	}
	resp, err := h.svc.Listar(c.Request.Context(), f)
	if err != nil {
		respondError(c, err)
		return
	}
	responder(c, http.StatusOK, resp, "")
}

// Obter godoc
// @Summary Detalhe de uma venda
// @Tags vendas
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID da venda"
// @Success 200 {object} dto.VendaResponse
// @Failure 404 {object} apierror.Response
// @Router /api/vendas/{id} [get]
func (h *VendasHandler) Obter(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	resp, err := h.svc.Obter(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	responder(c, http.StatusOK, resp, "")
}

// AtualizarPagamento godoc
// @Summary Corrige a forma de pagamento de uma venda
// @Tags vendas
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID da venda"
// @Param body body dto.AtualizarVendaRequest true "Nova forma de pagamento"
// @Success 200 {object} dto.VendaResponse
// @Failure 400 {object} apierror.Response
// @Failure 404 {object} apierror.Response
// @Router /api/vendas/{id} [put]
func (h *VendasHandler) AtualizarPagamento(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	var req dto.AtualizarVendaRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.AtualizarTipoPagamento(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	responder(c, http.StatusOK, resp, "Venda atualizada com sucesso")
}

// Excluir godoc
// @Summary Exclui uma venda e seus itens
// @Tags vendas
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID da venda"
// @Success 200 {object} dto.Resposta
// @Failure 404 {object} apierror.Response
// @Router /api/vendas/{id} [delete]
func (h *VendasHandler) Excluir(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	if err := h.svc.Excluir(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	responder(c, http.StatusOK, nil, "Venda excluída com sucesso")
}
