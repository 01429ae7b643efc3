package handler

import (
	"net/http"

	"github.com/silvioaquino/Gestao-PDV/internal/dto"
	"github.com/silvioaquino/Gestao-PDV/internal/service"

	"github.com/gin-gonic/gin"
)

// ── Vendas manuais ───────────────────────────────────────────────────────────

// VendasManuaisHandler covers the cashier's own tally per payment method.
type VendasManuaisHandler struct{ svc service.VendaManualService }

func NewVendasManuaisHandler(svc service.VendaManualService) *VendasManuaisHandler {
	return &VendasManuaisHandler{svc: svc}
}

// Registrar godoc
// @Summary Registra um lançamento manual do operador
// @Tags vendas-manuais
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.VendaManualRequest true "Lançamento"
// @Success 201 {object} dto.VendaManualResponse
// @Failure 400 {object} apierror.Response
// @Router /api/vendas-manuais [post]
func (h *VendasManuaisHandler) Registrar(c *gin.Context) {
	var req dto.VendaManualRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Registrar(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	responder(c, http.StatusCreated, resp, "Venda manual registrada com sucesso")
}

// Listar godoc
// @Summary Lista os lançamentos manuais de um caixa
// @Tags vendas-manuais
// @Produce json
// @Security BearerAuth
// @Param caixaId query string false "ID da sessão (padrão: caixa aberto)"
// @Success 200 {array} dto.VendaManualResponse
// @Router /api/vendas-manuais [get]
func (h *VendasManuaisHandler) Listar(c *gin.Context) {
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

// Excluir godoc
// @Summary Exclui um lançamento manual
// @Tags vendas-manuais
// @Security BearerAuth
// @Param id path string true "ID do lançamento"
// @Success 200 {object} dto.Resposta
// @Failure 404 {object} apierror.Response
// @Router /api/vendas-manuais/{id} [delete]
func (h *VendasManuaisHandler) Excluir(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	if err := h.svc.Excluir(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	responder(c, http.StatusOK, nil, "Venda manual excluída com sucesso")
}

// ── Retiradas ────────────────────────────────────────────────────────────────

type RetiradasHandler struct{ svc service.RetiradaService }

func NewRetiradasHandler(svc service.RetiradaService) *RetiradasHandler {
	return &RetiradasHandler{svc: svc}
}

// Registrar godoc
// @Summary Registra uma retirada de dinheiro da gaveta
// @Tags retiradas
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.RetiradaRequest true "Retirada"
// @Success 201 {object} dto.RetiradaResponse
// @Failure 400 {object} apierror.Response
// @Router /api/retiradas [post]
func (h *RetiradasHandler) Registrar(c *gin.Context) {
	var req dto.RetiradaRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Registrar(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	responder(c, http.StatusCreated, resp, "Retirada registrada com sucesso")
}

// Listar godoc
// @Summary Lista as retiradas de um caixa
// @Tags retiradas
// @Produce json
// @Security BearerAuth
// @Param caixaId query string false "ID da sessão (padrão: caixa aberto)"
// @Success 200 {array} dto.RetiradaResponse
// @Router /api/retiradas [get]
func (h *RetiradasHandler) Listar(c *gin.Context) {
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

// Excluir godoc
// @Summary Exclui uma retirada
// @Tags retiradas
// @Security BearerAuth
// @Param id path string true "ID da retirada"
// @Success 200 {object} dto.Resposta
// @Failure 404 {object} apierror.Response
// @Router /api/retiradas/{id} [delete]
func (h *RetiradasHandler) Excluir(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	if err := h.svc.Excluir(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	responder(c, http.StatusOK, nil, "Retirada excluída com sucesso")
}
