package service

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/silvioaquino/Gestao-PDV/internal/apierror"
	"github.com/silvioaquino/Gestao-PDV/internal/dto"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const pedidoCardapio = `{
	"nomeCliente": "Guilherme",
	"telefoneCliente": "(81) 98867 0268",
	"tipoPedido": "Pedido Delivery",
	"endereco": "Rua Veneza, 97",
	"dataCompra": "09/11/2025",
	"valorCompra": "40,00",
	"tipoPagamento": "Dinheiro/PIX",
	"produtos": [
		{"nome": "Carne Guisada", "quantidade": 2, "valor": 15, "adicionais": [{"nome": "Macassar", "quantidade": 1, "valor": 0}]},
		{"nome": "Refrigerante", "quantidade": 1, "valor": 10}
	]
}`

func TestIngerirPedido_SemCaixaAberto(t *testing.T) {
	a := novoAmbiente(t)
	_, err := a.vendas.IngerirPedido(context.Background(), []byte(pedidoCardapio))
	assert.True(t, apierror.Is(err, apierror.KindSemCaixaAberto))
}

func TestIngerirPedido_Registra(t *testing.T) {
	a := novoAmbiente(t)
	ctx := context.Background()
	s, err := a.caixa.Abrir(ctx, nil, dto.AbrirCaixaRequest{ValorInicial: d("0")})
	require.NoError(t, err)

	resp, err := a.vendas.IngerirPedido(ctx, []byte(pedidoCardapio))
	require.NoError(t, err)
	assert.True(t, resp.Success)
	assert.Equal(t, resp.VendaID, resp.Data.ID)
	assert.Equal(t, s.ID, resp.Data.CaixaAberturaID)
	assert.Equal(t, "PIX", resp.Data.TipoPagamento)
	assert.Equal(t, 2, resp.Data.ProdutosCount)
	eq(t, "40", resp.Data.ValorTotal, "valor")

	v, err := a.vendas.Obter(ctx, uuid.MustParse(resp.VendaID))
	require.NoError(t, err)
	assert.False(t, v.Manual)
	assert.Equal(t, "Guilherme", v.NomeCliente)
	require.NotNil(t, v.Endereco)
	require.Len(t, v.Produtos, 2)

	var adicionais []map[string]any
	for _, p := range v.Produtos {
		if p.Nome == "Carne Guisada" {
			require.NoError(t, json.Unmarshal(p.Adicionais, &adicionais))
			assert.Equal(t, 2, p.Quantidade)
		}
	}
	require.Len(t, adicionais, 1)
	assert.Equal(t, "Macassar", adicionais[0]["nome"])
}

func TestIngerirPedido_Rejeicoes(t *testing.T) {
	a := novoAmbiente(t)
	ctx := context.Background()
	_, err := a.caixa.Abrir(ctx, nil, dto.AbrirCaixaRequest{ValorInicial: d("0")})
	require.NoError(t, err)

	casos := map[string]struct {
		corpo  string
		codigo string
	}{
		"json invalido":    {`{"nomeCliente":`, apierror.CodigoValidacao},
		"formato estranho": {`{"foo": "bar"}`, apierror.CodigoFormato},
		"valor zero": {
			`{"nomeCliente": "A", "telefoneCliente": "1", "tipoPedido": "X", "valorCompra": 0}`,
			apierror.CodigoValorInvalido,
		},
	}
	for nome, c := range casos {
		t.Run(nome, func(t *testing.T) {
			_, err := a.vendas.IngerirPedido(ctx, []byte(c.corpo))
			require.Error(t, err)
			assert.Equal(t, c.codigo, apierror.From(err).Codigo)
		})
	}

	lista, err := a.vendas.Listar(ctx, dto.LancamentoFilter{Limit: 10})
	require.NoError(t, err)
	assert.Empty(t, lista)
}

func TestVenda_AtualizarEExcluir(t *testing.T) {
	a := novoAmbiente(t)
	ctx := context.Background()
	_, err := a.caixa.Abrir(ctx, nil, dto.AbrirCaixaRequest{ValorInicial: d("0")})
	require.NoError(t, err)

	v, err := a.vendas.Registrar(ctx, dto.RegistrarVendaRequest{
		ValorTotal:    d("22.50"),
		TipoPagamento: "pix",
		NomeCliente:   " Ana ",
		Produtos:      []dto.ItemVendaRequest{{Nome: "Cuscuz", Quantidade: 1, Valor: d("22.50")}},
	})
	require.NoError(t, err)
	assert.True(t, v.Manual)
	assert.Equal(t, "Ana", v.NomeCliente)
	assert.Equal(t, "DELIVERY", v.TipoPedido)

	id := uuid.MustParse(v.ID)
	_, err = a.vendas.AtualizarTipoPagamento(ctx, id, dto.AtualizarVendaRequest{TipoPagamento: "crédito"})
	assert.True(t, apierror.Is(err, apierror.KindValidacao), "staff endpoints accept canonical names only")

	up, err := a.vendas.AtualizarTipoPagamento(ctx, id, dto.AtualizarVendaRequest{TipoPagamento: "CARTAO_DEBITO"})
	require.NoError(t, err)
	assert.Equal(t, "CARTAO_DEBITO", up.TipoPagamento)

	require.NoError(t, a.vendas.Excluir(ctx, id))
	assert.True(t, apierror.Is(a.vendas.Excluir(ctx, id), apierror.KindNaoEncontrado))
	_, err = a.vendas.Obter(ctx, id)
	assert.True(t, apierror.Is(err, apierror.KindNaoEncontrado))
}

func TestListar_FiltroPorCaixa(t *testing.T) {
	a := novoAmbiente(t)
	ctx := context.Background()

	s1, err := a.caixa.Abrir(ctx, nil, dto.AbrirCaixaRequest{ValorInicial: d("0")})
	require.NoError(t, err)
	_, err = a.manuais.Registrar(ctx, dto.VendaManualRequest{TipoPagamento: "VR", Valor: d("12")})
	require.NoError(t, err)
	_, err = a.caixa.Fechar(ctx, nil, dto.FecharCaixaRequest{CaixaAberturaID: s1.ID})
	require.NoError(t, err)

	// without caixaId every entry is listed, whether a session is open or not
	todos, err := a.manuais.Listar(ctx, dto.LancamentoFilter{Limit: 50})
	require.NoError(t, err)
	assert.Len(t, todos, 1)

	s2, err := a.caixa.Abrir(ctx, nil, dto.AbrirCaixaRequest{ValorInicial: d("0")})
	require.NoError(t, err)
	_, err = a.manuais.Registrar(ctx, dto.VendaManualRequest{TipoPagamento: "PIX", Valor: d("3")})
	require.NoError(t, err)
	todos, err = a.manuais.Listar(ctx, dto.LancamentoFilter{Limit: 50})
	require.NoError(t, err)
	assert.Len(t, todos, 2)

	atuais, err := a.manuais.Listar(ctx, dto.LancamentoFilter{CaixaID: s2.ID, Limit: 50})
	require.NoError(t, err)
	require.Len(t, atuais, 1)
	assert.Equal(t, "PIX", atuais[0].TipoPagamento)

	anteriores, err := a.manuais.Listar(ctx, dto.LancamentoFilter{CaixaID: s1.ID, Limit: 50})
	require.NoError(t, err)
	require.Len(t, anteriores, 1)
	assert.Equal(t, "VR", anteriores[0].TipoPagamento)

	_, err = a.manuais.Listar(ctx, dto.LancamentoFilter{CaixaID: "abc"})
	assert.True(t, apierror.Is(err, apierror.KindValidacao))

	// edits after close stay allowed
	require.NoError(t, a.manuais.Excluir(ctx, uuid.MustParse(anteriores[0].ID)))
}

func TestRetirada_Listar(t *testing.T) {
	a := novoAmbiente(t)
	ctx := context.Background()
	_, err := a.caixa.Abrir(ctx, nil, dto.AbrirCaixaRequest{ValorInicial: d("100")})
	require.NoError(t, err)

	_, err = a.retirada.Registrar(ctx, dto.RetiradaRequest{Valor: d("0")})
	assert.True(t, apierror.Is(err, apierror.KindValidacao))

	r, err := a.retirada.Registrar(ctx, dto.RetiradaRequest{Valor: d("30")})
	require.NoError(t, err)
	lista, err := a.retirada.Listar(ctx, dto.LancamentoFilter{Limit: 10})
	require.NoError(t, err)
	require.Len(t, lista, 1)
	assert.Equal(t, r.ID, lista[0].ID)

	require.NoError(t, a.retirada.Excluir(ctx, uuid.MustParse(r.ID)))
}
