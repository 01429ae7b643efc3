package repository

import (
	"context"
	"testing"
	"time"

	"github.com/silvioaquino/Gestao-PDV/internal/model"
	"github.com/silvioaquino/Gestao-PDV/internal/pagamento"
	"github.com/silvioaquino/Gestao-PDV/internal/testutil"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func abrir(t *testing.T, r CaixaRepository, quando time.Time) *model.SessaoCaixa {
	t.Helper()
	s := &model.SessaoCaixa{DataAbertura: quando, ValorInicial: decimal.NewFromInt(100)}
	require.NoError(t, r.CreateSessao(context.Background(), nil, s))
	return s
}

func TestCaixaRepo_UmUnicoCaixaAberto(t *testing.T) {
	repo := NewCaixaRepository(testutil.NovoBanco(t))
	ctx := context.Background()

	s := abrir(t, repo, time.Now().UTC())
	assert.NotEqual(t, uuid.Nil, s.ID)
	assert.Equal(t, model.CaixaAberto, s.Status)

	err := repo.CreateSessao(ctx, nil, &model.SessaoCaixa{DataAbertura: time.Now().UTC()})
	assert.ErrorIs(t, err, gorm.ErrDuplicatedKey)

	aberta, err := repo.FindSessaoAberta(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, s.ID, aberta.ID)
}

func TestCaixaRepo_FecharSessaoCondicional(t *testing.T) {
	repo := NewCaixaRepository(testutil.NovoBanco(t))
	ctx := context.Background()
	s := abrir(t, repo, time.Now().UTC())

	require.NoError(t, repo.FecharSessao(ctx, nil, s.ID))
	assert.ErrorIs(t, repo.FecharSessao(ctx, nil, s.ID), ErrSessaoNaoAberta)

	_, err := repo.FindSessaoAberta(ctx, nil)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	// a closed session frees the partial index
	abrir(t, repo, time.Now().UTC())
}

func TestCaixaRepo_FechamentoUnicoPorSessao(t *testing.T) {
	repo := NewCaixaRepository(testutil.NovoBanco(t))
	ctx := context.Background()
	s := abrir(t, repo, time.Now().UTC())

	f := &model.FechamentoCaixa{CaixaAberturaID: s.ID, DataFechamento: time.Now().UTC(), SaldoFinal: decimal.NewFromInt(185)}
	require.NoError(t, repo.CreateFechamento(ctx, nil, f))
	dup := &model.FechamentoCaixa{CaixaAberturaID: s.ID, DataFechamento: time.Now().UTC()}
	assert.ErrorIs(t, repo.CreateFechamento(ctx, nil, dup), gorm.ErrDuplicatedKey)

	got, err := repo.FindSessaoByID(ctx, nil, s.ID)
	require.NoError(t, err)
	require.NotNil(t, got.Fechamento)
	assert.True(t, got.Fechamento.SaldoFinal.Equal(decimal.NewFromInt(185)))
}

func TestCaixaRepo_FindSessaoPorPeriodo(t *testing.T) {
	db := testutil.NovoBanco(t)
	repo := NewCaixaRepository(db)
	ctx := context.Background()
	brt := time.FixedZone("BRT", -3*3600)

	manha := abrir(t, repo, time.Date(2025, 11, 9, 8, 0, 0, 0, brt).UTC())
	require.NoError(t, repo.FecharSessao(ctx, nil, manha.ID))
	noite := abrir(t, repo, time.Date(2025, 11, 9, 22, 30, 0, 0, brt).UTC())

	inicio := time.Date(2025, 11, 9, 0, 0, 0, 0, brt)
	got, err := repo.FindSessaoPorPeriodo(ctx, inicio, inicio.AddDate(0, 0, 1))
	require.NoError(t, err)
	assert.Equal(t, noite.ID, got.ID)

	_, err = repo.FindSessaoPorPeriodo(ctx, inicio.AddDate(0, 0, 1), inicio.AddDate(0, 0, 2))
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestCaixaRepo_ListSessoes(t *testing.T) {
	repo := NewCaixaRepository(testutil.NovoBanco(t))
	ctx := context.Background()
	base := time.Date(2025, 11, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		s := abrir(t, repo, base.AddDate(0, 0, i))
		require.NoError(t, repo.FecharSessao(ctx, nil, s.ID))
	}

	page, total, err := repo.ListSessoes(ctx, 1, 2)
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	require.Len(t, page, 2)
	assert.True(t, page[0].DataAbertura.After(page[1].DataAbertura))
}

func TestVendaRepo_CriarListarExcluir(t *testing.T) {
	db := testutil.NovoBanco(t)
	caixas := NewCaixaRepository(db)
	vendas := NewVendaRepository(db)
	ctx := context.Background()
	s := abrir(t, caixas, time.Now().UTC())

	v := &model.Venda{
		CaixaAberturaID: s.ID,
		DataVenda:       time.Now().UTC(),
		DataPedido:      time.Now().UTC(),
		ValorTotal:      decimal.RequireFromString("40.50"),
		TipoPagamento:   pagamento.Pix,
		NomeCliente:     "Guilherme",
		Produtos: []model.ProdutoVenda{
			{Nome: "Carne Guisada", Quantidade: 1, Valor: decimal.NewFromInt(15)},
			{Nome: "Suco", Quantidade: 2, Valor: decimal.NewFromInt(5)},
		},
	}
	require.NoError(t, vendas.Create(ctx, nil, v))

	got, err := vendas.FindByID(ctx, v.ID)
	require.NoError(t, err)
	assert.Len(t, got.Produtos, 2)
	assert.True(t, got.ValorTotal.Equal(decimal.RequireFromString("40.5")))

	require.NoError(t, vendas.UpdateTipoPagamento(ctx, v.ID, pagamento.Dinheiro))
	got, _ = vendas.FindByID(ctx, v.ID)
	assert.Equal(t, pagamento.Dinheiro, got.TipoPagamento)

	lista, err := vendas.List(ctx, Filtro{CaixaID: &s.ID})
	require.NoError(t, err)
	assert.Len(t, lista, 1)

	require.NoError(t, vendas.Delete(ctx, v.ID))
	var restantes int64
	db.Model(&model.ProdutoVenda{}).Where("venda_id = ?", v.ID).Count(&restantes)
	assert.Zero(t, restantes)
	assert.ErrorIs(t, vendas.Delete(ctx, v.ID), gorm.ErrRecordNotFound)
	assert.ErrorIs(t, vendas.UpdateTipoPagamento(ctx, v.ID, pagamento.Pix), gorm.ErrRecordNotFound)
}
