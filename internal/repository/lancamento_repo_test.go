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

func TestVendaManualRepo(t *testing.T) {
	db := testutil.NovoBanco(t)
	s := abrir(t, NewCaixaRepository(db), time.Now().UTC())
	repo := NewVendaManualRepository(db)
	ctx := context.Background()

	vm := &model.VendaManual{CaixaAberturaID: s.ID, TipoPagamento: pagamento.Dinheiro, Valor: decimal.NewFromInt(55), DataVenda: time.Now().UTC()}
	require.NoError(t, repo.Create(ctx, nil, vm))

	outra := uuid.New()
	lista, err := repo.List(ctx, Filtro{CaixaID: &outra})
	require.NoError(t, err)
	assert.Empty(t, lista)

	lista, err = repo.ListBySessao(ctx, nil, s.ID)
	require.NoError(t, err)
	require.Len(t, lista, 1)
	assert.Equal(t, pagamento.Dinheiro, lista[0].TipoPagamento)
	assert.Equal(t, "venda_manuais", model.VendaManual{}.TableName())

	require.NoError(t, repo.Delete(ctx, vm.ID))
	assert.ErrorIs(t, repo.Delete(ctx, vm.ID), gorm.ErrRecordNotFound)
}

func TestRetiradaRepo(t *testing.T) {
	db := testutil.NovoBanco(t)
	s := abrir(t, NewCaixaRepository(db), time.Now().UTC())
	repo := NewRetiradaRepository(db)
	ctx := context.Background()

	obs := "troco"
	for _, v := range []string{"20", "7.25"} {
		require.NoError(t, repo.Create(ctx, nil, &model.Retirada{
			CaixaAberturaID: s.ID, Valor: decimal.RequireFromString(v), Observacao: &obs, DataRetirada: time.Now().UTC(),
		}))
	}

	lista, err := repo.List(ctx, Filtro{Limit: 1})
	require.NoError(t, err)
	assert.Len(t, lista, 1)

	lista, err = repo.ListBySessao(ctx, nil, s.ID)
	require.NoError(t, err)
	assert.Len(t, lista, 2)
}
