package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/silvioaquino/Gestao-PDV/internal/config"
	"github.com/silvioaquino/Gestao-PDV/internal/repository"
	"github.com/silvioaquino/Gestao-PDV/internal/testutil"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

// filaSpy records enqueued jobs.
type filaSpy struct {
	mu         sync.Mutex
	impressoes []uuid.UUID
	relatorios []string
}

func (f *filaSpy) EnqueueImpressao(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.impressoes = append(f.impressoes, id)
	return nil
}

func (f *filaSpy) EnqueueRelatorio(_ context.Context, id uuid.UUID, destinatario string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.relatorios = append(f.relatorios, id.String()+"|"+destinatario)
	return nil
}

type ambiente struct {
	cfg      *config.Config
	fila     *filaSpy
	caixa    CaixaService
	vendas   VendaService
	manuais  VendaManualService
	retirada RetiradaService
	auth     AuthService
}

func novoAmbiente(t *testing.T) *ambiente {
	t.Helper()
	db := testutil.NovoBanco(t)
	cfg := &config.Config{
		Timezone:           "America/Sao_Paulo",
		RestauranteNome:    "Cantinho do Sabor",
		RestauranteCNPJ:    "12.345.678/0001-90",
		JWTSecret:          "segredo-de-teste",
		JWTExpirationHours: 1,
		JWTRefreshHours:    2,
	}
	fila := &filaSpy{}

	caixas := repository.NewCaixaRepository(db)
	vendas := repository.NewVendaRepository(db)
	manuais := repository.NewVendaManualRepository(db)
	retiradas := repository.NewRetiradaRepository(db)

	caixa := NewCaixaService(caixas, vendas, manuais, retiradas, fila, cfg)
	return &ambiente{
		cfg:      cfg,
		fila:     fila,
		caixa:    caixa,
		vendas:   NewVendaService(vendas, caixas, caixa, cfg),
		manuais:  NewVendaManualService(manuais, caixas, caixa, cfg),
		retirada: NewRetiradaService(retiradas, caixas, caixa, cfg),
		auth:     NewAuthService(repository.NewUsuarioRepository(db), cfg),
	}
}

func d(v string) decimal.Decimal { return decimal.RequireFromString(v) }

func eq(t *testing.T, want string, got decimal.Decimal, msg string) {
	t.Helper()
	assert.True(t, d(want).Equal(got), "%s: want %s, got %s", msg, want, got)
}

func TestParseID(t *testing.T) {
	id, err := parseID("  ")
	assert.NoError(t, err)
	assert.Nil(t, id)

	_, err = parseID("nao-e-uuid")
	assert.Error(t, err)

	u := uuid.New()
	id, err = parseID(u.String())
	assert.NoError(t, err)
	assert.Equal(t, u, *id)
}

func TestFormatar_UsaFusoDoNegocio(t *testing.T) {
	loc, _ := time.LoadLocation("America/Sao_Paulo")
	got := formatar(time.Date(2025, 11, 9, 23, 0, 0, 0, time.UTC), loc)
	assert.Equal(t, "2025-11-09T20:00:00-03:00", got)
}
