package worker

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/silvioaquino/Gestao-PDV/internal/conciliacao"
	"github.com/silvioaquino/Gestao-PDV/internal/dto"
	"github.com/silvioaquino/Gestao-PDV/internal/infra"
	"github.com/silvioaquino/Gestao-PDV/internal/printer"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() { backoffBase = time.Millisecond }

// ── fakes ────────────────────────────────────────────────────────────────────

type fonteFake struct {
	c   *dto.ComprovanteCaixa
	err error
}

func (f fonteFake) Comprovante(context.Context, uuid.UUID) (*dto.ComprovanteCaixa, error) {
	return f.c, f.err
}

type printerFake struct {
	mu    sync.Mutex
	tipo  string
	err   error
	jobs  [][]byte
	calls int
}

func (p *printerFake) Print(_ context.Context, data []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls++
	if p.err != nil {
		return p.err
	}
	p.jobs = append(p.jobs, data)
	return nil
}

func (p *printerFake) Tipo() string { return p.tipo }

func (p *printerFake) IsConnected() bool { return p.err == nil }

type mailerFake struct {
	to, subject, body, path string
	err                     error
}

func (m *mailerFake) EnviarRelatorio(to, subject, body, pdfPath string) error {
	m.to, m.subject, m.body, m.path = to, subject, body, pdfPath
	return m.err
}

func comprovante() *dto.ComprovanteCaixa {
	abertura := time.Date(2025, 11, 9, 8, 0, 0, 0, time.UTC)
	fechamento := abertura.Add(12 * time.Hour)
	return &dto.ComprovanteCaixa{
		CaixaAberturaID: uuid.NewString(),
		RestauranteNome: "Cantinho do Sabor",
		Fechado:         true,
		DataAbertura:    abertura,
		DataFechamento:  &fechamento,
		EmitidoEm:       fechamento,
		Resumo:          conciliacao.Calcular(conciliacao.Entrada{ValorAbertura: decimal.NewFromInt(100)}),
	}
}

func payload(t *testing.T, p CaixaJobPayload) json.RawMessage {
	t.Helper()
	raw, err := json.Marshal(p)
	require.NoError(t, err)
	return raw
}

// ── retry / pool ─────────────────────────────────────────────────────────────

func TestWithRetry(t *testing.T) {
	calls := 0
	err := withRetry(context.Background(), 3, func(int) error {
		calls++
		if calls < 3 {
			return errors.New("ainda não")
		}
		return nil
	})
	assert.NoError(t, err)
	assert.Equal(t, 3, calls)

	calls = 0
	err = withRetry(context.Background(), 3, func(int) error {
		calls++
		return errors.New("sempre")
	})
	assert.EqualError(t, err, "sempre")
	assert.Equal(t, 3, calls)
}

func TestWithRetry_ContextoCancelado(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := withRetry(ctx, 3, func(int) error { return errors.New("falhou") })
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRunWorker_RedisIndisponivelAguarda(t *testing.T) {
	rdb := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1"})
	require.NoError(t, rdb.Close())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var esperas []time.Duration
	original := esperar
	t.Cleanup(func() { esperar = original })
	esperar = func(_ context.Context, d time.Duration) {
		esperas = append(esperas, d)
		if len(esperas) == 7 {
			cancel()
		}
	}

	pool := StartWorkerPool(ctx, rdb, Handlers{}, 1)
	parou := make(chan struct{})
	go func() {
		pool.Wait()
		close(parou)
	}()
	select {
	case <-parou:
	case <-time.After(5 * time.Second):
		t.Fatal("worker did not stop after cancel")
	}

	s := time.Second
	assert.Equal(t, []time.Duration{s, 2 * s, 4 * s, 8 * s, 16 * s, 30 * s, 30 * s}, esperas)
}

func TestProcessJob(t *testing.T) {
	var recebido json.RawMessage
	falhas := 0
	p := &Pool{handlers: Handlers{
		JobImpressao: HandlerFunc(func(_ context.Context, raw json.RawMessage) error {
			recebido = raw
			return nil
		}),
		JobRelatorio: HandlerFunc(func(context.Context, json.RawMessage) error {
			falhas++
			return errors.New("smtp fora do ar")
		}),
	}}
	ctx := context.Background()

	require.NoError(t, p.processJob(ctx, QueueImpressao, `{"type":"impressao","payload":{"caixa_id":"abc"}}`))
	assert.JSONEq(t, `{"caixa_id":"abc"}`, string(recebido))

	assert.Error(t, p.processJob(ctx, QueueRelatorio, `{"type":"relatorio","payload":{}}`))
	assert.Equal(t, maxTentativas, falhas)

	assert.Error(t, p.processJob(ctx, QueueImpressao, `{"type":"desconhecido","payload":{}}`))
	assert.Error(t, p.processJob(ctx, QueueImpressao, `nao e json`))
}

// ── impressão ────────────────────────────────────────────────────────────────

func TestImpressaoWorker_Imprime(t *testing.T) {
	c := comprovante()
	pr := &printerFake{tipo: "network"}
	w := NewImpressaoWorker(fonteFake{c: c}, NewImpressora(pr, infra.NewCircuitBreaker(infra.DefaultCBConfig()), 48))

	require.NoError(t, w.Process(context.Background(), payload(t, CaixaJobPayload{CaixaID: c.CaixaAberturaID})))
	require.Len(t, pr.jobs, 1)
	assert.Contains(t, string(pr.jobs[0]), "FECHAMENTO DE CAIXA")
}

func TestImpressaoWorker_SemImpressora(t *testing.T) {
	c := comprovante()
	pr := &printerFake{tipo: "none"}
	w := NewImpressaoWorker(fonteFake{c: c}, NewImpressora(pr, nil, 48))

	assert.NoError(t, w.Process(context.Background(), payload(t, CaixaJobPayload{CaixaID: c.CaixaAberturaID})))
	assert.Zero(t, pr.calls)
}

func TestImpressaoWorker_PayloadInvalidoNaoRepete(t *testing.T) {
	w := NewImpressaoWorker(fonteFake{}, NewImpressora(&printerFake{tipo: "usb"}, nil, 48))
	assert.NoError(t, w.Process(context.Background(), json.RawMessage(`{"caixa_id":"x"}`)))
	assert.NoError(t, w.Process(context.Background(), json.RawMessage(`[`)))
}

func TestImpressora_AbreCircuito(t *testing.T) {
	pr := &printerFake{tipo: "network", err: errors.New("connection refused")}
	cb := infra.NewCircuitBreaker(infra.CircuitBreakerConfig{FailureThreshold: 2, SuccessThreshold: 1, OpenTimeout: time.Minute})
	imp := NewImpressora(pr, cb, 48)
	ctx := context.Background()
	assert.Equal(t, "closed", imp.Estado())

	assert.Error(t, imp.Imprimir(ctx, *comprovante()))
	assert.Error(t, imp.Imprimir(ctx, *comprovante()))
	assert.ErrorIs(t, imp.Imprimir(ctx, *comprovante()), infra.ErrCircuitOpen)
	assert.Equal(t, 2, pr.calls)
	assert.Equal(t, infra.CBOpen, cb.State())
	assert.Equal(t, "open", imp.Estado())
}

func TestImpressora_SemImpressoraConfigurada(t *testing.T) {
	imp := NewImpressora(printer.NewNullPrinter(), nil, 48)
	assert.False(t, imp.Configurada())
	assert.Equal(t, "disabled", imp.Estado())
	assert.ErrorIs(t, imp.Imprimir(context.Background(), *comprovante()), printer.ErrSemImpressora)
}

// ── relatório ────────────────────────────────────────────────────────────────

func TestRelatorioWorker_EnviaPDF(t *testing.T) {
	c := comprovante()
	m := &mailerFake{}
	dir := t.TempDir()
	w := NewRelatorioWorker(fonteFake{c: c}, m, dir)

	err := w.Process(context.Background(), payload(t, CaixaJobPayload{CaixaID: c.CaixaAberturaID, Destinatario: "gerente@x.com"}))
	require.NoError(t, err)
	assert.Equal(t, "gerente@x.com", m.to)
	assert.Equal(t, "Fechamento de caixa 09/11/2025 - Cantinho do Sabor", m.subject)
	assert.Contains(t, m.body, "Saldo em dinheiro: R$ 100,00")
	assert.True(t, strings.HasPrefix(m.path, dir))

	info, err := os.Stat(m.path)
	require.NoError(t, err)
	assert.Positive(t, info.Size())
}

func TestRelatorioWorker_ErrosPropagam(t *testing.T) {
	c := comprovante()
	ctx := context.Background()
	raw := payload(t, CaixaJobPayload{CaixaID: c.CaixaAberturaID, Destinatario: "gerente@x.com"})

	w := NewRelatorioWorker(fonteFake{c: c}, &mailerFake{err: errors.New("535 auth")}, t.TempDir())
	assert.ErrorContains(t, w.Process(ctx, raw), "enviar e-mail")

	w = NewRelatorioWorker(fonteFake{err: errors.New("db down")}, &mailerFake{}, t.TempDir())
	assert.ErrorContains(t, w.Process(ctx, raw), "carregar comprovante")

	// nothing to retry without a recipient
	m := &mailerFake{}
	w = NewRelatorioWorker(fonteFake{c: c}, m, t.TempDir())
	assert.NoError(t, w.Process(ctx, payload(t, CaixaJobPayload{CaixaID: c.CaixaAberturaID})))
	assert.Empty(t, m.to)
}

// ── limpeza ──────────────────────────────────────────────────────────────────

type removedorFake struct {
	mu    sync.Mutex
	calls int
}

func (r *removedorFake) RemoverExpiradas(context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	return 2, nil
}

func (r *removedorFake) chamadas() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls
}

func TestLimpezaCron(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	repo := &removedorFake{}

	StartLimpezaCron(ctx, repo, 5*time.Millisecond)
	assert.Eventually(t, func() bool { return repo.chamadas() >= 2 }, time.Second, 5*time.Millisecond)
}
