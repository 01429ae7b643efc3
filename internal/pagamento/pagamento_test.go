package pagamento

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizar(t *testing.T) {
	cases := []struct {
		in   string
		want Tipo
	}{
		{"crédito", CartaoCredito},
		{"CREDITO", CartaoCredito},
		{"Cartão", CartaoCredito},
		{"cartao", CartaoCredito},
		{"débito", CartaoDebito},
		{"DEBITO", CartaoDebito},
		{"dinheiro", Dinheiro},
		{"pix", Pix},
		{"Dinheiro/Pix", Pix},
		{"outros", Outro},
		{"vale refeição", VR},
		{"VALE REFEICAO", VR},
		{"vr", VR},
		{"  PIX  ", Pix},
		{"CARTAO_DEBITO", CartaoDebito},
		{"PENDENTE", Pendente},
		{"MEAL_VOUCHER", VR},
		{"cash", Dinheiro},
		{"xyz", Pendente},
		{"", Pendente},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			assert.Equal(t, tc.want, Normalizar(tc.in))
		})
	}
}

func TestParse_AceitaSomenteCanonicos(t *testing.T) {
	got, err := Parse(" cartao_credito ")
	require.NoError(t, err)
	assert.Equal(t, CartaoCredito, got)

	for _, in := range []string{"crédito", "CASH", "", "DINHEIRO/PIX"} {
		_, err := Parse(in)
		assert.ErrorIs(t, err, ErrTipoInvalido, in)
	}
}

func TestTodos_OrdemERotulos(t *testing.T) {
	require.Len(t, Todos, 7)
	assert.Equal(t, Dinheiro, Todos[0])
	assert.Equal(t, Pendente, Todos[6])
	for _, tipo := range Todos {
		assert.True(t, tipo.Valido())
		assert.NotEmpty(t, tipo.Rotulo())
	}
	assert.Equal(t, "Vale Refeição", VR.Rotulo())
	assert.False(t, Tipo("BOLETO").Valido())
}
