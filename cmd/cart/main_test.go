package main

import (
	"bytes"
	"context"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/dwikikusuma/shoping-cart/internal/cart/app"
	"github.com/dwikikusuma/shoping-cart/internal/cart/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCommand(t *testing.T) {
	t.Run("no args -> tui", func(t *testing.T) {
		cmd, err := parseCommand(nil)
		require.NoError(t, err)
		assert.Equal(t, "tui", cmd.name)
	})

	t.Run("set", func(t *testing.T) {
		cmd, err := parseCommand([]string{"set", "7", "3"})
		require.NoError(t, err)
		assert.Equal(t, command{name: "set", productID: 7, amount: 3}, cmd)
	})

	t.Run("set keeps non positive amounts", func(t *testing.T) {
		cmd, err := parseCommand([]string{"set", "7", "0"})
		require.NoError(t, err)
		assert.Equal(t, 0, cmd.amount)
	})

	bad := [][]string{
		{"buy", "1"},
		{"add"},
		{"add", "x"},
		{"add", "0"},
		{"remove", "1", "2"},
		{"set", "1", "many"},
		{"list", "extra"},
	}
	for _, args := range bad {
		_, err := parseCommand(args)
		assert.Error(t, err, "args %v", args)
	}
}

func TestFormatPrice(t *testing.T) {
	cases := map[float64]string{
		0:       "R$ 0,00",
		179.9:   "R$ 179,90",
		1179.9:  "R$ 1.179,90",
		1234567: "R$ 1.234.567,00",
		-12.5:   "-R$ 12,50",
	}
	for in, want := range cases {
		assert.Equal(t, want, formatPrice(in), "formatPrice(%v)", in)
	}
}

func TestPrintCart(t *testing.T) {
	var buf bytes.Buffer
	printCart(&buf, nil)
	assert.Equal(t, "Carrinho vazio\n", buf.String())

	buf.Reset()
	printCart(&buf, domain.Cart{
		{Product: domain.Product{ID: 1, Title: "Tênis", Price: 100}, Amount: 2},
		{Product: domain.Product{ID: 2, Title: "Meia", Price: 9.5}, Amount: 1},
	})
	out := buf.String()
	assert.Contains(t, out, "R$ 200,00")
	assert.Contains(t, out, "R$ 209,50")
}

func TestModelUpdate(t *testing.T) {
	cart := domain.Cart{
		{Product: domain.Product{ID: 1, Title: "Tênis", Price: 100}, Amount: 2},
		{Product: domain.Product{ID: 2, Title: "Meia", Price: 9.5}, Amount: 1},
	}
	m := newModel(context.Background(), nil, cart)

	t.Run("cursor clamps when the cart shrinks", func(t *testing.T) {
		next, _ := m.Update(tea.KeyMsg{Type: tea.KeyDown})
		mm := next.(model)
		require.Equal(t, 1, mm.cursor)

		next, _ = mm.Update(cartMsg(cart[:1]))
		assert.Equal(t, 0, next.(model).cursor)
	})

	t.Run("toast from notification", func(t *testing.T) {
		next, _ := m.Update(toastMsg{text: domain.KindOutOfStock.Message()})
		assert.Contains(t, next.(model).View(), "Quantidade solicitada fora de estoque")
	})

	t.Run("digits build the product id", func(t *testing.T) {
		var mm tea.Model = m
		for _, r := range "42" {
			mm, _ = mm.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
		}
		mm, _ = mm.Update(tea.KeyMsg{Type: tea.KeyBackspace})
		assert.Equal(t, "4", mm.(model).input)
	})

	t.Run("uncategorised errors surface as toast", func(t *testing.T) {
		mm := m
		mm.busy = 1
		next, _ := mm.Update(opDone{err: assert.AnError})
		assert.Equal(t, assert.AnError.Error(), next.(model).toast)
		assert.Equal(t, 0, next.(model).busy)
	})

	t.Run("view lists lines and total", func(t *testing.T) {
		view := m.View()
		assert.True(t, strings.HasPrefix(view, "Carrinho (2 itens)"))
		assert.Contains(t, view, "R$ 209,50")
	})
}

func TestProgramRefWithoutProgram(t *testing.T) {
	ref := &programRef{}
	assert.NoError(t, ref.notify(context.Background(), app.Notification{Message: "x"}))
}
