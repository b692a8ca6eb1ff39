package main

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync/atomic"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/dwikikusuma/shoping-cart/internal/cart/app"
	"github.com/dwikikusuma/shoping-cart/internal/cart/domain"
)

// programRef lets the store notifier reach a program created after the store.
type programRef struct {
	p atomic.Pointer[tea.Program]
}

func (r *programRef) notify(_ context.Context, n app.Notification) error {
	if p := r.p.Load(); p != nil {
		p.Send(toastMsg{text: n.Message})
	}
	return nil
}

type cartMsg domain.Cart

type toastMsg struct {
	text string
}

type opDone struct {
	err error
}

type model struct {
	ctx    context.Context
	store  *app.Store
	cart   domain.Cart
	cursor int
	input  string
	toast  string
	busy   int
}

func newModel(ctx context.Context, store *app.Store, cart domain.Cart) model {
	return model{ctx: ctx, store: store, cart: cart}
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.onKey(msg)
	case cartMsg:
		m.cart = domain.Cart(msg)
		if m.cursor >= len(m.cart) {
			m.cursor = max(len(m.cart)-1, 0)
		}
	case toastMsg:
		m.toast = msg.text
	case opDone:
		m.busy--
		if msg.err != nil {
			if _, ok := domain.KindOf(msg.err); !ok {
				m.toast = msg.err.Error()
			}
		}
	}
	return m, nil
}

func (m model) onKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key := msg.String(); key {
	case "ctrl+c", "q", "esc":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.cart)-1 {
			m.cursor++
		}
	case "backspace":
		if m.input != "" {
			m.input = m.input[:len(m.input)-1]
		}
	case "enter":
		id, err := strconv.Atoi(m.input)
		m.input = ""
		if err != nil || id <= 0 {
			return m, nil
		}
		return m.run(func(ctx context.Context) error { return m.store.AddProduct(ctx, id) })
	case "+", "a":
		if it, ok := m.selected(); ok {
			return m.run(func(ctx context.Context) error { return m.store.AddProduct(ctx, it.ID) })
		}
	case "-", "s":
		if it, ok := m.selected(); ok {
			return m.run(func(ctx context.Context) error {
				return m.store.UpdateProductAmount(ctx, app.UpdateAmount{ProductID: it.ID, Amount: it.Amount - 1})
			})
		}
	case "x", "delete":
		if it, ok := m.selected(); ok {
			return m.run(func(ctx context.Context) error { return m.store.RemoveProduct(ctx, it.ID) })
		}
	default:
		if len(key) == 1 && key[0] >= '0' && key[0] <= '9' && len(m.input) < 9 {
			m.input += key
		}
	}
	return m, nil
}

func (m model) selected() (domain.LineItem, bool) {
	if m.cursor < 0 || m.cursor >= len(m.cart) {
		return domain.LineItem{}, false
	}
	return m.cart[m.cursor], true
}

func (m model) run(op func(ctx context.Context) error) (tea.Model, tea.Cmd) {
	m.busy++
	m.toast = ""
	ctx := m.ctx
	return m, func() tea.Msg {
		return opDone{err: op(ctx)}
	}
}

func (m model) View() string {
	b := &strings.Builder{}
	fmt.Fprintf(b, "Carrinho (%d itens)\n\n", len(m.cart))

	if len(m.cart) == 0 {
		fmt.Fprintln(b, "  vazio")
	}
	for i, it := range m.cart {
		marker := " "
		if i == m.cursor {
			marker = ">"
		}
		fmt.Fprintf(b, " %s %-4d %-40s x%-3d %s\n", marker, it.ID, it.Title, it.Amount, formatPrice(it.Subtotal()))
	}
	fmt.Fprintf(b, "\nTotal: %s\n", formatPrice(m.cart.Total()))

	fmt.Fprintf(b, "\nAdicionar produto: %s_\n", m.input)
	if m.busy > 0 {
		fmt.Fprintln(b, "...")
	}
	if m.toast != "" {
		fmt.Fprintf(b, "\n! %s\n", m.toast)
	}
	fmt.Fprintln(b, "\nControls: digits+enter add by id, up/down select, +/- amount, x remove, q quit")
	return b.String()
}

func runTUI(ctx context.Context, store *app.Store, ref *programRef) error {
	p := tea.NewProgram(newModel(ctx, store, store.Cart()), tea.WithContext(ctx))
	ref.p.Store(p)
	defer ref.p.Store(nil)

	unsubscribe := store.Subscribe(func(c domain.Cart) { p.Send(cartMsg(c)) })
	defer unsubscribe()

	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return err
	}
	return nil
}
