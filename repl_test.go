package main

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"querychat/internal/backend"
	"querychat/internal/conversation"
	"querychat/internal/dialog"
	"querychat/internal/models"
	"querychat/internal/session"
	"querychat/internal/summary"
)

type productBackend struct{}

func (productBackend) Ask(context.Context, string) (*backend.Response, error) {
	return &backend.Response{
		Query: "SELECT * FROM products WHERE id = 3",
		ResultsHTML: `<table><tr><th>id</th><th>name</th><th>price</th><th>stock</th><th>description</th></tr>` +
			`<tr><td>3</td><td>Wireless Mouse</td><td>49.99</td><td>150</td><td>Ergonomic wireless mouse</td></tr></table>`,
	}, nil
}

func TestREPLSession(t *testing.T) {
	store, err := session.NewStore([]models.Channel{
		{ID: "general"},
		{ID: "product", DisplayName: "Produkte", Domain: summary.DomainProduct},
	}, 1)
	require.NoError(t, err)
	engine := conversation.NewEngine(store, productBackend{}, conversation.Options{})
	defer engine.Close()

	input := strings.Join([]string{
		"/channels",
		"/channel nope",
		"/channel product",
		"Was kostet die Maus?",
		"ja",
		"/quit",
		"ignored",
	}, "\n")
	var out bytes.Buffer
	require.NoError(t, newREPL(engine, strings.NewReader(input), &out).Run(context.Background()))

	text := out.String()
	assert.Contains(t, text, "* general")
	assert.Contains(t, text, "product (Produkte, product)")
	assert.Contains(t, text, "Unbekannter Kanal: nope")
	assert.Contains(t, text, `Das Produkt "Wireless Mouse"`)
	assert.Contains(t, text, "Wireless Mouse  49.99")
	assert.Contains(t, text, dialog.PromptText)
	assert.Contains(t, text, dialog.AcceptText)
	assert.Contains(t, text, "[product]> ")

	history, err := store.Get("product")
	require.NoError(t, err)
	assert.Len(t, history, 5)
	general, err := store.Get("general")
	require.NoError(t, err)
	assert.Empty(t, general)
}

func TestREPLStopsReaderAfterQuit(t *testing.T) {
	store, err := session.NewStore([]models.Channel{{ID: "general"}}, 1)
	require.NoError(t, err)
	engine := conversation.NewEngine(store, productBackend{}, conversation.Options{})
	defer engine.Close()

	r := newREPL(engine, strings.NewReader("/quit\nnoch eine Zeile\nund noch eine\n"), &bytes.Buffer{})
	require.NoError(t, r.Run(context.Background()))

	select {
	case <-r.readerDone:
	case <-time.After(2 * time.Second):
		t.Fatal("input reader still running after quit")
	}
}

func TestREPLStopsOnContextCancel(t *testing.T) {
	store, err := session.NewStore([]models.Channel{{ID: "general"}}, 1)
	require.NoError(t, err)
	engine := conversation.NewEngine(store, productBackend{}, conversation.Options{})
	defer engine.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	r := newREPL(engine, strings.NewReader("/channels\n/history\n"), &bytes.Buffer{})
	require.NoError(t, r.Run(ctx))

	select {
	case <-r.readerDone:
	case <-time.After(2 * time.Second):
		t.Fatal("input reader still running after cancel")
	}
}
