package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"querychat/internal/dialog"
	"querychat/internal/models"
	"querychat/internal/summary"
)

func testChannels() []models.Channel {
	return []models.Channel{
		{ID: "sales", DisplayName: "Verkäufe", Domain: summary.DomainSales},
		{ID: "product", DisplayName: "Produkte", Domain: summary.DomainProduct},
	}
}

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(testChannels(), 1)
	require.NoError(t, err)
	return s
}

func TestNewStoreValidation(t *testing.T) {
	_, err := NewStore(nil, 1)
	assert.Error(t, err)

	_, err = NewStore([]models.Channel{{ID: "a"}, {ID: "a"}}, 1)
	assert.Error(t, err)

	_, err = NewStore([]models.Channel{{ID: "  "}}, 1)
	assert.Error(t, err)

	s, err := NewStore([]models.Channel{{ID: "x"}}, 1)
	require.NoError(t, err)
	ch, err := s.Channel("x")
	require.NoError(t, err)
	assert.Equal(t, "x", ch.DisplayName)
}

func TestStoreAppendAndGetPreservesOrder(t *testing.T) {
	s := newTestStore(t)
	first := s.NewMessage("sales", models.SenderUser, "eins", nil)
	second := s.NewMessage("sales", models.SenderBot, "zwei", &models.Result{Rows: [][]string{{"id"}}})
	require.NoError(t, s.Append("sales", first))
	require.NoError(t, s.Append("sales", second))

	msgs, err := s.Get("sales")
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, "eins", msgs[0].Text)
	assert.Equal(t, "zwei", msgs[1].Text)
	assert.NotEqual(t, msgs[0].ID, msgs[1].ID)
	assert.Less(t, msgs[0].ID, msgs[1].ID)

	other, err := s.Get("product")
	require.NoError(t, err)
	assert.Empty(t, other)
}

func TestStoreGetReturnsCopy(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.Append("sales", s.NewMessage("sales", models.SenderUser, "hallo", nil)))

	msgs, err := s.Get("sales")
	require.NoError(t, err)
	msgs[0].Text = "verändert"

	again, err := s.Get("sales")
	require.NoError(t, err)
	assert.Equal(t, "hallo", again[0].Text)
}

func TestStoreCopiesResultRows(t *testing.T) {
	s := newTestStore(t)
	result := &models.Result{Rows: [][]string{{"id", "name"}, {"1", "Laptop Pro 15"}}, Query: "SELECT id, name FROM products"}
	require.NoError(t, s.Append("product", s.NewMessage("product", models.SenderBot, "Hier", result)))
	result.Rows[1][0] = "99"

	msgs, err := s.Get("product")
	require.NoError(t, err)
	msgs[0].Result.Rows[1][1] = "verändert"
	msgs[0].Result.Rows = append(msgs[0].Result.Rows, []string{"2"})

	snap := s.Snapshot()
	snap["product"][0].Result.Rows[0][0] = "kaputt"

	again, err := s.Get("product")
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"id", "name"}, {"1", "Laptop Pro 15"}}, again[0].Result.Rows)
}

func TestStoreUnknownChannel(t *testing.T) {
	s := newTestStore(t)
	assert.ErrorIs(t, s.Append("team", models.Message{}), ErrUnknownChannel)
	_, err := s.Get("team")
	assert.ErrorIs(t, err, ErrUnknownChannel)
	assert.ErrorIs(t, s.SetActive("team"), ErrUnknownChannel)
	_, err = s.Dialog("team")
	assert.ErrorIs(t, err, ErrUnknownChannel)
}

func TestStoreActiveChannel(t *testing.T) {
	s := newTestStore(t)
	assert.Equal(t, "sales", s.Active())
	require.NoError(t, s.SetActive("product"))
	assert.Equal(t, "product", s.Active())
}

func TestStoreDialogIsPerChannel(t *testing.T) {
	s := newTestStore(t)
	d, err := s.Dialog("sales")
	require.NoError(t, err)
	d.Prompt()

	same, err := s.Dialog("sales")
	require.NoError(t, err)
	assert.Equal(t, dialog.AwaitingConfirmation, same.State())

	other, err := s.Dialog("product")
	require.NoError(t, err)
	assert.Equal(t, dialog.Idle, other.State())
}

func TestStoreSnapshotRestore(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.Append("sales", s.NewMessage("sales", models.SenderUser, "a", nil)))
	snap := s.Snapshot()
	require.Len(t, snap["sales"], 1)
	require.Contains(t, snap, "product")

	restored := newTestStore(t)
	snap["ghost"] = []models.Message{{Text: "lost"}}
	restored.Restore(snap)

	msgs, err := restored.Get("sales")
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, "a", msgs[0].Text)
	assert.Len(t, restored.Channels(), 2)
}
