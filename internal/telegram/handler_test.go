package telegram

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tele "gopkg.in/telebot.v3"

	"github.com/talesofkitsune/applybot/internal/relay"
)

func TestSplitIDArg(t *testing.T) {
	id, rest, ok := splitIDArg("12345 привет, как дела")
	require.True(t, ok)
	assert.Equal(t, int64(12345), id)
	assert.Equal(t, "привет, как дела", rest)

	id, rest, ok = splitIDArg("  67890  ")
	require.True(t, ok)
	assert.Equal(t, int64(67890), id)
	assert.Empty(t, rest)

	_, _, ok = splitIDArg("vasya текст")
	assert.False(t, ok, "non-numeric id is malformed")

	_, _, ok = splitIDArg("")
	assert.False(t, ok)
}

func TestFragmentOf(t *testing.T) {
	m := &tele.Message{Text: "просто текст"}
	f := fragmentOf(m)
	assert.Equal(t, relay.KindText, f.Kind)
	assert.Equal(t, "просто текст", f.Text)

	m = &tele.Message{
		Photo:   &tele.Photo{File: tele.File{FileID: "ph-1"}},
		Caption: "глава 3",
	}
	f = fragmentOf(m)
	assert.Equal(t, relay.KindPhoto, f.Kind)
	assert.Equal(t, "ph-1", f.FileID)
	assert.Equal(t, "глава 3", f.Text)

	m = &tele.Message{Voice: &tele.Voice{File: tele.File{FileID: "v-1"}}}
	f = fragmentOf(m)
	assert.Equal(t, relay.KindVoice, f.Kind)
	assert.Equal(t, "v-1", f.FileID)
}

func TestToMarkup(t *testing.T) {
	assert.Nil(t, toMarkup(nil), "empty menu maps to no markup")

	menu := relay.Menu{
		{{Text: "Вакансии", Data: "roles"}, {Text: "О команде", Data: "about"}},
		{{Text: "Подать заявку", Data: "apply"}},
	}
	mk := toMarkup(menu)
	require.NotNil(t, mk)
	require.Len(t, mk.InlineKeyboard, 2)
	assert.Equal(t, "roles", mk.InlineKeyboard[0][0].Data)
	assert.Equal(t, "Подать заявку", mk.InlineKeyboard[1][0].Text)
}

func TestStoredRef(t *testing.T) {
	st := stored(relay.MessageRef{ChatID: -100, MessageID: 42})
	msgID, chatID := st.MessageSig()
	assert.Equal(t, "42", msgID)
	assert.Equal(t, int64(-100), chatID)
}
