package telegram

import (
	"context"
	"strconv"

	tele "gopkg.in/telebot.v3"

	"github.com/talesofkitsune/applybot/internal/relay"
)

// Gateway — адаптер telebot к порту relay.Gateway. Telebot живет без
// context, поэтому ctx здесь принимается ради порта и не используется.
type Gateway struct {
	bot *tele.Bot
}

func NewGateway(bot *tele.Bot) *Gateway {
	return &Gateway{bot: bot}
}

func (g *Gateway) Send(_ context.Context, chatID int64, threadID int, text string, menu relay.Menu) (relay.MessageRef, error) {
	msg, err := g.bot.Send(tele.ChatID(chatID), text, &tele.SendOptions{
		ThreadID:    threadID,
		ReplyMarkup: toMarkup(menu),
	})
	if err != nil {
		return relay.MessageRef{}, err
	}
	return refOf(msg), nil
}

func (g *Gateway) Edit(_ context.Context, ref relay.MessageRef, text string, menu relay.Menu) error {
	_, err := g.bot.Edit(stored(ref), text, &tele.SendOptions{ReplyMarkup: toMarkup(menu)})
	return err
}

func (g *Gateway) Delete(_ context.Context, ref relay.MessageRef) error {
	return g.bot.Delete(stored(ref))
}

func (g *Gateway) SendFragment(_ context.Context, chatID int64, threadID int, f relay.Fragment, anchor relay.MessageRef) (relay.MessageRef, error) {
	opts := &tele.SendOptions{ThreadID: threadID}
	if !anchor.Zero() {
		opts.ReplyTo = &tele.Message{ID: anchor.MessageID, Chat: &tele.Chat{ID: anchor.ChatID}}
	}

	var what interface{}
	if f.Kind == relay.KindText {
		what = f.Text
	} else {
		what = inputtable(f)
	}

	msg, err := g.bot.Send(tele.ChatID(chatID), what, opts)
	if err != nil {
		return relay.MessageRef{}, err
	}
	return refOf(msg), nil
}

func (g *Gateway) SendBatch(_ context.Context, chatID int64, threadID int, fs []relay.Fragment) ([]relay.MessageRef, error) {
	album := make(tele.Album, 0, len(fs))
	for _, f := range fs {
		album = append(album, inputtable(f).(tele.Inputtable))
	}

	msgs, err := g.bot.SendAlbum(tele.ChatID(chatID), album, &tele.SendOptions{ThreadID: threadID})
	if err != nil {
		return nil, err
	}

	refs := make([]relay.MessageRef, 0, len(msgs))
	for i := range msgs {
		refs = append(refs, refOf(&msgs[i]))
	}
	return refs, nil
}

func inputtable(f relay.Fragment) tele.Sendable {
	file := tele.File{FileID: f.FileID}
	switch f.Kind {
	case relay.KindPhoto:
		return &tele.Photo{File: file, Caption: f.Text}
	case relay.KindDocument:
		return &tele.Document{File: file, Caption: f.Text}
	case relay.KindVideo:
		return &tele.Video{File: file, Caption: f.Text}
	case relay.KindAudio:
		return &tele.Audio{File: file, Caption: f.Text}
	case relay.KindVoice:
		return &tele.Voice{File: file}
	}
	return &tele.Document{File: file, Caption: f.Text}
}

func toMarkup(menu relay.Menu) *tele.ReplyMarkup {
	if len(menu) == 0 {
		return nil
	}
	keyboard := make([][]tele.InlineButton, 0, len(menu))
	for _, row := range menu {
		btns := make([]tele.InlineButton, 0, len(row))
		for _, b := range row {
			btns = append(btns, tele.InlineButton{Text: b.Text, Data: b.Data})
		}
		keyboard = append(keyboard, btns)
	}
	return &tele.ReplyMarkup{InlineKeyboard: keyboard}
}

func stored(ref relay.MessageRef) tele.StoredMessage {
	return tele.StoredMessage{
		MessageID: strconv.Itoa(ref.MessageID),
		ChatID:    ref.ChatID,
	}
}

func refOf(m *tele.Message) relay.MessageRef {
	return relay.MessageRef{ChatID: m.Chat.ID, MessageID: m.ID}
}
