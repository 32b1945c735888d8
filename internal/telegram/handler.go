package telegram

import (
	"context"
	"log"
	"strconv"
	"strings"

	tele "gopkg.in/telebot.v3"

	"github.com/talesofkitsune/applybot/internal/relay"
)

// Handler — входящая граница: маршруты telebot → вызовы ядра.
type Handler struct {
	bot       *tele.Bot
	svc       *relay.Service
	staffChat int64
}

func NewHandler(bot *tele.Bot, svc *relay.Service, staffChat int64) *Handler {
	return &Handler{bot: bot, svc: svc, staffChat: staffChat}
}

// Register wires all routes and publishes the bot command menu.
func (h *Handler) Register() {
	h.bot.Handle("/start", h.onStart)
	h.bot.Handle(tele.OnCallback, h.onCallback)

	for _, ev := range []string{
		tele.OnText, tele.OnPhoto, tele.OnDocument,
		tele.OnVideo, tele.OnAudio, tele.OnVoice,
	} {
		h.bot.Handle(ev, h.onContent)
	}

	// Операторские команды (работают в стафф-группе).
	h.bot.Handle("/dm", h.onDirectMessage)
	h.bot.Handle("/block", h.onBlock)
	h.bot.Handle("/unblock", h.onUnblock)
	h.bot.Handle("/topic", h.onTopic)

	if err := h.bot.SetCommands([]tele.Command{
		{Text: "start", Description: "Главное меню"},
	}); err != nil {
		log.Printf("[tg] set commands: %v", err)
	}
}

func (h *Handler) onStart(c tele.Context) error {
	if c.Chat().Type != tele.ChatPrivate {
		return nil
	}
	return h.svc.HandleStart(context.Background(), userOf(c.Sender()), c.Chat().ID)
}

func (h *Handler) onCallback(c tele.Context) error {
	// Сразу гасим "часики" на кнопке.
	defer func() { _ = c.Respond() }()

	data := strings.TrimSpace(c.Callback().Data)
	return h.svc.HandleAction(context.Background(), userOf(c.Sender()), c.Chat().ID, data)
}

// onContent — свободный контент: из привата кандидата в стафф-группу,
// из стафф-группы (ответом на доставленное) обратно кандидату.
func (h *Handler) onContent(c tele.Context) error {
	m := c.Message()
	if m == nil || m.Text != "" && strings.HasPrefix(m.Text, "/") {
		return nil
	}

	frag := fragmentOf(m)

	if m.Chat.ID == h.staffChat {
		if m.ReplyTo == nil {
			return nil
		}
		return h.svc.HandleStaffReply(
			context.Background(),
			userOf(c.Sender()),
			relay.MessageRef{ChatID: m.Chat.ID, MessageID: m.ReplyTo.ID},
			m.ThreadID,
			frag,
			m.AlbumID,
		)
	}

	if m.Chat.Type != tele.ChatPrivate {
		return nil
	}
	return h.svc.HandleCandidateContent(context.Background(), userOf(c.Sender()), m.Chat.ID, frag, m.AlbumID)
}

func (h *Handler) onDirectMessage(c tele.Context) error {
	if !h.svc.IsOperator(c.Sender().ID) {
		return nil
	}

	id, rest, ok := splitIDArg(c.Message().Payload)
	if !ok || rest == "" {
		return c.Reply("Использование: /dm <id> <текст>")
	}

	h.svc.DirectMessage(context.Background(), c.Sender().ID, id, c.Message().ThreadID, relay.Fragment{Kind: relay.KindText, Text: rest})
	return nil
}

func (h *Handler) onBlock(c tele.Context) error {
	if !h.svc.IsOperator(c.Sender().ID) {
		return nil
	}

	id, _, ok := splitIDArg(c.Message().Payload)
	if !ok {
		return c.Reply("Использование: /block <id>")
	}

	h.svc.Block(c.Sender().ID, id)
	return c.Reply("Готово: " + strconv.FormatInt(id, 10) + " заблокирован(а).")
}

func (h *Handler) onUnblock(c tele.Context) error {
	if !h.svc.IsOperator(c.Sender().ID) {
		return nil
	}

	id, _, ok := splitIDArg(c.Message().Payload)
	if !ok {
		return c.Reply("Использование: /unblock <id>")
	}

	h.svc.Unblock(c.Sender().ID, id)
	return c.Reply("Готово: " + strconv.FormatInt(id, 10) + " разблокирован(а).")
}

// onTopic — подсказка для настройки ROLE_TOPICS: id текущего топика.
func (h *Handler) onTopic(c tele.Context) error {
	if !h.svc.IsOperator(c.Sender().ID) {
		return nil
	}
	return c.Reply("topic id: " + strconv.Itoa(c.Message().ThreadID))
}

// splitIDArg parses "<numeric id> [rest...]" from a command payload.
func splitIDArg(payload string) (int64, string, bool) {
	payload = strings.TrimSpace(payload)
	idPart, rest := payload, ""
	if i := strings.IndexByte(payload, ' '); i >= 0 {
		idPart, rest = payload[:i], strings.TrimSpace(payload[i+1:])
	}

	id, err := strconv.ParseInt(idPart, 10, 64)
	if err != nil || id == 0 {
		return 0, "", false
	}
	return id, rest, true
}

func userOf(u *tele.User) relay.User {
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	return relay.User{ID: u.ID, Username: u.Username, Name: name}
}

func fragmentOf(m *tele.Message) relay.Fragment {
	switch {
	case m.Photo != nil:
		return relay.Fragment{Kind: relay.KindPhoto, FileID: m.Photo.FileID, Text: m.Caption}
	case m.Document != nil:
		return relay.Fragment{Kind: relay.KindDocument, FileID: m.Document.FileID, Text: m.Caption}
	case m.Video != nil:
		return relay.Fragment{Kind: relay.KindVideo, FileID: m.Video.FileID, Text: m.Caption}
	case m.Audio != nil:
		return relay.Fragment{Kind: relay.KindAudio, FileID: m.Audio.FileID, Text: m.Caption}
	case m.Voice != nil:
		return relay.Fragment{Kind: relay.KindVoice, FileID: m.Voice.FileID}
	}
	return relay.Fragment{Kind: relay.KindText, Text: m.Text}
}
