package relay

import (
	"context"
	"strconv"
)

// Kind — тип фрагмента заявки.
type Kind string

const (
	KindText     Kind = "text"
	KindPhoto    Kind = "photo"
	KindDocument Kind = "document"
	KindVideo    Kind = "video"
	KindAudio    Kind = "audio"
	KindVoice    Kind = "voice"
)

// Albumable reports whether the platform can pack this kind into a media
// batch. Text and voice always go out as individual messages.
func (k Kind) Albumable() bool {
	return k.albumGroup() != ""
}

// albumGroup — класс совместимости медиагруппы: телега позволяет смешивать
// фото с видео, но документы и аудио только с себе подобными.
func (k Kind) albumGroup() string {
	switch k {
	case KindPhoto, KindVideo:
		return "visual"
	case KindDocument:
		return "document"
	case KindAudio:
		return "audio"
	}
	return ""
}

// Fragment — одна часть заявки: текст либо файл с подписью.
type Fragment struct {
	Kind   Kind
	FileID string // opaque platform file reference, empty for text
	Text   string // text body or media caption
}

// MessageRef addresses one delivered message.
type MessageRef struct {
	ChatID    int64
	MessageID int
}

func (r MessageRef) Zero() bool { return r.ChatID == 0 && r.MessageID == 0 }

// Button / Menu — инлайн-клавиатура в терминах ядра. Data — непрозрачная
// строка действия ("ns:arg"), которую платформа вернет в колбэке.
type Button struct {
	Text string
	Data string
}

type Menu [][]Button

// User — отправитель в терминах ядра.
type User struct {
	ID       int64
	Username string
	Name     string
}

// Label — как показывать кандидата стаффу.
func (u User) Label() string {
	if u.Username != "" {
		return "@" + u.Username
	}
	if u.Name != "" {
		return u.Name
	}
	return "id" + strconv.FormatInt(u.ID, 10)
}

// Gateway — платформа доставки. Ядро не знает про Telegram, только про
// этот порт; адаптер живет в internal/telegram.
type Gateway interface {
	// Send posts text with an optional inline menu, returns the new message.
	Send(ctx context.Context, chatID int64, threadID int, text string, menu Menu) (MessageRef, error)
	// Edit replaces text and menu of an existing message in place.
	Edit(ctx context.Context, ref MessageRef, text string, menu Menu) error
	// Delete removes a message. Best-effort on the caller's side.
	Delete(ctx context.Context, ref MessageRef) error
	// SendFragment delivers one fragment, optionally as a reply to anchor.
	SendFragment(ctx context.Context, chatID int64, threadID int, f Fragment, anchor MessageRef) (MessageRef, error)
	// SendBatch delivers up to ten albumable fragments as one grouped
	// delivery and returns the refs in order.
	SendBatch(ctx context.Context, chatID int64, threadID int, fs []Fragment) ([]MessageRef, error)
}

// DeliveryRecord — строка архива доставок.
type DeliveryRecord struct {
	ID        string
	Direction string // "to_staff" | "to_candidate"
	UserID    int64
	Role      string
	Kind      string
	Text      string
}

// Archive — persistence ретранслированных доставок.
type Archive interface {
	SaveDelivery(ctx context.Context, rec *DeliveryRecord) error
}
