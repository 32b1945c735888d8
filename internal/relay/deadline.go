package relay

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/talesofkitsune/applybot/internal/roles"
)

type deadlineKey struct {
	userID int64
	epoch  int64 // unix seconds of the assignment moment
}

// deadlines schedules the test-assignment notices: an immediate announcement
// to the role's staff topic and a reminder to the candidate once the window
// runs out. Tasks are keyed by (user, assignment epoch); cancelling an
// application closes the token and suppresses a still-pending reminder.
// A re-application does not cancel earlier pending tasks.
type deadlines struct {
	gw        Gateway
	cat       *roles.Catalog
	staffChat int64
	window    time.Duration

	mu     sync.Mutex
	cancel map[deadlineKey][]chan struct{}
}

func newDeadlines(gw Gateway, cat *roles.Catalog, staffChat int64, window time.Duration) *deadlines {
	return &deadlines{
		gw:        gw,
		cat:       cat,
		staffChat: staffChat,
		window:    window,
		cancel:    make(map[deadlineKey][]chan struct{}),
	}
}

// schedule fires the announcement and parks a reminder until the deadline.
// Fire-and-forget: the caller returns immediately.
func (d *deadlines) schedule(user User, roleKey string, startedAt time.Time) {
	key := deadlineKey{userID: user.ID, epoch: startedAt.Unix()}
	ch := make(chan struct{})

	d.mu.Lock()
	d.cancel[key] = append(d.cancel[key], ch)
	d.mu.Unlock()

	go d.run(user, roleKey, startedAt, ch)
}

func (d *deadlines) run(user User, roleKey string, startedAt time.Time, cancelled <-chan struct{}) {
	deadline := startedAt.Add(d.window)

	title := roleKey
	if role, ok := d.cat.Get(roleKey); ok {
		title = role.Title
	}

	// Анонс стаффу — сразу, в топик роли либо в общий канал.
	announce := "📋 " + user.Label() + " взял(а) тестовое по роли «" + title + "».\n" +
		"Дедлайн: " + deadline.Format("02.01.2006 15:04")
	if _, err := d.gw.Send(context.Background(), d.staffChat, d.cat.TopicID(roleKey), announce, nil); err != nil {
		log.Printf("[deadline] announce user=%d role=%s: %v", user.ID, roleKey, err)
	}

	timer := time.NewTimer(time.Until(deadline))
	defer timer.Stop()

	select {
	case <-cancelled:
		return
	case <-timer.C:
	}

	remind := "⏰ Срок тестового по роли «" + title + "» истекает!\n" +
		"Если работа готова — отправь её прямо сюда. Если нужно больше времени, напиши нам."
	if _, err := d.gw.Send(context.Background(), user.ID, 0, remind, nil); err != nil {
		log.Printf("[deadline] remind user=%d: %v", user.ID, err)
	}
}

// cancelAll suppresses every still-pending reminder for the user.
// The announcement already posted to staff stays.
func (d *deadlines) cancelAll(userID int64) {
	d.mu.Lock()
	defer d.mu.Unlock()

	for key, chans := range d.cancel {
		if key.userID != userID {
			continue
		}
		for _, ch := range chans {
			close(ch)
		}
		delete(d.cancel, key)
	}
}
