package relay

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talesofkitsune/applybot/internal/roles"
)

func newTestDeadlines(gw Gateway, window time.Duration) *deadlines {
	cat := roles.NewCatalog(map[string]int{"editor": testEditorTopic})
	return newDeadlines(gw, cat, testStaffChat, window)
}

func reminders(gw *fakeGateway, chat int64) int {
	n := 0
	for _, s := range gw.textsTo(chat) {
		if strings.Contains(s.Text, "истекает") {
			n++
		}
	}
	return n
}

func TestDeadlineAnnouncesAndReminds(t *testing.T) {
	gw := newFakeGateway()
	d := newTestDeadlines(gw, 30*time.Millisecond)
	user := candidate()

	start := time.Now()
	d.schedule(user, "editor", start)

	// Анонс уходит сразу, в топик роли.
	require.Eventually(t, func() bool {
		return len(gw.textsTo(testStaffChat)) == 1
	}, time.Second, 2*time.Millisecond)
	ann := gw.textsTo(testStaffChat)[0]
	assert.Equal(t, testEditorTopic, ann.Thread)
	assert.Contains(t, ann.Text, "Редактор")

	// Напоминание — после дедлайна, кандидату в личку.
	require.Eventually(t, func() bool {
		return reminders(gw, user.ID) == 1
	}, time.Second, 2*time.Millisecond)
}

func TestCancelSuppressesReminder(t *testing.T) {
	gw := newFakeGateway()
	d := newTestDeadlines(gw, 40*time.Millisecond)
	user := candidate()

	d.schedule(user, "editor", time.Now())

	require.Eventually(t, func() bool {
		return len(gw.textsTo(testStaffChat)) == 1
	}, time.Second, 2*time.Millisecond)

	d.cancelAll(user.ID)

	time.Sleep(80 * time.Millisecond)
	assert.Zero(t, reminders(gw, user.ID), "cancelled application sends no reminder")
}

func TestReapplyKeepsEarlierDeadline(t *testing.T) {
	gw := newFakeGateway()
	d := newTestDeadlines(gw, 30*time.Millisecond)
	user := candidate()

	// Две выдачи тестового с разными эпохами — оба напоминания живут
	// независимо.
	d.schedule(user, "editor", time.Now().Add(-time.Second))
	d.schedule(user, "editor", time.Now())

	require.Eventually(t, func() bool {
		return reminders(gw, user.ID) == 2
	}, time.Second, 2*time.Millisecond)
}

func TestAnnounceFailureStillReminds(t *testing.T) {
	gw := newFakeGateway()
	d := newTestDeadlines(gw, 80*time.Millisecond)
	user := candidate()

	// Анонс падает — напоминание все равно должно запланироваться.
	gw.mu.Lock()
	gw.sendErr = errors.New("telegram down")
	gw.mu.Unlock()

	d.schedule(user, "editor", time.Now())

	time.Sleep(20 * time.Millisecond)
	gw.mu.Lock()
	gw.sendErr = nil
	gw.mu.Unlock()

	require.Eventually(t, func() bool {
		return reminders(gw, user.ID) == 1
	}, time.Second, 2*time.Millisecond)
}
