package relay

import (
	"strings"
	"sync"
	"time"
)

// debounceWindow — минимальный интервал между действиями одного класса
// от одного пользователя.
const debounceWindow = 2200 * time.Millisecond

type debounceKey struct {
	userID int64
	class  string
}

// debounce отсекает дребезг кнопок: повтор действия того же класса внутри
// окна отклоняется. Класс — неймспейс действия до первого ":", поэтому
// быстрый перебор разных ролей гасится как один класс.
type debounce struct {
	mu     sync.Mutex
	last   map[debounceKey]time.Time
	window time.Duration
	now    func() time.Time
}

func newDebounce(window time.Duration) *debounce {
	return &debounce{
		last:   make(map[debounceKey]time.Time),
		window: window,
		now:    time.Now,
	}
}

// shouldReject reports whether the action must be dropped. On accept it
// records the current time; on reject the record is left untouched.
func (d *debounce) shouldReject(userID int64, action string) bool {
	key := debounceKey{userID: userID, class: actionClass(action)}

	d.mu.Lock()
	defer d.mu.Unlock()

	now := d.now()
	if prev, ok := d.last[key]; ok && now.Sub(prev) < d.window {
		return true
	}
	d.last[key] = now
	return false
}

// actionClass — часть идентификатора действия до первого разделителя.
func actionClass(action string) string {
	if i := strings.IndexByte(action, ':'); i >= 0 {
		return action[:i]
	}
	return action
}
