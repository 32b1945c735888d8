package relay

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
)

// quietPeriod — пауза после последнего фрагмента, по которой батч считается
// законченным и уходит одной доставкой.
const quietPeriod = time.Second

// maxBatch — потолок платформы на один медиа-альбом.
const maxBatch = 10

// Направления ретрансляции — для архива и текста подтверждений.
const (
	directionToStaff     = "to_staff"
	directionToCandidate = "to_candidate"
)

// Destination — контекст доставки, снятый с ПЕРВОГО фрагмента батча.
type Destination struct {
	ChatID      int64
	ThreadID    int
	Header      string // заголовок перед содержимым; пусто — без заголовка
	RouteBack   int64  // кандидат, на которого регистрируется обратный маршрут; 0 — не регистрировать
	AckChatID   int64  // куда подтвердить доставку отправителю; 0 — молча
	AckThreadID int    // топик подтверждения (для стафф-чата)
	Role        string
	Direction   string
}

type batchKey struct {
	origin int64
	batch  string
}

type batchBuffer struct {
	origin User
	dest   Destination
	frags  []Fragment
}

// aggregator buffers the fragments of one multi-part submission and flushes
// them as a single grouped delivery once the sender goes quiet. For a given
// batch key exactly one flush timer is live at a time; fragments arriving
// after the flush start a brand-new cycle.
type aggregator struct {
	gw      Gateway
	routes  *routeTable
	archive Archive
	quiet   time.Duration

	mu      sync.Mutex
	buffers map[batchKey]*batchBuffer
}

func newAggregator(gw Gateway, routes *routeTable, archive Archive, quiet time.Duration) *aggregator {
	return &aggregator{
		gw:      gw,
		routes:  routes,
		archive: archive,
		quiet:   quiet,
		buffers: make(map[batchKey]*batchBuffer),
	}
}

// ingest accepts one fragment. A fragment without a batch id is delivered
// immediately; otherwise it joins the buffer for (origin, batchID), and the
// first fragment of the buffer arms the flush timer and pins the
// destination context for the whole batch.
func (a *aggregator) ingest(ctx context.Context, origin User, frag Fragment, batchID string, dest Destination) {
	if batchID == "" {
		a.deliver(ctx, origin, dest, []Fragment{frag})
		return
	}

	key := batchKey{origin: origin.ID, batch: batchID}

	a.mu.Lock()
	buf, ok := a.buffers[key]
	if !ok {
		buf = &batchBuffer{origin: origin, dest: dest}
		a.buffers[key] = buf
		time.AfterFunc(a.quiet, func() { a.flush(key) })
	}
	buf.frags = append(buf.frags, frag)
	a.mu.Unlock()
}

// flush pops the buffer and delivers it. Success and failure both clear the
// buffer: no fragment is ever retried as part of a later batch.
func (a *aggregator) flush(key batchKey) {
	a.mu.Lock()
	buf, ok := a.buffers[key]
	delete(a.buffers, key)
	a.mu.Unlock()

	if !ok || len(buf.frags) == 0 {
		return
	}
	a.deliver(context.Background(), buf.origin, buf.dest, buf.frags)
}

// deliver sends header + content to the destination, registers reverse
// routing and acknowledges the sender exactly once.
func (a *aggregator) deliver(ctx context.Context, origin User, dest Destination, frags []Fragment) {
	err := a.sendAll(ctx, dest, frags)
	if err != nil {
		log.Printf("[agg] deliver origin=%d chat=%d: %v", origin.ID, dest.ChatID, err)
	}

	if dest.AckChatID != 0 {
		ack := ackText(dest.Direction, err == nil)
		if _, ackErr := a.gw.Send(ctx, dest.AckChatID, dest.AckThreadID, ack, nil); ackErr != nil {
			log.Printf("[agg] ack origin=%d: %v", origin.ID, ackErr)
		}
	}

	if err == nil {
		a.record(ctx, origin, dest, frags)
	}
}

// ackText — текст подтверждения отправителю: кандидату и стаффу пишем по-разному.
func ackText(direction string, ok bool) string {
	if !ok {
		return "😿 Не получилось доставить сообщение, попробуй ещё раз чуть позже."
	}
	if direction == directionToCandidate {
		return "✉️ Доставлено кандидату."
	}
	return "✅ Принято! Работа передана куратору."
}

// sendAll — заголовок, затем альбом (первые ≤10 альбомных фрагментов),
// затем остальное вразбивку ответами на якорь. Падение альбома — не фатал:
// следующая стратегия шлет его фрагменты поштучно.
func (a *aggregator) sendAll(ctx context.Context, dest Destination, frags []Fragment) error {
	if dest.Header != "" {
		ref, err := a.gw.Send(ctx, dest.ChatID, dest.ThreadID, dest.Header, nil)
		if err != nil {
			log.Printf("[agg] header chat=%d: %v", dest.ChatID, err)
		} else if dest.RouteBack != 0 {
			a.routes.bind(ref, dest.RouteBack)
		}
	}

	album, single := splitBatch(frags)

	var anchor MessageRef
	if len(album) > 0 {
		refs, err := a.gw.SendBatch(ctx, dest.ChatID, dest.ThreadID, album)
		if err != nil {
			// Стратегия 2: альбом не прошел — каждый фрагмент отдельно.
			log.Printf("[agg] batch failed, sending individually: %v", err)
			single = append(album, single...)
		} else {
			anchor = refs[0]
		}
	}

	var firstErr error
	for _, f := range single {
		ref, err := a.gw.SendFragment(ctx, dest.ChatID, dest.ThreadID, f, anchor)
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		if anchor.Zero() {
			anchor = ref
		}
	}

	if anchor.Zero() {
		return firstErr
	}
	if dest.RouteBack != 0 {
		a.routes.bind(anchor, dest.RouteBack)
	}
	return nil
}

// splitBatch partitions fragments into one album (≤10 items of one
// compatible media group, but an album of one is not an album) and the
// individually sent remainder, preserving order inside each part.
// Из нескольких совместимых групп альбомом уходит самая крупная.
func splitBatch(frags []Fragment) (album, single []Fragment) {
	counts := map[string]int{}
	for _, f := range frags {
		if g := f.Kind.albumGroup(); g != "" {
			counts[g]++
		}
	}
	var picked string
	for _, f := range frags {
		g := f.Kind.albumGroup()
		if g != "" && (picked == "" || counts[g] > counts[picked]) {
			picked = g
		}
	}

	for _, f := range frags {
		if f.Kind.albumGroup() == picked && picked != "" && len(album) < maxBatch {
			album = append(album, f)
		} else {
			single = append(single, f)
		}
	}
	if len(album) == 1 {
		single = append(album, single...)
		album = nil
	}
	return album, single
}

func (a *aggregator) record(ctx context.Context, origin User, dest Destination, frags []Fragment) {
	if a.archive == nil {
		return
	}

	kind := string(frags[0].Kind)
	text := frags[0].Text
	if len(frags) > 1 {
		kind = "album"
	}
	rec := &DeliveryRecord{
		ID:        uuid.NewString(),
		Direction: dest.Direction,
		UserID:    origin.ID,
		Role:      dest.Role,
		Kind:      kind,
		Text:      text,
	}
	if err := a.archive.SaveDelivery(ctx, rec); err != nil {
		log.Printf("[agg] archive origin=%d: %v", origin.ID, err)
	}
}
