package relay

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/talesofkitsune/applybot/internal/roles"
)

var errScreenDelivery = errors.New("relay: screen delivery failed")

// Params — зависимости и настройки сервиса. Нулевые длительности
// заменяются дефолтами.
type Params struct {
	Gateway     Gateway
	Archive     Archive // nil — архив отключен
	Catalog     *roles.Catalog
	StaffChatID int64
	Operators   map[int64]struct{}

	TestWindow     time.Duration
	QuietPeriod    time.Duration
	DebounceWindow time.Duration
}

// Service — ядро ретранслятора: навигация кандидата, батчинг заявок,
// обратная доставка ответов стаффа.
type Service struct {
	gw        Gateway
	cat       *roles.Catalog
	staffChat int64
	operators map[int64]struct{}

	sessions  *sessions
	debounce  *debounce
	nav       *navigator
	agg       *aggregator
	deadlines *deadlines
	routes    *routeTable
	blocks    *blocklist
}

func NewService(p Params) *Service {
	if p.TestWindow == 0 {
		p.TestWindow = 7 * 24 * time.Hour
	}
	if p.QuietPeriod == 0 {
		p.QuietPeriod = quietPeriod
	}
	if p.DebounceWindow == 0 {
		p.DebounceWindow = debounceWindow
	}

	routes := newRouteTable(routeCap)
	windowDays := int(p.TestWindow / (24 * time.Hour))
	if windowDays == 0 {
		windowDays = 1
	}

	return &Service{
		gw:        p.Gateway,
		cat:       p.Catalog,
		staffChat: p.StaffChatID,
		operators: p.Operators,
		sessions:  newSessions(),
		debounce:  newDebounce(p.DebounceWindow),
		nav:       &navigator{cat: p.Catalog, windowDays: windowDays},
		agg:       newAggregator(p.Gateway, routes, p.Archive, p.QuietPeriod),
		deadlines: newDeadlines(p.Gateway, p.Catalog, p.StaffChatID, p.TestWindow),
		routes:    routes,
		blocks:    newBlocklist(),
	}
}

// HandleStart — команда /start: домашний экран.
func (s *Service) HandleStart(ctx context.Context, user User, chatID int64) error {
	return s.HandleAction(ctx, user, chatID, "home")
}

// HandleAction processes one opaque menu action: debounce, access check,
// navigation step, side effects, render.
func (s *Service) HandleAction(ctx context.Context, user User, chatID int64, data string) error {
	if s.blocks.isBlocked(user.ID) {
		return nil
	}
	if s.debounce.shouldReject(user.ID, data) {
		return nil
	}

	tag, arg := parseAction(data)
	if tag == ActNone {
		log.Printf("[svc] unknown action %q from user=%d", data, user.ID)
		return nil
	}

	sess := s.sessions.get(user.ID)
	sess.mu.Lock()

	step, ok := s.nav.step(sess.State, sess.Role, tag, arg)
	if !ok {
		sess.mu.Unlock()
		return nil
	}

	sess.State = step.state
	sess.Flow = step.flow
	sess.Role = step.role

	var startedAt time.Time
	if step.cancel {
		sess.Active = false
	}
	if step.startTest {
		sess.Active = true
		startedAt = time.Now()
		sess.DeadlineStartedAt = startedAt
	}
	roleKey := step.role

	err := s.renderLocked(ctx, sess, chatID, step.screen)
	sess.mu.Unlock()

	// Побочные эффекты перехода — вне пользовательского лока.
	if step.cancel {
		s.deadlines.cancelAll(user.ID)
	}
	if step.startTest {
		log.Printf("[svc] test issued user=%d role=%s", user.ID, roleKey)
		s.deadlines.schedule(user, roleKey, startedAt)
	}
	return err
}

// HandleCandidateContent relays free-form candidate content towards the
// staff group. Blocked users get full silence; inactive sessions get a menu
// hint instead of relay.
func (s *Service) HandleCandidateContent(ctx context.Context, user User, chatID int64, frag Fragment, batchID string) error {
	if s.blocks.isBlocked(user.ID) {
		return nil
	}

	sess := s.sessions.get(user.ID)
	sess.mu.Lock()
	active, roleKey := sess.Active, sess.Role
	sess.mu.Unlock()

	if !active {
		// Подсказка одна на окно дебаунса, чтобы альбом не породил залп.
		if s.debounce.shouldReject(user.ID, "hint") {
			return nil
		}
		_, err := s.gw.Send(ctx, chatID, 0,
			"Я передаю работы только после выдачи тестового. Нажми /start и выбери «Подать заявку» 🦊", nil)
		return err
	}

	header := "📨 Работа от " + user.Label()
	if role, ok := s.cat.Get(roleKey); ok {
		header += " — " + role.Title
	}

	s.agg.ingest(ctx, user, frag, batchID, Destination{
		ChatID:    s.staffChat,
		ThreadID:  s.cat.TopicID(roleKey),
		Header:    header,
		RouteBack: user.ID,
		AckChatID: chatID,
		Role:      roleKey,
		Direction: directionToStaff,
	})
	return nil
}

// HandleStaffReply relays an operator's reply to a routed submission back to
// the originating candidate. Non-operators and unroutable replies are
// silently ignored.
func (s *Service) HandleStaffReply(ctx context.Context, operator User, replyTo MessageRef, threadID int, frag Fragment, batchID string) error {
	if !s.IsOperator(operator.ID) {
		return nil
	}
	target, ok := s.routes.resolve(replyTo)
	if !ok {
		return nil
	}

	s.agg.ingest(ctx, operator, frag, batchID, Destination{
		ChatID:      target,
		Header:      "💌 Сообщение от команды Tales of Kitsune:",
		AckChatID:   s.staffChat,
		AckThreadID: threadID,
		Direction:   directionToCandidate,
	})
	return nil
}

// DirectMessage — операторская команда: доставка кандидату по id.
// Подтверждение уходит в тот топик, откуда команда пришла.
func (s *Service) DirectMessage(ctx context.Context, operatorID, target int64, threadID int, frag Fragment) bool {
	if !s.IsOperator(operatorID) {
		return false
	}
	s.agg.ingest(ctx, User{ID: operatorID}, frag, "", Destination{
		ChatID:      target,
		Header:      "💌 Сообщение от команды Tales of Kitsune:",
		AckChatID:   s.staffChat,
		AckThreadID: threadID,
		Direction:   directionToCandidate,
	})
	return true
}

// Block suppresses relay for the user; session state is left intact.
func (s *Service) Block(operatorID, target int64) bool {
	if !s.IsOperator(operatorID) {
		return false
	}
	s.blocks.block(target)
	log.Printf("[svc] blocked user=%d by operator=%d", target, operatorID)
	return true
}

// Unblock restores relay service without re-initialization.
func (s *Service) Unblock(operatorID, target int64) bool {
	if !s.IsOperator(operatorID) {
		return false
	}
	s.blocks.unblock(target)
	log.Printf("[svc] unblocked user=%d by operator=%d", target, operatorID)
	return true
}

func (s *Service) IsOperator(id int64) bool {
	_, ok := s.operators[id]
	return ok
}
