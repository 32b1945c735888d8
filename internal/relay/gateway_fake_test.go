package relay

import (
	"context"
	"sync"
	"time"

	"github.com/talesofkitsune/applybot/internal/roles"
)

type sentText struct {
	Chat   int64
	Thread int
	Text   string
	Menu   Menu
	Ref    MessageRef
}

type sentFrag struct {
	Chat   int64
	Thread int
	Frag   Fragment
	Anchor MessageRef
	Ref    MessageRef
}

type sentBatch struct {
	Chat   int64
	Thread int
	Frags  []Fragment
	Refs   []MessageRef
}

type editOp struct {
	Ref  MessageRef
	Text string
	Menu Menu
}

// fakeGateway records every platform call and hands out increasing message
// ids, so tests can assert on exact delivery traffic.
type fakeGateway struct {
	mu     sync.Mutex
	nextID int

	sends   []sentText
	frags   []sentFrag
	batches []sentBatch
	edits   []editOp
	deletes []MessageRef

	sendErr   error
	editErr   error
	deleteErr error
	batchErr  error
}

func newFakeGateway() *fakeGateway { return &fakeGateway{} }

func (g *fakeGateway) newRef(chat int64) MessageRef {
	g.nextID++
	return MessageRef{ChatID: chat, MessageID: g.nextID}
}

func (g *fakeGateway) Send(_ context.Context, chatID int64, threadID int, text string, menu Menu) (MessageRef, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.sendErr != nil {
		return MessageRef{}, g.sendErr
	}
	ref := g.newRef(chatID)
	g.sends = append(g.sends, sentText{Chat: chatID, Thread: threadID, Text: text, Menu: menu, Ref: ref})
	return ref, nil
}

func (g *fakeGateway) Edit(_ context.Context, ref MessageRef, text string, menu Menu) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.editErr != nil {
		return g.editErr
	}
	g.edits = append(g.edits, editOp{Ref: ref, Text: text, Menu: menu})
	return nil
}

func (g *fakeGateway) Delete(_ context.Context, ref MessageRef) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.deleteErr != nil {
		return g.deleteErr
	}
	g.deletes = append(g.deletes, ref)
	return nil
}

func (g *fakeGateway) SendFragment(_ context.Context, chatID int64, threadID int, f Fragment, anchor MessageRef) (MessageRef, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.sendErr != nil {
		return MessageRef{}, g.sendErr
	}
	ref := g.newRef(chatID)
	g.frags = append(g.frags, sentFrag{Chat: chatID, Thread: threadID, Frag: f, Anchor: anchor, Ref: ref})
	return ref, nil
}

func (g *fakeGateway) SendBatch(_ context.Context, chatID int64, threadID int, fs []Fragment) ([]MessageRef, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.batchErr != nil {
		return nil, g.batchErr
	}
	refs := make([]MessageRef, 0, len(fs))
	for range fs {
		refs = append(refs, g.newRef(chatID))
	}
	g.batches = append(g.batches, sentBatch{Chat: chatID, Thread: threadID, Frags: append([]Fragment(nil), fs...), Refs: refs})
	return refs, nil
}

// --- snapshot helpers, safe to call while flush timers run ---

func (g *fakeGateway) sentTexts() []sentText {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]sentText(nil), g.sends...)
}

func (g *fakeGateway) sentFrags() []sentFrag {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]sentFrag(nil), g.frags...)
}

func (g *fakeGateway) sentBatches() []sentBatch {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]sentBatch(nil), g.batches...)
}

func (g *fakeGateway) textsTo(chat int64) []sentText {
	var out []sentText
	for _, s := range g.sentTexts() {
		if s.Chat == chat {
			out = append(out, s)
		}
	}
	return out
}

const (
	testStaffChat    = int64(-100500)
	testOperatorID   = int64(777)
	testEditorTopic  = 42
	testCandidateID  = int64(1001)
	testBatchQuiet   = 15 * time.Millisecond
	testDeadlineSoon = 40 * time.Millisecond
)

func newTestService(gw Gateway) *Service {
	return NewService(Params{
		Gateway:     gw,
		Catalog:     roles.NewCatalog(map[string]int{"editor": testEditorTopic}),
		StaffChatID: testStaffChat,
		Operators:   map[int64]struct{}{testOperatorID: {}},
		TestWindow:  testDeadlineSoon,
		QuietPeriod: testBatchQuiet,
		// Навигация в сценариях идет быстрее любого реального дебаунса.
		DebounceWindow: time.Nanosecond,
	})
}

func candidate() User {
	return User{ID: testCandidateID, Username: "fox_fan"}
}

// activate puts a candidate session into the relaying state directly.
func activate(s *Service, userID int64, role string) {
	sess := s.sessions.get(userID)
	sess.mu.Lock()
	sess.State = StateTestIssued
	sess.Flow = FlowApplying
	sess.Role = role
	sess.Active = true
	sess.mu.Unlock()
}
