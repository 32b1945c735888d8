package relay

import (
	"context"
	"log"
)

// outcome — тег результата одной стратегии доставки.
type outcome int

const (
	outcomeDone outcome = iota
	outcomeTryNext
	outcomeFatal
)

// render updates the user's single tracked screen. Serialized per user by
// the session mutex; the caller must NOT hold it.
//
// Strategy order: drop a stale screen left in another chat, edit in place,
// otherwise send fresh and track the new message. After a successful return
// exactly one message is tracked and it carries the requested content.
func (s *Service) render(ctx context.Context, userID, chatID int64, scr Screen) error {
	sess := s.sessions.get(userID)
	sess.mu.Lock()
	defer sess.mu.Unlock()

	return s.renderLocked(ctx, sess, chatID, scr)
}

func (s *Service) renderLocked(ctx context.Context, sess *Session, chatID int64, scr Screen) error {
	// Экран остался в другом чате — убираем, ссылку сбрасываем в любом случае.
	if sess.Screen != nil && sess.Screen.ChatID != chatID {
		if err := s.gw.Delete(ctx, *sess.Screen); err != nil {
			log.Printf("[screen] drop stale screen %+v: %v", *sess.Screen, err)
		}
		sess.Screen = nil
	}

	for _, strategy := range []func() outcome{
		func() outcome { return s.editScreen(ctx, sess, scr) },
		func() outcome { return s.resendScreen(ctx, sess, chatID, scr) },
	} {
		switch strategy() {
		case outcomeDone:
			return nil
		case outcomeFatal:
			return errScreenDelivery
		}
	}
	return errScreenDelivery
}

// editScreen — стратегия 1: правка трекнутого сообщения на месте.
func (s *Service) editScreen(ctx context.Context, sess *Session, scr Screen) outcome {
	if sess.Screen == nil {
		return outcomeTryNext
	}
	if err := s.gw.Edit(ctx, *sess.Screen, scr.Text, scr.Menu); err != nil {
		// Сообщение могли удалить, либо оно слишком старое для правки.
		log.Printf("[screen] edit failed, resending: %v", err)
		return outcomeTryNext
	}
	return outcomeDone
}

// resendScreen — стратегия 2: новое сообщение становится экраном.
func (s *Service) resendScreen(ctx context.Context, sess *Session, chatID int64, scr Screen) outcome {
	ref, err := s.gw.Send(ctx, chatID, 0, scr.Text, scr.Menu)
	if err != nil {
		log.Printf("[screen] send failed: %v", err)
		return outcomeFatal
	}
	sess.Screen = &ref
	return outcomeDone
}
