package api

import (
	"net/http"

	"github.com/gorilla/sessions"
	"go.uber.org/zap"
)

const flashSessionName = "flash"

func newFlashStore(key []byte) *sessions.CookieStore {
	store := sessions.NewCookieStore(key)
	store.Options = &sessions.Options{
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	return store
}

// flashSession returns the request's flash session. A cookie that fails
// verification is replaced by an empty session.
func (s *RoomRegApp) flashSession(r *http.Request) *sessions.Session {
	sess, err := s.flashes.Get(r, flashSessionName)
	if err != nil {
		s.log.Debug("discard flash cookie", zap.Error(err))
	}
	return sess
}

// addFlash queues a one-shot message for the next page the browser loads.
// Messages already queued on the request are kept.
func (s *RoomRegApp) addFlash(w http.ResponseWriter, r *http.Request, msg string) {
	sess := s.flashSession(r)
	sess.AddFlash(msg)
	if err := sess.Save(r, w); err != nil {
		s.log.Error("save flash", zap.Error(err))
	}
}

// popFlashes returns the queued messages and deletes the flash cookie.
func (s *RoomRegApp) popFlashes(w http.ResponseWriter, r *http.Request) []string {
	messages := make([]string, 0)

	sess := s.flashSession(r)
	queued := sess.Flashes()
	if len(queued) == 0 {
		return messages
	}

	for _, f := range queued {
		if msg, ok := f.(string); ok {
			messages = append(messages, msg)
		}
	}

	sess.Options.MaxAge = -1
	if err := sess.Save(r, w); err != nil {
		s.log.Error("clear flash", zap.Error(err))
	}

	return messages
}
