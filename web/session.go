package web

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ZaguanLabs/formlingo"
)

// sessionID returns the request's session id, issuing a new cookie when
// the request carries none or a malformed one.
func (s *Server) sessionID(c *gin.Context) string {
	if id, err := c.Cookie(SessionCookie); err == nil {
		if _, err := uuid.Parse(id); err == nil {
			return id
		}
	}

	id := uuid.NewString()
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(SessionCookie, id, 0, "/", "", false, true)
	return id
}

// controller returns the live controller of the request's session,
// restoring it from the session store when it is not in memory.
func (s *Server) controller(c *gin.Context) (string, *formlingo.Controller) {
	id := s.sessionID(c)

	s.mu.Lock()
	if ls, ok := s.live[id]; ok {
		ls.lastSeen = s.now()
		s.mu.Unlock()
		return id, ls.ctrl
	}
	s.mu.Unlock()

	ctrl := s.restore(c.Request.Context(), id)

	s.mu.Lock()
	defer s.mu.Unlock()
	if ls, ok := s.live[id]; ok {
		// A concurrent request restored the session first.
		ctrl.Close()
		ls.lastSeen = s.now()
		return id, ls.ctrl
	}
	s.live[id] = &liveSession{ctrl: ctrl, lastSeen: s.now()}
	return id, ctrl
}

func (s *Server) restore(ctx context.Context, id string) *formlingo.Controller {
	opts := []formlingo.ControllerOption{
		formlingo.WithPreviewStore(s.opts.Previews),
		formlingo.WithLogger(s.logger),
	}

	snapshot, ok, err := s.opts.Sessions.Load(ctx, id)
	if err != nil {
		s.logger.Printf("session %s: load failed, starting fresh: %v", id, err)
	}
	if err != nil || !ok {
		return formlingo.NewController(s.opts.Backend, s.pipeline, opts...)
	}
	return formlingo.RestoreController(s.opts.Backend, s.pipeline, snapshot, opts...)
}

// persist saves the controller's snapshot. Failures are logged; the live
// controller still holds the state.
func (s *Server) persist(ctx context.Context, id string, ctrl *formlingo.Controller) {
	if err := s.opts.Sessions.Save(ctx, id, ctrl.Snapshot()); err != nil {
		s.logger.Printf("session %s: save failed: %v", id, err)
	}
}
