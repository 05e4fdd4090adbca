package services

import (
	"sync"

	"github.com/SAP-F-2025/diagnosis-service/internal/questionnaire"
)

// workspace is one user's questionnaire plus the result presented to them. The
// result lifecycle outlives questionnaires so a diagnosis stays viewable after End.
type workspace struct {
	session *questionnaire.Session
	results *questionnaire.ResultLifecycle
}

// WorkspaceRegistry holds at most one questionnaire session per user.
type WorkspaceRegistry struct {
	mu         sync.Mutex
	workspaces map[string]*workspace
}

func NewWorkspaceRegistry() *WorkspaceRegistry {
	return &WorkspaceRegistry{workspaces: make(map[string]*workspace)}
}

// lookup returns the user's workspace, creating it when create is set. Caller holds mu.
func (r *WorkspaceRegistry) lookup(userID string, create bool) *workspace {
	ws, ok := r.workspaces[userID]
	if !ok && create {
		ws = &workspace{results: questionnaire.NewResultLifecycle()}
		r.workspaces[userID] = ws
	}
	return ws
}

// Results returns the user's result lifecycle.
func (r *WorkspaceRegistry) Results(userID string) *questionnaire.ResultLifecycle {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lookup(userID, true).results
}

// Session returns the user's questionnaire, if one is open.
func (r *WorkspaceRegistry) Session(userID string) (*questionnaire.Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ws := r.lookup(userID, false)
	if ws == nil || ws.session == nil {
		return nil, false
	}
	return ws.session, true
}

// Replace installs session as the user's questionnaire. A previous session is reset
// first so that its in-flight submission is discarded on return.
func (r *WorkspaceRegistry) Replace(userID string, session *questionnaire.Session) {
	r.mu.Lock()
	ws := r.lookup(userID, true)
	previous := ws.session
	ws.session = session
	r.mu.Unlock()

	if previous != nil && previous != session {
		previous.Reset()
	}
}

// Remove closes the user's questionnaire. It reports false when none was open.
func (r *WorkspaceRegistry) Remove(userID string) bool {
	r.mu.Lock()
	ws := r.lookup(userID, false)
	if ws == nil || ws.session == nil {
		r.mu.Unlock()
		return false
	}
	previous := ws.session
	ws.session = nil
	r.mu.Unlock()

	previous.Reset()
	return true
}

// Len returns the number of users with an open questionnaire.
func (r *WorkspaceRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, ws := range r.workspaces {
		if ws.session != nil {
			n++
		}
	}
	return n
}
