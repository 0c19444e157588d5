// Package web serves a browser front end to play against a trained agent.
//
// Each websocket connection plays its own series of games. Messages are JSON:
// the browser sends Requests and receives a Frame after every change.
// A browser that reconnects to /ws?session=<id> within ResumeTimeout
// continues the game of that session.
package web

import (
	"embed"
	"io/fs"
	"math/rand"
	"net/http"
	"sync"
	"time"

	"github.com/golang/glog"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/pkg/errors"

	"github.com/timpalpant/go-qlearn"
	"github.com/timpalpant/go-qlearn/play"
	"github.com/timpalpant/go-qlearn/tictactoe"
)

//go:embed static
var static embed.FS

const (
	writeTimeout = 5 * time.Second
	readTimeout  = 10 * time.Minute
)

// ResumeTimeout is how long a session outlives its connection.
const ResumeTimeout = 2 * time.Minute

// Request is a message from the browser.
type Request struct {
	Type        string `json:"type"` // "new" or "move"
	HumanStarts bool   `json:"humanStarts,omitempty"`
	Cell        int    `json:"cell"` // 0-8, for "move"
}

// Frame is the state of a session sent to the browser.
type Frame struct {
	Session   string `json:"session"`
	Resumed   bool   `json:"resumed,omitempty"`
	Board     string `json:"board"`
	HumanSeat int    `json:"humanSeat"`
	ToMove    int    `json:"toMove"`
	Over      bool   `json:"over"`
	Winner    int    `json:"winner"`
	Result    string `json:"result,omitempty"`
	AgentMove int    `json:"agentMove"` // -1 if the agent did not move
	Error     string `json:"error,omitempty"`
}

// Server plays games between browsers and a fixed Q-value table.
// The table is only read and may be shared by all sessions.
type Server struct {
	table    qlearn.ValueTable
	upgrader websocket.Upgrader

	resumeTimeout time.Duration

	mu       sync.Mutex
	rng      *rand.Rand
	sessions map[uuid.UUID]*entry
}

// entry is a session and the state of its connection.
type entry struct {
	session  *play.Session
	attached bool
	expiry   *time.Timer
}

// NewServer returns a Server for the agent whose values are in table.
func NewServer(table qlearn.ValueTable, seed int64) *Server {
	return &Server{
		table: table,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		resumeTimeout: ResumeTimeout,
		rng:           rand.New(rand.NewSource(seed)),
		sessions:      make(map[uuid.UUID]*entry),
	}
}

// Handler returns the routes of the server: the page at / and the
// websocket endpoint at /ws.
func (s *Server) Handler() http.Handler {
	root, err := fs.Sub(static, "static")
	if err != nil {
		panic(err)
	}

	mux := http.NewServeMux()
	mux.Handle("/", http.FileServer(http.FS(root)))
	mux.HandleFunc("/ws", s.serveWS)
	return mux
}

// NumSessions returns the number of connected browsers.
func (s *Server) NumSessions() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.numAttachedLocked()
}

// NumResumable returns the number of sessions waiting for their
// browser to reconnect.
func (s *Server) NumResumable() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions) - s.numAttachedLocked()
}

func (s *Server) numAttachedLocked() int {
	n := 0
	for _, e := range s.sessions {
		if e.attached {
			n++
		}
	}

	return n
}

func (s *Server) newGame(humanStarts bool) *play.Session {
	rng := rand.New(rand.NewSource(s.rng.Int63()))
	agent := qlearn.NewGreedy(s.table, qlearn.LearnerSeat, rng)
	starter := qlearn.LearnerSeat
	if humanStarts {
		starter = qlearn.OpponentSeat
	}

	return play.NewSession(agent, qlearn.OpponentSeat, starter)
}

// attach returns the detached session identified by requested, or a new
// session if there is none.
func (s *Server) attach(requested string) (uuid.UUID, *play.Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if id, err := uuid.Parse(requested); err == nil {
		if e, ok := s.sessions[id]; ok && !e.attached {
			e.expiry.Stop()
			e.attached = true
			return id, e.session, true
		}
	}

	id := uuid.New()
	session := s.newGame(true)
	s.sessions[id] = &entry{session: session, attached: true}
	return id, session, false
}

// restart replaces the game of session id.
func (s *Server) restart(id uuid.UUID, humanStarts bool) *play.Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	session := s.newGame(humanStarts)
	s.sessions[id].session = session
	return session
}

// detach keeps session id for resumeTimeout after its connection closed.
func (s *Server) detach(id uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e := s.sessions[id]
	e.attached = false
	e.expiry = time.AfterFunc(s.resumeTimeout, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if e, ok := s.sessions[id]; ok && !e.attached {
			delete(s.sessions, id)
			glog.V(1).Infof("Session %v expired", id)
		}
	})
}

func (s *Server) serveWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		glog.Warningf("Websocket upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	id, session, resumed := s.attach(r.URL.Query().Get("session"))
	defer s.detach(id)
	glog.Infof("Session %v connected from %v (resumed: %v)", id, r.RemoteAddr, resumed)

	f := frame(id, session, -1, nil)
	f.Resumed = resumed
	if err := send(conn, f); err != nil {
		glog.Warningf("Session %v: %v", id, err)
		return
	}

	for {
		conn.SetReadDeadline(time.Now().Add(readTimeout))
		var req Request
		if err := conn.ReadJSON(&req); err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				glog.Infof("Session %v closed", id)
			} else {
				glog.Warningf("Session %v: read error: %v", id, err)
			}
			return
		}

		var moveErr error
		switch req.Type {
		case "new":
			session = s.restart(id, req.HumanStarts)
		case "move":
			moveErr = session.Play(tictactoe.Action(req.Cell))
		default:
			moveErr = errors.Errorf("unknown request type %q", req.Type)
		}

		agentMove := -1
		if moveErr == nil && !session.Over() && !session.HumanToMove() {
			a, err := session.AgentMove()
			if err != nil {
				glog.Errorf("Session %v: %v", id, err)
				return
			}
			agentMove = int(a)
		}

		if session.Over() && moveErr == nil {
			glog.V(1).Infof("Session %v: %s", id, session.Result())
		}

		if err := send(conn, frame(id, session, agentMove, moveErr)); err != nil {
			glog.Warningf("Session %v: %v", id, err)
			return
		}
	}
}

func frame(id uuid.UUID, session *play.Session, agentMove int, err error) Frame {
	f := Frame{
		Session:   id.String(),
		Board:     session.State().Key(),
		HumanSeat: int(session.HumanSeat()),
		ToMove:    int(session.ToMove()),
		Over:      session.Over(),
		Winner:    int(session.Winner()),
		AgentMove: agentMove,
	}

	if f.Over {
		f.Result = session.Result()
	}

	if err != nil {
		f.Error = err.Error()
	}

	return f
}

func send(conn *websocket.Conn, f Frame) error {
	conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	return errors.Wrap(conn.WriteJSON(f), "write frame")
}
