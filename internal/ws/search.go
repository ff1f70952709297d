package ws

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/youruser/hvdeck/internal/bridge"
	"github.com/youruser/hvdeck/internal/cards"
	"github.com/youruser/hvdeck/internal/search"
)

// Requests a search window may send.
const (
	ReqSearch   = "search"
	ReqPage     = "page"
	ReqNavigate = "navigate"
	ReqPick     = "pick"
)

// Request is one message from a search window. A bridge.Event with type
// ADD_CARD_TO_DECK is accepted as-is.
type Request struct {
	Type  string       `json:"type"`
	Query *cards.Query `json:"query,omitempty"`
	Page  int          `json:"page,omitempty"`
	URL   string       `json:"url,omitempty"`
	ID    string       `json:"id,omitempty"`
	Card  *cards.Card  `json:"card,omitempty"`
}

// SearchService is what a search window needs from the server.
type SearchService struct {
	Pipeline *search.Pipeline
	Catalog  *cards.Catalog
	// Picks go out over this sender; the search window never touches the
	// deck itself.
	Picks bridge.Sender
}

// session is one search window. Its cursor is only touched from the
// connection's read goroutine.
type session struct {
	ctx    context.Context
	client *Client
	svc    SearchService
	cursor *search.Cursor
}

// ServeSearch upgrades a search window connection. The window's address
// may be passed as ?url= (or the keyword directly as ?keyword=) to seed the
// first search, which is sent right away.
func (h *Hub) ServeSearch(ctx context.Context, svc SearchService, w http.ResponseWriter, r *http.Request) {
	c := h.accept(w, r, kindSearch)
	if c == nil {
		return
	}
	kw := r.URL.Query().Get("keyword")
	if u := r.URL.Query().Get("url"); u != "" {
		kw = search.KeywordFromURL(u)
	}
	s := &session{
		ctx:    ctx,
		client: c,
		svc:    svc,
		cursor: search.NewCursor(cards.Criteria{Keyword: kw}),
	}
	s.sendResults()
	go c.writePump()
	go c.readPump(s.handle)
}

func (s *session) handle(data []byte) {
	var req Request
	if err := json.Unmarshal(data, &req); err != nil {
		s.fail("malformed request")
		return
	}
	switch req.Type {
	case ReqSearch:
		q := cards.Query{}
		if req.Query != nil {
			q = *req.Query
		}
		s.cursor.SetCriteria(q.Criteria())
		s.sendResults()
	case ReqPage:
		s.cursor.SetPage(req.Page)
		s.sendResults()
	case ReqNavigate:
		s.cursor.SetKeyword(search.KeywordFromURL(req.URL))
		s.sendResults()
	case ReqPick:
		card, ok := s.svc.Catalog.Lookup(req.ID)
		if !ok {
			s.fail("unknown card " + req.ID)
			return
		}
		s.pick(bridge.NewPick(card))
	case bridge.TypeAddCard:
		s.pick(bridge.Event{Type: req.Type, Card: req.Card})
	default:
		s.fail("unknown request type " + req.Type)
	}
}

func (s *session) pick(e bridge.Event) {
	if err := s.svc.Picks.Send(s.ctx, e); err != nil {
		s.client.hub.logger.Warn("pick not sent", "client", s.client.ID, "error", err)
		s.fail("pick not sent")
		return
	}
	s.client.push(Event{Type: TypePicked, Data: map[string]string{"id": e.Card.ID}})
}

func (s *session) sendResults() {
	s.client.push(Event{Type: TypeResults, Data: s.cursor.Run(s.svc.Pipeline)})
}

func (s *session) fail(msg string) {
	s.client.push(Event{Type: TypeError, Data: map[string]string{"message": msg}})
}
