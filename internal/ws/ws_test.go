package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/youruser/hvdeck/internal/bridge"
	"github.com/youruser/hvdeck/internal/cards"
	"github.com/youruser/hvdeck/internal/deck"
	"github.com/youruser/hvdeck/internal/search"
	"github.com/youruser/hvdeck/internal/storage"
)

const origin = "http://localhost:8080"

type fixture struct {
	hub   *Hub
	store *deck.Store
	srv   *httptest.Server
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	cat, _ := cards.NewCatalog([]cards.Card{
		{ID: "HV-P01-050-N", Name: "影山 飛雄"},
		{ID: "HV-P01-001-R", Name: "日向 翔陽"},
		{ID: "HV-D01-003-N", Name: "澤村 大地"},
	})

	f := &fixture{}
	f.hub = NewHub(origin, func() []deck.Entry { return f.store.Entries() }, nil)
	f.store = deck.Open(ctx, storage.NewMemoryKV(), deck.WithObserver(f.hub.PublishDeck))
	go f.hub.Run()
	t.Cleanup(f.hub.Stop)

	ch := bridge.NewBus().Channel("deck_channel")
	_, err := bridge.Listen(ctx, ch, f.store, nil)
	require.NoError(t, err)

	svc := SearchService{Pipeline: search.NewPipeline(cat), Catalog: cat, Picks: ch}
	mux := http.NewServeMux()
	mux.HandleFunc("/ws/deck", f.hub.ServeDeck)
	mux.HandleFunc("/ws/search", func(w http.ResponseWriter, r *http.Request) {
		f.hub.ServeSearch(ctx, svc, w, r)
	})
	f.srv = httptest.NewServer(mux)
	t.Cleanup(f.srv.Close)
	return f
}

func (f *fixture) dial(t *testing.T, path string) *websocket.Conn {
	t.Helper()
	u := "ws" + strings.TrimPrefix(f.srv.URL, "http") + path
	conn, _, err := websocket.DefaultDialer.Dial(u, http.Header{"Origin": {origin}})
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

type rawEvent struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

func read(t *testing.T, conn *websocket.Conn) rawEvent {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var ev rawEvent
	require.NoError(t, conn.ReadJSON(&ev))
	return ev
}

func readDeck(t *testing.T, conn *websocket.Conn) DeckView {
	t.Helper()
	ev := read(t, conn)
	require.Equal(t, TypeDeck, ev.Type)
	var v DeckView
	require.NoError(t, json.Unmarshal(ev.Data, &v))
	return v
}

func readResults(t *testing.T, conn *websocket.Conn) search.Result {
	t.Helper()
	ev := read(t, conn)
	require.Equal(t, TypeResults, ev.Type, string(ev.Data))
	var r search.Result
	require.NoError(t, json.Unmarshal(ev.Data, &r))
	return r
}

func TestDeckView_ReceivesSnapshotAndUpdates(t *testing.T) {
	f := newFixture(t)
	conn := f.dial(t, "/ws/deck")

	v := readDeck(t, conn)
	assert.Equal(t, 0, v.Total)
	assert.NotNil(t, v.Entries)

	_, err := f.store.PickByID(context.Background(), "HV-P01-050-N")
	assert.ErrorIs(t, err, deck.ErrUnknownCard, "store was opened without a catalog")

	_, err = f.store.MergePick(context.Background(), cards.Card{ID: "HV-P01-050-N", Name: "影山 飛雄_2"})
	require.NoError(t, err)
	v = readDeck(t, conn)
	assert.Equal(t, 1, v.Total)
	require.Len(t, v.Entries, 1)
	assert.Equal(t, "影山 飛雄", v.Entries[0].Name)
	assert.Equal(t, "影山 飛雄_2", v.Entries[0].Card.Name)
}

func TestSearchWindow_PicksReachDeck(t *testing.T) {
	f := newFixture(t)
	deckConn := f.dial(t, "/ws/deck")
	readDeck(t, deckConn)

	conn := f.dial(t, "/ws/search?url="+urlEscape("http://localhost:8080/#/search?keyword=HV‐P01"))
	r := readResults(t, conn)
	require.Equal(t, 2, r.Total)
	assert.Equal(t, "HV-P01-001-R", r.Items[0].ID)

	for i := 0; i < 3; i++ {
		require.NoError(t, conn.WriteJSON(Request{Type: ReqPick, ID: "HV-P01-050-N"}))
		assert.Equal(t, TypePicked, read(t, conn).Type)
	}

	var v DeckView
	for i := 0; i < 3; i++ {
		v = readDeck(t, deckConn)
	}
	require.Len(t, v.Entries, 1)
	assert.Equal(t, 3, v.Entries[0].Count)
	assert.Equal(t, 3, f.store.TotalCount())
}

func TestSearchWindow_RawPickEvent(t *testing.T) {
	f := newFixture(t)
	conn := f.dial(t, "/ws/search")
	readResults(t, conn)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage,
		[]byte(`{"type":"ADD_CARD_TO_DECK","card":{"id":"HV-D01-003-N","name":"澤村 大地"}}`)))
	assert.Equal(t, TypePicked, read(t, conn).Type)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"ADD_CARD_TO_DECK"}`)))
	assert.Equal(t, TypeError, read(t, conn).Type)

	assert.Equal(t, 1, f.store.TotalCount())
}

func TestSearchWindow_CriteriaPagingAndNavigation(t *testing.T) {
	f := newFixture(t)
	conn := f.dial(t, "/ws/search")

	r := readResults(t, conn)
	assert.Equal(t, 3, r.Total)
	assert.Equal(t, "HV-P01-001-R", r.Items[0].ID)

	require.NoError(t, conn.WriteJSON(Request{Type: ReqPage, Page: 5}))
	r = readResults(t, conn)
	assert.Equal(t, 1, r.Page, "clamped to the last page")

	require.NoError(t, conn.WriteJSON(Request{Type: ReqSearch, Query: &cards.Query{Keyword: "澤村"}}))
	r = readResults(t, conn)
	require.Equal(t, 1, r.Total)
	assert.Equal(t, "HV-D01-003-N", r.Items[0].ID)

	require.NoError(t, conn.WriteJSON(Request{Type: ReqNavigate, URL: "#/search?keyword=" + urlEscape("日向")}))
	r = readResults(t, conn)
	require.Equal(t, 1, r.Total)
	assert.Equal(t, "HV-P01-001-R", r.Items[0].ID)

	require.NoError(t, conn.WriteJSON(Request{Type: "bogus"}))
	assert.Equal(t, TypeError, read(t, conn).Type)
	require.NoError(t, conn.WriteJSON(Request{Type: ReqPick, ID: "nope"}))
	assert.Equal(t, TypeError, read(t, conn).Type)
}

func TestUpgrade_RejectsForeignOrigin(t *testing.T) {
	f := newFixture(t)
	u := "ws" + strings.TrimPrefix(f.srv.URL, "http") + "/ws/deck"

	_, resp, err := websocket.DefaultDialer.Dial(u, http.Header{"Origin": {"https://evil.example"}})
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestHub_StopClosesClients(t *testing.T) {
	f := newFixture(t)
	conn := f.dial(t, "/ws/deck")
	readDeck(t, conn)
	require.Eventually(t, func() bool { return f.hub.ClientCount() == 1 }, time.Second, 5*time.Millisecond)

	f.hub.Stop()
	require.Eventually(t, func() bool { return f.hub.ClientCount() == 0 }, time.Second, 5*time.Millisecond)

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err := conn.ReadMessage()
	assert.Error(t, err)

	// publishing after stop must not block
	f.hub.PublishDeck(nil)
}

func urlEscape(s string) string {
	return url.QueryEscape(s)
}
