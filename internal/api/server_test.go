package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"wishlist-cli/internal/model"
	"wishlist-cli/internal/reorder"
	"wishlist-cli/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m,
		goleak.IgnoreTopFunction("net/http.(*persistConn).readLoop"),
		goleak.IgnoreTopFunction("net/http.(*persistConn).writeLoop"),
		goleak.IgnoreTopFunction("internal/poll.runtime_pollWait"),
	)
}

func seedWorkspace(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	now := time.Now().UTC()
	db := &store.DB{
		Version:        1,
		CurrentActorID: "act-owner",
		Actors: []model.Actor{
			{ID: "act-owner", Kind: model.ActorKindHuman, Name: "Owner"},
			{ID: "act-guest", Kind: model.ActorKindHuman, Name: "Guest"},
		},
		Lists: []model.List{{ID: "list-1", Name: "Birthday", OwnerActorID: "act-owner", CreatedBy: "act-owner", CreatedAt: now}},
		Items: []model.Item{
			{ID: "item-a", ListID: "list-1", SortOrder: 0, Title: "A", OwnerActorID: "act-owner", CreatedAt: now},
			{ID: "item-b", ListID: "list-1", SortOrder: 1, Title: "B", OwnerActorID: "act-owner", CreatedAt: now},
			{ID: "item-c", ListID: "list-1", SortOrder: 2, Title: "C", OwnerActorID: "act-owner", CreatedAt: now},
		},
	}
	require.NoError(t, store.Store{Dir: dir}.Save(db))
	return dir
}

func newTestServer(t *testing.T) (*Server, *httptest.Server) {
	t.Helper()
	s, err := NewServer(ServerConfig{Addr: "127.0.0.1:0", Dir: seedWorkspace(t), ActorID: "act-owner"})
	require.NoError(t, err)
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)
	return s, ts
}

func testClient(ts *httptest.Server, actor string) *Client {
	c := NewClient(ts.URL, actor, 5*time.Second)
	c.HTTP = ts.Client()
	return c
}

func TestNewServer_ValidatesConfig(t *testing.T) {
	_, err := NewServer(ServerConfig{Dir: "x"})
	assert.Error(t, err)
	_, err = NewServer(ServerConfig{Addr: ":0"})
	assert.Error(t, err)
}

func TestHealth(t *testing.T) {
	_, ts := newTestServer(t)
	resp, err := ts.Client().Get(ts.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get("X-Request-Id"))
}

func TestPersistOrder_WritesRanks(t *testing.T) {
	s, ts := newTestServer(t)
	c := testClient(ts, "act-owner")
	ctx := context.Background()

	ranks := []model.RankUpdate{{ID: "item-b", Rank: 0}, {ID: "item-c", Rank: 1}, {ID: "item-a", Rank: 2}}
	require.NoError(t, c.PersistOrder(ctx, "list-1", ranks))

	items, err := c.ListItems(ctx, "list-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"item-b", "item-c", "item-a"}, model.ItemIDs(items))

	evs, err := s.store.ReadEventsForEntity(ctx, "list-1", 0)
	require.NoError(t, err)
	require.Len(t, evs, 1)
	assert.Equal(t, "list.reorder", evs[0].Type)
	assert.Equal(t, "act-owner", evs[0].ActorID)
}

func TestPersistOrder_FailureStatuses(t *testing.T) {
	_, ts := newTestServer(t)
	ctx := context.Background()
	full := []model.RankUpdate{{ID: "item-a", Rank: 0}, {ID: "item-b", Rank: 1}, {ID: "item-c", Rank: 2}}

	err := testClient(ts, "act-guest").PersistOrder(ctx, "list-1", full)
	code, ok := reorder.StatusCode(err)
	require.True(t, ok, "expected a status error, got %v", err)
	assert.Equal(t, http.StatusForbidden, code)
	assert.Equal(t, reorder.FailureStale, reorder.Classify(err))

	err = testClient(ts, "act-owner").PersistOrder(ctx, "list-nope", full)
	code, _ = reorder.StatusCode(err)
	assert.Equal(t, http.StatusNotFound, code)

	err = testClient(ts, "act-owner").PersistOrder(ctx, "list-1", full[:2])
	code, _ = reorder.StatusCode(err)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, reorder.FailureTransient, reorder.Classify(err))

	_, err = testClient(ts, "act-owner").ListItems(ctx, "list-nope")
	code, _ = reorder.StatusCode(err)
	assert.Equal(t, http.StatusNotFound, code)
}

func TestPutOrder_RejectsMalformedBodies(t *testing.T) {
	_, ts := newTestServer(t)
	cases := map[string]string{
		"not json":      `{"ranks":`,
		"unknown field": `{"ranks":[{"id":"item-a","rank":0}],"extra":1}`,
		"empty":         `{"ranks":[]}`,
		"missing id":    `{"ranks":[{"id":"","rank":0}]}`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			req, err := http.NewRequest(http.MethodPut, ts.URL+"/lists/list-1/order", strings.NewReader(body))
			require.NoError(t, err)
			resp, err := ts.Client().Do(req)
			require.NoError(t, err)
			resp.Body.Close()
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		})
	}
}

func TestStream_PushesOrderChanges(t *testing.T) {
	s, ts := newTestServer(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	c := testClient(ts, "act-owner")
	events, err := c.Stream(ctx, "list-1")
	require.NoError(t, err)
	require.Eventually(t, func() bool { return s.bc.subscribers("list-1") == 1 }, 2*time.Second, 5*time.Millisecond)

	ranks := []model.RankUpdate{{ID: "item-c", Rank: 0}, {ID: "item-a", Rank: 1}, {ID: "item-b", Rank: 2}}
	require.NoError(t, c.PersistOrder(ctx, "list-1", ranks))

	select {
	case ev := <-events:
		assert.Equal(t, ChangeEvent{Type: "order", ListID: "list-1"}, ev)
	case <-time.After(2 * time.Second):
		t.Fatalf("expected an order event")
	}

	cancel()
	for range events {
	}
	require.Eventually(t, func() bool {
		s.bc.mu.Lock()
		defer s.bc.mu.Unlock()
		return len(s.bc.hubs) == 0
	}, 2*time.Second, 5*time.Millisecond, "closed streams leave no hub behind")
}

func TestStream_UnknownListIsNotFound(t *testing.T) {
	s, ts := newTestServer(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	_, err := testClient(ts, "act-owner").Stream(ctx, "list-missing")
	var se *StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusNotFound, se.Code)

	// Writes to lists nobody watches do not create hubs either.
	s.bc.orderChanged("list-1")
	s.bc.mu.Lock()
	defer s.bc.mu.Unlock()
	assert.Empty(t, s.bc.hubs)
}

func TestController_OverHTTP(t *testing.T) {
	_, ts := newTestServer(t)
	c := testClient(ts, "act-owner")
	ctx := context.Background()

	items, err := c.ListItems(ctx, "list-1")
	require.NoError(t, err)

	toasts := &reorder.Recorder{}
	clock := reorder.NewFakeClock(time.Now())
	ctrl := reorder.NewController(reorder.Config{
		ListID:    "list-1",
		Items:     items,
		Persister: c,
		Toaster:   toasts,
		Clock:     clock,
	})
	defer ctrl.Close()

	require.NoError(t, ctrl.BeginDrag("item-a"))
	target := 2
	f, err := ctrl.Drop(ctx, &target)
	require.NoError(t, err)
	require.NoError(t, f.Wait())

	uf, err := ctrl.Undo(ctx)
	require.NoError(t, err)
	require.NoError(t, uf.Wait())

	items, err = c.ListItems(ctx, "list-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"item-a", "item-b", "item-c"}, model.ItemIDs(items))
}
