package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/go-cmp/cmp"
	"github.com/shopspring/decimal"

	"axees/internal/cart"
	"axees/internal/fetcher"
	"axees/internal/identity"
	"axees/internal/model"
	"axees/internal/notify"
	"axees/internal/sponsor"
	"axees/internal/storage"
)

type noopTimer struct{}

func (noopTimer) Stop() bool { return true }

var testRules = []model.SponsorshipRule{
	{ID: "r-shoes", TriggerType: model.TriggerKeyword, Keywords: []string{"trail"}, ProductIDs: []string{"p-shoe"}, Priority: model.PriorityMedium},
	{ID: "r-scroll", TriggerType: model.TriggerScroll, ScrollDepth: 50, ProductIDs: []string{"p-serum"}, Priority: model.PriorityHigh},
	{ID: "r-mention", TriggerType: model.TriggerMention, MentionCount: 2, ProductIDs: []string{"p-shoe"}, Priority: model.PriorityLow},
}

var testCatalog = sponsor.StaticCatalog{
	"p-shoe":  {ID: "p-shoe", Name: "Trail Shoe", Price: decimal.RequireFromString("10.00"), Brand: "Nimbus"},
	"p-serum": {ID: "p-serum", Name: "Serum", Price: decimal.RequireFromString("24.50")},
}

type testEnv struct {
	srv   *httptest.Server
	store *storage.SQLite
	notes *notify.Store
	cart  *cart.Store
	eval  *sponsor.Evaluator
}

func newTestEnv(t *testing.T) testEnv {
	t.Helper()
	store, err := storage.NewSQLite(":memory:")
	if err != nil {
		t.Fatalf("new sqlite: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	notes := notify.NewStore(store, notify.Options{}, log)
	c := cart.NewStore(store, cart.Options{MaxQuantity: 3}, log)
	eval := sponsor.NewEvaluator(testRules, testCatalog, sponsor.Options{
		AfterFunc: func(time.Duration, func()) sponsor.Timer { return noopTimer{} },
	}, log)

	s := New(Deps{
		Notes:    notes,
		Cart:     c,
		Eval:     eval,
		Catalog:  testCatalog,
		Ghosts:   identity.NewGhosts(store, time.Hour, nil, log),
		Sessions: identity.NewSessions(store, nil),
	}, log)
	srv := httptest.NewServer(s.Handler())
	t.Cleanup(srv.Close)
	return testEnv{srv: srv, store: store, notes: notes, cart: c, eval: eval}
}

func (e testEnv) do(t *testing.T, method, path, body string) (int, Response, json.RawMessage) {
	t.Helper()
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, e.srv.URL+path, rd)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return resp.StatusCode, Response{}, nil
	}
	var envelope struct {
		Response
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil {
		t.Fatalf("decode %s: %v", raw, err)
	}
	return resp.StatusCode, envelope.Response, envelope.Data
}

func decode[T any](t *testing.T, raw json.RawMessage) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		t.Fatalf("decode %s: %v", raw, err)
	}
	return v
}

func TestHealthz(t *testing.T) {
	env := newTestEnv(t)
	status, resp, _ := env.do(t, http.MethodGet, "/healthz", "")
	if diff := cmp.Diff(http.StatusOK, status); diff != "" {
		t.Errorf("status mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff("success", resp.Status); diff != "" {
		t.Errorf("envelope status mismatch (-want +got):\n%s", diff)
	}
}

func TestPostEvent(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantType   model.NotificationType
	}{
		{
			name:       "offer",
			body:       `{"kind":"offer_received","recipientId":"u1","offerId":"o-1","marketerName":"Glow Co"}`,
			wantStatus: http.StatusCreated,
			wantType:   model.NotificationOffer,
		},
		{
			name:       "system",
			body:       `{"kind":"system","recipientId":"u1","title":"Maintenance"}`,
			wantStatus: http.StatusCreated,
			wantType:   model.NotificationSystem,
		},
		{name: "missing recipient", body: `{"kind":"system","title":"x"}`, wantStatus: http.StatusBadRequest},
		{name: "unknown kind", body: `{"kind":"refund","recipientId":"u1"}`, wantStatus: http.StatusBadRequest},
		{name: "missing fields", body: `{"kind":"deal_funded","recipientId":"u1"}`, wantStatus: http.StatusBadRequest},
		{name: "unknown field", body: `{"kind":"system","recipientId":"u1","title":"x","extra":1}`, wantStatus: http.StatusBadRequest},
		{name: "malformed", body: `{`, wantStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			status, resp, data := env.do(t, http.MethodPost, "/api/v1/events", tt.body)
			if diff := cmp.Diff(tt.wantStatus, status); diff != "" {
				t.Fatalf("status mismatch (-want +got):\n%s (%s)", diff, resp.Message)
			}
			if tt.wantStatus != http.StatusCreated {
				return
			}
			n := decode[model.Notification](t, data)
			if n.ID == "" || n.Read || n.Type != tt.wantType {
				t.Errorf("unexpected record %+v", n)
			}
			if diff := cmp.Diff(1, env.notes.UnreadCount("u1")); diff != "" {
				t.Errorf("unread mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestNotificationEndpoints(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	offer, _ := env.notes.Append(ctx, notify.OfferReceived("u1", "o-1", "Glow Co"))
	sys, _ := env.notes.Append(ctx, notify.SystemNotice("u1", "Hello", ""))
	_, _ = env.notes.Append(ctx, notify.SystemNotice("u2", "Other", ""))

	_, _, data := env.do(t, http.MethodGet, "/api/v1/notifications?recipient=u1", "")
	list := decode[[]model.Notification](t, data)
	var ids []string
	for _, n := range list {
		ids = append(ids, n.ID)
	}
	if diff := cmp.Diff([]string{sys.ID, offer.ID}, ids); diff != "" {
		t.Errorf("ids mismatch (-want +got):\n%s", diff)
	}

	_, _, data = env.do(t, http.MethodGet, "/api/v1/notifications?recipient=nobody", "")
	if diff := cmp.Diff("[]", string(data)); diff != "" {
		t.Errorf("empty list mismatch (-want +got):\n%s", diff)
	}

	_, _, data = env.do(t, http.MethodGet, "/api/v1/notifications/unread-count?recipient=u1", "")
	if diff := cmp.Diff(map[string]int{"count": 2}, decode[map[string]int](t, data)); diff != "" {
		t.Errorf("count mismatch (-want +got):\n%s", diff)
	}

	status, _, _ := env.do(t, http.MethodPost, "/api/v1/notifications/"+sys.ID+"/read", "")
	if diff := cmp.Diff(http.StatusNoContent, status); diff != "" {
		t.Errorf("read status mismatch (-want +got):\n%s", diff)
	}
	status, _, _ = env.do(t, http.MethodPost, "/api/v1/notifications/missing/read", "")
	if diff := cmp.Diff(http.StatusNotFound, status); diff != "" {
		t.Errorf("missing read status mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(1, env.notes.UnreadCount("u1")); diff != "" {
		t.Errorf("unread mismatch (-want +got):\n%s", diff)
	}

	status, _, _ = env.do(t, http.MethodPost, "/api/v1/notifications/read-all?recipient=u1", "")
	if diff := cmp.Diff(http.StatusNoContent, status); diff != "" {
		t.Errorf("read-all status mismatch (-want +got):\n%s", diff)
	}
	got := map[string]int{"u1": env.notes.UnreadCount("u1"), "u2": env.notes.UnreadCount("u2")}
	if diff := cmp.Diff(map[string]int{"u1": 0, "u2": 1}, got); diff != "" {
		t.Errorf("scoped read-all mismatch (-want +got):\n%s", diff)
	}

	status, _, _ = env.do(t, http.MethodPost, "/api/v1/notifications/read-all", "")
	if diff := cmp.Diff(http.StatusNoContent, status); diff != "" {
		t.Errorf("read-all status mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(0, env.notes.UnreadCount("u2")); diff != "" {
		t.Errorf("unread mismatch (-want +got):\n%s", diff)
	}
}

func TestOpenNotification(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	offer, _ := env.notes.Append(ctx, notify.OfferReceived("u1", "o-1", "Glow Co"))
	sys, _ := env.notes.Append(ctx, notify.SystemNotice("u1", "Hello", ""))

	status, _, data := env.do(t, http.MethodPost, "/api/v1/notifications/"+offer.ID+"/open", "")
	if diff := cmp.Diff(http.StatusOK, status); diff != "" {
		t.Fatalf("status mismatch (-want +got):\n%s", diff)
	}
	got := decode[openResponse](t, data)
	want := openResponse{Destination: &notify.Destination{Name: notify.DestOfferDetails, Params: map[string]string{"offerId": "o-1"}}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("destination mismatch (-want +got):\n%s", diff)
	}
	if n, _ := env.notes.Get(offer.ID); !n.Read {
		t.Error("opened notification should be read")
	}

	_, _, data = env.do(t, http.MethodPost, "/api/v1/notifications/"+sys.ID+"/open", "")
	if got := decode[openResponse](t, data); got.Destination != nil {
		t.Errorf("system notice has no destination, got %+v", got.Destination)
	}

	status, _, _ = env.do(t, http.MethodPost, "/api/v1/notifications/missing/open", "")
	if diff := cmp.Diff(http.StatusNotFound, status); diff != "" {
		t.Errorf("status mismatch (-want +got):\n%s", diff)
	}
}

func TestCartEndpoints(t *testing.T) {
	env := newTestEnv(t)

	for i := 0; i < 2; i++ {
		status, resp, _ := env.do(t, http.MethodPost, "/api/v1/cart/items", `{"productId":"p-shoe","size":"42"}`)
		if diff := cmp.Diff(http.StatusCreated, status); diff != "" {
			t.Fatalf("add status mismatch (-want +got):\n%s (%s)", diff, resp.Message)
		}
	}

	_, _, data := env.do(t, http.MethodGet, "/api/v1/cart", "")
	got := decode[cartResponse](t, data)
	if len(got.Items) != 1 || got.Count != 2 {
		t.Fatalf("unexpected cart %+v", got)
	}
	for name, pair := range map[string][2]string{
		"subtotal": {"20", got.Totals.Subtotal.String()},
		"tax":      {"1.6", got.Totals.Tax.String()},
		"total":    {"21.6", got.Totals.Total.String()},
	} {
		if diff := cmp.Diff(pair[0], pair[1]); diff != "" {
			t.Errorf("%s mismatch (-want +got):\n%s", name, diff)
		}
	}
	lineID := got.Items[0].ID

	status, _, _ := env.do(t, http.MethodPost, "/api/v1/cart/items", `{"productId":"p-unknown"}`)
	if diff := cmp.Diff(http.StatusNotFound, status); diff != "" {
		t.Errorf("unknown product status mismatch (-want +got):\n%s", diff)
	}

	status, _, _ = env.do(t, http.MethodPatch, "/api/v1/cart/items/"+lineID, `{"quantity":4}`)
	if diff := cmp.Diff(http.StatusUnprocessableEntity, status); diff != "" {
		t.Errorf("limit status mismatch (-want +got):\n%s", diff)
	}
	status, _, _ = env.do(t, http.MethodPatch, "/api/v1/cart/items/missing", `{"quantity":1}`)
	if diff := cmp.Diff(http.StatusNotFound, status); diff != "" {
		t.Errorf("missing line status mismatch (-want +got):\n%s", diff)
	}
	status, _, _ = env.do(t, http.MethodPatch, "/api/v1/cart/items/"+lineID, `{}`)
	if diff := cmp.Diff(http.StatusBadRequest, status); diff != "" {
		t.Errorf("no quantity status mismatch (-want +got):\n%s", diff)
	}
	status, _, data = env.do(t, http.MethodPatch, "/api/v1/cart/items/"+lineID, `{"quantity":3}`)
	if diff := cmp.Diff(http.StatusOK, status); diff != "" {
		t.Errorf("update status mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(3, decode[cartResponse](t, data).Count); diff != "" {
		t.Errorf("count mismatch (-want +got):\n%s", diff)
	}

	for i := 0; i < 2; i++ {
		status, _, _ = env.do(t, http.MethodDelete, "/api/v1/cart/items/"+lineID, "")
		if diff := cmp.Diff(http.StatusNoContent, status); diff != "" {
			t.Errorf("remove #%d status mismatch (-want +got):\n%s", i, diff)
		}
	}

	_, _ = env.cart.Add(context.Background(), model.CartItem{ProductID: "x", Price: decimal.NewFromInt(1)})
	status, _, _ = env.do(t, http.MethodDelete, "/api/v1/cart", "")
	if diff := cmp.Diff(http.StatusNoContent, status); diff != "" {
		t.Errorf("clear status mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(0, env.cart.Count()); diff != "" {
		t.Errorf("count mismatch (-want +got):\n%s", diff)
	}
}

func TestSignalsAndSponsorship(t *testing.T) {
	env := newTestEnv(t)

	_, _, data := env.do(t, http.MethodGet, "/api/v1/sponsorship", "")
	if got := decode[sponsorshipResponse](t, data); got.Active != nil {
		t.Fatalf("nothing should be active yet, got %+v", got.Active)
	}

	_, _, data = env.do(t, http.MethodPost, "/api/v1/signals", `{"content":"New TRAIL loop today"}`)
	got := decode[sponsorshipResponse](t, data)
	if got.Active == nil || got.Active.Product.ID != "p-shoe" {
		t.Fatalf("expected shoe to be active, got %+v", got.Active)
	}
	if diff := cmp.Diff(6.0, got.Active.ShownForSeconds); diff != "" {
		t.Errorf("shown for mismatch (-want +got):\n%s", diff)
	}

	for i := 0; i < 2; i++ {
		_, _, data = env.do(t, http.MethodPost, "/api/v1/signals", `{"mention":true}`)
	}
	if diff := cmp.Diff(2, decode[sponsorshipResponse](t, data).MentionBadge); diff != "" {
		t.Errorf("badge mismatch (-want +got):\n%s", diff)
	}

	// High priority preempts; the shoe's mention badge goes with it.
	_, _, data = env.do(t, http.MethodPost, "/api/v1/signals", `{"scroll":75}`)
	got = decode[sponsorshipResponse](t, data)
	if got.Active == nil || got.Active.Product.ID != "p-serum" {
		t.Fatalf("expected serum to preempt, got %+v", got.Active)
	}
	if diff := cmp.Diff(0, got.MentionBadge); diff != "" {
		t.Errorf("badge after preemption mismatch (-want +got):\n%s", diff)
	}

	_, _, data = env.do(t, http.MethodPost, "/api/v1/signals", `{"reset":true}`)
	if got := decode[sponsorshipResponse](t, data); got.Active != nil {
		t.Errorf("reset should clear the overlay, got %+v", got.Active)
	}
	if env.eval.Triggered("r-shoes") {
		t.Error("reset should clear triggered rules")
	}

	status, _, _ := env.do(t, http.MethodPost, "/api/v1/signals", `{"scroll":"deep"}`)
	if diff := cmp.Diff(http.StatusBadRequest, status); diff != "" {
		t.Errorf("status mismatch (-want +got):\n%s", diff)
	}
}

func TestProfile(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	_, _, data := env.do(t, http.MethodGet, "/api/v1/profile", "")
	got := decode[profileResponse](t, data)
	if got.Kind != "ghost" || got.Ghost == nil || !strings.HasPrefix(got.Ghost.DisplayName, "Guest ") {
		t.Fatalf("expected ghost profile, got %+v", got)
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"exp": time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte("k"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	user := model.User{ID: "u1", Name: "Ana", UserType: "creator"}
	if err := identity.NewSessions(env.store, nil).Save(ctx, token, user); err != nil {
		t.Fatalf("save session: %v", err)
	}

	_, _, data = env.do(t, http.MethodGet, "/api/v1/profile", "")
	got = decode[profileResponse](t, data)
	if diff := cmp.Diff(profileResponse{Kind: "user", User: &user}, got); diff != "" {
		t.Errorf("profile mismatch (-want +got):\n%s", diff)
	}
}

func TestSessionEndpoints(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	// Create a ghost first so sign-in has something to discard.
	env.do(t, http.MethodGet, "/api/v1/profile", "")
	if _, err := env.store.Get(ctx, storage.KeyGhostProfile); err != nil {
		t.Fatalf("ghost profile not stored: %v", err)
	}

	status, _, _ := env.do(t, http.MethodPost, "/api/v1/session", `{"token":"not-a-jwt","user":{"id":"u1","name":"Ana"}}`)
	if diff := cmp.Diff(http.StatusBadRequest, status); diff != "" {
		t.Errorf("bad token status mismatch (-want +got):\n%s", diff)
	}
	status, _, _ = env.do(t, http.MethodPost, "/api/v1/session", `{"token":""}`)
	if diff := cmp.Diff(http.StatusBadRequest, status); diff != "" {
		t.Errorf("missing fields status mismatch (-want +got):\n%s", diff)
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"exp": time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte("k"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	status, _, _ = env.do(t, http.MethodPost, "/api/v1/session", `{"token":"`+token+`","user":{"id":"u1","name":"Ana"}}`)
	if diff := cmp.Diff(http.StatusOK, status); diff != "" {
		t.Fatalf("sign in status mismatch (-want +got):\n%s", diff)
	}
	if _, err := env.store.Get(ctx, storage.KeyGhostProfile); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("ghost profile still stored after sign in: %v", err)
	}

	_, _, data := env.do(t, http.MethodGet, "/api/v1/profile", "")
	if got := decode[profileResponse](t, data); got.Kind != "user" || got.User.ID != "u1" {
		t.Errorf("expected signed-in user, got %+v", got)
	}

	status, _, _ = env.do(t, http.MethodDelete, "/api/v1/session", "")
	if diff := cmp.Diff(http.StatusNoContent, status); diff != "" {
		t.Errorf("sign out status mismatch (-want +got):\n%s", diff)
	}
	_, _, data = env.do(t, http.MethodGet, "/api/v1/profile", "")
	if got := decode[profileResponse](t, data); got.Kind != "ghost" {
		t.Errorf("expected ghost after sign out, got %+v", got)
	}
}

func TestDismissSignal(t *testing.T) {
	env := newTestEnv(t)

	env.do(t, http.MethodPost, "/api/v1/signals", `{"content":"trail day"}`)
	_, _, data := env.do(t, http.MethodPost, "/api/v1/signals", `{"dismiss":true}`)
	if got := decode[sponsorshipResponse](t, data); got.Active != nil {
		t.Errorf("dismiss should clear the overlay, got %+v", got.Active)
	}
	// The rule stays consumed for this session.
	_, _, data = env.do(t, http.MethodPost, "/api/v1/signals", `{"content":"more trail"}`)
	if got := decode[sponsorshipResponse](t, data); got.Active != nil {
		t.Errorf("dismissed rule fired again: %+v", got.Active)
	}
}

type stubFeed struct {
	content fetcher.Content
	started time.Time
}

func (f stubFeed) Current() (fetcher.Content, time.Time) { return f.content, f.started }

func TestSponsorshipReportsFeedContent(t *testing.T) {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	s := New(Deps{
		Eval: sponsor.NewEvaluator(nil, testCatalog, sponsor.Options{}, log),
		Feed: stubFeed{
			content: fetcher.Content{GUID: "mara-0003", Title: "New trail shoes review"},
			started: time.Now().Add(-time.Minute),
		},
	}, log)

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/sponsorship", nil))

	var resp struct {
		Data sponsorshipResponse `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	got := resp.Data.Content
	if got == nil {
		t.Fatal("expected content in response")
	}
	if diff := cmp.Diff("mara-0003", got.GUID); diff != "" {
		t.Errorf("guid mismatch (-want +got):\n%s", diff)
	}
	if got.ViewingSeconds < 60 {
		t.Errorf("viewing seconds = %v, want >= 60", got.ViewingSeconds)
	}
}

// readOnlyStorage accepts reads but fails every write.
type readOnlyStorage struct {
	storage.Storage
}

func (readOnlyStorage) Set(context.Context, string, []byte) error {
	return errors.New("disk full")
}

func (readOnlyStorage) Remove(context.Context, string) error {
	return errors.New("disk full")
}

func TestFailedSavesKeepChanges(t *testing.T) {
	ctx := context.Background()
	sqlite, err := storage.NewSQLite(":memory:")
	if err != nil {
		t.Fatalf("new sqlite: %v", err)
	}
	t.Cleanup(func() { _ = sqlite.Close() })
	st := readOnlyStorage{Storage: sqlite}

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	notes := notify.NewStore(st, notify.Options{}, log)
	c := cart.NewStore(st, cart.Options{}, log)
	h := New(Deps{Notes: notes, Cart: c, Catalog: testCatalog}, log).Handler()

	call := func(method, path, body string) *httptest.ResponseRecorder {
		t.Helper()
		var rd io.Reader
		if body != "" {
			rd = strings.NewReader(body)
		}
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(method, path, rd))
		return rec
	}

	rec := call(http.MethodPost, "/api/v1/cart/items", `{"productId":"p-shoe"}`)
	if diff := cmp.Diff(http.StatusCreated, rec.Code); diff != "" {
		t.Fatalf("add status mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(1, c.Count()); diff != "" {
		t.Errorf("count after one add mismatch (-want +got):\n%s", diff)
	}

	line := c.Items()[0]
	rec = call(http.MethodPatch, "/api/v1/cart/items/"+line.ID, `{"quantity":3}`)
	if diff := cmp.Diff(http.StatusOK, rec.Code); diff != "" {
		t.Errorf("update status mismatch (-want +got):\n%s", diff)
	}

	n, _ := notes.Append(ctx, notify.SystemNotice("u1", "Hi", ""))
	for _, tc := range []struct {
		method, path string
		want         int
	}{
		{http.MethodPost, "/api/v1/events", http.StatusCreated},
		{http.MethodPost, "/api/v1/notifications/" + n.ID + "/read", http.StatusNoContent},
		{http.MethodPost, "/api/v1/notifications/read-all", http.StatusNoContent},
		{http.MethodDelete, "/api/v1/cart", http.StatusNoContent},
	} {
		body := ""
		if tc.path == "/api/v1/events" {
			body = `{"kind":"system","recipientId":"u1","title":"Again"}`
		}
		rec := call(tc.method, tc.path, body)
		if diff := cmp.Diff(tc.want, rec.Code); diff != "" {
			t.Errorf("%s %s status mismatch (-want +got):\n%s", tc.method, tc.path, diff)
		}
	}

	if diff := cmp.Diff(0, notes.UnreadCount("u1")); diff != "" {
		t.Errorf("unread mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(0, c.Count()); diff != "" {
		t.Errorf("count after clear mismatch (-want +got):\n%s", diff)
	}
}
