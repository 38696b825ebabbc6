package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/wrale/wrale-proof/api/types/v1alpha1"
	"github.com/wrale/wrale-proof/internal/wproofd/delivery"
	"github.com/wrale/wrale-proof/internal/wproofd/errors"
	"github.com/wrale/wrale-proof/internal/wproofd/events"
	"github.com/wrale/wrale-proof/internal/wproofd/overlay"
	"github.com/wrale/wrale-proof/internal/wproofd/ratelimit"
	"github.com/wrale/wrale-proof/internal/wproofd/settings"
)

type mockSettings struct {
	mock.Mock
}

func (m *mockSettings) Get(ctx context.Context) (settings.Settings, error) {
	args := m.Called(ctx)
	return args.Get(0).(settings.Settings), args.Error(1)
}

func (m *mockSettings) Save(ctx context.Context, s settings.Settings) (settings.Settings, error) {
	args := m.Called(ctx, s)
	return args.Get(0).(settings.Settings), args.Error(1)
}

func (m *mockSettings) AddItem(ctx context.Context, item overlay.ContentItem) (overlay.ContentItem, error) {
	args := m.Called(ctx, item)
	return args.Get(0).(overlay.ContentItem), args.Error(1)
}

func (m *mockSettings) RemoveItem(ctx context.Context, id int) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockSettings) AddGroup(ctx context.Context, group overlay.DisplayGroup) (overlay.DisplayGroup, error) {
	args := m.Called(ctx, group)
	return args.Get(0).(overlay.DisplayGroup), args.Error(1)
}

func (m *mockSettings) RemoveGroup(ctx context.Context, id int) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockSettings) Eligible(ctx context.Context, group string) (settings.Selection, error) {
	args := m.Called(ctx, group)
	return args.Get(0).(settings.Selection), args.Error(1)
}

type mockPages struct {
	mock.Mock
}

func (m *mockPages) Get(ctx context.Context, page string) (string, error) {
	args := m.Called(ctx, page)
	return args.String(0), args.Error(1)
}

func (m *mockPages) Set(ctx context.Context, page, group string) error {
	return m.Called(ctx, page, group).Error(0)
}

type mockPlanner struct {
	mock.Mock
}

func (m *mockPlanner) Plan(ctx context.Context, page string) (*delivery.Plan, error) {
	args := m.Called(ctx, page)
	if p, ok := args.Get(0).(*delivery.Plan); ok {
		return p, args.Error(1)
	}
	return nil, args.Error(1)
}

type fakeStreamer struct {
	served []*delivery.Plan
}

func (f *fakeStreamer) Serve(w http.ResponseWriter, r *http.Request, plan *delivery.Plan) {
	f.served = append(f.served, plan)
	w.WriteHeader(http.StatusSwitchingProtocols)
}

type testHandler struct {
	settings *mockSettings
	pages    *mockPages
	planner  *mockPlanner
	stream   *fakeStreamer
	router   http.Handler
}

func newTestHandler(t *testing.T, limiter ratelimit.Service) *testHandler {
	t.Helper()
	th := &testHandler{
		settings: new(mockSettings),
		pages:    new(mockPages),
		planner:  new(mockPlanner),
		stream:   &fakeStreamer{},
	}
	h := NewHandler(th.settings, th.pages, th.planner, th.stream, limiter, zerolog.Nop())
	th.router = h.Router(RouterOptions{RequestTimeout: 5 * time.Second})
	return th
}

func (th *testHandler) do(t *testing.T, method, target string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	th.router.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) v1alpha1.Error {
	t.Helper()
	var e v1alpha1.Error
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&e))
	return e
}

func TestHealthz(t *testing.T) {
	th := newTestHandler(t, nil)
	rec := th.do(t, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestGetSettings(t *testing.T) {
	th := newTestHandler(t, nil)
	th.settings.On("Get", mock.Anything).Return(settings.Defaults(), nil)

	rec := th.do(t, http.MethodGet, "/api/v1alpha1/settings", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var got v1alpha1.Settings
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
	assert.Equal(t, "Settings", got.Kind)
	assert.Equal(t, int64(3000), got.Rotation.Delay)
	assert.Equal(t, "bottom-left", got.Rotation.Position)
}

func TestPutSettings(t *testing.T) {
	tests := []struct {
		name       string
		body       interface{}
		saveErr    error
		wantStatus int
		wantCode   string
	}{
		{
			name:       "saved",
			body:       settings.ToAPI(settings.Defaults()),
			wantStatus: http.StatusOK,
		},
		{
			name:       "rejected by validation",
			body:       settings.ToAPI(settings.Defaults()),
			saveErr:    errors.NewError("INVALID_CONFIG", "duration must be at least 1s", "Settings.Validate", errors.ErrInvalidConfig),
			wantStatus: http.StatusBadRequest,
			wantCode:   "INVALID_CONFIG",
		},
		{
			name:       "store down",
			body:       settings.ToAPI(settings.Defaults()),
			saveErr:    errors.NewError("UNAVAILABLE", "settings store unavailable", "Service.Save", errors.ErrUnavailable),
			wantStatus: http.StatusServiceUnavailable,
			wantCode:   "UNAVAILABLE",
		},
		{
			name:       "unknown field",
			body:       map[string]interface{}{"bogus": true},
			wantStatus: http.StatusBadRequest,
			wantCode:   "INVALID_REQUEST",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			th := newTestHandler(t, nil)
			th.settings.On("Save", mock.Anything, mock.Anything).Return(settings.Defaults(), tt.saveErr).Maybe()

			rec := th.do(t, http.MethodPut, "/api/v1alpha1/settings", tt.body)
			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantCode != "" {
				assert.Equal(t, tt.wantCode, decodeError(t, rec).Code)
			}
		})
	}
}

func TestAddItem(t *testing.T) {
	th := newTestHandler(t, nil)

	want := overlay.ContentItem{Type: overlay.ItemReview, Content: "Great", Active: true, Groups: []overlay.GroupID{"1"}}
	created := want
	created.ID = 7
	th.settings.On("AddItem", mock.Anything, want).Return(created, nil)

	rec := th.do(t, http.MethodPost, "/api/v1alpha1/items", overlay.ItemToAPI(want))
	require.Equal(t, http.StatusCreated, rec.Code)

	var got v1alpha1.ContentItem
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
	assert.Equal(t, 7, got.ID)
	th.settings.AssertExpectations(t)
}

func TestRemoveItem(t *testing.T) {
	tests := []struct {
		name       string
		path       string
		err        error
		wantStatus int
	}{
		{name: "removed", path: "/api/v1alpha1/items/3", wantStatus: http.StatusNoContent},
		{name: "missing", path: "/api/v1alpha1/items/9", err: errors.NewError("NOT_FOUND", "item 9 not found", "Service.RemoveItem", errors.ErrNotFound), wantStatus: http.StatusNotFound},
		{name: "bad id", path: "/api/v1alpha1/items/abc", wantStatus: http.StatusBadRequest},
		{name: "negative id", path: "/api/v1alpha1/items/-1", wantStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			th := newTestHandler(t, nil)
			th.settings.On("RemoveItem", mock.Anything, mock.Anything).Return(tt.err).Maybe()

			rec := th.do(t, http.MethodDelete, tt.path, nil)
			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}

func TestGroups(t *testing.T) {
	th := newTestHandler(t, nil)
	th.settings.On("AddGroup", mock.Anything, overlay.DisplayGroup{Name: "Pricing"}).
		Return(overlay.DisplayGroup{ID: 2, Name: "Pricing"}, nil)
	th.settings.On("RemoveGroup", mock.Anything, 2).Return(nil)

	rec := th.do(t, http.MethodPost, "/api/v1alpha1/groups", v1alpha1.DisplayGroup{Name: "Pricing"})
	require.Equal(t, http.StatusCreated, rec.Code)
	var got v1alpha1.DisplayGroup
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
	assert.Equal(t, 2, got.ID)

	rec = th.do(t, http.MethodDelete, "/api/v1alpha1/groups/2", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	th.settings.AssertExpectations(t)
}

func TestPageGroup(t *testing.T) {
	th := newTestHandler(t, nil)
	th.pages.On("Set", mock.Anything, "pricing", " 02").Return(nil)
	th.pages.On("Get", mock.Anything, "pricing").Return("2", nil)

	rec := th.do(t, http.MethodPut, "/api/v1alpha1/pages/pricing/group", v1alpha1.PageGroup{Group: " 02"})
	require.Equal(t, http.StatusOK, rec.Code)

	var got v1alpha1.PageGroup
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
	assert.Equal(t, "pricing", got.Page)
	assert.Equal(t, "2", got.Group)

	rec = th.do(t, http.MethodGet, "/api/v1alpha1/pages/pricing/group", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	th.pages.AssertExpectations(t)
}

func TestGetOverlays(t *testing.T) {
	th := newTestHandler(t, nil)
	plan := &delivery.Plan{
		Page: "pricing",
		Selection: settings.Selection{
			Group:    "2",
			Rotation: overlay.DefaultRotationConfig(),
		},
		Catalog: []v1alpha1.CatalogItem{{Index: 0, Item: v1alpha1.ContentItem{ID: 4, Type: "stat", Content: "99%"}}},
	}
	th.planner.On("Plan", mock.Anything, "pricing").Return(plan, nil)

	rec := th.do(t, http.MethodGet, "/api/v1alpha1/pages/pricing/overlays", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var got v1alpha1.EligibleItems
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
	assert.Equal(t, "2", got.Group)
	require.Len(t, got.Items, 1)
	assert.Equal(t, 4, got.Items[0].Item.ID)
}

func TestServeStream(t *testing.T) {
	t.Run("planned page is streamed", func(t *testing.T) {
		th := newTestHandler(t, nil)
		plan := &delivery.Plan{Page: "home"}
		th.planner.On("Plan", mock.Anything, "home").Return(plan, nil)

		rec := th.do(t, http.MethodGet, "/api/v1alpha1/pages/home/stream", nil)
		assert.Equal(t, http.StatusSwitchingProtocols, rec.Code)
		require.Len(t, th.stream.served, 1)
		assert.Same(t, plan, th.stream.served[0])
	})

	t.Run("plan failure is not upgraded", func(t *testing.T) {
		th := newTestHandler(t, nil)
		th.planner.On("Plan", mock.Anything, "home").
			Return(nil, errors.NewError("UNAVAILABLE", "page group store unavailable", "Service.Get", fmt.Errorf("%w: dial tcp", errors.ErrUnavailable)))

		rec := th.do(t, http.MethodGet, "/api/v1alpha1/pages/home/stream", nil)
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
		assert.Empty(t, th.stream.served)
	})

	t.Run("connections are rate limited", func(t *testing.T) {
		limiter := ratelimit.NewService(ratelimit.NewMemoryStore(), zerolog.Nop())
		require.NoError(t, limiter.RegisterLimit(ratelimit.WSConnection, ratelimit.Limit{Rate: 1, Period: time.Minute}))

		th := newTestHandler(t, limiter)
		th.planner.On("Plan", mock.Anything, "home").Return(&delivery.Plan{Page: "home"}, nil)

		rec := th.do(t, http.MethodGet, "/api/v1alpha1/pages/home/stream", nil)
		assert.Equal(t, http.StatusSwitchingProtocols, rec.Code)

		rec = th.do(t, http.MethodGet, "/api/v1alpha1/pages/home/stream", nil)
		assert.Equal(t, http.StatusTooManyRequests, rec.Code)
		assert.NotEmpty(t, rec.Header().Get("Retry-After"))
		assert.Len(t, th.stream.served, 1)
	})
}

func TestNotFound(t *testing.T) {
	th := newTestHandler(t, nil)
	rec := th.do(t, http.MethodGet, "/api/v1alpha1/nothing", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "NOT_FOUND", decodeError(t, rec).Code)
}

func TestToHTTPError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"not found", errors.NewError("NOT_FOUND", "missing", "op", errors.ErrNotFound), http.StatusNotFound, "NOT_FOUND"},
		{"conflict", errors.NewError("CONFLICT", "dup", "op", errors.ErrConflict), http.StatusConflict, "CONFLICT"},
		{"invalid input", errors.NewError("INVALID_INPUT", "bad", "op", errors.ErrInvalidInput), http.StatusBadRequest, "INVALID_INPUT"},
		{"invalid config", errors.NewError("INVALID_CONFIG", "bad", "op", errors.ErrInvalidConfig), http.StatusBadRequest, "INVALID_CONFIG"},
		{"unavailable", fmt.Errorf("wrap: %w", errors.ErrUnavailable), http.StatusServiceUnavailable, "UNAVAILABLE"},
		{"plain", fmt.Errorf("boom"), http.StatusInternalServerError, "INTERNAL"},
		{"http", ErrInvalidRequest("nope"), http.StatusBadRequest, "INVALID_REQUEST"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			he := toHTTPError(tt.err)
			assert.Equal(t, tt.wantStatus, he.StatusCode())
			assert.Equal(t, tt.wantCode, he.ErrorCode())
		})
	}
}

func TestServeStream_WebsocketThroughRouter(t *testing.T) {
	item := overlay.ContentItem{ID: 7, Type: overlay.ItemReview, Content: "Loved it", Active: true, Groups: []overlay.GroupID{"1"}}
	rot := overlay.DefaultRotationConfig()
	rot.Delay = 0

	planner := new(mockPlanner)
	planner.On("Plan", mock.Anything, "home").Return(&delivery.Plan{
		Page: "home",
		Selection: settings.Selection{
			Group:    "1",
			Rotation: rot,
			Items:    []overlay.ContentItem{item},
		},
		Catalog: []v1alpha1.CatalogItem{{Index: 0, Item: overlay.ItemToAPI(item)}},
	}, nil)

	limiter := ratelimit.NewService(ratelimit.NewMemoryStore(), zerolog.Nop())
	require.NoError(t, limiter.RegisterLimit(ratelimit.WSConnection, ratelimit.Limit{Rate: 1, Period: time.Minute}))

	stream := delivery.NewServer(delivery.Config{TickInterval: time.Hour}, events.NewLogPublisher(zerolog.Nop()), zerolog.Nop())
	h := NewHandler(new(mockSettings), new(mockPages), planner, stream, limiter, zerolog.Nop())

	ts := httptest.NewServer(h.Router(RouterOptions{RequestTimeout: time.Second}))
	t.Cleanup(ts.Close)
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/api/v1alpha1/pages/home/stream"

	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	assert.Equal(t, http.StatusSwitchingProtocols, resp.StatusCode)

	read := func() v1alpha1.StreamMessage {
		t.Helper()
		require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
		var msg v1alpha1.StreamMessage
		require.NoError(t, conn.ReadJSON(&msg))
		return msg
	}

	catalog := read()
	assert.Equal(t, v1alpha1.StreamMessageCatalog, catalog.Type)

	shown := read()
	require.Equal(t, v1alpha1.StreamMessageSnapshot, shown.Type)
	require.NotNil(t, shown.Snapshot)
	assert.Equal(t, "show", shown.Snapshot.Trigger)
	assert.Equal(t, 7, shown.Snapshot.ItemID)

	// the limiter sits in front of the real upgrade
	_, resp, err = websocket.DefaultDialer.Dial(url, nil)
	assert.ErrorIs(t, err, websocket.ErrBadHandshake)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)

	planner.AssertNumberOfCalls(t, "Plan", 1)
}
