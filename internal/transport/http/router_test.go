package httptransport

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"orbit-jackpot/internal/jackpot"
	"orbit-jackpot/internal/profile"
	"orbit-jackpot/internal/testutil"
	"orbit-jackpot/internal/ws"
)

func newTestServer(t *testing.T) (*httptest.Server, *profile.Service, func()) {
	t.Helper()
	st, cleanup := testutil.OpenTestStore(t)
	feed := jackpot.NewFeed()
	engine := jackpot.NewEngine(st, feed, jackpot.DefaultConfig())
	profiles := profile.New(st, 500)
	wsServer := ws.NewServer(engine, feed, profiles)
	srv := httptest.NewServer(NewRouter(st, profiles, wsServer))
	return srv, profiles, func() {
		srv.Close()
		feed.Close()
		cleanup()
	}
}

func TestHealthz(t *testing.T) {
	srv, _, cleanup := newTestServer(t)
	defer cleanup()

	resp, err := http.Get(srv.URL + "/healthz")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
}

func TestCurrentRoundEndpoint(t *testing.T) {
	srv, _, cleanup := newTestServer(t)
	defer cleanup()

	resp, err := http.Get(srv.URL + "/api/round")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status with no round = %d, want 404", resp.StatusCode)
	}
}

func TestProfileRoundTrip(t *testing.T) {
	srv, profiles, cleanup := newTestServer(t)
	defer cleanup()

	err := profiles.Ensure(context.Background(), jackpot.Bettor{ID: "tg-9", Meta: jackpot.DisplayMeta{Name: "Niner"}})
	if err != nil {
		t.Fatalf("ensure: %v", err)
	}

	blob := []byte(`{"farm":{"plots":2}}`)
	req, _ := http.NewRequest(http.MethodPut, srv.URL+"/api/profile/tg-9/game-data", bytes.NewReader(blob))
	client := &http.Client{Timeout: 5 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("put: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("put status = %d, want 200", resp.StatusCode)
	}

	resp, err = http.Get(srv.URL + "/api/profile/tg-9")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	var got struct {
		Balance  int64           `json:"balance"`
		GameData json.RawMessage `json:"game_data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Balance != 500 {
		t.Fatalf("balance = %d, want 500", got.Balance)
	}
	var decoded map[string]any
	if err := json.Unmarshal(got.GameData, &decoded); err != nil || decoded["farm"] == nil {
		t.Fatalf("game_data = %s", got.GameData)
	}
}

func TestSaveGameDataRejectsInvalidJSON(t *testing.T) {
	srv, profiles, cleanup := newTestServer(t)
	defer cleanup()

	if err := profiles.Ensure(context.Background(), jackpot.Bettor{ID: "tg-10"}); err != nil {
		t.Fatalf("ensure: %v", err)
	}
	req, _ := http.NewRequest(http.MethodPut, srv.URL+"/api/profile/tg-10/game-data", bytes.NewReader([]byte(`{not json`)))
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("put: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
}
