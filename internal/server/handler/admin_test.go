package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/Akanimoh12/iPredict/internal/domain"
)

type fakeAdminService struct {
	hash common.Hash
	err  error
	ops  []string
}

func (f *fakeAdminService) op(name string) (common.Hash, error) {
	if f.err != nil {
		return common.Hash{}, f.err
	}
	f.ops = append(f.ops, name)
	return f.hash, nil
}

func (f *fakeAdminService) CreateMarket(context.Context, string, string, string, time.Duration) (common.Hash, error) {
	return f.op("create")
}

func (f *fakeAdminService) ResolveMarket(context.Context, uint64, bool) (common.Hash, error) {
	return f.op("resolve")
}

func (f *fakeAdminService) CancelMarket(context.Context, uint64) (common.Hash, error) {
	return f.op("cancel")
}

func (f *fakeAdminService) Pause(context.Context) (common.Hash, error) { return f.op("pause") }

func (f *fakeAdminService) Unpause(context.Context) (common.Hash, error) { return f.op("unpause") }

func (f *fakeAdminService) WithdrawFees(context.Context) (common.Hash, error) {
	return f.op("withdraw")
}

func adminMux(svc AdminService) *http.ServeMux {
	h := NewAdminHandler(svc, testLogger())
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/admin/markets", h.CreateMarket)
	mux.HandleFunc("POST /api/admin/markets/{id}/resolve", h.ResolveMarket)
	mux.HandleFunc("POST /api/admin/markets/{id}/cancel", h.CancelMarket)
	mux.HandleFunc("POST /api/admin/pause", h.Pause)
	return mux
}

func TestCreateMarket(t *testing.T) {
	svc := &fakeAdminService{hash: common.HexToHash("0xbeef")}
	mux := adminMux(svc)

	body := `{"question":"Will it rain tomorrow?","category":"weather","durationSeconds":86400}`
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/admin/markets", strings.NewReader(body)))

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body)
	}
	var got txResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.TxHash != svc.hash.Hex() {
		t.Errorf("txHash = %s", got.TxHash)
	}
}

func TestCreateMarketValidation(t *testing.T) {
	cases := []struct {
		name string
		body string
	}{
		{"empty body", ``},
		{"missing question", `{"durationSeconds":3600}`},
		{"blank question", `{"question":"  ","durationSeconds":3600}`},
		{"zero duration", `{"question":"q?","durationSeconds":0}`},
		{"negative duration", `{"question":"q?","durationSeconds":-60}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := &fakeAdminService{}
			mux := adminMux(svc)

			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/admin/markets", strings.NewReader(tc.body)))

			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", rec.Code)
			}
			if len(svc.ops) != 0 {
				t.Errorf("service called for invalid input: %v", svc.ops)
			}
		})
	}
}

func TestResolveMarketRequiresOutcome(t *testing.T) {
	svc := &fakeAdminService{}
	mux := adminMux(svc)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/admin/markets/3/resolve", strings.NewReader(`{}`)))

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/admin/markets/3/resolve", strings.NewReader(`{"outcome":false}`)))

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, body %s", rec.Code, rec.Body)
	}
	if len(svc.ops) != 1 || svc.ops[0] != "resolve" {
		t.Errorf("ops = %v", svc.ops)
	}
}

func TestAdminUnauthorizedWallet(t *testing.T) {
	svc := &fakeAdminService{err: domain.ErrUnauthorized}
	mux := adminMux(svc)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/admin/pause", nil))

	if rec.Code != http.StatusForbidden {
		t.Errorf("status = %d, want 403", rec.Code)
	}
}
