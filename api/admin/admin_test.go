// Copyright (c) 2024 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package admin

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/stakeledger/api/admin/apilogs"
	"github.com/vechain/stakeledger/api/admin/loglevel"
	"github.com/vechain/stakeledger/health"
)

type testServer struct {
	logLevel *slog.LevelVar
	apiLogs  *atomic.Bool
	health   *health.Health
	handler  http.HandlerFunc
}

func newTestServer() *testServer {
	s := &testServer{
		logLevel: new(slog.LevelVar),
		apiLogs:  new(atomic.Bool),
		health:   health.New(time.Second),
	}
	s.logLevel.Set(slog.LevelInfo)
	s.handler = New(s.logLevel, s.health, s.apiLogs)
	return s
}

func (s *testServer) do(t *testing.T, method, path, body string) (*httptest.ResponseRecorder, []byte) {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rr := httptest.NewRecorder()
	s.handler(rr, req)
	return rr, rr.Body.Bytes()
}

func TestLogLevel(t *testing.T) {
	s := newTestServer()

	tests := []struct {
		name           string
		method         string
		body           string
		expectedStatus int
		expectedLevel  string
	}{
		{"get", http.MethodGet, "", http.StatusOK, "INFO"},
		{"set debug", http.MethodPost, `{"level":"debug"}`, http.StatusOK, "DEBUG"},
		{"set crit", http.MethodPost, `{"level":"crit"}`, http.StatusOK, "ERROR+4"},
		{"invalid level", http.MethodPost, `{"level":"invalid_body"}`, http.StatusBadRequest, ""},
		{"invalid body", http.MethodPost, `{"level":`, http.StatusBadRequest, ""},
		{"unknown field", http.MethodPost, `{"lvl":"info"}`, http.StatusBadRequest, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr, body := s.do(t, tt.method, "/admin/loglevel", tt.body)
			assert.Equal(t, tt.expectedStatus, rr.Code)
			if tt.expectedLevel == "" {
				return
			}
			var res loglevel.Response
			require.NoError(t, json.Unmarshal(body, &res))
			assert.Equal(t, tt.expectedLevel, res.CurrentLevel)
		})
	}
	assert.Equal(t, slog.Level(12), s.logLevel.Level())
}

func TestAPILogs(t *testing.T) {
	s := newTestServer()

	rr, body := s.do(t, http.MethodGet, "/admin/apilogs", "")
	assert.Equal(t, http.StatusOK, rr.Code)
	var res apilogs.LogStatus
	require.NoError(t, json.Unmarshal(body, &res))
	assert.False(t, res.Enabled)

	rr, body = s.do(t, http.MethodPost, "/admin/apilogs", `{"enabled":true}`)
	assert.Equal(t, http.StatusOK, rr.Code)
	require.NoError(t, json.Unmarshal(body, &res))
	assert.True(t, res.Enabled)
	assert.True(t, s.apiLogs.Load())

	rr, _ = s.do(t, http.MethodPost, "/admin/apilogs", `not json`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.True(t, s.apiLogs.Load())
}

func TestHealth(t *testing.T) {
	s := newTestServer()

	rr, body := s.do(t, http.MethodGet, "/admin/health", "")
	assert.Equal(t, http.StatusOK, rr.Code)
	var status health.Status
	require.NoError(t, json.Unmarshal(body, &status))
	assert.True(t, status.Healthy)
	assert.False(t, status.BlockProduction)

	// producing blocks but no round has been initialized yet
	s.health.BlockProduction(true)
	rr, body = s.do(t, http.MethodGet, "/admin/health", "")
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
	require.NoError(t, json.Unmarshal(body, &status))
	assert.False(t, status.Healthy)

	s.health.RoundInitialized(4)
	rr, body = s.do(t, http.MethodGet, "/admin/health", "")
	assert.Equal(t, http.StatusOK, rr.Code)
	require.NoError(t, json.Unmarshal(body, &status))
	assert.Equal(t, uint64(4), status.RoundProgress.Round)
}
