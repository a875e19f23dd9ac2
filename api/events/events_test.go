// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package events_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/stakeledger/api/events"
	"github.com/vechain/stakeledger/logdb"
	"github.com/vechain/stakeledger/test/datagen"
	"github.com/vechain/stakeledger/thor"
)

const defaultLogLimit uint64 = 10

var subject = datagen.RandAddress()

func initEventServer(t *testing.T, limit uint64) *httptest.Server {
	db, err := logdb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	w := db.NewWriter()
	for round := range uint64(5) {
		batch := []*logdb.Event{
			{Name: "Bond", Subject: subject, Data: []byte(`{"Round":1}`)},
			{Name: "Reward", Subject: datagen.RandAddress(), Data: []byte(`{}`)},
		}
		require.NoError(t, w.Write(round, batch))
	}
	require.NoError(t, w.Commit())

	router := mux.NewRouter()
	events.New(db, limit).Mount(router, "/logs/event")
	ts := httptest.NewServer(router)
	t.Cleanup(ts.Close)
	return ts
}

func httpPost(t *testing.T, url string, body any) ([]byte, int) {
	data, err := json.Marshal(body)
	require.NoError(t, err)
	res, err := http.Post(url, "application/x-www-form-urlencoded", bytes.NewReader(data)) //#nosec G107
	require.NoError(t, err)
	defer res.Body.Close()
	r, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	return r, res.StatusCode
}

func ptr[T any](v T) *T { return &v }

func TestEvents(t *testing.T) {
	ts := initEventServer(t, defaultLogLimit)

	t.Run("filter by subject", func(t *testing.T) {
		res, code := httpPost(t, ts.URL+"/logs/event", &events.Filter{
			CriteriaSet: []*events.Criteria{{Subject: &subject}},
			Range:       &events.Range{From: ptr(uint32(1)), To: ptr(uint32(3))},
		})
		require.Equal(t, http.StatusOK, code, string(res))

		var fes []*events.FilteredEvent
		require.NoError(t, json.Unmarshal(res, &fes))
		require.Len(t, fes, 3)
		for i, fe := range fes {
			assert.Equal(t, "Bond", fe.Name)
			assert.Equal(t, subject, fe.Subject)
			assert.Equal(t, uint32(i+1), fe.Round)
			assert.Equal(t, uint32(0), fe.Index)
			assert.JSONEq(t, `{"Round":1}`, string(fe.Data))
		}
	})

	t.Run("desc with pagination", func(t *testing.T) {
		res, code := httpPost(t, ts.URL+"/logs/event", &events.Filter{
			CriteriaSet: []*events.Criteria{{Name: ptr("Reward")}},
			Options:     &events.Options{Offset: 0, Limit: 2},
			Order:       logdb.DESC,
		})
		require.Equal(t, http.StatusOK, code, string(res))

		var fes []*events.FilteredEvent
		require.NoError(t, json.Unmarshal(res, &fes))
		require.Len(t, fes, 2)
		assert.Equal(t, uint32(4), fes[0].Round)
		assert.Equal(t, uint32(1), fes[0].Index)
		assert.Equal(t, uint32(3), fes[1].Round)
	})
}

func TestEvents_Limits(t *testing.T) {
	ts := initEventServer(t, 5)

	// ten events stored, five allowed without pagination
	res, code := httpPost(t, ts.URL+"/logs/event", &events.Filter{})
	assert.Equal(t, http.StatusForbidden, code, string(res))

	_, code = httpPost(t, ts.URL+"/logs/event", &events.Filter{Options: &events.Options{Limit: 6}})
	assert.Equal(t, http.StatusForbidden, code)

	res, code = httpPost(t, ts.URL+"/logs/event", &events.Filter{Options: &events.Options{Offset: 8, Limit: 5}})
	require.Equal(t, http.StatusOK, code, string(res))
	var fes []*events.FilteredEvent
	require.NoError(t, json.Unmarshal(res, &fes))
	assert.Len(t, fes, 2)
}

func TestEvents_BadRequest(t *testing.T) {
	ts := initEventServer(t, defaultLogLimit)

	tests := []struct {
		name string
		body any
	}{
		{"unknown field", map[string]any{"address": thor.Address{}.String()}},
		{"inverted range", &events.Filter{Range: &events.Range{From: ptr(uint32(3)), To: ptr(uint32(1))}}},
		{"null criteria", map[string]any{"criteriaSet": []any{nil}}},
		{"invalid order", &events.Filter{Order: "up"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, code := httpPost(t, ts.URL+"/logs/event", tt.body)
			assert.Equal(t, http.StatusBadRequest, code)
		})
	}
}
