// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/vechain/stakeledger/log"
	"github.com/vechain/stakeledger/metrics"
)

// httpServer is a listening server that stops when its group context is done.
type httpServer struct {
	name     string
	listener net.Listener
	srv      *http.Server
}

func listen(name, addr string, handler http.Handler) (*httpServer, error) {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, errors.Wrapf(err, "listen %s addr [%v]", name, addr)
	}
	return &httpServer{
		name:     name,
		listener: listener,
		srv:      &http.Server{Handler: handler, ReadHeaderTimeout: time.Second, ReadTimeout: 5 * time.Second},
	}, nil
}

func (s *httpServer) URL(path string) string {
	return "http://" + s.listener.Addr().String() + path
}

// Run serves in g until ctx is done.
func (s *httpServer) Run(ctx context.Context, g *errgroup.Group) {
	g.Go(func() error {
		if err := s.srv.Serve(s.listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return errors.Wrapf(err, "%s server", s.name)
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.srv.Shutdown(shutdownCtx); err != nil {
			log.Warn("server shutdown", "name", s.name, "err", err)
			return s.srv.Close()
		}
		return nil
	})
}

func newAPIServer(addr string, handler http.Handler, timeout time.Duration) (*httpServer, error) {
	if timeout > 0 {
		handler = http.TimeoutHandler(handler, timeout, `{"error":"request timeout"}`)
	}
	return listen("api", addr, handler)
}

func newAdminServer(addr string, handler http.Handler) (*httpServer, error) {
	return listen("admin", addr, handler)
}

func newMetricsServer(addr string) (*httpServer, error) {
	router := mux.NewRouter()
	router.PathPrefix("/metrics").Handler(metrics.HTTPHandler())
	return listen("metrics", addr, handlers.CompressHandler(router))
}
