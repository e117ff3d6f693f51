// Package restapi implements the wallet-facing HTTP/JSON API: the set of
// POST endpoints a light wallet uses to register, scan and spend against
// an account, per the backend's public protocol.
package restapi

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/cryptonote-lws/lws/internal/accountstore"
	"github.com/cryptonote-lws/lws/internal/netparams"
	"github.com/cryptonote-lws/lws/internal/rpcclient"
	"github.com/cryptonote-lws/lws/pkg/logging"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/google/uuid"
)

// requestIDHeader carries the per-request correlation id back to the
// caller, the same id every log line for that request is tagged with.
const requestIDHeader = "X-Request-Id"

// defaultBodyLimit bounds every request body except the ones explicitly
// overridden below; small JSON credential payloads never need more.
const defaultBodyLimit = 2 << 10 // 2 KiB

// rawTxBodyLimit is the body limit for /submit_raw_tx, the one endpoint
// that carries a binary blob rather than a handful of hex strings.
const rawTxBodyLimit = 50 << 10 // 50 KiB

// Config controls which optional endpoints are exposed, mirroring the
// original daemon's per-endpoint enable/disable flags, and the request
// timeout shared by every endpoint. Body-size limits are the fixed
// defaultBodyLimit and rawTxBodyLimit constants.
type Config struct {
	Addr string

	DisableLogin          bool
	DisableImportRequest   bool
	DisableGetRandomOuts   bool
	DisableSubmitRawTx     bool

	RequestTimeout time.Duration
}

// Server answers the light-wallet HTTP API against one account store and
// one daemon RPC client.
type Server struct {
	store  *accountstore.AccountStore
	rpc    *rpcclient.Client
	params *netparams.Params
	log    *logging.Logger
	cfg    Config

	httpServer *http.Server
	listener   net.Listener
}

// New builds a Server. It does not start listening; call Start for that.
func New(store *accountstore.AccountStore, rpc *rpcclient.Client, params *netparams.Params, cfg Config) *Server {
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 20 * time.Second
	}
	return &Server{
		store:  store,
		rpc:    rpc,
		params: params,
		log:    logging.GetDefault().Component("restapi"),
		cfg:    cfg,
	}
}

func (s *Server) router() http.Handler {
	r := chi.NewRouter()
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodPost},
		AllowedHeaders: []string{"Content-Type"},
		MaxAge:         300,
	}))
	r.Use(s.withRequestID)

	r.Get("/health", s.handleHealth)

	route := func(path string, limit int64, disabled bool, handler http.HandlerFunc) {
		if disabled {
			r.Post(path, s.handleDisabled)
			return
		}
		r.Post(path, s.limitBody(limit, s.withTimeout(handler)))
	}

	route("/login", defaultBodyLimit, s.cfg.DisableLogin, s.handleLogin)
	route("/get_address_info", defaultBodyLimit, false, s.handleAddressInfo)
	route("/get_address_txs", defaultBodyLimit, false, s.handleAddressTxs)
	route("/get_unspent_outs", defaultBodyLimit, false, s.handleUnspentOuts)
	route("/get_random_outs", defaultBodyLimit, s.cfg.DisableGetRandomOuts, s.handleRandomOuts)
	route("/import_request", defaultBodyLimit, s.cfg.DisableImportRequest, s.handleImportRequest)
	route("/submit_raw_tx", rawTxBodyLimit, s.cfg.DisableSubmitRawTx, s.handleSubmitRawTx)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, newStatusError(http.StatusNotFound, "unknown endpoint"))
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, newStatusError(http.StatusMethodNotAllowed, "method not allowed"))
	})

	return r
}

func (s *Server) limitBody(max int64, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, max)
		next(w, r)
	}
}

// withRequestID tags every request with a correlation id, echoed back on
// the response header and attached to the request-received log line.
func (s *Server) withRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := uuid.NewString()
		w.Header().Set(requestIDHeader, id)
		s.log.With("request_id", id, "path", r.URL.Path).Debug("request received")
		next.ServeHTTP(w, r)
	})
}

func (s *Server) withTimeout(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), s.cfg.RequestTimeout)
		defer cancel()
		next(w, r.WithContext(ctx))
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	top, err := s.store.GetChainSync()
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "chain_height": uint64(top), "network": s.params.Name})
}

func (s *Server) handleDisabled(w http.ResponseWriter, r *http.Request) {
	writeError(w, newStatusError(http.StatusNotImplemented, "endpoint disabled"))
}

// Start begins serving on cfg.Addr in the background.
func (s *Server) Start() error {
	listener, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return err
	}
	s.listener = listener

	s.httpServer = &http.Server{
		Handler:      s.router(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	go func() {
		if err := s.httpServer.Serve(listener); err != nil && err != http.ErrServerClosed {
			s.log.Error("rest server stopped", "error", err)
		}
	}()

	s.log.Info("rest server started", "addr", s.cfg.Addr)
	return nil
}

// Stop gracefully shuts the server down.
func (s *Server) Stop() error {
	if s.httpServer == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.httpServer.Shutdown(ctx)
}
