package pokedex

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/skratchdot/open-golang/open"
)

// Server is the local HTTP interface: the same lookups as the CLI, but as
// JSON and image endpoints on a localhost port.
type Server struct {
	client     *Client
	translator *Translator
}

func NewServer(client *Client, translator *Translator) *Server {
	return &Server{client: client, translator: translator}
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Get("/", s.handleIndex)
	r.Get("/healthz", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())
	r.Route("/api/pokemon/{name}", func(r chi.Router) {
		r.Use(timeRoute("pokemon"))
		r.Get("/", s.handlePokemon)
		r.Get("/sprite", s.handleSprite)
	})
	return r
}

// Serve binds the configured address (an ephemeral port by default), serves
// until interrupted, and optionally opens the system browser on the bound
// address. It returns 0 on a clean shutdown.
func (s *Server) Serve(addr string, openBrowser bool) int {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		logger.Error().Err(err).Str("addr", addr).Msg("unable to listen")
		return 1
	}
	srv := http.Server{Handler: s.routes()}
	go func() {
		if err := srv.Serve(tcpKeepAliveListener{ln.(*net.TCPListener)}); err != nil &&
			!errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("server failed")
		}
	}()
	boundAddr := ln.Addr().String()
	logger.Info().Str("addr", boundAddr).Msg("serving")
	fmt.Printf("%s http://%s/\n", s.translator.Get("serve_listening"), boundAddr)
	if openBrowser {
		if err := open.Run(fmt.Sprintf("http://%s/", boundAddr)); err != nil {
			logger.Warn().Err(err).Msg("unable to open browser")
		}
	}

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt)
	<-interrupt
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("shutdown failed")
		return 1
	}
	return 0
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"name":   "pokedex",
		"routes": []string{"/api/pokemon/{name}", "/api/pokemon/{name}/sprite", "/healthz", "/metrics"},
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handlePokemon(w http.ResponseWriter, r *http.Request) {
	name, err := SanitizeName(chi.URLParam(r, "name"))
	if err != nil {
		writeError(w, http.StatusBadRequest, s.translator.Get("err_invalid_name"))
		return
	}
	_, raw, err := s.client.Lookup(r.Context(), name)
	if err != nil {
		s.writeLookupError(w, name, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(raw)
}

func (s *Server) handleSprite(w http.ResponseWriter, r *http.Request) {
	name, err := SanitizeName(chi.URLParam(r, "name"))
	if err != nil {
		writeError(w, http.StatusBadRequest, s.translator.Get("err_invalid_name"))
		return
	}
	p, _, err := s.client.Lookup(r.Context(), name)
	if err != nil {
		s.writeLookupError(w, name, err)
		return
	}
	img, err := s.client.Sprite(r.Context(), p)
	if err != nil {
		writeError(w, http.StatusBadGateway, s.translator.Get("err_network"))
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(img)
}

func (s *Server) writeLookupError(w http.ResponseWriter, name string, err error) {
	if errors.Is(err, ErrNotFound) {
		writeError(w, http.StatusNotFound, fmt.Sprintf("%s: %s", s.translator.Get("err_not_found"), name))
		return
	}
	logger.Error().Err(err).Str("name", name).Msg("lookup failed")
	writeError(w, http.StatusBadGateway, s.translator.Get("err_network"))
}

func writeJSON(w http.ResponseWriter, code int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}

// timeRoute records the request duration histogram for a route.
func timeRoute(route string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			next.ServeHTTP(w, r)
			requestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
		})
	}
}

// tcpKeepAliveListener keeps accepted connections alive across the long idle
// stretches a browser tab produces.
type tcpKeepAliveListener struct {
	*net.TCPListener
}

func (ln tcpKeepAliveListener) Accept() (net.Conn, error) {
	tc, err := ln.AcceptTCP()
	if err != nil {
		return nil, err
	}
	_ = tc.SetKeepAlive(true)
	_ = tc.SetKeepAlivePeriod(3 * time.Minute)
	return tc, nil
}
