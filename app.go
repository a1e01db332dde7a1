package main

import (
	"crypto/tls"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"gemini-pages/internal/cgi"
	cfg "gemini-pages/internal/config"
	tlsconfig "gemini-pages/internal/config/tls"
	"gemini-pages/internal/gemini"
	"gemini-pages/internal/healthcheck"
	"gemini-pages/internal/logging"
	"gemini-pages/internal/netutil"
	"gemini-pages/internal/ratelimiter"
	"gemini-pages/internal/routing"
	"gemini-pages/internal/serving/disk"
	"gemini-pages/metrics"
)

// connTimeout bounds one whole request/response exchange; there is no
// finer grained timeout inside the handlers.
const connTimeout = 30 * time.Second

type theApp struct {
	config      *cfg.Config
	router      *routing.Router
	tlsConfig   *tls.Config
	limiter     *netutil.Limiter
	rateLimiter *ratelimiter.RateLimiter
}

func (a *theApp) Run() error {
	var eg errgroup.Group

	for _, addr := range a.config.Listeners.Addresses {
		addr := addr
		eg.Go(func() error {
			return a.listenAndServe(listenerConfig{addr: addr})
		})
	}

	for _, addr := range a.config.Listeners.ProxyV2Addresses {
		addr := addr
		eg.Go(func() error {
			return a.listenAndServe(listenerConfig{addr: addr, isProxyV2: true})
		})
	}

	if a.config.General.MetricsAddress != "" {
		eg.Go(func() error {
			return a.listenMetrics(a.config.General.MetricsAddress)
		})
	}

	return eg.Wait()
}

func (a *theApp) serveListener(l net.Listener) error {
	defer l.Close()

	for {
		conn, err := l.Accept()
		if err != nil {
			if ne, ok := err.(net.Error); ok && ne.Temporary() {
				continue
			}
			return err
		}

		go a.handleConn(conn)
	}
}

func (a *theApp) handleConn(conn net.Conn) {
	defer conn.Close()

	if a.rateLimiter != nil && !a.rateLimiter.SourceIPAllowed(conn.RemoteAddr().String()) {
		// Dropping before the handshake would leave the client without
		// a protocol level explanation.
		if tlsConn, ok := conn.(*tls.Conn); ok && tlsConn.Handshake() != nil {
			return
		}
		gemini.Failure(gemini.StatusSlowDown, "Slow down").WriteTo(conn)
		return
	}

	conn.SetDeadline(time.Now().Add(connTimeout))

	started := time.Now()

	req, err := gemini.ReadRequest(conn)
	if err != nil {
		log.WithError(err).WithField("remote_addr", conn.RemoteAddr().String()).Debug("rejecting request")
		gemini.Failure(gemini.StatusBadRequest, "Bad request").WriteTo(conn)
		return
	}

	req.RemoteAddr = conn.RemoteAddr().String()
	req.Identity = clientIdentity(conn)

	resp := a.router.Route(req)

	if _, err := resp.WriteTo(conn); err != nil {
		logging.LogRequest(req).WithError(err).Debug("failed to write response")
		return
	}

	duration := time.Since(started)
	metrics.RequestDuration.Observe(duration.Seconds())
	logging.LogAccess(req, resp, duration)
}

// clientIdentity extracts the subject common name of the client
// certificate, when one was offered during the handshake.
func clientIdentity(conn net.Conn) string {
	tlsConn, ok := conn.(*tls.Conn)
	if !ok {
		return ""
	}

	state := tlsConn.ConnectionState()
	if len(state.PeerCertificates) == 0 {
		return ""
	}

	return state.PeerCertificates[0].Subject.CommonName
}

func (a *theApp) listenMetrics(addr string) error {
	log.WithField("addr", addr).Info("metrics listener started")

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/-/status", healthcheck.Handler())

	server := &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	return server.ListenAndServe()
}

// newApp wires the serving driver, CGI executor, route table and
// listener plumbing from the validated configuration.
func newApp(config *cfg.Config) (*theApp, error) {
	hostname, port := hostnameAndPort(config)

	executor := cgi.New(hostname, port, config.Serving.CGITimeout)

	driver, err := disk.New(disk.Config{
		RootDir:              config.Serving.RootDir,
		IndexFilename:        config.Serving.IndexFilename,
		TextExtensionPattern: config.Serving.TextExtensionPattern,
		ExclusionPatterns:    config.Serving.ExclusionPatterns,
	}, executor)
	if err != nil {
		return nil, err
	}

	router := &routing.Router{}
	if err := router.Add(config.Serving.RoutePattern, driver); err != nil {
		return nil, err
	}

	tlsConfig, err := tlsconfig.Create(
		config.TLS.CertFile,
		config.TLS.KeyFile,
		config.TLS.InsecureCiphers,
		config.TLS.MinVersion,
		config.TLS.MaxVersion,
	)
	if err != nil {
		return nil, err
	}

	a := &theApp{
		config:    config,
		router:    router,
		tlsConfig: tlsConfig,
	}

	if config.Limits.MaxConns > 0 {
		a.limiter = netutil.NewLimiter(
			config.Limits.MaxConns,
			metrics.MaxConns,
			metrics.ConcurrentConns,
			metrics.WaitingConns,
		)
	}

	if config.Limits.RateLimitSourceIP > 0 {
		a.rateLimiter = ratelimiter.New(
			ratelimiter.WithSourceIPLimitPerSecond(config.Limits.RateLimitSourceIP),
			ratelimiter.WithSourceIPBurstSize(config.Limits.RateLimitSourceIPBurst),
		)
	}

	return a, nil
}

func runApp(config *cfg.Config) error {
	a, err := newApp(config)
	if err != nil {
		return err
	}

	return a.Run()
}
