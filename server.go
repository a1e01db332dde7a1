package main

import (
	"crypto/tls"
	"net"
	"strconv"

	proxyproto "github.com/pires/go-proxyproto"
	log "github.com/sirupsen/logrus"

	cfg "gemini-pages/internal/config"
	"gemini-pages/internal/netutil"
)

// defaultPort is the well-known Gemini port, assumed when a listen
// address does not carry one.
const defaultPort = 1965

type listenerConfig struct {
	addr      string
	isProxyV2 bool
}

func (a *theApp) listenAndServe(config listenerConfig) error {
	l, err := net.Listen("tcp", config.addr)
	if err != nil {
		return err
	}

	if a.limiter != nil {
		l = netutil.SharedLimitListener(l, a.limiter)
	}

	if config.isProxyV2 {
		l = &proxyproto.Listener{
			Listener: l,
			Policy: func(upstream net.Addr) (proxyproto.Policy, error) {
				return proxyproto.REQUIRE, nil
			},
		}
	}

	l = tls.NewListener(l, a.tlsConfig)

	log.WithFields(log.Fields{
		"addr":     config.addr,
		"proxy_v2": config.isProxyV2,
	}).Info("listener started")

	return a.serveListener(l)
}

// hostnameAndPort derives the identity exported to CGI programs: the
// configured hostname plus the port of the first listen address.
func hostnameAndPort(config *cfg.Config) (string, int) {
	addresses := config.Listeners.Addresses
	if len(addresses) == 0 {
		addresses = config.Listeners.ProxyV2Addresses
	}

	port := defaultPort
	if len(addresses) > 0 {
		if _, p, err := net.SplitHostPort(addresses[0]); err == nil {
			if parsed, err := strconv.Atoi(p); err == nil {
				port = parsed
			}
		}
	}

	return config.General.Hostname, port
}
