// Package config reads the process configuration from command line
// flags and environment variables.
package config

import (
	"strings"
	"time"

	"github.com/namsral/flag"

	tlsconfig "gemini-pages/internal/config/tls"
)

// Config stores all the config options relevant to gemini-pages. It is
// read-only after LoadConfig and shared by every request goroutine.
type Config struct {
	General   General
	Serving   Serving
	Limits    Limits
	Log       Log
	TLS       TLS
	Listeners Listeners
}

// General groups settings that can not be categorized under another
// head.
type General struct {
	Hostname       string
	MetricsAddress string
	ShowVersion    bool
}

// Serving groups the filesystem serving options.
type Serving struct {
	RootDir              string
	RoutePattern         string
	IndexFilename        string
	TextExtensionPattern string
	ExclusionPatterns    []string
	CGITimeout           time.Duration
}

// Limits groups connection throttling settings.
type Limits struct {
	MaxConns               int
	RateLimitSourceIP      float64
	RateLimitSourceIPBurst int
}

// Log groups settings related to configuring logging.
type Log struct {
	Format  string
	Verbose bool
}

// TLS groups settings related to the TLS listener.
type TLS struct {
	CertFile        string
	KeyFile         string
	MinVersion      uint16
	MaxVersion      uint16
	InsecureCiphers bool
}

// Listeners carries the raw listen addresses. Addresses from
// ProxyV2Addresses expect a PROXY protocol v2 header on every accepted
// connection.
type Listeners struct {
	Addresses        []string
	ProxyV2Addresses []string
}

var (
	hostname        = flag.String("hostname", "localhost", "The hostname clients address this server with, exported to CGI programs")
	rootDir         = flag.String("root-dir", "/srv/gemini", "The directory content is served from")
	routePattern    = flag.String("route-pattern", "/(.*)", "The anchored path pattern the filesystem route is mounted on; its capture group selects the served path")
	indexFilename   = flag.String("index-filename", "", "The well-known filename served in place of a directory listing (default: index.gemini)")
	textExtPattern  = flag.String("text-extension-pattern", "", `The file name pattern classified as text/gemini (default: \.gemini$)`)
	cgiTimeout      = flag.Duration("cgi-timeout", 10*time.Second, "The maximum lifetime of a CGI process")
	maxConns        = flag.Int("max-conns", 0, "Limit on the number of concurrent connections across all listeners, 0 for no limit")
	metricsAddress  = flag.String("metrics-address", "", "The address to listen on for metrics requests")
	logFormat       = flag.String("log-format", "text", "The log output format: 'text' or 'json'")
	logVerbose      = flag.Bool("log-verbose", false, "Verbose logging")
	tlsCert         = flag.String("tls-cert", "", "The path to the TLS certificate served to clients")
	tlsKey          = flag.String("tls-key", "", "The path to the TLS private key")
	insecureCiphers = flag.Bool("insecure-ciphers", false, "Use default list of cipher suites, may contain insecure ones like 3DES and RC4")
	tlsMinVersion   = flag.String("tls-min-version", "tls1.2", tlsconfig.FlagUsage("min"))
	tlsMaxVersion   = flag.String("tls-max-version", "", tlsconfig.FlagUsage("max"))
	showVersion     = flag.Bool("version", false, "Show version")

	rateLimitSourceIP      = flag.Float64("rate-limit-source-ip", 0.0, "Rate limit new connections per second from a single IP, 0 means disabled")
	rateLimitSourceIPBurst = flag.Int("rate-limit-source-ip-burst", 20, "Rate limit new connections from a single IP, maximum burst allowed")

	// See LoadConfig
	listenAddr        MultiStringFlag
	listenProxyV2Addr MultiStringFlag
	excludePattern    MultiStringFlag
)

func init() {
	flag.Var(&listenAddr, "listen-addr", "The address(es) to listen on for requests")
	flag.Var(&listenProxyV2Addr, "listen-proxy-v2-addr", "The address(es) to listen on for requests wrapped in a PROXY protocol v2 header")
	flag.Var(&excludePattern, "exclude-pattern", "Pattern(s) vetoing a single path segment regardless of filesystem state (default: ^\\.)")
}

func loadConfig() *Config {
	return &Config{
		General: General{
			Hostname:       strings.ToLower(*hostname),
			MetricsAddress: *metricsAddress,
			ShowVersion:    *showVersion,
		},
		Serving: Serving{
			RootDir:              *rootDir,
			RoutePattern:         *routePattern,
			IndexFilename:        *indexFilename,
			TextExtensionPattern: *textExtPattern,
			ExclusionPatterns:    excludePattern.Split(),
			CGITimeout:           *cgiTimeout,
		},
		Limits: Limits{
			MaxConns:               *maxConns,
			RateLimitSourceIP:      *rateLimitSourceIP,
			RateLimitSourceIPBurst: *rateLimitSourceIPBurst,
		},
		Log: Log{
			Format:  *logFormat,
			Verbose: *logVerbose,
		},
		TLS: TLS{
			CertFile:        *tlsCert,
			KeyFile:         *tlsKey,
			MinVersion:      tlsconfig.AllTLSVersions[*tlsMinVersion],
			MaxVersion:      tlsconfig.AllTLSVersions[*tlsMaxVersion],
			InsecureCiphers: *insecureCiphers,
		},
		Listeners: Listeners{
			Addresses:        listenAddr.Split(),
			ProxyV2Addresses: listenProxyV2Addr.Split(),
		},
	}
}

// LoadConfig parses the command line arguments and returns the validated
// configuration.
func LoadConfig() (*Config, error) {
	flag.Parse()

	config := loadConfig()

	if err := validateConfig(config); err != nil {
		return nil, err
	}

	return config, nil
}
