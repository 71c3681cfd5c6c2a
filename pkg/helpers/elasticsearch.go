package helpers

import (
	"crypto/tls"
	"net"
	"net/http"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
)

// ESOptions configures the user directory cluster connection.
type ESOptions struct {
	Addrs    []string
	Username string
	Password string
	// RequestTimeout bounds the wait for response headers; zero means 5s.
	RequestTimeout time.Duration
}

// NewESClient returns a client for the user directory. Indexing is best effort,
// so retries are limited and the transport gives up quickly.
func NewESClient(o ESOptions) (*elasticsearch.Client, error) {
	timeout := o.RequestTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return elasticsearch.NewClient(elasticsearch.Config{
		Addresses:  o.Addrs,
		Username:   o.Username,
		Password:   o.Password,
		MaxRetries: 1,
		Transport: &http.Transport{
			MaxIdleConnsPerHost:   4,
			ResponseHeaderTimeout: timeout,
			TLSClientConfig:       &tls.Config{MinVersion: tls.VersionTLS12},
			DialContext:           (&net.Dialer{Timeout: timeout}).DialContext,
		},
	})
}
