package customHttpClient

import (
	"net/http"
	"sync"

	"github.com/akolanti/TenderExtract/internal/config"
)

var customTransport = &http.Transport{
	Proxy:               http.ProxyFromEnvironment,
	MaxIdleConns:        config.MaxIdleConns,
	MaxIdleConnsPerHost: config.MaxIdleConnsPerHost,
	IdleConnTimeout:     config.IdleConnTimeout,
	ForceAttemptHTTP2:   true,
}

var (
	sharedClient *http.Client
	once         sync.Once
)

// Client returns the pooled client every model SDK is built on, so chunks
// of one document reuse connections instead of dialing per call.
// Timeouts are per request through the context.
func Client() *http.Client {
	once.Do(func() {
		sharedClient = &http.Client{Transport: customTransport}
	})
	return sharedClient
}
