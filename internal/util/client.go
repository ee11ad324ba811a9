package util

import (
	"net/http"
	"net/url"
	"time"
)

// NewHTTPClient builds an HTTP client with the given timeout and optional
// per-scheme proxy overrides. With no overrides the default transport is
// used, which honors the standard proxy environment variables.
func NewHTTPClient(timeout time.Duration, httpProxy, httpsProxy string) *http.Client {
	client := &http.Client{Timeout: timeout}
	if httpProxy == "" && httpsProxy == "" {
		return client
	}
	client.Transport = &http.Transport{Proxy: proxySelector(httpProxy, httpsProxy)}
	return client
}

func proxySelector(httpProxy, httpsProxy string) func(*http.Request) (*url.URL, error) {
	return func(req *http.Request) (*url.URL, error) {
		target := httpProxy
		if req.URL.Scheme == "https" && httpsProxy != "" {
			target = httpsProxy
		}
		if target == "" {
			return http.ProxyFromEnvironment(req)
		}
		return url.Parse(target)
	}
}
