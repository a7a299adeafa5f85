/*
Copyright 2025.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/


package httpclient

import (
	"crypto/tls"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gojek/heimdall/v7"
	"github.com/gojek/heimdall/v7/hystrix"
	"github.com/opentracing-contrib/go-stdlib/nethttp"
)

// ConnectionPoolConfig tunes the transport shared by every request of a client
type ConnectionPoolConfig struct {
	Timeout            time.Duration `mapstructure:"timeout"`
	KeepAliveTimeout   time.Duration `mapstructure:"keepAliveTimeout"`
	MaxIdleConnections int           `mapstructure:"maxIdleConnections"`
	IdleConnTimeout    time.Duration `mapstructure:"idleConnTimeout"`
}

// HystrixResiliencyConfig configures the circuit breaker wrapped around a client
type HystrixResiliencyConfig struct {
	MaxConcurrentRequests  int           `mapstructure:"maxConcurrentRequests"`
	RequestVolumeThreshold int           `mapstructure:"requestVolumeThreshold"`
	ErrorPercentThreshold  int           `mapstructure:"errorPercentThreshold"`
	SleepWindow            time.Duration `mapstructure:"sleepWindow"`
	Timeout                time.Duration `mapstructure:"timeout"`
}

const (
	defaultTimeout            = 10 * time.Second
	defaultKeepAlive          = 30 * time.Second
	defaultMaxIdleConnections = 10
	defaultIdleConnTimeout    = 90 * time.Second
	defaultSleepWindow        = 5 * time.Second
	defaultErrorPercent       = 50
	defaultMaxConcurrent      = 100
	defaultVolumeThreshold    = 20
)

func (c ConnectionPoolConfig) withDefaults() ConnectionPoolConfig {
	if c.Timeout <= 0 {
		c.Timeout = defaultTimeout
	}
	if c.KeepAliveTimeout <= 0 {
		c.KeepAliveTimeout = defaultKeepAlive
	}
	if c.MaxIdleConnections <= 0 {
		c.MaxIdleConnections = defaultMaxIdleConnections
	}
	if c.IdleConnTimeout <= 0 {
		c.IdleConnTimeout = defaultIdleConnTimeout
	}
	return c
}

func (c HystrixResiliencyConfig) withDefaults(httpTimeout time.Duration) HystrixResiliencyConfig {
	if c.MaxConcurrentRequests <= 0 {
		c.MaxConcurrentRequests = defaultMaxConcurrent
	}
	if c.RequestVolumeThreshold <= 0 {
		c.RequestVolumeThreshold = defaultVolumeThreshold
	}
	if c.ErrorPercentThreshold <= 0 {
		c.ErrorPercentThreshold = defaultErrorPercent
	}
	if c.SleepWindow <= 0 {
		c.SleepWindow = defaultSleepWindow
	}
	if c.Timeout <= 0 {
		c.Timeout = httpTimeout
	}
	return c
}

// InitializeClient builds a hystrix-backed heimdall client named after the service it talks to.
// Every client gets its own circuit, keyed by name.
func InitializeClient(
	name string,
	poolConfig ConnectionPoolConfig,
	hystrixConfig HystrixResiliencyConfig,
	retrier heimdall.Retriable,
	retryCount int,
	tlsConfig *tls.Config,
) (heimdall.Doer, error) {
	if name == "" {
		return nil, fmt.Errorf("http client name is required")
	}
	if retryCount < 0 {
		return nil, fmt.Errorf("retry count must not be negative: %d", retryCount)
	}

	poolConfig = poolConfig.withDefaults()
	hystrixConfig = hystrixConfig.withDefaults(poolConfig.Timeout)

	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   poolConfig.Timeout,
			KeepAlive: poolConfig.KeepAliveTimeout,
		}).DialContext,
		MaxIdleConns:        poolConfig.MaxIdleConnections,
		MaxIdleConnsPerHost: poolConfig.MaxIdleConnections,
		IdleConnTimeout:     poolConfig.IdleConnTimeout,
		TLSClientConfig:     tlsConfig,
	}

	httpClient := &http.Client{
		Timeout:   poolConfig.Timeout,
		Transport: &nethttp.Transport{RoundTripper: transport},
	}

	opts := []hystrix.Option{
		hystrix.WithHTTPClient(httpClient),
		hystrix.WithHTTPTimeout(poolConfig.Timeout),
		hystrix.WithCommandName(name),
		hystrix.WithHystrixTimeout(hystrixConfig.Timeout),
		hystrix.WithMaxConcurrentRequests(hystrixConfig.MaxConcurrentRequests),
		hystrix.WithRequestVolumeThreshold(hystrixConfig.RequestVolumeThreshold),
		hystrix.WithErrorPercentThreshold(hystrixConfig.ErrorPercentThreshold),
		hystrix.WithSleepWindow(int(hystrixConfig.SleepWindow / time.Millisecond)),
		hystrix.WithRetryCount(retryCount),
	}
	if retrier != nil {
		opts = append(opts, hystrix.WithRetrier(retrier))
	}

	return hystrix.NewClient(opts...), nil
}
