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


package request

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gojek/heimdall/v7"
	"github.com/opentracing-contrib/go-stdlib/nethttp"
	"github.com/opentracing/opentracing-go"
	"github.com/sirupsen/logrus"

	"github.com/ritmofit/cupos/pkg/logger"
)

// Request is an outgoing HTTP call traced and logged under a method name
type Request struct {
	ctx     context.Context
	request *http.Request
}

// NewRequest prepares a request; an empty body sends no payload
func NewRequest(ctx context.Context, method, url string, body []byte) (*Request, error) {
	var reader io.Reader
	if len(body) > 0 {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to build %s request to %s: %w", method, url, err)
	}

	if id := logger.RequestID(ctx); id != "" {
		req.Header.Set(logger.RequestIDHeader, id)
	}

	return &Request{ctx: ctx, request: req}, nil
}

func (r *Request) SetHeaders(headers map[string]string) {
	for k, v := range headers {
		r.request.Header.Set(k, v)
	}
}

// MakeRequest sends the request through client and returns the body and status code.
// The status code is 0 when no response was received.
func (r *Request) MakeRequest(client heimdall.Doer, methodName, service string) ([]byte, int, error) {
	req, tracer := nethttp.TraceRequest(opentracing.GlobalTracer(), r.request,
		nethttp.OperationName(methodName),
		nethttp.ComponentName(service),
	)
	defer tracer.Finish()

	log := logger.Logger(r.ctx).WithFields(logrus.Fields{
		"service": service,
		"method":  methodName,
		"url":     req.URL.String(),
	})

	start := time.Now()
	resp, err := client.Do(req)

	var (
		body       []byte
		statusCode int
	)
	if resp != nil {
		defer resp.Body.Close()
		statusCode = resp.StatusCode
		var readErr error
		body, readErr = io.ReadAll(resp.Body)
		if readErr != nil && err == nil {
			err = fmt.Errorf("failed to read response body: %w", readErr)
		}
	}

	log = log.WithFields(logrus.Fields{
		"status_code": statusCode,
		"duration_ms": time.Since(start).Milliseconds(),
	})
	if err != nil {
		log.WithError(err).Warn("outgoing request failed")
		return body, statusCode, fmt.Errorf("%s request to %s failed: %w", methodName, service, err)
	}

	log.Debug("outgoing request completed")
	return body, statusCode, nil
}
