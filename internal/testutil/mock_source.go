// Package testutil provides testing utilities for the teamstats packages.
package testutil

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"time"
)

// MockResponse defines the behavior for one mocked team response.
type MockResponse struct {
	StatusCode int
	Body       string
	Headers    map[string]string
	Delay      time.Duration
}

// MockSource is a configurable mock of the sports data source.
// Teams are selected by the teamName query parameter.
type MockSource struct {
	server   *httptest.Server
	mu       sync.RWMutex
	handlers map[int]func(w http.ResponseWriter, r *http.Request)

	requestCount      int
	teamRequests      map[int]int
	lastRequestHeader http.Header
}

// NewMockSource creates and starts a new mock data source.
func NewMockSource() *MockSource {
	mock := &MockSource{
		handlers:     make(map[int]func(w http.ResponseWriter, r *http.Request)),
		teamRequests: make(map[int]int),
	}

	mock.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		team, err := strconv.Atoi(r.URL.Query().Get("teamName"))
		if err != nil {
			http.Error(w, `{"error": "missing teamName"}`, http.StatusBadRequest)
			return
		}

		mock.mu.Lock()
		mock.requestCount++
		mock.teamRequests[team]++
		mock.lastRequestHeader = r.Header.Clone()
		handler, exists := mock.handlers[team]
		mock.mu.Unlock()

		if exists {
			handler(w, r)
			return
		}

		mock.defaultHandler(w, r)
	}))

	return mock
}

// URL returns the base URL to configure a client with.
func (m *MockSource) URL() string {
	return m.server.URL + "/search/nfl/searchHandler"
}

// Close shuts down the mock server.
func (m *MockSource) Close() {
	m.server.Close()
}

// SetHandler sets a custom handler for one team.
func (m *MockSource) SetHandler(team int, handler func(w http.ResponseWriter, r *http.Request)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers[team] = handler
}

// SetResponse configures a fixed response for one team.
func (m *MockSource) SetResponse(team int, resp MockResponse) {
	m.SetHandler(team, func(w http.ResponseWriter, r *http.Request) {
		if resp.Delay > 0 {
			select {
			case <-time.After(resp.Delay):
			case <-r.Context().Done():
				return
			}
		}

		for key, value := range resp.Headers {
			w.Header().Set(key, value)
		}

		w.WriteHeader(resp.StatusCode)
		if resp.Body != "" {
			w.Write([]byte(resp.Body))
		}
	})
}

// SetPayload serves body with a 200 status for one team.
func (m *MockSource) SetPayload(team int, body string) {
	m.SetResponse(team, NewPayloadResponse(body))
}

// RequestCount returns the number of requests served.
func (m *MockSource) RequestCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.requestCount
}

// TeamRequestCount returns the number of requests served for one team.
func (m *MockSource) TeamRequestCount(team int) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.teamRequests[team]
}

// LastRequestHeader returns the headers of the most recent request.
func (m *MockSource) LastRequestHeader() http.Header {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.lastRequestHeader
}

// defaultHandler answers with an empty match list.
func (m *MockSource) defaultHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"matchUpStats": []}`))
}

// NewPayloadResponse creates a 200 OK JSON response.
func NewPayloadResponse(body string) MockResponse {
	return MockResponse{
		StatusCode: http.StatusOK,
		Body:       body,
		Headers: map[string]string{
			"Content-Type": "application/json; charset=utf-8",
		},
	}
}

// NewServerErrorResponse creates a 500 Internal Server Error response.
func NewServerErrorResponse() MockResponse {
	return MockResponse{
		StatusCode: http.StatusInternalServerError,
		Body:       `{"error": "Internal server error"}`,
		Headers: map[string]string{
			"Content-Type": "application/json; charset=utf-8",
		},
	}
}

// NewNotFoundResponse creates a 404 Not Found response.
func NewNotFoundResponse() MockResponse {
	return MockResponse{
		StatusCode: http.StatusNotFound,
		Body:       `{"error": "Unknown team"}`,
	}
}
