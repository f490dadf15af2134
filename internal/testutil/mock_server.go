package testutil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"time"
)

// MockServer is a fake upstream catalog for end-to-end tests.
type MockServer struct {
	server       *httptest.Server
	responses    map[string]MockResponse
	requestCount int
	lastQuery    string
	mu           sync.Mutex
}

// MockResponse defines a mock response configuration.
type MockResponse struct {
	StatusCode int
	Body       interface{}
	Delay      time.Duration
	Headers    map[string]string
}

// NewMockServer creates a new mock server.
func NewMockServer() *MockServer {
	ms := &MockServer{
		responses: make(map[string]MockResponse),
	}
	ms.server = httptest.NewServer(http.HandlerFunc(ms.handler))
	return ms
}

// URL returns the mock server's base URL.
func (ms *MockServer) URL() string {
	return ms.server.URL
}

// Close closes the mock server.
func (ms *MockServer) Close() {
	ms.server.Close()
}

// SetResponse sets a mock response for a specific path.
func (ms *MockServer) SetResponse(path string, response MockResponse) {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	ms.responses[path] = response
}

// GetRequestCount returns the number of requests received.
func (ms *MockServer) GetRequestCount() int {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	return ms.requestCount
}

// LastQuery returns the raw query string of the most recent request.
func (ms *MockServer) LastQuery() string {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	return ms.lastQuery
}

func (ms *MockServer) handler(w http.ResponseWriter, r *http.Request) {
	ms.mu.Lock()
	ms.requestCount++
	ms.lastQuery = r.URL.RawQuery
	response, ok := ms.responses[r.URL.Path]
	ms.mu.Unlock()

	if !ok {
		http.NotFound(w, r)
		return
	}

	if response.Delay > 0 {
		select {
		case <-time.After(response.Delay):
		case <-r.Context().Done():
			return
		}
	}

	for key, value := range response.Headers {
		w.Header().Set(key, value)
	}
	if response.StatusCode == 0 {
		response.StatusCode = http.StatusOK
	}
	w.WriteHeader(response.StatusCode)

	if response.Body != nil {
		switch v := response.Body.(type) {
		case string:
			_, _ = w.Write([]byte(v))
		case []byte:
			_, _ = w.Write(v)
		default:
			_ = json.NewEncoder(w).Encode(response.Body)
		}
	}
}

// GoogleBooksVolumes returns a Google Books /volumes payload with one
// volume per title.
func GoogleBooksVolumes(titles ...string) map[string]interface{} {
	items := make([]map[string]interface{}, 0, len(titles))
	for i, title := range titles {
		items = append(items, map[string]interface{}{
			"id": "gb-" + string(rune('a'+i%26)),
			"volumeInfo": map[string]interface{}{
				"title":   title,
				"authors": []string{"Frank Herbert"},
				"industryIdentifiers": []map[string]string{
					{"type": "ISBN_13", "identifier": "9780441013593"},
				},
			},
		})
	}
	return map[string]interface{}{
		"kind":       "books#volumes",
		"totalItems": len(items),
		"items":      items,
	}
}

// MockErrorResponse creates an error response.
func MockErrorResponse(statusCode int, message string) MockResponse {
	return MockResponse{
		StatusCode: statusCode,
		Body:       map[string]interface{}{"error": map[string]interface{}{"message": message}},
	}
}
