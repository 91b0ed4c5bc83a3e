package server

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/greenloop-ai/ecoscan/internal/config"
	"github.com/greenloop-ai/ecoscan/pkg/ecoscan"
)

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{Host: "127.0.0.1", Port: 8000, ShutdownTimeout: time.Second},
		Model:  config.ModelConfig{Backend: "stub", Path: "testdata/model.onnx", Workers: 2},
		Cache: config.CacheConfig{
			SweepInterval:   30 * time.Second,
			EvictionTTL:     10 * time.Minute,
			ReclaimInterval: time.Minute,
		},
	}
}

func newTestServer(t *testing.T) *Server {
	t.Helper()
	cfg := testConfig()
	svc, err := ecoscan.New(cfg)
	if err != nil {
		t.Fatalf("ecoscan.New: %v", err)
	}
	t.Cleanup(func() { svc.Close() })
	return New(svc, cfg, zap.NewNop())
}

func testImage(t *testing.T) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, 128, 96))
	for y := 0; y < 96; y++ {
		for x := 0; x < 128; x++ {
			img.Set(x, y, color.NRGBA{R: uint8(2 * x), G: uint8(2 * y), B: 60, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func do(t *testing.T, s *Server, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	return w
}

func decodeJSON(t *testing.T, w *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), v); err != nil {
		t.Fatalf("decode response %q: %v", w.Body.String(), err)
	}
}

func TestRootAndVersion(t *testing.T) {
	s := newTestServer(t)

	w := do(t, s, httptest.NewRequest("GET", "/", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("GET /: %d", w.Code)
	}
	var root map[string]string
	decodeJSON(t, w, &root)
	if root["name"] != "ecoscan" || root["version"] != Version {
		t.Errorf("root = %v", root)
	}

	w = do(t, s, httptest.NewRequest("GET", "/version", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("GET /version: %d", w.Code)
	}
}

func TestHealthEndpoint(t *testing.T) {
	s := newTestServer(t)
	w := do(t, s, httptest.NewRequest("GET", "/health", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("GET /health: %d", w.Code)
	}
	var h ecoscan.Health
	decodeJSON(t, w, &h)
	if h.Ready {
		t.Error("ready before warm-up")
	}
	if h.Status != "starting" {
		t.Errorf("status = %q, want starting", h.Status)
	}
}

func TestModelsEndpoint(t *testing.T) {
	s := newTestServer(t)
	w := do(t, s, httptest.NewRequest("GET", "/models", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("GET /models: %d", w.Code)
	}
	var body struct {
		Models []ecoscan.ModelInfo `json:"models"`
	}
	decodeJSON(t, w, &body)
	if len(body.Models) == 0 {
		t.Fatal("empty model list")
	}
}

func TestEnvironmentalImpactEndpoint(t *testing.T) {
	s := newTestServer(t)

	w := do(t, s, httptest.NewRequest("GET", "/environmental-impact/plastic_bottle", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("known item: %d %s", w.Code, w.Body.String())
	}

	w = do(t, s, httptest.NewRequest("GET", "/environmental-impact/warp_core", nil))
	if w.Code != http.StatusNotFound {
		t.Fatalf("unknown item: %d, want 404", w.Code)
	}
	var envelope map[string]string
	decodeJSON(t, w, &envelope)
	if envelope["code"] != "not_found" {
		t.Errorf("error code = %q", envelope["code"])
	}
}

func TestDetectJSON(t *testing.T) {
	s := newTestServer(t)

	payload, _ := json.Marshal(map[string]any{
		"image": base64.StdEncoding.EncodeToString(testImage(t)),
	})
	req := httptest.NewRequest("POST", "/detect", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")

	w := do(t, s, req)
	if w.Code != http.StatusOK {
		t.Fatalf("POST /detect: %d %s", w.Code, w.Body.String())
	}
	var res detectResponse
	decodeJSON(t, w, &res)
	if len(res.Detections) != 2 {
		t.Fatalf("got %d detections, want 2 from the stub backend", len(res.Detections))
	}
	if res.ModelInfo.ID == "" {
		t.Error("model info missing")
	}
	if res.ProcessingTimeMS <= 0 {
		t.Error("processing time missing")
	}
}

func TestDetectRawBody(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest("POST", "/detect?min_confidence=0.5", bytes.NewReader(testImage(t)))
	req.Header.Set("Content-Type", "image/png")

	w := do(t, s, req)
	if w.Code != http.StatusOK {
		t.Fatalf("raw upload: %d %s", w.Code, w.Body.String())
	}
}

func TestDetectMultipart(t *testing.T) {
	s := newTestServer(t)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("image", "waste.png")
	if err != nil {
		t.Fatal(err)
	}
	fw.Write(testImage(t))
	mw.WriteField("quality", "fast")
	mw.Close()

	req := httptest.NewRequest("POST", "/detect", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	w := do(t, s, req)
	if w.Code != http.StatusOK {
		t.Fatalf("multipart upload: %d %s", w.Code, w.Body.String())
	}
}

func TestDetectErrors(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		name     string
		body     string
		wantCode string
	}{
		{"bad base64", `{"image":"@@not-base64@@"}`, "invalid_image"},
		{"empty image", `{"image":""}`, "invalid_image"},
		{"malformed json", `{"image":`, "invalid_configuration"},
		{"bad floor", `{"image":"` + base64.StdEncoding.EncodeToString([]byte("x")) + `","min_confidence":2}`, "invalid_configuration"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("POST", "/detect", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			w := do(t, s, req)
			if w.Code != http.StatusBadRequest {
				t.Fatalf("status %d, want 400 (%s)", w.Code, w.Body.String())
			}
			var envelope map[string]string
			decodeJSON(t, w, &envelope)
			if envelope["code"] != tt.wantCode {
				t.Errorf("code = %q, want %q", envelope["code"], tt.wantCode)
			}
			if envelope["message"] == "" {
				t.Error("missing client-safe message")
			}
		})
	}
}

// memStore is an in-memory resultStore standing in for redis.
type memStore struct {
	entries map[string][]byte
	hits    int
}

func (m *memStore) key(image []byte, opts ecoscan.DetectOptions) string {
	return string(image[:16]) + opts.ModelVersion
}

func (m *memStore) get(_ context.Context, key string) ([]byte, bool) {
	body, ok := m.entries[key]
	if ok {
		m.hits++
	}
	return body, ok
}

func (m *memStore) put(_ context.Context, key string, body []byte) {
	if m.entries == nil {
		m.entries = make(map[string][]byte)
	}
	m.entries[key] = body
}

func TestDetectCachedReplayTimesFreshly(t *testing.T) {
	s := newTestServer(t)
	store := &memStore{}
	s.results = store

	post := func() detectResponse {
		payload, _ := json.Marshal(map[string]any{
			"image": base64.StdEncoding.EncodeToString(testImage(t)),
		})
		req := httptest.NewRequest("POST", "/detect", bytes.NewReader(payload))
		req.Header.Set("Content-Type", "application/json")
		w := do(t, s, req)
		if w.Code != http.StatusOK {
			t.Fatalf("POST /detect: %d %s", w.Code, w.Body.String())
		}
		var res detectResponse
		decodeJSON(t, w, &res)
		return res
	}

	first := post()
	second := post()

	if store.hits != 1 {
		t.Fatalf("cache hits = %d, want 1 (second request replays)", store.hits)
	}
	if len(second.Detections) != len(first.Detections) {
		t.Fatalf("replayed detections differ: %d vs %d", len(second.Detections), len(first.Detections))
	}
	if second.Detections[0].ID != first.Detections[0].ID {
		t.Error("replay altered the cached detections")
	}
	// Timing is measured per request, never replayed from the cache.
	if second.ProcessingTimeMS == first.ProcessingTimeMS {
		t.Errorf("replay reported the original request's timing (%v)", first.ProcessingTimeMS)
	}
	if second.ProcessingTimeMS <= 0 {
		t.Error("replay reported no timing at all")
	}
}

func TestOptimizeEndpoint(t *testing.T) {
	s := newTestServer(t)

	body := `{"device_info":{"memory":16,"cores":12,"accelerator_tier":2},"quality":"balanced"}`
	req := httptest.NewRequest("POST", "/optimize", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	w := do(t, s, req)
	if w.Code != http.StatusOK {
		t.Fatalf("POST /optimize: %d %s", w.Code, w.Body.String())
	}
	var res ecoscan.OptimizeResult
	decodeJSON(t, w, &res)
	if res.DeviceTier != "high_end" {
		t.Errorf("tier = %q, want high_end", res.DeviceTier)
	}

	req = httptest.NewRequest("POST", "/optimize", strings.NewReader(`{"quality":"turbo"}`))
	req.Header.Set("Content-Type", "application/json")
	if w := do(t, s, req); w.Code != http.StatusBadRequest {
		t.Fatalf("unknown quality: %d, want 400", w.Code)
	}
}

func TestFeedbackEndpoint(t *testing.T) {
	s := newTestServer(t)

	body := `{"detection_id":"det-1","user_correction":"compost","confidence_rating":0.8,"was_helpful":true}`
	req := httptest.NewRequest("POST", "/feedback", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	w := do(t, s, req)
	if w.Code != http.StatusOK {
		t.Fatalf("POST /feedback: %d %s", w.Code, w.Body.String())
	}
	var res map[string]string
	decodeJSON(t, w, &res)
	if res["id"] == "" || res["status"] != "received" {
		t.Errorf("response = %v", res)
	}

	req = httptest.NewRequest("POST", "/feedback", strings.NewReader(`{"confidence_rating":0.5}`))
	req.Header.Set("Content-Type", "application/json")
	if w := do(t, s, req); w.Code != http.StatusBadRequest {
		t.Fatalf("missing detection_id: %d, want 400", w.Code)
	}
}

func TestCORSPreflight(t *testing.T) {
	s := newTestServer(t)
	w := do(t, s, httptest.NewRequest("OPTIONS", "/detect", nil))
	if w.Code != http.StatusNoContent {
		t.Fatalf("preflight: %d, want 204", w.Code)
	}
	if w.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Error("missing CORS header")
	}
}
