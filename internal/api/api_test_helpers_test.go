package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/halcyon-labs/dermatrack/internal/classifier"
	"github.com/halcyon-labs/dermatrack/internal/db"
	"github.com/halcyon-labs/dermatrack/internal/models"
	"github.com/halcyon-labs/dermatrack/internal/monitor"
	"gorm.io/gorm"
)

// fakeClassifier serves canned diagnoses so handler tests never reach
// a real model endpoint.
type fakeClassifier struct {
	mu        sync.Mutex
	diagnosis models.Diagnosis
	status    int
}

func (fake *fakeClassifier) set(diagnosis models.Diagnosis) {
	fake.mu.Lock()
	defer fake.mu.Unlock()
	fake.diagnosis = diagnosis
	fake.status = http.StatusOK
}

func (fake *fakeClassifier) fail(status int) {
	fake.mu.Lock()
	defer fake.mu.Unlock()
	fake.status = status
}

func (fake *fakeClassifier) handle(w http.ResponseWriter, _ *http.Request) {
	fake.mu.Lock()
	diagnosis := fake.diagnosis
	status := fake.status
	fake.mu.Unlock()

	if status != http.StatusOK {
		w.WriteHeader(status)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(diagnosis)
}

type testBlobStore struct {
	mu      sync.Mutex
	objects map[string][]byte
	serial  int
}

func newTestBlobStore() *testBlobStore {
	return &testBlobStore{objects: make(map[string][]byte)}
}

func (store *testBlobStore) Upload(_ context.Context, data []byte, fileName string, userID uint) (string, error) {
	store.mu.Lock()
	defer store.mu.Unlock()
	store.serial++
	url := fmt.Sprintf("mem://%d/%d-%s", userID, store.serial, fileName)
	store.objects[url] = data
	return url, nil
}

func (store *testBlobStore) Delete(_ context.Context, imageURL string) error {
	store.mu.Lock()
	defer store.mu.Unlock()
	delete(store.objects, imageURL)
	return nil
}

func (store *testBlobStore) Replace(ctx context.Context, oldImageURL string, data []byte, fileName string, userID uint) (string, error) {
	if err := store.Delete(ctx, oldImageURL); err != nil {
		return "", err
	}
	return store.Upload(ctx, data, fileName, userID)
}

type testEnv struct {
	app        *fiber.App
	handler    *Handler
	classifier *fakeClassifier
	blobs      *testBlobStore
	database   *gorm.DB
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	database, err := db.OpenSQLite(filepath.Join(t.TempDir(), "dermatrack-api-test.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	gate := monitor.NewGate(database)
	if err := gate.Initialize(context.Background()); err != nil {
		t.Fatalf("initialize gate: %v", err)
	}

	fake := &fakeClassifier{status: http.StatusOK}
	server := httptest.NewServer(http.HandlerFunc(fake.handle))
	t.Cleanup(server.Close)

	blobs := newTestBlobStore()
	repositories := db.NewRepositories(database)
	coordinator := monitor.NewCoordinator(gate, repositories, blobs)
	coordinator.Retry.BaseDelay = time.Millisecond
	coordinator.PollInterval = time.Hour
	t.Cleanup(coordinator.Close)

	handler := NewHandler(database, "api-test-secret", false, classifier.NewClient(server.URL), blobs, coordinator)

	app := fiber.New()
	RegisterRoutes(app, handler)

	return &testEnv{app: app, handler: handler, classifier: fake, blobs: blobs, database: database}
}

func (env *testEnv) do(t *testing.T, req *http.Request) *http.Response {
	t.Helper()
	resp, err := env.app.Test(req, -1)
	if err != nil {
		t.Fatalf("%s %s: %v", req.Method, req.URL.Path, err)
	}
	return resp
}

func registerTestUser(t *testing.T, env *testEnv, email string) *http.Cookie {
	t.Helper()

	body, _ := json.Marshal(map[string]string{
		"email":    email,
		"password": "Sunlight9",
	})
	req := httptest.NewRequest(http.MethodPost, "/api/auth/register", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp := env.do(t, req)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("register %s: status %d", email, resp.StatusCode)
	}
	for _, cookie := range resp.Cookies() {
		if cookie.Name == authCookieName {
			return cookie
		}
	}
	t.Fatal("register did not set an auth cookie")
	return nil
}

func multipartImageRequest(t *testing.T, path string, fields map[string]string, extraValues map[string][]string) *http.Request {
	t.Helper()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	part, err := writer.CreateFormFile("image", "scan.jpg")
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := part.Write([]byte("fake-jpeg-bytes")); err != nil {
		t.Fatalf("write form file: %v", err)
	}
	for key, value := range fields {
		if err := writer.WriteField(key, value); err != nil {
			t.Fatalf("write field %s: %v", key, err)
		}
	}
	for key, values := range extraValues {
		for _, value := range values {
			if err := writer.WriteField(key, value); err != nil {
				t.Fatalf("write field %s: %v", key, err)
			}
		}
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close multipart writer: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func decodeJSONBody(t *testing.T, resp *http.Response, target any) {
	t.Helper()
	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read response body: %v", err)
	}
	if err := json.Unmarshal(payload, target); err != nil {
		t.Fatalf("decode response %q: %v", string(payload), err)
	}
}
