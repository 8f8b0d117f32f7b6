package gcs

import (
	"bytes"
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/json"
	"encoding/pem"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func testServiceAccountJSON(t *testing.T, tokenURI string) string {
	t.Helper()

	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("generating test key: %v", err)
	}
	keyPEM := pem.EncodeToMemory(&pem.Block{
		Type:  "RSA PRIVATE KEY",
		Bytes: x509.MarshalPKCS1PrivateKey(key),
	})

	creds, err := json.Marshal(map[string]string{
		"client_email": "svc@example.iam.gserviceaccount.com",
		"private_key":  string(keyPEM),
		"token_uri":    tokenURI,
	})
	if err != nil {
		t.Fatalf("marshaling test credentials: %v", err)
	}
	return string(creds)
}

func newTestClient(ts *tokenSource) *Client {
	return &Client{
		httpClient:    &http.Client{Timeout: 5 * time.Second},
		defaultBucket: "test-bucket",
		tokenSource:   ts,
	}
}

func staticTokenSource(token string) *tokenSource {
	return &tokenSource{
		fetch: func(context.Context) (string, time.Time, error) {
			return token, time.Now().Add(time.Hour), nil
		},
	}
}

func TestTokenSourceCachesUntilNearExpiry(t *testing.T) {
	calls := 0
	ts := &tokenSource{
		fetch: func(context.Context) (string, time.Time, error) {
			calls++
			return "tok", time.Now().Add(time.Hour), nil
		},
	}

	for i := 0; i < 3; i++ {
		token, err := ts.Token(context.Background())
		if err != nil {
			t.Fatalf("Token() error: %v", err)
		}
		if token != "tok" {
			t.Fatalf("unexpected token %q", token)
		}
	}
	if calls != 1 {
		t.Fatalf("expected a single fetch, got %d", calls)
	}
}

func TestTokenSourceRefreshesExpiredToken(t *testing.T) {
	calls := 0
	ts := &tokenSource{
		fetch: func(context.Context) (string, time.Time, error) {
			calls++
			return "tok", time.Now().Add(30 * time.Second), nil
		},
	}

	if _, err := ts.Token(context.Background()); err != nil {
		t.Fatalf("Token() error: %v", err)
	}
	if _, err := ts.Token(context.Background()); err != nil {
		t.Fatalf("Token() error: %v", err)
	}
	if calls != 2 {
		t.Fatalf("expected refresh for near-expiry token, got %d fetches", calls)
	}
}

func TestUploadObjectSendsBearerAndPayload(t *testing.T) {
	var gotAuth, gotContentType, gotQuery string
	var gotBody []byte
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotContentType = r.Header.Get("Content-Type")
		gotQuery = r.URL.RawQuery
		buf := new(bytes.Buffer)
		_, _ = buf.ReadFrom(r.Body)
		gotBody = buf.Bytes()
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := newTestClient(staticTokenSource("upload-token"))
	u := server.URL + "/upload/storage/v1/b/test-bucket/o?uploadType=media&name=blobs%2Fabc"
	resp, err := client.do(context.Background(), http.MethodPost, u, "image/png", strings.NewReader("png-bytes"))
	if err != nil {
		t.Fatalf("do() error: %v", err)
	}
	_ = resp.Body.Close()

	if gotAuth != "Bearer upload-token" {
		t.Fatalf("unexpected auth header %q", gotAuth)
	}
	if gotContentType != "image/png" {
		t.Fatalf("unexpected content type %q", gotContentType)
	}
	if !strings.Contains(gotQuery, "uploadType=media") {
		t.Fatalf("unexpected query %q", gotQuery)
	}
	if string(gotBody) != "png-bytes" {
		t.Fatalf("unexpected body %q", gotBody)
	}
}

func TestFetchServiceAccountTokenExchangesSignedAssertion(t *testing.T) {
	var gotGrantType string
	var gotAssertion string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Errorf("parsing token form: %v", err)
		}
		gotGrantType = r.FormValue("grant_type")
		gotAssertion = r.FormValue("assertion")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"exchanged","expires_in":3600}`))
	}))
	defer server.Close()

	credentials := testServiceAccountJSON(t, server.URL)
	ts, err := newServiceAccountTokenSource(server.Client(), credentials)
	if err != nil {
		t.Fatalf("newServiceAccountTokenSource() error: %v", err)
	}

	token, err := ts.Token(context.Background())
	if err != nil {
		t.Fatalf("Token() error: %v", err)
	}
	if token != "exchanged" {
		t.Fatalf("unexpected token %q", token)
	}
	if gotGrantType != "urn:ietf:params:oauth:grant-type:jwt-bearer" {
		t.Fatalf("unexpected grant type %q", gotGrantType)
	}
	if parts := strings.Split(gotAssertion, "."); len(parts) != 3 {
		t.Fatalf("expected a three-part JWT assertion, got %d parts", len(parts))
	}
}

func TestNewServiceAccountTokenSourceRejectsPartialCredentials(t *testing.T) {
	_, err := newServiceAccountTokenSource(http.DefaultClient, `{"client_email":"svc@example.iam.gserviceaccount.com"}`)
	if err == nil {
		t.Fatal("expected error for credentials without a private key")
	}
}
