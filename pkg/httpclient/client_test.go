package httpclient

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

// testPayload はテスト用のリクエスト/レスポンスペイロード。
type testPayload struct {
	// Name はテスト用の名前フィールド。
	Name string `json:"name"`
	// Value はテスト用の値フィールド。
	Value int `json:"value"`
}

// TestNew はNew関数でクライアントが正しく生成されることを検証する。
func TestNew(t *testing.T) {
	t.Parallel()

	t.Run("デフォルトのタイムアウトが30秒であること", func(t *testing.T) {
		t.Parallel()

		client := New("http://localhost:8090")
		if client.httpClient.Timeout != 30*time.Second {
			t.Errorf("Timeout = %v, want 30s", client.httpClient.Timeout)
		}
	})

	t.Run("末尾のスラッシュが取り除かれること", func(t *testing.T) {
		t.Parallel()

		client := New("http://localhost:8090/")
		if client.baseURL != "http://localhost:8090" {
			t.Errorf("baseURL = %q, want %q", client.baseURL, "http://localhost:8090")
		}
	})

	t.Run("オプションでタイムアウトを変更できること", func(t *testing.T) {
		t.Parallel()

		client := New("http://localhost:8090", WithTimeout(5*time.Second))
		if client.httpClient.Timeout != 5*time.Second {
			t.Errorf("Timeout = %v, want 5s", client.httpClient.Timeout)
		}
	})
}

// TestPostJSON はPostJSON関数を検証する。
func TestPostJSON(t *testing.T) {
	t.Parallel()

	t.Run("JSONボディと固定ヘッダーが送信されレスポンスが取得できること", func(t *testing.T) {
		t.Parallel()

		var (
			gotMethod string
			gotPath   string
			gotBody   []byte
			gotHeader http.Header
		)
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotMethod = r.Method
			gotPath = r.URL.Path
			gotBody, _ = io.ReadAll(r.Body)
			gotHeader = r.Header
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(testPayload{Name: "response", Value: 200})
		}))
		defer ts.Close()

		client := New(ts.URL, WithHeader("X-Admin-Key", "secret"))
		var result testPayload
		if err := client.PostJSON(context.Background(), "/api/v1/accounts", testPayload{Name: "request", Value: 100}, &result); err != nil {
			t.Fatalf("PostJSON()でエラーが発生: %v", err)
		}

		if gotMethod != http.MethodPost {
			t.Errorf("Method = %q, want %q", gotMethod, http.MethodPost)
		}
		if gotPath != "/api/v1/accounts" {
			t.Errorf("Path = %q, want %q", gotPath, "/api/v1/accounts")
		}
		if got := gotHeader.Get("X-Admin-Key"); got != "secret" {
			t.Errorf("X-Admin-Key = %q, want %q", got, "secret")
		}
		if got := gotHeader.Get("Content-Type"); got != "application/json" {
			t.Errorf("Content-Type = %q, want %q", got, "application/json")
		}

		var sent testPayload
		if err := json.Unmarshal(gotBody, &sent); err != nil {
			t.Fatalf("リクエストボディのパースに失敗: %v", err)
		}
		if sent.Name != "request" || sent.Value != 100 {
			t.Errorf("送信ボディ = %+v, want {request 100}", sent)
		}
		if result.Name != "response" || result.Value != 200 {
			t.Errorf("result = %+v, want {response 200}", result)
		}
	})

	t.Run("エラーレスポンスのメッセージがHTTPErrorに保持されること", func(t *testing.T) {
		t.Parallel()

		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusConflict)
			w.Write([]byte(`{"error":"このメールアドレスは既に使用されています"}`))
		}))
		defer ts.Close()

		err := New(ts.URL).PostJSON(context.Background(), "/api/v1/accounts", testPayload{}, nil)
		httpErr, ok := AsHTTPError(err)
		if !ok {
			t.Fatalf("HTTPErrorが返るべき: %v", err)
		}
		if httpErr.StatusCode != http.StatusConflict {
			t.Errorf("StatusCode = %d, want %d", httpErr.StatusCode, http.StatusConflict)
		}
		if httpErr.Message != "このメールアドレスは既に使用されています" {
			t.Errorf("Message = %q", httpErr.Message)
		}
	})

	t.Run("JSONでないエラーボディはそのままメッセージになること", func(t *testing.T) {
		t.Parallel()

		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
			w.Write([]byte("upstream down\n"))
		}))
		defer ts.Close()

		err := New(ts.URL).PostJSON(context.Background(), "/x", nil, nil)
		httpErr, ok := AsHTTPError(err)
		if !ok {
			t.Fatalf("HTTPErrorが返るべき: %v", err)
		}
		if httpErr.Message != "upstream down" {
			t.Errorf("Message = %q, want %q", httpErr.Message, "upstream down")
		}
	})

	t.Run("シリアライズできないボディでエラーが返ること", func(t *testing.T) {
		t.Parallel()

		err := New("http://127.0.0.1:1").PostJSON(context.Background(), "/x", make(chan int), nil)
		if err == nil {
			t.Fatal("PostJSON()がエラーを返すべきだが、nilが返った")
		}
		if _, ok := AsHTTPError(err); ok {
			t.Error("シリアライズエラーはHTTPErrorであってはならない")
		}
	})

	t.Run("キャンセルされたコンテキストでエラーが返ること", func(t *testing.T) {
		t.Parallel()

		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusOK)
		}))
		defer ts.Close()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		if err := New(ts.URL).PostJSON(ctx, "/x", testPayload{}, nil); err == nil {
			t.Fatal("PostJSON()がエラーを返すべきだが、nilが返った")
		}
	})
}

