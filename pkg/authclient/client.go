package authclient

import (
	"context"
	"fmt"

	"github.com/nao1215/arcade/pkg/auth"
	"github.com/nao1215/arcade/pkg/httpclient"
)

// AdminKeyHeader は管理者操作の認可に使うHTTPヘッダーキー。
const AdminKeyHeader = "X-Admin-Key"

// Client はIDプロバイダーのクライアント。
type Client struct {
	http *httpclient.Client
}

// New はIDプロバイダーのクライアントを生成する。
// adminKeyはサーバー側の認証情報ファイルから読み込んだ値を渡す。
func New(baseURL, adminKey string, opts ...httpclient.Option) *Client {
	opts = append([]httpclient.Option{httpclient.WithHeader(AdminKeyHeader, adminKey)}, opts...)
	return &Client{http: httpclient.New(baseURL, opts...)}
}

// User はIDプロバイダーが管理するユーザー。
type User struct {
	// ID はIDプロバイダーが採番した不変の識別子。
	ID string `json:"id"`
	// Email はメールアドレス。
	Email string `json:"email"`
	// DisplayName は表示名。
	DisplayName string `json:"display_name"`
}

// CreateUserParams はユーザー作成のパラメータ。
type CreateUserParams struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"display_name"`
}

// CreateUser はIDプロバイダーにユーザーを作成する。
func (c *Client) CreateUser(ctx context.Context, params CreateUserParams) (User, error) {
	var user User
	if err := c.http.PostJSON(ctx, "/api/v1/accounts", params, &user); err != nil {
		return User{}, fmt.Errorf("ユーザー作成に失敗: %w", err)
	}
	return user, nil
}

// SignIn はメールアドレスとパスワードでサインインし、IDトークンを返す。
func (c *Client) SignIn(ctx context.Context, email, password string) (string, error) {
	var resp struct {
		IDToken string `json:"id_token"`
	}
	body := map[string]string{"email": email, "password": password}
	if err := c.http.PostJSON(ctx, "/api/v1/sessions", body, &resp); err != nil {
		return "", fmt.Errorf("サインインに失敗: %w", err)
	}
	return resp.IDToken, nil
}

// VerifyIDToken はIDトークンをIDプロバイダーに検証させ、認証済みのIDを返す。
// 結果はキャッシュしない。
func (c *Client) VerifyIDToken(ctx context.Context, token string) (auth.Identity, error) {
	var resp struct {
		UserID      string `json:"user_id"`
		DisplayName string `json:"display_name"`
		Email       string `json:"email"`
	}
	if err := c.http.PostJSON(ctx, "/api/v1/tokens/verify", map[string]string{"token": token}, &resp); err != nil {
		return auth.Identity{}, fmt.Errorf("トークン検証に失敗: %w", err)
	}
	return auth.Identity{
		UserID:      resp.UserID,
		DisplayName: resp.DisplayName,
		Email:       resp.Email,
	}, nil
}

// CreateCustomToken は指定ユーザーのカスタムトークンを発行する。
// クライアントはこれをIDプロバイダーでIDトークンに交換する。
func (c *Client) CreateCustomToken(ctx context.Context, userID string) (string, error) {
	var resp struct {
		CustomToken string `json:"custom_token"`
	}
	if err := c.http.PostJSON(ctx, "/api/v1/tokens/custom", map[string]string{"user_id": userID}, &resp); err != nil {
		return "", fmt.Errorf("カスタムトークン発行に失敗: %w", err)
	}
	return resp.CustomToken, nil
}
