package identity

import (
	"errors"
	"testing"
	"time"

	identitydb "github.com/nao1215/arcade/internal/identity/db"
)

// TestTokenIssuer はトークンの発行と検証を検証する。
func TestTokenIssuer(t *testing.T) {
	t.Parallel()

	account := identitydb.Account{ID: "uid-1", Email: "alice@example.com", DisplayName: "alice"}
	base := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	newIssuer := func(now time.Time) *tokenIssuer {
		ti := newTokenIssuer("secret", "arcade-identity", time.Hour)
		ti.now = func() time.Time { return now }
		return ti
	}

	t.Run("発行したトークンのクレームが取得できること", func(t *testing.T) {
		t.Parallel()

		ti := newIssuer(base)
		token, err := ti.issue(account, tokenUseID)
		if err != nil {
			t.Fatalf("issue()でエラーが発生: %v", err)
		}
		claims, err := ti.parse(token, tokenUseID)
		if err != nil {
			t.Fatalf("parse()でエラーが発生: %v", err)
		}
		if claims.Subject != "uid-1" || claims.Name != "alice" || claims.Email != "alice@example.com" {
			t.Errorf("claims = %+v", claims)
		}
		if !claims.ExpiresAt.Time.Equal(base.Add(time.Hour)) {
			t.Errorf("ExpiresAt = %v, want %v", claims.ExpiresAt.Time, base.Add(time.Hour))
		}
	})

	t.Run("用途が異なるトークンは拒否されること", func(t *testing.T) {
		t.Parallel()

		ti := newIssuer(base)
		custom, err := ti.issue(account, tokenUseCustom)
		if err != nil {
			t.Fatalf("issue()でエラーが発生: %v", err)
		}
		if _, err := ti.parse(custom, tokenUseID); !errors.Is(err, errInvalidToken) {
			t.Errorf("parse() error = %v, want errInvalidToken", err)
		}
	})

	t.Run("期限切れのトークンは拒否されること", func(t *testing.T) {
		t.Parallel()

		token, err := newIssuer(base).issue(account, tokenUseID)
		if err != nil {
			t.Fatalf("issue()でエラーが発生: %v", err)
		}
		if _, err := newIssuer(base.Add(2*time.Hour)).parse(token, tokenUseID); !errors.Is(err, errInvalidToken) {
			t.Errorf("parse() error = %v, want errInvalidToken", err)
		}
	})

	t.Run("別の秘密鍵で署名されたトークンは拒否されること", func(t *testing.T) {
		t.Parallel()

		other := newTokenIssuer("other-secret", "arcade-identity", time.Hour)
		token, err := other.issue(account, tokenUseID)
		if err != nil {
			t.Fatalf("issue()でエラーが発生: %v", err)
		}
		if _, err := newTokenIssuer("secret", "arcade-identity", time.Hour).parse(token, tokenUseID); err == nil {
			t.Error("署名が一致しないトークンが受け付けられた")
		}
	})

	t.Run("発行者が異なるトークンは拒否されること", func(t *testing.T) {
		t.Parallel()

		token, err := newTokenIssuer("secret", "someone-else", time.Hour).issue(account, tokenUseID)
		if err != nil {
			t.Fatalf("issue()でエラーが発生: %v", err)
		}
		if _, err := newTokenIssuer("secret", "arcade-identity", time.Hour).parse(token, tokenUseID); err == nil {
			t.Error("発行者が異なるトークンが受け付けられた")
		}
	})

	t.Run("不正な形式の文字列は拒否されること", func(t *testing.T) {
		t.Parallel()

		if _, err := newIssuer(base).parse("not-a-jwt", tokenUseID); !errors.Is(err, errInvalidToken) {
			t.Errorf("parse() error = %v, want errInvalidToken", err)
		}
	})
}
