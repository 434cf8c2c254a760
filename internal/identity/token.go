package identity

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	identitydb "github.com/nao1215/arcade/internal/identity/db"
)

// トークンの用途。IDトークンのみがAPIの認証に使える。
const (
	tokenUseID     = "id"
	tokenUseCustom = "custom"
)

// errInvalidToken はトークンの署名・期限・用途のいずれかが不正であることを表す。
var errInvalidToken = errors.New("トークンが無効です")

// tokenClaims は発行するトークンのクレーム。subにアカウントIDを持つ。
type tokenClaims struct {
	jwt.RegisteredClaims
	// Name は発行時点の表示名。
	Name string `json:"name,omitempty"`
	// Email はメールアドレス。
	Email string `json:"email,omitempty"`
	// TokenUse はトークンの用途（id または custom）。
	TokenUse string `json:"token_use"`
}

// tokenIssuer はHS256で署名したトークンを発行・検証する。
type tokenIssuer struct {
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

// newTokenIssuer は新しいtokenIssuerを生成する。
func newTokenIssuer(secret, issuer string, ttl time.Duration) *tokenIssuer {
	return &tokenIssuer{
		secret: []byte(secret),
		issuer: issuer,
		ttl:    ttl,
		now:    time.Now,
	}
}

// issue はアカウントに対して指定用途のトークンを発行する。
func (ti *tokenIssuer) issue(account identitydb.Account, use string) (string, error) {
	now := ti.now()
	claims := tokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   account.ID,
			Issuer:    ti.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ti.ttl)),
		},
		Name:     account.DisplayName,
		Email:    account.Email,
		TokenUse: use,
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(ti.secret)
	if err != nil {
		return "", fmt.Errorf("トークンの署名に失敗: %w", err)
	}
	return signed, nil
}

// parse はトークンを検証し、用途が一致する場合にクレームを返す。
func (ti *tokenIssuer) parse(tokenString, use string) (*tokenClaims, error) {
	claims := &tokenClaims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(_ *jwt.Token) (any, error) {
		return ti.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(ti.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(ti.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errInvalidToken, err)
	}
	if claims.TokenUse != use || claims.Subject == "" {
		return nil, fmt.Errorf("%w: 用途が一致しません", errInvalidToken)
	}
	return claims, nil
}
