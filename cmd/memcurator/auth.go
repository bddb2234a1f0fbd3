package main

import (
	"crypto/rsa"
	"crypto/subtle"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/BaSui01/memcurator/config"
	"github.com/BaSui01/memcurator/internal/ctxkeys"
	"github.com/BaSui01/memcurator/types"
)

// =============================================================================
// 🔐 认证
// =============================================================================

const apiKeySubject = "api-key"

// Auth 认证中间件。X-API-Key 命中配置的 key 或 Bearer JWT 校验通过即放行，
// 主体写入 ctxkeys.Subject。未配置任何认证方式时直通；skipPaths 免认证。
func Auth(cfg config.AuthConfig, skipPaths []string, logger *zap.Logger) Middleware {
	if !cfg.Enabled() {
		return func(next http.Handler) http.Handler { return next }
	}
	a := &authenticator{
		skip:   make(map[string]bool, len(skipPaths)),
		jwt:    newJWTVerifier(cfg.JWT, logger),
		logger: logger,
	}
	for _, p := range skipPaths {
		a.skip[p] = true
	}
	for _, k := range cfg.APIKeys {
		a.keys = append(a.keys, []byte(k))
	}

	return around(func(next http.Handler, w http.ResponseWriter, r *http.Request) {
		if a.skip[r.URL.Path] {
			next.ServeHTTP(w, r)
			return
		}
		subject, err := a.authenticate(r)
		if err != nil {
			reject(w, types.ErrUnauthorized, err.Error())
			return
		}
		next.ServeHTTP(w, r.WithContext(ctxkeys.WithSubject(r.Context(), subject)))
	})
}

type authenticator struct {
	keys   [][]byte
	jwt    *jwtVerifier
	skip   map[string]bool
	logger *zap.Logger
}

// authenticate 返回的错误文本直接作为 401 响应消息
func (a *authenticator) authenticate(r *http.Request) (string, error) {
	if key := r.Header.Get("X-API-Key"); key != "" {
		if !a.validKey(key) {
			return "", errors.New("invalid API key")
		}
		return apiKeySubject, nil
	}

	token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	if !ok || a.jwt == nil {
		return "", errors.New("missing credentials")
	}
	subject, err := a.jwt.verify(token)
	if err != nil {
		a.logger.Debug("JWT validation failed", zap.Error(err))
		return "", errors.New("invalid or expired token")
	}
	return subject, nil
}

func (a *authenticator) validKey(key string) bool {
	candidate := []byte(key)
	match := 0
	for _, k := range a.keys {
		match |= subtle.ConstantTimeCompare(k, candidate)
	}
	return match == 1
}

// jwtVerifier 校验 HS256 / RS256 令牌，要求 exp，可选 iss 与 aud
type jwtVerifier struct {
	secret []byte
	public *rsa.PublicKey
	parser *jwt.Parser
}

// newJWTVerifier 在既无 HMAC 密钥又无可用 RSA 公钥时返回 nil
func newJWTVerifier(cfg config.JWTConfig, logger *zap.Logger) *jwtVerifier {
	v := &jwtVerifier{secret: []byte(cfg.Secret)}
	if cfg.PublicKey != "" {
		pub, err := jwt.ParseRSAPublicKeyFromPEM([]byte(cfg.PublicKey))
		if err != nil {
			logger.Warn("failed to parse RSA public key, RS256 verification disabled", zap.Error(err))
		}
		v.public = pub
	}
	if len(v.secret) == 0 && v.public == nil {
		return nil
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg(), jwt.SigningMethodRS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(cfg.Issuer))
	}
	if cfg.Audience != "" {
		opts = append(opts, jwt.WithAudience(cfg.Audience))
	}
	v.parser = jwt.NewParser(opts...)
	return v
}

func (v *jwtVerifier) key(token *jwt.Token) (any, error) {
	switch token.Method.(type) {
	case *jwt.SigningMethodHMAC:
		if len(v.secret) > 0 {
			return v.secret, nil
		}
	case *jwt.SigningMethodRSA:
		if v.public != nil {
			return v.public, nil
		}
	}
	return nil, fmt.Errorf("no key configured for %s", token.Method.Alg())
}

// verify 返回令牌的 sub，缺省时为 "jwt"
func (v *jwtVerifier) verify(raw string) (string, error) {
	var claims jwt.RegisteredClaims
	if _, err := v.parser.ParseWithClaims(raw, &claims, v.key); err != nil {
		return "", err
	}
	if claims.Subject == "" {
		return "jwt", nil
	}
	return claims.Subject, nil
}
