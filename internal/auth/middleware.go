package auth

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
)

var userCtxKey = &contextKey{"user"}

type contextKey struct {
	name string
}

// Middleware 解析 Authorization: Bearer，校验通过后把用户 ID 放入上下文。
// 无 token 时回退到 devUser（为空则 401）。EventSource 无法设置请求头，
// 因此也接受 ?access_token=。
func Middleware(issuer *Issuer, devUser string) func(http.Handler) http.Handler {
	devUser = strings.TrimSpace(devUser)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := bearerToken(r)
			var userID string
			switch {
			case raw != "":
				sub, err := issuer.Verify(raw)
				if err != nil {
					slog.Debug("token 校验失败", "path", r.URL.Path, "error", err)
					unauthorized(w, "invalid token")
					return
				}
				userID = sub
			case devUser != "":
				userID = devUser
			default:
				unauthorized(w, "missing bearer token")
				return
			}
			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), userID)))
		})
	}
}

// WithUser 把用户 ID 放入上下文
func WithUser(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userCtxKey, userID)
}

// ForContext 取出当前用户 ID；未经过 Middleware 时为空
func ForContext(ctx context.Context) string {
	raw, _ := ctx.Value(userCtxKey).(string)
	return raw
}

func bearerToken(r *http.Request) string {
	h := strings.TrimSpace(r.Header.Get("Authorization"))
	if h != "" {
		parts := strings.SplitN(h, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return strings.TrimSpace(parts[1])
		}
		return ""
	}
	return strings.TrimSpace(r.URL.Query().Get("access_token"))
}

func unauthorized(w http.ResponseWriter, msg string) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("WWW-Authenticate", `Bearer realm="dsatrack"`)
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]any{"error": msg})
}
