package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/yuqie6/dsatrack/internal/auth"
	"github.com/yuqie6/dsatrack/internal/bootstrap"
	"github.com/yuqie6/dsatrack/internal/dto"
)

type Server struct {
	core    *bootstrap.Core
	ln      net.Listener
	srv     *http.Server
	baseURL string
}

type Options struct {
	ListenAddr string // e.g. "127.0.0.1:8787"，为空时随机端口
}

func Start(ctx context.Context, core *bootstrap.Core, opts Options) (*Server, error) {
	if core == nil {
		return nil, fmt.Errorf("core 不能为空")
	}
	if strings.TrimSpace(opts.ListenAddr) == "" {
		opts.ListenAddr = "127.0.0.1:0"
	}

	ln, err := net.Listen("tcp", opts.ListenAddr)
	if err != nil {
		return nil, err
	}

	host, portStr, err := net.SplitHostPort(ln.Addr().String())
	if err != nil {
		_ = ln.Close()
		return nil, err
	}
	if host == "" || host == "::" || host == "0.0.0.0" {
		host = "127.0.0.1"
	}
	baseURL := "http://" + net.JoinHostPort(host, portStr)

	srv := &http.Server{
		Handler:           NewHandler(core),
		ReadHeaderTimeout: 5 * time.Second,
	}

	s := &Server{
		core:    core,
		ln:      ln,
		srv:     srv,
		baseURL: baseURL,
	}

	go func() {
		<-ctx.Done()
		_ = s.Shutdown(context.Background())
	}()

	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("http server 异常退出", "error", err)
		}
	}()

	slog.Info("HTTP 已启动", "base_url", baseURL, "storage", core.StorageDriver())
	return s, nil
}

func (s *Server) BaseURL() string {
	if s == nil {
		return ""
	}
	return s.baseURL
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s == nil || s.srv == nil {
		return nil
	}
	return s.srv.Shutdown(ctx)
}

// NewHandler 构建完整路由：/health 与 /metrics 免鉴权，/api/* 需要 bearer token
func NewHandler(core *bootstrap.Core) http.Handler {
	api := newAPI(core)

	apiMux := http.NewServeMux()
	apiMux.HandleFunc("/api/events", api.wrapGET(api.handleSSE))
	api.registerJSONRoutes(apiMux)

	mux := http.NewServeMux()
	mux.Handle("/health", instrument("/health", api.wrapGET(api.handleHealth)))
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/api/", auth.Middleware(core.Tokens, core.Cfg.Auth.DevUser)(apiMux))
	return mux
}

type apiServer struct {
	core      *bootstrap.Core
	timeout   time.Duration
	now       func() time.Time
	startTime time.Time
}

func newAPI(core *bootstrap.Core) *apiServer {
	timeout := core.Cfg.Server.RequestTimeout()
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &apiServer{
		core:      core,
		timeout:   timeout,
		now:       time.Now,
		startTime: time.Now(),
	}
}

func (a *apiServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	out := dto.HealthDTO{
		OK:          true,
		Name:        a.core.Cfg.App.Name,
		Version:     a.core.Cfg.App.Version,
		StartedAt:   a.startTime.Format(time.RFC3339),
		UptimeSec:   int64(time.Since(a.startTime).Seconds()),
		Storage:     dto.StorageStatusDTO{Driver: a.core.StorageDriver()},
		Subscribers: a.core.Hub.Subscribers(),
	}
	if db := a.core.DB; db != nil {
		out.Storage.SchemaVersion = db.SchemaVersion
		out.Storage.SafeMode = db.SafeMode
		out.Storage.SafeModeReason = db.MigrationError
		out.OK = !db.SafeMode
	}
	writeJSON(w, http.StatusOK, out)
}

// handleSSE 只推送当前用户的事件
func (a *apiServer) handleSSE(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "stream not supported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ctx := r.Context()
	sub := a.core.Hub.Subscribe(ctx, auth.ForContext(ctx), 32)

	_, _ = io.WriteString(w, "event: ready\n")
	_, _ = io.WriteString(w, "data: {}\n\n")
	flusher.Flush()

	ticker := time.NewTicker(15 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			_, _ = io.WriteString(w, "event: ping\n")
			_, _ = io.WriteString(w, "data: {}\n\n")
			flusher.Flush()
		case evt, ok := <-sub:
			if !ok {
				return
			}
			b, _ := json.Marshal(evt)
			_, _ = io.WriteString(w, "event: "+sanitizeSSEName(evt.Type)+"\n")
			_, _ = io.WriteString(w, "data: ")
			_, _ = w.Write(b)
			_, _ = io.WriteString(w, "\n\n")
			flusher.Flush()
		}
	}
}

func sanitizeSSEName(name string) string {
	n := strings.TrimSpace(name)
	if n == "" {
		return "message"
	}
	n = strings.ReplaceAll(n, "\n", "")
	n = strings.ReplaceAll(n, "\r", "")
	return n
}
