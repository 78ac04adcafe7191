package httpclient

import (
	"compress/gzip"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"TrophySync/internal/config"

	"github.com/sirupsen/logrus"
)

const (
	defaultTimeout = 30 * time.Second
	userAgent      = "TrophySync-relay/1.0"
)

// NewHTTPClient 调用中转函数的HTTP客户端：统一附带令牌、声明 gzip 并在读取前解压
func NewHTTPClient(cfg *config.RelayConfig, logger *logrus.Logger) *http.Client {
	timeout := time.Duration(cfg.Timeout) * time.Second
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &http.Client{
		Timeout: timeout,
		Transport: &relayTransport{
			base:      newTransport(cfg.Proxy, logger),
			authToken: strings.TrimSpace(cfg.AuthToken),
			logger:    logger,
		},
	}
}

// newTransport 中转函数只有一个上游，连接池按单主机调大
func newTransport(proxy string, logger *logrus.Logger) *http.Transport {
	t := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		MaxIdleConns:          32,
		MaxIdleConnsPerHost:   32,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: 20 * time.Second,
	}
	proxy = strings.TrimSpace(proxy)
	if proxy == "" {
		return t
	}
	u, err := url.Parse(proxy)
	if err != nil || u.Host == "" {
		logger.WithError(err).WithField("proxy", proxy).Warn("中转代理地址解析失败，改用环境变量中的代理")
		return t
	}
	t.Proxy = http.ProxyURL(u)
	logger.WithField("proxy", u.Redacted()).Info("中转客户端已配置代理")
	return t
}

type relayTransport struct {
	base      http.RoundTripper
	authToken string
	logger    *logrus.Logger
}

func (t *relayTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	out := req.Clone(req.Context())
	if t.authToken != "" && out.Header.Get("Authorization") == "" {
		out.Header.Set("Authorization", "Bearer "+t.authToken)
	}
	out.Header.Set("User-Agent", userAgent)
	// 显式声明 gzip 后 Transport 不再自动解压
	out.Header.Set("Accept-Encoding", "gzip")

	resp, err := t.base.RoundTrip(out)
	if err != nil {
		return nil, err
	}
	if !strings.EqualFold(resp.Header.Get("Content-Encoding"), "gzip") {
		return resp, nil
	}
	zr, err := gzip.NewReader(resp.Body)
	if err != nil {
		_ = resp.Body.Close()
		t.logger.WithError(err).WithField("url", req.URL.Redacted()).Warn("中转响应声明gzip但无法解压")
		return nil, fmt.Errorf("中转响应gzip解压失败: %w", err)
	}
	resp.Body = &gunzipBody{zr: zr, raw: resp.Body}
	resp.Header.Del("Content-Encoding")
	resp.Header.Del("Content-Length")
	resp.ContentLength = -1
	resp.Uncompressed = true
	return resp, nil
}

type gunzipBody struct {
	zr  *gzip.Reader
	raw io.ReadCloser
}

func (b *gunzipBody) Read(p []byte) (int, error) { return b.zr.Read(p) }

// Close 原始响应体总要关闭
func (b *gunzipBody) Close() error {
	zerr := b.zr.Close()
	if err := b.raw.Close(); err != nil {
		return err
	}
	return zerr
}
