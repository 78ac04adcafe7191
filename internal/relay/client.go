// Package relay 调用持有平台凭据的中转函数，取回各平台的原始 JSON。
package relay

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"TrophySync/internal/config"
	"TrophySync/internal/metrics"
	"TrophySync/internal/model"
	"TrophySync/internal/utils/httpclient"

	"github.com/goccy/go-json"
	"github.com/sirupsen/logrus"
	gobreaker "github.com/sony/gobreaker/v2"
)

// maxPayloadBytes 单次中转响应上限
const maxPayloadBytes = 32 << 20

// ErrUnavailable 熔断打开或中转函数不可用
var ErrUnavailable = errors.New("中转函数不可用")

// StatusError 中转函数返回非 2xx
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("中转函数返回状态码%d: %s", e.StatusCode, e.Body)
}

// Client 中转函数客户端，外层包一个熔断器
type Client struct {
	cfg        *config.RelayConfig
	httpClient *http.Client
	cb         *gobreaker.CircuitBreaker[[]byte]
	logger     *logrus.Logger
}

func NewClient(cfg *config.RelayConfig, logger *logrus.Logger) *Client {
	name := "relay"
	metrics.RelayBreakerState.WithLabelValues(name).Set(0)

	cb := gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		// 4xx 是请求本身的问题（账号不存在等），不计入熔断
		IsSuccessful: func(err error) bool {
			var se *StatusError
			if errors.As(err, &se) {
				return se.StatusCode < 500
			}
			return err == nil
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.WithFields(logrus.Fields{"from": from.String(), "to": to.String()}).Warn("中转函数熔断器状态变化")
			metrics.RelayBreakerState.WithLabelValues(name).Set(stateValue(to))
		},
	})

	return &Client{
		cfg:        cfg,
		httpClient: httpclient.NewHTTPClient(cfg, logger),
		cb:         cb,
		logger:     logger,
	}
}

// FetchPayload 为指定账号拉取平台原始数据
func (c *Client) FetchPayload(ctx context.Context, platform model.PlatformType, accountID string) ([]byte, error) {
	body, err := c.cb.Execute(func() ([]byte, error) {
		return c.fetch(ctx, platform, accountID)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			metrics.RelayRequestsTotal.WithLabelValues(string(platform), "rejected").Inc()
			return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
		metrics.RelayRequestsTotal.WithLabelValues(string(platform), "failure").Inc()
		return nil, err
	}
	metrics.RelayRequestsTotal.WithLabelValues(string(platform), "success").Inc()
	return body, nil
}

func (c *Client) fetch(ctx context.Context, platform model.PlatformType, accountID string) ([]byte, error) {
	reqBody, err := json.Marshal(map[string]string{"account_id": accountID})
	if err != nil {
		return nil, err
	}
	url := fmt.Sprintf("%s/%s", strings.TrimRight(c.cfg.BaseURL, "/"), platform)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(reqBody))
	if err != nil {
		return nil, fmt.Errorf("构建中转请求失败: %w", err)
	}
	// 令牌由 httpclient 统一附带
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("请求中转函数失败: %w", err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			c.logger.Errorf("关闭中转响应体失败: %v", err)
		}
	}()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPayloadBytes))
	if err != nil {
		return nil, fmt.Errorf("读取中转响应失败: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet := string(body)
		if len(snippet) > 256 {
			snippet = snippet[:256]
		}
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: snippet}
	}
	c.logger.WithFields(logrus.Fields{"platform": platform, "bytes": len(body)}).Info("中转函数返回成功")
	return body, nil
}

func stateValue(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return 0
	}
}
