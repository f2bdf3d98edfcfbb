package rpc

import (
	"bytes"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"vanblog/internal/config"
	"vanblog/internal/models"

	"github.com/goccy/go-json"
)

// HTTPClient 命令行访问keeper管理接口的客户端
type HTTPClient interface {
	Get(path string, params map[string]interface{}) (*HTTPResponse, error)
	Post(path string, data interface{}) (*HTTPResponse, error)
	PostRaw(path string, contentType string, body io.Reader) (*HTTPResponse, error)
	Put(path string, data interface{}) (*HTTPResponse, error)
	Close() error
}

// HTTPConfig 定义HTTP客户端配置
type HTTPConfig struct {
	Address string        // keeper侦听地址，unix socket路径或host:port
	Network string        // unix,tcp
	Timeout time.Duration // 默认超时时间
	BaseURL string        // 基础URL，主机部分不参与连接
}

/**
 * Build client configuration from the application configuration
 * @returns {*HTTPConfig} Unix socket when the socket file exists, else TCP
 */
func DefaultHTTPConfig() *HTTPConfig {
	cfg := config.App()
	c := &HTTPConfig{
		Address: cfg.Server.Socket,
		Network: "unix",
		Timeout: 10 * time.Second,
		BaseURL: "http://vanblog",
	}
	if _, err := os.Stat(c.Address); c.Address == "" || err != nil {
		c.Address = tcpAddress(cfg.Server.Address)
		c.Network = "tcp"
	}
	return c
}

// tcpAddress 侦听地址转换成本机可连接的地址
func tcpAddress(listen string) string {
	if listen == "" {
		return "127.0.0.1:3000"
	}
	host, port, err := net.SplitHostPort(listen)
	if err != nil {
		return listen
	}
	if host == "" || host == "0.0.0.0" || host == "::" {
		host = "127.0.0.1"
	}
	return net.JoinHostPort(host, port)
}

// HTTPResponse 定义HTTP响应结构
type HTTPResponse struct {
	StatusCode int                 `json:"status_code"`
	Headers    map[string][]string `json:"headers"`
	Body       []byte              `json:"body"`
	Code       string              `json:"code"`
	Error      string              `json:"error"`
}

func (r *HTTPResponse) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// Decode 把响应体解析到v
func (r *HTTPResponse) Decode(v interface{}) error {
	return json.Unmarshal(r.Body, v)
}

// Err 非2xx响应转换成error
func (r *HTTPResponse) Err() error {
	if r.OK() {
		return nil
	}
	if r.Code != "" {
		return fmt.Errorf("%s (%s, status %d)", r.Error, r.Code, r.StatusCode)
	}
	return fmt.Errorf("%s (status %d)", r.Error, r.StatusCode)
}

// buildURL 构建完整的URL
func buildURL(baseURL, path string, params map[string]interface{}) (string, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return "", fmt.Errorf("invalid base URL: %w", err)
	}

	if u.Path == "" {
		u.Path = path
	} else {
		u.Path = strings.TrimSuffix(u.Path, "/") + "/" + strings.TrimPrefix(path, "/")
	}

	if params != nil {
		q := u.Query()
		for key, value := range params {
			switch v := value.(type) {
			case string:
				q.Set(key, v)
			case bool:
				q.Set(key, fmt.Sprintf("%t", v))
			default:
				q.Set(key, fmt.Sprintf("%v", v))
			}
		}
		u.RawQuery = q.Encode()
	}
	return u.String(), nil
}

// serializeData 序列化请求数据
func serializeData(data interface{}) (io.Reader, error) {
	if data == nil {
		return nil, nil
	}
	jsonData, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize data: %w", err)
	}
	return bytes.NewReader(jsonData), nil
}

// deserializeResponse 读取响应，错误响应解析为models.ErrorResponse
func deserializeResponse(resp *http.Response) (*HTTPResponse, error) {
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	httpResp := &HTTPResponse{
		StatusCode: resp.StatusCode,
		Headers:    resp.Header,
		Body:       body,
	}
	if httpResp.OK() {
		return httpResp, nil
	}
	if len(body) == 0 {
		httpResp.Error = resp.Status
	} else {
		var errBody models.ErrorResponse
		if err := json.Unmarshal(body, &errBody); err != nil {
			httpResp.Error = strings.TrimSpace(string(body))
		} else {
			httpResp.Code = errBody.Code
			httpResp.Error = errBody.Error
		}
	}
	if httpResp.Error == "" {
		httpResp.Error = "Unknown error"
	}
	return httpResp, nil
}
