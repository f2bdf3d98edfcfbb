package rpc

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"

	"vanblog/internal/logger"
)

// httpClient 通过unix socket或tcp连接keeper
type httpClient struct {
	config    *HTTPConfig
	client    *http.Client
	transport *http.Transport
}

/**
 * Create new HTTP client
 * @param {*HTTPConfig} config - Client configuration, nil uses DefaultHTTPConfig
 * @returns {HTTPClient} HTTP client interface
 * @description
 * - Every connection is dialed to config.Network/config.Address,
 *   the host in BaseURL is only used for the Host header
 */
func NewHTTPClient(config *HTTPConfig) HTTPClient {
	if config == nil {
		config = DefaultHTTPConfig()
	}
	dialer := &net.Dialer{Timeout: config.Timeout}
	transport := &http.Transport{
		DialContext: func(ctx context.Context, _, _ string) (net.Conn, error) {
			return dialer.DialContext(ctx, config.Network, config.Address)
		},
	}
	return &httpClient{
		config:    config,
		transport: transport,
		client: &http.Client{
			Transport: transport,
			Timeout:   config.Timeout,
		},
	}
}

func (c *httpClient) Get(path string, params map[string]interface{}) (*HTTPResponse, error) {
	return c.do(http.MethodGet, path, params, "", nil)
}

func (c *httpClient) Post(path string, data interface{}) (*HTTPResponse, error) {
	body, err := serializeData(data)
	if err != nil {
		return nil, err
	}
	return c.do(http.MethodPost, path, nil, "application/json", body)
}

// PostRaw 原样提交请求体，用于上传备份文件
func (c *httpClient) PostRaw(path string, contentType string, body io.Reader) (*HTTPResponse, error) {
	return c.do(http.MethodPost, path, nil, contentType, body)
}

func (c *httpClient) Put(path string, data interface{}) (*HTTPResponse, error) {
	body, err := serializeData(data)
	if err != nil {
		return nil, err
	}
	return c.do(http.MethodPut, path, nil, "application/json", body)
}

/**
 * Send a request to the keeper
 * @returns {*HTTPResponse} Response, non-2xx status is not an error
 * @returns {error} Error if the keeper can't be reached
 */
func (c *httpClient) do(method, path string, params map[string]interface{}, contentType string, body io.Reader) (*HTTPResponse, error) {
	url, err := buildURL(c.config.BaseURL, path, params)
	if err != nil {
		return nil, fmt.Errorf("failed to build URL: %w", err)
	}
	logger.Debugf("Sending %s request to %s via %s://%s", method, url, c.config.Network, c.config.Address)

	ctx, cancel := context.WithTimeout(context.Background(), c.config.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil && contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	return deserializeResponse(resp)
}

func (c *httpClient) Close() error {
	c.client.CloseIdleConnections()
	c.transport.CloseIdleConnections()
	return nil
}
