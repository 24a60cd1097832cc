package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/skillhublearning/skillhub-client/internal/session"
	"github.com/skillhublearning/skillhub-client/pkg/config"
	pkgerrors "github.com/skillhublearning/skillhub-client/pkg/errors"
	"github.com/skillhublearning/skillhub-client/pkg/logger"
	"github.com/skillhublearning/skillhub-client/pkg/metrics"
)

// Client is the single request path to the backend: it attaches the bearer
// token, serializes JSON or multipart bodies, applies the configured
// timeout, and normalizes every failure into a typed domain error.
type Client struct {
	baseURL string
	http    *http.Client
	sess    *session.Session
	log     *logger.Logger
	metrics *metrics.RequestMetrics
}

func NewClient(cfg config.APIConfig, sess *session.Session, log *logger.Logger, reqMetrics *metrics.RequestMetrics) (*Client, error) {
	if strings.TrimSpace(cfg.BaseURL) == "" {
		return nil, fmt.Errorf("api base url is required")
	}
	if sess == nil {
		return nil, fmt.Errorf("session is required")
	}
	if log == nil {
		return nil, fmt.Errorf("logger is required")
	}
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		http:    &http.Client{Timeout: cfg.Timeout},
		sess:    sess,
		log:     log,
		metrics: reqMetrics,
	}, nil
}

type request struct {
	endpoint    string
	method      string
	path        string
	body        any
	multipart   *multipartBody
	authed      bool
	wantStatus  []int
	destination any
}

type multipartBody struct {
	fields map[string]string
	files  map[string]multipartFile
}

type multipartFile struct {
	name    string
	content io.Reader
}

func (c *Client) do(ctx context.Context, req request) error {
	ctx = c.log.WithRequestID(ctx, uuid.NewString())
	ctx = c.log.WithField(ctx, "endpoint", req.endpoint)

	httpReq, err := c.buildRequest(ctx, req)
	if err != nil {
		return err
	}

	started := time.Now()
	resp, err := c.http.Do(httpReq)
	c.metrics.ObserveDuration(req.endpoint, time.Since(started))
	if err != nil {
		c.metrics.IncFailure(req.endpoint)
		c.log.Error(ctx, "request failed before a response arrived", err)
		return pkgerrors.Wrap(pkgerrors.CodeNetwork, err, "")
	}
	defer resp.Body.Close()

	c.metrics.IncRequest(req.endpoint, resp.StatusCode)
	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeNetwork, err, "reading response")
	}

	if !statusAccepted(resp.StatusCode, req.wantStatus) {
		return c.rejectionError(ctx, resp.StatusCode, payload)
	}

	if req.destination != nil && len(payload) > 0 {
		if err := json.Unmarshal(payload, req.destination); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeServer, err, "malformed response from server")
		}
	}
	return nil
}

func (c *Client) buildRequest(ctx context.Context, req request) (*http.Request, error) {
	var body io.Reader
	contentType := ""

	switch {
	case req.multipart != nil:
		buf := &bytes.Buffer{}
		writer := multipart.NewWriter(buf)
		for field, value := range req.multipart.fields {
			if err := writer.WriteField(field, value); err != nil {
				return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "building multipart body")
			}
		}
		for field, file := range req.multipart.files {
			part, err := writer.CreateFormFile(field, file.name)
			if err != nil {
				return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "building multipart body")
			}
			if _, err := io.Copy(part, file.content); err != nil {
				return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "building multipart body")
			}
		}
		if err := writer.Close(); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "building multipart body")
		}
		body = buf
		contentType = writer.FormDataContentType()
	case req.body != nil:
		encoded, err := json.Marshal(req.body)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encoding request body")
		}
		body = bytes.NewReader(encoded)
		contentType = "application/json"
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.method, c.baseURL+req.path, body)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "building request")
	}
	if contentType != "" {
		httpReq.Header.Set("Content-Type", contentType)
	}

	if req.authed {
		token := c.sess.Token(ctx)
		if token == "" {
			return nil, pkgerrors.New(pkgerrors.CodeAuthRequired, "")
		}
		httpReq.Header.Set("Authorization", "Bearer "+token)
	}
	return httpReq, nil
}

// rejectionError maps a non-success response onto the domain taxonomy,
// keeping the server's message verbatim when one is present.
func (c *Client) rejectionError(ctx context.Context, status int, payload []byte) error {
	message := serverMessage(payload)

	if status == http.StatusUnauthorized || strings.EqualFold(message, "Invalid token") {
		c.log.Warn(ctx, "backend rejected the auth token")
		return pkgerrors.New(pkgerrors.CodeAuthRequired, message)
	}

	c.log.Warn(ctx, fmt.Sprintf("server rejected request with status %d", status))
	return pkgerrors.New(pkgerrors.CodeServer, message).WithDetails(map[string]any{"status": status})
}

func serverMessage(payload []byte) string {
	var parsed messageResponse
	if err := json.Unmarshal(payload, &parsed); err == nil && parsed.Message != "" {
		return parsed.Message
	}
	return ""
}

func statusAccepted(status int, accepted []int) bool {
	if len(accepted) == 0 {
		return status == http.StatusOK || status == http.StatusCreated
	}
	for _, want := range accepted {
		if status == want {
			return true
		}
	}
	return false
}
