// Package apiclient talks to the spreadsheet processing service.
package apiclient

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"strings"

	"planilhas/config"
	apperrors "planilhas/errors"
	"planilhas/interpret"
	"planilhas/saver"
	"planilhas/submission"
	"planilhas/types"

	"go.uber.org/zap"
)

const (
	maxErrorBody = 64 << 10
	acceptHeader = "application/json, " + types.MIMEXLSX + ", " + types.MIMECSV
)

type Client struct {
	cfg        *config.Config
	httpClient *http.Client
	logger     *zap.Logger
}

func New(cfg *config.Config, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	// A zero RequestTimeout leaves the call bounded only by ctx.
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.RequestTimeout},
		logger:     logger,
	}
}

// NewWithHTTPClient is New with a caller-supplied transport.
func NewWithHTTPClient(cfg *config.Config, hc *http.Client, logger *zap.Logger) *Client {
	c := New(cfg, logger)
	c.httpClient = hc
	return c
}

// ProcessURL is the endpoint submissions are posted to.
func (c *Client) ProcessURL() string {
	return c.cfg.APIBase + "/process"
}

// ResolveURL makes a server-relative artifact link absolute. Absolute links
// are returned unchanged.
func (c *Client) ResolveURL(ref string) string {
	if u, err := url.Parse(ref); err == nil && u.IsAbs() {
		return ref
	}
	if !strings.HasPrefix(ref, "/") {
		ref = "/" + ref
	}
	return c.cfg.APIBase + ref
}

// Process posts sub as one multipart request. The response is returned as
// is; the caller owns its body. There is no retry.
func (c *Client) Process(ctx context.Context, sub *submission.Submission) (*http.Response, error) {
	body, contentType := sub.Reader()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.ProcessURL(), body)
	if err != nil {
		body.Close()
		return nil, fmt.Errorf("create process request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", acceptHeader)

	c.logger.Debug("Posting submission",
		zap.String("url", req.URL.String()),
		zap.Int("files", len(sub.Parts)),
		zap.String("session_id", sub.SessionID),
		zap.Bool("download", sub.Download))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	c.logger.Debug("Process reply",
		zap.Int("status", resp.StatusCode),
		zap.String("content_type", resp.Header.Get("Content-Type")))
	return resp, nil
}

// FetchArtifact downloads a hosted artifact and stores it through s,
// returning the saved path.
func (c *Client) FetchArtifact(ctx context.Context, ref string, s saver.Saver) (string, error) {
	target := c.ResolveURL(ref)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return "", fmt.Errorf("create download request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", &apperrors.TransportError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return "", &apperrors.TransportError{
			Status: resp.StatusCode,
			Detail: interpret.ErrorDetail(body),
		}
	}

	name := interpret.DispositionFilename(resp.Header.Get("Content-Disposition"))
	if name == "" {
		name = artifactName(req.URL, resp.Header.Get("Content-Type"))
	}

	saved, err := s.Save(name, resp.Body)
	if err != nil {
		return "", apperrors.WrapErrorf(err, "saving %s", name)
	}
	c.logger.Info("Downloaded artifact", zap.String("url", target), zap.String("path", saved))
	return saved, nil
}

func artifactName(u *url.URL, contentType string) string {
	if base := path.Base(u.Path); base != "" && base != "/" && base != "." {
		return base
	}
	return interpret.DefaultFilename(contentType)
}
