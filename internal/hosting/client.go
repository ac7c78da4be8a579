// Package hosting talks to the source hosting service: it downloads
// repository archives and lists repository tags.
package hosting

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/kudosx/kudosx/internal/config"
)

// StatusError reports a non-200 HTTP response.
type StatusError struct {
	URL        string
	StatusCode int
	Status     string
}

// Error implements the error interface.
func (e *StatusError) Error() string {
	return fmt.Sprintf("GET %s: HTTP %s", e.URL, e.Status)
}

// Options configures a Client.
type Options struct {
	// Verify selects what happens after a certificate failure.
	Verify config.VerifyPolicy

	// Timeout bounds a whole request including the body. Zero means no limit
	// beyond the caller's context.
	Timeout time.Duration

	// Transport overrides the verified transport. Used by tests.
	Transport *http.Transport

	Logger *slog.Logger
}

// Client performs HTTP GETs, verifying certificates first.
type Client struct {
	verified   *http.Client
	unverified *http.Client
	policy     config.VerifyPolicy
	logger     *slog.Logger
}

// NewClient creates a Client.
func NewClient(opts Options) *Client {
	base := opts.Transport
	if base == nil {
		base = http.DefaultTransport.(*http.Transport).Clone()
	}

	insecure := base.Clone()
	if insecure.TLSClientConfig == nil {
		insecure.TLSClientConfig = &tls.Config{}
	}
	insecure.TLSClientConfig.InsecureSkipVerify = true

	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	policy := opts.Verify
	if policy == "" {
		policy = config.VerifyFallback
	}

	return &Client{
		verified:   &http.Client{Transport: base, Timeout: opts.Timeout},
		unverified: &http.Client{Transport: insecure, Timeout: opts.Timeout},
		policy:     policy,
		logger:     logger,
	}
}

// Get fetches url and returns the body.
func (c *Client) Get(ctx context.Context, url string) ([]byte, error) {
	resp, err := c.do(ctx, url)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", url, err)
	}
	return data, nil
}

// Download streams url into w and returns the number of bytes written.
func (c *Client) Download(ctx context.Context, url string, w io.Writer) (int64, error) {
	resp, err := c.do(ctx, url)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	n, err := io.Copy(w, resp.Body)
	if err != nil {
		return n, fmt.Errorf("reading %s: %w", url, err)
	}
	return n, nil
}

// do issues the request, retrying once without verification when the policy
// allows it and the first attempt failed on the certificate.
func (c *Client) do(ctx context.Context, url string) (*http.Response, error) {
	resp, err := c.get(ctx, c.verified, url)
	if err != nil && c.policy == config.VerifyFallback && IsCertificateError(err) {
		c.logger.Warn("certificate verification failed, retrying without verification",
			"url", url, "error", err)
		resp, err = c.get(ctx, c.unverified, url)
	}
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, &StatusError{URL: url, StatusCode: resp.StatusCode, Status: resp.Status}
	}
	return resp, nil
}

func (c *Client) get(ctx context.Context, hc *http.Client, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "kudosx")
	return hc.Do(req)
}

// IsCertificateError reports whether err comes from certificate verification:
// an unknown authority, an invalid certificate or a hostname mismatch.
func IsCertificateError(err error) bool {
	var (
		unknown  x509.UnknownAuthorityError
		invalid  x509.CertificateInvalidError
		hostname x509.HostnameError
		verify   *tls.CertificateVerificationError
	)
	return errors.As(err, &unknown) ||
		errors.As(err, &invalid) ||
		errors.As(err, &hostname) ||
		errors.As(err, &verify)
}

// ArchiveURL returns the branch archive URL of repo on the hosting service.
func ArchiveURL(baseURL, repo, branch string) string {
	return fmt.Sprintf("%s/%s/archive/refs/heads/%s.zip", strings.TrimRight(baseURL, "/"), repo, branch)
}

// RepoURL returns the clone URL of repo on the hosting service.
func RepoURL(baseURL, repo string) string {
	return fmt.Sprintf("%s/%s.git", strings.TrimRight(baseURL, "/"), repo)
}
