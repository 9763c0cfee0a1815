// Package service contains infrastructure services that adapt external
// resources to the application layer's collaborator interfaces.
package service

import (
	"context"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/blake2b"

	"github.com/solvecircle/dailyproof/pkg/retry"
)

// ══════════════════════════════════════════════════════════════════════════════
// ARTIFACT SERVICE
// Rehosts transient attachment URLs into content-addressed files under a
// local artifact directory. The ledger then records the stable reference
// instead of a CDN link that expires.
// ══════════════════════════════════════════════════════════════════════════════

// maxArtifactSize caps a single proof download. Screenshots are small;
// anything bigger is either abuse or a mistake.
const maxArtifactSize = 25 << 20

// ArtifactConfig contains configuration for the artifact service.
type ArtifactConfig struct {
	// Dir is the directory artifacts are written to.
	Dir string

	// BaseURL is the public prefix of the stable references, e.g.
	// "https://proofs.example.org/artifacts". References are
	// "<BaseURL>/<hash><ext>".
	BaseURL string

	// FetchTimeout bounds one download attempt.
	FetchTimeout time.Duration

	// Logger for structured logging.
	Logger *slog.Logger
}

// ArtifactService fetches, content-addresses and stores proof artifacts.
type ArtifactService struct {
	config     ArtifactConfig
	httpClient *http.Client
	retrier    *retry.Retrier
	logger     *slog.Logger
}

// NewArtifactService creates the service and its artifact directory.
func NewArtifactService(config ArtifactConfig) (*ArtifactService, error) {
	if config.FetchTimeout == 0 {
		config.FetchTimeout = 30 * time.Second
	}
	if config.Logger == nil {
		config.Logger = slog.Default()
	}
	if err := os.MkdirAll(config.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("artifact: failed to create directory: %w", err)
	}

	return &ArtifactService{
		config:     config,
		httpClient: &http.Client{Timeout: config.FetchTimeout},
		retrier: retry.New(
			retry.WithMaxAttempts(3),
			retry.WithInitialDelay(500*time.Millisecond),
			retry.WithMaxDelay(5*time.Second),
		),
		logger: config.Logger.With("component", "artifact"),
	}, nil
}

// Rehost downloads the transient URL and stores the bytes under a
// content-addressed name, returning the stable reference URL. Identical
// bytes rehost to the same reference, so re-submitting the same
// screenshot costs one file, not two.
func (s *ArtifactService) Rehost(ctx context.Context, sourceURL string) (string, error) {
	var data []byte
	var contentType string

	err := s.retrier.Do(ctx, func(ctx context.Context) error {
		var err error
		data, contentType, err = s.fetch(ctx, sourceURL)
		return err
	})
	if err != nil {
		return "", fmt.Errorf("artifact: fetch failed: %w", err)
	}

	sum := blake2b.Sum256(data)
	name := hex.EncodeToString(sum[:16]) + extensionFor(contentType, sourceURL)
	final := filepath.Join(s.config.Dir, name)

	if _, err := os.Stat(final); err == nil {
		return s.referenceFor(name), nil
	}

	// Stage under a unique name, then rename. The rename is atomic on the
	// same filesystem, so readers never observe a partial artifact.
	staging := filepath.Join(s.config.Dir, "."+uuid.NewString()+".tmp")
	if err := os.WriteFile(staging, data, 0o644); err != nil {
		return "", fmt.Errorf("artifact: failed to stage: %w", err)
	}
	if err := os.Rename(staging, final); err != nil {
		os.Remove(staging)
		return "", fmt.Errorf("artifact: failed to publish: %w", err)
	}

	s.logger.Debug("artifact stored", "name", name, "bytes", len(data))
	return s.referenceFor(name), nil
}

// fetch performs one download attempt. Server-side failures are marked
// retryable; client errors (gone attachment, bad URL) are permanent.
func (s *ArtifactService) fetch(ctx context.Context, sourceURL string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, sourceURL, nil)
	if err != nil {
		return nil, "", retry.Permanent(fmt.Errorf("create request: %w", err))
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, "", retry.Retryable(fmt.Errorf("http request: %w", err))
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests:
		return nil, "", retry.Retryable(fmt.Errorf("status %d", resp.StatusCode))
	case resp.StatusCode != http.StatusOK:
		return nil, "", retry.Permanent(fmt.Errorf("status %d", resp.StatusCode))
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxArtifactSize+1))
	if err != nil {
		return nil, "", retry.Retryable(fmt.Errorf("read body: %w", err))
	}
	if len(data) > maxArtifactSize {
		return nil, "", retry.Permanent(fmt.Errorf("artifact exceeds %d bytes", maxArtifactSize))
	}

	return data, resp.Header.Get("Content-Type"), nil
}

func (s *ArtifactService) referenceFor(name string) string {
	return strings.TrimRight(s.config.BaseURL, "/") + "/" + name
}

// extensionFor picks a file extension from the content type, falling
// back to the source URL's extension.
func extensionFor(contentType, sourceURL string) string {
	if contentType != "" {
		if mt, _, err := mime.ParseMediaType(contentType); err == nil {
			switch mt {
			case "image/png":
				return ".png"
			case "image/jpeg":
				return ".jpg"
			case "image/gif":
				return ".gif"
			case "image/webp":
				return ".webp"
			}
		}
	}

	ext := filepath.Ext(sourceURL)
	if i := strings.IndexByte(ext, '?'); i >= 0 {
		ext = ext[:i]
	}
	if ext != "" && len(ext) <= 5 {
		return ext
	}
	return ".bin"
}
