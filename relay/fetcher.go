// Package relay downloads library documents through a CORS relay.
package relay

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/ZaguanLabs/formlingo"
)

const (
	// DefaultRelayURL is the public relay used when none is configured.
	DefaultRelayURL = "https://api.allorigins.win/raw"
	// DefaultDownloadURL is the direct-download endpoint of the document host.
	DefaultDownloadURL = "https://drive.google.com/uc"
)

// Config holds relay fetcher configuration.
type Config struct {
	RelayURL    string       // Defaults to DefaultRelayURL
	DownloadURL string       // Defaults to DefaultDownloadURL
	UserAgent   string       // Defaults to formlingo.UserAgent()
	MaxBytes    int64        // 0 means unlimited
	HTTPClient  *http.Client // Defaults to http.DefaultClient
}

// Fetcher is the HTTP implementation of formlingo.DocumentFetcher.
type Fetcher struct {
	client      *http.Client
	relayURL    string
	downloadURL string
	userAgent   string
	maxBytes    int64
}

// NewFetcher creates a relay fetcher.
func NewFetcher(cfg Config) *Fetcher {
	if cfg.RelayURL == "" {
		cfg.RelayURL = DefaultRelayURL
	}
	if cfg.DownloadURL == "" {
		cfg.DownloadURL = DefaultDownloadURL
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = formlingo.UserAgent()
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = http.DefaultClient
	}

	return &Fetcher{
		client:      cfg.HTTPClient,
		relayURL:    cfg.RelayURL,
		downloadURL: cfg.DownloadURL,
		userAgent:   cfg.UserAgent,
		maxBytes:    cfg.MaxBytes,
	}
}

// DirectDownloadURL returns the host's direct-download URL for documentID.
func (f *Fetcher) DirectDownloadURL(documentID string) string {
	q := url.Values{}
	q.Set("export", "download")
	q.Set("id", documentID)
	return f.downloadURL + "?" + q.Encode()
}

// RelayURL returns the relay URL wrapping the direct-download URL of documentID.
func (f *Fetcher) RelayURL(documentID string) string {
	return f.relayURL + "?url=" + url.QueryEscape(f.DirectDownloadURL(documentID))
}

// FetchDocument downloads documentID through the relay in a single attempt.
func (f *Fetcher) FetchDocument(ctx context.Context, documentID string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.RelayURL(documentID), nil)
	if err != nil {
		return nil, formlingo.NewNetworkError(err)
	}
	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, formlingo.NewNetworkError(err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &formlingo.FetchError{
			Kind:   formlingo.KindDownloadFailed,
			Status: resp.StatusCode,
			Message: fmt.Sprintf("Failed to download form (status: %d). "+
				"The link may be invalid, private, or the proxy may be down.", resp.StatusCode),
		}
	}

	// The host answers with an HTML interstitial instead of the file for
	// large or restricted documents.
	if strings.Contains(strings.ToLower(resp.Header.Get("Content-Type")), "text/html") {
		return nil, &formlingo.FetchError{
			Kind:    formlingo.KindUnexpectedHTMLResponse,
			Status:  resp.StatusCode,
			Message: `Could not download the form directly. Please use the "Upload File" tab to upload it manually.`,
		}
	}

	var body io.Reader = resp.Body
	if f.maxBytes > 0 {
		body = io.LimitReader(resp.Body, f.maxBytes+1)
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return nil, formlingo.NewNetworkError(err)
	}
	if f.maxBytes > 0 && int64(len(data)) > f.maxBytes {
		return nil, &formlingo.FetchError{
			Kind:    formlingo.KindDownloadFailed,
			Status:  resp.StatusCode,
			Message: fmt.Sprintf("Failed to download form: document exceeds the %d byte limit.", f.maxBytes),
		}
	}
	return data, nil
}

// Verify Fetcher implements formlingo.DocumentFetcher
var _ formlingo.DocumentFetcher = (*Fetcher)(nil)
