// Package quran is a small client for the Quran Foundation content API.
// Access tokens come from the OAuth2 client-credentials flow and are reused
// until they expire; verse responses are kept in an LRU keyed by request URL.
package quran

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

var ErrInvalidVerseKey = errors.New("quran: invalid verse key")

type Config struct {
	ClientID     string
	ClientSecret string
	TokenURL     string
	APIURL       string // e.g. https://apis.quran.foundation/content/api/v4

	Timeout   time.Duration // default: 10s
	CacheSize int           // verse responses kept, default: 10000

	HTTPClient *http.Client
}

func (c *Config) validate() error {
	switch {
	case c.ClientID == "":
		return errors.New("ClientID is required")
	case c.ClientSecret == "":
		return errors.New("ClientSecret is required")
	case c.TokenURL == "":
		return errors.New("TokenURL is required")
	case c.APIURL == "":
		return errors.New("APIURL is required")
	}
	if _, err := url.Parse(c.APIURL); err != nil {
		return fmt.Errorf("APIURL: %w", err)
	}
	return nil
}

type Client struct {
	cfg        Config
	apiURL     *url.URL
	httpClient *http.Client
	tokens     oauth2.TokenSource
	verses     *lru.Cache[string, *VerseByKeyResponse]
	logger     *zap.Logger
}

// NewClient validates cfg and prepares the token source. No network call is
// made until the first request.
func NewClient(cfg Config, logger *zap.Logger) (*Client, error) {
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid quran config: %w", err)
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.CacheSize <= 0 {
		cfg.CacheSize = 10000
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	apiURL, _ := url.Parse(strings.TrimRight(cfg.APIURL, "/"))

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}

	cc := &clientcredentials.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		TokenURL:     cfg.TokenURL,
		Scopes:       []string{"content"},
		AuthStyle:    oauth2.AuthStyleInHeader,
	}
	tokenCtx := context.WithValue(context.Background(), oauth2.HTTPClient, httpClient)

	verses, err := lru.New[string, *VerseByKeyResponse](cfg.CacheSize)
	if err != nil {
		return nil, err
	}

	return &Client{
		cfg:        cfg,
		apiURL:     apiURL,
		httpClient: httpClient,
		tokens:     cc.TokenSource(tokenCtx),
		verses:     verses,
		logger:     logger.Named("quran"),
	}, nil
}

// AccessToken returns a valid token, fetching a new one only when the
// cached token has expired.
func (c *Client) AccessToken() (string, error) {
	tok, err := c.tokens.Token()
	if err != nil {
		return "", fmt.Errorf("quran: fetch access token: %w", err)
	}
	return tok.AccessToken, nil
}

// VerseURL builds the request URL for key with opts. The result is also the
// verse cache key, so parameter order is canonical.
func (c *Client) VerseURL(key string, opts VerseOptions) string {
	u := c.apiURL.JoinPath("verses", "by_key", key)
	u.RawQuery = opts.values().Encode()
	return u.String()
}

// GetVerse fetches one verse by its surah:verse key.
func (c *Client) GetVerse(ctx context.Context, key string, opts VerseOptions) (*VerseByKeyResponse, error) {
	if !ValidKey(key) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidVerseKey, key)
	}

	reqURL := c.VerseURL(key, opts)
	if cached, ok := c.verses.Get(reqURL); ok {
		c.logger.Debug("verse cache hit", zap.String("verse_key", key))
		return cached, nil
	}

	var out VerseByKeyResponse
	if err := c.getJSON(ctx, reqURL, &out); err != nil {
		return nil, err
	}

	c.verses.Add(reqURL, &out)
	return &out, nil
}

// TranslationResources lists the translations the API offers.
func (c *Client) TranslationResources(ctx context.Context) (*TranslationResourcesResponse, error) {
	var out TranslationResourcesResponse
	if err := c.getJSON(ctx, c.apiURL.JoinPath("resources", "translations").String(), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CachedVerses returns the number of cached verse responses.
func (c *Client) CachedVerses() int {
	return c.verses.Len()
}

func (c *Client) getJSON(ctx context.Context, reqURL string, v any) error {
	start := time.Now()

	token, err := c.AccessToken()
	if err != nil {
		c.logger.Error("quran token request failed", zap.Error(err))
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("quran: build request: %w", err)
	}
	req.Header.Set("x-auth-token", token)
	req.Header.Set("x-client-id", c.cfg.ClientID)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("quran: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		c.logger.Warn("quran api error",
			zap.Int("status", resp.StatusCode),
			zap.String("url", reqURL),
			zap.Duration("duration", time.Since(start)),
		)
		return &APIError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("quran: decode response: %w", err)
	}

	c.logger.Debug("quran api request completed",
		zap.String("url", reqURL),
		zap.Duration("duration", time.Since(start)),
	)
	return nil
}
