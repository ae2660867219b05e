package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"kitsubot/internal/models"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

const (
	kitsuAPIURL        = "https://kitsu.io/api/edge"
	jsonAPIType        = "application/vnd.api+json"
	defaultTimeout     = 30 * time.Second
	requestsPerSecond  = 2
	maxRetries         = 3
	retryDelay         = 2 * time.Second
	userAgent          = "kitsubot/1.0"
	pageLimit          = 10
	maxResponseSize    = 5 * 1024 * 1024
	entriesCachePrefix = "kitsu:entries:"
	detailCachePrefix  = "kitsu:detail:"
	entriesCacheTTL    = 2 * time.Minute
	detailCacheTTL     = 2 * time.Minute
)

// KitsuClient reads and updates anime library entries through the Kitsu
// JSON:API. Read responses are cached in redis with short TTLs; a progress
// update drops the affected user's cached pages.
type KitsuClient struct {
	baseURL    string
	httpClient *http.Client
	logger     *logrus.Logger
	limiter    *rate.Limiter
	redis      *redis.Client
	maxRetries int
	retryDelay time.Duration
}

type KitsuClientConfig struct {
	BaseURL    string
	Timeout    time.Duration
	RateLimit  rate.Limit
	MaxRetries int
	RetryDelay time.Duration
	Logger     *logrus.Logger
	Redis      *redis.Client
}

func NewKitsuClient(redisClient *redis.Client, logger *logrus.Logger) *KitsuClient {
	return NewKitsuClientWithConfig(&KitsuClientConfig{
		BaseURL:    kitsuAPIURL,
		Timeout:    defaultTimeout,
		RateLimit:  requestsPerSecond,
		MaxRetries: maxRetries,
		RetryDelay: retryDelay,
		Logger:     logger,
		Redis:      redisClient,
	})
}

func NewKitsuClientWithConfig(config *KitsuClientConfig) *KitsuClient {
	if config.Logger == nil {
		config.Logger = logrus.New()
	}
	if config.RateLimit == 0 {
		config.RateLimit = requestsPerSecond
	}
	if config.MaxRetries == 0 {
		config.MaxRetries = maxRetries
	}
	if config.RetryDelay == 0 {
		config.RetryDelay = retryDelay
	}

	return &KitsuClient{
		baseURL: config.BaseURL,
		httpClient: &http.Client{
			Timeout: config.Timeout,
			Transport: &http.Transport{
				MaxIdleConns:          100,
				MaxIdleConnsPerHost:   10,
				IdleConnTimeout:       90 * time.Second,
				TLSHandshakeTimeout:   10 * time.Second,
				ExpectContinueTimeout: 1 * time.Second,
			},
		},
		logger:     config.Logger,
		limiter:    rate.NewLimiter(config.RateLimit, 1),
		redis:      config.Redis,
		maxRetries: config.MaxRetries,
		retryDelay: config.RetryDelay,
	}
}

// FetchEntries returns one page of a user's anime library, the anime
// documents the entries reference, and the neighbouring page offsets.
func (c *KitsuClient) FetchEntries(ctx context.Context, kitsuId, offset int64) (*models.EntryPage, error) {
	cacheKey := fmt.Sprintf("%s%d:%d", entriesCachePrefix, kitsuId, offset)

	var response models.KitsuEntriesResponse
	if !c.readCache(ctx, cacheKey, &response) {
		params := url.Values{}
		params.Set("filter[userId]", strconv.FormatInt(kitsuId, 10))
		params.Set("filter[kind]", "anime")
		params.Set("include", "anime")
		params.Set("page[limit]", strconv.Itoa(pageLimit))
		params.Set("page[offset]", strconv.FormatInt(offset, 10))
		params.Set("sort", "status,-progressedAt")

		requestURL := fmt.Sprintf("%s/library-entries?%s", c.baseURL, params.Encode())

		body, err := c.makeRequest(ctx, http.MethodGet, requestURL, "", nil)
		if err != nil {
			return nil, err
		}

		if err := json.Unmarshal(body, &response); err != nil {
			return nil, fmt.Errorf("failed to unmarshal library entries: %w", err)
		}

		c.writeCache(ctx, cacheKey, response, entriesCacheTTL)
	}

	page := &models.EntryPage{
		Entries: response.Data,
		Anime:   make(map[string]models.Anime, len(response.Included)),
		Prev:    pageOffset(response.Links.Prev),
		Next:    pageOffset(response.Links.Next),
	}
	for _, anime := range response.Included {
		page.Anime[anime.Id] = anime
	}

	return page, nil
}

// GetEntry returns the user's library entry for one anime together with
// the anime document.
func (c *KitsuClient) GetEntry(ctx context.Context, kitsuId, animeId int64) (*models.EntryDetail, error) {
	cacheKey := fmt.Sprintf("%s%d:%d", detailCachePrefix, kitsuId, animeId)

	var response models.KitsuEntriesResponse
	if !c.readCache(ctx, cacheKey, &response) {
		params := url.Values{}
		params.Set("filter[userId]", strconv.FormatInt(kitsuId, 10))
		params.Set("filter[animeId]", strconv.FormatInt(animeId, 10))
		params.Set("include", "anime")

		requestURL := fmt.Sprintf("%s/library-entries?%s", c.baseURL, params.Encode())

		body, err := c.makeRequest(ctx, http.MethodGet, requestURL, "", nil)
		if err != nil {
			return nil, err
		}

		if err := json.Unmarshal(body, &response); err != nil {
			return nil, fmt.Errorf("failed to unmarshal library entry: %w", err)
		}

		c.writeCache(ctx, cacheKey, response, detailCacheTTL)
	}

	if len(response.Data) == 0 {
		return nil, fmt.Errorf("no library entry for anime %d in list %d", animeId, kitsuId)
	}

	detail := &models.EntryDetail{Entry: response.Data[0]}
	for i, anime := range response.Included {
		if anime.Id == strconv.FormatInt(animeId, 10) {
			detail.Anime = &response.Included[i]
			break
		}
	}

	return detail, nil
}

// UpdateProgress patches the watched-episode count of a library entry on
// behalf of the user owning the access token.
func (c *KitsuClient) UpdateProgress(ctx context.Context, token, entryId string, progress int64, animeId string) error {
	payload := map[string]interface{}{
		"data": map[string]interface{}{
			"id":   entryId,
			"type": "libraryEntries",
			"attributes": map[string]interface{}{
				"progress": progress,
			},
			"relationships": map[string]interface{}{
				"anime": map[string]interface{}{
					"data": map[string]interface{}{
						"type": "anime",
						"id":   animeId,
					},
				},
			},
		},
	}

	jsonData, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal progress update: %w", err)
	}

	requestURL := fmt.Sprintf("%s/library-entries/%s", c.baseURL, entryId)

	if _, err := c.makeRequest(ctx, http.MethodPatch, requestURL, token, jsonData); err != nil {
		return err
	}

	return nil
}

// InvalidateUser drops the cached pages and detail documents of one user.
// Called after a progress update so a subsequent back-navigation does not
// show the stale count. Best effort: a cache miss costs one extra fetch.
func (c *KitsuClient) InvalidateUser(ctx context.Context, kitsuId int64) {
	if c.redis == nil {
		return
	}

	for _, prefix := range []string{entriesCachePrefix, detailCachePrefix} {
		pattern := fmt.Sprintf("%s%d:*", prefix, kitsuId)
		iter := c.redis.Scan(ctx, 0, pattern, 0).Iterator()
		for iter.Next(ctx) {
			if err := c.redis.Del(ctx, iter.Val()).Err(); err != nil {
				c.logger.WithError(err).Warn("Failed to drop cached Kitsu response")
			}
		}
		if err := iter.Err(); err != nil {
			c.logger.WithError(err).Warn("Failed to scan Kitsu cache keys")
		}
	}
}

func (c *KitsuClient) readCache(ctx context.Context, key string, out interface{}) bool {
	if c.redis == nil {
		return false
	}

	cached, err := c.redis.Get(ctx, key).Result()
	if err != nil {
		if err != redis.Nil {
			c.logger.WithError(err).Warn("Failed to read from Redis")
		}
		return false
	}

	if err := json.Unmarshal([]byte(cached), out); err != nil {
		c.logger.WithError(err).Warn("Failed to unmarshal cached Kitsu response")
		return false
	}

	c.logger.WithField("key", key).Debug("Retrieved Kitsu response from cache")
	return true
}

func (c *KitsuClient) writeCache(ctx context.Context, key string, value interface{}, ttl time.Duration) {
	if c.redis == nil {
		return
	}

	responseJSON, err := json.Marshal(value)
	if err != nil {
		c.logger.WithError(err).Warn("Failed to marshal Kitsu response for caching")
		return
	}

	if err := c.redis.Set(ctx, key, responseJSON, ttl).Err(); err != nil {
		c.logger.WithError(err).Warn("Failed to write Kitsu response to cache")
	}
}

func (c *KitsuClient) makeRequest(ctx context.Context, method, requestURL, token string, body []byte) ([]byte, error) {
	var rErr error

	for attempt := 0; attempt < c.maxRetries; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter interrupted: %w", err)
		}

		var reader io.Reader
		if body != nil {
			reader = bytes.NewReader(body)
		}

		req, err := http.NewRequestWithContext(ctx, method, requestURL, reader)
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}

		req.Header.Set("User-Agent", userAgent)
		req.Header.Set("Accept", jsonAPIType)
		if body != nil {
			req.Header.Set("Content-Type", jsonAPIType)
		}
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			rErr = fmt.Errorf("failed to make HTTP request: %w", err)
			c.retryLogger(attempt, requestURL, err)
			c.waitForRetry(ctx, attempt)
			continue
		}

		if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
			resp.Body.Close()
			rErr = fmt.Errorf("kitsu API returned status code %d", resp.StatusCode)
			// Client errors will not heal on retry.
			if resp.StatusCode >= http.StatusBadRequest && resp.StatusCode < http.StatusInternalServerError {
				return nil, rErr
			}
			c.retryLogger(attempt, requestURL, rErr)
			c.waitForRetry(ctx, attempt)
			continue
		}

		responseBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize+1))
		resp.Body.Close()
		if err != nil {
			rErr = fmt.Errorf("failed to read response body: %w", err)
			c.retryLogger(attempt, requestURL, err)
			c.waitForRetry(ctx, attempt)
			continue
		}
		if len(responseBody) > maxResponseSize {
			return nil, fmt.Errorf("response too large: exceeded %d bytes", maxResponseSize)
		}

		c.logger.WithFields(logrus.Fields{
			"url":           requestURL,
			"attempt":       attempt,
			"status":        resp.StatusCode,
			"response_size": len(responseBody),
		}).Debug("Kitsu API request successful")

		return responseBody, nil
	}

	return nil, fmt.Errorf("failed after %d attempts: %w", c.maxRetries, rErr)
}

func (c *KitsuClient) retryLogger(attempt int, requestURL string, err error) {
	c.logger.WithFields(logrus.Fields{
		"attempt": attempt + 1,
		"url":     requestURL,
		"error":   err.Error(),
	}).Warn("Kitsu API request failed, retrying...")
}

func (c *KitsuClient) waitForRetry(ctx context.Context, attempt int) {
	if attempt >= c.maxRetries-1 {
		return
	}

	delay := time.Duration(attempt+1) * c.retryDelay
	c.logger.WithField("delay", delay).Debug("waiting before retry")

	select {
	case <-time.After(delay):
	case <-ctx.Done():
	}
}

// pageOffset pulls the page[offset] parameter out of a Kitsu pagination
// link. Absent or unparseable links mean there is no such page.
func pageOffset(link string) *int64 {
	if link == "" {
		return nil
	}

	u, err := url.Parse(link)
	if err != nil {
		return nil
	}

	raw := u.Query().Get("page[offset]")
	if raw == "" {
		return nil
	}

	offset, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || offset < 0 {
		return nil
	}

	return &offset
}
