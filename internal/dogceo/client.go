package dogceo

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const (
	// DefaultBaseURL is the public Dog CEO API root.
	DefaultBaseURL = "https://dog.ceo/api/"
	// DefaultImageCount is the number of gallery images requested per breed.
	DefaultImageCount = 10
	// StatusSuccess is the status literal of a successful response.
	StatusSuccess = "success"
)

// StatusError is returned when the API answers with a status other than
// "success".
type StatusError struct {
	Status string
}

func (e *StatusError) Error() string {
	return "API error status: " + e.Status
}

// Client wraps the Dog CEO REST API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a new Dog CEO API client. An empty baseURL uses
// DefaultBaseURL and a zero timeout falls back to 10 seconds.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// BaseURL returns the API root the client talks to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// ListAllBreeds returns every parent breed mapped to its sub-breeds.
func (c *Client) ListAllBreeds(ctx context.Context) (BreedListResponse, error) {
	var out BreedListResponse
	err := c.get(ctx, "breeds/list/all", &out)
	return out, err
}

// RandomImage returns one random image URL for a breed key.
func (c *Client) RandomImage(ctx context.Context, breed string) (ImageResponse, error) {
	var out ImageResponse
	err := c.get(ctx, "breed/"+breedPath(breed)+"/images/random", &out)
	return out, err
}

// RandomImages returns count random image URLs for a breed key.
func (c *Client) RandomImages(ctx context.Context, breed string, count int) (ImagesResponse, error) {
	var out ImagesResponse
	err := c.get(ctx, "breed/"+breedPath(breed)+"/images/random/"+strconv.Itoa(count), &out)
	return out, err
}

func (c *Client) get(ctx context.Context, path string, dst any) error {
	reqURL := c.baseURL + path

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("request creation failed: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("network error: %w", err)
	}
	defer resp.Body.Close()

	// Non-2xx response
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("API error: status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return fmt.Errorf("JSON decode error: %w", err)
	}
	return nil
}

// breedPath escapes each segment of a "parent/sub" key on its own so the
// separator survives as a path delimiter.
func breedPath(breed string) string {
	parts := strings.Split(breed, "/")
	for i, p := range parts {
		parts[i] = url.PathEscape(p)
	}
	return strings.Join(parts, "/")
}

// API response types

// BreedListResponse is the body of breeds/list/all.
type BreedListResponse struct {
	Status  string              `json:"status"`
	Message map[string][]string `json:"message"`
	// Parents lists the keys of Message in the order the API sent them.
	Parents []string `json:"-"`
}

// UnmarshalJSON decodes the body and records the parent order.
func (r *BreedListResponse) UnmarshalJSON(data []byte) error {
	var raw struct {
		Status  string          `json:"status"`
		Message json.RawMessage `json:"message"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	r.Status = raw.Status
	r.Message = nil
	r.Parents = nil
	if len(raw.Message) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw.Message, &r.Message); err != nil {
		return err
	}
	if r.Message == nil {
		return nil
	}
	parents, err := objectKeys(raw.Message)
	if err != nil {
		return err
	}
	r.Parents = parents
	return nil
}

// objectKeys returns the distinct keys of a JSON object in document order.
func objectKeys(data []byte) ([]string, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, errors.New("expected JSON object")
	}

	var keys []string
	seen := make(map[string]bool)
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, errors.New("expected object key")
		}
		var skip json.RawMessage
		if err := dec.Decode(&skip); err != nil {
			return nil, err
		}
		if !seen[key] {
			seen[key] = true
			keys = append(keys, key)
		}
	}
	return keys, nil
}

// ImageResponse is the body of a single random image request.
type ImageResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// ImagesResponse is the body of a random-N-images request.
type ImagesResponse struct {
	Status  string   `json:"status"`
	Message []string `json:"message"`
}
