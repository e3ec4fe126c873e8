package blobstore

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
)

// Client uploads receipts and photographs to the external blob store and
// returns the opaque URL the engine stores and forwards. Content is never
// inspected here.
type Client interface {
	Upload(ctx context.Context, filename, contentType string, r io.Reader) (string, error)
}

// APIClient is a resty-backed implementation of Client.
type APIClient struct {
	httpClient *resty.Client
}

// NewClient builds a blob store client for the given base URL.
func NewClient(baseURL string) *APIClient {
	restyClient := resty.New().
		SetBaseURL(strings.TrimSuffix(baseURL, "/")).
		SetTimeout(30 * time.Second)

	return &APIClient{httpClient: restyClient}
}

type uploadResponse struct {
	URL string `json:"url"`
}

// Upload streams the file to the store under a collision-free object name
// and returns the URL the store assigned.
func (c *APIClient) Upload(ctx context.Context, filename, contentType string, r io.Reader) (string, error) {
	object := uuid.NewString() + path.Ext(filename)

	result := new(uploadResponse)
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetFileReader("file", object, r).
		SetFormData(map[string]string{"contentType": contentType}).
		SetResult(result).
		Post("/uploads")
	if err != nil {
		return "", fmt.Errorf("upload %s: %w", filename, err)
	}
	if resp.StatusCode() >= http.StatusBadRequest {
		return "", fmt.Errorf("blob store error: status=%d body=%s", resp.StatusCode(), resp.String())
	}
	if result.URL == "" {
		return "", fmt.Errorf("blob store returned no url for %s", filename)
	}
	return result.URL, nil
}
