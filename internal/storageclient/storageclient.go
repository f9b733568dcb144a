package storageclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"time"

	"hirepath/api-gateway/models"
)

// UploadFailure is returned when the storage service answers anything but
// 201 Created. It carries the upstream status and raw body for diagnostics.
type UploadFailure struct {
	StatusCode int
	Body       string
}

func (e *UploadFailure) Error() string {
	return fmt.Sprintf("storage service returned %d: %s", e.StatusCode, e.Body)
}

// Client talks to the external file storage service.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New creates a Client for the storage service at baseURL. Every call is
// bounded by timeout.
func New(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

type uploadResponse struct {
	File struct {
		URL string `json:"url"`
	} `json:"file"`
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

// Upload forwards a file's bytes and declared MIME type plus the bucket tag
// to the storage service. Only a 201 counts as success; anything else comes
// back as an *UploadFailure.
func (c *Client) Upload(ctx context.Context, name, mimeType string, content []byte, bucket models.UploadType) (string, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition",
		fmt.Sprintf(`form-data; name="file"; filename="%s"`, quoteEscaper.Replace(name)))
	header.Set("Content-Type", mimeType)

	part, err := writer.CreatePart(header)
	if err != nil {
		return "", fmt.Errorf("building multipart body: %w", err)
	}
	if _, err := part.Write(content); err != nil {
		return "", fmt.Errorf("building multipart body: %w", err)
	}
	if err := writer.WriteField("bucket", string(bucket)); err != nil {
		return "", fmt.Errorf("building multipart body: %w", err)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("building multipart body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/files/upload", &buf)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusCreated {
		return "", &UploadFailure{StatusCode: resp.StatusCode, Body: string(body)}
	}

	var parsed uploadResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("parsing storage response: %w", err)
	}
	if parsed.File.URL == "" {
		return "", fmt.Errorf("storage response carried no file url")
	}
	return parsed.File.URL, nil
}

// Fetch retrieves a previously uploaded blob by its URL. Used to hand file
// content to the pipeline inside event envelopes.
func (c *Client) Fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("fetching %s returned %d: %s", url, resp.StatusCode, string(body))
	}
	return io.ReadAll(resp.Body)
}
