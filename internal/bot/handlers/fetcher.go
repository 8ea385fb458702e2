package handlers

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/vladimiradmaev/glycocare/internal/domain"
)

const maxPhotoBytes = 10 << 20

// HTTPPhotoFetcher downloads photos from Telegram's file endpoint.
type HTTPPhotoFetcher struct {
	client   *http.Client
	maxBytes int64
}

func NewHTTPPhotoFetcher(client *http.Client) *HTTPPhotoFetcher {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &HTTPPhotoFetcher{client: client, maxBytes: maxPhotoBytes}
}

func (f *HTTPPhotoFetcher) Fetch(ctx context.Context, url string) (domain.MealImage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return domain.MealImage{}, err
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return domain.MealImage{}, fmt.Errorf("failed to download photo: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return domain.MealImage{}, fmt.Errorf("failed to download photo: status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBytes+1))
	if err != nil {
		return domain.MealImage{}, fmt.Errorf("failed to read photo: %w", err)
	}
	if int64(len(data)) > f.maxBytes {
		return domain.MealImage{}, fmt.Errorf("photo exceeds %d bytes", f.maxBytes)
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = http.DetectContentType(data)
	}
	return domain.MealImage{Data: data, ContentType: contentType}, nil
}
