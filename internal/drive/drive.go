// Package drive is the Google Drive adapter that stores matched invoice
// documents and returns their web view location.
package drive

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	driveapi "google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
)

// Client wraps the Drive API for the upload contract.
type Client struct {
	svc *driveapi.Service
}

// New builds a live Drive client from a service-account file.
func New(ctx context.Context, credentialsFile string) (*Client, error) {
	svc, err := driveapi.NewService(ctx,
		option.WithCredentialsFile(credentialsFile),
		option.WithScopes(driveapi.DriveFileScope),
	)
	if err != nil {
		return nil, fmt.Errorf("drive client: %w", err)
	}
	return &Client{svc: svc}, nil
}

// Upload stores the file under folderID and returns its web view link.
// A successful create that yields no link returns ("", nil); the caller
// must treat that as a distinct partial outcome, not a success.
func (c *Client) Upload(ctx context.Context, folderID, path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	metadata := &driveapi.File{
		Name:    filepath.Base(path),
		Parents: []string{folderID},
	}
	created, err := c.svc.Files.Create(metadata).
		Media(f).
		Fields("id", "webViewLink").
		Context(ctx).
		Do()
	if err != nil {
		return "", fmt.Errorf("upload %s: %w", filepath.Base(path), err)
	}
	return created.WebViewLink, nil
}
