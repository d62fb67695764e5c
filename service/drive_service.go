package service

import (
	"context"
	"fmt"
	"io"
	"log"
	"path"
	"strings"
	"sync"

	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
)

var imageMimeTypes = map[string]bool{
	"image/png":  true,
	"image/jpeg": true,
	"image/jpg":  true,
}

// DriveImageSource serves catalog images from a Google Drive folder.
// Files are matched by name, e.g. /assets/product-1.jpg -> product-1.jpg
type DriveImageSource struct {
	client   *drive.Service
	folderID string

	mu  sync.Mutex
	ids map[string]string // file name -> Drive file id
}

var _ ImageSource = (*DriveImageSource)(nil)

// NewDriveImageSource creates a DriveImageSource
// credentialsPath should be the path to the Service Account JSON file
func NewDriveImageSource(ctx context.Context, credentialsPath, folderID string, opts ...option.ClientOption) (*DriveImageSource, error) {
	if credentialsPath != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsPath))
	}
	client, err := drive.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create drive service: %w", err)
	}
	return &DriveImageSource{client: client, folderID: folderID}, nil
}

// Refresh lists the image files of the folder and rebuilds the name index
func (d *DriveImageSource) Refresh(ctx context.Context) error {
	query := fmt.Sprintf("'%s' in parents and trashed=false", d.folderID)

	ids := make(map[string]string)
	pageToken := ""
	for {
		call := d.client.Files.List().
			Q(query).
			Fields("nextPageToken, files(id, name, mimeType)").
			Context(ctx)
		if pageToken != "" {
			call = call.PageToken(pageToken)
		}

		r, err := call.Do()
		if err != nil {
			return fmt.Errorf("failed to list files: %w", err)
		}
		for _, file := range r.Files {
			if !imageMimeTypes[strings.ToLower(file.MimeType)] {
				continue
			}
			ids[file.Name] = file.Id
		}

		pageToken = r.NextPageToken
		if pageToken == "" {
			break
		}
	}

	d.mu.Lock()
	d.ids = ids
	d.mu.Unlock()
	log.Printf("🔍 Drive folder %s: %d image(s) indexed", d.folderID, len(ids))
	return nil
}

func (d *DriveImageSource) lookup(name string) (string, bool, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	id, ok := d.ids[name]
	return id, ok, d.ids != nil
}

// Fetch downloads the image whose file name matches the base name of name.
// A miss refreshes the index once before giving up.
func (d *DriveImageSource) Fetch(ctx context.Context, name string) ([]byte, error) {
	name = path.Base(name)
	id, ok, indexed := d.lookup(name)
	if !ok {
		if indexed {
			log.Printf("⚠️  Drive: %s not indexed, refreshing", name)
		}
		if err := d.Refresh(ctx); err != nil {
			return nil, err
		}
		if id, ok, _ = d.lookup(name); !ok {
			return nil, fmt.Errorf("%w: %s not in drive folder %s", ErrImageNotFound, name, d.folderID)
		}
	}

	resp, err := d.client.Files.Get(id).Context(ctx).Download()
	if err != nil {
		return nil, fmt.Errorf("failed to download file %s: %w", id, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read file data: %w", err)
	}
	return data, nil
}
