package core

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// TMDBImageBase resolves the relative image paths TMDB returns.
const TMDBImageBase = "https://image.tmdb.org/t/p/original"

// ImageURL turns a catalog image reference into an absolute URL.
func ImageURL(ref string) string {
	if strings.HasPrefix(ref, "/") {
		return TMDBImageBase + ref
	}
	return ref
}

// DownloadImage stores the image at ref in dir under its base name and
// returns the file path. Existing files are left alone.
func DownloadImage(ctx context.Context, client *http.Client, ref, dir string) (string, error) {
	u, err := url.Parse(ImageURL(ref))
	if err != nil {
		return "", fmt.Errorf("invalid image url %q: %w", ref, err)
	}
	name := path.Base(u.Path)
	if name == "" || name == "/" || name == "." {
		return "", fmt.Errorf("image url %q has no file name", ref)
	}
	dest := filepath.Join(dir, name)
	if info, err := os.Stat(dest); err == nil && !info.IsDir() {
		return dest, nil
	}

	if client == nil {
		client = http.DefaultClient
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("download %s: %w", u, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("download %s: unexpected status %d", u, resp.StatusCode)
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, "."+name+".*")
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, resp.Body); err != nil {
		tmp.Close()
		return "", fmt.Errorf("download %s: %w", u, err)
	}
	if err := tmp.Close(); err != nil {
		return "", err
	}
	if err := os.Rename(tmp.Name(), dest); err != nil {
		return "", fmt.Errorf("failed to store %s: %w", dest, err)
	}
	return dest, nil
}
