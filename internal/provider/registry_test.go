package provider

import (
	"context"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/Digital-Shane/title-match/internal/media"
	"github.com/google/go-cmp/cmp"
)

// MockProvider is a test provider implementation
type MockProvider struct {
	name string
}

func (m *MockProvider) Name() string { return m.name }
func (m *MockProvider) SearchSeries(ctx context.Context, req SearchRequest) ([]*media.Series, error) {
	return nil, nil
}
func (m *MockProvider) SearchMovies(ctx context.Context, req SearchRequest) ([]*media.Movie, error) {
	return []*media.Movie{}, nil
}

func names(providers []Provider) []string {
	out := make([]string, 0, len(providers))
	for _, p := range providers {
		out = append(out, p.Name())
	}
	return out
}

func TestRegistry_Register(t *testing.T) {
	registry := NewRegistry()

	if err := registry.Register(&MockProvider{name: "test"}); err != nil {
		t.Errorf("Register() error = %v, want nil", err)
	}
	if err := registry.Register(&MockProvider{name: "test"}); err == nil {
		t.Error("Register() expected error for duplicate, got nil")
	}
	if err := registry.Register(nil); err == nil {
		t.Error("Register() expected error for nil provider")
	}
}

func TestRegistry_DeclarationOrder(t *testing.T) {
	registry := NewRegistry()
	for _, name := range []string{"tmdb", "tvdb", "tvmaze", "omdb"} {
		registry.Register(&MockProvider{name: name})
	}

	if diff := cmp.Diff([]string{"tmdb", "tvdb", "tvmaze", "omdb"}, registry.List()); diff != "" {
		t.Errorf("List() mismatch (-want +got):\n%s", diff)
	}

	if err := registry.Disable("tvdb"); err != nil {
		t.Fatalf("Disable() error = %v", err)
	}
	if diff := cmp.Diff([]string{"tmdb", "tvmaze", "omdb"}, names(registry.Enabled())); diff != "" {
		t.Errorf("Enabled() mismatch (-want +got):\n%s", diff)
	}

	if err := registry.Only("omdb", "tmdb"); err != nil {
		t.Fatalf("Only() error = %v", err)
	}
	if diff := cmp.Diff([]string{"tmdb", "omdb"}, names(registry.Enabled())); diff != "" {
		t.Errorf("Enabled() after Only mismatch (-want +got):\n%s", diff)
	}
	if err := registry.Only("nope"); err == nil {
		t.Error("Only() expected error for unknown provider")
	}
	if _, ok := registry.Get("tvdb"); !ok {
		t.Error("Get(tvdb) not found")
	}
}

func TestLoadCredential(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()

	if _, err := LoadCredential(filepath.Join(dir, "TMDB_API_KEY")); !errors.Is(err, ErrMissingCredential) {
		t.Fatalf("missing file error = %v, want ErrMissingCredential", err)
	}

	blank := filepath.Join(dir, "BLANK")
	os.WriteFile(blank, []byte("  \n"), 0600)
	if _, err := LoadCredential(blank); !errors.Is(err, ErrMissingCredential) {
		t.Fatalf("blank file error = %v, want ErrMissingCredential", err)
	}

	good := filepath.Join(dir, "KEY")
	os.WriteFile(good, []byte("secret-token\n"), 0600)
	got, err := LoadCredential(good)
	if err != nil {
		t.Fatalf("LoadCredential() error = %v", err)
	}
	if got != "secret-token" {
		t.Errorf("LoadCredential() = %q, want secret-token", got)
	}
}

func TestStatusError(t *testing.T) {
	t.Parallel()
	req, _ := http.NewRequest(http.MethodGet, "https://api.example.com/3/search/tv?api_key=x", nil)
	tests := map[int]string{
		401: CodeAuthFailed,
		404: CodeNotFound,
		429: CodeRateLimited,
		503: CodeUnavailable,
		418: CodeUnknown,
	}
	for status, want := range tests {
		resp := &http.Response{StatusCode: status, Status: http.StatusText(status), Request: req, Header: make(http.Header)}
		err := StatusError("tmdb", resp)
		var pe *ProviderError
		if !errors.As(err, &pe) {
			t.Fatalf("StatusError(%d) is not a ProviderError", status)
		}
		if pe.Code != want {
			t.Errorf("StatusError(%d).Code = %s, want %s", status, pe.Code, want)
		}
	}
	if !IsNotFound(StatusError("tmdb", &http.Response{StatusCode: 404, Request: req})) {
		t.Error("IsNotFound() = false, want true")
	}
}

func TestTransportErrorPassesContextErrors(t *testing.T) {
	t.Parallel()
	if err := TransportError("tvdb", context.Canceled); err != context.Canceled {
		t.Errorf("TransportError(context.Canceled) = %v", err)
	}
	wrapped := TransportError("tvdb", errors.New("connection refused"))
	var pe *ProviderError
	if !errors.As(wrapped, &pe) || pe.Code != CodeUnavailable {
		t.Errorf("TransportError() = %v, want UNAVAILABLE ProviderError", wrapped)
	}
	if TransportError("tvdb", nil) != nil {
		t.Error("TransportError(nil) should be nil")
	}
}

func TestTruncateAndLimit(t *testing.T) {
	t.Parallel()
	if got := (SearchRequest{}).EffectiveLimit(); got != DefaultLimit {
		t.Errorf("EffectiveLimit() = %d, want %d", got, DefaultLimit)
	}
	if diff := cmp.Diff([]int{1, 2}, Truncate([]int{1, 2, 3}, 2)); diff != "" {
		t.Errorf("Truncate mismatch (-want +got):\n%s", diff)
	}
	if got := Truncate([]int{1}, 5); len(got) != 1 {
		t.Errorf("Truncate() len = %d, want 1", len(got))
	}
}
