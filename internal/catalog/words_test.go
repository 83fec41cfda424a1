package catalog

import (
	"bytes"
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseWords(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    []string
		wantErr error
	}{
		{
			name:  "one per line",
			input: "Red\nBlue\nGreen\n",
			want:  []string{"Red", "Blue", "Green"},
		},
		{
			name:  "blank lines and padding skipped",
			input: "  Red  \n\n\t\nBlue",
			want:  []string{"Red", "Blue"},
		},
		{
			name:    "empty input",
			input:   "\n \n",
			wantErr: ErrEmptyWordList,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseWords(strings.NewReader(tt.input))
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("ParseWords() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseWords() unexpected error = %v", err)
			}
			if strings.Join(got, ",") != strings.Join(tt.want, ",") {
				t.Errorf("ParseWords() = %v, want %v", got, tt.want)
			}
		})
	}
}

// setupWordFiles writes newline separated word files and returns their paths
func setupWordFiles(t *testing.T, contents ...string) []string {
	t.Helper()

	dir := t.TempDir()
	paths := make([]string, len(contents))
	for i, c := range contents {
		paths[i] = filepath.Join(dir, fmt.Sprintf("words%d.txt", i+1))
		if err := os.WriteFile(paths[i], []byte(c), 0644); err != nil {
			t.Fatalf("failed to write word file %d: %v", i+1, err)
		}
	}
	return paths
}

func gzipped(t *testing.T, s string) []byte {
	t.Helper()

	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	if _, err := zw.Write([]byte(s)); err != nil {
		t.Fatalf("gzip write: %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("gzip close: %v", err)
	}
	return buf.Bytes()
}

func TestLoadWords_Files(t *testing.T) {
	t.Run("merges in source order without duplicates", func(t *testing.T) {
		paths := setupWordFiles(t, "Crimson\nAzure\n", "Azure\nOchre\n")

		words, err := LoadWords(context.Background(), paths)
		if err != nil {
			t.Fatalf("LoadWords() unexpected error = %v", err)
		}
		if got := strings.Join(words, ","); got != "Crimson,Azure,Ochre" {
			t.Errorf("LoadWords() = %s, want Crimson,Azure,Ochre", got)
		}
	})

	t.Run("no sources", func(t *testing.T) {
		if _, err := LoadWords(context.Background(), nil); err == nil {
			t.Error("expected error for empty sources, got nil")
		}
	})

	t.Run("missing file", func(t *testing.T) {
		paths := setupWordFiles(t, "Crimson\n")
		paths = append(paths, filepath.Join(t.TempDir(), "missing.txt"))

		if _, err := LoadWords(context.Background(), paths); err == nil {
			t.Error("expected error for missing file, got nil")
		}
	})

	t.Run("empty file", func(t *testing.T) {
		paths := setupWordFiles(t, "\n\n")

		_, err := LoadWords(context.Background(), paths)
		if !errors.Is(err, ErrEmptyWordList) {
			t.Errorf("LoadWords() error = %v, want ErrEmptyWordList", err)
		}
	})
}

func TestLoadWords_URLs(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/words.txt":
			_, _ = w.Write([]byte("Teal\nMauve\n"))
		case "/words.txt.gz":
			_, _ = w.Write(gzipped(t, "Amber\nTeal\n"))
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	words, err := LoadWords(context.Background(), []string{
		server.URL + "/words.txt",
		server.URL + "/words.txt.gz",
	})
	if err != nil {
		t.Fatalf("LoadWords() unexpected error = %v", err)
	}
	if got := strings.Join(words, ","); got != "Teal,Mauve,Amber" {
		t.Errorf("LoadWords() = %s, want Teal,Mauve,Amber", got)
	}

	if _, err := LoadWords(context.Background(), []string{server.URL + "/missing"}); err == nil {
		t.Error("expected error for 404 source, got nil")
	}
}
