package catalog

import (
	"bufio"
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"
)

// ErrEmptyWordList is returned when a word source has no usable lines
var ErrEmptyWordList = errors.New("word list is empty")

// DefaultWords is the built-in pool item names are drawn from
var DefaultWords = []string{
	"Red", "Blue", "Green", "Yellow", "Purple",
	"Vintage", "Modern", "Classic", "Elegant", "Rustic",
	"Sleek", "Cozy", "Bright", "Golden", "Silver",
	"Compact", "Deluxe", "Premium", "Handy", "Sturdy",
}

// sourceResult holds the result of loading a single word source
type sourceResult struct {
	index int
	words []string
	err   error
}

// LoadWords loads word pools from files or http(s) URLs concurrently and
// merges them in source order, dropping duplicates. Sources ending in .gz
// are decompressed.
func LoadWords(ctx context.Context, sources []string) ([]string, error) {
	if len(sources) == 0 {
		return nil, fmt.Errorf("no word sources provided")
	}

	resultChan := make(chan sourceResult, len(sources))

	var wg sync.WaitGroup
	for i, src := range sources {
		wg.Add(1)
		go func(index int, source string) {
			defer wg.Done()

			words, err := loadSource(ctx, source)
			resultChan <- sourceResult{index: index, words: words, err: err}
		}(i, src)
	}

	go func() {
		wg.Wait()
		close(resultChan)
	}()

	// Collect results maintaining order
	results := make([]sourceResult, len(sources))
	for result := range resultChan {
		results[result.index] = result
	}

	seen := make(map[string]bool)
	var words []string
	for i, result := range results {
		if result.err != nil {
			return nil, fmt.Errorf("failed to load word source %d (%s): %w", i+1, sources[i], result.err)
		}
		for _, w := range result.words {
			if !seen[w] {
				seen[w] = true
				words = append(words, w)
			}
		}
	}

	return words, nil
}

func loadSource(ctx context.Context, source string) ([]string, error) {
	var body io.ReadCloser
	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		rc, err := openURL(ctx, source)
		if err != nil {
			return nil, err
		}
		body = rc
	} else {
		f, err := os.Open(source)
		if err != nil {
			return nil, fmt.Errorf("failed to open word file: %w", err)
		}
		body = f
	}
	defer body.Close()

	var r io.Reader = body
	if strings.HasSuffix(source, ".gz") {
		gzReader, err := gzip.NewReader(body)
		if err != nil {
			return nil, fmt.Errorf("failed to create gzip reader: %w", err)
		}
		defer gzReader.Close()
		r = gzReader
	}

	return ParseWords(r)
}

func openURL(ctx context.Context, url string) (io.ReadCloser, error) {
	client := &http.Client{Timeout: 30 * time.Second}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to download word list: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	return resp.Body, nil
}

// ParseWords reads one word per line, skipping blank lines
func ParseWords(r io.Reader) ([]string, error) {
	var words []string
	scanner := bufio.NewScanner(r)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line != "" {
			words = append(words, line)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading word list: %w", err)
	}
	if len(words) == 0 {
		return nil, ErrEmptyWordList
	}

	return words, nil
}
