package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// collectURLs merges positional URLs with those listed in file, one per
// line. Blank lines and lines starting with # are ignored.
func collectURLs(args []string, file string) ([]string, error) {
	urls := append([]string(nil), args...)
	if file != "" {
		f, err := os.Open(file)
		if err != nil {
			return nil, fmt.Errorf("failed to open url file: %w", err)
		}
		defer f.Close()

		fromFile, err := readURLs(f)
		if err != nil {
			return nil, fmt.Errorf("failed to read url file: %w", err)
		}
		urls = append(urls, fromFile...)
	}
	if len(urls) == 0 {
		return nil, fmt.Errorf("no URLs given; pass them as arguments or with --file")
	}
	return urls, nil
}

func readURLs(r io.Reader) ([]string, error) {
	var urls []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		urls = append(urls, line)
	}
	return urls, scanner.Err()
}
