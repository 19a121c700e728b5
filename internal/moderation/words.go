package moderation

import (
	"bufio"
	_ "embed"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/afero"
)

//go:embed words.txt
var defaultWords string

// DefaultWords returns the built-in word list.
func DefaultWords() []string {
	words, _ := ParseWords(strings.NewReader(defaultWords))
	return words
}

// ParseWords reads one word per line. Blank lines and lines starting with '#'
// are skipped.
func ParseWords(r io.Reader) ([]string, error) {
	var words []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		words = append(words, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return words, nil
}

// LoadWords reads a word list file from fs.
func LoadWords(fs afero.Fs, path string) ([]string, error) {
	f, err := fs.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open word list %s: %w", path, err)
	}
	defer f.Close()

	words, err := ParseWords(f)
	if err != nil {
		return nil, fmt.Errorf("read word list %s: %w", path, err)
	}
	return words, nil
}
