package corpus

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"scirel.ai/deppath/types"
)

const (
	DependencySuffix = "_dependency.json"
	PairsSuffix      = "实体对.json"
	AltPairsSuffix   = "_pairs.json"
	ResultSuffix     = "依存路径.json"
)

// ArticleFiles are the inputs of one article.
type ArticleFiles struct {
	Title          string
	DependencyPath string
	PairsPath      string
}

// Discover lists the parser outputs in depDir and matches each with its
// pair file in pairDir. Titles without a pair file are returned separately.
func Discover(depDir string, pairDir string) ([]ArticleFiles, []string, error) {
	entries, err := os.ReadDir(depDir)
	if err != nil {
		return nil, nil, err
	}

	var found []ArticleFiles
	var missing []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, DependencySuffix) {
			continue
		}
		title := strings.TrimSuffix(name, DependencySuffix)
		pairsPath, ok := findPairs(pairDir, title)
		if !ok {
			missing = append(missing, title)
			continue
		}
		found = append(found, ArticleFiles{
			Title:          title,
			DependencyPath: filepath.Join(depDir, name),
			PairsPath:      pairsPath,
		})
	}
	return found, missing, nil
}

func findPairs(dir string, title string) (string, bool) {
	for _, suffix := range []string{PairsSuffix, AltPairsSuffix} {
		p := filepath.Join(dir, title+suffix)
		if info, err := os.Stat(p); err == nil && !info.IsDir() {
			return p, true
		}
	}
	return "", false
}

// LoadArticle reads and decodes both inputs of an article. The title is the
// one derived from the file name.
func LoadArticle(files ArticleFiles) (types.ParsedArticle, []types.EntityPairRequest, error) {
	depData, err := os.ReadFile(files.DependencyPath)
	if err != nil {
		return types.ParsedArticle{}, nil, fmt.Errorf("read parser output: %w", err)
	}
	article, err := DecodeArticle(depData)
	if err != nil {
		return types.ParsedArticle{}, nil, fmt.Errorf("%s: %w", files.DependencyPath, err)
	}
	article.Title = files.Title

	pairData, err := os.ReadFile(files.PairsPath)
	if errors.Is(err, fs.ErrNotExist) {
		return article, nil, fmt.Errorf("%w: %s", ErrMissingPairs, files.Title)
	}
	if err != nil {
		return article, nil, fmt.Errorf("read entity pairs: %w", err)
	}
	pairs, err := DecodePairs(pairData)
	if err != nil {
		return article, nil, fmt.Errorf("%s: %w", files.PairsPath, err)
	}
	return article, pairs, nil
}

// EncodeResult renders a result the way result files store it.
func EncodeResult(result types.ArticleResult) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(result); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteResult stores result as <title>依存路径.json in dir and returns the
// file path.
func WriteResult(dir string, result types.ArticleResult) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	data, err := EncodeResult(result)
	if err != nil {
		return "", err
	}
	p := filepath.Join(dir, result.Title+ResultSuffix)
	if err := os.WriteFile(p, data, 0o644); err != nil {
		return "", err
	}
	return p, nil
}

// ReadResults reads every result file in dir, in file name order.
func ReadResults(dir string) ([]types.ArticleResult, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var results []types.ArticleResult
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ResultSuffix) {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			return nil, err
		}
		result, err := DecodeResult(data, strings.TrimSuffix(name, ResultSuffix))
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		results = append(results, result)
	}
	return results, nil
}
