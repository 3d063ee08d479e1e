package category

import (
	"bytes"
	"context"
	_ "embed"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"recipe-planner/internal/pkg/common"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

//go:embed data/categories.yaml
var defaultDictionaryYAML []byte

// Format 字典檔案格式
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// Source 字典來源；Path 與 URL 皆為空時使用內建字典
type Source struct {
	Path    string
	URL     string
	Timeout time.Duration
}

// DefaultDictionary 內建字典
func DefaultDictionary() Dictionary {
	dict, err := ParseDictionary(defaultDictionaryYAML, FormatYAML)
	if err != nil {
		panic(fmt.Sprintf("category: embedded dictionary: %v", err))
	}
	return dict
}

// ParseDictionary 解析 YAML 或 JSON 格式的字典
func ParseDictionary(data []byte, format Format) (Dictionary, error) {
	raw := make(map[string][]string)
	switch format {
	case FormatJSON:
		if err := common.ParseJSONBytes(data, &raw); err != nil {
			return nil, fmt.Errorf("parse json dictionary: %w", err)
		}
	case FormatYAML, "":
		if err := yaml.NewDecoder(bytes.NewReader(data)).Decode(&raw); err != nil {
			return nil, fmt.Errorf("parse yaml dictionary: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported dictionary format %q", format)
	}

	dict := make(Dictionary, len(raw))
	for label, phrases := range raw {
		label = strings.ToLower(strings.TrimSpace(label))
		if label == "" {
			continue
		}
		for _, p := range phrases {
			p = strings.Join(strings.Fields(strings.ToLower(p)), " ")
			if p != "" {
				dict[label] = append(dict[label], p)
			}
		}
	}
	if len(dict) == 0 {
		return nil, fmt.Errorf("dictionary is empty")
	}
	return dict, nil
}

// LoadFile 由檔案載入字典，依副檔名判斷格式
func LoadFile(path string) (Dictionary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read dictionary: %w", err)
	}
	return ParseDictionary(data, formatFor(path, ""))
}

// FetchDictionary 由遠端 URL 下載字典
func FetchDictionary(ctx context.Context, client *resty.Client, url string) (Dictionary, error) {
	resp, err := client.R().
		SetContext(ctx).
		SetHeader("Accept", "application/json, application/yaml, text/yaml").
		Get(url)
	if err != nil {
		return nil, fmt.Errorf("fetch dictionary: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("fetch dictionary: unexpected status %d", resp.StatusCode())
	}
	return ParseDictionary(resp.Body(), formatFor(url, resp.Header().Get("Content-Type")))
}

// LoadDictionary 依來源載入字典：URL 優先，其次檔案，最後內建字典
func LoadDictionary(ctx context.Context, src Source) (Dictionary, error) {
	switch {
	case src.URL != "":
		timeout := src.Timeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		client := resty.New().SetTimeout(timeout).SetRetryCount(2)
		dict, err := FetchDictionary(ctx, client, src.URL)
		if err != nil {
			return nil, err
		}
		common.LogInfo("已下載分類字典",
			zap.String("url", src.URL),
			zap.Int("categories", len(dict)),
			zap.Int("phrases", dict.Size()),
		)
		return dict, nil
	case src.Path != "":
		dict, err := LoadFile(src.Path)
		if err != nil {
			return nil, err
		}
		common.LogInfo("已載入分類字典",
			zap.String("path", src.Path),
			zap.Int("categories", len(dict)),
			zap.Int("phrases", dict.Size()),
		)
		return dict, nil
	default:
		return DefaultDictionary(), nil
	}
}

func formatFor(name, contentType string) Format {
	if strings.Contains(contentType, "json") {
		return FormatJSON
	}
	if strings.Contains(contentType, "yaml") {
		return FormatYAML
	}
	if ext := strings.ToLower(filepath.Ext(strings.SplitN(name, "?", 2)[0])); ext == ".json" {
		return FormatJSON
	}
	return FormatYAML
}
