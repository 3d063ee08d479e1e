// Command shoplist 離線合併食材清單，或檢查分類字典對名稱語料的涵蓋率。
//
//	shoplist --lines week.json
//	shoplist --coverage names.txt --allow allowlist.txt
package main

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"recipe-planner/internal/core/shopping"
	"recipe-planner/internal/core/shopping/category"
	"recipe-planner/internal/core/shopping/naming"
	"recipe-planner/internal/pkg/common"

	"github.com/spf13/pflag"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	flags := pflag.NewFlagSet("shoplist", pflag.ContinueOnError)
	flags.SetOutput(stderr)
	linesPath := flags.String("lines", "", "JSON file of ingredient lines to combine")
	coveragePath := flags.String("coverage", "", "file of ingredient names, one per line, to classify")
	allowPath := flags.String("allow", "", "names allowed to stay unclassified (with --coverage)")
	dictPath := flags.String("dictionary", "", "category dictionary file (yaml or json); built-in when empty")
	logLevel := flags.String("log-level", "warn", "log level")

	if err := flags.Parse(args); err != nil {
		return 2
	}
	if (*linesPath == "") == (*coveragePath == "") {
		fmt.Fprintln(stderr, "exactly one of --lines or --coverage is required")
		flags.Usage()
		return 2
	}

	if err := common.InitLogger(*logLevel, ""); err != nil {
		fmt.Fprintf(stderr, "failed to initialize logger: %v\n", err)
		return 1
	}
	defer common.Sync()

	dict, err := category.LoadDictionary(context.Background(), category.Source{Path: *dictPath})
	if err != nil {
		fmt.Fprintf(stderr, "failed to load dictionary: %v\n", err)
		return 1
	}
	index := category.BuildIndex(dict, category.WithTokenFold(naming.SingularizeWord))

	if *linesPath != "" {
		if err := combine(shopping.NewEngine(index), *linesPath, stdout); err != nil {
			fmt.Fprintf(stderr, "combine: %v\n", err)
			return 1
		}
		return 0
	}

	unknown, err := coverage(index, *coveragePath, *allowPath, stdout)
	if err != nil {
		fmt.Fprintf(stderr, "coverage: %v\n", err)
		return 1
	}
	if unknown > 0 {
		return 1
	}
	return 0
}

// readLines 讀取 JSON：結構化的食材行陣列，或自由文字陣列
func readLines(data []byte) ([]shopping.IngredientLine, error) {
	var lines []shopping.IngredientLine
	structErr := common.ParseJSONBytesStrict(data, &lines)
	if structErr == nil {
		return lines, nil
	}

	var texts []string
	if err := common.ParseJSONBytes(data, &texts); err != nil {
		return nil, fmt.Errorf("expected an array of ingredient objects or strings: %w", structErr)
	}
	lines = make([]shopping.IngredientLine, len(texts))
	for i, text := range texts {
		lines[i] = shopping.ParseLine(text)
	}
	return lines, nil
}

func combine(engine *shopping.Engine, path string, out io.Writer) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	lines, err := readLines(data)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(engine.Combine(lines))
}

// coverage 列出未分類且不在允許清單中的名稱，回傳其數量
func coverage(index *category.Index, namesPath, allowPath string, out io.Writer) (int, error) {
	names, err := readNames(namesPath)
	if err != nil {
		return 0, err
	}
	allowed := make(map[string]bool)
	if allowPath != "" {
		allow, err := readNames(allowPath)
		if err != nil {
			return 0, err
		}
		for _, name := range allow {
			allowed[naming.Clean(name)] = true
		}
	}

	classified, unknown := 0, 0
	for _, name := range names {
		key, _ := naming.Normalize(name)
		if _, ok := index.Classify(key); ok {
			classified++
			continue
		}
		if allowed[naming.Clean(name)] {
			continue
		}
		unknown++
		fmt.Fprintf(out, "unknown\t%s\n", name)
	}

	fmt.Fprintf(out, "classified %d of %d names, %d unknown\n", classified, len(names), unknown)
	return unknown, nil
}

// readNames 每行一個名稱，略過空行與 # 註解
func readNames(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var names []string
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		names = append(names, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Join(fmt.Errorf("read %s", path), err)
	}
	return names, nil
}
