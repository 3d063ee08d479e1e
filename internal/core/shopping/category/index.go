// Package category 以逐字前綴樹（trie）將食材名稱歸類到賣場分區。
//
// 字典片語可出現在查詢字串的任何位置（"chile powder" 可匹配 "red chile powder"），
// 但比對以「字」為單位，因此 "egg" 不會匹配 "eggplant"。
// 多個片語同時匹配時取最長者；長度相同時取類別名稱字母順序最前者。
package category

import (
	"sort"
	"strings"
	"unicode"
)

// Unknown 無法分類時的顯示名稱
const Unknown = "unknown"

// Dictionary 類別 → 片語
type Dictionary map[string][]string

// Size 片語總數
func (d Dictionary) Size() int {
	n := 0
	for _, phrases := range d {
		n += len(phrases)
	}
	return n
}

// Match 一次片語匹配
type Match struct {
	Category string
	Phrase   string
	Start    int // 起始字位置
	Length   int // 字數
}

type node struct {
	children  map[string]*node
	terminals []int // 類別索引，遞增排序
	phrase    string
}

// Index 不可變的分類索引，建立後可安全並行讀取
type Index struct {
	root       *node
	categories []string
	fold       func(string) string
	phrases    int
}

// Option 索引選項
type Option func(*Index)

// WithTokenFold 字典與查詢的每個字都先經過 fn 轉換（例如單數化）
func WithTokenFold(fn func(string) string) Option {
	return func(ix *Index) {
		if fn != nil {
			ix.fold = fn
		}
	}
}

// BuildIndex 由字典建立索引
func BuildIndex(dict Dictionary, opts ...Option) *Index {
	ix := &Index{
		root: newNode(),
		fold: func(s string) string { return s },
	}
	for _, opt := range opts {
		opt(ix)
	}

	for label := range dict {
		label = strings.TrimSpace(label)
		if label != "" {
			ix.categories = append(ix.categories, label)
		}
	}
	sort.Strings(ix.categories)
	ix.categories = dedupe(ix.categories)

	for ci, label := range ix.categories {
		phrases := phrasesFor(dict, label)
		sort.Strings(phrases)
		for _, phrase := range phrases {
			tokens := ix.tokens(phrase)
			if len(tokens) == 0 {
				continue
			}
			ix.insert(tokens, ci)
		}
	}

	return ix
}

// phrasesFor 同一類別名稱前後可能帶空白，合併其片語
func phrasesFor(dict Dictionary, label string) []string {
	var out []string
	for k, phrases := range dict {
		if strings.TrimSpace(k) == label {
			out = append(out, phrases...)
		}
	}
	return out
}

func (ix *Index) insert(tokens []string, category int) {
	n := ix.root
	for _, tok := range tokens {
		child, ok := n.children[tok]
		if !ok {
			child = newNode()
			n.children[tok] = child
		}
		n = child
	}
	for _, existing := range n.terminals {
		if existing == category {
			return
		}
	}
	if len(n.terminals) == 0 {
		ix.phrases++
	}
	n.terminals = append(n.terminals, category)
	n.phrase = strings.Join(tokens, " ")
}

// Categories 所有類別名稱（已排序）
func (ix *Index) Categories() []string {
	out := make([]string, len(ix.categories))
	copy(out, ix.categories)
	return out
}

// Size 不重複片語數
func (ix *Index) Size() int {
	return ix.phrases
}

// Matches 回傳所有匹配的片語，依起始位置與長度排序
func (ix *Index) Matches(name string) []Match {
	tokens := ix.tokens(name)
	var out []Match
	for i := range tokens {
		n := ix.root
		for j := i; j < len(tokens); j++ {
			n = n.children[tokens[j]]
			if n == nil {
				break
			}
			for _, ci := range n.terminals {
				out = append(out, Match{
					Category: ix.categories[ci],
					Phrase:   n.phrase,
					Start:    i,
					Length:   j - i + 1,
				})
			}
		}
	}
	return out
}

// Classify 回傳最具體（最長）匹配的類別；沒有匹配時 ok 為 false
func (ix *Index) Classify(name string) (string, bool) {
	if ix == nil {
		return "", false
	}
	tokens := ix.tokens(name)

	bestLen, bestCat := 0, -1
	for i := range tokens {
		n := ix.root
		for j := i; j < len(tokens); j++ {
			n = n.children[tokens[j]]
			if n == nil {
				break
			}
			if len(n.terminals) == 0 {
				continue
			}
			length, ci := j-i+1, n.terminals[0]
			if length > bestLen || (length == bestLen && ci < bestCat) {
				bestLen, bestCat = length, ci
			}
		}
	}

	if bestCat < 0 {
		return "", false
	}
	return ix.categories[bestCat], true
}

// ClassifyOrUnknown 無法分類時回傳 Unknown
func (ix *Index) ClassifyOrUnknown(name string) string {
	if c, ok := ix.Classify(name); ok {
		return c
	}
	return Unknown
}

func (ix *Index) tokens(s string) []string {
	tokens := Tokenize(s)
	for i, t := range tokens {
		tokens[i] = ix.fold(t)
	}
	return tokens
}

// Tokenize 小寫並以非字母數字字元切字
func Tokenize(s string) []string {
	return strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '&'
	})
}

func newNode() *node {
	return &node{children: make(map[string]*node)}
}

func dedupe(sorted []string) []string {
	out := sorted[:0]
	for i, s := range sorted {
		if i == 0 || s != sorted[i-1] {
			out = append(out, s)
		}
	}
	return out
}
