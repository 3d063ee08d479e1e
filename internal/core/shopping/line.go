package shopping

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"recipe-planner/internal/core/shopping/naming"
	"recipe-planner/internal/core/shopping/quantity"
)

// leadingWords 只在行首出現時視為數量
var leadingWords = map[string]bool{
	"a": true, "an": true, "one": true, "two": true, "three": true, "four": true,
	"five": true, "six": true, "seven": true, "eight": true, "nine": true, "ten": true,
	"eleven": true, "twelve": true, "half": true,
}

// containerWords 非度量單位但常見於數量中的字（單數）
var containerWords = map[string]bool{
	"bag": true, "bottle": true, "box": true, "bunch": true, "can": true,
	"carton": true, "clove": true, "container": true, "dash": true, "envelope": true,
	"handful": true, "head": true, "jar": true, "package": true, "packet": true,
	"pinch": true, "piece": true, "pkg": true, "sheet": true, "slice": true,
	"splash": true, "sprig": true, "stalk": true, "stick": true, "tin": true,
}

const maxUnitWords = 3

// ParseLine 將一行自由文字拆成數量、名稱與說明
//
// "2 (15-ounce) cans black beans, rinsed" →
// {Quantity: "2 (15-ounce) cans", Name: "black beans", Description: "rinsed"}。
// 第一個逗號之後與名稱中的括號內容皆為說明；沒有數量時 Quantity 為空字串。
func ParseLine(text string) IngredientLine {
	head, desc, _ := strings.Cut(strings.TrimSpace(text), ",")
	tokens := lineTokens(head)

	i := 0
	for i < len(tokens) && isAmountToken(tokens, i) {
		i++
	}

	if n := unitWords(tokens[i:]); n > 0 && (i > 0 || followedByOf(tokens, n)) {
		i += n
	}
	qty := strings.Join(tokens[:i], " ")

	if i < len(tokens) && strings.EqualFold(tokens[i], "of") {
		i++
	}

	// 名稱中的括號內容移到說明："onion (diced)"
	var name, notes []string
	for _, tok := range tokens[i:] {
		if opensBracket(tok) {
			notes = append(notes, strings.Trim(tok, "()[] "))
			continue
		}
		name = append(name, tok)
	}
	if d := strings.Join(strings.Fields(desc), " "); d != "" {
		notes = append(notes, d)
	}

	return IngredientLine{
		Quantity:    qty,
		Name:        strings.Join(name, " "),
		Description: strings.Join(notes, ", "),
	}
}

// lineTokens 以空白切字，括號內容視為同一個 token
func lineTokens(s string) []string {
	fields := strings.Fields(s)
	var out []string
	for i := 0; i < len(fields); i++ {
		f := fields[i]
		if opensBracket(f) {
			j := i
			for j < len(fields)-1 && !closesBracket(fields[j]) {
				j++
			}
			f = strings.Join(fields[i:j+1], " ")
			i = j
		}
		out = append(out, f)
	}
	return out
}

func isAmountToken(tokens []string, i int) bool {
	tok := tokens[i]
	// 括號內有數字才屬於數量："(15-ounce)" 是，"(optional)" 不是
	if opensBracket(tok) {
		return strings.ContainsFunc(tok, func(r rune) bool {
			return unicode.IsDigit(r) || unicode.Is(unicode.No, r)
		})
	}
	if startsNumeric(tok) {
		return true
	}
	lower := strings.ToLower(tok)
	if i == 0 && leadingWords[lower] {
		return true
	}
	// "3 to 4"、"2 or 3"
	if (lower == "to" || lower == "or") && i > 0 && i+1 < len(tokens) && startsNumeric(tokens[i+1]) {
		return true
	}
	return false
}

func startsNumeric(tok string) bool {
	r, _ := utf8.DecodeRuneInString(tok)
	if unicode.IsDigit(r) {
		return true
	}
	// ".5"、"½"
	if r == '.' && len(tok) > 1 {
		next, _ := utf8.DecodeRuneInString(tok[1:])
		return unicode.IsDigit(next)
	}
	return unicode.Is(unicode.No, r)
}

// unitWords 開頭幾個字構成單位或容器字時回傳字數
func unitWords(tokens []string) int {
	n := len(tokens)
	if n > maxUnitWords {
		n = maxUnitWords
	}
	for ; n > 0; n-- {
		if _, ok := quantity.LookupUnit(strings.Join(tokens[:n], " ")); ok {
			return n
		}
	}
	if len(tokens) > 0 {
		word := strings.TrimRight(strings.ToLower(tokens[0]), ".")
		if containerWords[word] || containerWords[naming.SingularizeWord(word)] {
			return 1
		}
	}
	return 0
}

func followedByOf(tokens []string, n int) bool {
	return n < len(tokens) && strings.EqualFold(tokens[n], "of")
}

func opensBracket(s string) bool {
	return strings.HasPrefix(s, "(") || strings.HasPrefix(s, "[")
}

func closesBracket(s string) bool {
	return strings.HasSuffix(s, ")") || strings.HasSuffix(s, "]")
}
