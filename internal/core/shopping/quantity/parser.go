package quantity

import (
	"regexp"
	"strings"

	"recipe-planner/internal/core/shopping/naming"
)

// numberExpr 整數、小數、分數或帶分數（帶分數必須放在最前面）
const numberExpr = `\d+\s+\d+\s*/\s*\d+|\d+\s*/\s*\d+|\d*\.\d+|\d+`

var (
	bracketPattern = regexp.MustCompile(`[(\[]([^)\]]*)[)\]]`)
	numberPattern  = regexp.MustCompile(`^(` + numberExpr + `)`)
	// 範圍只取第一個值："3-4"、"3 to 4"、"3-to-3.5"、"2 or 3"
	rangePattern = regexp.MustCompile(`^\s*(?:-\s*(?:to\s*-?\s*)?|(?:to|or)\s+)(?:` + numberExpr + `)`)
	// 連字號尺寸："15-ounce"
	sizePattern = regexp.MustCompile(`^\s*(\d+(?:\.\d+)?|\d*\.\d+)\s*-\s*[a-z]`)
)

var vulgarFractions = strings.NewReplacer(
	"½", " 1/2", "⅓", " 1/3", "⅔", " 2/3", "¼", " 1/4", "¾", " 3/4",
	"⅕", " 1/5", "⅖", " 2/5", "⅗", " 3/5", "⅘", " 4/5", "⅙", " 1/6",
	"⅚", " 5/6", "⅛", " 1/8", "⅜", " 3/8", "⅝", " 5/8", "⅞", " 7/8",
	"⁄", "/", "–", "-", "—", "-",
)

var strayBrackets = strings.NewReplacer("(", " ", ")", " ", "[", " ", "]", " ")

// numberWords 開頭的數字單字
var numberWords = map[string]Amount{
	"a": NewAmount(1), "an": NewAmount(1), "one": NewAmount(1),
	"two": NewAmount(2), "three": NewAmount(3), "four": NewAmount(4),
	"five": NewAmount(5), "six": NewAmount(6), "seven": NewAmount(7),
	"eight": NewAmount(8), "nine": NewAmount(9), "ten": NewAmount(10),
	"eleven": NewAmount(11), "twelve": NewAmount(12),
	"half": NewFraction(1, 2),
}

// maxUnitWords 單位最多由幾個字組成（"fl oz"、"fluid ounce"）
const maxUnitWords = 3

// Parse 將數量文字解析為 Quantity，永不失敗
//
// 括號中的「數字 + 已知單位」優先於括號外的文字。括號外只有件數與容器時相乘：
// "2 (15-ounce) cans" → 30 ounce；"2 cups (480 ml)" → 480 milliliter。找不到數字時數量為 1；
// 找不到已知單位時保留單數化後的原始單位文字。
func Parse(text string) Quantity {
	s := prepare(text)
	if s == "" {
		return NewUnrecognized(One(), "")
	}

	outer := s
	var inner []string
	if matches := bracketPattern.FindAllStringSubmatch(s, -1); len(matches) > 0 {
		for _, m := range matches {
			inner = append(inner, m[1])
		}
		outer = collapse(bracketPattern.ReplaceAllString(s, " "))
	}
	outer = collapse(strayBrackets.Replace(outer))

	for _, in := range inner {
		measured, ok := parseMeasured(in)
		if !ok {
			continue
		}
		// 括號外已有單位時括號是等量換算，不相乘
		if count, rest, found := leadingAmount(outer); found {
			if _, hasUnit := matchUnit(rest); !hasUnit {
				measured.Amount = measured.Amount.Mul(count)
			}
		}
		return measured
	}

	return parseOuter(outer)
}

// parseMeasured 括號內容必須同時有數字與已知單位
func parseMeasured(s string) (Quantity, bool) {
	s = collapse(s)
	amount, rest, found := leadingAmount(s)
	if !found {
		return Quantity{}, false
	}
	unit, ok := matchUnit(rest)
	if !ok {
		return Quantity{}, false
	}
	return New(amount, unit), true
}

func parseOuter(s string) Quantity {
	amount, rest, found := leadingAmount(s)
	if !found {
		amount = One()
		rest = s
	}
	if unit, ok := matchUnit(rest); ok {
		return New(amount, unit)
	}
	return NewUnrecognized(amount, unrecognizedText(rest))
}

// leadingAmount 解析開頭的數量，回傳剩餘文字
func leadingAmount(s string) (Amount, string, bool) {
	s = strings.TrimSpace(s)

	amount, rest, ok := leadingNumber(s)
	if !ok {
		word, tail, _ := strings.Cut(s, " ")
		value, isWord := numberWords[word]
		if !isWord {
			return Amount{}, s, false
		}
		amount, rest, ok = value, tail, true
		// "a 13-ounce can"、"two 15-ounce cans"
		if n, tail2, isNum := leadingNumber(strings.TrimSpace(tail)); isNum {
			amount, rest = amount.Mul(n), tail2
		}
	}

	if m := rangePattern.FindStringIndex(rest); m != nil {
		rest = rest[m[1]:]
	}

	// "1 15-ounce can"
	if m := sizePattern.FindStringSubmatchIndex(rest); m != nil {
		if size, isNum := ParseAmount(rest[m[2]:m[3]]); isNum {
			amount = amount.Mul(size)
			rest = rest[m[3]:]
		}
	}

	return amount, cleanUnitText(rest), true
}

// leadingNumber 只解析阿拉伯數字形式
func leadingNumber(s string) (Amount, string, bool) {
	m := numberPattern.FindStringIndex(s)
	if m == nil {
		return Amount{}, s, false
	}
	amount, ok := parseNumber(s[m[0]:m[1]])
	if !ok {
		return Amount{}, s, false
	}
	return amount, s[m[1]:], true
}

// parseNumber "1 1/4" → 5/4；"1/0" 之類無效
func parseNumber(token string) (Amount, bool) {
	parts := strings.Fields(strings.ReplaceAll(token, "/", " / "))
	switch len(parts) {
	case 1:
		return ParseAmount(parts[0])
	case 3:
		if parts[2] == "0" {
			return Amount{}, false
		}
		return ParseAmount(parts[0] + "/" + parts[2])
	case 4:
		whole, ok := ParseAmount(parts[0])
		if !ok || parts[3] == "0" {
			return Amount{}, false
		}
		frac, ok := ParseAmount(parts[1] + "/" + parts[3])
		if !ok {
			return Amount{}, false
		}
		return whole.Add(frac), true
	}
	return Amount{}, false
}

// matchUnit 由長到短比對開頭的字
func matchUnit(rest string) (Unit, bool) {
	words := strings.Fields(rest)
	n := len(words)
	if n > maxUnitWords {
		n = maxUnitWords
	}
	for ; n > 0; n-- {
		if u, ok := LookupUnit(strings.Join(words[:n], " ")); ok {
			return u, true
		}
	}
	return Unknown, false
}

// unrecognizedText 保留原文但單數化最後一個字，使 "pinch" 與 "pinches" 可合併
func unrecognizedText(rest string) string {
	words := strings.Fields(rest)
	if len(words) == 0 {
		return ""
	}
	last := len(words) - 1
	words[last] = naming.SingularizeWord(words[last])
	return strings.Join(words, " ")
}

func cleanUnitText(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimLeft(s, "- ")
	s = strings.TrimRight(s, ".,;: ")
	return collapse(s)
}

func prepare(text string) string {
	return collapse(vulgarFractions.Replace(strings.ToLower(text)))
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
