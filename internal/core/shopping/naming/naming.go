// Package naming 食材名稱正規化：小寫、去除標點與重音、單數化。
package naming

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var stripAccents = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Clean 小寫、去除重音、連字號轉空白、移除標點並合併空白
//
// "Jalapeño-Peppers," → "jalapeno peppers"
func Clean(name string) string {
	folded, _, err := transform.String(stripAccents, strings.ToLower(name))
	if err != nil {
		folded = strings.ToLower(name)
	}

	var sb strings.Builder
	sb.Grow(len(folded))
	for _, r := range folded {
		switch {
		case r == '\'' || r == '’':
			// baker's → bakers
		case r == '&':
			sb.WriteRune(r)
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			sb.WriteRune(r)
		default:
			sb.WriteByte(' ')
		}
	}
	return strings.Join(strings.Fields(sb.String()), " ")
}

// Normalize 回傳分組用的單數鍵與顯示用的清理後名稱
//
// 只有最後一個字（主名詞）會被單數化："Cherry Tomatoes" → ("cherry tomato", "cherry tomatoes")。
// 兩者不同時代表輸入為複數，呼叫端可記住 display 作為顯示名稱。
func Normalize(name string) (key string, display string) {
	display = Clean(name)
	if display == "" {
		return "", ""
	}
	words := strings.Fields(display)
	last := len(words) - 1
	words[last] = SingularizeWord(words[last])
	return strings.Join(words, " "), display
}

// IsPlural 名稱的主名詞是否為複數
func IsPlural(name string) bool {
	key, display := Normalize(name)
	return key != display
}
