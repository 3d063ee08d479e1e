package naming

import "strings"

// irregularPlurals 不規則複數
var irregularPlurals = map[string]string{
	"leaves":    "leaf",
	"loaves":    "loaf",
	"halves":    "half",
	"calves":    "calf",
	"knives":    "knife",
	"geese":     "goose",
	"cookies":   "cookie",
	"brownies":  "brownie",
	"smoothies": "smoothie",
	"veggies":   "veggie",
	"calories":  "calorie",
	"chilies":   "chili",
	"chillies":  "chilli",
	"chilis":    "chili",
	"kiwis":     "kiwi",
	"salamis":   "salami",
}

// invariantWords 以 s 結尾但本身就是單數（或不應改變）的字
var invariantWords = map[string]bool{
	"molasses": true,
	"grits":    true,
	"series":   true,
	"species":  true,
	"brussels": true,
	"schnapps": true,
	"bitters":  true,
	"herbes":   true,
	"fines":    true,
	"ras":      true,
}

// SingularizeWord 將單一英文字轉為單數
//
// 規則依序：不規則表、不變字、-ss/-us/-is 結尾、-ies、-oes、-ches/-shes/-sses/-xes/-zes、-s。
func SingularizeWord(word string) string {
	if len(word) <= 2 {
		return word
	}
	if singular, ok := irregularPlurals[word]; ok {
		return singular
	}
	if invariantWords[word] {
		return word
	}

	switch {
	case strings.HasSuffix(word, "ss"),
		strings.HasSuffix(word, "us"),
		strings.HasSuffix(word, "is"):
		return word
	case strings.HasSuffix(word, "ies") && len(word) > 4:
		return strings.TrimSuffix(word, "ies") + "y"
	case strings.HasSuffix(word, "oes"):
		return strings.TrimSuffix(word, "es")
	case strings.HasSuffix(word, "ches"),
		strings.HasSuffix(word, "shes"),
		strings.HasSuffix(word, "sses"),
		strings.HasSuffix(word, "xes"),
		strings.HasSuffix(word, "zes"):
		return strings.TrimSuffix(word, "es")
	case strings.HasSuffix(word, "s"):
		return strings.TrimSuffix(word, "s")
	}
	return word
}

// Singularize 單數化片語中的每個字，供分類比對使用
func Singularize(phrase string) string {
	words := strings.Fields(phrase)
	for i, w := range words {
		words[i] = SingularizeWord(w)
	}
	return strings.Join(words, " ")
}
