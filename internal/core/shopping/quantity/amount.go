package quantity

import (
	"encoding/json"
	"fmt"
	"math/big"
	"strings"
)

const (
	// displayPrecision 小數顯示位數（截斷，不四捨五入）
	displayPrecision = 3
	// maxFractionDenominator 小於 1 的數值以分數顯示時允許的最大分母
	maxFractionDenominator = 100
)

var (
	bigOne          = big.NewRat(1, 1)
	bigMaxFracDenom = big.NewInt(maxFractionDenominator)
)

// Amount 精確的有理數數量
//
// 內部的 *big.Rat 建立後不再修改，所有運算都回傳新的 Amount，
// 因此可以安全地以值傳遞與並行讀取。零值代表 0。
type Amount struct {
	r *big.Rat
}

// NewAmount 由整數建立數量
func NewAmount(n int64) Amount {
	return Amount{r: big.NewRat(n, 1)}
}

// NewFraction 由分子分母建立數量，分母不可為 0
func NewFraction(num, denom int64) Amount {
	return Amount{r: big.NewRat(num, denom)}
}

// One 數量 1
func One() Amount {
	return NewAmount(1)
}

// ParseAmount 解析十進位小數或分數字串，例如 "1.25"、"1/4"、"4.000"
func ParseAmount(s string) (Amount, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Amount{}, false
	}
	r, ok := new(big.Rat).SetString(s)
	if !ok {
		return Amount{}, false
	}
	return Amount{r: r}, true
}

// MustParseAmount 與 ParseAmount 相同，失敗時 panic，僅用於靜態資料
func MustParseAmount(s string) Amount {
	a, ok := ParseAmount(s)
	if !ok {
		panic(fmt.Sprintf("quantity: invalid amount %q", s))
	}
	return a
}

func (a Amount) rat() *big.Rat {
	if a.r == nil {
		return new(big.Rat)
	}
	return a.r
}

// Add 加法
func (a Amount) Add(b Amount) Amount {
	return Amount{r: new(big.Rat).Add(a.rat(), b.rat())}
}

// Mul 乘法
func (a Amount) Mul(b Amount) Amount {
	return Amount{r: new(big.Rat).Mul(a.rat(), b.rat())}
}

// Quo 除法，b 為 0 時 panic（呼叫端負責保證）
func (a Amount) Quo(b Amount) Amount {
	return Amount{r: new(big.Rat).Quo(a.rat(), b.rat())}
}

// Cmp 比較大小，回傳 -1、0、+1
func (a Amount) Cmp(b Amount) int {
	return a.rat().Cmp(b.rat())
}

// IsZero 是否為 0
func (a Amount) IsZero() bool {
	return a.rat().Sign() == 0
}

// IsInt 是否為整數
func (a Amount) IsInt() bool {
	return a.rat().IsInt()
}

// Rat 回傳底層有理數的副本
func (a Amount) Rat() *big.Rat {
	return new(big.Rat).Set(a.rat())
}

// String 標準顯示格式：
//   - 整數直接顯示（"750"、"4"）
//   - 小於 1 且分母不大的數值顯示為最簡分數（"1/8"）
//   - 其餘截斷至三位小數並去除尾端的 0（"6.5"、"2000000.123"）
func (a Amount) String() string {
	r := a.rat()
	if r.IsInt() {
		return r.Num().String()
	}

	abs := new(big.Rat).Abs(r)
	if abs.Cmp(bigOne) < 0 && r.Denom().Cmp(bigMaxFracDenom) <= 0 {
		return r.RatString()
	}

	s := truncateDecimal(r, displayPrecision)
	if s == "0" {
		// 太小而無法以三位小數表示時，退回分數
		return r.RatString()
	}
	return s
}

// truncateDecimal 將有理數朝 0 截斷至 places 位小數，並移除尾端的 0
func truncateDecimal(r *big.Rat, places int) string {
	scale := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(places)), nil)

	num := new(big.Int).Abs(r.Num())
	scaled := new(big.Int).Mul(num, scale)
	scaled.Quo(scaled, r.Denom())

	intPart, fracPart := new(big.Int).QuoRem(scaled, scale, new(big.Int))

	var sb strings.Builder
	if r.Sign() < 0 && scaled.Sign() != 0 {
		sb.WriteByte('-')
	}
	sb.WriteString(intPart.String())

	if fracPart.Sign() != 0 {
		frac := fracPart.String()
		if len(frac) < places {
			frac = strings.Repeat("0", places-len(frac)) + frac
		}
		frac = strings.TrimRight(frac, "0")
		sb.WriteByte('.')
		sb.WriteString(frac)
	}
	return sb.String()
}

// MarshalJSON 以字串輸出，避免浮點數精度損失
func (a Amount) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.String())
}

// UnmarshalJSON 接受字串（小數或分數）或 JSON 數字
func (a *Amount) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		var n json.Number
		if err := json.Unmarshal(data, &n); err != nil {
			return fmt.Errorf("invalid amount %s", string(data))
		}
		s = n.String()
	}
	parsed, ok := ParseAmount(s)
	if !ok {
		return fmt.Errorf("invalid amount %q", s)
	}
	*a = parsed
	return nil
}
