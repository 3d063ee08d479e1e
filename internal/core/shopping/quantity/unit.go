package quantity

import (
	"encoding/json"
	"fmt"
	"strings"
)

// BaseUnit 度量類別，只有同類別的數量可以換算相加
type BaseUnit int

const (
	Unrecognized BaseUnit = iota
	Volume
	Mass
)

// String 實現 fmt.Stringer
func (b BaseUnit) String() string {
	switch b {
	case Volume:
		return "volume"
	case Mass:
		return "mass"
	default:
		return "unrecognized"
	}
}

// Unit 已知單位
type Unit int

const (
	// Unknown 無法辨識的單位，原始文字保存在 Quantity 中
	Unknown Unit = iota
	Teaspoon
	Tablespoon
	FluidOunce
	Cup
	Pint
	Quart
	Gallon
	Milliliter
	Liter
	Milligram
	Gram
	Kilogram
	Ounce
	Pound
)

// unitInfo 單位表條目
// ratio 為換算成該類別參考單位的倍數（體積：茶匙，質量：公克）
type unitInfo struct {
	name  string
	base  BaseUnit
	ratio Amount
}

// 一美制茶匙 = 4.92892159375 毫升（定義值）
var teaspoonMilliliters = MustParseAmount("4.92892159375")

var unitTable = map[Unit]unitInfo{
	Unknown: {name: "unknown", base: Unrecognized, ratio: One()},

	Teaspoon:   {name: "teaspoon", base: Volume, ratio: NewAmount(1)},
	Tablespoon: {name: "tablespoon", base: Volume, ratio: NewAmount(3)},
	FluidOunce: {name: "fluid ounce", base: Volume, ratio: NewAmount(6)},
	Cup:        {name: "cup", base: Volume, ratio: NewAmount(48)},
	Pint:       {name: "pint", base: Volume, ratio: NewAmount(96)},
	Quart:      {name: "quart", base: Volume, ratio: NewAmount(192)},
	Gallon:     {name: "gallon", base: Volume, ratio: NewAmount(768)},
	Milliliter: {name: "milliliter", base: Volume, ratio: One().Quo(teaspoonMilliliters)},
	Liter:      {name: "liter", base: Volume, ratio: NewAmount(1000).Quo(teaspoonMilliliters)},

	Milligram: {name: "milligram", base: Mass, ratio: NewFraction(1, 1000)},
	Gram:      {name: "gram", base: Mass, ratio: NewAmount(1)},
	Kilogram:  {name: "kilogram", base: Mass, ratio: NewAmount(1000)},
	Ounce:     {name: "ounce", base: Mass, ratio: MustParseAmount("28.349523125")},
	Pound:     {name: "pound", base: Mass, ratio: MustParseAmount("453.59237")},
}

// unitAliases 正規化後的單位文字 → 單位（單數形式，複數由 LookupUnit 處理）
var unitAliases = map[string]Unit{
	"teaspoon": Teaspoon, "teaspoonful": Teaspoon, "tsp": Teaspoon, "tspn": Teaspoon,

	"tablespoon": Tablespoon, "tablespoonful": Tablespoon, "tbsp": Tablespoon,
	"tbs": Tablespoon, "tbl": Tablespoon, "tbsn": Tablespoon,

	"fluid ounce": FluidOunce, "fl oz": FluidOunce, "floz": FluidOunce, "fl ounce": FluidOunce,

	"cup": Cup, "c": Cup,
	"pint": Pint, "pt": Pint,
	"quart": Quart, "qt": Quart,
	"gallon": Gallon, "gal": Gallon,

	"milliliter": Milliliter, "millilitre": Milliliter, "ml": Milliliter,
	"liter": Liter, "litre": Liter, "l": Liter,

	"milligram": Milligram, "milligramme": Milligram, "mg": Milligram,
	"gram": Gram, "gramme": Gram, "g": Gram, "gr": Gram,
	"kilogram": Kilogram, "kilogramme": Kilogram, "kilo": Kilogram, "kg": Kilogram,
	"ounce": Ounce, "oz": Ounce,
	"pound": Pound, "lb": Pound,
}

// String 單位名稱
func (u Unit) String() string {
	if info, ok := unitTable[u]; ok {
		return info.name
	}
	return unitTable[Unknown].name
}

// Base 單位所屬類別
func (u Unit) Base() BaseUnit {
	return unitTable[u].base
}

// Ratio 換算成參考單位的倍數
func (u Unit) Ratio() Amount {
	if info, ok := unitTable[u]; ok {
		return info.ratio
	}
	return One()
}

// Units 所有已知單位（不含 Unknown），依宣告順序
func Units() []Unit {
	units := make([]Unit, 0, len(unitTable)-1)
	for u := Teaspoon; u <= Pound; u++ {
		units = append(units, u)
	}
	return units
}

// normalizeUnitText 小寫、去除句點、合併空白
func normalizeUnitText(text string) string {
	text = strings.ToLower(text)
	text = strings.ReplaceAll(text, ".", " ")
	return strings.Join(strings.Fields(text), " ")
}

// LookupUnit 查詢單位文字，支援縮寫與 s/es 複數
func LookupUnit(text string) (Unit, bool) {
	key := normalizeUnitText(text)
	if key == "" {
		return Unknown, false
	}
	if u, ok := unitAliases[key]; ok {
		return u, true
	}
	for _, suffix := range []string{"es", "s"} {
		// 單字母縮寫不接受複數："cs"、"gs" 不是單位
		stem := strings.TrimSuffix(key, suffix)
		if stem == key || len(stem) < 2 {
			continue
		}
		if u, ok := unitAliases[stem]; ok {
			return u, true
		}
	}
	return Unknown, false
}

// ParseUnit 由單位名稱還原單位，Unknown 也可解析
func ParseUnit(name string) (Unit, error) {
	if name == unitTable[Unknown].name || name == "" {
		return Unknown, nil
	}
	for u, info := range unitTable {
		if info.name == name {
			return u, nil
		}
	}
	if u, ok := LookupUnit(name); ok {
		return u, nil
	}
	return Unknown, fmt.Errorf("unknown unit %q", name)
}

// MarshalJSON 以單位名稱輸出
func (u Unit) MarshalJSON() ([]byte, error) {
	return json.Marshal(u.String())
}

// UnmarshalJSON 由單位名稱解析
func (u *Unit) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	parsed, err := ParseUnit(name)
	if err != nil {
		return err
	}
	*u = parsed
	return nil
}
