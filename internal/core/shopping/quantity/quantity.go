package quantity

import (
	"encoding/json"
	"fmt"
)

// Quantity 數量與單位
//
// Unit 為 Unknown 時 Text 保存原始單位文字（可能為空字串，代表單純計數），
// 只有文字完全相同的數量才能相加；其餘情況 Text 一律為空。
type Quantity struct {
	Amount Amount
	Unit   Unit
	Text   string
}

// New 建立已知單位的數量
func New(amount Amount, unit Unit) Quantity {
	if unit == Unknown {
		return Quantity{Amount: amount, Unit: Unknown}
	}
	return Quantity{Amount: amount, Unit: unit}
}

// NewUnrecognized 建立無法辨識單位的數量
func NewUnrecognized(amount Amount, text string) Quantity {
	return Quantity{Amount: amount, Unit: Unknown, Text: text}
}

// Base 數量所屬類別
func (q Quantity) Base() BaseUnit {
	return q.Unit.Base()
}

// UnrecognizedText 回傳原始單位文字，已知單位時 ok 為 false
func (q Quantity) UnrecognizedText() (string, bool) {
	if q.Unit != Unknown {
		return "", false
	}
	return q.Text, true
}

// Compatible 兩個數量能否相加
func (q Quantity) Compatible(o Quantity) bool {
	if q.Base() != o.Base() {
		return false
	}
	if q.Base() == Unrecognized {
		return q.Text == o.Text
	}
	return true
}

// Convert 換算成指定單位；不同類別時 ok 為 false
func (q Quantity) Convert(to Unit) (Quantity, bool) {
	if q.Unit == to {
		return q, true
	}
	if q.Base() == Unrecognized || q.Base() != to.Base() {
		return q, false
	}
	amount := q.Amount.Mul(q.Unit.Ratio()).Quo(to.Ratio())
	return New(amount, to), true
}

// Add 將 o 換算成 q 的單位後相加，結果永遠沿用 q 的單位
func (q Quantity) Add(o Quantity) (Quantity, bool) {
	if !q.Compatible(o) {
		return q, false
	}
	if q.Base() == Unrecognized {
		return NewUnrecognized(q.Amount.Add(o.Amount), q.Text), true
	}
	converted, ok := o.Convert(q.Unit)
	if !ok {
		return q, false
	}
	return New(q.Amount.Add(converted.Amount), q.Unit), true
}

// String 人類可讀格式，例如 "1/4 cup"、"2 pinch"
func (q Quantity) String() string {
	if q.Unit == Unknown {
		if q.Text == "" {
			return q.Amount.String()
		}
		return fmt.Sprintf("%s %s", q.Amount, q.Text)
	}
	return fmt.Sprintf("%s %s", q.Amount, q.Unit)
}

// quantityJSON 對外序列化格式
type quantityJSON struct {
	Amount           Amount  `json:"amount"`
	Unit             Unit    `json:"unit"`
	UnrecognizedText *string `json:"unrecognized_text"`
}

// MarshalJSON 實現 json.Marshaler
func (q Quantity) MarshalJSON() ([]byte, error) {
	out := quantityJSON{Amount: q.Amount, Unit: q.Unit}
	if text, ok := q.UnrecognizedText(); ok {
		out.UnrecognizedText = &text
	}
	return json.Marshal(out)
}

// UnmarshalJSON 實現 json.Unmarshaler
func (q *Quantity) UnmarshalJSON(data []byte) error {
	var in quantityJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	if in.Unit == Unknown {
		text := ""
		if in.UnrecognizedText != nil {
			text = *in.UnrecognizedText
		}
		*q = NewUnrecognized(in.Amount, text)
		return nil
	}
	*q = New(in.Amount, in.Unit)
	return nil
}
