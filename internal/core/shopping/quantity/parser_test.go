package quantity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParse(t *testing.T) {
	tests := []struct {
		in     string
		amount string
		unit   Unit
		text   string
	}{
		// 數字格式
		{"1 teaspoon", "1", Teaspoon, ""},
		{"1 1/4 cups", "1.25", Cup, ""},
		{"1/2 tsp", "1/2", Teaspoon, ""},
		{"0.25 cup", "1/4", Cup, ""},
		{".5 cup", "1/2", Cup, ""},
		{"4 1/2 Ounces", "4.5", Ounce, ""},
		{"½ cup", "1/2", Cup, ""},
		{"1½ cups", "1.5", Cup, ""},

		// 範圍取第一個值
		{"3-4 cups", "3", Cup, ""},
		{"3 to 4 cups", "3", Cup, ""},
		{"3-to-3.5 oz", "3", Ounce, ""},
		{"2 or 3 cups", "2", Cup, ""},

		// 縮寫與複數
		{"1 Tbsp.", "1", Tablespoon, ""},
		{"2 fl oz", "2", FluidOunce, ""},
		{"2 fl. oz.", "2", FluidOunce, ""},
		{"500 ml", "500", Milliliter, ""},
		{"1.5 l", "1.5", Liter, ""},
		{"250 grams", "250", Gram, ""},
		{"2 lbs", "2", Pound, ""},
		{"100 mg", "100", Milligram, ""},
		{"2 kg", "2", Kilogram, ""},
		{"1 c", "1", Cup, ""},

		// 括號與容器尺寸
		{"(15-ounce) can", "15", Ounce, ""},
		{"2 (15-ounce) cans", "30", Ounce, ""},
		{"1 (28 oz) can", "28", Ounce, ""},
		{"2 [400g] tins", "800", Gram, ""},
		{"a 13-ounce can", "13", Ounce, ""},
		{"one 28-ounce can", "28", Ounce, ""},
		{"1 14-oz can", "14", Ounce, ""},
		{"(large) can", "1", Unknown, "can"},

		// 括號外已有單位時括號為等量換算
		{"2 cups (480 ml)", "480", Milliliter, ""},
		{"3 tablespoons (45 g)", "45", Gram, ""},
		{"1 1/2 cups (12 ounces)", "12", Ounce, ""},
		{"1 stick (113 g)", "113", Gram, ""},

		// 數字單字
		{"a pinch", "1", Unknown, "pinch"},
		{"half cup", "1/2", Cup, ""},
		{"two cups", "2", Cup, ""},

		// 無法辨識的單位
		{"some", "1", Unknown, "some"},
		{"2", "2", Unknown, ""},
		{"2 pinch", "2", Unknown, "pinch"},
		{"3 pinches", "3", Unknown, "pinch"},
		{"2 cloves", "2", Unknown, "clove"},
		{"1 large", "1", Unknown, "large"},
		{"3 to taste", "3", Unknown, "to taste"},
		{"1/0 cup", "1", Unknown, "1/0 cup"},
		{"1 cs", "1", Unknown, "cs"},
		{"2 gs", "2", Unknown, "gs"},

		// 空白輸入
		{"", "1", Unknown, ""},
		{"   ", "1", Unknown, ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			q := Parse(tt.in)
			assert.Equal(t, tt.amount, q.Amount.String())
			assert.Equal(t, tt.unit, q.Unit)
			assert.Equal(t, tt.text, q.Text)
		})
	}
}

func TestParseCountAndTextNeverCombine(t *testing.T) {
	count := Parse("2")
	pinch := Parse("2 pinch")

	assert.False(t, count.Compatible(pinch))
	assert.True(t, Parse("1 pinch").Compatible(Parse("2 pinches")))
	assert.True(t, Parse("some").Compatible(Parse("Some")))
}

func TestParseVolumeAndMassOunces(t *testing.T) {
	mass := Parse("8 oz")
	volume := Parse("8 fl oz")

	assert.Equal(t, Mass, mass.Base())
	assert.Equal(t, Volume, volume.Base())
	assert.False(t, mass.Compatible(volume))
}

func TestParseIsPure(t *testing.T) {
	first := Parse("2 (15-ounce) cans")
	second := Parse("2 (15-ounce) cans")
	assert.Equal(t, first.String(), second.String())
	assert.Equal(t, "30 ounce", first.String())
}
