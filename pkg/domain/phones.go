package domain

import (
	"strings"

	"github.com/daniel-butler/product-trends/pkg/canon"
)

func phoneConfig() canon.Config {
	return canon.Config{
		Domain: Phones,
		GenericBrands: []string{
			"apple", "samsung", "google", "xiaomi", "oneplus", "realme", "motorola",
			"asus", "honor", "oppo", "vivo", "nothing", "pixel", "galaxy", "xiao",
			"one", "onep", "iphone", "redmi", "poco", "moto", "infinix", "rog", "zenfone",
			"india", "china", "gemini", "reddit",
		},
		NoisyTerms: []string{
			"ultra", "pro", "max", "plus", "lite", "edge", "red", "chinese", "cheap",
			"ios", "windows", "android", "usb", "bluetooth", "whatsapp", "youtube",
			"amazon", "camera", "battery", "screen", "s24", "s25", "usa", "europe",
			"canada", "usbc", "verizon", "nfc",
		},
		Patterns:  phonePatterns,
		MinLength: 2,
	}
}

// plusWord spells a trailing "+" as "Plus".
func plusWord(s string) string {
	return canon.Title(strings.ReplaceAll(s, "+", "plus"))
}

var phonePatterns = []canon.Pattern{
	{
		Name: "samsung-galaxy-s",
		Expr: `(?:samsung)? ?(?:galaxy)? ?s ?(?P<num>\d{2}) ?(?P<variant>ultra|plus|\+)?`,
		Template: func(m canon.Match) string {
			return canon.Join("Samsung Galaxy S"+m.Get("num"), plusWord(m.Get("variant")))
		},
	},
	{
		Name: "samsung-galaxy-z",
		Expr: `(?:samsung)? ?galaxy ?z ?(?P<line>flip|fold) ?(?P<num>\d)`,
		Template: func(m canon.Match) string {
			return canon.Join("Samsung Galaxy Z", m.Title("line"), m.Get("num"))
		},
	},
	{
		Name: "samsung-galaxy-a",
		Expr: `(?:samsung)? ?galaxy ?a ?(?P<num>\d{2})s?`,
		Template: func(m canon.Match) string {
			return "Samsung Galaxy A" + m.Get("num")
		},
	},
	{
		Name: "samsung-galaxy-mf",
		Expr: `(?:samsung)? ?galaxy ?(?P<line>m|f) ?(?P<num>\d{2})`,
		Template: func(m canon.Match) string {
			return "Samsung Galaxy " + m.Upper("line") + m.Get("num")
		},
	},
	{
		Name: "iphone",
		Expr: `(?:iphone|apple)? ?(?P<num>\d{1,2}) ?(?P<variant>pro|plus|max|se|mini)? ?(?P<max>max)?`,
		Template: func(m canon.Match) string {
			variant := m.Title("variant")
			if m.Get("variant") == "se" {
				variant = "SE"
			}
			suffix := ""
			if m.Has("max") {
				suffix = "Max"
			}
			return canon.Join("iPhone", m.Get("num"), variant, suffix)
		},
	},
	{
		Name: "iphone-se",
		Expr: `(?:iphone|apple)? ?se ?(?P<gen>\d{1,2})?`,
		Template: func(m canon.Match) string {
			return canon.Join("iPhone SE", m.Get("gen"))
		},
	},
	{
		Name: "google-pixel",
		Expr: `(?:google)? ?pixel ?(?P<num>\d{1,2}) ?(?P<variant>pro|a|xl)?`,
		Template: func(m canon.Match) string {
			variant := m.Title("variant")
			if m.Get("variant") == "xl" {
				variant = "XL"
			}
			return canon.Join("Google Pixel", m.Get("num"), variant)
		},
	},
	{
		Name: "google-pixel-fold",
		Expr: `(?:google)? ?pixel ?fold ?(?P<gen>\d)?`,
		Template: func(m canon.Match) string {
			return canon.Join("Google Pixel Fold", m.Get("gen"))
		},
	},
	{
		Name: "oneplus",
		Expr: `(?:oneplus|one ?plus) ?(?P<num>\d{1,2}) ?(?P<variant>pro|t|r)?`,
		Template: func(m canon.Match) string {
			return canon.Join("OnePlus", m.Get("num"), m.Model("variant"))
		},
	},
	{
		Name: "oneplus-nord",
		Expr: `(?:oneplus|one ?plus) ?nord ?(?P<ce>ce)? ?(?P<num>\d)? ?(?P<lite>lite)?`,
		Template: func(m canon.Match) string {
			return canon.Join("OnePlus Nord", m.Upper("ce"), m.Get("num"), m.Title("lite"))
		},
	},
	{
		Name: "xiaomi",
		Expr: `(?:xiaomi|mi) ?(?P<num>\d{1,2}) ?(?P<variant>pro|t|ultra|lite)?`,
		Template: func(m canon.Match) string {
			return canon.Join("Xiaomi", m.Get("num"), m.Model("variant"))
		},
	},
	{
		Name: "redmi-note",
		Expr: `redmi ?note ?(?P<num>\d{1,2}) ?(?P<variant>pro|plus|\+)?`,
		Template: func(m canon.Match) string {
			return canon.Join("Redmi Note", m.Get("num"), plusWord(m.Get("variant")))
		},
	},
	{
		Name: "poco",
		Expr: `poco ?(?P<line>[fmx]) ?(?P<num>\d) ?(?P<variant>pro|gt)?`,
		Template: func(m canon.Match) string {
			return canon.Join("POCO "+m.Upper("line")+m.Get("num"), m.Model("variant"))
		},
	},
	{
		Name: "realme",
		Expr: `realme ?(?P<num>\d{1,2}|gt) ?(?P<variant>pro|neo|master)? ?(?P<gen>\d)?`,
		Template: func(m canon.Match) string {
			return canon.Join("Realme", m.Upper("num"), m.Title("variant"), m.Get("gen"))
		},
	},
	{
		Name: "oppo",
		Expr: `oppo ?(?P<line>reno|find) ?(?P<num>[x\d]{1,2}) ?(?P<pro>pro)?`,
		Template: func(m canon.Match) string {
			return canon.Join("OPPO", m.Title("line"), m.Upper("num"), m.Title("pro"))
		},
	},
	{
		Name: "vivo",
		Expr: `vivo ?(?P<line>[vx]) ?(?P<num>\d{2,3}) ?(?P<pro>pro)?`,
		Template: func(m canon.Match) string {
			return canon.Join("Vivo "+m.Upper("line")+m.Get("num"), m.Title("pro"))
		},
	},
	{
		Name: "motorola",
		Expr: `(?:motorola|moto) ?(?P<line>edge|g) ?(?P<num>\d{2,3}) ?(?P<variant>pro|plus|fusion|power)?`,
		Template: func(m canon.Match) string {
			return canon.Join("Motorola", m.Model("line"), m.Get("num"), m.Title("variant"))
		},
	},
	{
		Name: "nothing-phone",
		Expr: `(?:nothing)? ?phone ?\(?(?P<num>\d)(?P<a>a)?\)?`,
		Template: func(m canon.Match) string {
			return "Nothing Phone (" + m.Get("num") + m.Get("a") + ")"
		},
	},
	{
		Name: "infinix",
		Expr: `infinix ?(?P<line>note|zero|hot) ?(?P<num>\d{1,2}) ?(?P<variant>pro|ultra|play)?`,
		Template: func(m canon.Match) string {
			return canon.Join("Infinix", m.Title("line"), m.Get("num"), m.Title("variant"))
		},
	},
	{
		Name: "asus-phone",
		Expr: `asus ?(?P<line>rog|zenfone) ?(?:phone)? ?(?P<num>\d{1,2}) ?(?P<variant>pro|ultimate)?`,
		Template: func(m canon.Match) string {
			if m.Get("line") == "zenfone" {
				return canon.Join("ASUS Zenfone", m.Get("num"), m.Title("variant"))
			}
			return canon.Join("ASUS ROG Phone", m.Get("num"), m.Title("variant"))
		},
	},
}
