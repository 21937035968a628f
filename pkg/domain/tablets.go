package domain

import (
	"strings"

	"github.com/daniel-butler/product-trends/pkg/canon"
)

func tabletConfig() canon.Config {
	return canon.Config{
		Domain: Tablets,
		GenericBrands: []string{
			"apple", "samsung", "microsoft", "lenovo", "amazon", "huawei", "xiaomi",
			"google", "oneplus", "ipad", "surface", "galaxy", "tab", "pixel",
		},
		NoisyTerms: []string{
			"tablet", "pad", "pro", "air", "mini", "plus", "ultra", "go", "fe", "max",
			"pen", "pencil", "keyboard", "case", "screen", "display", "wifi", "cellular",
			"android", "ipados", "windows", "gen", "generation", "new", "used",
		},
		Patterns:  tabletPatterns,
		MinLength: 3,
	}
}

var tabletPatterns = []canon.Pattern{
	{
		Name: "apple-ipad-chip",
		Expr: `(?:apple)? ?ipad ?(?P<line>pro|air|mini)? ?(?P<gen>\d{1,2})? ?(?:gen|th)? ?(?P<chip>m1|m2|m4)?`,
		Template: func(m canon.Match) string {
			return canon.Join("Apple iPad", m.Title("line"), m.Upper("chip"))
		},
	},
	{
		Name: "apple-ipad",
		Expr: `(?:apple)? ?ipad ?(?P<gen>\d{1,2})? ?(?P<line>pro|air|mini)?`,
		Template: func(m canon.Match) string {
			return canon.Join("Apple iPad", m.Title("line"))
		},
	},
	{
		Name: "samsung-galaxy-tab-s",
		Expr: `(?:samsung)? ?galaxy ?tab ?s ?(?P<num>\d{1,2}) ?(?P<variant>ultra|plus|\+|fe)?`,
		Template: func(m canon.Match) string {
			variant := strings.ReplaceAll(m.Get("variant"), "+", "plus")
			return canon.Join("Samsung Galaxy Tab S"+m.Get("num"), strings.ToUpper(variant))
		},
	},
	{
		Name: "samsung-galaxy-tab-a",
		Expr: `(?:samsung)? ?galaxy ?tab ?a ?(?P<num>\d{1,2}) ?(?P<lite>lite)?`,
		Template: func(m canon.Match) string {
			return canon.Join("Samsung Galaxy Tab A"+m.Get("num"), m.Title("lite"))
		},
	},
	{
		Name: "microsoft-surface",
		Expr: `(?:microsoft|surface)? ?(?P<line>pro|go) ?(?P<num>\d)`,
		Template: func(m canon.Match) string {
			return canon.Join("Microsoft Surface", m.Title("line"), m.Get("num"))
		},
	},
	{
		Name: "xiaomi-pad",
		Expr: `(?:xiaomi|mi)? ?pad ?(?P<num>\d) ?(?P<pro>pro)?`,
		Template: func(m canon.Match) string {
			return canon.Join("Xiaomi Pad", m.Get("num"), m.Title("pro"))
		},
	},
	{
		Name: "oneplus-pad",
		Expr: `(?:oneplus)? ?pad ?(?P<go>go)?`,
		Template: func(m canon.Match) string {
			return canon.Join("OnePlus Pad", m.Title("go"))
		},
	},
	{
		Name: "google-pixel-tablet",
		Expr: `(?:google)? ?pixel ?tablet`,
		Template: func(m canon.Match) string {
			return "Google Pixel Tablet"
		},
	},
	{
		Name: "lenovo-tab",
		Expr: `(?:lenovo)? ?tab ?(?P<model>[pm]\d{2}) ?(?P<variant>pro|plus)?`,
		Template: func(m canon.Match) string {
			return canon.Join("Lenovo Tab", m.Upper("model"), m.Title("variant"))
		},
	},
	{
		Name: "amazon-fire",
		Expr: `(?:amazon)? ?fire ?(?P<hd>hd)? ?(?P<num>\d{1,2}) ?(?P<variant>plus|kids)?`,
		Template: func(m canon.Match) string {
			return canon.Join("Amazon Fire", m.Upper("hd"), m.Get("num"), m.Title("variant"))
		},
	},
}
