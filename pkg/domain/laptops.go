package domain

import "github.com/daniel-butler/product-trends/pkg/canon"

func laptopConfig() canon.Config {
	return canon.Config{
		Domain: Laptops,
		GenericBrands: []string{
			"apple", "dell", "hp", "lenovo", "asus", "acer", "msi", "razer", "samsung",
			"microsoft", "huawei", "lg", "google", "macbook", "thinkpad", "surface",
			"mac", "alienware", "xps", "spectre", "omen", "legion", "yoga", "zenbook",
			"rog", "tuf", "predator", "nitro", "swift", "inspiron", "pavilion", "ideapad",
		},
		NoisyTerms: []string{
			"laptop", "notebook", "pc", "windows", "macos", "linux", "intel", "amd", "ryzen",
			"nvidia", "geforce", "rtx", "gtx", "ram", "ssd", "hdd", "screen", "display",
			"keyboard", "trackpad", "usb", "thunderbolt", "wifi", "bluetooth", "gaming",
			"pro", "air", "book", "ultra", "slim", "oled", "touchscreen", "convertible",
			"i3", "i5", "i7", "i9", "gen", "edition", "new", "used", "refurbished", "amazon", "usbc",
		},
		Patterns:  laptopPatterns,
		MinLength: 3,
	}
}

var laptopPatterns = []canon.Pattern{
	{
		Name: "apple-macbook",
		Expr: `(?:apple|macbook)? ?(?P<line>pro|air) ?(?P<chip>m1|m2|m3)? ?(?P<size>\d{2})? ?(?:inch|")?`,
		Template: func(m canon.Match) string {
			return canon.Join("Apple MacBook", m.Title("line"), m.Upper("chip"))
		},
	},
	{
		Name: "apple-macbook-size",
		Expr: `macbook (?P<size>\d{2}) ?(?:inch|")?`,
		Template: func(m canon.Match) string {
			return "Apple MacBook"
		},
	},
	{
		Name: "dell-xps",
		Expr: `(?:dell)? ?xps ?(?P<size>\d{2}) ?(?:\d{4})?`,
		Template: func(m canon.Match) string {
			return "Dell XPS " + m.Get("size")
		},
	},
	{
		Name: "dell-inspiron",
		Expr: `(?:dell)? ?inspiron ?(?P<size>\d{2}) ?(?:\d{4})?`,
		Template: func(m canon.Match) string {
			return "Dell Inspiron " + m.Get("size")
		},
	},
	{
		Name: "alienware",
		Expr: `(?:dell|alienware)? ?(?P<line>m|x)(?P<size>\d{2}) ?(?:r\d)?`,
		Template: func(m canon.Match) string {
			return "Alienware " + m.Upper("line") + m.Get("size")
		},
	},
	{
		Name: "hp-spectre",
		Expr: `(?:hp)? ?spectre ?x360 ?(?P<size>\d{2})?`,
		Template: func(m canon.Match) string {
			return canon.Join("HP Spectre x360", m.Get("size"))
		},
	},
	{
		Name: "hp-envy",
		Expr: `(?:hp)? ?envy ?x360 ?(?P<size>\d{2})?`,
		Template: func(m canon.Match) string {
			return canon.Join("HP Envy x360", m.Get("size"))
		},
	},
	{
		Name: "hp-omen",
		Expr: `(?:hp)? ?omen ?(?P<size>\d{2}l?)?`,
		Template: func(m canon.Match) string {
			return canon.Join("HP Omen", m.Upper("size"))
		},
	},
	{
		Name: "lenovo-thinkpad",
		Expr: `(?:lenovo)? ?thinkpad ?(?P<model>x1|t\d{2,3}|p\d{2}) ?(?P<variant>carbon|yoga|nano)?`,
		Template: func(m canon.Match) string {
			return canon.Join("Lenovo ThinkPad", m.Upper("model"), m.Title("variant"))
		},
	},
	{
		Name: "lenovo-legion",
		Expr: `(?:lenovo)? ?legion ?(?P<variant>pro|slim)? ?(?P<num>[579])i?`,
		Template: func(m canon.Match) string {
			return canon.Join("Lenovo Legion", m.Title("variant"), m.Get("num"))
		},
	},
	{
		Name: "lenovo-yoga",
		Expr: `(?:lenovo)? ?yoga ?(?P<variant>slim|book)? ?(?P<num>\d{1,2})i?`,
		Template: func(m canon.Match) string {
			return canon.Join("Lenovo Yoga", m.Title("variant"), m.Get("num"))
		},
	},
	{
		Name: "asus-rog",
		Expr: `(?:asus)? ?(?:rog|republic of gamers)? ?(?P<line>zephyrus|strix|flow) ?(?P<model>[a-z]{1,2}\d{2})?`,
		Template: func(m canon.Match) string {
			return canon.Join("ASUS ROG", m.Title("line"), m.Upper("model"))
		},
	},
	{
		Name: "asus-zenbook",
		Expr: `(?:asus)? ?zenbook ?(?P<variant>duo|flip|pro)? ?(?P<size>\d{2})?`,
		Template: func(m canon.Match) string {
			return canon.Join("ASUS ZenBook", m.Title("variant"), m.Get("size"))
		},
	},
	{
		Name: "asus-tuf",
		Expr: `(?:asus)? ?tuf ?(?:gaming|dash) ?(?P<model>[af]\d{2})?`,
		Template: func(m canon.Match) string {
			return canon.Join("ASUS TUF Gaming", m.Upper("model"))
		},
	},
	{
		Name: "acer-predator",
		Expr: `(?:acer)? ?predator ?(?P<line>helios|triton) ?(?P<num>\d{3})?`,
		Template: func(m canon.Match) string {
			return canon.Join("Acer Predator", m.Title("line"), m.Get("num"))
		},
	},
	{
		Name: "acer-nitro",
		Expr: `(?:acer)? ?nitro ?(?P<model>5|v)?`,
		Template: func(m canon.Match) string {
			return "Acer Nitro " + m.Or("model", "5")
		},
	},
	{
		Name: "acer-swift",
		Expr: `(?:acer)? ?swift ?(?P<model>x|go|edge|\d)?`,
		Template: func(m canon.Match) string {
			return canon.Join("Acer Swift", m.Upper("model"))
		},
	},
	{
		Name: "microsoft-surface",
		Expr: `(?:microsoft|surface)? ?(?P<line>pro|laptop|book|go|studio) ?(?P<num>\d)?`,
		Template: func(m canon.Match) string {
			return canon.Join("Microsoft Surface", m.Title("line"), m.Get("num"))
		},
	},
	{
		Name: "razer-blade",
		Expr: `(?:razer)? ?blade ?(?P<variant>stealth|advanced)? ?(?P<size>\d{2})?`,
		Template: func(m canon.Match) string {
			return canon.Join("Razer Blade", m.Get("size"), m.Title("variant"))
		},
	},
}
