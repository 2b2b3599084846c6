package pricing

// Category is one entry of the repair catalog. BasePrice is the labor charge
// before brand scaling; Difficulty drives the diagnostic fee tier.
type Category struct {
	Name        string
	Description string
	BasePrice   float64
	BaseHours   float64
	Difficulty  int
}

// CategoryGeneral is the fallback bucket used when a free-text issue matches
// none of the specific keyword groups.
const CategoryGeneral = "综合检测"

func defaultCatalog() []Category {
	return []Category{
		{Name: "屏幕维修", Description: "屏幕破碎、显示异常、触摸失灵等问题", BasePrice: 300, BaseHours: 2, Difficulty: 2},
		{Name: "电池更换", Description: "电池老化、续航短、充电异常等问题", BasePrice: 150, BaseHours: 1, Difficulty: 1},
		{Name: "主板维修", Description: "不开机、死机、进水等主板相关问题", BasePrice: 500, BaseHours: 4, Difficulty: 4},
		{Name: "摄像头维修", Description: "摄像头模糊、无法对焦、闪光灯故障等", BasePrice: 200, BaseHours: 1, Difficulty: 2},
		{Name: "扬声器维修", Description: "听筒、扬声器无声音或声音异常", BasePrice: 100, BaseHours: 1, Difficulty: 1},
		{Name: CategoryGeneral, Description: "故障不明确时的综合检测与小修", BasePrice: 80, BaseHours: 1, Difficulty: 1},
	}
}

// BrandRate pairs a brand keyword with its price multiplier. Lookups scan the
// table in declaration order, so an input matching several keywords always
// resolves to the first one.
type BrandRate struct {
	Keyword    string
	Multiplier float64
}

func defaultBrandRates() []BrandRate {
	return []BrandRate{
		{"Apple", 1.5},
		{"iPhone", 1.5},
		{"华为", 1.3},
		{"Huawei", 1.3},
		{"三星", 1.2},
		{"Samsung", 1.2},
		{"OPPO", 1.1},
		{"vivo", 1.1},
		{"一加", 1.1},
		{"OnePlus", 1.1},
		{"小米", 1.0},
		{"Xiaomi", 1.0},
		{"魅族", 0.9},
		{"Meizu", 0.9},
	}
}

const defaultBasePartsCost = 200

// PartCost pairs a part keyword with its base cost, scanned in declaration
// order like the brand table.
type PartCost struct {
	Keyword string
	Cost    float64
}

func defaultPartCosts() []PartCost {
	return []PartCost{
		{"屏幕", 400},
		{"电池", 120},
		{"主板", 800},
		{"摄像头", 200},
		{"扬声器", 80},
		{"听筒", 60},
		{"充电口", 100},
		{"指纹", 150},
		{"面容", 300},
	}
}
