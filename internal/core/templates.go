package core

// TemplateInfo is a static, named budget rule. Allocations generates a fresh
// set of seed rows as fractions of the given income; ids come from newID, so
// repeated applications never reuse row ids.
type TemplateInfo struct {
	Title       string
	Description string
	SuitableFor string
	Allocations func(income float64, newID func() string) []Allocation
}

// TemplateNames lists the catalog in display order.
var TemplateNames = []string{
	"50/30/20法则",
	"零基预算法",
	"4321预算法",
	"70/20/10法则",
	"六罐法则",
	"创业启动期",
	"创业成长期",
	"精益创业",
}

// Template looks up a catalog entry by name.
func Template(name string) (TemplateInfo, bool) {
	t, ok := templates[name]
	return t, ok
}

var templates = map[string]TemplateInfo{
	"50/30/20法则": {
		Title:       "50/30/20法则",
		Description: "由美国参议员Elizabeth Warren推广的经典预算法则，将收入分为三大类：必要开支、个人支出和储蓄/投资。简单易行，适合大多数人作为起点。",
		SuitableFor: "适合初次预算、稳定收入人群、工薪阶层",
		Allocations: func(income float64, newID func() string) []Allocation {
			return []Allocation{
				{ID: newID(), Purpose: "必要支出", Amount: income * 0.5, Category: "housing",
					Note: "生活必需品，包括房租/房贷、水电、食品、基本交通和基础医疗等"},
				{ID: newID(), Purpose: "个人支出", Amount: income * 0.3, Category: "entertainment",
					Note: "提升生活品质的支出，包括娱乐、购物、餐厅、旅行等非必需品"},
				{ID: newID(), Purpose: "储蓄与投资", Amount: income * 0.2, Category: "saving",
					Note: "为未来做准备，包括应急基金、退休储蓄、债务偿还和投资增值"},
			}
		},
	},
	"零基预算法": {
		Title:       "零基预算法",
		Description: "以\"收入-支出=零\"为原则的精细预算方法，要求为每一分钱安排归属。强调根据本月实际情况灵活规划，适合需要严格控制支出的人群。",
		SuitableFor: "适合财务精细化管理、不稳定收入人群、需要还债人群",
		Allocations: func(_ float64, newID func() string) []Allocation {
			return []Allocation{
				{ID: newID(), Purpose: "住房费用", Category: "housing", Note: "房租/房贷、物业费、水电气网费等"},
				{ID: newID(), Purpose: "日常餐饮", Category: "food", Note: "日常三餐、食材购买等"},
				{ID: newID(), Purpose: "交通出行", Category: "transport", Note: "公共交通、油费、车辆维护等"},
				{ID: newID(), Purpose: "医疗健康", Category: "medical", Note: "医疗保险、门诊费用、药品等"},
				{ID: newID(), Purpose: "个人消费", Category: "entertainment", Note: "娱乐、爱好、外出就餐等"},
				{ID: newID(), Purpose: "紧急备用", Category: "saving", Note: "应急基金，建议3-6个月生活费"},
				{ID: newID(), Purpose: "未来投资", Category: "investment", Note: "退休金、股票、基金等投资"},
				{ID: newID(), Purpose: "债务偿还", Category: "other", Note: "信用卡、贷款等债务的还款"},
			}
		},
	},
	"4321预算法": {
		Title:       "4321预算法",
		Description: "简单易记的收入分配策略，将收入按比例分为四大块：40%基本生活、30%自由支配、20%财务目标、10%储蓄投资。平衡了必要支出与个人所需。",
		SuitableFor: "适合平衡稳健型人群、初次理财人士",
		Allocations: func(income float64, newID func() string) []Allocation {
			return []Allocation{
				{ID: newID(), Purpose: "基本生活(40%)", Amount: income * 0.4, Category: "housing",
					Note: "基础生活必需品，包括住房、餐饮、基本服装等"},
				{ID: newID(), Purpose: "自由支配(30%)", Amount: income * 0.3, Category: "entertainment",
					Note: "个人享受和提升生活品质的支出，如娱乐、旅行等"},
				{ID: newID(), Purpose: "财务目标(20%)", Amount: income * 0.2, Category: "other",
					Note: "针对性储蓄，如购房首付、教育金等特定目标"},
				{ID: newID(), Purpose: "储蓄投资(10%)", Amount: income * 0.1, Category: "investment",
					Note: "长期理财增值，为退休或财务自由做准备"},
			}
		},
	},
	"70/20/10法则": {
		Title:       "70/20/10法则",
		Description: "一种较为激进的理财方法，强调更大比例的当期生活支出和享受。70%用于生活开支，20%用于储蓄，10%用于投资或捐赠。",
		SuitableFor: "适合高收入人群、年轻人、追求当下生活品质者",
		Allocations: func(income float64, newID func() string) []Allocation {
			return []Allocation{
				{ID: newID(), Purpose: "生活开支(70%)", Amount: income * 0.7, Category: "housing",
					Note: "所有日常生活开支，包括住房、食品、交通、娱乐等"},
				{ID: newID(), Purpose: "储蓄目标(20%)", Amount: income * 0.2, Category: "saving",
					Note: "短期和中期储蓄，包括应急基金和阶段性目标"},
				{ID: newID(), Purpose: "投资/捐赠(10%)", Amount: income * 0.1, Category: "investment",
					Note: "长期投资或回馈社会的捐赠支出"},
			}
		},
	},
	"六罐法则": {
		Title:       "六罐法则",
		Description: "源自《小狗钱钱》的理财方法，将收入分为六个\"罐子\"，分别用于不同目的。注重长期财务安全和生活品质的平衡。",
		SuitableFor: "适合家庭理财、长期稳健规划、有多元理财需求者",
		Allocations: func(income float64, newID func() string) []Allocation {
			return []Allocation{
				{ID: newID(), Purpose: "生活必需(55%)", Amount: income * 0.55, Category: "housing",
					Note: "日常生活的必要开支，如住房、食品、基本服装等"},
				{ID: newID(), Purpose: "教育投资(10%)", Amount: income * 0.1, Category: "education",
					Note: "用于自我提升和学习的支出，包括书籍、课程等"},
				{ID: newID(), Purpose: "储蓄备用(10%)", Amount: income * 0.1, Category: "saving",
					Note: "应急基金，以应对突发情况"},
				{ID: newID(), Purpose: "享受生活(10%)", Amount: income * 0.1, Category: "entertainment",
					Note: "提升生活品质的支出，如旅行、娱乐等"},
				{ID: newID(), Purpose: "长期投资(10%)", Amount: income * 0.1, Category: "investment",
					Note: "用于长期财富增值的投资"},
				{ID: newID(), Purpose: "慷慨捐赠(5%)", Amount: income * 0.05, Category: "other",
					Note: "回馈社会的慈善捐款"},
			}
		},
	},
	"创业启动期": {
		Title:       "创业启动期预算",
		Description: "适合刚开始创业的个人，平衡生活必需与创业投入，保持安全缓冲金",
		SuitableFor: "副业创业者、独立创业者、刚离职创业的个人",
		Allocations: func(income float64, newID func() string) []Allocation {
			return []Allocation{
				{ID: newID(), Purpose: "房租水电", Amount: income * 0.25, Category: "housing", ManualGroup: "life_essential"},
				{ID: newID(), Purpose: "日常餐饮", Amount: income * 0.15, Category: "food", ManualGroup: "life_essential"},
				{ID: newID(), Purpose: "产品开发", Amount: income * 0.2, Category: "housing", ManualGroup: "startup_cost"},
				{ID: newID(), Purpose: "设备工具", Amount: income * 0.1, Category: "transport", ManualGroup: "startup_cost"},
				{ID: newID(), Purpose: "技能学习", Amount: income * 0.15, Category: "education", ManualGroup: "skill_growth"},
				{ID: newID(), Purpose: "应急储备", Amount: income * 0.1, Category: "saving", ManualGroup: "safety_net"},
				{ID: newID(), Purpose: "减压娱乐", Amount: income * 0.05, Category: "entertainment", ManualGroup: "enjoyment"},
			}
		},
	},
	"创业成长期": {
		Title:       "创业成长期预算",
		Description: "适合已有稳定收入的个人创业者，平衡业务增长与个人生活质量提升",
		SuitableFor: "有稳定收入的个人创业者、自由职业者、小型工作室经营者",
		Allocations: func(income float64, newID func() string) []Allocation {
			return []Allocation{
				{ID: newID(), Purpose: "生活住房", Amount: income * 0.2, Category: "housing", ManualGroup: "life_stability"},
				{ID: newID(), Purpose: "饮食健康", Amount: income * 0.1, Category: "food", ManualGroup: "life_stability"},
				{ID: newID(), Purpose: "业务扩展", Amount: income * 0.2, Category: "housing", ManualGroup: "business_growth"},
				{ID: newID(), Purpose: "市场推广", Amount: income * 0.15, Category: "transport", ManualGroup: "business_growth"},
				{ID: newID(), Purpose: "行业社交", Amount: income * 0.1, Category: "entertainment", ManualGroup: "networking"},
				{ID: newID(), Purpose: "进修培训", Amount: income * 0.05, Category: "education", ManualGroup: "networking"},
				{ID: newID(), Purpose: "长期投资", Amount: income * 0.08, Category: "investment", ManualGroup: "financial_planning"},
				{ID: newID(), Purpose: "应急储备", Amount: income * 0.07, Category: "saving", ManualGroup: "financial_planning"},
				{ID: newID(), Purpose: "生活享受", Amount: income * 0.05, Category: "entertainment", ManualGroup: "life_quality"},
			}
		},
	},
	"精益创业": {
		Title:       "精益创业模式",
		Description: "基于精益创业理念，最小成本验证创业想法，延长资金跑道，适合资源有限者",
		SuitableFor: "兼职创业者、bootstrapping创业者、验证创业想法阶段",
		Allocations: func(income float64, newID func() string) []Allocation {
			return []Allocation{
				{ID: newID(), Purpose: "基本住房", Amount: income * 0.25, Category: "housing", ManualGroup: "minimal_living"},
				{ID: newID(), Purpose: "简单饮食", Amount: income * 0.1, Category: "food", ManualGroup: "minimal_living"},
				{ID: newID(), Purpose: "原型开发", Amount: income * 0.2, Category: "housing", ManualGroup: "mvp_development"},
				{ID: newID(), Purpose: "测试设备", Amount: income * 0.1, Category: "transport", ManualGroup: "mvp_development"},
				{ID: newID(), Purpose: "专业学习", Amount: income * 0.1, Category: "education", ManualGroup: "learning_testing"},
				{ID: newID(), Purpose: "用户测试", Amount: income * 0.1, Category: "entertainment", ManualGroup: "learning_testing"},
				{ID: newID(), Purpose: "生存储备", Amount: income * 0.15, Category: "saving", ManualGroup: "runway_buffer"},
			}
		},
	},
}
