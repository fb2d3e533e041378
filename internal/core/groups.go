package core

// CategoryGroup is a template-scoped bucket that aggregates one or more
// categories under a recommended percentage-of-income target.
type CategoryGroup struct {
	ID                    string   `json:"id"`
	Name                  string   `json:"name"`
	Color                 string   `json:"color"`
	Categories            []string `json:"categories"`
	RecommendedPercentage float64  `json:"recommendedPercentage"`
	Description           string   `json:"description"`
}

// ManualGroupAuto is the sentinel that clears a manual group assignment and
// restores automatic category-based resolution.
const ManualGroupAuto = "auto"

// TemplateGroups returns the group catalog for a template in catalog order.
// Templates without a grouping (零基预算法, 70/20/10法则) return nil.
func TemplateGroups(templateName string) []CategoryGroup {
	return templateGroups[templateName]
}

// ResolveGroup determines the group an allocation belongs to under the given
// template. A manual assignment wins only when it resolves to a group of the
// active template; an invalid manual id falls back to automatic resolution by
// category, first catalog match. Returns nil when ungrouped.
func ResolveGroup(a Allocation, templateName string) *CategoryGroup {
	groups := templateGroups[templateName]
	if len(groups) == 0 {
		return nil
	}
	if a.ManualGroup != "" {
		for i := range groups {
			if groups[i].ID == a.ManualGroup {
				return &groups[i]
			}
		}
	}
	for i := range groups {
		for _, c := range groups[i].Categories {
			if c == a.Category && a.Category != "" {
				return &groups[i]
			}
		}
	}
	return nil
}

var templateGroups = map[string][]CategoryGroup{
	"六罐法则": {
		{ID: "necessities", Name: "生活必需", Color: "#16a34a",
			Categories:            []string{"housing", "food", "transport", "medical"},
			RecommendedPercentage: 55,
			Description:           "日常生活的必要开支，如住房、食品、基本交通和医疗"},
		{ID: "education", Name: "教育投资", Color: "#eab308",
			Categories:            []string{"education"},
			RecommendedPercentage: 10,
			Description:           "用于自我提升和学习的支出，包括书籍、课程等"},
		{ID: "savings", Name: "储蓄备用", Color: "#3b82f6",
			Categories:            []string{"saving"},
			RecommendedPercentage: 10,
			Description:           "应急基金，以应对突发情况"},
		{ID: "enjoyment", Name: "享受生活", Color: "#f97316",
			Categories:            []string{"entertainment"},
			RecommendedPercentage: 10,
			Description:           "提升生活品质的支出，如旅行、爱好、娱乐等"},
		{ID: "investment", Name: "长期投资", Color: "#6366f1",
			Categories:            []string{"investment"},
			RecommendedPercentage: 10,
			Description:           "用于长期财富增值的投资"},
		{ID: "generosity", Name: "慷慨捐赠", Color: "#ec4899",
			Categories:            []string{"other"},
			RecommendedPercentage: 5,
			Description:           "回馈社会的慈善捐款"},
	},

	"50/30/20法则": {
		{ID: "necessities", Name: "必要开支", Color: "#16a34a",
			Categories:            []string{"housing", "food", "transport", "medical"},
			RecommendedPercentage: 50,
			Description:           "生活必需品，包括房租/房贷、水电、食品、基本交通等"},
		{ID: "personal", Name: "个人支出", Color: "#f97316",
			Categories:            []string{"entertainment", "education", "other"},
			RecommendedPercentage: 30,
			Description:           "提升生活品质的支出，包括娱乐、购物、餐厅等非必需品"},
		{ID: "financial", Name: "储蓄投资", Color: "#3b82f6",
			Categories:            []string{"saving", "investment"},
			RecommendedPercentage: 20,
			Description:           "为未来做准备，包括应急基金、债务偿还和投资"},
	},

	"4321预算法": {
		{ID: "basicLiving", Name: "基本生活", Color: "#16a34a",
			Categories:            []string{"housing", "food", "transport", "medical"},
			RecommendedPercentage: 40,
			Description:           "基础生活必需品，包括住房、餐饮、基本服装等"},
		{ID: "discretionary", Name: "自由支配", Color: "#f97316",
			Categories:            []string{"entertainment", "other"},
			RecommendedPercentage: 30,
			Description:           "个人享受和提升生活品质的支出，如娱乐、旅行等"},
		{ID: "financialGoals", Name: "财务目标", Color: "#eab308",
			Categories:            []string{"saving", "education"},
			RecommendedPercentage: 20,
			Description:           "针对性储蓄，如购房首付、教育金等特定目标"},
		{ID: "investment", Name: "储蓄投资", Color: "#6366f1",
			Categories:            []string{"investment"},
			RecommendedPercentage: 10,
			Description:           "长期理财增值，为退休或财务自由做准备"},
	},

	"创业启动期": {
		{ID: "life_essential", Name: "生活必需", Color: "#16a34a",
			Categories:            []string{"housing", "food"},
			RecommendedPercentage: 40,
			Description:           "维持基本生活所需的必要开支，如房租、食品等基本生活成本"},
		{ID: "startup_cost", Name: "创业投入", Color: "#0891b2",
			Categories:            []string{"transport", "housing"},
			RecommendedPercentage: 30,
			Description:           "直接投入创业项目的资金，包括产品开发、设备购买等"},
		{ID: "skill_growth", Name: "能力提升", Color: "#9333ea",
			Categories:            []string{"education"},
			RecommendedPercentage: 15,
			Description:           "提升自身技能和知识的投资，如学习课程、专业书籍等"},
		{ID: "safety_net", Name: "安全缓冲", Color: "#f97316",
			Categories:            []string{"saving"},
			RecommendedPercentage: 10,
			Description:           "应对不确定性的现金储备，推荐维持至少3个月的生活费"},
		{ID: "enjoyment", Name: "生活享受", Color: "#ec4899",
			Categories:            []string{"entertainment"},
			RecommendedPercentage: 5,
			Description:           "保持生活平衡和心理健康的小额享受，避免创业疲劳"},
	},

	"创业成长期": {
		{ID: "life_stability", Name: "生活稳定", Color: "#16a34a",
			Categories:            []string{"housing", "food"},
			RecommendedPercentage: 30,
			Description:           "稳定的生活保障，随着收入增长可适当提高生活质量"},
		{ID: "business_growth", Name: "业务扩展", Color: "#0891b2",
			Categories:            []string{"transport", "housing"},
			RecommendedPercentage: 35,
			Description:           "扩大业务规模的资金，包括市场营销、团队扩充等"},
		{ID: "networking", Name: "人脉资源", Color: "#9333ea",
			Categories:            []string{"entertainment", "education"},
			RecommendedPercentage: 15,
			Description:           "行业交流、客户维护等关系建设的投入"},
		{ID: "financial_planning", Name: "财务规划", Color: "#f97316",
			Categories:            []string{"saving", "investment"},
			RecommendedPercentage: 15,
			Description:           "长期资产配置和财富增值，为个人财务自由做准备"},
		{ID: "life_quality", Name: "生活品质", Color: "#ec4899",
			Categories:            []string{"entertainment", "other"},
			RecommendedPercentage: 5,
			Description:           "提升生活品质，保持创业动力和工作生活平衡"},
	},

	"精益创业": {
		{ID: "minimal_living", Name: "极简生活", Color: "#16a34a",
			Categories:            []string{"housing", "food"},
			RecommendedPercentage: 35,
			Description:           "将生活成本控制在最低水平，延长资金燃烧周期"},
		{ID: "mvp_development", Name: "最小验证", Color: "#0891b2",
			Categories:            []string{"housing", "transport"},
			RecommendedPercentage: 30,
			Description:           "开发最小可行产品(MVP)所需的最低投入"},
		{ID: "learning_testing", Name: "学习测试", Color: "#9333ea",
			Categories:            []string{"education", "entertainment"},
			RecommendedPercentage: 20,
			Description:           "持续学习和市场验证的投入，收集用户反馈"},
		{ID: "runway_buffer", Name: "生存缓冲", Color: "#f97316",
			Categories:            []string{"saving"},
			RecommendedPercentage: 15,
			Description:           "确保基本生活的应急资金，至少6个月的基本开支"},
	},
}
