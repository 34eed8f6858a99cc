package skills

const (
	// DefaultCategory is assumed when a descriptor names no category.
	DefaultCategory = "Developer Tools"
	// DefaultLocalizedCategory is used for any category missing from the table.
	DefaultLocalizedCategory = "開発者ツール"
)

var localizedCategories = map[string]string{
	"Developer Tools":         "開発者ツール",
	"Web & App Development":   "Web & アプリ開発",
	"Data Science":            "データサイエンス",
	"Database":                "データベース",
	"DevOps":                  "DevOps",
	"Documentation":           "ドキュメント",
	"Testing":                 "テスト",
	"Security":                "セキュリティ",
	"Utilities":               "ユーティリティ",
	"Agents & Automation":     "エージェント & 自動化",
	"Documents & Content":     "ドキュメント & コンテンツ",
	"API & Backend":           "API & バックエンド",
	"DevOps & Infrastructure": "DevOps & インフラ",
	"Testing & QA":            "テスト & QA",
	"Skills & Workflow":       "スキル & ワークフロー",
}

// LocalizeCategory maps an English category to its Japanese label. Matching
// is exact; anything else yields DefaultLocalizedCategory.
func LocalizeCategory(en string) string {
	if ja, ok := localizedCategories[en]; ok {
		return ja
	}
	return DefaultLocalizedCategory
}
