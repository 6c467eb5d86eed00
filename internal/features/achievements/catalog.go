// Package achievements: catalog.go holds the default catalog seeded at startup.
package achievements

// DefaultCatalog is inserted by SeedCatalog when its codes are missing.
// Existing rows are never overwritten, edits made in the database stay.
var DefaultCatalog = []Achievement{
	{
		Code:        "first-paper",
		Title:       "الباحث المبتدئ",
		Description: "اجمع 50 نقطة بنشر أول ورقة علمية",
		Threshold:   50,
		Icon:        "🌟",
		Category:    CategoryPublishing,
	},
	{
		Code:        "rising-star",
		Title:       "النجم الصاعد",
		Description: "اجمع 100 نقطة من مشاركاتك في المنصة",
		Threshold:   100,
		Icon:        "⭐",
		Category:    CategoryEngagement,
	},
	{
		Code:        "active-publisher",
		Title:       "الناشر النشيط",
		Description: "اجمع 250 نقطة من النشر والتفاعل",
		Threshold:   250,
		Icon:        "📚",
		Category:    CategoryPublishing,
	},
	{
		Code:        "distinguished-reviewer",
		Title:       "المراجع المتميز",
		Description: "اجمع 300 نقطة من مراجعة أوراق زملائك",
		Threshold:   300,
		Icon:        "🔍",
		Category:    CategoryReviewing,
	},
	{
		Code:        "recognized-expert",
		Title:       "الخبير المعترف به",
		Description: "اجمع 500 نقطة لتصبح خبيرًا معترفًا به",
		Threshold:   500,
		Icon:        "🏆",
		Category:    CategoryGeneral,
	},
	{
		Code:        "scientific-legend",
		Title:       "الأسطورة العلمية",
		Description: "اجمع 1000 نقطة وانضم إلى نخبة الباحثين",
		Threshold:   1000,
		Icon:        "👑",
		Category:    CategoryGeneral,
	},
}
