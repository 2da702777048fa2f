package i18n

import "fmt"

// Copy is the resolved UI text for one language.
type Copy struct {
	Lang Language

	SiteName      string
	HeaderTagline string
	NavHome       string
	NavNews       string
	NavDoc        string

	LanguageToggleLabel string
	LanguageToggleAria  string
	ThemeToLight        string
	ThemeToDark         string

	HomeKicker   string
	HomeTitle    string
	HomeSubtitle string
	HomeLearn    string
	HomeUpdates  string

	NewsKicker    string
	NewsTitle     string
	NewsSubtitle  string
	NewsEmpty     string
	NewsEmptyHint string
	NewsPrevious  string
	NewsNext      string
	BackToHome    string

	DocKicker   string
	DocTitle    string
	DocSubtitle string
	DocLoading  string
	DocError    string
	TOCTitle    string

	NotFoundTitle string
	NotFoundBody  string

	FooterMaintained string
	FooterFeedback   string
}

var (
	siteName = LocalizedText{EN: "HowAgent.works", ZH: "HowAgent.works"}

	headerTagline = LocalizedText{
		EN: "Agents, explained clearly (and safely)",
		ZH: "清晰且安全地理解 Agent",
	}

	languageToggleLabel = LocalizedText{EN: "中文", ZH: "English"}
	languageToggleAria  = LocalizedText{EN: "Switch to Chinese", ZH: "切换到英文"}

	themeToDark  = LocalizedText{EN: "Switch to dark mode", ZH: "切换到深色模式"}
	themeToLight = LocalizedText{EN: "Switch to light mode", ZH: "切换到浅色模式"}

	homeHero = struct{ kicker, title, subtitle, learn, updates LocalizedText }{
		kicker: LocalizedText{EN: "Agents demystified", ZH: "Agent 基础概览"},
		title: LocalizedText{
			EN: "How modern AI agents perceive, reason, and act",
			ZH: "AI Agent 如何感知、推理与行动",
		},
		subtitle: LocalizedText{
			EN: "Think of an agent as a controllable teammate: it reads what you allow, reasons through the request, and takes approved actions. This guide explains how it works, the design trade-offs, and how to run it safely.",
			ZH: "你可以把 Agent 当作一个可控的队友：它会在授权范围内读取信息、进行思考并采取行动。本指南会解释它的核心工作方式、设计上的取舍，以及安全操作的最佳做法。",
		},
		learn:   LocalizedText{EN: "Learn the fundamentals", ZH: "了解基础原理"},
		updates: LocalizedText{EN: "See latest updates", ZH: "查看最新动态"},
	}

	newsHero = struct{ kicker, title, subtitle LocalizedText }{
		kicker: LocalizedText{EN: "Agent signal feed", ZH: "Agent 情报订阅"},
		title:  LocalizedText{EN: "All agent updates", ZH: "Agent 最新动态总览"},
		subtitle: LocalizedText{
			EN: "Explore the full archive of launches, research, and policy changes, sorted by publish time and updated continuously.",
			ZH: "查看完整归档，涵盖新品发布、研究突破与政策变动，按发布时间排序并持续更新。",
		},
	}

	newsEmpty     = LocalizedText{EN: "No updates to show", ZH: "暂无数据"}
	newsEmptyHint = LocalizedText{EN: "Please check back later or return to the overview.", ZH: "稍后再试，或返回首页了解概览"}
	newsPrevious  = LocalizedText{EN: "Previous", ZH: "上一页"}
	newsNext      = LocalizedText{EN: "Next", ZH: "下一页"}
	backToHome    = LocalizedText{EN: "Back to overview", ZH: "返回首页"}

	navHome = LocalizedText{EN: "Overview", ZH: "首页"}
	navNews = LocalizedText{EN: "News", ZH: "最新动态"}
	navDoc  = LocalizedText{EN: "ReactAgent Lifecycle", ZH: "ReactAgent 生命周期"}

	docHero = struct{ kicker, title, subtitle LocalizedText }{
		kicker: LocalizedText{EN: "Deep Dive", ZH: "深入解析"},
		title:  LocalizedText{EN: "ReactAgent Complete Lifecycle", ZH: "ReactAgent 完整生命周期流程"},
		subtitle: LocalizedText{
			EN: "This document details the complete lifecycle of ReactAgent from startup to execution, including all core mechanisms, external dependencies, and code location references.",
			ZH: "本文档详细描述了 ReactAgent 从启动到执行的完整生命周期,包括所有核心机制、外部依赖和代码位置索引。",
		},
	}

	docLoading = LocalizedText{EN: "Loading documentation...", ZH: "正在加载文档..."}
	docError   = LocalizedText{
		EN: "Failed to load documentation. Please try again later.",
		ZH: "文档加载失败,请稍后重试。",
	}

	// tocTitle doubles as the marker heading dropped from rendered documents.
	tocTitle = LocalizedText{EN: "Table of Contents", ZH: "目录"}

	notFoundTitle = LocalizedText{EN: "Page not found", ZH: "页面未找到"}
	notFoundBody  = LocalizedText{EN: "Sorry, we couldn't locate that section.", ZH: "抱歉，我们没有找到该页面。"}

	footerMaintained = LocalizedText{EN: "Maintained by the HowAgent.works team", ZH: "由 HowAgent.works 团队维护"}
	footerFeedback   = LocalizedText{EN: "Content evolves continuously. Feedback and PRs welcome", ZH: "内容持续迭代，欢迎提交 Issue 或 PR"}
)

// For resolves every copy table for lang.
func For(lang Language) Copy {
	return Copy{
		Lang: lang,

		SiteName:      siteName.Pick(lang),
		HeaderTagline: headerTagline.Pick(lang),
		NavHome:       navHome.Pick(lang),
		NavNews:       navNews.Pick(lang),
		NavDoc:        navDoc.Pick(lang),

		LanguageToggleLabel: languageToggleLabel.Pick(lang),
		LanguageToggleAria:  languageToggleAria.Pick(lang),
		ThemeToLight:        themeToLight.Pick(lang),
		ThemeToDark:         themeToDark.Pick(lang),

		HomeKicker:   homeHero.kicker.Pick(lang),
		HomeTitle:    homeHero.title.Pick(lang),
		HomeSubtitle: homeHero.subtitle.Pick(lang),
		HomeLearn:    homeHero.learn.Pick(lang),
		HomeUpdates:  homeHero.updates.Pick(lang),

		NewsKicker:    newsHero.kicker.Pick(lang),
		NewsTitle:     newsHero.title.Pick(lang),
		NewsSubtitle:  newsHero.subtitle.Pick(lang),
		NewsEmpty:     newsEmpty.Pick(lang),
		NewsEmptyHint: newsEmptyHint.Pick(lang),
		NewsPrevious:  newsPrevious.Pick(lang),
		NewsNext:      newsNext.Pick(lang),
		BackToHome:    backToHome.Pick(lang),

		DocKicker:   docHero.kicker.Pick(lang),
		DocTitle:    docHero.title.Pick(lang),
		DocSubtitle: docHero.subtitle.Pick(lang),
		DocLoading:  docLoading.Pick(lang),
		DocError:    docError.Pick(lang),
		TOCTitle:    tocTitle.Pick(lang),

		NotFoundTitle: notFoundTitle.Pick(lang),
		NotFoundBody:  notFoundBody.Pick(lang),

		FooterMaintained: footerMaintained.Pick(lang),
		FooterFeedback:   footerFeedback.Pick(lang),
	}
}

// TOCMarkers returns every localized table-of-contents heading title.
func TOCMarkers() []string {
	return []string{tocTitle.EN, tocTitle.ZH}
}

// LastUpdated formats the news "last updated" line. label is a formatted date.
func (c Copy) LastUpdated(label string) string {
	if c.Lang == Chinese {
		return "最新同步时间：" + label
	}
	return "Last updated: " + label
}

// ArchiveCount formats the total number of news items.
func (c Copy) ArchiveCount(n int) string {
	if c.Lang == Chinese {
		return fmt.Sprintf("共 %d 条记录", n)
	}
	return fmt.Sprintf("%d updates in archive", n)
}

// ShowingRange formats the 1-based item range on a news page.
func (c Copy) ShowingRange(first, last int) string {
	if c.Lang == Chinese {
		return fmt.Sprintf("第 %d - %d 条", first, last)
	}
	return fmt.Sprintf("Showing %d–%d", first, last)
}

// PageCount formats the number of news pages.
func (c Copy) PageCount(n int) string {
	if c.Lang == Chinese {
		return fmt.Sprintf("共 %d 页", n)
	}
	if n == 1 {
		return "1 page"
	}
	return fmt.Sprintf("%d pages", n)
}

// GoToPage is the accessible label for a pagination link.
func (c Copy) GoToPage(n int) string {
	if c.Lang == Chinese {
		return fmt.Sprintf("跳转到第 %d 页", n)
	}
	return fmt.Sprintf("Go to page %d", n)
}
