package news

import "github.com/yushaw/howagentworks/internal/i18n"

// Fallback returns the built-in feed shown when the real one cannot be
// loaded. Each call returns a fresh copy.
func Fallback() *Feed {
	return &Feed{
		SchemaVersion: "2025-01-17",
		LastUpdated:   "2025-01-17T09:30:00Z",
		Items: []Item{
			{
				ID: "openai-o4-mini-20250116",
				Title: i18n.LocalizedText{
					EN: "OpenAI unveils O4-Mini with faster deliberation",
					ZH: "OpenAI 发布 O4-Mini，强调更快的规划推理",
				},
				Summary: i18n.LocalizedText{
					EN: "The new O4-Mini model focuses on short-horizon planning with tool calling baked in, offering better latency for production agents.",
					ZH: "新的 O4-Mini 模型强化短周期规划并内置工具调用，显著降低面向生产级 Agent 的响应延迟。",
				},
				Source:      Source{Name: "OpenAI Blog", URL: "https://openai.com/blog"},
				PublishedAt: "2025-01-16T15:00:00Z",
				Tags:        []string{"product", "models"},
				Signal:      "Launch",
			},
			{
				ID: "anthropic-latency-benchmark-20250115",
				Title: i18n.LocalizedText{
					EN: "Anthropic shares latency benchmark suite for Claude agents",
					ZH: "Anthropic 发布 Claude Agent 延迟基准测试套件",
				},
				Summary: i18n.LocalizedText{
					EN: "Claude Ops released an open benchmark to profile perception, planning, and action latencies across orchestration stacks.",
					ZH: "Claude Ops 团队开源了一套基准，用于衡量不同编排框架从感知、规划到执行的端到端延迟。",
				},
				Source:      Source{Name: "Anthropic Engineering", URL: "https://www.anthropic.com"},
				PublishedAt: "2025-01-15T03:45:00Z",
				Tags:        []string{"research", "benchmarks"},
				Signal:      "Insight",
			},
			{
				ID: "regulation-eu-agent-logging-20250113",
				Title: i18n.LocalizedText{
					EN: "EU proposes audit trail rules for autonomous agents",
					ZH: "欧盟提议针对自主 Agent 的审计追踪新规",
				},
				Summary: i18n.LocalizedText{
					EN: "A draft regulation would require transparent logging and reversible actions for high-autonomy systems deployed in Europe.",
					ZH: "最新草案要求在欧洲部署的高自治 Agent 必须具备透明日志与可逆操作能力。",
				},
				Source:      Source{Name: "EU Digital Policy", URL: "https://digital-strategy.ec.europa.eu"},
				PublishedAt: "2025-01-13T11:20:00Z",
				Tags:        []string{"policy", "compliance"},
				Signal:      "Policy",
			},
		},
	}
}
