// =============================================================================
// memcurator 主入口
// =============================================================================
// 会话记录整理 CLI 与 HTTP 服务
//
// 使用方法:
//
//	memcurator curate --input transcript.json            # 整理为 Markdown 记忆文档
//	memcurator curate --input - --format json --save      # 从 stdin 读取并持久化
//	memcurator triggers --input notes.md --stats          # 提取触发短语
//	memcurator anchor --title "OAuth Callback Handler"    # 生成锚点 ID
//	memcurator serve --config config.yaml                 # 启动 HTTP 服务
//	memcurator migrate up                                 # 运行数据库迁移
//	memcurator version                                    # 显示版本信息
// =============================================================================

package main

import (
	"fmt"
	"os"
)

// =============================================================================
// 📦 版本信息（构建时注入）
// =============================================================================

var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
