// Package summary 把过滤后的转录归纳为结构化实现摘要。
//
// 每条消息先按固定优先级分类（decision > implementation > result > plan >
// intent > question > context），再从对应类别中抽取任务、方案、文件变更、
// 决策与结果。任何抽取失败都退回固定的哨兵值，不返回错误。
package summary
