// Package triggers 从自由文本中提取用于检索的触发短语。
//
// 提取按固定顺序执行：
//
//   - 输入守卫：过短或占位标记过多的文本直接返回空结果。
//   - 预处理：去除 markdown 代码块与标记，按句子边界插入分隔符，去掉停用词。
//   - 评分：N=1..4 的 N-gram 频率评分，加上问题、技术、决策、动作、
//     复合词等优先提取器。
//   - 排序与筛选：按分数排序，与已接受短语互为子串者丢弃（分数高者保留），
//     再过滤只由通用技术词组成的短语。
//
// 结果为空，或是数量介于配置上下限之间的小写短语，且互不为子串。
package triggers
