// Package filter 实现转录内容过滤流水线。
//
// 三个阶段按配置顺序执行：
//
//   - noise：丢弃占位文本、空包装标签、system-reminder 块、纯图片引用等噪声，
//     剥离良性包装标记（<command-name>X</command-name> → Command: X），
//     再按最小长度与最少独立词数过滤。
//   - dedupe：规范化后 MD5 精确去重，加前 200 字符的逐位相似度近似去重，
//     先到者保留。
//   - quality：按唯一性、信息密度、文件引用密度、决策清晰度加权得出 0–100 分。
//
// 过滤不会返回错误；配置缺失或越界由 config 包回退到默认值。
package filter
