// Copyright (c) AgentFlow Authors.
// Licensed under the MIT License.

/*
Package anchor 为记忆文档的章节生成可寻址的锚点 ID。

ID 格式为 {category}-{slug}-{hash}：category 为小写字母，slug 是标题中
最多四个有意义的词，hash 是 8 位十六进制的 MD5 前缀。时间与实例内序号参与
哈希，因此同一标题的两次调用得到不同 ID。文档内的唯一性由 Registry 或
ValidateAnchorUniqueness 追加 -2、-3 后缀保证。
*/
package anchor
