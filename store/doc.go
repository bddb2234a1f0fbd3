// 版权所有 2024 AgentFlow Authors. 版权所有。
// 此源代码的使用由 MIT 许可规范,该许可可以是
// 在LICENSE文件中找到。

/*
包 store 通过 GORM 持久化整理后的记忆文档。

DocumentStore 保存完整的 curation.Document（JSON 载荷）以及便于查询的
列：标题、任务、质量分、token 数。触发短语单独写入 document_triggers
表，FindByTrigger 据此反查文档。

Open 按配置选择 sqlite（纯 Go 驱动）、postgres 或 mysql，并执行
AutoMigrate；postgres 与 mysql 也可以先用 memcurator migrate 建表。
所有错误都以 *types.Error 返回：找不到文档为 NOT_FOUND，其余为
STORE_ERROR。
*/
package store
