// 版权所有 2024 AgentFlow Authors. 版权所有。
// 此源代码的使用由 MIT 许可规范,该许可可以是
// 在LICENSE文件中找到。

/*
包 indexing 将整理后的记忆文档推送到下游向量检索系统。

# 概述

整理流水线本身不调用嵌入服务或向量库，只产出文本。Indexer 负责
把文档的摘要文本与各锚点段落转换为索引记录，经 EmbeddingProvider
生成向量后写入 VectorStore。每条记录携带 document_id、anchor_id
与触发短语元数据，检索命中后可直接跳转到对应段落。

# 核心类型

  - EmbeddingProvider：嵌入服务窄接口。
  - VectorStore：向量库窄接口。
  - Indexer：带 x/time/rate 限流的文档索引器。
  - InMemoryVectorStore：余弦相似度内存向量库。
  - HashEmbedder：基于特征哈希的确定性嵌入器，无需外部服务。
*/
package indexing
