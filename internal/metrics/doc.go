// 版权所有 2024 AgentFlow Authors. 版权所有。
// 此源代码的使用由 MIT 许可规范,该许可可以是
// 在LICENSE文件中找到。

/*
包 metrics 提供基于 Prometheus 的指标采集能力，覆盖
HTTP、整理流水线、索引、缓存与数据库五个维度。

# 概述

Collector 通过 promauto 注册指标。NewCollector 注册到默认 Registry，
NewCollectorWithRegisterer 允许注入独立 Registry（测试常用）。
所有指标按 namespace 隔离。

# 主要能力

  - HTTP 指标：请求总数、耗时、请求/响应体大小，状态码归类为 2xx/3xx/4xx/5xx。
  - 整理指标：curations_total{status}、curation_duration_seconds、
    messages_processed_total、messages_filtered_total{reason}、
    quality_score、trigger_phrases_total。
  - 索引指标：请求总数、写入向量数、耗时。
  - 缓存指标：命中与未命中计数，按 cache_type 分组。
  - 数据库指标：打开/空闲连接数、查询耗时。

Collector 实现 curation.MetricsRecorder，可直接传给 curation.WithMetrics。
*/
package metrics
