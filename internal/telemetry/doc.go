// Package telemetry 封装 OpenTelemetry SDK 初始化逻辑，
// 为 memcurator 提供集中式的 TracerProvider 和 MeterProvider 配置。
// Curator 的 curation.Curate 及其 filter/summarize/render 子阶段通过
// Providers.Tracer 取得的 tracer 生成 span。
// 采集器连接可通过 telemetry.tls 启用 TLS（tlsutil.ClientConfig），
// telemetry.environment 写入 deployment.environment 资源属性。
// 当遥测功能禁用时，使用 noop 实现，不连接任何外部服务。
package telemetry
