// Package tlsutil 提供集中式 TLS 配置：HTTPS 服务端证书加载、Redis 客户端
// 以及 health 探测使用的 HTTP 客户端（TLS 1.2+，仅 AEAD 密码套件）。
package tlsutil
