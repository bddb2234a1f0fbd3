// 版权所有 2024 AgentFlow Authors. 版权所有。
// 此源代码的使用由 MIT 许可规范,该许可可以是
// 在LICENSE文件中找到。

/*
包 cache 是 curation.RedisCache 背后的 Redis 客户端封装，让多个 serve
进程共享整理结果。

Manager 在创建时完成一次 PING，之后所有操作先检查是否已关闭（ErrClosed），
未命中统一返回 ErrCacheMiss。Get 的命中与未命中按实例计数，GetStats 再附上
DBSIZE 与连接池状态。配置了 HealthCheckInterval 时后台协程定期 PING，
Close 会停止它。

FromRedisConfig 把应用配置的 redis 段转换为 Config；redis.tls 为 true 时
通过 tlsutil.ClientConfig 建立加密连接，ServerName 取自地址中的主机名。
*/
package cache
