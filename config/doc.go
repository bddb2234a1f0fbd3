// Package config 提供 memcurator 的配置管理功能。
//
// 包含两类配置：应用配置（YAML 文件 + 环境变量覆盖，见 Loader）与
// 过滤流水线配置（filters.jsonc，JSON5 语法，允许注释与尾逗号，见
// LoadFilterConfig）。FileWatcher 以轮询方式监听过滤配置文件的变更，
// 供 serve 命令在运行时重载。
package config
