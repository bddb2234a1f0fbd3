// Package ctxkeys 定义跨层传递的 context 键：HTTP 中间件写入请求 ID 与调用方，
// 处理器与存储层读取后写入日志。
package ctxkeys
