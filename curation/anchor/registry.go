package anchor

import (
	"strconv"
	"sync"
)

// ValidateAnchorUniqueness 依次追加 -2、-3 … 直到 id 不在 existing 中
func ValidateAnchorUniqueness(id string, existing []string) string {
	seen := make(map[string]struct{}, len(existing))
	for _, e := range existing {
		seen[e] = struct{}{}
	}
	return uniqueIn(id, seen)
}

func uniqueIn(id string, seen map[string]struct{}) string {
	if _, taken := seen[id]; !taken {
		return id
	}
	for n := 2; ; n++ {
		candidate := id + "-" + strconv.Itoa(n)
		if _, taken := seen[candidate]; !taken {
			return candidate
		}
	}
}

// Registry 记录单个文档渲染期间已发出的 ID
type Registry struct {
	mu        sync.Mutex
	generator *Generator
	ids       []string
	seen      map[string]struct{}
}

// NewRegistry 创建注册表，generator 为 nil 时使用包级默认生成器
func NewRegistry(g *Generator) *Registry {
	if g == nil {
		g = defaultGenerator
	}
	return &Registry{generator: g, seen: make(map[string]struct{})}
}

// Next 为章节生成并占用唯一 ID
func (r *Registry) Next(title, category string, opts ...GenerateOption) string {
	return r.Reserve(r.generator.Generate(title, category, opts...))
}

// Reserve 占用 id，已被占用时追加后缀，返回实际占用的值
func (r *Registry) Reserve(id string) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	id = uniqueIn(id, r.seen)
	r.seen[id] = struct{}{}
	r.ids = append(r.ids, id)
	return id
}

// Contains 判断 id 是否已占用
func (r *Registry) Contains(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.seen[id]
	return ok
}

// IDs 按占用顺序返回 ID
func (r *Registry) IDs() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.ids...)
}

// Len returns the number of reserved IDs.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.ids)
}
