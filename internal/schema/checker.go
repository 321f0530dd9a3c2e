// Package schema 提供入站消息的 schema 契约检查。
package schema

// Checker 判断一条消息是否满足 schema 契约。
// 实现必须是只读的：不得修改传入的 map。
type Checker interface {
	Check(msg map[string]any) bool
}

// Explainer 由能够给出失败原因的 Checker 额外实现。
type Explainer interface {
	Explain(msg map[string]any) error
}

// CheckerFunc 把普通函数适配为 Checker。
type CheckerFunc func(map[string]any) bool

func (f CheckerFunc) Check(msg map[string]any) bool {
	if f == nil {
		return false
	}
	return f(msg)
}

// Explain 返回 checker 给出的失败原因；checker 不支持或消息合法时返回 nil。
func Explain(c Checker, msg map[string]any) error {
	if ex, ok := c.(Explainer); ok {
		return ex.Explain(msg)
	}
	return nil
}
