package util

import (
	"strconv"
)

// MustParseUint 解析路由参数里的资源 id。非法输入返回 0，
// 0 不会命中任何记录，由调用方的 NotFound 分支兜底。
func MustParseUint(s string) uint {
	v, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return 0
	}
	return uint(v)
}
