package model

// Snapshot 车辆 → (岗位 → 姓名) 映射
// 持久层读取结果中未分配的岗位直接缺席，由草稿按编制补空串
type Snapshot map[string]map[string]string

// Get 读取岗位姓名；缺席返回空串
func (s Snapshot) Get(vehicle, position string) string {
	if s == nil {
		return ""
	}
	return s[vehicle][position]
}

// Set 写入岗位姓名
func (s Snapshot) Set(vehicle, position, name string) {
	if s[vehicle] == nil {
		s[vehicle] = make(map[string]string)
	}
	s[vehicle][position] = name
}

// Len 记录条数
func (s Snapshot) Len() int {
	n := 0
	for _, positions := range s {
		n += len(positions)
	}
	return n
}
