package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// 兼容旧版记录中不带冒号的时区格式
var updateLayouts = []string{time.RFC3339, "2006-01-02T15:04:05-0700"}

// SourceVersion 单个数据源分类的版本信息
type SourceVersion struct {
	Version string `json:"version,omitempty"`
	File    string `json:"file,omitempty"`
	Count   *int   `json:"count"`
}

// VersionRecord 版本记录
// 序列化为 {"update": "...", "<category>": {...}, ...}
type VersionRecord struct {
	Update  time.Time
	Sources map[string]SourceVersion
}

// NewVersionRecord 为每个分类创建空记录
func NewVersionRecord(categories []string) *VersionRecord {
	r := &VersionRecord{Sources: make(map[string]SourceVersion, len(categories))}
	for _, c := range categories {
		r.Sources[c] = SourceVersion{}
	}
	return r
}

// Source 返回分类的版本信息
func (r *VersionRecord) Source(category string) SourceVersion {
	if r == nil || r.Sources == nil {
		return SourceVersion{}
	}
	return r.Sources[category]
}

// SetSource 设置分类的版本信息
func (r *VersionRecord) SetSource(category string, sv SourceVersion) {
	if r.Sources == nil {
		r.Sources = make(map[string]SourceVersion)
	}
	r.Sources[category] = sv
}

// SetCount 记录分类的行数
func (r *VersionRecord) SetCount(category string, count int) {
	sv := r.Source(category)
	sv.Count = &count
	r.SetSource(category, sv)
}

// Clone 深拷贝记录
func (r *VersionRecord) Clone() *VersionRecord {
	out := &VersionRecord{Update: r.Update, Sources: make(map[string]SourceVersion, len(r.Sources))}
	for k, v := range r.Sources {
		if v.Count != nil {
			c := *v.Count
			v.Count = &c
		}
		out.Sources[k] = v
	}
	return out
}

// MarshalJSON 将分类平铺到顶层
func (r VersionRecord) MarshalJSON() ([]byte, error) {
	m := make(map[string]any, len(r.Sources)+1)
	update := ""
	if !r.Update.IsZero() {
		update = r.Update.UTC().Format(time.RFC3339)
	}
	m["update"] = update
	for k, v := range r.Sources {
		m[k] = v
	}
	return json.Marshal(m)
}

// UnmarshalJSON 解析顶层 update 与各分类子记录
func (r *VersionRecord) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	r.Sources = make(map[string]SourceVersion, len(raw))
	for k, v := range raw {
		if k == "update" {
			var s string
			if err := json.Unmarshal(v, &s); err != nil {
				return fmt.Errorf("invalid update field: %w", err)
			}
			if s == "" {
				r.Update = time.Time{}
				continue
			}
			t, err := parseUpdate(s)
			if err != nil {
				return err
			}
			r.Update = t
			continue
		}

		var sv SourceVersion
		if err := json.Unmarshal(v, &sv); err != nil {
			return fmt.Errorf("invalid record for %s: %w", k, err)
		}
		r.Sources[k] = sv
	}
	return nil
}

func parseUpdate(s string) (time.Time, error) {
	for _, layout := range updateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid update timestamp %q", s)
}
