package dto

import (
	"bytes"
	"encoding/json"
)

// OptionalInt JSON 中可缺省、可为 null 的整数
//
//	缺省      → Set=false
//	null      → Set=true, Value=nil
//	数值      → Set=true, Value=&n
type OptionalInt struct {
	Set   bool
	Value *int
}

// UnmarshalJSON 实现 json.Unmarshaler；仅在字段出现时被调用
func (o *OptionalInt) UnmarshalJSON(data []byte) error {
	o.Set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		o.Value = nil
		return nil
	}
	var v int
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	o.Value = &v
	return nil
}

// MarshalJSON 实现 json.Marshaler
func (o OptionalInt) MarshalJSON() ([]byte, error) {
	if o.Value == nil {
		return []byte("null"), nil
	}
	return json.Marshal(*o.Value)
}
