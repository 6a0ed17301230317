package model

// Professor 教授，对应 professors
// 同名同姓视为同一人（名册导入时 get-or-create）
type Professor struct {
	ID           int64             `gorm:"primaryKey;autoIncrement"                     json:"id"`
	Name         string            `gorm:"type:varchar(128);not null"                   json:"name"`
	Surname      string            `gorm:"type:varchar(128);not null"                   json:"surname"`
	Role         UniversityRole    `gorm:"type:varchar(16);not null;default:unspecified" json:"role"`
	Availability *TimeAvailability `gorm:"type:varchar(16)"                             json:"availability,omitempty"`
	BaseModel
}

func (Professor) TableName() string { return "professors" }

// FullName "姓 名" 形式，与名册一致
func (p Professor) FullName() string { return p.Surname + " " + p.Name }

// SameAs 按 ID 判断是否为同一教授
// 负担统计、角色比较一律走这里，不比较结构体或指针
func (p *Professor) SameAs(other *Professor) bool {
	if p == nil || other == nil {
		return false
	}
	return p.ID == other.ID
}

// EffectiveAvailability 未设置出席时段时按全天可出席处理
func (p Professor) EffectiveAvailability() TimeAvailability {
	if p.Availability == nil {
		return AvailableAlways
	}
	return *p.Availability
}
