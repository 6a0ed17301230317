package model

// Student 答辩学生，对应 students
type Student struct {
	ID                  int64  `gorm:"primaryKey;autoIncrement"   json:"id"`
	MatriculationNumber int64  `gorm:"not null"                   json:"matriculation_number"`
	Name                string `gorm:"type:varchar(128);not null" json:"name"`
	Surname             string `gorm:"type:varchar(128);not null" json:"surname"`
	PhoneNumber         string `gorm:"type:varchar(32);not null"  json:"phone_number"`
	PersonalEmail       string `gorm:"type:varchar(256);not null" json:"personal_email"`
	UniversityEmail     string `gorm:"type:varchar(256);not null" json:"university_email"`
}

func (Student) TableName() string { return "students" }

// SameAs 按 ID 判断是否为同一学生
func (s Student) SameAs(other Student) bool { return s.ID == other.ID }
