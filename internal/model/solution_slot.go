package model

// SolutionSlot 求解得到的一场答辩，对应 solution_commissions
// 仅由求解任务写入，不可手工修改
type SolutionSlot struct {
	ID           int64       `gorm:"primaryKey;autoIncrement"                              json:"id"`
	Order        int         `gorm:"column:order;not null"                                 json:"order"`
	Morning      bool        `gorm:"not null;default:true"                                 json:"morning"`
	CommissionID int64       `gorm:"not null"                                              json:"commission_id"`
	OptConfigID  int64       `gorm:"not null;index"                                        json:"opt_config_id"`
	Duration     int         `gorm:"not null"                                              json:"duration"`
	VersionHash  string      `gorm:"type:varchar(64);not null"                             json:"version_hash"`
	Professors   []Professor `gorm:"many2many:solution_commission_professors;joinForeignKey:SolutionCommissionID;joinReferences:ProfessorID" json:"professors"`
	Students     []Student   `gorm:"many2many:solution_commission_students;joinForeignKey:SolutionCommissionID;joinReferences:StudentID"     json:"students"`
}

func (SolutionSlot) TableName() string { return "solution_commissions" }
