package model

// Commission 答辩委员会（一次答辩会），对应 commissions
// 独占其 entries 与 configurations，删除时级联
type Commission struct {
	ID             int64                       `gorm:"primaryKey;autoIncrement"   json:"id"`
	Title          string                      `gorm:"type:varchar(256);not null" json:"title"`
	Entries        []CommissionEntry           `gorm:"foreignKey:CommissionID"    json:"entries"`
	Configurations []OptimizationConfiguration `gorm:"foreignKey:CommissionID"    json:"optimization_configurations"`
	BaseModel
}

func (Commission) TableName() string { return "commissions" }

// CommissionPreview 列表页使用的委员会摘要
type CommissionPreview struct {
	ID    int64  `json:"id"`
	Title string `json:"title"`
}

// Preview 返回摘要
func (c Commission) Preview() CommissionPreview {
	return CommissionPreview{ID: c.ID, Title: c.Title}
}

// Configuration 按 ID 查找本委员会下的配置
func (c *Commission) Configuration(id int64) (*OptimizationConfiguration, bool) {
	if c == nil {
		return nil, false
	}
	for i := range c.Configurations {
		if c.Configurations[i].ID == id {
			return &c.Configurations[i], true
		}
	}
	return nil, false
}

// CommissionEntry 答辩条目（一名学生及其导师组），对应 commission_entries
type CommissionEntry struct {
	ID                    int64       `gorm:"primaryKey;autoIncrement"  json:"id"`
	CommissionID          int64       `gorm:"not null;index"            json:"commission_id"`
	CandidateID           int64       `gorm:"not null"                  json:"candidate_id"`
	DegreeLevel           DegreeLevel `gorm:"type:varchar(16);not null" json:"degree_level"`
	SupervisorID          int64       `gorm:"not null"                  json:"supervisor_id"`
	SupervisorAssistantID *int64      `                                 json:"supervisor_assistant_id,omitempty"`
	CounterSupervisorID   *int64      `                                 json:"counter_supervisor_id,omitempty"`

	// 关联
	Candidate           *Student   `gorm:"foreignKey:CandidateID"           json:"candidate,omitempty"`
	Supervisor          *Professor `gorm:"foreignKey:SupervisorID"          json:"supervisor,omitempty"`
	SupervisorAssistant *Professor `gorm:"foreignKey:SupervisorAssistantID" json:"supervisor_assistant"`
	CounterSupervisor   *Professor `gorm:"foreignKey:CounterSupervisorID"   json:"counter_supervisor"`
}

func (CommissionEntry) TableName() string { return "commission_entries" }

// 答辩时长（分钟）
const (
	BachelorsDuration            = 15
	MastersDuration              = 20
	MastersWithCounterSupervisor = 30
)

// Duration 本条目的答辩时长（分钟）
func (e CommissionEntry) Duration() int {
	switch e.DegreeLevel {
	case DegreeBachelors:
		return BachelorsDuration
	case DegreeMasters:
		if _, ok := e.CounterSupervisorKey(); ok {
			return MastersWithCounterSupervisor
		}
		return MastersDuration
	}
	return BachelorsDuration
}

// SupervisorKey 导师 ID；关联对象存在时以关联对象为准
func (e CommissionEntry) SupervisorKey() int64 {
	if e.Supervisor != nil {
		return e.Supervisor.ID
	}
	return e.SupervisorID
}

// CounterSupervisorKey 评阅人 ID，未设置时 ok=false
func (e CommissionEntry) CounterSupervisorKey() (int64, bool) {
	if e.CounterSupervisor != nil {
		return e.CounterSupervisor.ID, true
	}
	if e.CounterSupervisorID != nil {
		return *e.CounterSupervisorID, true
	}
	return 0, false
}

// SupervisorAssistantKey 副导师 ID，未设置时 ok=false
func (e CommissionEntry) SupervisorAssistantKey() (int64, bool) {
	if e.SupervisorAssistant != nil {
		return e.SupervisorAssistant.ID, true
	}
	if e.SupervisorAssistantID != nil {
		return *e.SupervisorAssistantID, true
	}
	return 0, false
}
