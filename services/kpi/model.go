package kpi

import (
	"time"
)

const (
	MetricTaskCompletionRate = "TASK_COMPLETION_RATE"
	MetricAvgCompletionTime  = "AVG_COMPLETION_TIME"

	UnitPercentage = "PERCENTAGE"
	UnitDays       = "DAYS"
)

const (
	BadgeTopPerformer     = "Top Performer"
	BadgeTaskSlayer       = "Task Slayer"
	BadgeConsistentLogger = "Consistent Logger"

	consistentLoggerHours = 10
	topPerformerLimit     = 5
)

// KPIMetric rows are append-only.
type KPIMetric struct {
	ID         string    `gorm:"column:id;primaryKey;type:varchar(32)" json:"id"`
	Date       time.Time `gorm:"column:date;index;not null" json:"date"`
	MetricName string    `gorm:"column:metric_name;type:varchar(64);index;not null" json:"metricName"`
	Value      float64   `gorm:"column:value;not null" json:"value"`
	Unit       string    `gorm:"column:unit;type:varchar(32);not null" json:"unit"`
	CreatedAt  time.Time `gorm:"column:created_at" json:"createdAt"`
}

func (KPIMetric) TableName() string {
	return "kpi_metrics"
}

type KPIReport struct {
	OrganizationMetrics OrganizationMetrics `json:"organizationMetrics"`
	TeamMetrics         []ProjectMetrics    `json:"teamMetrics"`
}

type OrganizationMetrics struct {
	TotalTasks             int         `json:"totalTasks"`
	CompletedTasks         int         `json:"completedTasks"`
	CompletionRate         float64     `json:"completionRate"`
	AverageProjectDuration float64     `json:"averageProjectDuration"`
	TopPerformers          []Performer `json:"topPerformers"`
}

type Performer struct {
	UserID              string  `json:"userId"`
	UserName            string  `json:"userName"`
	CompletedTasks      int     `json:"completedTasks"`
	AverageTaskDuration float64 `json:"averageTaskDuration"`
	TotalHours          float64 `json:"totalHours"`
}

type ProjectMetrics struct {
	ProjectID       string          `json:"projectId"`
	ProjectName     string          `json:"projectName"`
	CompletionRate  float64         `json:"completionRate"`
	AverageDuration float64         `json:"averageDuration"`
	TeamMembers     []MemberMetrics `json:"teamMembers"`
}

type MemberMetrics struct {
	UserID          string `json:"userId"`
	UserName        string `json:"userName"`
	CompletedTasks  int    `json:"completedTasks"`
	InProgressTasks int    `json:"inProgressTasks"`
}

type LeaderboardEntry struct {
	UserID         string   `json:"userId"`
	Name           string   `json:"name"`
	Email          string   `json:"email"`
	CompletedTasks int      `json:"completedTasks"`
	HoursLogged    float64  `json:"hoursLogged"`
	Efficiency     float64  `json:"efficiency"`
	Badges         []string `json:"badges"`
}

type LeaderboardFilter struct {
	OrganizationID string `form:"organizationId"`
}

type MonthlyKPIs struct {
	WindowStart       time.Time    `json:"windowStart"`
	CompletionRate    float64      `json:"completionRate"`
	AvgCompletionTime float64      `json:"avgCompletionTime"`
	Metrics           []*KPIMetric `json:"metrics"`
}

type Digest struct {
	GeneratedAt    time.Time `json:"generatedAt"`
	TotalTasks     int64     `json:"totalTasks"`
	CompletedTasks int64     `json:"completedTasks"`
	OverdueTasks   int64     `json:"overdueTasks"`
	NewTasks       int64     `json:"newTasks"`
	CompletionRate float64   `json:"completionRate"`
}
