package taskname

const (
	// DailyRun runs the overdue sweep, the digest and the KPI recalculation in order.
	DailyRun = "jobs:daily:run"

	OverdueSweep   = "jobs:overdue:sweep"
	KPIRecalculate = "jobs:kpi:recalculate"
	DigestSend     = "jobs:digest:send"
)
