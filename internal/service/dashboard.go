package service

import (
	"context"
	"math"
	"strconv"

	"github.com/jackc/pgx/v5/pgtype"
)

// TaskStats counts tasks by status.
type TaskStats struct {
	Pending    int64 `json:"pending"`
	InProgress int64 `json:"inProgress"`
	Completed  int64 `json:"completed"`
}

// DashboardStats is the summary shown on the dashboard widgets.
type DashboardStats struct {
	UserCount        int64     `json:"userCount"`
	DailyActiveUsers int64     `json:"dailyActiveUsers"`
	NewUsers         int64     `json:"newUsers"`
	TotalRevenue     float64   `json:"totalRevenue"`
	PendingOrders    int64     `json:"pendingOrders"`
	CompletedOrders  int64     `json:"completedOrders"`
	Tasks            TaskStats `json:"tasks"`
}

// Series is one labelled data series of a chart.
type Series struct {
	Label string    `json:"label,omitempty"`
	Data  []float64 `json:"data"`
}

// Chart is the labels/datasets shape the dashboard's chart widgets consume.
type Chart struct {
	Labels   []string `json:"labels"`
	Datasets []Series `json:"datasets"`
}

// DashboardCharts groups the charts on the dashboard landing page.
type DashboardCharts struct {
	Revenue Chart `json:"revenue"`
	Users   Chart `json:"users"`
	Orders  Chart `json:"orders"`
}

// Order and task status values counted by Stats.
const (
	StatusPending    = "pending"
	StatusInProgress = "in_progress"
	StatusCompleted  = "completed"
)

// statsQuery computes every figure except the user count in one round trip.
// @param0 pending, @param1 completed, @param2 in progress.
const statsQuery = `
SELECT
	(SELECT count(*) FROM users WHERE last_login >= now() - interval '1 day') AS daily_active_users,
	(SELECT count(*) FROM users WHERE created_at >= now() - interval '30 days') AS new_users,
	(SELECT COALESCE(sum(total), 0)::float8 FROM orders WHERE status = @param1) AS total_revenue,
	(SELECT count(*) FROM orders WHERE status = @param0) AS pending_orders,
	(SELECT count(*) FROM orders WHERE status = @param1) AS completed_orders,
	(SELECT count(*) FROM tasks WHERE status = @param0) AS pending_tasks,
	(SELECT count(*) FROM tasks WHERE status = @param2) AS in_progress_tasks,
	(SELECT count(*) FROM tasks WHERE status = @param1) AS completed_tasks`

var monthLabels = []string{"Jan", "Feb", "Mar", "Apr", "May", "Jun"}

type DashboardService struct {
	store RecordStore
}

func NewDashboardService(store RecordStore) *DashboardService {
	return &DashboardService{store: store}
}

// Stats reads the dashboard figures from the database.
func (s *DashboardService) Stats(ctx context.Context) (*DashboardStats, error) {
	userCount, err := s.store.Count(ctx, Users.Table)
	if err != nil {
		return nil, err
	}

	rows, err := s.store.ExecuteQuery(ctx, statsQuery, StatusPending, StatusCompleted, StatusInProgress)
	if err != nil {
		return nil, err
	}

	stats := &DashboardStats{UserCount: userCount}
	if len(rows) == 0 {
		return stats, nil
	}

	row := rows[0]
	stats.DailyActiveUsers = asInt64(row["daily_active_users"])
	stats.NewUsers = asInt64(row["new_users"])
	stats.TotalRevenue = asFloat64(row["total_revenue"])
	stats.PendingOrders = asInt64(row["pending_orders"])
	stats.CompletedOrders = asInt64(row["completed_orders"])
	stats.Tasks = TaskStats{
		Pending:    asInt64(row["pending_tasks"]),
		InProgress: asInt64(row["in_progress_tasks"]),
		Completed:  asInt64(row["completed_tasks"]),
	}

	return stats, nil
}

// Charts returns the dashboard's chart payloads.
func (s *DashboardService) Charts() DashboardCharts {
	return DashboardCharts{
		Revenue: Chart{
			Labels:   monthLabels,
			Datasets: []Series{{Label: "Revenue", Data: []float64{4500, 5200, 4800, 5800, 6000, 5500}}},
		},
		Users: Chart{
			Labels: monthLabels,
			Datasets: []Series{
				{Label: "New Users", Data: []float64{120, 145, 150, 210, 250, 200}},
				{Label: "Active Users", Data: []float64{320, 345, 375, 390, 450, 420}},
			},
		},
		Orders: Chart{
			Labels:   monthLabels,
			Datasets: []Series{{Label: "Orders", Data: []float64{85, 100, 90, 120, 115, 105}}},
		},
	}
}

func asInt64(value any) int64 {
	switch v := value.(type) {
	case int64:
		return v
	case int32:
		return int64(v)
	case int:
		return int64(v)
	case float64:
		return int64(v)
	default:
		return 0
	}
}

func asFloat64(value any) float64 {
	switch v := value.(type) {
	case float64:
		return v
	case float32:
		return float64(v)
	case int64:
		return float64(v)
	case pgtype.Numeric:
		f, err := v.Float64Value()
		if err != nil || !f.Valid {
			return 0
		}
		return f.Float64
	case string:
		f, err := strconv.ParseFloat(v, 64)
		if err != nil || math.IsNaN(f) {
			return 0
		}
		return f
	default:
		return 0
	}
}

