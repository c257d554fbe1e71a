package domain

import "time"

// Stats are the aggregate counters shown on the admin dashboard.
type Stats struct {
	TotalUsers        int     `json:"totalUsers"`
	TotalElectricians int     `json:"totalElectricians"`
	TotalJobs         int     `json:"totalJobs"`
	Revenue           float64 `json:"revenue"`
	PendingApprovals  int     `json:"pendingApprovals"`
	ActiveJobs        int     `json:"activeJobs"`
	TodayRevenue      float64 `json:"todayRevenue"`
	CompletedJobs     int     `json:"completedJobs"`
}

// Snapshot is a consistent copy of the collections statistics derive from.
type Snapshot struct {
	Users               []User
	Electricians        []ElectricianProfile
	PendingElectricians []ElectricianProfile
	Services            []Service
	PendingServices     []Service
	Jobs                []Job
}

// ComputeStats derives the dashboard counters from a snapshot. It has no
// side effects; the same snapshot always yields the same result.
func ComputeStats(s Snapshot, now time.Time) Stats {
	st := Stats{
		TotalUsers:        len(s.Users),
		TotalElectricians: len(s.Electricians),
		TotalJobs:         len(s.Jobs),
		PendingApprovals:  len(s.PendingElectricians) + len(s.PendingServices),
	}
	y, m, d := now.Date()
	for i := range s.Jobs {
		j := &s.Jobs[i]
		switch j.Status {
		case JobAccepted, JobInProgress:
			st.ActiveJobs++
		case JobCompleted:
			st.CompletedJobs++
			st.Revenue += j.TotalPrice
			if j.CompletedAt != nil {
				cy, cm, cd := j.CompletedAt.In(now.Location()).Date()
				if cy == y && cm == m && cd == d {
					st.TodayRevenue += j.TotalPrice
				}
			}
		}
	}
	return st
}
