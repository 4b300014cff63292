package services

import (
	"log/slog"

	"github.com/samber/lo"

	"proc-lab/contract"
	"proc-lab/domain"
)

type ClassStats struct {
	Count         int     `json:"count"`
	TotalCPUUsage float64 `json:"total_cpu_usage"`
	AvgCPUUsage   float64 `json:"avg_cpu_usage"`
	TotalMemoryMB int64   `json:"total_memory_mb"`
}

type Stats struct {
	TotalProcesses int                                 `json:"total_processes"`
	ByClass        map[domain.ResourceClass]ClassStats `json:"by_class"`
	ByState        map[domain.ProcessState]int         `json:"by_state"`
}

type IStatsService interface {
	Stats() Stats
}

// StatsService derives summary statistics from the store. Per-class figures
// cover RUNNING processes only; terminated-but-unpurged records appear in the
// by_state section so the retention policy stays visible.
type StatsService struct {
	store contract.IProcessStore
	log   *slog.Logger
}

func NewStatsService(store contract.IProcessStore, log *slog.Logger) *StatsService {
	return &StatsService{store: store, log: log}
}

func (s *StatsService) Stats() Stats {
	records := s.store.List()

	stats := Stats{
		ByClass: make(map[domain.ResourceClass]ClassStats, len(domain.AllClasses)),
		ByState: map[domain.ProcessState]int{
			domain.RUNNING:    0,
			domain.TERMINATED: 0,
		},
	}
	for _, class := range domain.AllClasses {
		stats.ByClass[class] = ClassStats{}
	}

	for _, record := range records {
		stats.ByState[record.State]++
	}

	running := lo.Filter(records, func(r domain.ProcessRecord, _ int) bool {
		return r.Running()
	})
	stats.TotalProcesses = len(running)

	grouped := lo.GroupBy(running, func(r domain.ProcessRecord) domain.ResourceClass {
		return r.ResourceClass
	})
	for class, members := range grouped {
		totalCPU := lo.SumBy(members, func(r domain.ProcessRecord) float64 {
			return r.Usage.CPUPercent
		})
		// An empty class keeps the zero value; members is never empty here.
		stats.ByClass[class] = ClassStats{
			Count:         len(members),
			TotalCPUUsage: totalCPU,
			AvgCPUUsage:   totalCPU / float64(len(members)),
			TotalMemoryMB: lo.SumBy(members, func(r domain.ProcessRecord) int64 {
				return r.Usage.MemoryMB
			}),
		}
	}
	return stats
}
