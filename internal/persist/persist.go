// Package persist stores journal snapshots durably. Two interchangeable
// backends exist: a flat JSON blob and a SQLite database. Both replace
// the entire persisted state on every flush.
package persist

import (
	"fmt"

	"github.com/gaocuixia/running-journal/internal/models"
)

// Backend kinds accepted by Open and the data.backend config key.
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
)

// Snapshot is the full journal state handed to and from a backend.
type Snapshot struct {
	Articles []models.Article `json:"articles"`
	Events   []models.Event   `json:"events"`
}

// Backend loads the journal at startup and overwrites it after every
// mutation. Flush is replace-all: the previous persisted state is gone
// once it returns.
type Backend interface {
	Load() (Snapshot, error)
	Flush(snap Snapshot) error
	Close() error
}

// Open creates the backend named by kind, storing its state at path.
func Open(kind, path string) (Backend, error) {
	switch kind {
	case BackendFile:
		return NewFile(path), nil
	case BackendSQLite:
		return OpenSQLite(path)
	default:
		return nil, fmt.Errorf("persist: unknown backend %q", kind)
	}
}

// SeedArticles is the bootstrap article set returned when no prior
// state exists, mirroring a fresh install of the original journal.
func SeedArticles() []models.Article {
	return []models.Article{
		{
			ID:       1,
			Title:    "第一次完成半马的感悟",
			Date:     "2025-11-23",
			Category: "比赛感悟",
			Content:  "今天完成了人生中的第一个半程马拉松，虽然过程很艰难，但是当冲过终点线的那一刻，所有的疲惫都值得了。跑步不仅是对身体的挑战，更是对意志力的考验。这次经历让我明白，只要坚持，没有什么是不可能的。",
		},
		{
			ID:       2,
			Title:    "如何科学安排跑步训练",
			Date:     "2025-11-15",
			Category: "训练日志",
			Content:  "科学的训练计划对于提高跑步成绩至关重要。每周应该包含不同强度的训练：间歇跑、长距离慢跑、节奏跑和恢复跑。此外，力量训练和拉伸也不可忽视，可以有效预防受伤。",
		},
		{
			ID:       3,
			Title:    "我的跑步装备选择",
			Date:     "2025-11-08",
			Category: "装备评测",
			Content:  "选择合适的跑步装备可以大大提升跑步体验。跑鞋要根据自己的脚型和跑步方式选择，运动服要透气排汗。我最近入手的新跑鞋，缓震效果非常好，长距离跑步也不会感到膝盖不适。",
		},
		{
			ID:       4,
			Title:    "跑步对心理健康的影响",
			Date:     "2025-11-01",
			Category: "跑步心得",
			Content:  "跑步不仅能锻炼身体，还能改善心理健康。每次跑步时，我都会感到压力得到释放，心情变得愉悦。研究表明，跑步可以促进内啡肽的分泌，有助于缓解焦虑和抑郁情绪。",
		},
	}
}
