package task

import (
	"gorm.io/gorm"
)

// createsCycle reports whether making taskID depend on deps would close a
// cycle, i.e. whether taskID is reachable from deps over existing edges.
func createsCycle(db *gorm.DB, taskID string, deps []string) (bool, error) {
	visited := make(map[string]struct{})
	frontier := deps

	for len(frontier) > 0 {
		batch := make([]string, 0, len(frontier))
		for _, id := range frontier {
			if id == taskID {
				return true, nil
			}
			if _, ok := visited[id]; ok {
				continue
			}
			visited[id] = struct{}{}
			batch = append(batch, id)
		}
		if len(batch) == 0 {
			return false, nil
		}

		var next []string
		if err := db.Model(&TaskDependency{}).Where("task_id IN ?", batch).Pluck("depends_on_id", &next).Error; err != nil {
			return false, err
		}
		frontier = next
	}
	return false, nil
}
