package plan

import (
	"github.com/felixgeelhaar/smartplan/internal/errors"
)

// Order returns tasks in an order where every task follows all of its
// dependencies.
//
// Ordering uses Kahn's algorithm with a FIFO ready queue seeded in input order,
// so tasks are emitted in the order their dependencies became satisfied and
// independent tasks keep their relative input order. A dependency on an id that
// is not in tasks, or a cycle, is reported as a structural error and no order
// is returned. Order does not modify tasks.
func Order(tasks []Task) ([]Task, error) {
	index := make(map[string]int, len(tasks))
	for i, t := range tasks {
		index[t.ID] = i
	}

	indeg := make([]int, len(tasks))
	dependents := make([][]int, len(tasks))
	for i, t := range tasks {
		for _, dep := range dependencySet(t) {
			j, ok := index[dep]
			if !ok {
				return nil, errors.NewMissingDependencyError(t.ID, dep)
			}
			indeg[i]++
			dependents[j] = append(dependents[j], i)
		}
	}

	queue := make([]int, 0, len(tasks))
	for i := range tasks {
		if indeg[i] == 0 {
			queue = append(queue, i)
		}
	}

	out := make([]Task, 0, len(tasks))
	emitted := make([]bool, len(tasks))
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		out = append(out, tasks[n])
		emitted[n] = true
		for _, m := range dependents[n] {
			indeg[m]--
			if indeg[m] == 0 {
				queue = append(queue, m)
			}
		}
	}

	if len(out) < len(tasks) {
		return nil, errors.NewCycleError(cycleWitness(tasks, index, emitted))
	}
	return out, nil
}

// cycleWitness extracts one cycle among the tasks Kahn could not emit.
//
// Every unemitted task has at least one unemitted dependency, so walking
// upstream from the first unemitted task must revisit a task. The walk is
// reversed so the path reads in dependency -> dependent direction.
func cycleWitness(tasks []Task, index map[string]int, emitted []bool) []string {
	cur := -1
	for i := range tasks {
		if !emitted[i] {
			cur = i
			break
		}
	}
	if cur < 0 {
		return nil
	}

	pos := make(map[int]int)
	var walk []int
	for {
		if p, seen := pos[cur]; seen {
			walk = append(walk[p:], cur)
			break
		}
		pos[cur] = len(walk)
		walk = append(walk, cur)

		next := -1
		for _, dep := range dependencySet(tasks[cur]) {
			if j := index[dep]; !emitted[j] {
				next = j
				break
			}
		}
		if next < 0 {
			return nil
		}
		cur = next
	}

	path := make([]string, len(walk))
	for i, n := range walk {
		path[len(walk)-1-i] = tasks[n].ID
	}
	return path
}
