package engine

import (
	"github.com/shaiso/templatehub/internal/domain"
)

// ValidateGraph проверяет структуру графа шаблона.
//
// Проверки выполняются в фиксированном порядке, возвращается первая ошибка:
//  1. граф не пустой
//  2. есть хотя бы один trigger
//  3. ID узлов уникальны
//  4. рёбра ссылаются на существующие узлы
//  5. граф ацикличен
//
// Функция чистая и не изменяет входные данные.
func ValidateGraph(nodes []domain.Node, edges []domain.Edge) error {
	if len(nodes) == 0 {
		return newGraphError(ErrEmptyGraph, "")
	}

	if !hasTrigger(nodes) {
		return newGraphError(ErrMissingTrigger, "")
	}

	ids := make(map[string]bool, len(nodes))
	for _, node := range nodes {
		if ids[node.ID] {
			return newGraphError(ErrDuplicateNodeID, node.ID)
		}
		ids[node.ID] = true
	}

	for _, edge := range edges {
		if !ids[edge.Source] {
			return newGraphError(ErrDanglingEdge, edge.Source)
		}
		if !ids[edge.Target] {
			return newGraphError(ErrDanglingEdge, edge.Target)
		}
	}

	if nodeID, ok := findCycle(nodes, edges); ok {
		return newGraphError(ErrCycleDetected, nodeID)
	}

	return nil
}

// hasTrigger проверяет наличие узла с ролью trigger.
func hasTrigger(nodes []domain.Node) bool {
	for _, node := range nodes {
		if node.Type == domain.NodeTypeTrigger {
			return true
		}
	}
	return false
}

// Состояния узла при обходе в глубину.
const (
	unvisited = iota
	onStack
	done
)

// findCycle ищет цикл обходом в глубину со стеком рекурсии.
// Возвращает ID узла, на котором замкнулся цикл.
//
// Узлы в состоянии done повторно не обходятся, поэтому весь проход линейный
// по числу узлов и рёбер, сколько бы точек входа ни было.
func findCycle(nodes []domain.Node, edges []domain.Edge) (string, bool) {
	adjacency := make(map[string][]string, len(nodes))
	for _, edge := range edges {
		adjacency[edge.Source] = append(adjacency[edge.Source], edge.Target)
	}

	state := make(map[string]int, len(nodes))

	var cycleAt string
	var visit func(id string) bool
	visit = func(id string) bool {
		state[id] = onStack
		for _, next := range adjacency[id] {
			switch state[next] {
			case onStack:
				cycleAt = next
				return true
			case unvisited:
				if visit(next) {
					return true
				}
			}
		}
		state[id] = done
		return false
	}

	for _, node := range nodes {
		if state[node.ID] == unvisited && visit(node.ID) {
			return cycleAt, true
		}
	}

	return "", false
}

// TopologicalOrder возвращает ID узлов в топологическом порядке (алгоритм Кана).
// Граф должен быть валидным; для графа с циклом возвращается ErrCycleDetected.
//
// При равенстве сохраняется исходный порядок узлов, поэтому результат детерминирован.
func TopologicalOrder(nodes []domain.Node, edges []domain.Edge) ([]string, error) {
	inDegree := make(map[string]int, len(nodes))
	dependents := make(map[string][]string, len(nodes))
	for _, node := range nodes {
		inDegree[node.ID] = 0
	}
	for _, edge := range edges {
		dependents[edge.Source] = append(dependents[edge.Source], edge.Target)
		inDegree[edge.Target]++
	}

	queue := make([]string, 0, len(nodes))
	for _, node := range nodes {
		if inDegree[node.ID] == 0 {
			queue = append(queue, node.ID)
		}
	}

	order := make([]string, 0, len(nodes))
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		order = append(order, id)

		for _, dep := range dependents[id] {
			inDegree[dep]--
			if inDegree[dep] == 0 {
				queue = append(queue, dep)
			}
		}
	}

	if len(order) != len(inDegree) {
		return nil, newGraphError(ErrCycleDetected, "")
	}

	return order, nil
}
