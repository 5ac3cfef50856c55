package engine

import "errors"

// Ошибки структуры графа. Текст ошибки совпадает с причиной (Reason).
var (
	// ErrEmptyGraph — шаблон не содержит узлов.
	ErrEmptyGraph = errors.New("empty graph")

	// ErrMissingTrigger — нет ни одного узла с ролью trigger.
	ErrMissingTrigger = errors.New("missing trigger")

	// ErrDuplicateNodeID — несколько узлов с одинаковым ID.
	ErrDuplicateNodeID = errors.New("duplicate node id")

	// ErrDanglingEdge — ребро ссылается на несуществующий узел.
	ErrDanglingEdge = errors.New("dangling edge")

	// ErrCycleDetected — в графе есть цикл.
	ErrCycleDetected = errors.New("cycle detected")
)

// Ошибки полей определения шаблона.
var (
	// ErrInvalidField — поле отсутствует или имеет недопустимое значение.
	ErrInvalidField = errors.New("invalid field")
)

// ValidationError — ошибка валидации с контекстом.
type ValidationError struct {
	Reason  string // причина: "empty graph", "dangling edge", ... или "invalid field"
	NodeID  string // ID узла, к которому относится ошибка
	Field   string // поле, вызвавшее ошибку
	Message string // описание ошибки
	Err     error  // базовая ошибка
}

// Error реализует интерфейс error.
func (e *ValidationError) Error() string {
	return e.Message
}

// Unwrap возвращает базовую ошибку.
func (e *ValidationError) Unwrap() error {
	return e.Err
}

// newGraphError создаёт ошибку структуры графа.
func newGraphError(base error, nodeID string) *ValidationError {
	msg := base.Error()
	if nodeID != "" {
		msg += ": " + nodeID
	}
	return &ValidationError{
		Reason:  base.Error(),
		NodeID:  nodeID,
		Field:   "nodes",
		Message: msg,
		Err:     base,
	}
}

// NewFieldError создаёт ошибку валидации поля.
func NewFieldError(field, message string) *ValidationError {
	return &ValidationError{
		Reason:  ErrInvalidField.Error(),
		Field:   field,
		Message: field + ": " + message,
		Err:     ErrInvalidField,
	}
}

// ReasonOf возвращает причину ошибки валидации или пустую строку.
func ReasonOf(err error) string {
	var vErr *ValidationError
	if errors.As(err, &vErr) {
		return vErr.Reason
	}
	return ""
}
