package routing

// Path names the engine family a task is sent to.
type Path string

const (
	PathDialogue Path = "dialogue"
	PathTask     Path = "task"
)

func (p Path) String() string {
	return string(p)
}

type Strategy interface {
	Select(task string) Path
}

type fixedStrategy struct {
	path Path
}

func (f *fixedStrategy) Select(string) Path {
	return f.path
}

// NewFixedStrategy returns a strategy that always picks path.
func NewFixedStrategy(path Path) Strategy {
	return &fixedStrategy{path: path}
}
