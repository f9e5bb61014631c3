package basic

import "container/list"

type Shapes struct {
	Ptr     *string
	PtrPtr  **int
	Slice   []string
	Array   [4]int
	Map     map[string][]error
	Chan    <-chan struct{}
	Fn      func(a, b int, rest ...string) (int, error)
	Iface   interface{ Close() error }
	Any     any
	Empty   interface{}
	Generic Pair[string, *int]
	Queue   *list.List
	Anon    struct {
		X int `json:"x"`
	}
}
