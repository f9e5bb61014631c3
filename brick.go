// Package brick is the runtime used by code that brick-gen writes.
//
// A type opts in by embedding ViewModel:
//
//	type Profile struct {
//		brick.ViewModel
//		id *string
//	}
//
//	func NewProfile(id *string) *Profile { return &Profile{id: id} }
//
// brick-gen then emits GetProfile and LazyProfile, which obtain the instance
// held by an Owner's Store, creating it through a Factory on first use.
package brick

import "sync"

// ViewModel is the base type that generated accessors are emitted for.
// Embed it by value or by pointer.
type ViewModel struct {
	mu      sync.Mutex
	hooks   []func()
	cleared bool
}

// OnCleared registers fn to run once the owning Store drops this value.
// Hooks run in registration order. Registering after the value was cleared
// runs fn immediately.
func (vm *ViewModel) OnCleared(fn func()) {
	vm.mu.Lock()
	if vm.cleared {
		vm.mu.Unlock()
		fn()
		return
	}
	vm.hooks = append(vm.hooks, fn)
	vm.mu.Unlock()
}

// Cleared reports whether the owning Store has already dropped this value.
func (vm *ViewModel) Cleared() bool {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	return vm.cleared
}

func (vm *ViewModel) clear() {
	vm.mu.Lock()
	if vm.cleared {
		vm.mu.Unlock()
		return
	}
	vm.cleared = true
	hooks := vm.hooks
	vm.hooks = nil
	vm.mu.Unlock()

	for _, fn := range hooks {
		fn()
	}
}

func (vm *ViewModel) viewModel() *ViewModel { return vm }

// clearable is satisfied by any pointer to a struct embedding ViewModel.
type clearable interface {
	viewModel() *ViewModel
}
