package basic

import (
	"container/list"
	"io"

	"github.com/numeron/brick"
)

type StringViewModel struct {
	brick.ViewModel
	id *string
}

func NewStringViewModel(id *string) *StringViewModel {
	return &StringViewModel{id: id}
}

type LambdaViewModel struct {
	brick.ViewModel
	provider func() *string
}

func NewLambdaViewModel(provider func() *string) *LambdaViewModel {
	return &LambdaViewModel{provider: provider}
}

type Pair[A, B any] struct {
	First  A
	Second B
}

type PairViewModel struct {
	brick.ViewModel
	pair *Pair[string, []string]
}

func NewPairViewModel(pair *Pair[string, []string]) *PairViewModel {
	return &PairViewModel{pair: pair}
}

type QueueViewModel struct {
	brick.ViewModel
	items *list.List
	tags  []string
}

func NewQueueViewModel(items *list.List, _ int, tags ...string) *QueueViewModel {
	return &QueueViewModel{items: items, tags: tags}
}

type ClashViewModel struct {
	brick.ViewModel
}

func NewClashViewModel(owner string, value int, brick bool, _ string, clashViewModelFactory int) *ClashViewModel {
	return &ClashViewModel{}
}

type unexportedViewModel struct {
	brick.ViewModel
	size int
}

func newUnexportedViewModel(size int) *unexportedViewModel {
	return &unexportedViewModel{size: size}
}

// Base has no constructor and is built with &Base{}.
type Base struct {
	brick.ViewModel
}

type DeepViewModel struct {
	Base
	name string
}

func NewDeepViewModel(name string) *DeepViewModel {
	return &DeepViewModel{name: name}
}

type PointerViewModel struct {
	*brick.ViewModel
}

type GenericViewModel[T any] struct {
	brick.ViewModel
	value T
}

//brick:abstract
type AbstractViewModel struct {
	brick.ViewModel
}

type BadViewModel struct {
	brick.ViewModel
}

func NewBadViewModel() (*BadViewModel, error) {
	return &BadViewModel{}, nil
}

type Owner interface {
	brick.Owner
}

type Mode int

const (
	ModeIdle Mode = iota
	ModeBusy
)

type ReaderHolder struct {
	io.Reader
}

// CloserHolder reaches io.Reader only through the io.ReadCloser interface.
type CloserHolder struct {
	io.ReadCloser
}

type Left struct {
	*Right
}

type Right struct {
	*Left
}

type Plain struct {
	name string
}

type Alias = StringViewModel
