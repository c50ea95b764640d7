package sample

import "time"

type Status string

const (
	StatusActive   Status = "active"
	StatusArchived Status = "archived"
)

type Priority int

const (
	PriorityLow  Priority = 1
	PriorityHigh Priority = 3
)

type Tags []string

type User struct {
	ID      int     `json:"id"`
	Name    string  `funtype:"display_name" json:"name"`
	Email   *string `json:"email"`
	Balance float64
	Avatar  []byte
	Tags    Tags
	Roles   map[string]struct{}
	Status  Status
	Joined  time.Time
	hidden  string
	Skip    string `json:"-"`
}

type Node struct {
	Value int
	Next  *Node
}

type Pair[T any] struct {
	First  T
	Second T
}

type Board struct {
	Root  Node
	Cells Pair[int]
	Grid  [][]float64
	Meta  map[string]any
	Done  chan int
}
