package inmemdb

import (
	"sync"

	"github.com/trezcool/stemquest/core/game"
)

type (
	DB struct {
		attempt *attemptTable
	}

	attemptTable struct {
		sync.RWMutex
		rows []game.Attempt // insertion order
	}
)

func Open() *DB {
	return &DB{
		attempt: &attemptTable{},
	}
}
