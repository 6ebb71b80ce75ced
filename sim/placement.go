package sim

import (
	"slices"

	"github.com/sirupsen/logrus"
)

// Replica is a handle through which workers read SimulationData.
type Replica[T Float] interface {
	Read(worker int) *SimulationData[T]
}

// Placement decides where the copies of SimulationData live.
type Placement[T Float] interface {
	Replicate(sd *SimulationData[T]) Replica[T]
}

// NewPlacement returns SingleCopy for replicas <= 1 and Replicated otherwise.
func NewPlacement[T Float](replicas int) Placement[T] {
	if replicas <= 1 {
		return SingleCopy[T]{}
	}
	return Replicated[T]{Copies: replicas}
}

// SingleCopy shares one SimulationData between all workers.
type SingleCopy[T Float] struct{}

func (SingleCopy[T]) Replicate(sd *SimulationData[T]) Replica[T] {
	return replicaSet[T]{sd}
}

// Replicated keeps Copies independent copies of SimulationData and serves
// worker w from copy w % Copies. Each copy is written by its own goroutine.
type Replicated[T Float] struct {
	Copies int
}

func (p Replicated[T]) Replicate(sd *SimulationData[T]) Replica[T] {
	copies := make(replicaSet[T], max(p.Copies, 1))
	copies[0] = sd
	forEach(len(copies)-1, len(copies)-1, func(i int) {
		copies[i+1] = sd.Clone()
	})
	logrus.Debugf("simulation data replicated %d times", len(copies))
	return copies
}

type replicaSet[T Float] []*SimulationData[T]

func (r replicaSet[T]) Read(worker int) *SimulationData[T] {
	return r[worker%len(r)]
}

// Clone returns a deep copy of sd.
func (sd *SimulationData[T]) Clone() *SimulationData[T] {
	c := *sd
	c.NuclideGrid = slices.Clone(sd.NuclideGrid)
	if sd.Unionized != nil {
		c.Unionized = &UnionizedGrid[T]{
			Energy: slices.Clone(sd.Unionized.Energy),
			Index:  slices.Clone(sd.Unionized.Index),
		}
	}
	if sd.Hash != nil {
		c.Hash = &HashGrid{Bins: sd.Hash.Bins, Index: slices.Clone(sd.Hash.Index)}
	}
	c.Materials = make([]Material[T], len(sd.Materials))
	for i, m := range sd.Materials {
		c.Materials[i] = m.Clone()
	}
	return &c
}
