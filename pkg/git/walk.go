package git

import (
	"errors"
	"fmt"
	"io"
	"sort"
)

// Order is the order in which Walk yields commits.
type Order int

const (
	// OrderNewestFirst yields commits by descending committer time.
	OrderNewestFirst Order = iota
	// OrderOldestFirst yields commits by ascending committer time.
	OrderOldestFirst
)

// CommitReader reads commits by id.
type CommitReader interface {
	ReadCommit(id Hash) (*Commit, error)
}

// CommitIter is a pull-based sequence of commits.
type CommitIter struct {
	commits []*Commit
	pos     int
}

// Next returns the next commit, or io.EOF when the sequence is exhausted.
func (it *CommitIter) Next() (*Commit, error) {
	if it.pos >= len(it.commits) {
		return nil, io.EOF
	}
	c := it.commits[it.pos]
	it.pos++
	return c, nil
}

// ForEach calls fn for every remaining commit. Returning ErrStop from fn ends
// the iteration without an error.
func (it *CommitIter) ForEach(fn func(*Commit) error) error {
	for {
		c, err := it.Next()
		if err == io.EOF {
			return nil
		}
		if err := fn(c); err != nil {
			if errors.Is(err, ErrStop) {
				return nil
			}
			return err
		}
	}
}

// Len returns the total number of commits in the sequence.
func (it *CommitIter) Len() int {
	return len(it.commits)
}

// Walk returns the commits reachable from start in the given order. Ties in
// commit time are broken by ascending id so that the order is reproducible.
func (r *Repository) Walk(start Hash, order Order) (*CommitIter, error) {
	return Walk(r, start, order)
}

type visitState uint8

const (
	unvisited visitState = iota
	onPath
	done
)

type frame struct {
	commit *Commit
	next   int
}

// Walk returns the commits reachable from start read through cr.
//
// Every commit is visited once even when it is reachable through several
// merge parents. A commit met again while it is still on the current
// traversal path fails the walk with ErrGraphCycleDetected.
//
// The whole reachable history is read and sorted before Walk returns, since
// the order is total over it. Trees and blobs are not read.
func Walk(cr CommitReader, start Hash, order Order) (*CommitIter, error) {
	root, err := cr.ReadCommit(start)
	if err != nil {
		return nil, err
	}

	state := map[Hash]visitState{start: onPath}
	found := Commits{root}
	stack := []frame{{commit: root}}

	for len(stack) > 0 {
		top := &stack[len(stack)-1]
		if top.next == len(top.commit.Parents) {
			state[top.commit.ID] = done
			stack = stack[:len(stack)-1]
			continue
		}

		id := top.commit.Parents[top.next]
		top.next++

		switch state[id] {
		case onPath:
			return nil, fmt.Errorf("%w: %s is an ancestor of itself", ErrGraphCycleDetected, id)
		case done:
			continue
		}

		parent, err := cr.ReadCommit(id)
		if err != nil {
			return nil, err
		}
		state[id] = onPath
		found = append(found, parent)
		stack = append(stack, frame{commit: parent})
	}

	switch order {
	case OrderOldestFirst:
		sort.SliceStable(found, func(i, j int) bool {
			return older(found[i], found[j])
		})
	default:
		sort.Stable(found)
	}

	return &CommitIter{commits: found}, nil
}
