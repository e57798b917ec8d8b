package game

import "github.com/benbjohnson/immutable"

// AddObject stores obj under parentID (0 for a root) with the next free id.
// Any id or children the caller set on obj are dropped; use
// AddObjectRecursive to insert a whole tree.
func (s State) AddObject(obj Object, parentID int) (State, error) {
	next, _, err := s.add(obj, parentID)
	return next, err
}

// Add is AddObject that also hands back the stored copy, typed, so callers
// can read its assigned id.
func Add[T Object](s State, obj T, parentID int) (State, T, error) {
	next, created, err := s.add(obj, parentID)
	if err != nil {
		var zero T
		return s, zero, err
	}
	typed, _ := created.(T)
	return next, typed, nil
}

func (s State) add(obj Object, parentID int) (State, Object, error) {
	if parentID != 0 && !s.HasObject(parentID) {
		return s, nil, newError(CodeInvalidParent, parentID, "parent %d does not exist", parentID)
	}

	id := s.nextID
	stored := obj.WithID(id).WithChildren(nil)

	s.nextID++
	s.objects = s.objects.Set(id, stored)
	if parentID != 0 {
		s.children = attach(s.children, parentID, id)
		s.parents = s.parents.Set(id, parentID)
	}
	return s, stored, nil
}

// AddObjectRecursive adds obj and then, in order, every entry of its
// Children as a subtree under it. Ids are assigned depth-first pre-order.
func (s State) AddObjectRecursive(obj Object, parentID int) (State, error) {
	next, created, err := s.add(obj, parentID)
	if err != nil {
		return s, err
	}
	id := created.Meta().ID
	for _, child := range obj.Meta().Children {
		next, err = next.AddObjectRecursive(child, id)
		if err != nil {
			return s, err
		}
	}
	return next, nil
}

// MoveObject re-parents id under newParentID (0 makes it a root). Moving an
// object under itself or one of its descendants fails with ErrCycle.
func (s State) MoveObject(id, newParentID int) (State, error) {
	if !s.HasObject(id) {
		return s, newError(CodeNotFound, id, "object %d does not exist", id)
	}
	if newParentID != 0 && !s.HasObject(newParentID) {
		return s, newError(CodeNotFound, newParentID, "parent %d does not exist", newParentID)
	}
	if s.IsDescendant(newParentID, id) {
		return s, newError(CodeCycle, id, "cannot move %d under its own descendant %d", id, newParentID)
	}
	return s.relink(id, newParentID), nil
}

// RemoveObject deletes id. With removeChildren the whole subtree goes;
// otherwise the direct children are handed to id's parent (or become roots).
// Removing an absent id returns s unchanged.
func (s State) RemoveObject(id int, removeChildren bool) State {
	if !s.HasObject(id) {
		return s
	}

	parentID, hasParent := s.parents.Get(id)
	for _, child := range s.ChildIDs(id) {
		if removeChildren {
			s = s.RemoveObject(child, true)
		} else {
			s = s.relink(child, parentID)
		}
	}

	if hasParent {
		s.children = detach(s.children, parentID, id)
	}
	s.objects = s.objects.Delete(id)
	s.children = s.children.Delete(id)
	s.parents = s.parents.Delete(id)
	return s
}

// Descendants lists every object below parentID, breadth first: all direct
// children come before any grandchild.
func (s State) Descendants(parentID int) []int {
	var out []int
	queue := s.ChildIDs(parentID)
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		out = append(out, id)
		queue = append(queue, s.ChildIDs(id)...)
	}
	return out
}

// LoadHierarchy returns the object at rootID with Children filled in from
// the store, recursively. The result is a detached view.
func (s State) LoadHierarchy(rootID int) (Object, error) {
	obj, err := s.Object(rootID)
	if err != nil {
		return nil, err
	}
	return s.materialize(obj), nil
}

func (s State) materialize(obj Object) Object {
	kids := s.Children(obj.Meta().ID)
	if len(kids) == 0 {
		return obj.WithChildren(nil)
	}
	loaded := make([]Object, len(kids))
	for i, child := range kids {
		loaded[i] = s.materialize(child)
	}
	return obj.WithChildren(loaded)
}

// IsDescendant reports whether candidate is ancestor or sits somewhere below
// it, by walking candidate's parent chain.
func (s State) IsDescendant(candidate, ancestor int) bool {
	for cur := candidate; ; {
		if cur == ancestor {
			return true
		}
		parent, ok := s.parents.Get(cur)
		if !ok {
			return false
		}
		cur = parent
	}
}

// relink moves id without validation. Callers guarantee the move is legal.
func (s State) relink(id, newParentID int) State {
	if old, ok := s.parents.Get(id); ok {
		s.children = detach(s.children, old, id)
	}
	if newParentID == 0 {
		s.parents = s.parents.Delete(id)
		return s
	}
	s.children = attach(s.children, newParentID, id)
	s.parents = s.parents.Set(id, newParentID)
	return s
}

type childIndex = immutable.Map[int, *immutable.List[int]]

func attach(idx *childIndex, parentID, id int) *childIndex {
	list, ok := idx.Get(parentID)
	if !ok {
		return idx.Set(parentID, immutable.NewList(id))
	}
	return idx.Set(parentID, list.Append(id))
}

// detach drops id from parentID's list and prunes the entry once empty.
func detach(idx *childIndex, parentID, id int) *childIndex {
	list, ok := idx.Get(parentID)
	if !ok {
		return idx
	}
	at := -1
	itr := list.Iterator()
	for !itr.Done() {
		i, v := itr.Next()
		if v == id {
			at = i
			break
		}
	}
	switch {
	case at < 0:
		return idx
	case list.Len() == 1:
		return idx.Delete(parentID)
	}
	rest := list.Slice(0, at)
	for i := at + 1; i < list.Len(); i++ {
		rest = rest.Append(list.Get(i))
	}
	return idx.Set(parentID, rest)
}
