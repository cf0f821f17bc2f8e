package core

import (
	"fmt"
	"sort"

	"logbook/models"
)

// AssembleLogTree reconstructs the reply tree of one log family. The input
// is the complete flat row set sharing rootLogID (the root itself plus
// every descendant), already fetched by the caller; no I/O happens here.
//
// Children are ordered by creation time ascending, ties broken by id. A
// log without replies gets an empty children list, never nil. A family
// whose parent chain revisits an id (or otherwise never reaches the root)
// is a storage invariant violation and yields a DataIntegrityError.
func AssembleLogTree(logs []models.Log, rootLogID int64) (*models.LogTreeNode, error) {
	var root *models.Log
	childrenByParent := make(map[int64][]models.Log)
	seen := make(map[int64]bool, len(logs))

	for i := range logs {
		l := logs[i]
		if seen[l.ID] {
			return nil, &models.DataIntegrityError{Detail: fmt.Sprintf("log family %d contains log %d twice", rootLogID, l.ID)}
		}
		seen[l.ID] = true

		if l.ID == rootLogID {
			if l.ParentLogID != nil {
				return nil, &models.DataIntegrityError{Detail: fmt.Sprintf("root log %d has a parent", rootLogID)}
			}
			root = &logs[i]
			continue
		}
		if l.ParentLogID == nil {
			return nil, &models.DataIntegrityError{Detail: fmt.Sprintf("log %d of family %d has no parent and is not the root", l.ID, rootLogID)}
		}
		childrenByParent[*l.ParentLogID] = append(childrenByParent[*l.ParentLogID], l)
	}

	if root == nil {
		return nil, &models.DataIntegrityError{Detail: fmt.Sprintf("root log %d is missing from its own family", rootLogID)}
	}

	for _, siblings := range childrenByParent {
		sort.Slice(siblings, func(i, j int) bool {
			if siblings[i].CreatedAt.Equal(siblings[j].CreatedAt) {
				return siblings[i].ID < siblings[j].ID
			}
			return siblings[i].CreatedAt.Before(siblings[j].CreatedAt)
		})
	}

	node, attached := attach(*root, childrenByParent)
	// Every row must be reachable from the root. Anything left over sits
	// on a cyclic or dangling parent chain.
	if attached != len(logs) {
		return nil, &models.DataIntegrityError{Detail: fmt.Sprintf("log family %d has %d entries unreachable from the root (cyclic or dangling parent chain)", rootLogID, len(logs)-attached)}
	}
	return node, nil
}

// attach builds the subtree below l. Each log appears in exactly one child
// list, so the recursion visits every row at most once and cannot loop.
func attach(l models.Log, childrenByParent map[int64][]models.Log) (*models.LogTreeNode, int) {
	node := &models.LogTreeNode{Log: l, Children: []*models.LogTreeNode{}}
	count := 1
	for _, child := range childrenByParent[l.ID] {
		childNode, n := attach(child, childrenByParent)
		node.Children = append(node.Children, childNode)
		count += n
	}
	node.Replies = int64(count - 1)
	return node, count
}

// CountDescendants reports how many descendants a subtree rooted at logID
// has within the given family rows.
func CountDescendants(logs []models.Log, logID int64) int64 {
	childrenByParent := make(map[int64][]int64)
	for _, l := range logs {
		if l.ParentLogID != nil {
			childrenByParent[*l.ParentLogID] = append(childrenByParent[*l.ParentLogID], l.ID)
		}
	}
	visited := make(map[int64]bool)
	var count int64
	var walk func(id int64)
	walk = func(id int64) {
		if visited[id] {
			return
		}
		visited[id] = true
		for _, child := range childrenByParent[id] {
			count++
			walk(child)
		}
	}
	walk(logID)
	return count
}
