// Package dag orders the tables of a schema by their references.
// A table depends on every table it holds a foreign key to, so creating
// tables in topological order never references a missing table.
package dag

import (
	"fmt"
	"sort"
	"strings"

	"github.com/leapstack-labs/leapdbml/pkg/core"
)

// Node is a table in the graph.
type Node struct {
	// ID is the display name of the table
	ID string
	// Table is the table in the source graph
	Table core.TableID
}

// Graph is a directed graph of table references.
type Graph struct {
	nodes   map[string]*Node
	edges   map[string][]string // referenced -> referencing
	parents map[string][]string // referencing -> referenced
}

// CycleError reports tables that reference each other in a loop.
type CycleError struct {
	Path []string
}

func (e *CycleError) Error() string {
	return "reference cycle: " + strings.Join(e.Path, " -> ")
}

// NewGraph creates a new empty graph.
func NewGraph() *Graph {
	return &Graph{
		nodes:   make(map[string]*Node),
		edges:   make(map[string][]string),
		parents: make(map[string][]string),
	}
}

// Build creates the reference graph of db. Many-to-many relationships need a
// junction table and add no edge; self references are ignored.
func Build(db *core.Database) *Graph {
	g := NewGraph()
	for _, t := range db.Tables() {
		g.AddNode(db.TableName(t.ID), t.ID)
	}

	for _, r := range db.Relationships() {
		from, to := db.Column(r.From[0]), db.Column(r.To[0])
		var parent, child core.TableID
		switch r.Kind {
		case core.ManyToOne, core.OneToOne:
			parent, child = to.Table, from.Table
		case core.OneToMany:
			parent, child = from.Table, to.Table
		default:
			continue
		}
		if parent == child {
			continue
		}
		// Both ends are tables of db, so the edge is always valid.
		_ = g.AddEdge(db.TableName(parent), db.TableName(child))
	}
	return g
}

// AddNode adds a table to the graph.
func (g *Graph) AddNode(id string, table core.TableID) {
	if n, exists := g.nodes[id]; exists {
		n.Table = table
		return
	}
	g.nodes[id] = &Node{ID: id, Table: table}
	g.edges[id] = []string{}
	g.parents[id] = []string{}
}

// AddEdge records that child references parent.
func (g *Graph) AddEdge(parentID, childID string) error {
	if _, exists := g.nodes[parentID]; !exists {
		return fmt.Errorf("table %q is not in the graph", parentID)
	}
	if _, exists := g.nodes[childID]; !exists {
		return fmt.Errorf("table %q is not in the graph", childID)
	}
	if parentID == childID {
		return fmt.Errorf("self reference: %s", parentID)
	}

	if !contains(g.edges[parentID], childID) {
		g.edges[parentID] = append(g.edges[parentID], childID)
	}
	if !contains(g.parents[childID], parentID) {
		g.parents[childID] = append(g.parents[childID], parentID)
	}
	return nil
}

// GetNode returns a node by ID.
func (g *Graph) GetNode(id string) (*Node, bool) {
	node, exists := g.nodes[id]
	return node, exists
}

// GetParents returns the tables id references.
func (g *Graph) GetParents(id string) []string {
	return g.parents[id]
}

// GetChildren returns the tables referencing id.
func (g *Graph) GetChildren(id string) []string {
	return g.edges[id]
}

// NodeCount returns the number of tables in the graph.
func (g *Graph) NodeCount() int {
	return len(g.nodes)
}

// EdgeCount returns the number of distinct table references.
func (g *Graph) EdgeCount() int {
	count := 0
	for _, children := range g.edges {
		count += len(children)
	}
	return count
}

// HasCycle returns true if the graph contains a cycle, along with the cycle path.
func (g *Graph) HasCycle() (bool, []string) {
	visited := make(map[string]bool)
	recStack := make(map[string]bool)
	path := make(map[string]string)

	var cyclePath []string

	var dfs func(id string) bool
	dfs = func(id string) bool {
		visited[id] = true
		recStack[id] = true

		for _, childID := range g.edges[id] {
			if !visited[childID] {
				path[childID] = id
				if dfs(childID) {
					return true
				}
			} else if recStack[childID] {
				cyclePath = []string{childID}
				for curr := id; curr != childID; curr = path[curr] {
					cyclePath = append([]string{curr}, cyclePath...)
				}
				cyclePath = append([]string{childID}, cyclePath...)
				return true
			}
		}

		recStack[id] = false
		return false
	}

	for _, id := range g.sortedIDs() {
		if !visited[id] && dfs(id) {
			return true, cyclePath
		}
	}
	return false, nil
}

// TopologicalSort returns tables with referenced tables before the tables
// referencing them.
func (g *Graph) TopologicalSort() ([]*Node, error) {
	if hasCycle, cyclePath := g.HasCycle(); hasCycle {
		return nil, &CycleError{Path: cyclePath}
	}

	visited := make(map[string]bool)
	var result []*Node

	var visit func(id string)
	visit = func(id string) {
		if visited[id] {
			return
		}
		visited[id] = true
		for _, parentID := range g.parents[id] {
			visit(parentID)
		}
		result = append(result, g.nodes[id])
	}

	for _, id := range g.sortedIDs() {
		visit(id)
	}
	return result, nil
}

// GetCreationLevels groups tables by level. Level 0 references nothing;
// tables at level N only reference tables of lower levels.
func (g *Graph) GetCreationLevels() ([][]string, error) {
	if hasCycle, cyclePath := g.HasCycle(); hasCycle {
		return nil, &CycleError{Path: cyclePath}
	}

	assigned := make(map[string]int)

	var getLevel func(id string) int
	getLevel = func(id string) int {
		if level, ok := assigned[id]; ok {
			return level
		}
		level := 0
		for _, parentID := range g.parents[id] {
			level = max(level, getLevel(parentID)+1)
		}
		assigned[id] = level
		return level
	}

	maxLevel := -1
	for id := range g.nodes {
		maxLevel = max(maxLevel, getLevel(id))
	}

	levels := make([][]string, maxLevel+1)
	for id, level := range assigned {
		levels[level] = append(levels[level], id)
	}
	for i := range levels {
		sort.Strings(levels[i])
	}
	return levels, nil
}

// GetDownstreamNodes returns the given tables and every table that
// references them, directly or not.
func (g *Graph) GetDownstreamNodes(ids []string) []string {
	affected := make(map[string]bool)

	var mark func(id string)
	mark = func(id string) {
		if affected[id] {
			return
		}
		affected[id] = true
		for _, childID := range g.edges[id] {
			mark(childID)
		}
	}

	for _, id := range ids {
		if _, exists := g.nodes[id]; exists {
			mark(id)
		}
	}
	return sortedKeys(affected)
}

// GetUpstreamNodes returns every table id references, directly or not.
func (g *Graph) GetUpstreamNodes(id string) []string {
	upstream := make(map[string]bool)

	var mark func(nodeID string)
	mark = func(nodeID string) {
		for _, parentID := range g.parents[nodeID] {
			if !upstream[parentID] {
				upstream[parentID] = true
				mark(parentID)
			}
		}
	}

	mark(id)
	return sortedKeys(upstream)
}

// GetRoots returns tables that reference no other table.
func (g *Graph) GetRoots() []string {
	var roots []string
	for id := range g.nodes {
		if len(g.parents[id]) == 0 {
			roots = append(roots, id)
		}
	}
	sort.Strings(roots)
	return roots
}

// GetLeaves returns tables no other table references.
func (g *Graph) GetLeaves() []string {
	var leaves []string
	for id := range g.nodes {
		if len(g.edges[id]) == 0 {
			leaves = append(leaves, id)
		}
	}
	sort.Strings(leaves)
	return leaves
}

// Subgraph returns a new graph containing only the given tables and the
// references between them.
func (g *Graph) Subgraph(nodeIDs []string) *Graph {
	subgraph := NewGraph()
	nodeSet := make(map[string]bool)

	for _, id := range nodeIDs {
		nodeSet[id] = true
		if node, exists := g.nodes[id]; exists {
			subgraph.AddNode(id, node.Table)
		}
	}

	for _, id := range nodeIDs {
		for _, childID := range g.edges[id] {
			if nodeSet[childID] {
				_ = subgraph.AddEdge(id, childID)
			}
		}
	}
	return subgraph
}

func (g *Graph) sortedIDs() []string {
	ids := make([]string, 0, len(g.nodes))
	for id := range g.nodes {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func sortedKeys(set map[string]bool) []string {
	result := make([]string, 0, len(set))
	for id := range set {
		result = append(result, id)
	}
	sort.Strings(result)
	return result
}

func contains(slice []string, str string) bool {
	for _, s := range slice {
		if s == str {
			return true
		}
	}
	return false
}
