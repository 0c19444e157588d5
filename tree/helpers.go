// Package tree enumerates the tic-tac-toe game tree.
package tree

import (
	"github.com/timpalpant/go-qlearn/tictactoe"
)

// Node is a position of the game tree: a board and the player to move.
type Node struct {
	State  tictactoe.State
	ToMove tictactoe.Player
}

// Root returns the empty board with starter to move.
func Root(starter tictactoe.Player) Node {
	return Node{State: tictactoe.Initial, ToMove: starter}
}

// IsTerminal returns true if this node is an end-game node.
func (n Node) IsTerminal() bool {
	return tictactoe.IsTerminal(n.State)
}

// Children returns the nodes reachable by one legal move, in cell order.
func (n Node) Children() []Node {
	if n.IsTerminal() {
		return nil
	}

	legal := tictactoe.LegalActions(n.State)
	result := make([]Node, 0, len(legal))
	for _, a := range legal {
		child, err := tictactoe.Apply(n.State, a, n.ToMove)
		if err != nil {
			panic(err)
		}

		result = append(result, Node{State: child, ToMove: n.ToMove.Other()})
	}

	return result
}

// Visit calls visitor for every node of the tree rooted at root,
// in depth-first order. Positions reached by different move orders
// are visited once per path.
func Visit(root Node, visitor func(node Node)) {
	visitor(root)
	for _, child := range root.Children() {
		Visit(child, visitor)
	}
}

// VisitPositions calls visitor once for every distinct node reachable
// from any of the roots.
func VisitPositions(visitor func(node Node), roots ...Node) {
	seen := make(map[Node]struct{})
	var walk func(node Node)
	walk = func(node Node) {
		if _, ok := seen[node]; ok {
			return
		}

		seen[node] = struct{}{}
		visitor(node)
		for _, child := range node.Children() {
			walk(child)
		}
	}

	for _, root := range roots {
		walk(root)
	}
}

// DecisionStates returns the distinct non-terminal states, reachable from
// any of the roots, in which player has to move.
func DecisionStates(player tictactoe.Player, roots ...Node) []tictactoe.State {
	var result []tictactoe.State
	VisitPositions(func(node Node) {
		if node.ToMove == player && !node.IsTerminal() {
			result = append(result, node.State)
		}
	}, roots...)

	return result
}

// CountNodes returns the number of nodes of the game tree under root.
func CountNodes(root Node) int {
	total := 0
	Visit(root, func(node Node) { total++ })
	return total
}

// CountTerminalNodes returns the number of finished games under root.
func CountTerminalNodes(root Node) int {
	total := 0
	Visit(root, func(node Node) {
		if node.IsTerminal() {
			total++
		}
	})

	return total
}

// CountPositions returns the number of distinct positions reachable from roots.
func CountPositions(roots ...Node) int {
	total := 0
	VisitPositions(func(node Node) { total++ }, roots...)
	return total
}

// CountTerminalPositions returns the number of distinct final positions
// reachable from roots.
func CountTerminalPositions(roots ...Node) int {
	total := 0
	VisitPositions(func(node Node) {
		if node.IsTerminal() {
			total++
		}
	}, roots...)

	return total
}
